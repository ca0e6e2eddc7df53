package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"restaurant_id",
			"booking_datetime",
			"guests_count",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"restaurant_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"booking_datetime": bson.M{
				"bsonType": "date",
			},

			"guests_count": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  100,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"CREATED",
					"CHECKING_AVAILABILITY",
					"CONFIRMED",
					"REJECTED",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
