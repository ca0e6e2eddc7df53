package model

type Restaurant struct {
	ID          int64  `json:"id" bson:"_id"`
	Name        string `json:"name" bson:"name" validate:"required,min=1,max=200"`
	Address     string `json:"address" bson:"address" validate:"required,min=1,max=500"`
	Description string `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
}
