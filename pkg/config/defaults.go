package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "booking_db"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8000"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLockTTL           = 10 * time.Second
	DefaultSlotLockWaitTimeout   = 5 * time.Second
	DefaultSlotLockRetryInterval = 100 * time.Millisecond

	DefaultPaginationLimit = 100
)
