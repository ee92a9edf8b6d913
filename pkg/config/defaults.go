package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAccessTokenExpireMinutes  = 30
	DefaultRefreshTokenExpireMinutes = 7 * 24 * 60
	DefaultBcryptCost                = 12
	DefaultTokenIssuer               = "slotbook"

	DefaultOAuthHTTPTimeout = 10 * time.Second

	DefaultKafkaBookingsTopic = "bookings.events"

	MinSecretKeyLength = 32
)
