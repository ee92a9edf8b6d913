package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvSecretKey                 = "SECRET_KEY"
	EnvTokenIssuer               = "TOKEN_ISSUER"
	EnvAccessTokenExpireMinutes  = "ACCESS_TOKEN_EXPIRE_MINUTES"
	EnvRefreshTokenExpireMinutes = "REFRESH_TOKEN_EXPIRE_MINUTES"
	EnvBcryptCost                = "BCRYPT_COST"

	EnvGoogleClientID       = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret   = "GOOGLE_CLIENT_SECRET"
	EnvGitHubClientID       = "GITHUB_CLIENT_ID"
	EnvGitHubClientSecret   = "GITHUB_CLIENT_SECRET"
	EnvOAuthCallbackBaseURL = "OAUTH_CALLBACK_BASE_URL"
	EnvOAuthHTTPTimeout     = "OAUTH_HTTP_TIMEOUT"

	EnvKafkaBookingsTopic    = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaBookingsDLQTopic = "KAFKA_BOOKINGS_DLQ_TOPIC"

	// EnvFile is read when present; real environment variables win over it.
	EnvFile = ".env"
)
