package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"time"

	"slotbook/pkg/client"
	kafka_config "slotbook/pkg/kafka/config"
	"slotbook/pkg/logger"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	SecretKey          string
	TokenIssuer        string
	AccessTokenExpire  time.Duration
	RefreshTokenExpire time.Duration
	BcryptCost         int

	GoogleClientID       string
	GoogleClientSecret   string
	GitHubClientID       string
	GitHubClientSecret   string
	OAuthCallbackBaseURL string
	OAuthHTTPTimeout     time.Duration

	Kafka                 *kafka_config.Config
	KafkaBookingsTopic    string
	KafkaBookingsDLQTopic string

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the environment (and an optional .env file), validates the
// result and exits the process when the configuration is unusable.
func Load(serviceName string) *Config {
	v, readErr := newViper(EnvFile)

	cfg := FromViper(v, serviceName)
	if readErr != nil {
		cfg.Log.Fatal("Failed to read env file", "file", EnvFile, "error", readErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromViper builds a Config from an already populated viper instance without
// validating it.
func FromViper(v *viper.Viper, serviceName string) *Config {
	return &Config{
		MongoURI:          getEnvStr(v, EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(v, EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(v, EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(v, EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(v, EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(v, EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(v, EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(v, EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(v, EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(v, EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(v, EnvShutdownTimeout, DefaultShutdownTimeout),

		SecretKey:          getEnvStr(v, EnvSecretKey, ""),
		TokenIssuer:        getEnvStr(v, EnvTokenIssuer, DefaultTokenIssuer),
		AccessTokenExpire:  time.Duration(getEnvNum(v, EnvAccessTokenExpireMinutes, DefaultAccessTokenExpireMinutes)) * time.Minute,
		RefreshTokenExpire: time.Duration(getEnvNum(v, EnvRefreshTokenExpireMinutes, DefaultRefreshTokenExpireMinutes)) * time.Minute,
		BcryptCost:         getEnvNum(v, EnvBcryptCost, DefaultBcryptCost),

		GoogleClientID:       getEnvStr(v, EnvGoogleClientID, ""),
		GoogleClientSecret:   getEnvStr(v, EnvGoogleClientSecret, ""),
		GitHubClientID:       getEnvStr(v, EnvGitHubClientID, ""),
		GitHubClientSecret:   getEnvStr(v, EnvGitHubClientSecret, ""),
		OAuthCallbackBaseURL: strings.TrimRight(getEnvStr(v, EnvOAuthCallbackBaseURL, ""), "/"),
		OAuthHTTPTimeout:     getEnvDuration(v, EnvOAuthHTTPTimeout, DefaultOAuthHTTPTimeout),

		Kafka:                 kafka_config.Load(v),
		KafkaBookingsTopic:    getEnvStr(v, EnvKafkaBookingsTopic, DefaultKafkaBookingsTopic),
		KafkaBookingsDLQTopic: getEnvStr(v, EnvKafkaBookingsDLQTopic, ""),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(v, EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

// newViper returns a viper instance bound to the process environment with
// envFile layered underneath. A missing envFile is not an error.
func newViper(envFile string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	if envFile == "" {
		return v, nil
	}
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return v, err
	}
	return v, nil
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(cfg.SecretKey) < MinSecretKeyLength {
		errors = append(errors, fmt.Sprintf("SecretKey must be at least %d characters, got: %d", MinSecretKeyLength, len(cfg.SecretKey)))
	}
	if cfg.AccessTokenExpire <= 0 {
		errors = append(errors, fmt.Sprintf("AccessTokenExpire must be positive, got: %s", cfg.AccessTokenExpire))
	}
	if cfg.RefreshTokenExpire <= 0 {
		errors = append(errors, fmt.Sprintf("RefreshTokenExpire must be positive, got: %s", cfg.RefreshTokenExpire))
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		errors = append(errors, fmt.Sprintf("BcryptCost must be between %d and %d, got: %d", bcrypt.MinCost, bcrypt.MaxCost, cfg.BcryptCost))
	}

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret == "" {
		errors = append(errors, "GoogleClientSecret is required when GoogleClientID is set")
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret == "" {
		errors = append(errors, "GitHubClientSecret is required when GitHubClientID is set")
	}
	if cfg.OAuthCallbackBaseURL != "" && !regexp.MustCompile(`^https?://`).MatchString(cfg.OAuthCallbackBaseURL) {
		errors = append(errors, fmt.Sprintf("OAuthCallbackBaseURL must start with 'http://' or 'https://', got: %s", cfg.OAuthCallbackBaseURL))
	}
	if cfg.OAuthHTTPTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("OAuthHTTPTimeout must be positive, got: %s", cfg.OAuthHTTPTimeout))
	}

	if cfg.Kafka != nil && cfg.Kafka.Enabled() {
		if err := cfg.Kafka.Validate(); err != nil {
			errors = append(errors, err.Error())
		}
		if cfg.KafkaBookingsTopic == "" {
			errors = append(errors, "KafkaBookingsTopic cannot be empty when Kafka is enabled")
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"secret_key_set", cfg.SecretKey != "",
		"token_issuer", cfg.TokenIssuer,
		"access_token_expire", cfg.AccessTokenExpire,
		"refresh_token_expire", cfg.RefreshTokenExpire,
		"bcrypt_cost", cfg.BcryptCost,
		"google_oauth_enabled", cfg.GoogleClientID != "",
		"github_oauth_enabled", cfg.GitHubClientID != "",
		"oauth_callback_base_url", cfg.OAuthCallbackBaseURL,
		"oauth_http_timeout", cfg.OAuthHTTPTimeout,
		"kafka_enabled", cfg.Kafka != nil && cfg.Kafka.Enabled(),
		"kafka_bookings_topic", cfg.KafkaBookingsTopic,
	)
	if cfg.Kafka != nil && cfg.Kafka.Enabled() {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(v *viper.Viper, key, fallback string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(v *viper.Viper, key string, fallback int) int {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
