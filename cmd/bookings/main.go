package main

import (
	"slotbook/internal/bookings/events"
	bookingrepository "slotbook/internal/bookings/repository"
	"slotbook/internal/server"
	userrepository "slotbook/internal/users/repository"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
	mongodb "slotbook/pkg/db/mongo"
	"slotbook/pkg/kafka"
	kafka_middleware "slotbook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.Client.SetHTTP(cfg.OAuthHTTPTimeout)

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	deps := initDependencies(cfg, serverApp)
	handlers, err := server.Handlers(cfg, deps)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize services", "error", err)
	}

	serverApp.SetApp(cfg.Client.Mongo, handlers...)
	serverApp.Run()
}

func initDependencies(cfg *config.Config, serverApp *app.Application) server.Dependencies {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	timeouts := mongodb.Timeouts{Read: cfg.ReadTimeout, Write: cfg.WriteTimeout}

	return server.Dependencies{
		Users:      userrepository.NewMongoUserRepository(db, timeouts),
		Bookings:   bookingrepository.NewMongoBookingRepository(db, timeouts),
		Events:     initPublisher(cfg, serverApp),
		HTTPClient: cfg.Client.HTTP,
	}
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if cfg.Kafka == nil || !cfg.Kafka.Enabled() {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.KafkaBookingsTopic, cfg.KafkaBookingsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log, cfg.KafkaBookingsTopic))
	serverApp.AddShutdownHook("kafka-producer", producer.Close)

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.KafkaBookingsTopic)
	return events.NewKafkaPublisher(producer, ServiceName)
}
