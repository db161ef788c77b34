package main

import (
	availabilityhandler "courtbook/internal/availability/handler"
	availabilityservice "courtbook/internal/availability/service"
	courthandler "courtbook/internal/courts/handler"
	courtrepo "courtbook/internal/courts/repository"
	courtservice "courtbook/internal/courts/service"
	"courtbook/internal/reservations/events"
	reservationhandler "courtbook/internal/reservations/handler"
	reservationrepo "courtbook/internal/reservations/repository"
	reservationservice "courtbook/internal/reservations/service"
	"courtbook/internal/reservations/validator"
	"courtbook/pkg/app"
	"courtbook/pkg/config"
	"courtbook/pkg/contracts"
	"courtbook/pkg/kafka"
	kafka_config "courtbook/pkg/kafka/config"
)

const ServiceName = "courtbook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting courtbook service")

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(initHandlers(cfg)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) []contracts.Handler {
	courtRepository := courtrepo.NewMongoCourtRepository(cfg)
	reservationRepository := reservationrepo.NewMongoReservationRepository(cfg)
	lockRepository := reservationrepo.NewReservationLockRepository(cfg)

	reservationValidator := validator.NewReservationValidator(cfg.Log)
	publisher := initPublisher(cfg)

	courtSvc := courtservice.NewCourtService(courtRepository, cfg)
	reservationSvc := reservationservice.NewReservationService(
		reservationRepository,
		lockRepository,
		courtRepository,
		reservationValidator,
		publisher,
		cfg,
	)
	availabilitySvc := availabilityservice.NewAvailabilityService(courtRepository, reservationRepository, cfg)

	cfg.Log.Info("Booking engine initialized",
		"database", cfg.MongoDatabaseName,
		"facility_timezone", cfg.FacilityTimezone,
	)

	return []contracts.Handler{
		courthandler.NewCourtHandler(courtSvc, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilitySvc, cfg.Log),
		reservationhandler.NewReservationHandler(reservationSvc, cfg.Log),
	}
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, reservation events disabled")
		return events.NewNoopPublisher()
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaEventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Reservation event publishing enabled",
		"brokers", kafkaCfg.Brokers,
		"topic", cfg.KafkaEventsTopic,
	)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
