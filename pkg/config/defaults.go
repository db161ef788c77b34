package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "courtbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	// The facility's civil timezone. Opening hours are a local wall-clock
	// concept; this is a deployment constant, never taken from the caller.
	DefaultFacilityTimezone = "Asia/Jerusalem"

	DefaultOpenHour           = 8
	DefaultCloseHour          = 22
	DefaultDefaultSlotMinutes = 60

	DefaultReservationLockTTL = 10 * time.Second

	DefaultKafkaEventsTopic = "reservation-events"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
