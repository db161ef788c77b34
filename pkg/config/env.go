package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvFacilityTimezone   = "FACILITY_TIMEZONE"
	EnvOpenHour           = "OPEN_HOUR"
	EnvCloseHour          = "CLOSE_HOUR"
	EnvDefaultSlotMinutes = "DEFAULT_SLOT_MINUTES"

	EnvReservationLockTTL = "RESERVATION_LOCK_TTL"

	EnvKafkaEventsTopic = "KAFKA_EVENTS_TOPIC"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
