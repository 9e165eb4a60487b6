package config

import (
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		PostgresDB: PostgresDB{
			Host:         utils.GetEnvString("POSTGRES_HOST", "localhost"),
			Port:         utils.GetEnvString("POSTGRES_PORT", "5432"),
			Username:     utils.GetEnvString("POSTGRES_USERNAME", "postgres"),
			Password:     utils.GetEnvString("POSTGRES_PASSWORD", "postgres"),
			DBName:       utils.GetEnvString("POSTGRES_DB_NAME", "limslite"),
			SSLMode:      utils.GetEnvString("POSTGRES_SSL_MODE", "disable"),
			MaxOpenConns: utils.GetEnvInt("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns: utils.GetEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),

			ConnMaxLifetimeInMinutes: utils.GetEnvInt("POSTGRES_CONN_MAX_LIFETIME_IN_MINUTES", 30),
			ApplicationName:          utils.GetEnvString("POSTGRES_APPLICATION_NAME", "limslite-service"),
		},
		Redis: Redis{
			Enabled:  utils.GetEnvBool("REDIS_ENABLED", false),
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Enabled:     utils.GetEnvBool("RABBITMQ_ENABLED", false),
			Port:        utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:        utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username:    utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password:    utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
			VirtualHost: utils.GetEnvString("RABBITMQ_VIRTUAL_HOST", "/"),
		},
		Minio: Minio{
			Enabled:  utils.GetEnvBool("MINIO_ENABLED", false),
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "minioadmin"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "minioadmin"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                      utils.GetEnvString("APP_ENV", "development"),
			Version:                  utils.GetEnvString("APP_VERSION", "v1.0"),
			Timezone:                 utils.GetEnvString("APP_TIMEZONE", "UTC"),
			ShutdownTimeoutInSeconds: utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			RunMigrations:            utils.GetEnvBool("APP_RUN_MIGRATIONS", true),
		},
		MLLP: AppMLLP{
			Address:                 utils.GetEnvString("MLLP_ADDRESS", "0.0.0.0:9999"),
			ReadTimeoutInSeconds:    utils.GetEnvInt("MLLP_READ_TIMEOUT_IN_SECONDS", 60),
			WriteTimeoutInSeconds:   utils.GetEnvInt("MLLP_WRITE_TIMEOUT_IN_SECONDS", 10),
			MaxFrameSizeInKilobyte:  utils.GetEnvInt("MLLP_MAX_FRAME_SIZE_IN_KILOBYTE", constvars.DefaultMaxFrameSize/1024),
			KeepAlive:               utils.GetEnvBool("MLLP_KEEP_ALIVE", false),
			MaxConnectionsPerSecond: utils.GetEnvInt("MLLP_MAX_CONNECTIONS_PER_SECOND", 50),
			PartialSpecimenPolicy:   utils.GetEnvString("MLLP_PARTIAL_SPECIMEN_POLICY", constvars.PartialSpecimenPolicyReject),
			MessageLockTTLInSeconds: utils.GetEnvInt("MLLP_MESSAGE_LOCK_TTL_IN_SECONDS", 30),
		},
		Lab: AppLab{
			RespondingApplication: utils.GetEnvString("LAB_RESPONDING_APPLICATION", "LIS"),
			RespondingFacility:    utils.GetEnvString("LAB_RESPONDING_FACILITY", "LIS Facility"),
			Name:                  utils.GetEnvString("LAB_NAME", "ILB/VL-EID"),
		},
		Dashboard: AppDashboard{
			Port:           utils.GetEnvString("DASHBOARD_PORT", ":8080"),
			EndpointPrefix: utils.GetEnvString("DASHBOARD_ENDPOINT_PREFIX", "api"),
			MaxRequests:    utils.GetEnvInt("DASHBOARD_MAX_REQUESTS", 20),
		},
		RabbitMQ: AppRabbitMQ{
			RunEventsQueue: utils.GetEnvString("RABBITMQ_RUN_EVENTS_QUEUE", "limslite.run.ingested"),
		},
		Minio: AppMinio{
			ArchiveBucketName: utils.GetEnvString("MINIO_ARCHIVE_BUCKET_NAME", "limslite-hl7-archive"),
		},
	}
}

func (c *InternalConfig) Validate() error {
	return utils.ValidateStruct(c)
}
