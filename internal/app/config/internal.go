package config

import (
	"time"

	"limslite-service/internal/pkg/constvars"
)

type InternalConfig struct {
	App       App          `mapstructure:"app"`
	MLLP      AppMLLP      `mapstructure:"mllp"`
	Lab       AppLab       `mapstructure:"lab"`
	Dashboard AppDashboard `mapstructure:"dashboard"`
	RabbitMQ  AppRabbitMQ  `mapstructure:"rabbitmq"`
	Minio     AppMinio     `mapstructure:"minio"`
}

type App struct {
	Env                      string `mapstructure:"env" validate:"required"`
	Version                  string `mapstructure:"version"`
	Timezone                 string `mapstructure:"timezone" validate:"required"`
	ShutdownTimeoutInSeconds int    `mapstructure:"shutdown_timeout_in_seconds" validate:"gte=1"`
	RunMigrations            bool   `mapstructure:"run_migrations"`
}

type AppMLLP struct {
	Address                 string `mapstructure:"address" validate:"required"`
	ReadTimeoutInSeconds    int    `mapstructure:"read_timeout_in_seconds" validate:"gte=0"`
	WriteTimeoutInSeconds   int    `mapstructure:"write_timeout_in_seconds" validate:"gte=0"`
	MaxFrameSizeInKilobyte  int    `mapstructure:"max_frame_size_in_kilobyte" validate:"gte=1"`
	KeepAlive               bool   `mapstructure:"keep_alive"`
	MaxConnectionsPerSecond int    `mapstructure:"max_connections_per_second" validate:"gte=0"`
	PartialSpecimenPolicy   string `mapstructure:"partial_specimen_policy" validate:"partial_policy"`
	MessageLockTTLInSeconds int    `mapstructure:"message_lock_ttl_in_seconds" validate:"gte=1"`
}

func (m AppMLLP) ReadTimeout() time.Duration {
	return time.Duration(m.ReadTimeoutInSeconds) * time.Second
}

func (m AppMLLP) WriteTimeout() time.Duration {
	return time.Duration(m.WriteTimeoutInSeconds) * time.Second
}

func (m AppMLLP) MaxFrameSize() int {
	return m.MaxFrameSizeInKilobyte * 1024
}

func (m AppMLLP) MessageLockTTL() time.Duration {
	return time.Duration(m.MessageLockTTLInSeconds) * time.Second
}

func (m AppMLLP) SkipInvalidSpecimens() bool {
	return m.PartialSpecimenPolicy == constvars.PartialSpecimenPolicySkip
}

type AppLab struct {
	RespondingApplication string `mapstructure:"responding_application" validate:"required"`
	RespondingFacility    string `mapstructure:"responding_facility"`
	Name                  string `mapstructure:"name" validate:"required"`
}

type AppDashboard struct {
	Port           string `mapstructure:"port" validate:"required"`
	EndpointPrefix string `mapstructure:"endpoint_prefix"`
	MaxRequests    int    `mapstructure:"max_requests" validate:"gte=1"`
}

type AppRabbitMQ struct {
	RunEventsQueue string `mapstructure:"run_events_queue"`
}

type AppMinio struct {
	ArchiveBucketName string `mapstructure:"archive_bucket_name"`
}
