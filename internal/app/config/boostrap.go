package config

import (
	"context"
	"database/sql"
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bootstrap holds the process-wide drivers. Optional drivers are nil when
// their integration is disabled.
type Bootstrap struct {
	Router         *chi.Mux
	PostgresDB     *sql.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	RabbitMQ       *amqp091.Connection
	Minio          *minio.Client
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
}

func (b *Bootstrap) Shutdown(ctx context.Context) error {
	if b.Redis != nil {
		err := b.Redis.Close()
		if err != nil {
			return err
		}
		log.Println("Successfully closing Redis")
	}

	if b.RabbitMQ != nil && !b.RabbitMQ.IsClosed() {
		err := b.RabbitMQ.Close()
		if err != nil {
			return err
		}
		log.Println("Successfully closing RabbitMQ")
	}

	if b.PostgresDB != nil {
		err := b.PostgresDB.Close()
		if err != nil {
			return err
		}
		log.Println("Successfully closing Postgres")
	}

	if b.Logger != nil {
		// Sync on stdout/stderr reports EINVAL on some platforms.
		_ = b.Logger.Sync()
		log.Println("Successfully closing Logger")
	}

	return nil
}
