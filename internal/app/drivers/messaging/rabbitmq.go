package messaging

import (
	"log"
	"strconv"
	"time"

	"limslite-service/internal/app/config"

	"github.com/rabbitmq/amqp091-go"
)

const connectionName = "limslite-service"

// NewRabbitMQ dials the broker used for run events. The connection name
// shows up in the management UI next to the publisher channel.
func NewRabbitMQ(driverConfig *config.DriverConfig) *amqp091.Connection {
	port, err := strconv.Atoi(driverConfig.RabbitMQ.Port)
	if err != nil {
		log.Fatalf("Invalid rabbitMQ port %q: %s", driverConfig.RabbitMQ.Port, err.Error())
	}

	uri := amqp091.URI{
		Scheme:   "amqp",
		Host:     driverConfig.RabbitMQ.Host,
		Port:     port,
		Username: driverConfig.RabbitMQ.Username,
		Password: driverConfig.RabbitMQ.Password,
		Vhost:    driverConfig.RabbitMQ.VirtualHost,
	}

	properties := amqp091.NewConnectionProperties()
	properties.SetClientConnectionName(connectionName)

	conn, err := amqp091.DialConfig(uri.String(), amqp091.Config{
		Heartbeat:  10 * time.Second,
		Properties: properties,
	})
	if err != nil {
		log.Fatalf("Failed to connect to rabbitMQ: %s", err.Error())
	}
	log.Println("Successfully connected to rabbitMQ")
	return conn
}
