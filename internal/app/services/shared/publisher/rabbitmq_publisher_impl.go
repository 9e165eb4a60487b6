package publisher

import (
	"context"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type rabbitMQPublisher struct {
	Channel channelPublisher
	Queue   string
	Log     *zap.Logger
}

// NewRabbitMQPublisher opens a channel on conn and declares a durable queue
// for run events.
func NewRabbitMQPublisher(conn *amqp091.Connection, queue string, logger *zap.Logger) (contracts.RunEventPublisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		return nil, err
	}

	return &rabbitMQPublisher{
		Channel: channel,
		Queue:   queue,
		Log:     logger,
	}, nil
}

func (p *rabbitMQPublisher) PublishRunIngested(ctx context.Context, event models.RunIngestedEvent) error {
	requestID := utils.RequestIDFromContext(ctx)

	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Type:         constvars.RunIngestedEventType,
		MessageId:    event.MsgGUID,
		Headers: amqp091.Table{
			"message_type": "JSON",
		},
	}

	err = p.Channel.PublishWithContext(ctx, "", p.Queue, false, false, message)
	if err != nil {
		p.Log.Error("rabbitMQPublisher.PublishRunIngested error publishing message",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingQueueKey, p.Queue),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublishMessage(err, p.Queue)
	}

	p.Log.Info("rabbitMQPublisher.PublishRunIngested succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueueKey, p.Queue),
		zap.Int64(constvars.LoggingRunIDKey, event.RunID),
	)
	return nil
}
