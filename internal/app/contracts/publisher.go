package contracts

import (
	"context"
	"limslite-service/internal/app/models"
)

type RunEventPublisher interface {
	PublishRunIngested(ctx context.Context, event models.RunIngestedEvent) error
}
