package contracts

import (
	"context"
	"limslite-service/internal/app/models"
	"limslite-service/internal/pkg/hl7"
)

// MessageMapper extracts domain records from a message arranged into its
// group structure.
type MessageMapper interface {
	Structure() *hl7.Structure
	Extract(ctx context.Context, message *hl7.Message, root *hl7.Group) (*models.MessageExtraction, error)
}

type IngestionUsecase interface {
	Ingest(ctx context.Context, extraction *models.MessageExtraction, raw []byte) (*models.IngestOutcome, error)
}
