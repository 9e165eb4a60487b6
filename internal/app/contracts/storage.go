package contracts

import (
	"context"
	"time"
)

// MessageArchiver keeps a copy of every inbound payload.
type MessageArchiver interface {
	Archive(ctx context.Context, controlID string, receivedAt time.Time, payload []byte) (string, error)
}
