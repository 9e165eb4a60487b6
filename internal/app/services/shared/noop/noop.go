// Package noop holds stand-ins for optional integrations that are switched
// off in configuration.
package noop

import (
	"context"
	"time"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/app/models"
)

type locker struct{}

// NewLocker returns a locker that always grants the lock.
func NewLocker() contracts.LockerService {
	return locker{}
}

func (locker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	return true, "", nil
}

func (locker) Unlock(ctx context.Context, key, lockValue string) error {
	return nil
}

type archiver struct{}

func NewArchiver() contracts.MessageArchiver {
	return archiver{}
}

func (archiver) Archive(ctx context.Context, controlID string, receivedAt time.Time, payload []byte) (string, error) {
	return "", nil
}

type publisher struct{}

func NewPublisher() contracts.RunEventPublisher {
	return publisher{}
}

func (publisher) PublishRunIngested(ctx context.Context, event models.RunIngestedEvent) error {
	return nil
}
