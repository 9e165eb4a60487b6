package utils

import (
	"limslite-service/internal/pkg/constvars"

	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}

func GenerateConnectionID() string {
	return constvars.CONNECTION_ID_PREFIX + uuid.NewString()
}

func GenerateLockValue() string {
	return uuid.NewString()
}
