package redis

import (
	"context"
	"errors"
	"time"

	"limslite-service/internal/app/contracts"
	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisRepository struct {
	Client *redis.Client
	Log    *zap.Logger
}

func NewRedisRepository(client *redis.Client, logger *zap.Logger) contracts.RedisRepository {
	return &redisRepository{
		Client: client,
		Log:    logger,
	}
}

// Get returns an empty string when the key does not exist.
func (r *redisRepository) Get(ctx context.Context, key string) (string, error) {
	data, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		r.Log.Error("redisRepository.Get error",
			zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFromContext(ctx)),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return "", exceptions.ErrRedisGetNoData(err, key)
	}
	return data, nil
}

// TrySetNX stores value JSON encoded only when key is absent and reports
// whether it did.
func (r *redisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return false, exceptions.ErrCannotMarshalJSON(err)
	}

	acquired, err := r.Client.SetNX(ctx, key, encoded, exp).Result()
	if err != nil {
		r.Log.Error("redisRepository.TrySetNX error",
			zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFromContext(ctx)),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return false, exceptions.ErrRedisSetData(err)
	}
	return acquired, nil
}

func (r *redisRepository) Delete(ctx context.Context, key string) error {
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		r.Log.Error("redisRepository.Delete error",
			zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFromContext(ctx)),
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return exceptions.ErrRedisDeleteData(err)
	}
	return nil
}
