package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"limslite-service/internal/app/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the client backing the per-message locks.
func NewRedisClient(driverConfig *config.DriverConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", driverConfig.Redis.Host, driverConfig.Redis.Port),
		Password:    driverConfig.Redis.Password,
		DB:          driverConfig.Redis.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}

	log.Println("Successfully connected to redis")
	return rdb
}
