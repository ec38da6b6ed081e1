package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks against mongo and the
// session cache and updates in-memory state. The first check runs
// synchronously so /health never serves a zero-value snapshot.
func StartHealthMonitor(cacheClient *redis.Client, mongoClient *mongo.Client) {
	ctx := context.Background()
	checkHealth(ctx, cacheClient, mongoClient)

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			checkHealth(ctx, cacheClient, mongoClient)
		}
	}()
}

func checkHealth(ctx context.Context, cacheClient *redis.Client, mongoClient *mongo.Client) {
	redisHealthy := cacheClient.Ping(ctx).Err() == nil
	mongoHealthy := mongoClient.Ping(ctx, nil) == nil

	healthMu.Lock()
	currentHealth = HealthStatus{
		Mongo:     mongoHealthy,
		Redis:     redisHealthy,
		CheckedAt: time.Now(),
	}
	healthMu.Unlock()
}
