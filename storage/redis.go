package storage

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

func InitializeRedis() {
	// Get Redis URL from environment, fallback to localhost for development
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
		log.Println("⚠️  REDIS_URL not set, using localhost:6379 (development mode)")
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: "", // No password for now
		DB:       0,
	})

	log.Println("🔧 Redis initialized with address:", redisURL)
}

// IncrementScanCount bumps the per-experience scan counter. Counter loss is
// acceptable; analytics events are the durable record.
func IncrementScanCount(ctx context.Context, experienceID uint) int64 {
	if Redis == nil {
		return 0
	}
	n, err := Redis.Incr(ctx, scanKey(experienceID)).Result()
	if err != nil {
		log.Printf("scan counter incr failed for experience %d: %v", experienceID, err)
		return 0
	}
	return n
}

func GetScanCount(ctx context.Context, experienceID uint) int64 {
	if Redis == nil {
		return 0
	}
	n, _ := Redis.Get(ctx, scanKey(experienceID)).Int64()
	return n
}

func scanKey(experienceID uint) string {
	return fmt.Sprintf("experience:%d:scans", experienceID)
}
