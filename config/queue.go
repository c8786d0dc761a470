package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue is the Redis client backing the outbound OCR and notification
// queues. Nil when REDIS_ADDR is unset; the core then records queue-dependent
// work as degraded instead of failing.
var Queue *redis.Client

func InitQueue() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, outbound queues disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: redis ping failed, outbound queues disabled: %v", err)
		return
	}

	Queue = client
	log.Println("Message queue connected successfully")
}

func CloseQueue() {
	if Queue == nil {
		return
	}
	if err := Queue.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}
}
