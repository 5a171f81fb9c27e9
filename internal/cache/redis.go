// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// ChangeChannel is the pub/sub channel carrying club change notices. The
// watch hub subscribes here and reloads its snapshot on every message.
var ChangeChannel = "club_changes"

// DefaultQueueName is the Redis list (queue) holding round events for the
// archiver worker.
var DefaultQueueName = "club_round_events"

// ChangeNotice tells watchers that a collection changed. It carries no
// data: subscribers refetch the full snapshot, so a lost or duplicated
// notice costs at most one reload.
type ChangeNotice struct {
	Kind      string `json:"kind"` // "players", "sessions" or "rounds"
	Timestamp int64  `json:"timestamp"`
}

// RoundEventRecord is the audit-queue entry for one committed round.
type RoundEventRecord struct {
	RoundID   models.RoundID       `json:"round_id"`
	SessionID models.SessionID     `json:"session_id"`
	Scores    [models.NumSeats]int `json:"scores"`
	Tags      map[string][]string  `json:"tags"`
	Timestamp int64                `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishChange broadcasts a change notice for one collection. Best-effort:
// the caller's write already committed, so a failed notice only delays
// watchers until the next one.
func PublishChange(ctx context.Context, kind string) error {
	notice := ChangeNotice{Kind: kind, Timestamp: time.Now().UnixMilli()}
	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal ChangeNotice: %w", err)
	}
	if err := Rdb.Publish(ctx, ChangeChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel '%s': %w", ChangeChannel, err)
	}
	return nil
}

// PublishRoundEvent serializes the record to JSON and pushes it onto the
// archiver queue. This does not block the committing logic beyond a quick
// network send.
func PublishRoundEvent(ctx context.Context, record RoundEventRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal RoundEventRecord: %w", err)
	}

	queueName := getEnv("ARCHIVER_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
