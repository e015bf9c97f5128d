// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list the action log is pushed onto.
var DefaultQueueName = "uno_actions"

// ActionRecord is one entry in the game action log. Consumers read them off
// the Redis list for replay and audit.
type ActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActorUserID   uuid.UUID              `json:"actor_user_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Queue publishes game actions to a Redis list. It satisfies game.ActionLog.
type Queue struct {
	rdb  *redis.Client
	name string
}

// Connect dials Redis using environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
//   - ACTION_QUEUE_NAME (optional, default "uno_actions")
func Connect() (*Queue, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Queue{rdb: rdb, name: getEnv("ACTION_QUEUE_NAME", DefaultQueueName)}, nil
}

// Publish pushes one action record onto the queue. Failures are logged and
// swallowed; the action log is best effort and must never fail a game
// operation that has already committed.
func (q *Queue) Publish(ctx context.Context, gameID, actorID uuid.UUID, action string, payload map[string]interface{}) {
	rec := ActionRecord{
		GameID:        gameID,
		ActorUserID:   actorID,
		ActionType:    action,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		logrus.Warnf("action log: marshal failed: %v", err)
		return
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		logrus.Warnf("action log: RPush to '%s' failed: %v", q.name, err)
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

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
