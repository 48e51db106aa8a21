package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "judge:job:"

// Mirror keeps terminal payloads outside the process.
type Mirror interface {
	Save(ctx context.Context, id string, p *Payload, ttl time.Duration) error
	// Load returns nil without error when id is unknown.
	Load(ctx context.Context, id string) (*Payload, error)
}

type RedisMirror struct {
	client *redis.Client
}

func NewRedisMirror(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client}
}

// DialRedis connects and pings, failing fast on a bad address.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (m *RedisMirror) Save(ctx context.Context, id string, p *Payload, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", id, err)
	}
	return m.client.Set(ctx, keyPrefix+id, data, ttl).Err()
}

func (m *RedisMirror) Load(ctx context.Context, id string) (*Payload, error) {
	data, err := m.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return &p, nil
}
