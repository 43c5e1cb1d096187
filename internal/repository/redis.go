package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SolYield/yieldgate/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	Client *redis.Client
	idemTTL time.Duration
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := time.Duration(cfg.Redis.IdempotencyTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{Client: rdb, idemTTL: ttl}, nil
}

// --- daily usage counters (UsageRepo) ---

func usageKeys(owner string) (string, string) {
	today := time.Now().Format("2006-01-02")
	return fmt.Sprintf("usage:%s:%s:value", owner, today),
		fmt.Sprintf("usage:%s:%s:count", owner, today)
}

func (r *RedisStore) GetDailyWithdrawUsage(ctx context.Context, owner string) (int, uint64, error) {
	keyVal, keyCount := usageKeys(owner)

	pipe := r.Client.Pipeline()
	valCmd := pipe.Get(ctx, keyVal)
	countCmd := pipe.Get(ctx, keyCount)
	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return 0, 0, err
	}

	value, _ := valCmd.Uint64()
	count, _ := countCmd.Int()
	return count, value, nil
}

func (r *RedisStore) AddDailyWithdrawUsage(ctx context.Context, owner string, amount uint64) error {
	keyVal, keyCount := usageKeys(owner)

	pipe := r.Client.Pipeline()
	pipe.IncrBy(ctx, keyVal, int64(amount))
	pipe.Incr(ctx, keyCount)
	// Two days is a safe expiry for day-scoped counters.
	pipe.Expire(ctx, keyVal, 48*time.Hour)
	pipe.Expire(ctx, keyCount, 48*time.Hour)

	_, err := pipe.Exec(ctx)
	return err
}

// --- idempotency store ---

const idemPrefix = "idem:"

type idemWire struct {
	Status     int    `json:"status"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
	Processing bool   `json:"processing"`
}

func (r *RedisStore) GetOrLock(key string) (*IdempotencyRecord, bool) {
	ctx := context.Background()
	payload := encodeIdemRecord(&IdempotencyRecord{Processing: true, CreatedAt: time.Now().UTC()})

	ok, err := r.Client.SetNX(ctx, idemPrefix+key, payload, r.idemTTL).Result()
	if err == nil && ok {
		return nil, false // lock acquired
	}

	raw, err := r.Client.Get(ctx, idemPrefix+key).Result()
	if err != nil {
		return nil, false
	}
	rec, err := decodeIdemRecord(raw)
	if err != nil {
		return nil, false
	}
	return rec, true
}

func (r *RedisStore) Save(key string, status int, body []byte) {
	ctx := context.Background()
	payload := encodeIdemRecord(&IdempotencyRecord{
		Status:    status,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
	_ = r.Client.Set(ctx, idemPrefix+key, payload, r.idemTTL).Err()
}

func (r *RedisStore) Unlock(key string) {
	_ = r.Client.Del(context.Background(), idemPrefix+key).Err()
}

func encodeIdemRecord(rec *IdempotencyRecord) string {
	wire := idemWire{
		Status:     rec.Status,
		Body:       base64.StdEncoding.EncodeToString(rec.Body),
		CreatedAt:  rec.CreatedAt.Unix(),
		Processing: rec.Processing,
	}
	out, _ := json.Marshal(wire)
	return string(out)
}

func decodeIdemRecord(raw string) (*IdempotencyRecord, error) {
	var wire idemWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, err
	}
	body, err := base64.StdEncoding.DecodeString(wire.Body)
	if err != nil {
		return nil, err
	}
	return &IdempotencyRecord{
		Status:     wire.Status,
		Body:       body,
		CreatedAt:  time.Unix(wire.CreatedAt, 0).UTC(),
		Processing: wire.Processing,
	}, nil
}
