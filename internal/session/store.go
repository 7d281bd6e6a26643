package session

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/eleven-am/aura-studio/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 24 * time.Hour
	metricsTTL = 7 * 24 * time.Hour
)

type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
	IncrementMetric(ctx context.Context, field string) error
	GetMetrics(ctx context.Context, day time.Time) (*Metrics, error)
	Ping(ctx context.Context) error
}

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{redis: redisClient, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	data, err := s.redis.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, state.RedisKey(), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, keyPrefix+id).Err()
}

func (s *RedisStore) IncrementMetric(ctx context.Context, field string) error {
	key := MetricsRedisKey(metricsDate(time.Now()))

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GetMetrics(ctx context.Context, day time.Time) (*Metrics, error) {
	date := metricsDate(day)
	data, err := s.redis.HGetAll(ctx, MetricsRedisKey(date)).Result()
	if err != nil {
		return nil, err
	}

	m := &Metrics{Date: date}
	for field, raw := range data {
		v, _ := strconv.ParseInt(raw, 10, 64)
		m.set(field, v)
	}
	return m, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
