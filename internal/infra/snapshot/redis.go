package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/campaignops/campaign-status-alerts/internal/domain"
)

const redisSnapshotKey = "campaign:tracking:snapshot"

// RedisRepository keeps the tracking snapshot in a single redis key,
// for deployments where several processes share the tracking state.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
	}
}

func (r *RedisRepository) Load(ctx context.Context) (map[string]*domain.TrackingRecord, error) {
	data, err := r.client.Get(ctx, redisSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot from redis: %w", err)
	}
	return decodeSnapshot(data)
}

func (r *RedisRepository) Save(ctx context.Context, records map[string]*domain.TrackingRecord) error {
	data, err := encodeSnapshot(records)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisSnapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}
	return nil
}
