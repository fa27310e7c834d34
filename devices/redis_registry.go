package devices

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const devicesKeyPrefix = "devices:"

var _ Registry = (*RedisRegistry)(nil)

// RedisRegistry keeps the devices of an account in one Redis hash keyed by
// device id.
type RedisRegistry struct {
	client  redis.UniversalClient
	prefix  string
	nowFunc func() time.Time
}

// RedisRegistryOption configures a RedisRegistry.
type RedisRegistryOption func(*RedisRegistry)

// WithKeyPrefix namespaces every key written by the registry.
func WithKeyPrefix(prefix string) RedisRegistryOption {
	return func(r *RedisRegistry) {
		r.prefix = prefix
	}
}

// WithNowFunc sets the clock (primarily for testing).
func WithNowFunc(now func() time.Time) RedisRegistryOption {
	return func(r *RedisRegistry) {
		r.nowFunc = now
	}
}

func NewRedisRegistry(client redis.UniversalClient, options ...RedisRegistryOption) *RedisRegistry {
	r := &RedisRegistry{client: client, nowFunc: time.Now}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *RedisRegistry) key(uid string) string {
	if r.prefix == "" {
		return devicesKeyPrefix + uid
	}
	return r.prefix + ":" + devicesKeyPrefix + uid
}

func (r *RedisRegistry) List(ctx context.Context, uid string) ([]*Device, error) {
	fields, err := r.client.HGetAll(ctx, r.key(uid)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "[RedisRegistry.List]")
	}
	list := make([]*Device, 0, len(fields))
	for id, raw := range fields {
		d := &Device{}
		if err := json.Unmarshal([]byte(raw), d); err != nil {
			return nil, errors.Wrapf(err, "[RedisRegistry.List] device %s", id)
		}
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *RedisRegistry) Upsert(ctx context.Context, device *Device) (*Device, error) {
	if device == nil || device.UID == "" {
		return nil, errors.New("[RedisRegistry.Upsert] device uid is required")
	}
	stored := *device
	now := r.nowFunc().UTC()

	if stored.ID == "" {
		existing, err := r.List(ctx, stored.UID)
		if err != nil {
			return nil, err
		}
		for _, d := range existing {
			if stored.matches(d) {
				stored.ID = d.ID
				stored.CreatedAt = d.CreatedAt
				break
			}
		}
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.LastAccessTime = now

	raw, err := json.Marshal(&stored)
	if err != nil {
		return nil, errors.Wrap(err, "[RedisRegistry.Upsert]")
	}
	if err := r.client.HSet(ctx, r.key(stored.UID), stored.ID, raw).Err(); err != nil {
		return nil, errors.Wrap(err, "[RedisRegistry.Upsert]")
	}
	return &stored, nil
}
