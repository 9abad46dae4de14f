package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"keyportal/model"
)

const (
	redisKeyIndex  = "accesskeys"
	redisKeyPrefix = "accesskey:"
	redisOpTimeout = 3 * time.Second
)

// consumeScript returns the new usage count, -1 for a missing key and -2 once the limit is hit.
var consumeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local max = tonumber(redis.call('HGET', KEYS[1], 'max_uses'))
local used = tonumber(redis.call('HGET', KEYS[1], 'usage_count') or '0')
if max ~= -1 and used >= max then
	return -2
end
redis.call('HSET', KEYS[1], 'usage_count', used + 1, 'last_used', ARGV[1], 'updated_at', ARGV[1])
return used + 1
`)

// updateScript rewrites the mutable fields of an existing key and returns 0
// when the key is gone, so a concurrent Delete never leaves a partial hash.
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], 'secret', ARGV[1], 'max_uses', ARGV[2], 'usage_count', ARGV[3], 'last_used', ARGV[4], 'updated_at', ARGV[5])
return 1
`)

type redisAccessKeyRepo struct {
	rdb redis.UniversalClient
}

// NewRedisAccessKeyRepository stores each key as a hash under accesskey:<name>,
// with the set "accesskeys" as the index.
func NewRedisAccessKeyRepository(rdb redis.UniversalClient) AccessKeyRepository {
	return &redisAccessKeyRepo{rdb: rdb}
}

func hashKey(name string) string {
	return redisKeyPrefix + name
}

func (r *redisAccessKeyRepo) Create(key *model.AccessKey) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	added, err := r.rdb.SAdd(ctx, redisKeyIndex, key.Name).Result()
	if err != nil {
		return fmt.Errorf("redis index key %s: %w", key.Name, err)
	}
	if added == 0 {
		return fmt.Errorf("%w: %s", ErrKeyExists, key.Name)
	}

	if key.ID == uuid.Nil {
		key.ID = uuid.New()
	}
	now := time.Now().UTC()
	if key.CreatedAt.IsZero() {
		key.CreatedAt = now
	}
	key.UpdatedAt = now

	if err := r.rdb.HSet(ctx, hashKey(key.Name), toHash(key)).Err(); err != nil {
		r.rdb.SRem(ctx, redisKeyIndex, key.Name)
		return fmt.Errorf("redis store key %s: %w", key.Name, err)
	}
	return nil
}

func (r *redisAccessKeyRepo) GetByName(name string) (*model.AccessKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return r.get(ctx, name)
}

func (r *redisAccessKeyRepo) get(ctx context.Context, name string) (*model.AccessKey, error) {
	fields, err := r.rdb.HGetAll(ctx, hashKey(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load key %s: %w", name, err)
	}
	if len(fields) == 0 {
		return nil, ErrKeyNotFound
	}
	return fromHash(name, fields)
}

func (r *redisAccessKeyRepo) List() ([]model.AccessKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	names, err := r.rdb.SMembers(ctx, redisKeyIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list keys: %w", err)
	}
	sort.Strings(names)

	out := make([]model.AccessKey, 0, len(names))
	for _, name := range names {
		k, err := r.get(ctx, name)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	return out, nil
}

func (r *redisAccessKeyRepo) Update(key *model.AccessKey) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	lastUsed := ""
	if key.LastUsedAt != nil {
		lastUsed = key.LastUsedAt.UTC().Format(time.RFC3339Nano)
	}
	updated, err := updateScript.Run(ctx, r.rdb, []string{hashKey(key.Name)},
		key.Secret,
		key.MaxUses,
		key.UsageCount,
		lastUsed,
		time.Now().UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return fmt.Errorf("redis update key %s: %w", key.Name, err)
	}
	if updated == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (r *redisAccessKeyRepo) ConsumeUse(name string, at time.Time) (*model.AccessKey, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	res, err := consumeScript.Run(ctx, r.rdb, []string{hashKey(name)}, at.UTC().Format(time.RFC3339Nano)).Int()
	if err != nil {
		return nil, fmt.Errorf("redis consume key %s: %w", name, err)
	}
	if res == -1 {
		return nil, ErrKeyNotFound
	}

	key, err := r.get(ctx, name)
	if err != nil {
		return nil, err
	}
	if res == -2 {
		return key, ErrUsageLimitReached
	}
	return key, nil
}

func (r *redisAccessKeyRepo) Delete(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	removed, err := r.rdb.SRem(ctx, redisKeyIndex, name).Result()
	if err != nil {
		return fmt.Errorf("redis unindex key %s: %w", name, err)
	}
	if removed == 0 {
		return ErrKeyNotFound
	}
	return r.rdb.Del(ctx, hashKey(name)).Err()
}

func toHash(k *model.AccessKey) map[string]interface{} {
	h := map[string]interface{}{
		"id":          k.ID.String(),
		"secret":      k.Secret,
		"max_uses":    k.MaxUses,
		"usage_count": k.UsageCount,
		"created_at":  k.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":  k.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"last_used":   "",
	}
	if k.LastUsedAt != nil {
		h["last_used"] = k.LastUsedAt.UTC().Format(time.RFC3339Nano)
	}
	return h
}

func fromHash(name string, h map[string]string) (*model.AccessKey, error) {
	k := &model.AccessKey{Name: name, Secret: h["secret"]}

	var err error
	if k.ID, err = uuid.Parse(h["id"]); err != nil {
		return nil, fmt.Errorf("key %s: bad id: %w", name, err)
	}
	if k.MaxUses, err = strconv.Atoi(h["max_uses"]); err != nil {
		return nil, fmt.Errorf("key %s: bad max_uses: %w", name, err)
	}
	if k.UsageCount, err = strconv.Atoi(h["usage_count"]); err != nil {
		return nil, fmt.Errorf("key %s: bad usage_count: %w", name, err)
	}
	if k.CreatedAt, err = time.Parse(time.RFC3339Nano, h["created_at"]); err != nil {
		return nil, fmt.Errorf("key %s: bad created_at: %w", name, err)
	}
	if v := h["updated_at"]; v != "" {
		k.UpdatedAt, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v := h["last_used"]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("key %s: bad last_used: %w", name, err)
		}
		k.LastUsedAt = &t
	}
	return k, nil
}
