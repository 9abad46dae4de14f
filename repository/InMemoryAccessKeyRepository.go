package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"keyportal/model"
)

type memAccessKeyRepo struct {
	mu   sync.Mutex
	keys map[string]model.AccessKey
}

// NewInMemoryAccessKeyRepo keeps keys in process memory; used for local runs and tests.
func NewInMemoryAccessKeyRepo() AccessKeyRepository {
	return &memAccessKeyRepo{keys: make(map[string]model.AccessKey)}
}

func (r *memAccessKeyRepo) Create(key *model.AccessKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[key.Name]; ok {
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
	r.keys[key.Name] = *key
	return nil
}

func (r *memAccessKeyRepo) GetByName(name string) (*model.AccessKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[name]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return &k, nil
}

func (r *memAccessKeyRepo) List() ([]model.AccessKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.AccessKey, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memAccessKeyRepo) Update(key *model.AccessKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[key.Name]
	if !ok {
		return ErrKeyNotFound
	}
	k.Secret = key.Secret
	k.MaxUses = key.MaxUses
	k.UsageCount = key.UsageCount
	k.LastUsedAt = key.LastUsedAt
	k.UpdatedAt = time.Now().UTC()
	r.keys[key.Name] = k
	return nil
}

func (r *memAccessKeyRepo) ConsumeUse(name string, at time.Time) (*model.AccessKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.keys[name]
	if !ok {
		return nil, ErrKeyNotFound
	}
	if !k.IsValid() {
		return &k, ErrUsageLimitReached
	}
	k.UsageCount++
	used := at.UTC()
	k.LastUsedAt = &used
	k.UpdatedAt = used
	r.keys[name] = k
	return &k, nil
}

func (r *memAccessKeyRepo) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[name]; !ok {
		return ErrKeyNotFound
	}
	delete(r.keys, name)
	return nil
}
