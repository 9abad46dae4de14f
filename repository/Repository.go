package repository

import (
	"errors"
	"time"

	"keyportal/model"
)

var (
	ErrKeyNotFound       = errors.New("key not found")
	ErrKeyExists         = errors.New("key already exists")
	ErrUsageLimitReached = errors.New("key has reached its usage limit")
)

// AccessKeyRepository stores access keys by their user-facing name.
type AccessKeyRepository interface {
	Create(key *model.AccessKey) error
	GetByName(name string) (*model.AccessKey, error)
	List() ([]model.AccessKey, error)
	// Update overwrites secret, limits and usage of the key with the same name.
	Update(key *model.AccessKey) error
	// ConsumeUse atomically takes one use if any is left and returns the updated key.
	ConsumeUse(name string, at time.Time) (*model.AccessKey, error)
	Delete(name string) error
}
