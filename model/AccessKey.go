package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnlimitedUses marks a key that never runs out.
const UnlimitedUses = -1

type AccessKey struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"size:255;not null;uniqueIndex"` // the key the user types in
	Secret     string    `gorm:"size:128;not null"`             // base32 TOTP secret
	MaxUses    int       `gorm:"not null;default:1"`
	UsageCount int       `gorm:"not null;default:0"`
	LastUsedAt *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (k *AccessKey) BeforeCreate(_ *gorm.DB) (err error) {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return
}

func (k *AccessKey) Unlimited() bool {
	return k.MaxUses == UnlimitedUses
}

// IsValid reports whether the key can still issue a code.
func (k *AccessKey) IsValid() bool {
	return k.Unlimited() || k.UsageCount < k.MaxUses
}

// RemainingUses is meaningless for unlimited keys; callers check Unlimited first.
func (k *AccessKey) RemainingUses() int {
	if k.Unlimited() {
		return UnlimitedUses
	}
	if r := k.MaxUses - k.UsageCount; r > 0 {
		return r
	}
	return 0
}

func (k *AccessKey) Status() KeyStatus {
	switch {
	case k.Unlimited():
		return KeyStatusUnlimited
	case k.RemainingUses() == 0:
		return KeyStatusDepleted
	case k.RemainingUses() == 1:
		return KeyStatusLow
	default:
		return KeyStatusActive
	}
}
