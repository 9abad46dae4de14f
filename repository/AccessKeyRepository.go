package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"keyportal/model"
	"keyportal/util"
)

type pgAccessKeyRepo struct {
	db *gorm.DB
}

func NewAccessKeyRepository(db *gorm.DB) AccessKeyRepository {
	return &pgAccessKeyRepo{db: db}
}

func (r *pgAccessKeyRepo) Create(key *model.AccessKey) error {
	if err := r.db.Create(key).Error; err != nil {
		if util.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrKeyExists, key.Name)
		}
		return err
	}
	return nil
}

func (r *pgAccessKeyRepo) GetByName(name string) (*model.AccessKey, error) {
	var k model.AccessKey
	if err := r.db.Where("name = ?", name).First(&k).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return &k, nil
}

func (r *pgAccessKeyRepo) List() ([]model.AccessKey, error) {
	var keys []model.AccessKey
	if err := r.db.Order("name").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *pgAccessKeyRepo) Update(key *model.AccessKey) error {
	res := r.db.Model(&model.AccessKey{}).
		Where("name = ?", key.Name).
		Updates(map[string]interface{}{
			"secret":       key.Secret,
			"max_uses":     key.MaxUses,
			"usage_count":  key.UsageCount,
			"last_used_at": key.LastUsedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}

// ConsumeUse relies on a conditional UPDATE so two concurrent requests cannot both take the last use.
func (r *pgAccessKeyRepo) ConsumeUse(name string, at time.Time) (*model.AccessKey, error) {
	res := r.db.Model(&model.AccessKey{}).
		Where("name = ? AND (max_uses = ? OR usage_count < max_uses)", name, model.UnlimitedUses).
		Updates(map[string]interface{}{
			"usage_count":  gorm.Expr("usage_count + 1"),
			"last_used_at": at,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	key, err := r.GetByName(name)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return key, ErrUsageLimitReached
	}
	return key, nil
}

func (r *pgAccessKeyRepo) Delete(name string) error {
	res := r.db.Where("name = ?", name).Delete(&model.AccessKey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}
