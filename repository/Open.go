package repository

import (
	"fmt"

	"go.uber.org/zap"

	"keyportal/util"
)

// Open builds the repository selected by cfg.StoreDriver. The returned close
// function releases the underlying connection.
func Open(cfg *util.Config, log *zap.Logger) (AccessKeyRepository, func() error, error) {
	switch cfg.StoreDriver {
	case util.StoreDriverMemory:
		return NewInMemoryAccessKeyRepo(), func() error { return nil }, nil

	case util.StoreDriverRedis:
		rdb, err := util.InitRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisAccessKeyRepository(rdb), rdb.Close, nil

	case util.StoreDriverPostgres:
		db, err := util.InitDB(cfg.DB, log)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return NewAccessKeyRepository(db), sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
