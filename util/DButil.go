package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"keyportal/model"
)

// InitDB connects to Postgres, creating the database on first run, and migrates the schema.
func InitDB(cfg DBConfig, log *zap.Logger) (*gorm.DB, error) {
	// 1. BOOTSTRAP: CREATE DATABASE IF NOT EXISTS
	tempDB, err := gorm.Open(postgres.Open(cfg.DSN("postgres")), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres instance: %w", err)
	}

	var exists bool
	if err := tempDB.Raw("SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = ?)", cfg.Name).
		Scan(&exists).Error; err != nil {
		return nil, fmt.Errorf("failed to check database: %w", err)
	}

	if !exists {
		log.Info("database not found, creating", zap.String("db", cfg.Name))
		if err := tempDB.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.Name)).Error; err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	if sqlDB, err := tempDB.DB(); err == nil {
		sqlDB.Close()
	}

	// 2. CONNECT TO APP DATABASE
	db, err := gorm.Open(postgres.Open(cfg.DSN(cfg.Name)), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to application database: %w", err)
	}

	// 3. AUTO MIGRATE
	log.Info("running AutoMigrate")
	if err := db.AutoMigrate(&model.AccessKey{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	// 4. CONFIGURE CONNECTION POOL
	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB object: %w", err)
	}
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(25)
	pool.SetConnMaxLifetime(30 * time.Minute)

	log.Info("database connected, migrated, and pool configured", zap.String("db", cfg.Name))
	return db, nil
}

// InitRedis opens a client and pings it once.
func InitRedis(cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}
