package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB 数据库连接池封装
type DB struct {
	Pool *pgxpool.Pool
}

// New 创建数据库连接
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// 连接池配置
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// 测试连接
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close 关闭连接池
func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate 执行数据库迁移
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateLogFiles,
		migrationCreateAnalyses,
		migrationCreateSettings,
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

// 数据库迁移 SQL
const migrationCreateLogFiles = `
CREATE TABLE IF NOT EXISTS log_files (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(512) NOT NULL,
    size_mb DOUBLE PRECISION NOT NULL DEFAULT 0,
    row_count BIGINT NOT NULL DEFAULT 0,
    path TEXT NOT NULL,
    processed BOOLEAN NOT NULL DEFAULT false,
    uploaded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_log_files_name ON log_files(name);
CREATE INDEX IF NOT EXISTS idx_log_files_processed ON log_files(processed);
`

const migrationCreateAnalyses = `
CREATE TABLE IF NOT EXISTS analyses (
    vehicle_id TEXT PRIMARY KEY,
    result JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

const migrationCreateSettings = `
CREATE TABLE IF NOT EXISTS analysis_settings (
    id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    usable_battery_capacity_kwh DOUBLE PRECISION NOT NULL,
    trip_min_break_minutes DOUBLE PRECISION NOT NULL,
    power_threshold_kw DOUBLE PRECISION NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`
