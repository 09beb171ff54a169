package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/langchou/teslog/internal/models"
)

// SettingsRepository 分段参数仓库，单行表
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository 创建设置仓库
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get 读取设置；没有持久化过时返回 fallback
func (r *SettingsRepository) Get(ctx context.Context, fallback models.AnalysisSettings) (models.AnalysisSettings, error) {
	var s models.AnalysisSettings
	err := r.db.Pool.QueryRow(ctx, `
		SELECT usable_battery_capacity_kwh, trip_min_break_minutes, power_threshold_kw
		FROM analysis_settings WHERE id = 1
	`).Scan(&s.UsableBatteryCapacityKwh, &s.TripMinBreakMinutes, &s.PowerThresholdKw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fallback, nil
		}
		return fallback, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// Save 保存设置
func (r *SettingsRepository) Save(ctx context.Context, s models.AnalysisSettings) error {
	query := `
		INSERT INTO analysis_settings (id, usable_battery_capacity_kwh, trip_min_break_minutes, power_threshold_kw, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			usable_battery_capacity_kwh = EXCLUDED.usable_battery_capacity_kwh,
			trip_min_break_minutes = EXCLUDED.trip_min_break_minutes,
			power_threshold_kw = EXCLUDED.power_threshold_kw,
			updated_at = NOW()
	`
	if _, err := r.db.Pool.Exec(ctx, query, s.UsableBatteryCapacityKwh, s.TripMinBreakMinutes, s.PowerThresholdKw); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
