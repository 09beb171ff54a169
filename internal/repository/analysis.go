package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/langchou/teslog/internal/models"
)

// AnalysisRepository 已提交分析结果仓库
// 每辆车一行，结果整体存 JSONB；这是批次间唯一的长期状态
type AnalysisRepository struct {
	db *DB
}

// NewAnalysisRepository 创建分析结果仓库
func NewAnalysisRepository(db *DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save 提交（覆盖）一辆车的分析结果
func (r *AnalysisRepository) Save(ctx context.Context, result *models.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}

	query := `
		INSERT INTO analyses (vehicle_id, result, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (vehicle_id) DO UPDATE SET result = EXCLUDED.result, updated_at = NOW()
	`
	if _, err := r.db.Pool.Exec(ctx, query, result.CarInfo.ID, data); err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// SaveAll 提交一组结果
func (r *AnalysisRepository) SaveAll(ctx context.Context, results []*models.AnalysisResult) error {
	for _, result := range results {
		if err := r.Save(ctx, result); err != nil {
			return err
		}
	}
	return nil
}

// GetByVehicleID 读取一辆车的结果
func (r *AnalysisRepository) GetByVehicleID(ctx context.Context, vehicleID string) (*models.AnalysisResult, error) {
	var data []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT result FROM analyses WHERE vehicle_id = $1`, vehicleID).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	result := &models.AnalysisResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("unmarshal analysis result: %w", err)
	}
	return result, nil
}

// List 全部车辆的结果，按车辆 id 排序
func (r *AnalysisRepository) List(ctx context.Context) ([]*models.AnalysisResult, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT result FROM analyses ORDER BY vehicle_id`)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var results []*models.AnalysisResult
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		result := &models.AnalysisResult{}
		if err := json.Unmarshal(data, result); err != nil {
			return nil, fmt.Errorf("unmarshal analysis result: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}

// DeleteAll 清空所有结果（重新分析前调用）
func (r *AnalysisRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM analyses`); err != nil {
		return fmt.Errorf("delete analyses: %w", err)
	}
	return nil
}
