package analysis

import "github.com/langchou/teslog/internal/models"

const (
	// 单条行程轨迹的最大保留点数
	maxTripPathPoints = 200
	// 图表序列（全程/按月/按日桶）的最大保留点数
	maxSeriesPoints = 1500
)

// downsamplePath 固定步长子采样：每桶保留第一个点，不做插值或平均
func downsamplePath(path []models.LatLon) []models.LatLon {
	if len(path) <= maxTripPathPoints {
		return path
	}
	bucketSize := (len(path) + maxTripPathPoints - 1) / maxTripPathPoints
	result := make([]models.LatLon, 0, maxTripPathPoints)
	for i := 0; i < len(path); i += bucketSize {
		result = append(result, path[i])
	}
	return result
}

// downsampleRows 同样的固定步长子采样，用于图表序列
func downsampleRows(rows []models.Row) []models.Row {
	if len(rows) <= maxSeriesPoints {
		return rows
	}
	bucketSize := (len(rows) + maxSeriesPoints - 1) / maxSeriesPoints
	result := make([]models.Row, 0, maxSeriesPoints)
	for i := 0; i < len(rows); i += bucketSize {
		result = append(result, rows[i])
	}
	return result
}
