package analysis

import (
	"sort"

	"github.com/langchou/teslog/internal/models"
)

// Analyze 对单车按时间升序的数据行做完整分析，产出一个批次的结果
// rows 为空时返回 nil
func Analyze(rows []models.Row, settings models.AnalysisSettings, fileInfo models.FileInfo, vehicleID string) *models.AnalysisResult {
	if len(rows) == 0 {
		return nil
	}

	trips, sessions := Segment(rows, settings)
	metrics := Aggregate(trips, sessions)

	// 按出现顺序收集月份；行已按时间升序，所以天然有序
	var months []string
	seen := make(map[string]bool)
	for _, r := range rows {
		m := r.Time().Format("2006-01")
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}

	return &models.AnalysisResult{
		Summary:          metrics.Summary,
		Trips:            trips,
		ChargingSessions: sessions,
		TripsByDay:       metrics.TripsByDay,
		TripsByHour:      metrics.TripsByHour,
		CarInfo:          ExtractCarInfo(rows, vehicleID, settings),
		DateRange: models.DateRange{
			Start: rows[0].Time(),
			End:   rows[len(rows)-1].Time(),
		},
		UniqueMonths: months,
		FileInfo:     fileInfo,
	}
}

// AnalyzeVehicles 对已按车分组的数据行逐车分析
// 每辆车得到更具体的 fileInfo：文件名后缀车辆标识，行数取该车行数
func AnalyzeVehicles(byVehicle map[string][]models.Row, settings models.AnalysisSettings, fileInfo models.FileInfo) []*models.AnalysisResult {
	vehicleIDs := make([]string, 0, len(byVehicle))
	for id := range byVehicle {
		vehicleIDs = append(vehicleIDs, id)
	}
	sort.Strings(vehicleIDs)

	var results []*models.AnalysisResult
	for _, vehicleID := range vehicleIDs {
		rows := byVehicle[vehicleID]
		if len(rows) == 0 {
			continue
		}
		vehicleFileInfo := models.FileInfo{
			Name:   fileInfo.Name + " - " + vehicleID,
			SizeMb: 0, // 单车占比无法准确拆分
			Rows:   len(rows),
		}
		if result := Analyze(rows, settings, vehicleFileInfo, vehicleID); result != nil {
			results = append(results, result)
		}
	}

	return results
}
