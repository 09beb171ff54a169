package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/langchou/teslog/internal/models"
)

// FilterByDateRange 从完整结果派生一个窗口内的结果，不重新分段也不改动原结果
// 行程/充电按开始时间落在 [start, end]（闭区间）内筛选，汇总和直方图从筛选子集重算
func FilterByDateRange(full *models.AnalysisResult, start, end time.Time) *models.AnalysisResult {
	out := full.Clone()

	var trips []models.Trip
	for _, t := range full.Trips {
		if !t.StartTime.Before(start) && !t.StartTime.After(end) {
			trips = append(trips, t.Clone())
		}
	}

	var sessions []models.ChargingSession
	for _, c := range full.ChargingSessions {
		if !c.StartTime.Before(start) && !c.StartTime.After(end) {
			sessions = append(sessions, c)
		}
	}

	metrics := Aggregate(trips, sessions)
	out.Summary = metrics.Summary
	out.Trips = trips
	out.ChargingSessions = sessions
	out.TripsByDay = metrics.TripsByDay
	out.TripsByHour = metrics.TripsByHour

	if len(trips) > 0 {
		// 原始行已经丢弃，里程跨度改从筛选后的行程自身取首末
		// 行程基本按时间排列，但合并后顺序无保证，这里重排一次
		sorted := make([]models.Trip, len(trips))
		copy(sorted, trips)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		})
		out.CarInfo.StartOdometer = sorted[0].StartOdometer
		out.CarInfo.EndOdometer = sorted[len(sorted)-1].EndOdometer

		// 天数按窗口长度向上取整，单日窗口恰好报 1 天
		spanMs := float64(end.UnixMilli() - start.UnixMilli())
		out.CarInfo.LogDurationDays = int(math.Ceil(spanMs / (1000 * 60 * 60 * 24)))
	} else {
		// 窗口内没有行程：里程跨度和天数显式归零，不沿用全量历史的旧值
		out.CarInfo.StartOdometer = 0
		out.CarInfo.EndOdometer = 0
		out.CarInfo.LogDurationDays = 0
	}

	return out
}
