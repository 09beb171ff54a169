package analysis

import (
	"math"
	"sort"

	"github.com/langchou/teslog/internal/models"
)

// Merge 把一个批次的单车结果折叠进现有结果，不回放原始历史
// current 为 nil 时批次直接成为长期结果
// 返回值是新的结果图，current 本身不被修改
func Merge(current, batch *models.AnalysisResult) *models.AnalysisResult {
	if current == nil {
		return batch
	}

	out := current.Clone()

	// 汇总：和相加、最大值取大，比率类字段从新的总量重新计算，绝不直接相加
	batchMinutes := batch.Summary.TotalDrivingTimeMinutes
	totalMinutes := out.Summary.TotalDrivingTimeMinutes + batchMinutes
	out.Summary.TotalTrips += batch.Summary.TotalTrips
	out.Summary.TotalDistanceKm += batch.Summary.TotalDistanceKm
	out.Summary.TotalDrivingTimeMinutes = totalMinutes
	out.Summary.TotalEnergyConsumedKwh += batch.Summary.TotalEnergyConsumedKwh
	out.Summary.TotalChargingSessions += batch.Summary.TotalChargingSessions
	out.Summary.TotalEnergyAddedKwh += batch.Summary.TotalEnergyAddedKwh
	out.Summary.MaxSpeedEverKph = math.Max(out.Summary.MaxSpeedEverKph, batch.Summary.MaxSpeedEverKph)
	if out.Summary.TotalDistanceKm > 0 {
		out.Summary.OverallEfficiencyKwhKm = out.Summary.TotalEnergyConsumedKwh / out.Summary.TotalDistanceKm
	} else {
		out.Summary.OverallEfficiencyKwhKm = 0
	}
	if out.Summary.TotalTrips > 0 {
		out.Summary.AvgTripDistanceKm = out.Summary.TotalDistanceKm / float64(out.Summary.TotalTrips)
	} else {
		out.Summary.AvgTripDistanceKm = 0
	}
	// 空调占比按行驶时长加权平均
	out.Summary.TotalClimateOnRatio = (out.Summary.TotalClimateOnRatio*(totalMinutes-batchMinutes) +
		batch.Summary.TotalClimateOnRatio*batchMinutes) / orOne(totalMinutes)

	// 行程/充电数组：批次 id 加偏移后追加，不按开始时间重排
	// 合并后的时序由需要的调用方自行重排
	tripOffset := len(out.Trips)
	for _, t := range batch.Trips {
		merged := t.Clone()
		merged.ID = t.ID + tripOffset
		out.Trips = append(out.Trips, merged)
	}
	chargeOffset := len(out.ChargingSessions)
	for _, c := range batch.ChargingSessions {
		c.ID += chargeOffset
		out.ChargingSessions = append(out.ChargingSessions, c)
	}

	// 直方图逐项相加
	for day, count := range batch.TripsByDay {
		out.TripsByDay[day] += count
	}
	for hour, count := range batch.TripsByHour {
		out.TripsByHour[hour] += count
	}

	// 里程跨度按 min/max 扩展，假定批次区间重叠或相邻
	out.CarInfo.StartOdometer = math.Min(out.CarInfo.StartOdometer, batch.CarInfo.StartOdometer)
	out.CarInfo.EndOdometer = math.Max(out.CarInfo.EndOdometer, batch.CarInfo.EndOdometer)

	// 时间范围扩展，日志天数从扩展后的范围重新计算而不是相加
	if batch.DateRange.Start.Before(out.DateRange.Start) {
		out.DateRange.Start = batch.DateRange.Start
	}
	if batch.DateRange.End.After(out.DateRange.End) {
		out.DateRange.End = batch.DateRange.End
	}
	spanMs := float64(out.DateRange.End.UnixMilli() - out.DateRange.Start.UnixMilli())
	out.CarInfo.LogDurationDays = int(math.Round(spanMs / (1000 * 60 * 60 * 24)))

	// 月份做集合并后重排，"YYYY-MM" 字符串序即时间序
	monthSet := make(map[string]bool, len(out.UniqueMonths)+len(batch.UniqueMonths))
	for _, m := range out.UniqueMonths {
		monthSet[m] = true
	}
	for _, m := range batch.UniqueMonths {
		monthSet[m] = true
	}
	out.UniqueMonths = out.UniqueMonths[:0]
	for m := range monthSet {
		out.UniqueMonths = append(out.UniqueMonths, m)
	}
	sort.Strings(out.UniqueMonths)

	return out
}

// MergeAll 按车辆 id 对齐后逐车合并
// 批次里没见过的车直接采用批次结果；批次为空时现有结果原样返回
func MergeAll(current, batch []*models.AnalysisResult) []*models.AnalysisResult {
	if len(current) == 0 {
		return batch
	}

	byVehicle := make(map[string]*models.AnalysisResult, len(current))
	order := make([]string, 0, len(current)+len(batch))
	for _, a := range current {
		byVehicle[a.CarInfo.ID] = a
		order = append(order, a.CarInfo.ID)
	}

	for _, b := range batch {
		id := b.CarInfo.ID
		if existing, ok := byVehicle[id]; ok {
			byVehicle[id] = Merge(existing, b)
		} else {
			byVehicle[id] = b
			order = append(order, id)
		}
	}

	out := make([]*models.AnalysisResult, 0, len(order))
	for _, id := range order {
		out = append(out, byVehicle[id])
	}
	return out
}
