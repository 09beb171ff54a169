package analysis

import (
	"time"

	"github.com/langchou/teslog/internal/models"
)

// Metrics 汇总统计和直方图，总是一起计算
type Metrics struct {
	Summary     models.Summary
	TripsByDay  map[string]int
	TripsByHour [24]int
}

// Aggregate 纯函数：从行程/充电数组归约出汇总统计
// 幂等，同样输入永远给出同样结果；只要手头有完整数组就应当重算而不是增量修补
func Aggregate(trips []models.Trip, sessions []models.ChargingSession) Metrics {
	var totalDistance, totalMinutes, totalEnergy, weightedClimate, maxSpeed float64
	for _, t := range trips {
		totalDistance += t.DistanceKm
		totalMinutes += t.DurationMinutes
		totalEnergy += t.EnergyUsedKwh
		weightedClimate += t.ClimateOnRatio * t.DurationMinutes
		if t.MaxSpeedKph > maxSpeed {
			maxSpeed = t.MaxSpeedKph
		}
	}

	var totalAdded float64
	for _, c := range sessions {
		totalAdded += c.EnergyAddedKwh
	}

	summary := models.Summary{
		TotalTrips:              len(trips),
		TotalDistanceKm:         totalDistance,
		TotalDrivingTimeMinutes: totalMinutes,
		TotalEnergyConsumedKwh:  totalEnergy,
		TotalChargingSessions:   len(sessions),
		TotalEnergyAddedKwh:     totalAdded,
		MaxSpeedEverKph:         maxSpeed,
		TotalClimateOnRatio:     weightedClimate / orOne(totalMinutes),
	}
	if totalDistance > 0 {
		summary.OverallAvgSpeedKph = totalDistance / (totalMinutes / 60)
		summary.OverallEfficiencyKwhKm = totalEnergy / totalDistance
	}
	if len(trips) > 0 {
		summary.AvgTripDistanceKm = totalDistance / float64(len(trips))
	}

	// 星期直方图用 UTC（稳定的全球日历帧）
	// 小时直方图用本地时间（"我一般几点开车"语义），两者刻意不一致
	byDay := make(map[string]int)
	var byHour [24]int
	for _, t := range trips {
		day := t.StartTime.UTC().Weekday().String()[:3]
		byDay[day]++
		byHour[t.StartTime.In(time.Local).Hour()]++
	}

	return Metrics{Summary: summary, TripsByDay: byDay, TripsByHour: byHour}
}

// orOne 除零保护：0 用 1 代替作分母
func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
