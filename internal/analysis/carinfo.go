package analysis

import (
	"math"

	"github.com/langchou/teslog/internal/models"
)

// ExtractCarInfo 从一个批次的全部原始数据行提取车辆描述信息
// 字符串字段取第一次出现的非空值，后续出现忽略
func ExtractCarInfo(rows []models.Row, vehicleID string, settings models.AnalysisSettings) models.CarInfo {
	info := models.CarInfo{
		ID:                       vehicleID,
		UsableBatteryCapacityKwh: settings.UsableBatteryCapacityKwh,
	}

	outsideTemps := make([]*float64, 0, len(rows))
	insideTemps := make([]*float64, 0, len(rows))
	ratedRanges := make([]*float64, 0, len(rows))
	for _, r := range rows {
		if info.VIN == "" {
			info.VIN = r.VIN
		}
		if info.VehicleName == "" {
			info.VehicleName = firstNonEmpty(r.VehicleName, r.DisplayName)
		}
		if info.SoftwareVersion == "" {
			info.SoftwareVersion = firstNonEmpty(r.SoftwareVersion, r.CarVersion)
		}
		if info.CarType == "" {
			info.CarType = r.CarType
		}
		if info.BatteryType == "" {
			info.BatteryType = r.BatteryType
		}
		outsideTemps = append(outsideTemps, r.OutsideTemp)
		insideTemps = append(insideTemps, r.InsideTemp)
		ratedRanges = append(ratedRanges, r.RatedRangeKm)
	}

	info.AvgOutsideTempC = meanFinite(outsideTemps)
	info.AvgInsideTempC = meanFinite(insideTemps)
	// 额定续航取首末出现的有限值，语义是起始/结束续航而非最小/最大
	info.StartRatedRangeKm = firstFinite(ratedRanges)
	info.EndRatedRangeKm = lastFinite(ratedRanges)

	// 里程跨度取首末两条 odometer > 0 的行，防止开头/结尾的零读数破坏跨度
	for _, r := range rows {
		if r.OdometerKm > 0 {
			info.StartOdometer = r.OdometerKm
			break
		}
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].OdometerKm > 0 {
			info.EndOdometer = rows[i].OdometerKm
			break
		}
	}

	if len(rows) > 1 {
		spanMs := float64(rows[len(rows)-1].Timestamp - rows[0].Timestamp)
		info.LogDurationDays = int(math.Round(spanMs / (1000 * 60 * 60 * 24)))
	}

	return info
}
