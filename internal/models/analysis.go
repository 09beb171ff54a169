package models

import "time"

// Summary 汇总统计
// 永远从 trips/chargingSessions 数组重新计算，不单独维护
type Summary struct {
	TotalTrips              int     `json:"total_trips"`
	TotalDistanceKm         float64 `json:"total_distance_km"`
	TotalDrivingTimeMinutes float64 `json:"total_driving_time_minutes"`
	OverallAvgSpeedKph      float64 `json:"overall_avg_speed_kph"`
	TotalEnergyConsumedKwh  float64 `json:"total_energy_consumed_kwh"`
	OverallEfficiencyKwhKm  float64 `json:"overall_efficiency_kwh_km"`
	TotalChargingSessions   int     `json:"total_charging_sessions"`
	TotalEnergyAddedKwh     float64 `json:"total_energy_added_kwh"`
	TotalClimateOnRatio     float64 `json:"total_climate_on_ratio"` // 按行驶时长加权
	MaxSpeedEverKph         float64 `json:"max_speed_ever_kph"`
	AvgTripDistanceKm       float64 `json:"avg_trip_distance_km"`
}

// CarInfo 车辆描述信息，按批次从原始数据行提取
type CarInfo struct {
	ID                       string   `json:"id"` // VehicleKey
	UsableBatteryCapacityKwh float64  `json:"usable_battery_capacity_kwh"`
	StartOdometer            float64  `json:"start_odometer"`
	EndOdometer              float64  `json:"end_odometer"`
	LogDurationDays          int      `json:"log_duration_days"`
	VIN                      string   `json:"vin,omitempty"`
	VehicleName              string   `json:"vehicle_name,omitempty"`
	SoftwareVersion          string   `json:"software_version,omitempty"`
	CarType                  string   `json:"car_type,omitempty"`
	BatteryType              string   `json:"battery_type,omitempty"`
	AvgOutsideTempC          *float64 `json:"avg_outside_temp_c,omitempty"`
	AvgInsideTempC           *float64 `json:"avg_inside_temp_c,omitempty"`
	StartRatedRangeKm        *float64 `json:"start_rated_range_km,omitempty"`
	EndRatedRangeKm          *float64 `json:"end_rated_range_km,omitempty"`
}

// DateRange 分析覆盖的时间范围
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AnalysisResult 单车分析结果
// 每个批次新建一份，再由合并引擎折叠进长期结果
type AnalysisResult struct {
	Summary          Summary           `json:"summary"`
	Trips            []Trip            `json:"trips"`
	ChargingSessions []ChargingSession `json:"charging_sessions"`
	TripsByDay       map[string]int    `json:"trips_by_day"` // 三字母星期缩写 -> 次数
	TripsByHour      [24]int           `json:"trips_by_hour"`
	CarInfo          CarInfo           `json:"car_info"`
	DateRange        DateRange         `json:"date_range"`
	UniqueMonths     []string          `json:"unique_months"` // "YYYY-MM"
	FileInfo         FileInfo          `json:"file_info"`
}

// AnalysisSettings 分段参数
type AnalysisSettings struct {
	UsableBatteryCapacityKwh float64 `json:"usable_battery_capacity_kwh"`
	TripMinBreakMinutes      float64 `json:"trip_min_break_minutes"`
	PowerThresholdKw         float64 `json:"power_threshold_kw"`
}

// DefaultAnalysisSettings 默认分段参数
func DefaultAnalysisSettings() AnalysisSettings {
	return AnalysisSettings{
		UsableBatteryCapacityKwh: 100,
		TripMinBreakMinutes:      3,
		PowerThresholdKw:         0.1,
	}
}
