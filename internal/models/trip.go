package models

import "time"

// Trip 行程记录
// 一段连续的"行驶"区间，由分段引擎从按时间排序的数据行中切出
type Trip struct {
	ID              int        `json:"id"` // 数组内 1 起始的连续编号，合并时按偏移重编
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	DurationMinutes float64    `json:"duration_minutes"`
	DistanceKm      float64    `json:"distance_km"`
	StartOdometer   float64    `json:"start_odometer"`
	EndOdometer     float64    `json:"end_odometer"`
	AvgSpeedKph     float64    `json:"avg_speed_kph"`
	MaxSpeedKph     float64    `json:"max_speed_kph"`
	StartBattery    float64    `json:"start_battery"`
	EndBattery      float64    `json:"end_battery"`
	EnergyUsedKwh   float64    `json:"energy_used_kwh"` // 可能为负（行驶中电量上升），不截断
	EfficiencyKwhKm float64    `json:"efficiency_kwh_km"`
	ClimateOnRatio  float64    `json:"climate_on_ratio"` // 0..1
	Path            []LatLon   `json:"path"`             // 降采样后的轨迹，至多 200 点
	AvgOutsideTempC *float64   `json:"avg_outside_temp_c,omitempty"`
}

// LatLon 轨迹点
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ChargingSession 充电记录
type ChargingSession struct {
	ID               int       `json:"id"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	DurationMinutes  float64   `json:"duration_minutes"`
	StartBattery     float64   `json:"start_battery"`
	EndBattery       float64   `json:"end_battery"`
	EnergyAddedKwh   float64   `json:"energy_added_kwh"`
	AvgChargePowerKw float64   `json:"avg_charge_power_kw"`
}
