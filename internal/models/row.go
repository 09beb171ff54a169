package models

import "time"

// Row 归一化后的遥测数据行
// 由 ingest 层从 CSV 解析产生，时间戳保证有效，数值字段保证可用
type Row struct {
	Timestamp      int64   `json:"timestamp"` // epoch 毫秒
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	BatteryLevel   float64 `json:"battery_level"` // %
	SpeedKph       float64 `json:"speed"`         // km/h
	PowerKw        float64 `json:"power"`         // kW，负值=净放电
	OdometerKm     float64 `json:"odometer"`      // km
	ChargerPowerKw float64 `json:"charger_power"` // kW
	ClimateOn      bool    `json:"climate_on"`
	IsCharging     bool    `json:"is_charging"`

	// 可选字段，日志里不一定出现
	OutsideTemp  *float64 `json:"outside_temp,omitempty"` // °C
	InsideTemp   *float64 `json:"inside_temp,omitempty"`  // °C
	RatedRangeKm *float64 `json:"rated_range_km,omitempty"`

	// 车辆描述字段，通常只在部分行出现
	VIN             string `json:"vin,omitempty"`
	VehicleName     string `json:"vehicle_name,omitempty"`
	DisplayName     string `json:"display_name,omitempty"`
	SoftwareVersion string `json:"software_version,omitempty"`
	CarVersion      string `json:"car_version,omitempty"`
	CarType         string `json:"car_type,omitempty"`
	BatteryType     string `json:"battery_type,omitempty"`
}

// Time 行的时间
func (r Row) Time() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}

// FileInfo 输入文件描述，原样附在分析结果上用于展示来源
type FileInfo struct {
	Name   string  `json:"name"`
	SizeMb float64 `json:"size_mb"`
	Rows   int     `json:"rows"`
}
