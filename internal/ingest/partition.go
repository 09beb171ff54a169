package ingest

import (
	"sort"

	"github.com/langchou/teslog/internal/models"
)

const (
	unknownVIN  = "unknown_vin"
	unknownName = "Unknown Vehicle"
)

// VehicleKey 车辆身份标识：VIN + 车名
// 两行属于同一辆车当且仅当该字符串完全相等（区分大小写）
func VehicleKey(row models.Row) string {
	vin := row.VIN
	if vin == "" {
		vin = unknownVIN
	}
	name := row.VehicleName
	if name == "" {
		name = row.DisplayName
	}
	if name == "" {
		name = unknownName
	}
	return vin + "-" + name
}

// PartitionByVehicle 按 VehicleKey 分组，并保证每组按时间稳定升序
// 多车混合的日志文件由此拆成独立的分析输入
func PartitionByVehicle(rows []models.Row) map[string][]models.Row {
	byVehicle := make(map[string][]models.Row)
	for _, row := range rows {
		key := VehicleKey(row)
		byVehicle[key] = append(byVehicle[key], row)
	}
	for _, vehicleRows := range byVehicle {
		SortRows(vehicleRows)
	}
	return byVehicle
}

// SortRows 按时间稳定升序排序，每次批次合并后都要重新应用
func SortRows(rows []models.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Timestamp < rows[j].Timestamp
	})
}
