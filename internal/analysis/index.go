package analysis

import (
	"sort"
	"sync"

	"github.com/langchou/teslog/internal/ingest"
	"github.com/langchou/teslog/internal/models"
)

// PeriodKey 复合键：车辆 + 时段（"YYYY-MM" 或 "YYYY-MM-DD"）
// 用扁平复合键代替嵌套 map，结构更简单也同样正确
type PeriodKey struct {
	VehicleID string
	Period    string
}

// SeriesIndex 多分辨率图表序列索引
// 按车、按车+月、按车+日三级分桶，随新文件处理增量维护
// 读取时各桶独立降采样到至多 1500 点
type SeriesIndex struct {
	mu       sync.RWMutex
	vehicles map[string][]models.Row
	months   map[PeriodKey][]models.Row
	days     map[PeriodKey][]models.Row
	dirty    map[string]bool // 车辆新增数据后待重排
}

// NewSeriesIndex 创建空索引
func NewSeriesIndex() *SeriesIndex {
	return &SeriesIndex{
		vehicles: make(map[string][]models.Row),
		months:   make(map[PeriodKey][]models.Row),
		days:     make(map[PeriodKey][]models.Row),
		dirty:    make(map[string]bool),
	}
}

// Add 追加一批归一化数据行，单趟折叠进三级分桶
func (idx *SeriesIndex) Add(rows []models.Row) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, row := range rows {
		vehicleID := ingest.VehicleKey(row)
		t := row.Time()
		month := t.Format("2006-01")
		day := t.Format("2006-01-02")

		idx.vehicles[vehicleID] = append(idx.vehicles[vehicleID], row)
		idx.months[PeriodKey{vehicleID, month}] = append(idx.months[PeriodKey{vehicleID, month}], row)
		idx.days[PeriodKey{vehicleID, day}] = append(idx.days[PeriodKey{vehicleID, day}], row)
		idx.dirty[vehicleID] = true
	}
}

// Reset 清空索引
func (idx *SeriesIndex) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vehicles = make(map[string][]models.Row)
	idx.months = make(map[PeriodKey][]models.Row)
	idx.days = make(map[PeriodKey][]models.Row)
	idx.dirty = make(map[string]bool)
}

// ensureSorted 惰性重排：只在车辆有新增数据后第一次读取时排序
func (idx *SeriesIndex) ensureSorted(vehicleID string) {
	if !idx.dirty[vehicleID] {
		return
	}
	ingest.SortRows(idx.vehicles[vehicleID])
	for key, rows := range idx.months {
		if key.VehicleID == vehicleID {
			ingest.SortRows(rows)
		}
	}
	for key, rows := range idx.days {
		if key.VehicleID == vehicleID {
			ingest.SortRows(rows)
		}
	}
	idx.dirty[vehicleID] = false
}

// Vehicle 车辆的全程序列，降采样后返回
func (idx *SeriesIndex) Vehicle(vehicleID string) []models.Row {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ensureSorted(vehicleID)
	return downsampleRows(idx.vehicles[vehicleID])
}

// Month 车辆某月（"YYYY-MM"）的序列
func (idx *SeriesIndex) Month(vehicleID, month string) []models.Row {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ensureSorted(vehicleID)
	return downsampleRows(idx.months[PeriodKey{vehicleID, month}])
}

// Day 车辆某日（"YYYY-MM-DD"）的序列
func (idx *SeriesIndex) Day(vehicleID, day string) []models.Row {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ensureSorted(vehicleID)
	return downsampleRows(idx.days[PeriodKey{vehicleID, day}])
}

// Months 车辆有数据的月份列表，升序
func (idx *SeriesIndex) Months(vehicleID string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var months []string
	for key := range idx.months {
		if key.VehicleID == vehicleID {
			months = append(months, key.Period)
		}
	}
	sort.Strings(months)
	return months
}

// Days 车辆某月内有数据的日期列表，升序
func (idx *SeriesIndex) Days(vehicleID, month string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var days []string
	for key := range idx.days {
		if key.VehicleID == vehicleID && len(key.Period) >= len(month) && key.Period[:len(month)] == month {
			days = append(days, key.Period)
		}
	}
	sort.Strings(days)
	return days
}
