package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/langchou/teslog/internal/models"
)

// RequiredColumns CSV 必须包含的列（归一化后的列名）
var RequiredColumns = []string{
	"date", "battery_level", "speed", "power", "odometer",
	"latitude", "longitude", "charger_power",
}

// Result 单个文件的解析结果
type Result struct {
	Rows    []models.Row
	Total   int // 数据行总数（不含表头）
	Dropped int // 因日期不可解析被丢弃的行数
}

var headerSpaces = regexp.MustCompile(`\s+`)

// normalizeHeader 列名归一化：去空白、小写、空格转下划线
func normalizeHeader(h string) string {
	return headerSpaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
}

// 日志里常见的几种时间格式，按顺序尝试
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "on":
		return true
	}
	return false
}

// ParseCSV 读取一个遥测 CSV 文件并产出归一化数据行
// 缺少必需列时返回错误并指明文件名和缺失列；日期不可解析的行被丢弃
func ParseCSV(r io.Reader, filename string) (*Result, error) {
	reader := csv.NewReader(r)
	// 允许变长记录，避免个别行缺少尾部可选字段时报错
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("file %q is empty", filename)
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	headerMap := make(map[string]int, len(headers))
	for i, h := range headers {
		headerMap[normalizeHeader(h)] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := headerMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("file %q is missing required columns: %s", filename, strings.Join(missing, ", "))
	}

	result := &Result{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Total++
			result.Dropped++
			continue
		}
		result.Total++

		row, ok := parseRecord(record, headerMap)
		if !ok {
			result.Dropped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// parseRecord 解析单行。返回 false 表示日期不可用，整行丢弃
func parseRecord(record []string, headerMap map[string]int) (models.Row, bool) {
	get := func(col string) string {
		if idx, ok := headerMap[col]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}
	getFloat := func(col string) float64 {
		v, err := strconv.ParseFloat(get(col), 64)
		if err != nil {
			return 0
		}
		return v
	}
	getOptFloat := func(col string) *float64 {
		v, err := strconv.ParseFloat(get(col), 64)
		if err != nil {
			return nil
		}
		return &v
	}

	ts, ok := parseDate(get("date"))
	if !ok {
		return models.Row{}, false
	}

	return models.Row{
		Timestamp:       ts.UnixMilli(),
		Latitude:        getFloat("latitude"),
		Longitude:       getFloat("longitude"),
		BatteryLevel:    getFloat("battery_level"),
		SpeedKph:        getFloat("speed"),
		PowerKw:         getFloat("power"),
		OdometerKm:      getFloat("odometer"),
		ChargerPowerKw:  getFloat("charger_power"),
		ClimateOn:       parseBool(get("climate_on")),
		IsCharging:      parseBool(get("is_charging")),
		OutsideTemp:     getOptFloat("outside_temp"),
		InsideTemp:      getOptFloat("inside_temp"),
		RatedRangeKm:    getOptFloat("rated_range_km"),
		VIN:             get("vin"),
		VehicleName:     get("vehicle_name"),
		DisplayName:     get("display_name"),
		SoftwareVersion: get("software_version"),
		CarVersion:      get("car_version"),
		CarType:         get("car_type"),
		BatteryType:     get("battery_type"),
	}, true
}
