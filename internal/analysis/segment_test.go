package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/langchou/teslog/internal/models"
)

var testBase = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC) // 周一

// rowAt 构造第 minute 分钟的一条数据行
func rowAt(minute int, mutate func(*models.Row)) models.Row {
	r := models.Row{
		Timestamp: testBase.Add(time.Duration(minute) * time.Minute).UnixMilli(),
		Latitude:  31.2,
		Longitude: 121.5,
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func idleRow(minute int) models.Row {
	return rowAt(minute, nil)
}

func drivingRow(minute int, speed, odo, battery float64) models.Row {
	return rowAt(minute, func(r *models.Row) {
		r.SpeedKph = speed
		r.OdometerKm = odo
		r.BatteryLevel = battery
	})
}

func chargingRow(minute int, power, battery float64) models.Row {
	return rowAt(minute, func(r *models.Row) {
		r.ChargerPowerKw = power
		r.BatteryLevel = battery
	})
}

func TestSegmentBasicTrip(t *testing.T) {
	settings := models.DefaultAnalysisSettings()
	rows := []models.Row{
		idleRow(0),
		drivingRow(1, 40, 1000.0, 80),
		drivingRow(2, 60, 1002.5, 77.5),
		drivingRow(3, 55, 1005.0, 75),
		idleRow(4),
	}

	trips, sessions := Segment(rows, settings)
	if len(sessions) != 0 {
		t.Fatalf("expected no charging sessions, got %d", len(sessions))
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}

	trip := trips[0]
	if trip.ID != 1 {
		t.Fatalf("expected trip id 1, got %d", trip.ID)
	}
	if trip.DistanceKm != 5.0 {
		t.Fatalf("expected distance 5.0, got %v", trip.DistanceKm)
	}
	if trip.DurationMinutes != 2.0 {
		t.Fatalf("expected duration 2.0, got %v", trip.DurationMinutes)
	}
	if trip.EnergyUsedKwh != 5.0 {
		t.Fatalf("expected energy 5.0, got %v", trip.EnergyUsedKwh)
	}
	if trip.EfficiencyKwhKm != 1.0 {
		t.Fatalf("expected efficiency 1.0, got %v", trip.EfficiencyKwhKm)
	}
	if trip.MaxSpeedKph != 60 {
		t.Fatalf("expected max speed 60, got %v", trip.MaxSpeedKph)
	}
	// 5 km / 2 min = 150 kph
	if trip.AvgSpeedKph != 150.0 {
		t.Fatalf("expected avg speed 150.0, got %v", trip.AvgSpeedKph)
	}
	if !trip.StartTime.Equal(testBase.Add(1 * time.Minute)) {
		t.Fatalf("unexpected trip start time %v", trip.StartTime)
	}
	if !trip.EndTime.Equal(testBase.Add(3 * time.Minute)) {
		t.Fatalf("unexpected trip end time %v", trip.EndTime)
	}
}

func TestSegmentClosingRowExcluded(t *testing.T) {
	// 触发收尾的行不计入行程：它的速度不应影响 maxSpeed
	rows := []models.Row{
		idleRow(0),
		drivingRow(1, 40, 1000.0, 80),
		drivingRow(2, 50, 1002.0, 79),
		rowAt(3, func(r *models.Row) {
			r.SpeedKph = 0
			r.OdometerKm = 1002.1
			r.BatteryLevel = 79
			r.PowerKw = 0
		}),
	}

	trips, _ := Segment(rows, models.DefaultAnalysisSettings())
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	if trips[0].MaxSpeedKph != 50 {
		t.Fatalf("expected max speed 50, got %v", trips[0].MaxSpeedKph)
	}
	if trips[0].EndOdometer != 1002.0 {
		t.Fatalf("expected end odometer 1002.0, got %v", trips[0].EndOdometer)
	}
}

func TestSegmentMinDistanceBoundary(t *testing.T) {
	settings := models.DefaultAnalysisSettings()

	// 里程增量恰好 0.10 km：丢弃
	rows := []models.Row{
		idleRow(0),
		drivingRow(1, 10, 1000.00, 80),
		drivingRow(2, 10, 1000.10, 80),
		idleRow(3),
	}
	trips, _ := Segment(rows, settings)
	if len(trips) != 0 {
		t.Fatalf("expected trip at exactly 0.10 km to be discarded, got %d trips", len(trips))
	}

	// 0.11 km：保留
	rows[2] = drivingRow(2, 10, 1000.11, 80)
	trips, _ = Segment(rows, settings)
	if len(trips) != 1 {
		t.Fatalf("expected trip at 0.11 km to survive, got %d trips", len(trips))
	}
	if trips[0].DistanceKm != 0.11 {
		t.Fatalf("expected distance 0.11, got %v", trips[0].DistanceKm)
	}
}

func TestSegmentTimeGapBreaksTrip(t *testing.T) {
	// 默认 trip_min_break_minutes = 3：间隔 5 分钟的行驶行强制切段
	rows := []models.Row{
		idleRow(0),
		drivingRow(1, 40, 1000.0, 80),
		drivingRow(2, 40, 1001.0, 79),
		drivingRow(7, 40, 1002.0, 78), // 间隔 5 分钟，触发收尾且自身不入段
		drivingRow(8, 40, 1003.0, 77),
		drivingRow(9, 40, 1004.0, 76),
		idleRow(10),
	}

	trips, _ := Segment(rows, models.DefaultAnalysisSettings())
	if len(trips) != 2 {
		t.Fatalf("expected 2 trips after time gap, got %d", len(trips))
	}
	if trips[0].DistanceKm != 1.0 {
		t.Fatalf("expected first trip distance 1.0, got %v", trips[0].DistanceKm)
	}
	// 第二段从间隔后的下一行开始
	if !trips[1].StartTime.Equal(testBase.Add(8 * time.Minute)) {
		t.Fatalf("unexpected second trip start %v", trips[1].StartTime)
	}
	if trips[1].ID != 2 {
		t.Fatalf("expected sequential trip ids, got %d", trips[1].ID)
	}
}

func TestSegmentRegenCountsAsDriving(t *testing.T) {
	// 速度为 0 但功率低于负阈值（能量回收）仍视为行驶中
	rows := []models.Row{
		idleRow(0),
		drivingRow(1, 40, 1000.0, 80),
		rowAt(2, func(r *models.Row) {
			r.SpeedKph = 0
			r.PowerKw = -5
			r.OdometerKm = 1001.0
			r.BatteryLevel = 79.5
		}),
		drivingRow(3, 40, 1002.0, 79),
		idleRow(4),
	}

	trips, _ := Segment(rows, models.DefaultAnalysisSettings())
	if len(trips) != 1 {
		t.Fatalf("expected regen row to keep the trip open, got %d trips", len(trips))
	}
	if trips[0].DistanceKm != 2.0 {
		t.Fatalf("expected distance 2.0, got %v", trips[0].DistanceKm)
	}
}

func TestSegmentOpenTripDroppedAtEOF(t *testing.T) {
	rows := []models.Row{
		idleRow(0),
		drivingRow(1, 40, 1000.0, 80),
		drivingRow(2, 40, 1005.0, 79),
	}
	trips, _ := Segment(rows, models.DefaultAnalysisSettings())
	if len(trips) != 0 {
		t.Fatalf("expected open trip at end of data to be dropped, got %d trips", len(trips))
	}
}

func TestSegmentClimateRatioAndTemps(t *testing.T) {
	temp := func(v float64) *float64 { return &v }
	rows := []models.Row{
		idleRow(0),
		rowAt(1, func(r *models.Row) {
			r.SpeedKph = 40
			r.OdometerKm = 1000.0
			r.BatteryLevel = 80
			r.OutsideTemp = temp(10)
		}),
		rowAt(2, func(r *models.Row) {
			r.SpeedKph = 40
			r.OdometerKm = 1001.0
			r.BatteryLevel = 79
			r.ClimateOn = true
			r.OutsideTemp = temp(20)
		}),
		rowAt(3, func(r *models.Row) {
			r.SpeedKph = 40
			r.OdometerKm = 1002.0
			r.BatteryLevel = 78
		}),
		idleRow(4),
	}

	trips, _ := Segment(rows, models.DefaultAnalysisSettings())
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	if got := trips[0].ClimateOnRatio; math.Abs(got-1.0/3.0) > 1e-12 {
		t.Fatalf("expected climate ratio 1/3, got %v", got)
	}
	if trips[0].AvgOutsideTempC == nil || *trips[0].AvgOutsideTempC != 15.0 {
		t.Fatalf("expected avg outside temp 15.0, got %v", trips[0].AvgOutsideTempC)
	}
}

func TestSegmentBasicChargingSession(t *testing.T) {
	rows := []models.Row{
		idleRow(0),
		chargingRow(1, 11, 50),
		chargingRow(2, 11, 52.5),
		chargingRow(3, 11, 55),
		idleRow(4),
	}

	trips, sessions := Segment(rows, models.DefaultAnalysisSettings())
	if len(trips) != 0 {
		t.Fatalf("expected no trips, got %d", len(trips))
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 charging session, got %d", len(sessions))
	}

	c := sessions[0]
	if c.ID != 1 {
		t.Fatalf("expected session id 1, got %d", c.ID)
	}
	// (55-50)/100 * 100 kWh = 5 kWh，不做精度归一
	if c.EnergyAddedKwh != 5.0 {
		t.Fatalf("expected energy added 5.0, got %v", c.EnergyAddedKwh)
	}
	if c.AvgChargePowerKw != 11.0 {
		t.Fatalf("expected avg charge power 11.0, got %v", c.AvgChargePowerKw)
	}
	if c.DurationMinutes != 2.0 {
		t.Fatalf("expected duration 2.0, got %v", c.DurationMinutes)
	}
}

func TestSegmentChargingRequiresBatteryGain(t *testing.T) {
	// 充电器上线但电量无净增：整段丢弃
	rows := []models.Row{
		idleRow(0),
		chargingRow(1, 2, 50),
		chargingRow(2, 2, 50),
		idleRow(3),
	}
	_, sessions := Segment(rows, models.DefaultAnalysisSettings())
	if len(sessions) != 0 {
		t.Fatalf("expected zero-gain session to be discarded, got %d", len(sessions))
	}
}

func TestSegmentChargeGapBreaksSession(t *testing.T) {
	// 充电中断阈值固定 15 分钟，与行程阈值无关
	rows := []models.Row{
		idleRow(0),
		chargingRow(1, 11, 50),
		chargingRow(2, 11, 52),
		chargingRow(20, 11, 60), // 间隔 18 分钟，触发收尾且自身不入段
		chargingRow(21, 11, 62),
		chargingRow(22, 11, 64),
		idleRow(23),
	}
	_, sessions := Segment(rows, models.DefaultAnalysisSettings())
	if len(sessions) != 2 {
		t.Fatalf("expected gap to split charging into 2 sessions, got %d", len(sessions))
	}
	if sessions[0].EndBattery != 52 {
		t.Fatalf("expected first session to end at 52%%, got %v", sessions[0].EndBattery)
	}
}

func TestSegmentIsChargingFlagAlone(t *testing.T) {
	// is_charging 为真即充电中，即使充电功率为 0
	rows := []models.Row{
		idleRow(0),
		rowAt(1, func(r *models.Row) { r.IsCharging = true; r.BatteryLevel = 50 }),
		rowAt(2, func(r *models.Row) { r.IsCharging = true; r.BatteryLevel = 51 }),
		idleRow(3),
	}
	_, sessions := Segment(rows, models.DefaultAnalysisSettings())
	if len(sessions) != 1 {
		t.Fatalf("expected is_charging flag to open a session, got %d", len(sessions))
	}
}

func TestSegmentEmptyAndSingleRow(t *testing.T) {
	settings := models.DefaultAnalysisSettings()
	if trips, sessions := Segment(nil, settings); len(trips) != 0 || len(sessions) != 0 {
		t.Fatal("expected empty output for nil input")
	}
	if trips, sessions := Segment([]models.Row{drivingRow(0, 40, 1000, 80)}, settings); len(trips) != 0 || len(sessions) != 0 {
		t.Fatal("expected empty output for single row")
	}
}
