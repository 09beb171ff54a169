package analysis

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/langchou/teslog/internal/models"
)

// 分段状态常量
const (
	stateIdle     = "idle"
	stateDriving  = "driving"
	stateCharging = "charging"
)

// 事件常量
const (
	eventStartDriving  = "start_driving"
	eventStopDriving   = "stop_driving"
	eventStartCharging = "start_charging"
	eventStopCharging  = "stop_charging"
)

// 充电中断阈值固定 15 分钟，与行程的可配置阈值不同，保持该不对称
const chargeBreakMinutes = 15.0

// 里程增量小于等于该值的行程按里程表/GPS 噪声丢弃
const minTripDistanceKm = 0.1

// segmenter 单车分段器
// 行程和充电两台状态机在同一趟扫描里独立推进，互不干涉：
// 同一行理论上可以同时被判为行驶和充电，这是原始数据的属性，不做调和
type segmenter struct {
	settings models.AnalysisSettings

	tripFSM   *fsm.FSM
	chargeFSM *fsm.FSM

	tripPoints   []models.Row
	tripPath     []models.LatLon
	chargePoints []models.Row

	trips    []models.Trip
	sessions []models.ChargingSession
}

func newSegmenter(settings models.AnalysisSettings) *segmenter {
	s := &segmenter{settings: settings}

	s.tripFSM = fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventStartDriving, Src: []string{stateIdle}, Dst: stateDriving},
			{Name: eventStopDriving, Src: []string{stateDriving}, Dst: stateIdle},
		},
		fsm.Callbacks{},
	)
	s.chargeFSM = fsm.NewFSM(
		stateIdle,
		fsm.Events{
			{Name: eventStartCharging, Src: []string{stateIdle}, Dst: stateCharging},
			{Name: eventStopCharging, Src: []string{stateCharging}, Dst: stateIdle},
		},
		fsm.Callbacks{},
	)

	return s
}

// Segment 对单车按时间升序的数据行做一趟扫描，切出行程和充电记录
// 输入行的时间戳和数值字段由 ingest 层保证有效，这里不再校验
func Segment(rows []models.Row, settings models.AnalysisSettings) ([]models.Trip, []models.ChargingSession) {
	s := newSegmenter(settings)

	for i := 1; i < len(rows); i++ {
		prev := rows[i-1]
		curr := rows[i]
		gapMinutes := float64(curr.Timestamp-prev.Timestamp) / (1000 * 60)

		s.stepTrip(curr, gapMinutes)
		s.stepCharge(curr, gapMinutes)
	}

	// 扫描结束时仍处于打开状态的区间直接丢弃

	return s.trips, s.sessions
}

// stepTrip 行程状态机推进一行
func (s *segmenter) stepTrip(curr models.Row, gapMinutes float64) {
	ctx := context.Background()
	driving := curr.SpeedKph > 0 || curr.PowerKw < -s.settings.PowerThresholdKw

	switch {
	case driving && s.tripFSM.Current() == stateIdle:
		_ = s.tripFSM.Event(ctx, eventStartDriving)
		s.tripPoints = []models.Row{curr}
		s.tripPath = []models.LatLon{{Lat: curr.Latitude, Lon: curr.Longitude}}

	case s.tripFSM.Current() == stateDriving && (!driving || gapMinutes > s.settings.TripMinBreakMinutes):
		// 触发收尾的行不计入行程，只用之前累积的数据结算
		s.closeTrip()
		_ = s.tripFSM.Event(ctx, eventStopDriving)

	case driving && s.tripFSM.Current() == stateDriving:
		s.tripPoints = append(s.tripPoints, curr)
		if curr.Latitude != 0 && curr.Longitude != 0 {
			s.tripPath = append(s.tripPath, models.LatLon{Lat: curr.Latitude, Lon: curr.Longitude})
		}
	}
}

// closeTrip 结算当前行程，不满足阈值的静默丢弃
func (s *segmenter) closeTrip() {
	points := s.tripPoints
	path := s.tripPath
	s.tripPoints = nil
	s.tripPath = nil

	if len(points) < 2 {
		return
	}

	start := points[0]
	end := points[len(points)-1]
	distanceKm := end.OdometerKm - start.OdometerKm
	if distanceKm <= minTripDistanceKm {
		// 里程表几乎没动，按噪声处理，不是错误
		return
	}

	durationMinutes := float64(end.Timestamp-start.Timestamp) / (1000 * 60)
	energyUsedKwh := (start.BatteryLevel - end.BatteryLevel) / 100 * s.settings.UsableBatteryCapacityKwh

	var maxSpeed float64
	var climateCount int
	temps := make([]*float64, 0, len(points))
	for _, p := range points {
		if p.SpeedKph > maxSpeed {
			maxSpeed = p.SpeedKph
		}
		if p.ClimateOn {
			climateCount++
		}
		temps = append(temps, p.OutsideTemp)
	}

	avgSpeed := 0.0
	if distanceKm > 0 {
		avgSpeed = roundTo(distanceKm/(durationMinutes/60), 1)
	}

	var avgOutsideTemp *float64
	if mean := meanFinite(temps); mean != nil {
		rounded := roundTo(*mean, 1)
		avgOutsideTemp = &rounded
	}

	s.trips = append(s.trips, models.Trip{
		ID:              len(s.trips) + 1,
		StartTime:       start.Time(),
		EndTime:         end.Time(),
		DurationMinutes: roundTo(durationMinutes, 1),
		DistanceKm:      roundTo(distanceKm, 2),
		StartOdometer:   start.OdometerKm,
		EndOdometer:     end.OdometerKm,
		AvgSpeedKph:     avgSpeed,
		MaxSpeedKph:     maxSpeed,
		StartBattery:    start.BatteryLevel,
		EndBattery:      end.BatteryLevel,
		EnergyUsedKwh:   roundTo(energyUsedKwh, 3),
		EfficiencyKwhKm: roundTo(energyUsedKwh/distanceKm, 3),
		ClimateOnRatio:  float64(climateCount) / float64(len(points)),
		Path:            downsamplePath(path),
		AvgOutsideTempC: avgOutsideTemp,
	})
}

// stepCharge 充电状态机推进一行
func (s *segmenter) stepCharge(curr models.Row, gapMinutes float64) {
	ctx := context.Background()
	charging := curr.IsCharging || curr.ChargerPowerKw > 0

	switch {
	case charging && s.chargeFSM.Current() == stateIdle:
		_ = s.chargeFSM.Event(ctx, eventStartCharging)
		s.chargePoints = []models.Row{curr}

	case s.chargeFSM.Current() == stateCharging && (!charging || gapMinutes > chargeBreakMinutes):
		s.closeCharge()
		_ = s.chargeFSM.Event(ctx, eventStopCharging)

	case charging && s.chargeFSM.Current() == stateCharging:
		s.chargePoints = append(s.chargePoints, curr)
	}
}

// closeCharge 结算当前充电区间，净增电量必须为正
func (s *segmenter) closeCharge() {
	points := s.chargePoints
	s.chargePoints = nil

	if len(points) < 2 {
		return
	}

	start := points[0]
	end := points[len(points)-1]
	batteryDelta := end.BatteryLevel - start.BatteryLevel
	if batteryDelta <= 0 {
		// 没有净充入电量，按空区间丢弃
		return
	}

	var powerSum float64
	for _, p := range points {
		powerSum += p.ChargerPowerKw
	}
	durationMinutes := float64(end.Timestamp-start.Timestamp) / (1000 * 60)

	s.sessions = append(s.sessions, models.ChargingSession{
		ID:               len(s.sessions) + 1,
		StartTime:        start.Time(),
		EndTime:          end.Time(),
		DurationMinutes:  roundTo(durationMinutes, 1),
		StartBattery:     start.BatteryLevel,
		EndBattery:       end.BatteryLevel,
		EnergyAddedKwh:   batteryDelta / 100 * s.settings.UsableBatteryCapacityKwh,
		AvgChargePowerKw: powerSum / float64(len(points)),
	})
}
