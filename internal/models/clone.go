package models

// 显式的类型化深拷贝
// 合并引擎在折叠前必须拷贝现有结果，调用方可能还持有旧引用用于回滚
// 不走 JSON 序列化往返，直接做结构化值拷贝

// Clone 深拷贝行程（含轨迹）
func (t Trip) Clone() Trip {
	out := t
	if t.Path != nil {
		out.Path = make([]LatLon, len(t.Path))
		copy(out.Path, t.Path)
	}
	if t.AvgOutsideTempC != nil {
		v := *t.AvgOutsideTempC
		out.AvgOutsideTempC = &v
	}
	return out
}

// Clone 深拷贝车辆信息
func (c CarInfo) Clone() CarInfo {
	out := c
	out.AvgOutsideTempC = clonePtr(c.AvgOutsideTempC)
	out.AvgInsideTempC = clonePtr(c.AvgInsideTempC)
	out.StartRatedRangeKm = clonePtr(c.StartRatedRangeKm)
	out.EndRatedRangeKm = clonePtr(c.EndRatedRangeKm)
	return out
}

// Clone 深拷贝分析结果
func (a *AnalysisResult) Clone() *AnalysisResult {
	out := *a

	out.Trips = make([]Trip, len(a.Trips))
	for i, t := range a.Trips {
		out.Trips[i] = t.Clone()
	}

	out.ChargingSessions = make([]ChargingSession, len(a.ChargingSessions))
	copy(out.ChargingSessions, a.ChargingSessions)

	out.TripsByDay = make(map[string]int, len(a.TripsByDay))
	for k, v := range a.TripsByDay {
		out.TripsByDay[k] = v
	}

	out.UniqueMonths = make([]string, len(a.UniqueMonths))
	copy(out.UniqueMonths, a.UniqueMonths)

	out.CarInfo = a.CarInfo.Clone()

	return &out
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
