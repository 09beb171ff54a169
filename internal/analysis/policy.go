package analysis

import "math"

// 本文件集中放置分析链路里反复出现的小策略函数
// 这些分支都是业务规则，单独命名并各自测试，避免散落在各处时被改错

// firstNonEmpty 返回第一个非空字符串，没有则返回空串
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// firstFinite 返回第一个有限值，没有则返回 nil
func firstFinite(values []*float64) *float64 {
	for _, v := range values {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			out := *v
			return &out
		}
	}
	return nil
}

// lastFinite 返回最后一个有限值，没有则返回 nil
func lastFinite(values []*float64) *float64 {
	for i := len(values) - 1; i >= 0; i-- {
		v := values[i]
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			out := *v
			return &out
		}
	}
	return nil
}

// meanFinite 有限值的算术平均，没有任何有限值时返回 nil
func meanFinite(values []*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// roundTo 按给定小数位数四舍五入
// 派生浮点字段在产出时统一做精度归一，保证展示和导出的确定性
func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
