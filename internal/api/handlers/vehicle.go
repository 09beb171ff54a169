package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/langchou/teslog/internal/analysis"
	"github.com/langchou/teslog/internal/models"
)

// vehicleSummary 车辆列表项
type vehicleSummary struct {
	ID           string      `json:"id"`
	CarInfo      interface{} `json:"car_info"`
	Summary      interface{} `json:"summary"`
	DateRange    interface{} `json:"date_range"`
	UniqueMonths []string    `json:"unique_months"`
}

// ListVehicles 获取已有分析结果的车辆列表
func (h *Handler) ListVehicles(c *gin.Context) {
	analyses := h.analyzer.Analyses()
	vehicles := make([]vehicleSummary, 0, len(analyses))
	for _, a := range analyses {
		vehicles = append(vehicles, vehicleSummary{
			ID:           a.CarInfo.ID,
			CarInfo:      a.CarInfo,
			Summary:      a.Summary,
			DateRange:    a.DateRange,
			UniqueMonths: a.UniqueMonths,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

// parseRangeParam 解析日期参数，支持 RFC3339 和 "YYYY-MM-DD"
func parseRangeParam(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// windowBounds 确定筛选窗口；缺失的一端取结果自身时间范围的对应端
func windowBounds(result *models.AnalysisResult, startParam, endParam string) (time.Time, time.Time, error) {
	start := result.DateRange.Start
	if startParam != "" {
		t, ok := parseRangeParam(startParam)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q", startParam)
		}
		start = t
	}

	end := result.DateRange.End
	if endParam != "" {
		t, ok := parseRangeParam(endParam)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q", endParam)
		}
		end = t
	}

	return start, end, nil
}

// GetVehicleAnalysis 获取车辆分析结果
// 带 start/end 查询参数时返回窗口内的派生结果，不改动全量结果
func (h *Handler) GetVehicleAnalysis(c *gin.Context) {
	result, ok := h.analyzer.Analysis(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	startParam := c.Query("start")
	endParam := c.Query("end")
	if startParam != "" || endParam != "" {
		start, end, err := windowBounds(result, startParam, endParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result = analysis.FilterByDateRange(result, start, end)
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// pageParams 读取分页参数
func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

// ListTrips 获取行程列表
func (h *Handler) ListTrips(c *gin.Context) {
	result, ok := h.analyzer.Analysis(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	page, perPage := pageParams(c)
	offset := (page - 1) * perPage

	trips := result.Trips
	if offset > len(trips) {
		offset = len(trips)
	}
	limit := offset + perPage
	if limit > len(trips) {
		limit = len(trips)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": trips[offset:limit],
		"pagination": gin.H{
			"page":     page,
			"per_page": perPage,
			"total":    len(trips),
		},
	})
}

// ListCharges 获取充电列表
func (h *Handler) ListCharges(c *gin.Context) {
	result, ok := h.analyzer.Analysis(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}

	page, perPage := pageParams(c)
	offset := (page - 1) * perPage

	charges := result.ChargingSessions
	if offset > len(charges) {
		offset = len(charges)
	}
	limit := offset + perPage
	if limit > len(charges) {
		limit = len(charges)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": charges[offset:limit],
		"pagination": gin.H{
			"page":     page,
			"per_page": perPage,
			"total":    len(charges),
		},
	})
}

// GetSeries 获取图表序列
// 不带参数返回全程序列；month=YYYY-MM 返回该月；day=YYYY-MM-DD 返回该日
func (h *Handler) GetSeries(c *gin.Context) {
	vehicleID := c.Param("id")
	index := h.analyzer.Index()

	if day := c.Query("day"); day != "" {
		c.JSON(http.StatusOK, gin.H{"data": index.Day(vehicleID, day)})
		return
	}
	if month := c.Query("month"); month != "" {
		c.JSON(http.StatusOK, gin.H{"data": index.Month(vehicleID, month)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": index.Vehicle(vehicleID)})
}

// ListMonths 车辆有数据的月份，带 month 参数时返回该月有数据的日期
func (h *Handler) ListMonths(c *gin.Context) {
	vehicleID := c.Param("id")
	index := h.analyzer.Index()

	if month := c.Query("month"); month != "" {
		c.JSON(http.StatusOK, gin.H{"data": index.Days(vehicleID, month)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": index.Months(vehicleID)})
}
