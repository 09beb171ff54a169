package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/teslog/internal/models"
)

// GetSettings 获取分段参数
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.settingsRepo.Get(c.Request.Context(), models.DefaultAnalysisSettings())
	if err != nil {
		h.logger.Error("Failed to load settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

// UpdateSettings 更新分段参数
// 新参数只影响之后的分析运行，已提交的结果不自动重算
func (h *Handler) UpdateSettings(c *gin.Context) {
	var s models.AnalysisSettings
	if err := c.BindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if s.UsableBatteryCapacityKwh <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "usable_battery_capacity_kwh must be > 0"})
		return
	}
	if s.TripMinBreakMinutes < 0 || s.PowerThresholdKw < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "thresholds must be >= 0"})
		return
	}

	if err := h.settingsRepo.Save(c.Request.Context(), s); err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s})
}
