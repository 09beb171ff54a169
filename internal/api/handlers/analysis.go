package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartAnalysis 启动一轮后台分析
// POST /api/analysis/start
func (h *Handler) StartAnalysis(c *gin.Context) {
	if err := h.analyzer.Start(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Analysis started"})
}

// ResetAnalysis 作废并清空全部分析结果，文件保留
// POST /api/analysis/reset
func (h *Handler) ResetAnalysis(c *gin.Context) {
	if err := h.analyzer.Reset(c.Request.Context()); err != nil {
		h.logger.Error("Failed to reset analysis", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset analysis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Analysis reset"})
}

// GetAnalysisStatus 获取进度
func (h *Handler) GetAnalysisStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.analyzer.Status()})
}
