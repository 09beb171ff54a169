package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/langchou/teslog/internal/repository"
)

// UploadFile 上传一个遥测 CSV 文件
// 重名文件视为重复，拒绝入库
func (h *Handler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field"})
		return
	}

	name := filepath.Base(fileHeader.Filename)
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only CSV files are supported"})
		return
	}

	exists, err := h.fileRepo.ExistsByName(c.Request.Context(), name)
	if err != nil {
		h.logger.Error("Failed to check duplicate file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check duplicate file"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("File %q already uploaded", name)})
		return
	}

	if err := os.MkdirAll(h.dataDir, 0o755); err != nil {
		h.logger.Error("Failed to create data dir", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	dst := filepath.Join(h.dataDir, name)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		h.logger.Error("Failed to save uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	logFile := &repository.LogFile{
		Name:   name,
		SizeMb: float64(fileHeader.Size) / (1024 * 1024),
		Path:   dst,
	}
	if err := h.fileRepo.Create(c.Request.Context(), logFile); err != nil {
		h.logger.Error("Failed to register file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register file"})
		return
	}

	h.logger.Info("File uploaded", zap.String("name", name), zap.Float64("size_mb", logFile.SizeMb))
	c.JSON(http.StatusCreated, gin.H{"data": logFile})
}

// ListFiles 获取文件列表
func (h *Handler) ListFiles(c *gin.Context) {
	files, err := h.fileRepo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": files})
}

// DeleteFile 删除单个文件，已有分析结果随之作废
func (h *Handler) DeleteFile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file ID"})
		return
	}

	path, err := h.fileRepo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("Failed to remove file from disk", zap.String("path", path), zap.Error(err))
	}

	// 结果里已经混入被删文件的数据，只能整体重置后重算
	if err := h.analyzer.Reset(c.Request.Context()); err != nil {
		h.logger.Error("Failed to reset analysis after file delete", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset analysis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted, analysis reset"})
}

// ClearFiles 清空全部文件和分析状态
func (h *Handler) ClearFiles(c *gin.Context) {
	paths, err := h.fileRepo.DeleteAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to clear files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear files"})
		return
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("Failed to remove file from disk", zap.String("path", p), zap.Error(err))
		}
	}

	if err := h.analyzer.Reset(c.Request.Context()); err != nil {
		h.logger.Error("Failed to reset analysis after clear", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset analysis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All files deleted, analysis reset"})
}
