package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langchou/teslog/internal/repository"
	"github.com/langchou/teslog/internal/service"
	"github.com/langchou/teslog/pkg/ws"
)

// Handler HTTP 处理器
type Handler struct {
	logger       *zap.Logger
	fileRepo     *repository.FileRepository
	settingsRepo *repository.SettingsRepository
	analyzer     *service.AnalyzerService
	wsHub        *ws.Hub
	upgrader     websocket.Upgrader
	dataDir      string
}

// NewHandler 创建处理器
func NewHandler(
	logger *zap.Logger,
	fileRepo *repository.FileRepository,
	settingsRepo *repository.SettingsRepository,
	analyzer *service.AnalyzerService,
	wsHub *ws.Hub,
	dataDir string,
) *Handler {
	return &Handler{
		logger:       logger,
		fileRepo:     fileRepo,
		settingsRepo: settingsRepo,
		analyzer:     analyzer,
		wsHub:        wsHub,
		dataDir:      dataDir,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 开发环境允许所有来源
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// API 路由
	api := r.Group("/api")
	{
		// 文件
		api.POST("/files", h.UploadFile)
		api.GET("/files", h.ListFiles)
		api.DELETE("/files/:id", h.DeleteFile)
		api.DELETE("/files", h.ClearFiles)

		// 分析
		api.POST("/analysis/start", h.StartAnalysis)
		api.POST("/analysis/reset", h.ResetAnalysis)
		api.GET("/analysis/status", h.GetAnalysisStatus)

		// 车辆结果
		api.GET("/vehicles", h.ListVehicles)
		api.GET("/vehicles/:id/analysis", h.GetVehicleAnalysis)
		api.GET("/vehicles/:id/trips", h.ListTrips)
		api.GET("/vehicles/:id/charges", h.ListCharges)

		// 图表序列
		api.GET("/vehicles/:id/series", h.GetSeries)
		api.GET("/vehicles/:id/months", h.ListMonths)

		// 设置
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}

// HandleWebSocket WebSocket 处理
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	// Serve 阻塞到对端断开，连接生命周期由 Hub 管理
	h.wsHub.Serve(conn)
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"ws_clients": h.wsHub.ClientCount(),
	})
}
