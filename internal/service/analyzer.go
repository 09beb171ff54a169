package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/langchou/teslog/internal/analysis"
	"github.com/langchou/teslog/internal/config"
	"github.com/langchou/teslog/internal/ingest"
	"github.com/langchou/teslog/internal/models"
	"github.com/langchou/teslog/internal/repository"
	"github.com/langchou/teslog/pkg/ws"
)

// Progress 分析进度，推送给 WebSocket 客户端
type Progress struct {
	Running        bool `json:"running"`
	TotalFiles     int  `json:"total_files"`
	ProcessedFiles int  `json:"processed_files"`
}

// AnalyzerService 批次分析编排
// 核心分析函数都是纯函数；这里负责排队文件、按批次推进、
// 把批次结果折叠进长期结果并提交，以及通过 run id 丢弃被取代的运行
type AnalyzerService struct {
	cfg          *config.Config
	logger       *zap.Logger
	fileRepo     *repository.FileRepository
	analysisRepo *repository.AnalysisRepository
	settingsRepo *repository.SettingsRepository
	wsHub        *ws.Hub
	index        *analysis.SeriesIndex

	// 活跃性标记：每次 Start/Reset 递增，旧运行的批次结果一律丢弃不合并
	runID atomic.Int64

	mu       sync.RWMutex
	analyses []*models.AnalysisResult
	progress Progress
}

// NewAnalyzerService 创建分析服务
func NewAnalyzerService(
	cfg *config.Config,
	logger *zap.Logger,
	fileRepo *repository.FileRepository,
	analysisRepo *repository.AnalysisRepository,
	settingsRepo *repository.SettingsRepository,
	wsHub *ws.Hub,
) *AnalyzerService {
	return &AnalyzerService{
		cfg:          cfg,
		logger:       logger,
		fileRepo:     fileRepo,
		analysisRepo: analysisRepo,
		settingsRepo: settingsRepo,
		wsHub:        wsHub,
		index:        analysis.NewSeriesIndex(),
	}
}

// Restore 启动时恢复：读回已提交的结果，并重放已处理文件重建图表索引
// 原始行不随结果持久化，所以索引只能靠重新解析文件重建
func (s *AnalyzerService) Restore(ctx context.Context) error {
	analyses, err := s.analysisRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load analyses: %w", err)
	}
	s.mu.Lock()
	s.analyses = analyses
	s.mu.Unlock()

	files, err := s.fileRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("load files: %w", err)
	}
	for _, f := range files {
		if !f.Processed {
			continue
		}
		rows, err := s.parseFile(f)
		if err != nil {
			s.logger.Warn("Failed to replay processed file", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		s.index.Add(rows)
	}

	s.logger.Info("Analyzer state restored",
		zap.Int("vehicles", len(analyses)),
		zap.Int("files", len(files)))
	return nil
}

// Start 启动一轮后台分析，处理所有未处理的文件
// 已经在运行时返回错误
func (s *AnalyzerService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.progress.Running {
		s.mu.Unlock()
		return fmt.Errorf("analysis already running")
	}

	files, err := s.fileRepo.ListUnprocessed(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("list unprocessed files: %w", err)
	}
	if len(files) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no unprocessed files")
	}

	settings, err := s.settingsRepo.Get(ctx, s.cfg.DefaultSettings)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("load settings: %w", err)
	}

	runID := s.runID.Add(1)
	s.progress = Progress{Running: true, TotalFiles: len(files)}
	s.mu.Unlock()

	s.logger.Info("Starting analysis run",
		zap.Int64("run_id", runID),
		zap.Int("files", len(files)),
		zap.Int("batch_size", s.cfg.AnalysisBatchSize))

	go s.run(context.WithoutCancel(ctx), runID, files, settings)
	return nil
}

// run 按批次推进，批次之间检查活跃性
func (s *AnalyzerService) run(ctx context.Context, runID int64, files []*repository.LogFile, settings models.AnalysisSettings) {
	batchSize := s.cfg.AnalysisBatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	processed := 0
	for start := 0; start < len(files); start += batchSize {
		// 被新的运行取代：丢弃剩余工作，绝不把过期批次合并进结果
		if s.runID.Load() != runID {
			s.logger.Info("Analysis run superseded, discarding", zap.Int64("run_id", runID))
			return
		}

		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]

		if err := s.processBatch(ctx, runID, batch, settings); err != nil {
			s.logger.Error("Batch failed", zap.Int64("run_id", runID), zap.Error(err))
			s.finish(runID, err)
			return
		}

		processed += len(batch)
		s.mu.Lock()
		s.progress.ProcessedFiles = processed
		progress := s.progress
		s.mu.Unlock()
		s.wsHub.PublishProgress(progress)
	}

	s.finish(runID, nil)
}

// processBatch 解析一个批次的文件、逐车分析并折叠提交
func (s *AnalyzerService) processBatch(ctx context.Context, runID int64, batch []*repository.LogFile, settings models.AnalysisSettings) error {
	var allRows []models.Row
	var sizeMb float64
	fileRowCounts := make(map[int64]int64, len(batch))
	for _, f := range batch {
		rows, err := s.parseFile(f)
		if err != nil {
			return err
		}
		fileRowCounts[f.ID] = int64(len(rows))
		allRows = append(allRows, rows...)
		sizeMb += f.SizeMb
	}

	byVehicle := ingest.PartitionByVehicle(allRows)
	fileInfo := models.FileInfo{
		Name:   fmt.Sprintf("%d files", len(batch)),
		SizeMb: sizeMb,
		Rows:   len(allRows),
	}
	batchResults := analysis.AnalyzeVehicles(byVehicle, settings, fileInfo)

	// 合并前在锁内再查一次活跃性，保证过期批次最多被应用零次
	s.mu.Lock()
	if s.runID.Load() != runID {
		s.mu.Unlock()
		return fmt.Errorf("analysis run superseded")
	}
	s.analyses = analysis.MergeAll(s.analyses, batchResults)
	merged := s.analyses
	s.mu.Unlock()

	s.index.Add(allRows)

	if err := s.analysisRepo.SaveAll(ctx, merged); err != nil {
		return fmt.Errorf("commit analyses: %w", err)
	}
	for _, f := range batch {
		if err := s.fileRepo.MarkProcessed(ctx, f.ID, fileRowCounts[f.ID]); err != nil {
			return fmt.Errorf("mark file processed: %w", err)
		}
	}

	s.logger.Info("Batch committed",
		zap.Int64("run_id", runID),
		zap.Int("files", len(batch)),
		zap.Int("rows", len(allRows)),
		zap.Int("vehicles", len(batchResults)))
	return nil
}

// finish 收尾并广播结果
func (s *AnalyzerService) finish(runID int64, runErr error) {
	s.mu.Lock()
	s.progress.Running = false
	vehicles := len(s.analyses)
	s.mu.Unlock()

	if runErr != nil {
		s.wsHub.PublishError(runErr.Error())
		return
	}

	s.logger.Info("Analysis run complete", zap.Int64("run_id", runID), zap.Int("vehicles", vehicles))
	s.wsHub.PublishComplete(map[string]int{"vehicles": vehicles})
}

// parseFile 从数据目录读取并归一化一个文件
func (s *AnalyzerService) parseFile(f *repository.LogFile) ([]models.Row, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", f.Name, err)
	}
	defer file.Close()

	result, err := ingest.ParseCSV(file, f.Name)
	if err != nil {
		return nil, err
	}
	if result.Dropped > 0 {
		s.logger.Warn("Dropped unparseable rows",
			zap.String("file", f.Name),
			zap.Int("dropped", result.Dropped),
			zap.Int("total", result.Total))
	}
	return result.Rows, nil
}

// Reset 作废当前运行并清空全部分析状态，文件登记保留但回到待处理
func (s *AnalyzerService) Reset(ctx context.Context) error {
	s.runID.Add(1)

	s.mu.Lock()
	s.analyses = nil
	s.progress = Progress{}
	s.mu.Unlock()

	s.index.Reset()

	if err := s.analysisRepo.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.fileRepo.MarkAllUnprocessed(ctx); err != nil {
		return err
	}

	s.logger.Info("Analysis state reset")
	return nil
}

// Analyses 当前全部车辆的长期结果
func (s *AnalyzerService) Analyses() []*models.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AnalysisResult, len(s.analyses))
	copy(out, s.analyses)
	return out
}

// Analysis 按车辆 id 取结果
func (s *AnalyzerService) Analysis(vehicleID string) (*models.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.analyses {
		if a.CarInfo.ID == vehicleID {
			return a, true
		}
	}
	return nil, false
}

// Status 当前进度
func (s *AnalyzerService) Status() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Index 图表序列索引
func (s *AnalyzerService) Index() *analysis.SeriesIndex {
	return s.index
}
