package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/dto"
	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
	"github.com/SergeiKrivko/BmstuSchedule/internal/repository"
	"github.com/SergeiKrivko/BmstuSchedule/pkg/redis"
)

// ── 教师模块业务错误 ──

var ErrTeacherNotFound = errors.New("教师不存在")

// TeacherService 教师查询业务接口
type TeacherService interface {
	GetTeacher(ctx context.Context, id string) (*dto.TeacherResponse, error)
	ListTeachers(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error)
	GetTeacherSchedule(ctx context.Context, id string, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error)
}

type teacherService struct {
	repo   *repository.Repository
	query  *scheduleQuery
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(repo *repository.Repository, client UpstreamClient, cache *redis.Client, queryTTL time.Duration, logger *zap.Logger) TeacherService {
	return &teacherService{
		repo:   repo,
		query:  &scheduleQuery{client: client, cache: cache, queryTTL: queryTTL, logger: logger},
		logger: logger,
	}
}

func (s *teacherService) GetTeacher(ctx context.Context, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}
	resp := toTeacherResponse(teacher)
	return &resp, nil
}

func (s *teacherService) ListTeachers(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error) {
	teachers, total, err := s.repo.Teacher.List(ctx, repository.TeacherFilter{
		LastName: req.LastName,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		result = append(result, toTeacherResponse(&teachers[i]))
	}
	return result, total, nil
}

func (s *teacherService) GetTeacherSchedule(ctx context.Context, id string, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}

	return s.query.expand(ctx, "teacher", teacher.TeacherID, req.From, req.To,
		func(ctx context.Context) ([]model.SchedulePair, error) {
			return s.repo.Teacher.GetSchedulePairs(ctx, teacher.TeacherID)
		})
}
