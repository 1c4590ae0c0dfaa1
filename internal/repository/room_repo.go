package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
)

// RoomFilter 教室列表过滤条件
type RoomFilter struct {
	Name     string
	Building string
	Page     int
	PageSize int
}

// RoomRepository 教室数据访问接口
// 教室按内容哈希去重（上游 uuid 不稳定）
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByContentHash(ctx context.Context, hash string) (*model.Room, error)
	Save(ctx context.Context, room *model.Room) error
	List(ctx context.Context, filter RoomFilter) ([]model.Room, int64, error)
	GetSchedulePairs(ctx context.Context, roomID string) ([]model.SchedulePair, error)
}

type roomRepo struct {
	db *gorm.DB
}

// NewRoomRepo 创建 RoomRepository 实例
func NewRoomRepo(db *gorm.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("room_id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) GetByContentHash(ctx context.Context, hash string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("content_hash = ?", hash).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) Save(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *roomRepo) List(ctx context.Context, filter RoomFilter) ([]model.Room, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Room{})

	if filter.Name != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Building != "" {
		query = query.Where("building ILIKE ?", "%"+filter.Building+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rooms []model.Room
	err := query.
		Order("name ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&rooms).Error
	if err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

func (r *roomRepo) GetSchedulePairs(ctx context.Context, roomID string) ([]model.SchedulePair, error) {
	var pairs []model.SchedulePair
	err := r.db.WithContext(ctx).
		Preload("Discipline").
		Preload("Teachers").
		Preload("Rooms").
		Preload("Groups").
		Joins("JOIN schedule_pair_rooms spr ON spr.schedule_pair_id = schedule_pairs.schedule_pair_id").
		Where("spr.room_id = ?", roomID).
		Order("schedule_pairs.day_of_week ASC, schedule_pairs.start_time ASC").
		Find(&pairs).Error
	return pairs, err
}
