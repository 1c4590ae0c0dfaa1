package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
)

// SchedulePairRepository 课时模板数据访问接口
// 课时按内容哈希去重（上游没有任何稳定标识）
type SchedulePairRepository interface {
	GetByContentHash(ctx context.Context, hash string) (*model.SchedulePair, error)
	// Create 连带 Groups/Teachers/Rooms 关联一起插入
	Create(ctx context.Context, pair *model.SchedulePair) error
	Save(ctx context.Context, pair *model.SchedulePair) error
	// AppendGroup 为已存在课时补充组关联（重复追加无副作用）
	AppendGroup(ctx context.Context, pair *model.SchedulePair, group *model.Group) error
}

type schedulePairRepo struct {
	db *gorm.DB
}

// NewSchedulePairRepo 创建 SchedulePairRepository 实例
func NewSchedulePairRepo(db *gorm.DB) SchedulePairRepository {
	return &schedulePairRepo{db: db}
}

func (r *schedulePairRepo) GetByContentHash(ctx context.Context, hash string) (*model.SchedulePair, error) {
	var pair model.SchedulePair
	err := r.db.WithContext(ctx).
		Preload("Groups").
		Where("content_hash = ?", hash).
		First(&pair).Error
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (r *schedulePairRepo) Create(ctx context.Context, pair *model.SchedulePair) error {
	// 关联实体此前已各自落库，这里只写课时本身和 join 表
	return r.db.WithContext(ctx).
		Omit("Groups.*", "Teachers.*", "Rooms.*").
		Create(pair).Error
}

func (r *schedulePairRepo) Save(ctx context.Context, pair *model.SchedulePair) error {
	// 只更新课时本身的列，关联由 AppendGroup 维护
	return r.db.WithContext(ctx).Omit("Groups", "Teachers", "Rooms").Save(pair).Error
}

func (r *schedulePairRepo) AppendGroup(ctx context.Context, pair *model.SchedulePair, group *model.Group) error {
	return r.db.WithContext(ctx).
		Model(pair).
		Omit("Groups.*").
		Association("Groups").
		Append(group)
}
