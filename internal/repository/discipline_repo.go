package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
)

// DisciplineRepository 学科数据访问接口
type DisciplineRepository interface {
	GetByID(ctx context.Context, id string) (*model.Discipline, error)
	GetByContentHash(ctx context.Context, hash string) (*model.Discipline, error)
	Save(ctx context.Context, discipline *model.Discipline) error
}

type disciplineRepo struct {
	db *gorm.DB
}

// NewDisciplineRepo 创建 DisciplineRepository 实例
func NewDisciplineRepo(db *gorm.DB) DisciplineRepository {
	return &disciplineRepo{db: db}
}

func (r *disciplineRepo) GetByID(ctx context.Context, id string) (*model.Discipline, error) {
	var d model.Discipline
	err := r.db.WithContext(ctx).
		Where("discipline_id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *disciplineRepo) GetByContentHash(ctx context.Context, hash string) (*model.Discipline, error) {
	var d model.Discipline
	err := r.db.WithContext(ctx).
		Where("content_hash = ?", hash).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *disciplineRepo) Save(ctx context.Context, discipline *model.Discipline) error {
	return r.db.WithContext(ctx).Save(discipline).Error
}
