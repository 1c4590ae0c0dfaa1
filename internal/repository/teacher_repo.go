package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
)

// TeacherFilter 教师列表过滤条件
type TeacherFilter struct {
	LastName string
	Page     int
	PageSize int
}

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	GetByUpstreamID(ctx context.Context, upstreamID string) (*model.Teacher, error)
	Save(ctx context.Context, teacher *model.Teacher) error
	List(ctx context.Context, filter TeacherFilter) ([]model.Teacher, int64, error)
	GetSchedulePairs(ctx context.Context, teacherID string) ([]model.SchedulePair, error)
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByUpstreamID(ctx context.Context, upstreamID string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("upstream_id = ?", upstreamID).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) Save(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Save(teacher).Error
}

func (r *teacherRepo) List(ctx context.Context, filter TeacherFilter) ([]model.Teacher, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Teacher{})

	if filter.LastName != "" {
		query = query.Where("last_name ILIKE ?", "%"+filter.LastName+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var teachers []model.Teacher
	err := query.
		Order("last_name ASC, first_name ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&teachers).Error
	if err != nil {
		return nil, 0, err
	}

	return teachers, total, nil
}

func (r *teacherRepo) GetSchedulePairs(ctx context.Context, teacherID string) ([]model.SchedulePair, error) {
	var pairs []model.SchedulePair
	err := r.db.WithContext(ctx).
		Preload("Discipline").
		Preload("Teachers").
		Preload("Rooms").
		Preload("Groups").
		Joins("JOIN schedule_pair_teachers spt ON spt.schedule_pair_id = schedule_pairs.schedule_pair_id").
		Where("spt.teacher_id = ?", teacherID).
		Order("schedule_pairs.day_of_week ASC, schedule_pairs.start_time ASC").
		Find(&pairs).Error
	return pairs, err
}
