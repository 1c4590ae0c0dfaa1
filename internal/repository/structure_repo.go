package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SergeiKrivko/BmstuSchedule/internal/model"
)

// StructureRepository 组织结构（大学/校区/学院/系/年级）数据访问接口
// 所有节点按 upstream_id 查找与保存，由同步器保证 upsert 语义
type StructureRepository interface {
	GetUniversityByUpstreamID(ctx context.Context, upstreamID string) (*model.University, error)
	SaveUniversity(ctx context.Context, u *model.University) error

	GetFilialByUpstreamID(ctx context.Context, upstreamID string) (*model.Filial, error)
	SaveFilial(ctx context.Context, f *model.Filial) error

	GetFacultyByUpstreamID(ctx context.Context, upstreamID string) (*model.Faculty, error)
	SaveFaculty(ctx context.Context, f *model.Faculty) error

	GetDepartmentByUpstreamID(ctx context.Context, upstreamID string) (*model.Department, error)
	SaveDepartment(ctx context.Context, d *model.Department) error

	GetCourseByUpstreamID(ctx context.Context, upstreamID string) (*model.Course, error)
	SaveCourse(ctx context.Context, c *model.Course) error
}

type structureRepo struct {
	db *gorm.DB
}

// NewStructureRepo 创建 StructureRepository 实例
func NewStructureRepo(db *gorm.DB) StructureRepository {
	return &structureRepo{db: db}
}

func (r *structureRepo) GetUniversityByUpstreamID(ctx context.Context, upstreamID string) (*model.University, error) {
	var u model.University
	err := r.db.WithContext(ctx).
		Where("upstream_id = ?", upstreamID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *structureRepo) SaveUniversity(ctx context.Context, u *model.University) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *structureRepo) GetFilialByUpstreamID(ctx context.Context, upstreamID string) (*model.Filial, error) {
	var f model.Filial
	err := r.db.WithContext(ctx).
		Where("upstream_id = ?", upstreamID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *structureRepo) SaveFilial(ctx context.Context, f *model.Filial) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *structureRepo) GetFacultyByUpstreamID(ctx context.Context, upstreamID string) (*model.Faculty, error) {
	var f model.Faculty
	err := r.db.WithContext(ctx).
		Where("upstream_id = ?", upstreamID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *structureRepo) SaveFaculty(ctx context.Context, f *model.Faculty) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *structureRepo) GetDepartmentByUpstreamID(ctx context.Context, upstreamID string) (*model.Department, error) {
	var d model.Department
	err := r.db.WithContext(ctx).
		Where("upstream_id = ?", upstreamID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *structureRepo) SaveDepartment(ctx context.Context, d *model.Department) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *structureRepo) GetCourseByUpstreamID(ctx context.Context, upstreamID string) (*model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).
		Where("upstream_id = ?", upstreamID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *structureRepo) SaveCourse(ctx context.Context, c *model.Course) error {
	return r.db.WithContext(ctx).Save(c).Error
}
