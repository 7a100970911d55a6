package repository

import (
	"context"

	"gorm.io/gorm"

	"gestion-academica/backend/internal/model"
)

// PeriodRepository acceso a períodos lectivos
type PeriodRepository interface {
	Create(ctx context.Context, period *model.AcademicPeriod) error
	GetByID(ctx context.Context, id string) (*model.AcademicPeriod, error)
	GetByName(ctx context.Context, name string) (*model.AcademicPeriod, error)
	GetCurrent(ctx context.Context) (*model.AcademicPeriod, error)
	List(ctx context.Context) ([]model.AcademicPeriod, error)
	Update(ctx context.Context, period *model.AcademicPeriod) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ClearActive(ctx context.Context) error
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo crea un PeriodRepository
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) Create(ctx context.Context, period *model.AcademicPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *periodRepo) GetByID(ctx context.Context, id string) (*model.AcademicPeriod, error) {
	var period model.AcademicPeriod
	if err := r.db.WithContext(ctx).Where("period_id = ?", id).First(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) GetByName(ctx context.Context, name string) (*model.AcademicPeriod, error) {
	var period model.AcademicPeriod
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) GetCurrent(ctx context.Context) (*model.AcademicPeriod, error) {
	var period model.AcademicPeriod
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&period).Error; err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) List(ctx context.Context) ([]model.AcademicPeriod, error) {
	var periods []model.AcademicPeriod
	err := r.db.WithContext(ctx).Order("start_date DESC").Find(&periods).Error
	return periods, err
}

func (r *periodRepo) Update(ctx context.Context, period *model.AcademicPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *periodRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.AcademicPeriod{}).
		Where("period_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// ClearActive desactiva todos los períodos
func (r *periodRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.AcademicPeriod{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}
