package repository

import (
	"context"

	"gorm.io/gorm"

	"gestion-academica/backend/internal/model"
)

// CareerRepository acceso a carreras
type CareerRepository interface {
	Create(ctx context.Context, career *model.Career) error
	GetByID(ctx context.Context, id string) (*model.Career, error)
	GetByCode(ctx context.Context, code string) (*model.Career, error)
	List(ctx context.Context, onlyActive bool) ([]model.Career, error)
	Update(ctx context.Context, career *model.Career) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type careerRepo struct {
	db *gorm.DB
}

// NewCareerRepo crea un CareerRepository
func NewCareerRepo(db *gorm.DB) CareerRepository {
	return &careerRepo{db: db}
}

func (r *careerRepo) Create(ctx context.Context, career *model.Career) error {
	return r.db.WithContext(ctx).Create(career).Error
}

func (r *careerRepo) GetByID(ctx context.Context, id string) (*model.Career, error) {
	var career model.Career
	if err := r.db.WithContext(ctx).Where("career_id = ?", id).First(&career).Error; err != nil {
		return nil, err
	}
	return &career, nil
}

func (r *careerRepo) GetByCode(ctx context.Context, code string) (*model.Career, error) {
	var career model.Career
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&career).Error; err != nil {
		return nil, err
	}
	return &career, nil
}

func (r *careerRepo) List(ctx context.Context, onlyActive bool) ([]model.Career, error) {
	var careers []model.Career
	db := r.db.WithContext(ctx)
	if onlyActive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&careers).Error
	return careers, err
}

func (r *careerRepo) Update(ctx context.Context, career *model.Career) error {
	return r.db.WithContext(ctx).Save(career).Error
}

func (r *careerRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Career{}).
		Where("career_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
