package repository

import (
	"context"

	"gorm.io/gorm"

	"gestion-academica/backend/internal/model"
)

// CommissionRepository acceso a comisiones
type CommissionRepository interface {
	Create(ctx context.Context, commission *model.Commission) error
	BatchCreate(ctx context.Context, commissions []model.Commission, chunk int) error
	GetByID(ctx context.Context, id string) (*model.Commission, error)
	GetByPeriodAndName(ctx context.Context, periodID, name string) (*model.Commission, error)
	ListByPeriod(ctx context.Context, periodID string) ([]model.Commission, error)
	Update(ctx context.Context, commission *model.Commission) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type commissionRepo struct {
	db *gorm.DB
}

// NewCommissionRepo crea un CommissionRepository
func NewCommissionRepo(db *gorm.DB) CommissionRepository {
	return &commissionRepo{db: db}
}

func (r *commissionRepo) Create(ctx context.Context, commission *model.Commission) error {
	return r.db.WithContext(ctx).Omit("Period").Create(commission).Error
}

func (r *commissionRepo) BatchCreate(ctx context.Context, commissions []model.Commission, chunk int) error {
	if len(commissions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Period").CreateInBatches(&commissions, chunk).Error
}

func (r *commissionRepo) GetByID(ctx context.Context, id string) (*model.Commission, error) {
	var commission model.Commission
	err := r.db.WithContext(ctx).
		Preload("Period").
		Where("commission_id = ?", id).
		First(&commission).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepo) GetByPeriodAndName(ctx context.Context, periodID, name string) (*model.Commission, error) {
	var commission model.Commission
	err := r.db.WithContext(ctx).
		Where("period_id = ? AND name = ?", periodID, name).
		First(&commission).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.Commission, error) {
	var commissions []model.Commission
	db := r.db.WithContext(ctx)
	if periodID != "" {
		db = db.Where("period_id = ?", periodID)
	}
	err := db.Order("name ASC").Find(&commissions).Error
	return commissions, err
}

func (r *commissionRepo) Update(ctx context.Context, commission *model.Commission) error {
	return r.db.WithContext(ctx).Omit("Period").Save(commission).Error
}

func (r *commissionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Commission{}).
		Where("commission_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
