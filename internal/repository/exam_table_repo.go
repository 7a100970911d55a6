package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pkgerrors "gestion-academica/backend/pkg/errors"

	"gestion-academica/backend/internal/model"
)

// ExamTableListFilters filtros del listado de mesas
type ExamTableListFilters struct {
	PeriodID string
	Status   string
}

// ExamTableRepository acceso a mesas de examen
type ExamTableRepository interface {
	Create(ctx context.Context, table *model.ExamTable) error
	GetByID(ctx context.Context, id string) (*model.ExamTable, error)
	GetForShare(ctx context.Context, id string) (*model.ExamTable, error)
	GetByPeriodAndName(ctx context.Context, periodID, name string) (*model.ExamTable, error)
	List(ctx context.Context, f *ExamTableListFilters) ([]model.ExamTable, error)
	Update(ctx context.Context, table *model.ExamTable) error
	UpdateStatus(ctx context.Context, table *model.ExamTable, status string, updatedBy string) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type examTableRepo struct {
	db *gorm.DB
}

// NewExamTableRepo crea un ExamTableRepository
func NewExamTableRepo(db *gorm.DB) ExamTableRepository {
	return &examTableRepo{db: db}
}

func (r *examTableRepo) Create(ctx context.Context, table *model.ExamTable) error {
	return r.db.WithContext(ctx).Omit("Calls").Create(table).Error
}

func (r *examTableRepo) GetByID(ctx context.Context, id string) (*model.ExamTable, error) {
	var table model.ExamTable
	err := r.db.WithContext(ctx).
		Preload("Calls", func(db *gorm.DB) *gorm.DB {
			return db.Order("exam_date ASC, call_number ASC")
		}).
		Preload("Calls.Subject").
		Preload("Calls.President").
		Where("table_id = ?", id).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// GetForShare lee la mesa con SELECT ... FOR SHARE: un cambio de estado concurrente espera al commit
func (r *examTableRepo) GetForShare(ctx context.Context, id string) (*model.ExamTable, error) {
	var table model.ExamTable
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("table_id = ?", id).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *examTableRepo) GetByPeriodAndName(ctx context.Context, periodID, name string) (*model.ExamTable, error) {
	var table model.ExamTable
	if err := r.db.WithContext(ctx).
		Where("period_id = ? AND name = ?", periodID, name).
		First(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *examTableRepo) List(ctx context.Context, f *ExamTableListFilters) ([]model.ExamTable, error) {
	var tables []model.ExamTable
	db := r.db.WithContext(ctx)
	if f != nil {
		if f.PeriodID != "" {
			db = db.Where("period_id = ?", f.PeriodID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
	}
	err := db.Order("start_date DESC").Find(&tables).Error
	return tables, err
}

func (r *examTableRepo) Update(ctx context.Context, table *model.ExamTable) error {
	result := r.db.WithContext(ctx).
		Model(&model.ExamTable{}).
		Where("table_id = ? AND version = ?", table.TableID, table.Version).
		Updates(map[string]interface{}{
			"name":       table.Name,
			"start_date": table.StartDate,
			"end_date":   table.EndDate,
			"updated_by": table.UpdatedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	table.Version++
	return nil
}

// UpdateStatus cambia el estado si la versión leída sigue vigente
func (r *examTableRepo) UpdateStatus(ctx context.Context, table *model.ExamTable, status string, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.ExamTable{}).
		Where("table_id = ? AND version = ?", table.TableID, table.Version).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	table.Status = status
	table.Version++
	return nil
}

func (r *examTableRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ExamTable{}).
		Where("table_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
