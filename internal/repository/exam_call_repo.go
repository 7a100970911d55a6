package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gestion-academica/backend/internal/model"
)

// ExamCallRepository acceso a llamados de examen
type ExamCallRepository interface {
	Create(ctx context.Context, call *model.ExamCall) error
	BatchCreate(ctx context.Context, calls []model.ExamCall, chunk int) error
	GetByID(ctx context.Context, id string) (*model.ExamCall, error)
	GetForUpdate(ctx context.Context, id string) (*model.ExamCall, error)
	ListByTable(ctx context.Context, tableID string) ([]model.ExamCall, error)
	CountByTable(ctx context.Context, tableID string) (int64, error)
	ExistsNumber(ctx context.Context, tableID, subjectID string, callNumber int, excludeID string) (bool, error)
	Update(ctx context.Context, call *model.ExamCall) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type examCallRepo struct {
	db *gorm.DB
}

// NewExamCallRepo crea un ExamCallRepository
func NewExamCallRepo(db *gorm.DB) ExamCallRepository {
	return &examCallRepo{db: db}
}

func (r *examCallRepo) Create(ctx context.Context, call *model.ExamCall) error {
	return r.db.WithContext(ctx).Omit("Table", "Subject", "President").Create(call).Error
}

func (r *examCallRepo) BatchCreate(ctx context.Context, calls []model.ExamCall, chunk int) error {
	if len(calls) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit("Table", "Subject", "President").
		CreateInBatches(&calls, chunk).Error
}

func (r *examCallRepo) GetByID(ctx context.Context, id string) (*model.ExamCall, error) {
	var call model.ExamCall
	err := r.db.WithContext(ctx).
		Preload("Table").
		Preload("Subject").
		Preload("President").
		Where("call_id = ?", id).
		First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

// GetForUpdate lee el llamado con SELECT ... FOR UPDATE (uso dentro de transacción)
func (r *examCallRepo) GetForUpdate(ctx context.Context, id string) (*model.ExamCall, error) {
	var call model.ExamCall
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("call_id = ?", id).
		First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *examCallRepo) ListByTable(ctx context.Context, tableID string) ([]model.ExamCall, error) {
	var calls []model.ExamCall
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("President").
		Where("table_id = ?", tableID).
		Order("exam_date ASC, call_number ASC").
		Find(&calls).Error
	return calls, err
}

func (r *examCallRepo) CountByTable(ctx context.Context, tableID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ExamCall{}).
		Where("table_id = ?", tableID).
		Count(&count).Error
	return count, err
}

// ExistsNumber indica si ya hay un llamado con ese número para la materia en la mesa
func (r *examCallRepo) ExistsNumber(ctx context.Context, tableID, subjectID string, callNumber int, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.ExamCall{}).
		Where("table_id = ? AND subject_id = ? AND call_number = ?", tableID, subjectID, callNumber)
	if excludeID != "" {
		db = db.Where("call_id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *examCallRepo) Update(ctx context.Context, call *model.ExamCall) error {
	return r.db.WithContext(ctx).Omit("Table", "Subject", "President").Save(call).Error
}

func (r *examCallRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ExamCall{}).
		Where("call_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
