package repository

import (
	"context"

	"gorm.io/gorm"

	"gestion-academica/backend/internal/model"
)

// SubjectCommissionRepository acceso a materias dictadas por comisión
type SubjectCommissionRepository interface {
	Create(ctx context.Context, sc *model.SubjectCommission) error
	BatchCreate(ctx context.Context, scs []model.SubjectCommission, chunk int) error
	GetByID(ctx context.Context, id string) (*model.SubjectCommission, error)
	GetBySubjectAndCommission(ctx context.Context, subjectID, commissionID string) (*model.SubjectCommission, error)
	ListByCommission(ctx context.Context, commissionID string) ([]model.SubjectCommission, error)
	ListByTeacher(ctx context.Context, teacherID, periodID string) ([]model.SubjectCommission, error)
	ListByPeriod(ctx context.Context, periodID string) ([]model.SubjectCommission, error)
	CountBySubject(ctx context.Context, subjectID string) (int64, error)
	UpdateTeacher(ctx context.Context, id, teacherID, updatedBy string) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type subjectCommissionRepo struct {
	db *gorm.DB
}

// NewSubjectCommissionRepo crea un SubjectCommissionRepository
func NewSubjectCommissionRepo(db *gorm.DB) SubjectCommissionRepository {
	return &subjectCommissionRepo{db: db}
}

func (r *subjectCommissionRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Commission.Period").
		Preload("Teacher")
}

func (r *subjectCommissionRepo) Create(ctx context.Context, sc *model.SubjectCommission) error {
	return r.db.WithContext(ctx).Omit("Subject", "Commission", "Teacher").Create(sc).Error
}

func (r *subjectCommissionRepo) BatchCreate(ctx context.Context, scs []model.SubjectCommission, chunk int) error {
	if len(scs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit("Subject", "Commission", "Teacher").
		CreateInBatches(&scs, chunk).Error
}

func (r *subjectCommissionRepo) GetByID(ctx context.Context, id string) (*model.SubjectCommission, error) {
	var sc model.SubjectCommission
	if err := r.withRelations(ctx).Where("subject_commission_id = ?", id).First(&sc).Error; err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *subjectCommissionRepo) GetBySubjectAndCommission(ctx context.Context, subjectID, commissionID string) (*model.SubjectCommission, error) {
	var sc model.SubjectCommission
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND commission_id = ?", subjectID, commissionID).
		First(&sc).Error
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *subjectCommissionRepo) ListByCommission(ctx context.Context, commissionID string) ([]model.SubjectCommission, error) {
	var scs []model.SubjectCommission
	err := r.withRelations(ctx).
		Where("commission_id = ?", commissionID).
		Find(&scs).Error
	return scs, err
}

// ListByTeacher materias que dicta un docente; periodID vacío lista todos los períodos
func (r *subjectCommissionRepo) ListByTeacher(ctx context.Context, teacherID, periodID string) ([]model.SubjectCommission, error) {
	var scs []model.SubjectCommission
	db := r.withRelations(ctx).Where("teacher_id = ?", teacherID)
	if periodID != "" {
		db = db.Where("commission_id IN (?)",
			r.db.Model(&model.Commission{}).Select("commission_id").Where("period_id = ?", periodID))
	}
	err := db.Find(&scs).Error
	return scs, err
}

func (r *subjectCommissionRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.SubjectCommission, error) {
	var scs []model.SubjectCommission
	err := r.withRelations(ctx).
		Where("commission_id IN (?)",
			r.db.Model(&model.Commission{}).Select("commission_id").Where("period_id = ?", periodID)).
		Find(&scs).Error
	return scs, err
}

func (r *subjectCommissionRepo) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SubjectCommission{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error
	return count, err
}

func (r *subjectCommissionRepo) UpdateTeacher(ctx context.Context, id, teacherID, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.SubjectCommission{}).
		Where("subject_commission_id = ?", id).
		Updates(map[string]interface{}{
			"teacher_id": teacherID,
			"updated_by": updatedBy,
			"version":    gorm.Expr("version + 1"),
		}).Error
}

func (r *subjectCommissionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.SubjectCommission{}).
		Where("subject_commission_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
