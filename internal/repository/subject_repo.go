package repository

import (
	"context"

	"gorm.io/gorm"

	"gestion-academica/backend/internal/model"
)

// SubjectListFilters filtros del listado de materias
type SubjectListFilters struct {
	CareerID  string
	YearLevel int
}

// SubjectRepository acceso a materias
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	BatchCreate(ctx context.Context, subjects []model.Subject, chunk int) error
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	GetByCode(ctx context.Context, code string) (*model.Subject, error)
	ListExistingCodes(ctx context.Context, codes []string) (map[string]string, error)
	List(ctx context.Context, f *SubjectListFilters) ([]model.Subject, error)
	CountByCareer(ctx context.Context, careerID string) (int64, error)
	Update(ctx context.Context, subject *model.Subject) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo crea un SubjectRepository
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Omit("Career").Create(subject).Error
}

func (r *subjectRepo) BatchCreate(ctx context.Context, subjects []model.Subject, chunk int) error {
	if len(subjects) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Career").CreateInBatches(&subjects, chunk).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Preload("Career").
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) GetByCode(ctx context.Context, code string) (*model.Subject, error) {
	var subject model.Subject
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&subject).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListExistingCodes devuelve code -> subject_id de las materias ya cargadas
func (r *subjectRepo) ListExistingCodes(ctx context.Context, codes []string) (map[string]string, error) {
	result := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return result, nil
	}
	var rows []model.Subject
	if err := r.db.WithContext(ctx).
		Select("subject_id", "code").
		Where("code IN ?", codes).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		result[s.Code] = s.SubjectID
	}
	return result, nil
}

func (r *subjectRepo) List(ctx context.Context, f *SubjectListFilters) ([]model.Subject, error) {
	var subjects []model.Subject
	db := r.db.WithContext(ctx)
	if f != nil {
		if f.CareerID != "" {
			db = db.Where("career_id = ?", f.CareerID)
		}
		if f.YearLevel > 0 {
			db = db.Where("year_level = ?", f.YearLevel)
		}
	}
	err := db.Order("year_level ASC, name ASC").Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) CountByCareer(ctx context.Context, careerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Subject{}).
		Where("career_id = ?", careerID).
		Count(&count).Error
	return count, err
}

func (r *subjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Omit("Career").Save(subject).Error
}

func (r *subjectRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Subject{}).
		Where("subject_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
