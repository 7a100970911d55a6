package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository agrupa todos los repositorios
type Repository struct {
	db *gorm.DB

	User              UserRepository
	Career            CareerRepository
	Period            PeriodRepository
	Subject           SubjectRepository
	Commission        CommissionRepository
	SubjectCommission SubjectCommissionRepository
	Enrollment        EnrollmentRepository
	Grade             GradeRepository
	ExamTable         ExamTableRepository
	ExamCall          ExamCallRepository
	ExamEnrollment    ExamEnrollmentRepository
}

// NewRepository crea el agregado sobre una conexión
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                db,
		User:              NewUserRepo(db),
		Career:            NewCareerRepo(db),
		Period:            NewPeriodRepo(db),
		Subject:           NewSubjectRepo(db),
		Commission:        NewCommissionRepo(db),
		SubjectCommission: NewSubjectCommissionRepo(db),
		Enrollment:        NewEnrollmentRepo(db),
		Grade:             NewGradeRepo(db),
		ExamTable:         NewExamTableRepo(db),
		ExamCall:          NewExamCallRepo(db),
		ExamEnrollment:    NewExamEnrollmentRepo(db),
	}
}

// BeginTx abre una transacción.
// Con db nil (tests con repos mock) devuelve (nil, nil) y WithTx conserva los mocks.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx devuelve un agregado cuyos repositorios operan sobre tx
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Ping verifica la conexión a la base
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
