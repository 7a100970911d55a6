package service

import (
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/repository"
	"gestion-academica/backend/pkg/jwt"
)

const (
	catalogCacheTTL     = 10 * time.Minute
	catalogCacheCleanup = 20 * time.Minute
)

// Service agregado de todos los servicios
type Service struct {
	Auth           AuthService
	User           UserService
	Career         CareerService
	Subject        SubjectService
	Period         PeriodService
	Commission     CommissionService
	Enrollment     EnrollmentService
	Grade          GradeService
	ExamTable      ExamTableService
	ExamEnrollment ExamEnrollmentService
	Export         ExportService
}

// NewService crea el agregado. blacklist puede ser nil cuando Redis no está disponible.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	loc := cfg.Server.Location()
	catalog := cache.New(catalogCacheTTL, catalogCacheCleanup)

	grade := NewGradeService(repo, ThresholdsFrom(&cfg.Grading), logger)
	examTable := NewExamTableService(repo, &cfg.Exams, loc, logger)
	examEnrollment := NewExamEnrollmentService(repo, cfg, loc, logger)

	return &Service{
		Auth:           NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		User:           NewUserService(repo, logger),
		Career:         NewCareerService(repo, catalog, logger),
		Subject:        NewSubjectService(repo, catalog, logger),
		Period:         NewPeriodService(repo, catalog, logger),
		Commission:     NewCommissionService(repo, logger),
		Enrollment:     NewEnrollmentService(repo, loc, logger),
		Grade:          grade,
		ExamTable:      examTable,
		ExamEnrollment: examEnrollment,
		Export:         NewExportService(grade, examTable, examEnrollment, logger),
	}
}
