package handler

import (
	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/service"
)

// Handler agregado de todos los handlers
type Handler struct {
	Auth           *AuthHandler
	User           *UserHandler
	Career         *CareerHandler
	Subject        *SubjectHandler
	Period         *PeriodHandler
	Commission     *CommissionHandler
	Enrollment     *EnrollmentHandler
	ExamTable      *ExamTableHandler
	ExamEnrollment *ExamEnrollmentHandler
	Export         *ExportHandler
}

// NewHandler crea el agregado de handlers
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth, cfg),
		User:           NewUserHandler(svc.User),
		Career:         NewCareerHandler(svc.Career),
		Subject:        NewSubjectHandler(svc.Subject),
		Period:         NewPeriodHandler(svc.Period),
		Commission:     NewCommissionHandler(svc.Commission),
		Enrollment:     NewEnrollmentHandler(svc.Enrollment, svc.Grade),
		ExamTable:      NewExamTableHandler(svc.ExamTable),
		ExamEnrollment: NewExamEnrollmentHandler(svc.ExamEnrollment),
		Export:         NewExportHandler(svc.Export),
	}
}
