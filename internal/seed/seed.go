// Package seed carga datos de prueba de forma idempotente.
// Cada entidad se busca por su clave natural (DNI, código, nombre) y solo se insertan las que faltan.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
	"gestion-academica/backend/internal/service"
)

// Options parámetros de una corrida
type Options struct {
	Careers           int
	StudentsPerCareer int
	TeachersPerCareer int
	ChunkSize         int
	DefaultPassword   string
	DryRun            bool
	BcryptCost        int
	RandSeed          int64
	Now               time.Time
}

// OptionsFrom opciones a partir de la configuración
func OptionsFrom(cfg *config.SeedConfig) Options {
	return Options{
		Careers:           cfg.Careers,
		StudentsPerCareer: cfg.StudentsPerCareer,
		TeachersPerCareer: cfg.TeachersPerCareer,
		ChunkSize:         cfg.ChunkSize,
		DefaultPassword:   cfg.DefaultPassword,
	}
}

func (o *Options) normalize() {
	if o.Careers <= 0 {
		o.Careers = 1
	}
	if o.TeachersPerCareer <= 0 {
		o.TeachersPerCareer = 1
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 100
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	if o.RandSeed == 0 {
		o.RandSeed = 42
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
}

// Report filas insertadas y existentes por entidad
type Report struct {
	Inserted map[string]int
	Skipped  map[string]int
	DryRun   bool
}

func newReport(dry bool) *Report {
	return &Report{Inserted: map[string]int{}, Skipped: map[string]int{}, DryRun: dry}
}

func (r *Report) add(entity string, inserted, skipped int) {
	r.Inserted[entity] += inserted
	r.Skipped[entity] += skipped
}

// Entidades del reporte
const (
	EntityCareers            = "careers"
	EntityUsers              = "users"
	EntitySubjects           = "subjects"
	EntityPeriods            = "periods"
	EntityCommissions        = "commissions"
	EntitySubjectCommissions = "subject_commissions"
	EntityEnrollments        = "enrollments"
	EntityGrades             = "grades"
	EntityExamTables         = "exam_tables"
	EntityExamCalls          = "exam_calls"
)

// Seeder siembra la base a través de los repositorios
type Seeder struct {
	repo       *repository.Repository
	thresholds service.Thresholds
	opts       Options
	logger     *zap.Logger
}

// NewSeeder crea el Seeder
func NewSeeder(repo *repository.Repository, thresholds service.Thresholds, opts Options, logger *zap.Logger) *Seeder {
	opts.normalize()
	return &Seeder{repo: repo, thresholds: thresholds, opts: opts, logger: logger}
}

// careerState ids resueltos de una carrera
type careerState struct {
	idx        int
	code       string
	id         string
	teacherIDs []string
	studentIDs []string
	// materias por año
	subjects map[int][]model.Subject
	// comisión por año
	commissions map[int]string
}

// Run siembra todo en una transacción. En dry-run se revierte al final.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir la transacción: %w", err)
	}
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	report, err := s.seed(ctx, s.repo.WithTx(tx))
	if err != nil {
		rollback()
		return nil, err
	}

	if s.opts.DryRun {
		rollback()
	} else if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, fmt.Errorf("no se pudo confirmar la transacción: %w", err)
		}
	}

	for entity, n := range report.Inserted {
		s.logger.Info("seed",
			zap.String("entity", entity),
			zap.Int("inserted", n),
			zap.Int("skipped", report.Skipped[entity]),
		)
	}
	s.logger.Info("seed finalizado",
		zap.Bool("dry_run", s.opts.DryRun),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func (s *Seeder) seed(ctx context.Context, repo *repository.Repository) (*Report, error) {
	report := newReport(s.opts.DryRun)

	hash, err := bcrypt.GenerateFromPassword([]byte(s.opts.DefaultPassword), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("no se pudo generar el hash: %w", err)
	}

	careers, err := s.seedCareers(ctx, repo, report)
	if err != nil {
		return nil, err
	}
	if err := s.seedUsers(ctx, repo, careers, string(hash), report); err != nil {
		return nil, err
	}
	if err := s.seedSubjects(ctx, repo, careers, report); err != nil {
		return nil, err
	}
	period, err := s.seedPeriod(ctx, repo, report)
	if err != nil {
		return nil, err
	}
	if err := s.seedCommissions(ctx, repo, period, careers, report); err != nil {
		return nil, err
	}
	scByCareer, err := s.seedSubjectCommissions(ctx, repo, careers, report)
	if err != nil {
		return nil, err
	}
	if err := s.seedEnrollments(ctx, repo, period, careers, scByCareer, report); err != nil {
		return nil, err
	}
	if err := s.seedExamTable(ctx, repo, period, careers, scByCareer, report); err != nil {
		return nil, err
	}
	return report, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ────────────────────── carreras ──────────────────────

func (s *Seeder) seedCareers(ctx context.Context, repo *repository.Repository, report *Report) ([]*careerState, error) {
	var out []*careerState
	inserted, skipped := 0, 0
	for i, bp := range Careers(s.opts.Careers) {
		st := &careerState{idx: i, code: bp.Code, subjects: map[int][]model.Subject{}, commissions: map[int]string{}}
		existing, err := repo.Career.GetByCode(ctx, bp.Code)
		switch {
		case err == nil:
			st.id = existing.CareerID
			skipped++
		case isNotFound(err):
			career := &model.Career{CareerID: uuid.NewString(), Code: bp.Code, Name: bp.Name, IsActive: true}
			if err := repo.Career.Create(ctx, career); err != nil {
				return nil, fmt.Errorf("carrera %s: %w", bp.Code, err)
			}
			st.id = career.CareerID
			inserted++
		default:
			return nil, fmt.Errorf("carrera %s: %w", bp.Code, err)
		}
		out = append(out, st)
	}
	report.add(EntityCareers, inserted, skipped)
	return out, nil
}

// ────────────────────── usuarios ──────────────────────

func (s *Seeder) seedUsers(ctx context.Context, repo *repository.Repository, careers []*careerState, hash string, report *Report) error {
	type pending struct {
		p      Person
		career *careerState
	}
	var all []pending
	for _, p := range Staff() {
		all = append(all, pending{p: p})
	}
	for _, c := range careers {
		for _, p := range Teachers(c.idx, s.opts.TeachersPerCareer) {
			all = append(all, pending{p: p, career: c})
		}
		for _, p := range Students(c.idx, s.opts.StudentsPerCareer) {
			all = append(all, pending{p: p, career: c})
		}
	}

	for start := 0; start < len(all); start += s.opts.ChunkSize {
		end := min(start+s.opts.ChunkSize, len(all))
		chunk := all[start:end]

		dnis := make([]string, len(chunk))
		for i, u := range chunk {
			dnis[i] = u.p.DNI
		}
		existing, err := repo.User.ListExistingDNIs(ctx, dnis)
		if err != nil {
			return fmt.Errorf("usuarios: %w", err)
		}

		var batch []model.User
		for _, u := range chunk {
			id, found := existing[u.p.DNI]
			if !found {
				id = uuid.NewString()
				user := model.User{
					UserID:       id,
					Name:         u.p.Name,
					LastName:     u.p.LastName,
					DNI:          u.p.DNI,
					Email:        u.p.Email,
					PasswordHash: hash,
					Role:         u.p.Role,
				}
				if u.p.Role == model.RoleStudent {
					careerID := u.career.id
					user.CareerID = &careerID
				}
				batch = append(batch, user)
			}
			if u.career != nil {
				switch u.p.Role {
				case model.RoleTeacher:
					u.career.teacherIDs = append(u.career.teacherIDs, id)
				case model.RoleStudent:
					u.career.studentIDs = append(u.career.studentIDs, id)
				}
			}
		}
		if err := repo.User.BatchCreate(ctx, batch, s.opts.ChunkSize); err != nil {
			return fmt.Errorf("usuarios: %w", err)
		}
		report.add(EntityUsers, len(batch), len(chunk)-len(batch))
	}
	return nil
}

// ────────────────────── materias ──────────────────────

func (s *Seeder) seedSubjects(ctx context.Context, repo *repository.Repository, careers []*careerState, report *Report) error {
	for _, c := range careers {
		bps := Subjects(c.code)
		codes := make([]string, len(bps))
		for i, bp := range bps {
			codes[i] = bp.Code
		}
		existing, err := repo.Subject.ListExistingCodes(ctx, codes)
		if err != nil {
			return fmt.Errorf("materias de %s: %w", c.code, err)
		}

		var batch []model.Subject
		for _, bp := range bps {
			subject := model.Subject{
				SubjectID:   existing[bp.Code],
				CareerID:    c.id,
				Code:        bp.Code,
				Name:        bp.Name,
				YearLevel:   bp.YearLevel,
				PeriodType:  model.PeriodAnnual,
				WeeklyHours: 4,
			}
			if subject.SubjectID == "" {
				subject.SubjectID = uuid.NewString()
				batch = append(batch, subject)
			}
			c.subjects[bp.YearLevel] = append(c.subjects[bp.YearLevel], subject)
		}
		if err := repo.Subject.BatchCreate(ctx, batch, s.opts.ChunkSize); err != nil {
			return fmt.Errorf("materias de %s: %w", c.code, err)
		}
		report.add(EntitySubjects, len(batch), len(bps)-len(batch))
	}
	return nil
}

// ────────────────────── período ──────────────────────

func (s *Seeder) seedPeriod(ctx context.Context, repo *repository.Repository, report *Report) (*model.AcademicPeriod, error) {
	name := PeriodName(s.opts.Now.Year())
	existing, err := repo.Period.GetByName(ctx, name)
	if err == nil {
		report.add(EntityPeriods, 0, 1)
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("período: %w", err)
	}

	period := Period(s.opts.Now)
	period.PeriodID = uuid.NewString()
	// queda activo solo si no hay otro activo
	if _, err := repo.Period.GetCurrent(ctx); isNotFound(err) {
		period.IsActive = true
	} else if err != nil {
		return nil, fmt.Errorf("período: %w", err)
	}
	if err := repo.Period.Create(ctx, &period); err != nil {
		return nil, fmt.Errorf("período: %w", err)
	}
	report.add(EntityPeriods, 1, 0)
	return &period, nil
}

// ────────────────────── comisiones ──────────────────────

func (s *Seeder) seedCommissions(ctx context.Context, repo *repository.Repository, period *model.AcademicPeriod, careers []*careerState, report *Report) error {
	var batch []model.Commission
	skipped := 0
	for _, c := range careers {
		for year := 1; year <= YearLevels(); year++ {
			name := CommissionName(c.code, year)
			existing, err := repo.Commission.GetByPeriodAndName(ctx, period.PeriodID, name)
			switch {
			case err == nil:
				c.commissions[year] = existing.CommissionID
				skipped++
			case isNotFound(err):
				id := uuid.NewString()
				c.commissions[year] = id
				batch = append(batch, model.Commission{
					CommissionID: id,
					PeriodID:     period.PeriodID,
					Name:         name,
					Shift:        shiftFor(year),
					Capacity:     s.opts.StudentsPerCareer + 10,
				})
			default:
				return fmt.Errorf("comisión %s: %w", name, err)
			}
		}
	}
	if err := repo.Commission.BatchCreate(ctx, batch, s.opts.ChunkSize); err != nil {
		return fmt.Errorf("comisiones: %w", err)
	}
	report.add(EntityCommissions, len(batch), skipped)
	return nil
}

func shiftFor(year int) string {
	switch year % 3 {
	case 1:
		return "morning"
	case 2:
		return "afternoon"
	default:
		return "evening"
	}
}

// ────────────────────── materias-comisión ──────────────────────

// scSeed materia-comisión resuelta con la materia para armar inscripciones y llamados
type scSeed struct {
	id        string
	subject   model.Subject
	teacherID string
}

func (s *Seeder) seedSubjectCommissions(ctx context.Context, repo *repository.Repository, careers []*careerState, report *Report) (map[string][]scSeed, error) {
	out := make(map[string][]scSeed, len(careers))
	var batch []model.SubjectCommission
	skipped := 0
	for _, c := range careers {
		n := 0
		for year := 1; year <= YearLevels(); year++ {
			commissionID := c.commissions[year]
			for _, subject := range c.subjects[year] {
				teacherID := c.teacherIDs[n%len(c.teacherIDs)]
				n++
				existing, err := repo.SubjectCommission.GetBySubjectAndCommission(ctx, subject.SubjectID, commissionID)
				switch {
				case err == nil:
					out[c.code] = append(out[c.code], scSeed{id: existing.SubjectCommissionID, subject: subject, teacherID: existing.TeacherID})
					skipped++
				case isNotFound(err):
					sc := model.SubjectCommission{
						SubjectCommissionID: uuid.NewString(),
						SubjectID:           subject.SubjectID,
						CommissionID:        commissionID,
						TeacherID:           teacherID,
					}
					batch = append(batch, sc)
					out[c.code] = append(out[c.code], scSeed{id: sc.SubjectCommissionID, subject: subject, teacherID: teacherID})
				default:
					return nil, fmt.Errorf("materia-comisión %s: %w", subject.Code, err)
				}
			}
		}
	}
	if err := repo.SubjectCommission.BatchCreate(ctx, batch, s.opts.ChunkSize); err != nil {
		return nil, fmt.Errorf("materias-comisión: %w", err)
	}
	report.add(EntitySubjectCommissions, len(batch), skipped)
	return out, nil
}

// ────────────────────── inscripciones y notas ──────────────────────

// seedEnrollments inscribe a cada alumno en las materias de primer año
func (s *Seeder) seedEnrollments(ctx context.Context, repo *repository.Repository, period *model.AcademicPeriod, careers []*careerState, scByCareer map[string][]scSeed, report *Report) error {
	rng := rand.New(rand.NewSource(s.opts.RandSeed))
	var (
		enrollments []model.Enrollment
		grades      []model.Grade
		skipped     int
	)
	for _, c := range careers {
		var firstYear []scSeed
		ids := make([]string, 0)
		for _, sc := range scByCareer[c.code] {
			if sc.subject.YearLevel == 1 {
				firstYear = append(firstYear, sc)
				ids = append(ids, sc.id)
			}
		}
		existing, err := repo.Enrollment.ListExistingKeys(ctx, ids)
		if err != nil {
			return fmt.Errorf("inscripciones de %s: %w", c.code, err)
		}

		for _, studentID := range c.studentIDs {
			for _, sc := range firstYear {
				if existing[repository.EnrollmentKey(studentID, sc.id)] {
					skipped++
					continue
				}
				enrollment := model.Enrollment{
					EnrollmentID:        uuid.NewString(),
					StudentID:           studentID,
					SubjectCommissionID: sc.id,
					Status:              model.EnrollmentActive,
					Condition:           model.ConditionEnrolled,
					EnrolledAt:          s.opts.Now,
				}
				if scores, attendance, ok := RandomGrade(rng, period.PartialsRequired); ok {
					condition, average := service.DeriveCondition(scores, attendance, s.thresholds)
					enrollment.Condition = condition
					teacherID := sc.teacherID
					grade := model.Grade{
						GradeID:      uuid.NewString(),
						EnrollmentID: enrollment.EnrollmentID,
						Attendance:   attendance,
						Average:      average,
						Condition:    condition,
						GradedBy:     &teacherID,
					}
					for i, v := range scores {
						grade.SetPartial(i+1, v)
					}
					grades = append(grades, grade)
				}
				enrollments = append(enrollments, enrollment)
			}
		}
	}

	if err := repo.Enrollment.BatchCreate(ctx, enrollments, s.opts.ChunkSize); err != nil {
		return fmt.Errorf("inscripciones: %w", err)
	}
	if err := repo.Grade.BatchCreate(ctx, grades, s.opts.ChunkSize); err != nil {
		return fmt.Errorf("notas: %w", err)
	}
	report.add(EntityEnrollments, len(enrollments), skipped)
	report.add(EntityGrades, len(grades), 0)
	return nil
}

// ────────────────────── mesa de examen ──────────────────────

// seedExamTable mesa de julio con dos llamados por materia de primer año
func (s *Seeder) seedExamTable(ctx context.Context, repo *repository.Repository, period *model.AcademicPeriod, careers []*careerState, scByCareer map[string][]scSeed, report *Report) error {
	name := ExamTableName(period.Year)
	if _, err := repo.ExamTable.GetByPeriodAndName(ctx, period.PeriodID, name); err == nil {
		report.add(EntityExamTables, 0, 1)
		return nil
	} else if !isNotFound(err) {
		return fmt.Errorf("mesa de examen: %w", err)
	}

	table := ExamTable(period.Year)
	table.TableID = uuid.NewString()
	table.PeriodID = period.PeriodID

	var calls []model.ExamCall
	day := 0
	for _, c := range careers {
		for _, sc := range scByCareer[c.code] {
			if sc.subject.YearLevel != 1 {
				continue
			}
			president := sc.teacherID
			first := table.StartDate.AddDate(0, 0, day%10).Add(9 * time.Hour)
			day++
			for n, date := range []time.Time{first, first.AddDate(0, 0, 14)} {
				calls = append(calls, model.ExamCall{
					CallID:      uuid.NewString(),
					TableID:     table.TableID,
					SubjectID:   sc.subject.SubjectID,
					CallNumber:  n + 1,
					ExamDate:    date,
					Classroom:   fmt.Sprintf("Aula %d", 100+day),
					Quota:       30,
					PresidentID: &president,
				})
			}
		}
	}
	// una mesa abierta necesita al menos un llamado
	if len(calls) == 0 {
		table.Status = model.TableDraft
	}

	if err := repo.ExamTable.Create(ctx, &table); err != nil {
		return fmt.Errorf("mesa de examen: %w", err)
	}
	if err := repo.ExamCall.BatchCreate(ctx, calls, s.opts.ChunkSize); err != nil {
		return fmt.Errorf("llamados: %w", err)
	}
	report.add(EntityExamTables, 1, 0)
	report.add(EntityExamCalls, len(calls), 0)
	return nil
}
