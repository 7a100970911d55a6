package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
	pkgerrors "gestion-academica/backend/pkg/errors"
)

// ── almacenamiento en memoria compartido por todos los repos mock ──

type mockStore struct {
	seq int

	users           map[string]*model.User
	careers         map[string]*model.Career
	periods         map[string]*model.AcademicPeriod
	subjects        map[string]*model.Subject
	commissions     map[string]*model.Commission
	scs             map[string]*model.SubjectCommission
	enrollments     map[string]*model.Enrollment
	grades          map[string]*model.Grade // key: enrollment_id
	tables          map[string]*model.ExamTable
	calls           map[string]*model.ExamCall
	examEnrollments map[string]*model.ExamEnrollment
	studentLocks    []string // alumno|materia|período en orden de toma
}

func newMockStore() *mockStore {
	return &mockStore{
		users:           make(map[string]*model.User),
		careers:         make(map[string]*model.Career),
		periods:         make(map[string]*model.AcademicPeriod),
		subjects:        make(map[string]*model.Subject),
		commissions:     make(map[string]*model.Commission),
		scs:             make(map[string]*model.SubjectCommission),
		enrollments:     make(map[string]*model.Enrollment),
		grades:          make(map[string]*model.Grade),
		tables:          make(map[string]*model.ExamTable),
		calls:           make(map[string]*model.ExamCall),
		examEnrollments: make(map[string]*model.ExamEnrollment),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// newMockRepository agregado con todos los repos sobre un mockStore (db nil: sin transacciones reales)
func newMockRepository() (*repository.Repository, *mockStore) {
	s := newMockStore()
	return &repository.Repository{
		User:              &mockUserRepo{s},
		Career:            &mockCareerRepo{s},
		Period:            &mockPeriodRepo{s},
		Subject:           &mockSubjectRepo{s},
		Commission:        &mockCommissionRepo{s},
		SubjectCommission: &mockSubjectCommissionRepo{s},
		Enrollment:        &mockEnrollmentRepo{s},
		Grade:             &mockGradeRepo{s},
		ExamTable:         &mockExamTableRepo{s},
		ExamCall:          &mockExamCallRepo{s},
		ExamEnrollment:    &mockExamEnrollmentRepo{s},
	}, s
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.DNI
	}
	m.s.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) BatchCreate(ctx context.Context, users []model.User, _ int) error {
	for i := range users {
		_ = m.Create(ctx, &users[i])
	}
	return nil
}

func (m *mockUserRepo) hydrate(u *model.User) *model.User {
	c := *u
	if c.CareerID != nil {
		c.Career = m.s.careers[*c.CareerID]
	}
	return &c
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.s.users[id]; ok {
		return m.hydrate(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByDNI(_ context.Context, dni string) (*model.User, error) {
	for _, u := range m.s.users {
		if u.DNI == dni {
			return m.hydrate(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.s.users {
		if strings.EqualFold(u.Email, email) {
			return m.hydrate(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListExistingDNIs(_ context.Context, dnis []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, d := range dnis {
		for _, u := range m.s.users {
			if u.DNI == d {
				result[d] = u.UserID
			}
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.s.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListWithFilters(_ context.Context, f *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.s.users {
		if f != nil {
			if f.Role != "" && u.Role != f.Role {
				continue
			}
			if f.CareerID != "" && (u.CareerID == nil || *u.CareerID != f.CareerID) {
				continue
			}
			if f.Keyword != "" {
				kw := strings.ToLower(f.Keyword)
				if !strings.Contains(strings.ToLower(u.Name+" "+u.LastName), kw) && !strings.Contains(u.DNI, kw) {
					continue
				}
			}
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastName < all[j].LastName })

	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	c := *user
	c.Career = nil
	m.s.users[user.UserID] = &c
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.s.users, id)
	return nil
}

// ── Mock CareerRepository ──

type mockCareerRepo struct{ s *mockStore }

func (m *mockCareerRepo) Create(_ context.Context, career *model.Career) error {
	if career.CareerID == "" {
		career.CareerID = "career-" + career.Code
	}
	m.s.careers[career.CareerID] = career
	return nil
}

func (m *mockCareerRepo) GetByID(_ context.Context, id string) (*model.Career, error) {
	if c, ok := m.s.careers[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCareerRepo) GetByCode(_ context.Context, code string) (*model.Career, error) {
	for _, c := range m.s.careers {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCareerRepo) List(_ context.Context, onlyActive bool) ([]model.Career, error) {
	var result []model.Career
	for _, c := range m.s.careers {
		if onlyActive && !c.IsActive {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCareerRepo) Update(_ context.Context, career *model.Career) error {
	m.s.careers[career.CareerID] = career
	return nil
}

func (m *mockCareerRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.s.careers, id)
	return nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct{ s *mockStore }

func (m *mockPeriodRepo) Create(_ context.Context, period *model.AcademicPeriod) error {
	if period.PeriodID == "" {
		period.PeriodID = m.s.nextID("period")
	}
	m.s.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (*model.AcademicPeriod, error) {
	if p, ok := m.s.periods[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) GetByName(_ context.Context, name string) (*model.AcademicPeriod, error) {
	for _, p := range m.s.periods {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) GetCurrent(_ context.Context) (*model.AcademicPeriod, error) {
	for _, p := range m.s.periods {
		if p.IsActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) List(_ context.Context) ([]model.AcademicPeriod, error) {
	var result []model.AcademicPeriod
	for _, p := range m.s.periods {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (m *mockPeriodRepo) Update(_ context.Context, period *model.AcademicPeriod) error {
	m.s.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.s.periods, id)
	return nil
}

func (m *mockPeriodRepo) ClearActive(_ context.Context) error {
	for _, p := range m.s.periods {
		p.IsActive = false
	}
	return nil
}

// ── Mock SubjectRepository ──

type mockSubjectRepo struct{ s *mockStore }

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	if subject.SubjectID == "" {
		subject.SubjectID = "subject-" + subject.Code
	}
	m.s.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) BatchCreate(ctx context.Context, subjects []model.Subject, _ int) error {
	for i := range subjects {
		_ = m.Create(ctx, &subjects[i])
	}
	return nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if sub, ok := m.s.subjects[id]; ok {
		c := *sub
		c.Career = m.s.careers[c.CareerID]
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) GetByCode(_ context.Context, code string) (*model.Subject, error) {
	for _, sub := range m.s.subjects {
		if sub.Code == code {
			return sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) ListExistingCodes(_ context.Context, codes []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, code := range codes {
		for _, sub := range m.s.subjects {
			if sub.Code == code {
				result[code] = sub.SubjectID
			}
		}
	}
	return result, nil
}

func (m *mockSubjectRepo) List(_ context.Context, f *repository.SubjectListFilters) ([]model.Subject, error) {
	var result []model.Subject
	for _, sub := range m.s.subjects {
		if f != nil && f.CareerID != "" && sub.CareerID != f.CareerID {
			continue
		}
		if f != nil && f.YearLevel != 0 && sub.YearLevel != f.YearLevel {
			continue
		}
		result = append(result, *sub)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockSubjectRepo) CountByCareer(_ context.Context, careerID string) (int64, error) {
	var n int64
	for _, sub := range m.s.subjects {
		if sub.CareerID == careerID {
			n++
		}
	}
	return n, nil
}

func (m *mockSubjectRepo) Update(_ context.Context, subject *model.Subject) error {
	m.s.subjects[subject.SubjectID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.s.subjects, id)
	return nil
}

// ── Mock CommissionRepository ──

type mockCommissionRepo struct{ s *mockStore }

func (m *mockCommissionRepo) Create(_ context.Context, commission *model.Commission) error {
	if commission.CommissionID == "" {
		commission.CommissionID = m.s.nextID("commission")
	}
	m.s.commissions[commission.CommissionID] = commission
	return nil
}

func (m *mockCommissionRepo) BatchCreate(ctx context.Context, commissions []model.Commission, _ int) error {
	for i := range commissions {
		_ = m.Create(ctx, &commissions[i])
	}
	return nil
}

func (m *mockCommissionRepo) hydrate(c *model.Commission) *model.Commission {
	cp := *c
	cp.Period = m.s.periods[cp.PeriodID]
	return &cp
}

func (m *mockCommissionRepo) GetByID(_ context.Context, id string) (*model.Commission, error) {
	if c, ok := m.s.commissions[id]; ok {
		return m.hydrate(c), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCommissionRepo) GetByPeriodAndName(_ context.Context, periodID, name string) (*model.Commission, error) {
	for _, c := range m.s.commissions {
		if c.PeriodID == periodID && c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCommissionRepo) ListByPeriod(_ context.Context, periodID string) ([]model.Commission, error) {
	var result []model.Commission
	for _, c := range m.s.commissions {
		if periodID == "" || c.PeriodID == periodID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCommissionRepo) Update(_ context.Context, commission *model.Commission) error {
	m.s.commissions[commission.CommissionID] = commission
	return nil
}

func (m *mockCommissionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.s.commissions, id)
	return nil
}

// ── Mock SubjectCommissionRepository ──

type mockSubjectCommissionRepo struct{ s *mockStore }

func (m *mockSubjectCommissionRepo) Create(_ context.Context, sc *model.SubjectCommission) error {
	if sc.SubjectCommissionID == "" {
		sc.SubjectCommissionID = m.s.nextID("sc")
	}
	m.s.scs[sc.SubjectCommissionID] = sc
	return nil
}

func (m *mockSubjectCommissionRepo) BatchCreate(ctx context.Context, scs []model.SubjectCommission, _ int) error {
	for i := range scs {
		_ = m.Create(ctx, &scs[i])
	}
	return nil
}

func (m *mockSubjectCommissionRepo) hydrate(sc *model.SubjectCommission) *model.SubjectCommission {
	c := *sc
	c.Subject = m.s.subjects[c.SubjectID]
	if com, ok := m.s.commissions[c.CommissionID]; ok {
		c.Commission = (&mockCommissionRepo{m.s}).hydrate(com)
	}
	c.Teacher = m.s.users[c.TeacherID]
	return &c
}

func (m *mockSubjectCommissionRepo) GetByID(_ context.Context, id string) (*model.SubjectCommission, error) {
	if sc, ok := m.s.scs[id]; ok {
		return m.hydrate(sc), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectCommissionRepo) GetBySubjectAndCommission(_ context.Context, subjectID, commissionID string) (*model.SubjectCommission, error) {
	for _, sc := range m.s.scs {
		if sc.SubjectID == subjectID && sc.CommissionID == commissionID {
			return m.hydrate(sc), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectCommissionRepo) list(match func(sc *model.SubjectCommission) bool) []model.SubjectCommission {
	var result []model.SubjectCommission
	for _, sc := range m.s.scs {
		if match(sc) {
			result = append(result, *m.hydrate(sc))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubjectCommissionID < result[j].SubjectCommissionID })
	return result
}

func (m *mockSubjectCommissionRepo) ListByCommission(_ context.Context, commissionID string) ([]model.SubjectCommission, error) {
	return m.list(func(sc *model.SubjectCommission) bool { return sc.CommissionID == commissionID }), nil
}

func (m *mockSubjectCommissionRepo) ListByTeacher(_ context.Context, teacherID, periodID string) ([]model.SubjectCommission, error) {
	return m.list(func(sc *model.SubjectCommission) bool {
		if sc.TeacherID != teacherID {
			return false
		}
		c, ok := m.s.commissions[sc.CommissionID]
		return periodID == "" || (ok && c.PeriodID == periodID)
	}), nil
}

func (m *mockSubjectCommissionRepo) ListByPeriod(_ context.Context, periodID string) ([]model.SubjectCommission, error) {
	return m.list(func(sc *model.SubjectCommission) bool {
		c, ok := m.s.commissions[sc.CommissionID]
		return periodID == "" || (ok && c.PeriodID == periodID)
	}), nil
}

func (m *mockSubjectCommissionRepo) CountBySubject(_ context.Context, subjectID string) (int64, error) {
	var n int64
	for _, sc := range m.s.scs {
		if sc.SubjectID == subjectID {
			n++
		}
	}
	return n, nil
}

func (m *mockSubjectCommissionRepo) UpdateTeacher(_ context.Context, id, teacherID, _ string) error {
	sc, ok := m.s.scs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sc.TeacherID = teacherID
	return nil
}

func (m *mockSubjectCommissionRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.s.scs, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ s *mockStore }

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	if e.EnrollmentID == "" {
		e.EnrollmentID = m.s.nextID("enrollment")
	}
	c := *e
	c.Student, c.SubjectCommission, c.Grade = nil, nil, nil
	m.s.enrollments[e.EnrollmentID] = &c
	return nil
}

func (m *mockEnrollmentRepo) BatchCreate(ctx context.Context, enrollments []model.Enrollment, _ int) error {
	for i := range enrollments {
		_ = m.Create(ctx, &enrollments[i])
	}
	return nil
}

func (m *mockEnrollmentRepo) hydrate(e *model.Enrollment) *model.Enrollment {
	c := *e
	c.Student = m.s.users[c.StudentID]
	if sc, ok := m.s.scs[c.SubjectCommissionID]; ok {
		c.SubjectCommission = (&mockSubjectCommissionRepo{m.s}).hydrate(sc)
	}
	if g, ok := m.s.grades[c.EnrollmentID]; ok {
		gc := *g
		c.Grade = &gc
	}
	return &c
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	if e, ok := m.s.enrollments[id]; ok {
		return m.hydrate(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) GetByStudentAndSubjectCommission(_ context.Context, studentID, scID string) (*model.Enrollment, error) {
	for _, e := range m.s.enrollments {
		if e.StudentID == studentID && e.SubjectCommissionID == scID {
			return m.hydrate(e), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) FindActiveForSubjectInPeriod(_ context.Context, studentID, subjectID, periodID string) (*model.Enrollment, error) {
	for _, e := range m.s.enrollments {
		if e.StudentID != studentID || e.Status != model.EnrollmentActive {
			continue
		}
		sc, ok := m.s.scs[e.SubjectCommissionID]
		if !ok || sc.SubjectID != subjectID {
			continue
		}
		if c, ok := m.s.commissions[sc.CommissionID]; ok && c.PeriodID == periodID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) CountActiveBySubjectCommission(_ context.Context, scID string) (int64, error) {
	var n int64
	for _, e := range m.s.enrollments {
		if e.SubjectCommissionID == scID && e.Status == model.EnrollmentActive {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) LockSubjectCommission(_ context.Context, scID string) error {
	if _, ok := m.s.scs[scID]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (m *mockEnrollmentRepo) LockStudentSubject(_ context.Context, studentID, subjectID, periodID string) error {
	m.s.studentLocks = append(m.s.studentLocks, studentID+"|"+subjectID+"|"+periodID)
	return nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID, periodID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.s.enrollments {
		if e.StudentID != studentID {
			continue
		}
		h := m.hydrate(e)
		if periodID != "" && (h.SubjectCommission == nil || h.SubjectCommission.Commission == nil ||
			h.SubjectCommission.Commission.PeriodID != periodID) {
			continue
		}
		result = append(result, *h)
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListBySubjectCommission(_ context.Context, scID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.s.enrollments {
		if e.SubjectCommissionID == scID && e.Status == model.EnrollmentActive {
			result = append(result, *m.hydrate(e))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Student.LastName < result[j].Student.LastName
	})
	return result, nil
}

func (m *mockEnrollmentRepo) ListConditionsForSubject(_ context.Context, studentID, subjectID string) ([]string, error) {
	var conditions []string
	for _, e := range m.s.enrollments {
		if e.StudentID != studentID || e.Status != model.EnrollmentActive {
			continue
		}
		if sc, ok := m.s.scs[e.SubjectCommissionID]; ok && sc.SubjectID == subjectID {
			conditions = append(conditions, e.Condition)
		}
	}
	return conditions, nil
}

func (m *mockEnrollmentRepo) ListExistingKeys(_ context.Context, scIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, e := range m.s.enrollments {
		for _, id := range scIDs {
			if e.SubjectCommissionID == id {
				result[repository.EnrollmentKey(e.StudentID, id)] = true
			}
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) UpdateCondition(_ context.Context, id, condition, _ string) error {
	e, ok := m.s.enrollments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Condition = condition
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(_ context.Context, id, status, _ string) error {
	e, ok := m.s.enrollments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Status = status
	return nil
}

func (m *mockEnrollmentRepo) Reactivate(_ context.Context, id, _ string) error {
	e, ok := m.s.enrollments[id]
	if !ok || e.Status != model.EnrollmentDropped {
		return gorm.ErrRecordNotFound
	}
	e.Status = model.EnrollmentActive
	e.Condition = model.ConditionEnrolled
	return nil
}

// ── Mock GradeRepository ──

type mockGradeRepo struct{ s *mockStore }

func (m *mockGradeRepo) GetByEnrollment(_ context.Context, enrollmentID string) (*model.Grade, error) {
	if g, ok := m.s.grades[enrollmentID]; ok {
		c := *g
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// Upsert replica el bloqueo optimista: la versión enviada debe coincidir con la guardada
func (m *mockGradeRepo) Upsert(_ context.Context, grade *model.Grade) error {
	stored, exists := m.s.grades[grade.EnrollmentID]
	if grade.GradeID == "" {
		if exists {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
		grade.GradeID = m.s.nextID("grade")
		grade.Version = 1
		c := *grade
		m.s.grades[grade.EnrollmentID] = &c
		return nil
	}
	if !exists || stored.Version != grade.Version {
		return pkgerrors.ErrOptimisticLock
	}
	grade.Version++
	c := *grade
	m.s.grades[grade.EnrollmentID] = &c
	return nil
}

func (m *mockGradeRepo) BatchCreate(ctx context.Context, grades []model.Grade, _ int) error {
	for i := range grades {
		if err := m.Upsert(ctx, &grades[i]); err != nil {
			return err
		}
	}
	return nil
}

// ── Mock ExamTableRepository ──

type mockExamTableRepo struct{ s *mockStore }

func (m *mockExamTableRepo) Create(_ context.Context, table *model.ExamTable) error {
	if table.TableID == "" {
		table.TableID = m.s.nextID("table")
	}
	if table.Version == 0 {
		table.Version = 1
	}
	c := *table
	c.Calls = nil
	m.s.tables[table.TableID] = &c
	return nil
}

func (m *mockExamTableRepo) GetForShare(_ context.Context, id string) (*model.ExamTable, error) {
	t, ok := m.s.tables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *t
	c.Calls = nil
	return &c, nil
}

func (m *mockExamTableRepo) GetByID(_ context.Context, id string) (*model.ExamTable, error) {
	t, ok := m.s.tables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *t
	c.Calls = nil
	for _, call := range m.s.calls {
		if call.TableID == id {
			c.Calls = append(c.Calls, *(&mockExamCallRepo{m.s}).hydrate(call))
		}
	}
	sort.Slice(c.Calls, func(i, j int) bool { return c.Calls[i].ExamDate.Before(c.Calls[j].ExamDate) })
	return &c, nil
}

func (m *mockExamTableRepo) GetByPeriodAndName(_ context.Context, periodID, name string) (*model.ExamTable, error) {
	for _, t := range m.s.tables {
		if t.PeriodID == periodID && t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamTableRepo) List(_ context.Context, f *repository.ExamTableListFilters) ([]model.ExamTable, error) {
	var result []model.ExamTable
	for _, t := range m.s.tables {
		if f != nil && f.PeriodID != "" && t.PeriodID != f.PeriodID {
			continue
		}
		if f != nil && f.Status != "" && t.Status != f.Status {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockExamTableRepo) Update(_ context.Context, table *model.ExamTable) error {
	stored, ok := m.s.tables[table.TableID]
	if !ok || stored.Version != table.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Name, stored.StartDate, stored.EndDate = table.Name, table.StartDate, table.EndDate
	stored.Version++
	table.Version++
	return nil
}

func (m *mockExamTableRepo) UpdateStatus(_ context.Context, table *model.ExamTable, status string, _ string) error {
	stored, ok := m.s.tables[table.TableID]
	if !ok || stored.Version != table.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = status
	stored.Version++
	table.Status = status
	table.Version++
	return nil
}

func (m *mockExamTableRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.s.tables, id)
	return nil
}

// ── Mock ExamCallRepository ──

type mockExamCallRepo struct{ s *mockStore }

func (m *mockExamCallRepo) Create(_ context.Context, call *model.ExamCall) error {
	if call.CallID == "" {
		call.CallID = m.s.nextID("call")
	}
	c := *call
	c.Table, c.Subject, c.President = nil, nil, nil
	m.s.calls[call.CallID] = &c
	return nil
}

func (m *mockExamCallRepo) BatchCreate(ctx context.Context, calls []model.ExamCall, _ int) error {
	for i := range calls {
		_ = m.Create(ctx, &calls[i])
	}
	return nil
}

func (m *mockExamCallRepo) hydrate(call *model.ExamCall) *model.ExamCall {
	c := *call
	if t, ok := m.s.tables[c.TableID]; ok {
		tc := *t
		tc.Calls = nil
		c.Table = &tc
	}
	c.Subject = m.s.subjects[c.SubjectID]
	if c.PresidentID != nil {
		c.President = m.s.users[*c.PresidentID]
	}
	return &c
}

func (m *mockExamCallRepo) GetByID(_ context.Context, id string) (*model.ExamCall, error) {
	if call, ok := m.s.calls[id]; ok {
		return m.hydrate(call), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamCallRepo) GetForUpdate(_ context.Context, id string) (*model.ExamCall, error) {
	if call, ok := m.s.calls[id]; ok {
		c := *call
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamCallRepo) ListByTable(_ context.Context, tableID string) ([]model.ExamCall, error) {
	var result []model.ExamCall
	for _, call := range m.s.calls {
		if call.TableID == tableID {
			result = append(result, *m.hydrate(call))
		}
	}
	return result, nil
}

func (m *mockExamCallRepo) CountByTable(_ context.Context, tableID string) (int64, error) {
	var n int64
	for _, call := range m.s.calls {
		if call.TableID == tableID {
			n++
		}
	}
	return n, nil
}

func (m *mockExamCallRepo) ExistsNumber(_ context.Context, tableID, subjectID string, callNumber int, excludeID string) (bool, error) {
	for _, call := range m.s.calls {
		if call.TableID == tableID && call.SubjectID == subjectID && call.CallNumber == callNumber && call.CallID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockExamCallRepo) Update(_ context.Context, call *model.ExamCall) error {
	c := *call
	c.Table, c.Subject, c.President = nil, nil, nil
	m.s.calls[call.CallID] = &c
	return nil
}

func (m *mockExamCallRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.s.calls, id)
	return nil
}

// ── Mock ExamEnrollmentRepository ──

type mockExamEnrollmentRepo struct{ s *mockStore }

func (m *mockExamEnrollmentRepo) Create(_ context.Context, ee *model.ExamEnrollment) error {
	if ee.ExamEnrollmentID == "" {
		ee.ExamEnrollmentID = m.s.nextID("exam-enrollment")
	}
	c := *ee
	c.Call, c.Student = nil, nil
	m.s.examEnrollments[ee.ExamEnrollmentID] = &c
	return nil
}

func (m *mockExamEnrollmentRepo) hydrate(ee *model.ExamEnrollment) *model.ExamEnrollment {
	c := *ee
	if call, ok := m.s.calls[c.CallID]; ok {
		c.Call = (&mockExamCallRepo{m.s}).hydrate(call)
	}
	c.Student = m.s.users[c.StudentID]
	return &c
}

func (m *mockExamEnrollmentRepo) GetByID(_ context.Context, id string) (*model.ExamEnrollment, error) {
	if ee, ok := m.s.examEnrollments[id]; ok {
		return m.hydrate(ee), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamEnrollmentRepo) GetActive(_ context.Context, callID, studentID string) (*model.ExamEnrollment, error) {
	for _, ee := range m.s.examEnrollments {
		if ee.CallID == callID && ee.StudentID == studentID && ee.Status != model.ExamCancelled {
			return ee, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamEnrollmentRepo) CountActiveByCall(_ context.Context, callID string) (int64, error) {
	var n int64
	for _, ee := range m.s.examEnrollments {
		if ee.CallID == callID && ee.Status != model.ExamCancelled {
			n++
		}
	}
	return n, nil
}

func (m *mockExamEnrollmentRepo) CountActiveByCalls(ctx context.Context, callIDs []string) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, id := range callIDs {
		n, _ := m.CountActiveByCall(ctx, id)
		result[id] = n
	}
	return result, nil
}

func (m *mockExamEnrollmentRepo) ActiveCallIDsForStudent(ctx context.Context, studentID string, callIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, id := range callIDs {
		if _, err := m.GetActive(ctx, id, studentID); err == nil {
			result[id] = true
		}
	}
	return result, nil
}

func (m *mockExamEnrollmentRepo) ListByCall(_ context.Context, callID string) ([]model.ExamEnrollment, error) {
	var result []model.ExamEnrollment
	for _, ee := range m.s.examEnrollments {
		if ee.CallID == callID && ee.Status != model.ExamCancelled {
			result = append(result, *m.hydrate(ee))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Student.LastName < result[j].Student.LastName })
	return result, nil
}

func (m *mockExamEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.ExamEnrollment, error) {
	var result []model.ExamEnrollment
	for _, ee := range m.s.examEnrollments {
		if ee.StudentID == studentID {
			result = append(result, *m.hydrate(ee))
		}
	}
	return result, nil
}

func (m *mockExamEnrollmentRepo) HasPassedFinal(_ context.Context, studentID, subjectID string, passingGrade float64) (bool, error) {
	for _, ee := range m.s.examEnrollments {
		if ee.StudentID != studentID || ee.Status != model.ExamGraded || ee.Grade == nil {
			continue
		}
		if call, ok := m.s.calls[ee.CallID]; ok && call.SubjectID == subjectID && *ee.Grade >= passingGrade {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockExamEnrollmentRepo) Update(_ context.Context, ee *model.ExamEnrollment) error {
	c := *ee
	c.Call, c.Student = nil, nil
	m.s.examEnrollments[ee.ExamEnrollmentID] = &c
	return nil
}
