package service

import (
	"time"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:                 user.UserID,
		Name:               user.Name,
		LastName:           user.LastName,
		DNI:                user.DNI,
		Email:              user.Email,
		Role:               user.Role,
		Career:             toCareerBrief(user.Career),
		MustChangePassword: user.MustChangePassword,
		CreatedAt:          formatTimestamp(user.CreatedAt),
	}
}

func toUserBrief(user *model.User) *dto.UserBrief {
	if user == nil {
		return nil
	}
	return &dto.UserBrief{ID: user.UserID, FullName: user.FullName(), DNI: user.DNI}
}

func toCareerBrief(career *model.Career) *dto.CareerBrief {
	if career == nil {
		return nil
	}
	return &dto.CareerBrief{ID: career.CareerID, Code: career.Code, Name: career.Name}
}

func toSubjectBrief(subject *model.Subject) *dto.CareerBrief {
	if subject == nil {
		return nil
	}
	return &dto.CareerBrief{ID: subject.SubjectID, Code: subject.Code, Name: subject.Name}
}

func toCareerResponse(career *model.Career) *dto.CareerResponse {
	return &dto.CareerResponse{
		ID:          career.CareerID,
		Code:        career.Code,
		Name:        career.Name,
		Description: career.Description,
		IsActive:    career.IsActive,
	}
}

func toSubjectResponse(subject *model.Subject) *dto.SubjectResponse {
	if subject == nil {
		return nil
	}
	return &dto.SubjectResponse{
		ID:          subject.SubjectID,
		Code:        subject.Code,
		Name:        subject.Name,
		YearLevel:   subject.YearLevel,
		PeriodType:  subject.PeriodType,
		WeeklyHours: subject.WeeklyHours,
		CareerID:    subject.CareerID,
		Career:      toCareerBrief(subject.Career),
	}
}

func toPeriodResponse(period *model.AcademicPeriod, now time.Time) *dto.PeriodResponse {
	return &dto.PeriodResponse{
		ID:               period.PeriodID,
		Name:             period.Name,
		Year:             period.Year,
		Type:             period.Type,
		PartialsRequired: period.PartialsRequired,
		StartDate:        formatDate(period.StartDate),
		EndDate:          formatDate(period.EndDate),
		EnrollmentStart:  formatDate(period.EnrollmentStart),
		EnrollmentEnd:    formatDate(period.EnrollmentEnd),
		EnrollmentOpen:   period.EnrollmentOpen(now),
		IsActive:         period.IsActive,
	}
}

func toCommissionResponse(c *model.Commission) *dto.CommissionResponse {
	if c == nil {
		return nil
	}
	return &dto.CommissionResponse{
		ID:       c.CommissionID,
		PeriodID: c.PeriodID,
		Name:     c.Name,
		Shift:    c.Shift,
		Capacity: c.Capacity,
	}
}

func toSubjectCommissionResponse(sc *model.SubjectCommission, enrolled int64) *dto.SubjectCommissionResponse {
	resp := &dto.SubjectCommissionResponse{
		ID:         sc.SubjectCommissionID,
		Subject:    toSubjectResponse(sc.Subject),
		Commission: toCommissionResponse(sc.Commission),
		Teacher:    toUserBrief(sc.Teacher),
		Enrolled:   enrolled,
	}
	if sc.Commission != nil && sc.Commission.Period != nil {
		resp.PeriodName = sc.Commission.Period.Name
	}
	return resp
}

func toGradeResponse(g *model.Grade, partialsRequired int) *dto.GradeResponse {
	if g == nil {
		return nil
	}
	partials := g.Partials()
	if partialsRequired > 0 && partialsRequired < len(partials) {
		partials = partials[:partialsRequired]
	}
	return &dto.GradeResponse{
		Partials:   partials,
		Attendance: g.Attendance,
		Average:    g.Average,
		Condition:  g.Condition,
		Version:    g.Version,
		UpdatedAt:  formatTimestamp(g.UpdatedAt),
	}
}

func toEnrollmentResponse(e *model.Enrollment) *dto.EnrollmentResponse {
	resp := &dto.EnrollmentResponse{
		ID:                  e.EnrollmentID,
		Status:              e.Status,
		Condition:           e.Condition,
		EnrolledAt:          formatTimestamp(e.EnrolledAt),
		SubjectCommissionID: e.SubjectCommissionID,
		Student:             toUserBrief(e.Student),
	}
	partials := 0
	if sc := e.SubjectCommission; sc != nil {
		resp.Subject = toSubjectBrief(sc.Subject)
		resp.Teacher = toUserBrief(sc.Teacher)
		if sc.Commission != nil {
			resp.CommissionName = sc.Commission.Name
			if sc.Commission.Period != nil {
				resp.PeriodName = sc.Commission.Period.Name
				partials = sc.Commission.Period.PartialsRequired
			}
		}
	}
	resp.Grade = toGradeResponse(e.Grade, partials)
	return resp
}

func toExamCallResponse(call *model.ExamCall, loc *time.Location) *dto.ExamCallResponse {
	return &dto.ExamCallResponse{
		ID:         call.CallID,
		TableID:    call.TableID,
		Subject:    toSubjectBrief(call.Subject),
		CallNumber: call.CallNumber,
		ExamDate:   call.ExamDate.In(loc).Format(time.RFC3339),
		Classroom:  call.Classroom,
		Quota:      call.Quota,
		President:  toUserBrief(call.President),
	}
}

func toExamTableResponse(table *model.ExamTable, loc *time.Location) *dto.ExamTableResponse {
	resp := &dto.ExamTableResponse{
		ID:        table.TableID,
		Name:      table.Name,
		PeriodID:  table.PeriodID,
		StartDate: formatDate(table.StartDate),
		EndDate:   formatDate(table.EndDate),
		Status:    table.Status,
		Version:   table.Version,
	}
	for i := range table.Calls {
		resp.Calls = append(resp.Calls, *toExamCallResponse(&table.Calls[i], loc))
	}
	return resp
}

func toExamEnrollmentResponse(ee *model.ExamEnrollment, loc *time.Location) *dto.ExamEnrollmentResponse {
	resp := &dto.ExamEnrollmentResponse{
		ID:        ee.ExamEnrollmentID,
		CallID:    ee.CallID,
		Status:    ee.Status,
		Grade:     ee.Grade,
		Student:   toUserBrief(ee.Student),
		CreatedAt: formatTimestamp(ee.CreatedAt),
	}
	if ee.Call != nil {
		resp.Call = toExamCallResponse(ee.Call, loc)
		if ee.Call.Table != nil {
			resp.TableName = ee.Call.Table.Name
		}
	}
	return resp
}
