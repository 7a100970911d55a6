package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gestion-academica/backend/internal/model"
)

var (
	ErrExportEmpty        = errors.New("no hay alumnos para exportar")
	ErrExportGenerateFail = errors.New("no se pudo generar el archivo Excel")
)

// ExportService exportación de actas a Excel (.xlsx) y de finales a iCalendar (.ics)
//
// El contenido vuelve en un bytes.Buffer; el handler arma los headers de la respuesta.
type ExportService interface {
	// ExportGradeSheet acta de cursada de una materia-comisión
	ExportGradeSheet(ctx context.Context, subjectCommissionID string, callerID, callerRole string) (*bytes.Buffer, string, error)
	// ExportCallRoster acta de examen de un llamado
	ExportCallRoster(ctx context.Context, callID string, callerID, callerRole string) (*bytes.Buffer, string, error)
	// ExportExamCalendar calendario con los finales en los que el alumno sigue inscripto
	ExportExamCalendar(ctx context.Context, studentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	grades      GradeService
	exams       ExamTableService
	enrollments ExamEnrollmentService
	logger      *zap.Logger
}

// NewExportService crea el ExportService sobre los servicios que arman los datos
func NewExportService(grades GradeService, exams ExamTableService, enrollments ExamEnrollmentService, logger *zap.Logger) ExportService {
	return &exportService{grades: grades, exams: exams, enrollments: enrollments, logger: logger}
}

// ────────────────────── Acta de cursada ──────────────────────
//
//	| Apellido y nombre | DNI | P1 .. Pn | Asistencia % | Promedio | Condición |

func (s *exportService) ExportGradeSheet(ctx context.Context, subjectCommissionID string, callerID, callerRole string) (*bytes.Buffer, string, error) {
	sheet, err := s.grades.Sheet(ctx, subjectCommissionID, callerID, callerRole)
	if err != nil {
		return nil, "", err
	}
	if len(sheet.Rows) == 0 {
		return nil, "", ErrExportEmpty
	}

	headers := []string{"Apellido y nombre", "DNI"}
	for i := 1; i <= sheet.PartialsRequired; i++ {
		headers = append(headers, fmt.Sprintf("Parcial %d", i))
	}
	headers = append(headers, "Asistencia %", "Promedio", "Condición")

	title := fmt.Sprintf("%s - Comisión %s - %s", sheet.SubjectName, sheet.CommissionName, sheet.PeriodName)
	rows := make([][]interface{}, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		values := []interface{}{r.Student.FullName, r.Student.DNI}
		var attendance, average *float64
		var partials []*float64
		if r.Grade != nil {
			partials, attendance, average = r.Grade.Partials, r.Grade.Attendance, r.Grade.Average
		}
		for i := 0; i < sheet.PartialsRequired; i++ {
			if i < len(partials) {
				values = append(values, numberOrDash(partials[i]))
			} else {
				values = append(values, "-")
			}
		}
		values = append(values, numberOrDash(attendance), numberOrDash(average), r.Condition)
		rows = append(rows, values)
	}

	buf, err := s.writeWorkbook("Acta de cursada", title, headers, rows)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("acta_%s_%s.xlsx", fileSafe(sheet.SubjectName), fileSafe(sheet.CommissionName))
	return buf, filename, nil
}

// ────────────────────── Acta de examen ──────────────────────
//
//	| Apellido y nombre | DNI | Estado | Nota |

func (s *exportService) ExportCallRoster(ctx context.Context, callID string, callerID, callerRole string) (*bytes.Buffer, string, error) {
	roster, err := s.exams.Roster(ctx, callID, callerID, callerRole)
	if err != nil {
		return nil, "", err
	}
	if len(roster.Enrolled) == 0 {
		return nil, "", ErrExportEmpty
	}

	subject := ""
	if roster.Call.Subject != nil {
		subject = roster.Call.Subject.Name
	}
	examDate := roster.Call.ExamDate
	if t, err := time.Parse(time.RFC3339, examDate); err == nil {
		examDate = t.Format("02/01/2006 15:04")
	}
	title := fmt.Sprintf("%s - Llamado %d - %s", subject, roster.Call.CallNumber, examDate)

	rows := make([][]interface{}, 0, len(roster.Enrolled))
	for _, e := range roster.Enrolled {
		name, dni := "", ""
		if e.Student != nil {
			name, dni = e.Student.FullName, e.Student.DNI
		}
		rows = append(rows, []interface{}{name, dni, examStatusLabel(e.Status), numberOrDash(e.Grade)})
	}

	buf, err := s.writeWorkbook("Acta de examen", title, []string{"Apellido y nombre", "DNI", "Estado", "Nota"}, rows)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("acta_examen_%s_llamado_%d.xlsx", fileSafe(subject), roster.Call.CallNumber)
	return buf, filename, nil
}

// writeWorkbook hoja única: título combinado en la fila 1, encabezados en la 2, datos desde la 3
func (s *exportService) writeWorkbook(sheetName, title string, headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("error al crear hoja", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 32)
	f.SetColWidth(sheetName, "B", colName(len(headers)-1), 14)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	last := colName(len(headers) - 1)
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(last, 1))
	f.SetCellStyle(sheetName, "A1", cell(last, 1), titleStyle)

	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(last, 2), headerStyle)

	for r, values := range rows {
		for c, v := range values {
			f.SetCellValue(sheetName, cell(colName(c), r+3), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("error al escribir Excel", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func numberOrDash(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}

func examStatusLabel(status string) string {
	switch status {
	case model.ExamEnrolled:
		return "Inscripto"
	case model.ExamAbsent:
		return "Ausente"
	case model.ExamGraded:
		return "Calificado"
	case model.ExamCancelled:
		return "Cancelado"
	}
	return status
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}

// ────────────────────── Calendario de finales ──────────────────────

const (
	calendarProductID = "-//gestion-academica//finales//ES"
	examDuration      = 3 * time.Hour
)

// ExportExamCalendar un VEVENT por inscripción vigente; sin inscripciones devuelve un calendario vacío
func (s *exportService) ExportExamCalendar(ctx context.Context, studentID string) (*bytes.Buffer, string, error) {
	list, err := s.enrollments.ListMine(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetProductId(calendarProductID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName("Mis finales")

	now := time.Now().UTC()
	for _, ee := range list {
		if ee.Status != model.ExamEnrolled || ee.Call == nil {
			continue
		}
		start, err := time.Parse(time.RFC3339, ee.Call.ExamDate)
		if err != nil {
			s.logger.Warn("fecha de llamado ilegible", zap.String("call_id", ee.CallID), zap.Error(err))
			continue
		}

		subject := "Final"
		if ee.Call.Subject != nil {
			subject = "Final " + ee.Call.Subject.Name
		}

		event := cal.AddEvent(ee.ID + "@gestion-academica")
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(examDuration))
		event.SetSummary(fmt.Sprintf("%s - Llamado %d", subject, ee.Call.CallNumber))
		if ee.Call.Classroom != "" {
			event.SetLocation(ee.Call.Classroom)
		}
		var desc []string
		if ee.TableName != "" {
			desc = append(desc, "Mesa: "+ee.TableName)
		}
		if ee.Call.President != nil {
			desc = append(desc, "Presidente: "+ee.Call.President.FullName)
		}
		if len(desc) > 0 {
			event.SetDescription(strings.Join(desc, "\n"))
		}
	}

	return bytes.NewBufferString(cal.Serialize()), "mis_finales.ics", nil
}
