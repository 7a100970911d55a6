package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"gestion-academica/backend/internal/model"
)

// careerCatalog carreras conocidas; pasado este número se generan genéricas
var careerCatalog = []struct{ code, name string }{
	{"ISI", "Ingeniería en Sistemas de Información"},
	{"LMA", "Licenciatura en Matemática"},
	{"PFI", "Profesorado en Física"},
	{"LQU", "Licenciatura en Química"},
	{"IEL", "Ingeniería Electrónica"},
}

// subjectCatalog materias por año; se reutilizan entre carreras con otro código
var subjectCatalog = [][]string{
	{"Álgebra I", "Análisis Matemático I", "Introducción a la Programación"},
	{"Análisis Matemático II", "Física I", "Algoritmos y Estructuras de Datos"},
	{"Probabilidad y Estadística", "Sistemas Operativos", "Bases de Datos"},
}

var (
	firstNames = []string{"Lucía", "Mateo", "Valentina", "Santiago", "Camila", "Benjamín", "Martina", "Joaquín", "Sofía", "Tomás", "Julieta", "Facundo"}
	lastNames  = []string{"González", "Rodríguez", "Fernández", "López", "Martínez", "Pérez", "Gómez", "Díaz", "Romero", "Sosa", "Álvarez", "Benítez"}
)

// CareerBlueprint carrera a sembrar, identificada por código
type CareerBlueprint struct {
	Code string
	Name string
}

// Careers primeras n carreras
func Careers(n int) []CareerBlueprint {
	out := make([]CareerBlueprint, 0, n)
	for i := 0; i < n; i++ {
		if i < len(careerCatalog) {
			out = append(out, CareerBlueprint{Code: careerCatalog[i].code, Name: careerCatalog[i].name})
			continue
		}
		out = append(out, CareerBlueprint{
			Code: fmt.Sprintf("CAR%02d", i+1),
			Name: fmt.Sprintf("Carrera de prueba %d", i+1),
		})
	}
	return out
}

// SubjectBlueprint materia a sembrar, identificada por código
type SubjectBlueprint struct {
	Code      string
	Name      string
	YearLevel int
}

// Subjects materias de una carrera: código CARRERA-AñoN
func Subjects(careerCode string) []SubjectBlueprint {
	var out []SubjectBlueprint
	for y, names := range subjectCatalog {
		for i, name := range names {
			out = append(out, SubjectBlueprint{
				Code:      fmt.Sprintf("%s-%d%d", careerCode, y+1, i+1),
				Name:      name,
				YearLevel: y + 1,
			})
		}
	}
	return out
}

// YearLevels cantidad de años con materias sembradas
func YearLevels() int { return len(subjectCatalog) }

// CommissionName comisión única de un año de la carrera
func CommissionName(careerCode string, yearLevel int) string {
	return fmt.Sprintf("%s-%dA", careerCode, yearLevel)
}

// Person datos de un usuario sembrado; el DNI es la clave natural
type Person struct {
	DNI      string
	Name     string
	LastName string
	Email    string
	Role     string
}

// Staff administrador y bedelía
func Staff() []Person {
	return []Person{
		{DNI: "10000001", Name: "Admin", LastName: "Sistema", Email: "admin@academica.edu.ar", Role: model.RoleAdmin},
		{DNI: "10000002", Name: "Bedelía", LastName: "Central", Email: "bedelia@academica.edu.ar", Role: model.RoleSecretary},
	}
}

// Teachers docentes de la carrera número careerIdx
func Teachers(careerIdx, n int) []Person {
	out := make([]Person, 0, n)
	for i := 0; i < n; i++ {
		dni := fmt.Sprintf("2%02d%05d", careerIdx+1, i+1)
		out = append(out, person(dni, careerIdx*7+i, "docentes", model.RoleTeacher))
	}
	return out
}

// Students alumnos de la carrera número careerIdx
func Students(careerIdx, n int) []Person {
	out := make([]Person, 0, n)
	for i := 0; i < n; i++ {
		dni := fmt.Sprintf("3%02d%05d", careerIdx+1, i+1)
		out = append(out, person(dni, careerIdx*13+i, "alumnos", model.RoleStudent))
	}
	return out
}

func person(dni string, k int, domain, role string) Person {
	name := firstNames[k%len(firstNames)]
	last := lastNames[(k/len(firstNames)+k)%len(lastNames)]
	return Person{
		DNI:      dni,
		Name:     name,
		LastName: last,
		Email:    fmt.Sprintf("%s.%s.%s@%s.academica.edu.ar", asciiLower(name), asciiLower(last), dni, domain),
		Role:     role,
	}
}

var accentReplacer = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "ñ", "n")

func asciiLower(s string) string {
	return strings.ToLower(accentReplacer.Replace(s))
}

// PeriodName nombre del ciclo lectivo del año
func PeriodName(year int) string {
	return fmt.Sprintf("Ciclo lectivo %d", year)
}

// Period ciclo anual del año de now con la inscripción abierta alrededor de now
func Period(now time.Time) model.AcademicPeriod {
	year := now.Year()
	today := time.Date(year, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return model.AcademicPeriod{
		Name:             PeriodName(year),
		Year:             year,
		Type:             model.PeriodAnnual,
		PartialsRequired: model.PartialsFor(model.PeriodAnnual),
		StartDate:        time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(year, time.November, 30, 0, 0, 0, 0, time.UTC),
		EnrollmentStart:  today.AddDate(0, 0, -7),
		EnrollmentEnd:    today.AddDate(0, 0, 30),
	}
}

// ExamTableName turno de julio del año
func ExamTableName(year int) string {
	return fmt.Sprintf("Turno julio %d", year)
}

// ExamTable mesa de julio con los días hábiles de la segunda quincena
func ExamTable(year int) model.ExamTable {
	return model.ExamTable{
		Name:      ExamTableName(year),
		StartDate: time.Date(year, time.July, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(year, time.July, 31, 0, 0, 0, 0, time.UTC),
		Status:    model.TableOpen,
	}
}

// RandomGrade parciales y asistencia simulados.
// Un 20% de las cursadas queda sin notas (Inscripto).
func RandomGrade(rng *rand.Rand, partials int) (scores []*float64, attendance *float64, ok bool) {
	if rng.Float64() < 0.2 {
		return nil, nil, false
	}
	// cada alumno tiene un nivel base; los parciales oscilan alrededor
	base := 3 + rng.Float64()*6
	scores = make([]*float64, partials)
	for i := range scores {
		v := clamp(base+rng.NormFloat64()*1.2, 1, 10)
		v = math.Round(v*2) / 2
		scores[i] = &v
	}
	att := math.Round(clamp(50+rng.Float64()*50, 0, 100))
	return scores, &att, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
