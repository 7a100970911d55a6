package model

import (
	"testing"
	"time"
)

func TestAcademicPeriod_EnrollmentOpen(t *testing.T) {
	p := &AcademicPeriod{
		EnrollmentStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EnrollmentEnd:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	art := time.FixedZone("ART", -3*3600)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"antes", time.Date(2026, 2, 28, 23, 0, 0, 0, art), false},
		{"primer día", time.Date(2026, 3, 1, 8, 0, 0, 0, art), true},
		{"último día a la noche", time.Date(2026, 3, 15, 23, 59, 0, 0, art), true},
		{"después", time.Date(2026, 3, 16, 0, 1, 0, 0, art), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.EnrollmentOpen(tt.now); got != tt.want {
				t.Errorf("EnrollmentOpen(%v)=%v, esperado %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestPartialsFor(t *testing.T) {
	if PartialsFor(PeriodAnnual) != 4 {
		t.Error("un período anual exige 4 parciales")
	}
	if PartialsFor(PeriodSemester) != 2 {
		t.Error("un cuatrimestre exige 2 parciales")
	}
}

func TestGrade_SetPartial(t *testing.T) {
	g := &Grade{}
	v := 8.5
	g.SetPartial(3, &v)
	g.SetPartial(5, &v)

	ps := g.Partials()
	if ps[2] == nil || *ps[2] != 8.5 {
		t.Errorf("esperado parcial 3 = 8.5, obtenido %v", ps[2])
	}
	if ps[0] != nil || ps[1] != nil || ps[3] != nil {
		t.Error("solo debería asignarse el parcial 3")
	}
}
