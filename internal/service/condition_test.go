package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gestion-academica/backend/internal/model"
)

func fp(v float64) *float64 { return &v }

var defaultThresholds = Thresholds{
	PromotionAverage:    7,
	PromotionAttendance: 80,
	RegularAverage:      4,
	RegularAttendance:   60,
}

func TestDeriveCondition(t *testing.T) {
	tests := []struct {
		name       string
		partials   []*float64
		attendance *float64
		want       string
		wantAvg    *float64
	}{
		{"sin parciales", nil, fp(90), model.ConditionEnrolled, nil},
		{"falta un parcial", []*float64{fp(8), nil}, fp(90), model.ConditionEnrolled, nil},
		{"falta asistencia", []*float64{fp(8), fp(9)}, nil, model.ConditionEnrolled, nil},
		{"promociona", []*float64{fp(8), fp(7)}, fp(85), model.ConditionPromoted, fp(7.5)},
		{"promociona en el límite", []*float64{fp(7), fp(7)}, fp(80), model.ConditionPromoted, fp(7)},
		{"promedio alto con un parcial desaprobado", []*float64{fp(10), fp(3.5), fp(9), fp(9)}, fp(95), model.ConditionRegular, fp(7.88)},
		{"asistencia insuficiente para promoción", []*float64{fp(9), fp(9)}, fp(79.99), model.ConditionRegular, fp(9)},
		{"asistencia con más de dos decimales", []*float64{fp(9), fp(9)}, fp(79.996), model.ConditionPromoted, fp(9)},
		{"regular", []*float64{fp(5), fp(6)}, fp(70), model.ConditionRegular, fp(5.5)},
		{"regular en el límite", []*float64{fp(4), fp(4)}, fp(60), model.ConditionRegular, fp(4)},
		{"libre por promedio", []*float64{fp(3), fp(4.5)}, fp(90), model.ConditionFree, fp(3.75)},
		{"libre por asistencia", []*float64{fp(8), fp(8)}, fp(59), model.ConditionFree, fp(8)},
		{"cuatro parciales", []*float64{fp(6), fp(7), fp(8), fp(9)}, fp(100), model.ConditionPromoted, fp(7.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, avg := DeriveCondition(tt.partials, tt.attendance, defaultThresholds)
			assert.Equal(t, tt.want, got)
			if tt.wantAvg == nil {
				assert.Nil(t, avg)
				return
			}
			if assert.NotNil(t, avg) {
				assert.InDelta(t, *tt.wantAvg, *avg, 1e-9)
			}
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.InDelta(t, 6.67, roundHalfUp(20.0/3), 1e-9)
	assert.InDelta(t, 7.13, roundHalfUp(7.125), 1e-9)
	assert.InDelta(t, 4.0, roundHalfUp(3.999), 1e-9)
}
