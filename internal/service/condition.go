package service

import (
	"math"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/model"
)

// Thresholds umbrales de promedio y asistencia para la condición de cursada
type Thresholds struct {
	PromotionAverage    float64
	PromotionAttendance float64
	RegularAverage      float64
	RegularAttendance   float64
}

// ThresholdsFrom umbrales a partir de la configuración
func ThresholdsFrom(cfg *config.GradingConfig) Thresholds {
	return Thresholds{
		PromotionAverage:    cfg.PromotionAverage,
		PromotionAttendance: cfg.PromotionAttendance,
		RegularAverage:      cfg.RegularAverage,
		RegularAttendance:   cfg.RegularAttendance,
	}
}

// DeriveCondition condición de cursada a partir de los parciales exigidos y la asistencia.
// Devuelve también el promedio (nil mientras falte algún dato).
//
//	falta un parcial o la asistencia                        → Inscripto
//	promedio ≥ promoción, asistencia ≥ promoción,
//	y ningún parcial bajo el mínimo de regularidad          → Promocionado
//	promedio ≥ regularidad y asistencia ≥ regularidad       → Regular
//	en otro caso                                            → Libre
func DeriveCondition(partials []*float64, attendance *float64, t Thresholds) (string, *float64) {
	if len(partials) == 0 || attendance == nil {
		return model.ConditionEnrolled, nil
	}

	sum := 0.0
	minPartial := math.MaxFloat64
	for _, p := range partials {
		if p == nil {
			return model.ConditionEnrolled, nil
		}
		sum += *p
		minPartial = math.Min(minPartial, *p)
	}

	avg := roundHalfUp(sum / float64(len(partials)))
	// se evalúa con la misma precisión con la que se guarda
	att := roundHalfUp(*attendance)

	switch {
	case avg >= t.PromotionAverage && att >= t.PromotionAttendance && minPartial >= t.RegularAverage:
		return model.ConditionPromoted, &avg
	case avg >= t.RegularAverage && att >= t.RegularAttendance:
		return model.ConditionRegular, &avg
	default:
		return model.ConditionFree, &avg
	}
}

// roundHalfUp redondeo a dos decimales, mitades hacia arriba
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5+1e-9) / 100
}
