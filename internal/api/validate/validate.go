// Package validate registra en el validador de Gin las reglas propias de los DTOs.
package validate

import (
	"errors"
	"math"
	"reflect"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout formato de las fechas de calendario en la API
const DateLayout = "2006-01-02"

// Register agrega isodate, score y percent al motor de binding de Gin
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("el motor de validación de gin no es go-playground/validator")
	}
	return RegisterOn(v)
}

// RegisterOn agrega las reglas a un validador dado
func RegisterOn(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"isodate": isoDate,
		"score":   score,
		"percent": percent,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// isoDate fecha YYYY-MM-DD
func isoDate(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// score nota de 0 a 10 con hasta dos decimales
func score(fl validator.FieldLevel) bool {
	f, ok := floatValue(fl.Field())
	return ok && f >= 0 && f <= 10 && twoDecimals(f)
}

// percent porcentaje de 0 a 100 con hasta dos decimales, como la columna NUMERIC(5,2)
func percent(fl validator.FieldLevel) bool {
	f, ok := floatValue(fl.Field())
	return ok && f >= 0 && f <= 100 && twoDecimals(f)
}

func twoDecimals(f float64) bool {
	cents := f * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

func floatValue(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	}
	return 0, false
}
