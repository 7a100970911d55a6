package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("GA_AUTH_JWT_SECRET", "una-clave-de-prueba-larga")

	// una ruta explícita que no existe es un error, no un fallback a defaults
	cfg, err := Load(filepath.Join(t.TempDir(), "inexistente.yaml"))
	if err == nil {
		t.Fatalf("se esperaba error por archivo inexistente, cfg=%+v", cfg)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
auth:
  jwt_secret: "secreto-de-configuracion-1234"
grading:
  promotion_average: 8
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("no se pudo escribir config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load debería funcionar: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("esperado port=9090, obtenido=%d", cfg.Server.Port)
	}
	if cfg.Grading.PromotionAverage != 8 {
		t.Errorf("esperado promotion_average=8, obtenido=%v", cfg.Grading.PromotionAverage)
	}
	if cfg.Grading.RegularAverage != 4 {
		t.Errorf("esperado regular_average=4 por defecto, obtenido=%v", cfg.Grading.RegularAverage)
	}
	if cfg.Exams.CloseLeadHours != 48 {
		t.Errorf("esperado close_lead_hours=48, obtenido=%d", cfg.Exams.CloseLeadHours)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080},
			Auth:   AuthConfig{JWTSecret: "0123456789abcdef"},
			Grading: GradingConfig{
				PromotionAverage:    7,
				PromotionAttendance: 80,
				RegularAverage:      4,
				RegularAttendance:   60,
				PassingFinalGrade:   4,
			},
			Exams: ExamsConfig{CloseLeadHours: 48},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"válida", func(c *Config) {}, false},
		{"secreto vacío", func(c *Config) { c.Auth.JWTSecret = "" }, true},
		{"secreto corto", func(c *Config) { c.Auth.JWTSecret = "corto" }, true},
		{"puerto inválido", func(c *Config) { c.Server.Port = 70000 }, true},
		{"regular sobre promoción", func(c *Config) { c.Grading.RegularAverage = 8 }, true},
		{"asistencia invertida", func(c *Config) { c.Grading.RegularAttendance = 90 }, true},
		{"nota final cero", func(c *Config) { c.Grading.PassingFinalGrade = 0 }, true},
		{"anticipación negativa", func(c *Config) { c.Exams.CloseLeadHours = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Location(t *testing.T) {
	if loc := (&ServerConfig{}).Location(); loc != time.UTC {
		t.Errorf("sin zona se esperaba UTC, obtenido %v", loc)
	}
	if loc := (&ServerConfig{Timezone: "No/Existe"}).Location(); loc != time.UTC {
		t.Errorf("zona inválida debería caer en UTC, obtenido %v", loc)
	}
}
