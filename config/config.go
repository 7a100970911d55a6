package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config configuración global de la aplicación
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Grading  GradingConfig  `mapstructure:"grading"`
	Exams    ExamsConfig    `mapstructure:"exams"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig servidor HTTP
type ServerConfig struct {
	Port     int        `mapstructure:"port"`
	BaseURL  string     `mapstructure:"base_url"`
	Timezone string     `mapstructure:"timezone"`
	CORS     CORSConfig `mapstructure:"cors"`
}

// Location zona horaria de las fechas académicas; UTC si no se puede cargar
func (c *ServerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CORSConfig orígenes permitidos
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutos
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutos
}

// DSN cadena de conexión PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis (lista negra de tokens y rate limit)
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
	LoginRateLimit          int           `mapstructure:"login_rate_limit"`
	LoginRateWindow         time.Duration `mapstructure:"login_rate_window"`
}

// LogConfig logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GradingConfig umbrales para la condición académica
type GradingConfig struct {
	PromotionAverage    float64 `mapstructure:"promotion_average"`
	PromotionAttendance float64 `mapstructure:"promotion_attendance"`
	RegularAverage      float64 `mapstructure:"regular_average"`
	RegularAttendance   float64 `mapstructure:"regular_attendance"`
	PassingFinalGrade   float64 `mapstructure:"passing_final_grade"`
}

// ExamsConfig inscripción a mesas de examen
type ExamsConfig struct {
	CloseLeadHours    int `mapstructure:"close_lead_hours"`
	CallDateGraceDays int `mapstructure:"call_date_grace_days"`
	EnrollRateLimit   int `mapstructure:"enroll_rate_limit"`
}

// CloseLead anticipación con la que se cierra la inscripción a un llamado
func (c *ExamsConfig) CloseLead() time.Duration {
	return time.Duration(c.CloseLeadHours) * time.Hour
}

// SeedConfig datos de prueba
type SeedConfig struct {
	Careers           int    `mapstructure:"careers"`
	StudentsPerCareer int    `mapstructure:"students_per_career"`
	TeachersPerCareer int    `mapstructure:"teachers_per_career"`
	ChunkSize         int    `mapstructure:"chunk_size"`
	DefaultPassword   string `mapstructure:"default_password"`
}

// Load carga la configuración desde archivo y variables de entorno
// Prioridad: entorno > archivo > valores por defecto
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── valores por defecto ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:4200"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "gestion_academica")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "") // sin valor real: debe venir del entorno o del archivo
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "168h")
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("auth.login_rate_window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("grading.promotion_average", 7.0)
	v.SetDefault("grading.promotion_attendance", 80.0)
	v.SetDefault("grading.regular_average", 4.0)
	v.SetDefault("grading.regular_attendance", 60.0)
	v.SetDefault("grading.passing_final_grade", 4.0)

	v.SetDefault("exams.close_lead_hours", 48)
	v.SetDefault("exams.call_date_grace_days", 30)
	v.SetDefault("exams.enroll_rate_limit", 20)

	v.SetDefault("seed.careers", 3)
	v.SetDefault("seed.students_per_career", 40)
	v.SetDefault("seed.teachers_per_career", 4)
	v.SetDefault("seed.chunk_size", 100)
	v.SetDefault("seed.default_password", "Academica2024")

	// ── archivo ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── entorno ──
	v.SetEnvPrefix("GA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("no se pudo leer el archivo de configuración: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("no se pudo interpretar la configuración: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate valida los valores críticos
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("configuración inválida: auth.jwt_secret no puede estar vacío")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("configuración inválida: auth.jwt_secret debe tener al menos 16 caracteres")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("configuración inválida: server.port debe estar entre 1 y 65535")
	}

	g := c.Grading
	if g.RegularAverage < 0 || g.PromotionAverage > 10 || g.RegularAverage > g.PromotionAverage {
		return fmt.Errorf("configuración inválida: umbrales de promedio fuera de rango")
	}
	if g.RegularAttendance < 0 || g.PromotionAttendance > 100 || g.RegularAttendance > g.PromotionAttendance {
		return fmt.Errorf("configuración inválida: umbrales de asistencia fuera de rango")
	}
	if g.PassingFinalGrade <= 0 || g.PassingFinalGrade > 10 {
		return fmt.Errorf("configuración inválida: grading.passing_final_grade fuera de rango")
	}
	if c.Exams.CloseLeadHours < 0 {
		return fmt.Errorf("configuración inválida: exams.close_lead_hours no puede ser negativo")
	}
	return nil
}
