package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/api/handler"
	"gestion-academica/backend/internal/api/middleware"
	"gestion-academica/backend/internal/api/validate"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/pkg/jwt"
	"gestion-academica/backend/pkg/redis"
)

// tamaño máximo del cuerpo; alcanza para una planilla de 500 alumnos
const maxBodyBytes = 5 << 20

// Setup arma el motor de Gin con middlewares y rutas.
// rdb y db pueden ser nil: sin Redis no hay lista negra ni rate limit.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if err := validate.Register(); err != nil {
		logger.Fatal("no se pudieron registrar los validadores", zap.Error(err))
	}

	// interfaces nil explícitas para no envolver un *redis.Client nil
	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── middlewares globales ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", healthHandler(db, rdb))

	const (
		admin     = model.RoleAdmin
		secretary = model.RoleSecretary
		teacher   = model.RoleTeacher
		student   = model.RoleStudent
	)
	staff := middleware.RoleAuth(admin, secretary)
	adminOnly := middleware.RoleAuth(admin)

	v1 := r.Group("/api/v1")
	{
		// ── auth sin token ──
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			users := authorized.Group("/users")
			{
				users.GET("", staff, h.User.ListUsers)
				users.GET("/:id", staff, h.User.GetUser)
				users.POST("", adminOnly, h.User.CreateUser)
				users.POST("/import", staff, h.User.ImportUsers)
				users.PUT("/:id", h.User.UpdateUser) // admin o el propio usuario
				users.DELETE("/:id", adminOnly, h.User.DeleteUser)
				users.PUT("/:id/role", adminOnly, h.User.AssignRole)
				users.POST("/:id/reset-password", adminOnly, h.User.ResetPassword)
			}

			careers := authorized.Group("/careers")
			{
				careers.GET("", h.Career.ListCareers)
				careers.GET("/:id", h.Career.GetCareer)
				careers.POST("", staff, h.Career.CreateCareer)
				careers.PUT("/:id", staff, h.Career.UpdateCareer)
				careers.DELETE("/:id", staff, h.Career.DeleteCareer)
			}

			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Subject.ListSubjects)
				subjects.GET("/:id", h.Subject.GetSubject)
				subjects.POST("", staff, h.Subject.CreateSubject)
				subjects.PUT("/:id", staff, h.Subject.UpdateSubject)
				subjects.DELETE("/:id", staff, h.Subject.DeleteSubject)
			}

			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Period.ListPeriods)
				periods.GET("/current", h.Period.GetCurrentPeriod)
				periods.GET("/:id", h.Period.GetPeriod)
				periods.POST("", staff, h.Period.CreatePeriod)
				periods.PUT("/:id", staff, h.Period.UpdatePeriod)
				periods.PUT("/:id/activate", staff, h.Period.ActivatePeriod)
				periods.DELETE("/:id", adminOnly, h.Period.DeletePeriod)
			}

			commissions := authorized.Group("/commissions")
			{
				commissions.GET("", h.Commission.ListCommissions)
				commissions.GET("/:id", h.Commission.GetCommission)
				commissions.POST("", staff, h.Commission.CreateCommission)
				commissions.PUT("/:id", staff, h.Commission.UpdateCommission)
				commissions.DELETE("/:id", staff, h.Commission.DeleteCommission)
				commissions.POST("/:id/subjects", staff, h.Commission.AssignSubject)
			}

			sc := authorized.Group("/subject-commissions")
			{
				sc.GET("", h.Commission.ListSubjectCommissions)
				sc.GET("/mine", middleware.RoleAuth(teacher), h.Commission.ListMine)
				sc.GET("/:id", h.Commission.GetSubjectCommission)
				sc.PUT("/:id/teacher", staff, h.Commission.ChangeTeacher)
				sc.DELETE("/:id", staff, h.Commission.RemoveSubject)
				// docente de la comisión o bedelía; el servicio verifica
				sc.GET("/:id/enrollments", middleware.RoleAuth(admin, secretary, teacher), h.Enrollment.Roster)
				sc.GET("/:id/grades", middleware.RoleAuth(admin, secretary, teacher), h.Enrollment.GradeSheet)
				sc.GET("/:id/grades/export", middleware.RoleAuth(admin, secretary, teacher), h.Export.ExportGradeSheet)
			}

			enrollments := authorized.Group("/enrollments")
			{
				enrollments.POST("", middleware.RoleAuth(admin, secretary, student), h.Enrollment.Enroll)
				enrollments.GET("/mine", middleware.RoleAuth(student), h.Enrollment.ListMine)
				enrollments.DELETE("/:id", middleware.RoleAuth(admin, secretary, student), h.Enrollment.Drop)
				enrollments.PUT("/:id/grade", middleware.RoleAuth(admin, secretary, teacher), h.Enrollment.UpsertGrade)
			}

			tables := authorized.Group("/exam-tables")
			{
				tables.GET("", h.ExamTable.ListTables)
				tables.GET("/:id", h.ExamTable.GetTable)
				tables.POST("", staff, h.ExamTable.CreateTable)
				tables.PUT("/:id", staff, h.ExamTable.UpdateTable)
				tables.DELETE("/:id", staff, h.ExamTable.DeleteTable)
				tables.POST("/:id/transitions", staff, h.ExamTable.Transition)
				tables.POST("/:id/calls", staff, h.ExamTable.CreateCall)
				tables.GET("/:id/availability", middleware.RoleAuth(admin, secretary, student), h.ExamEnrollment.Availability)
			}

			calls := authorized.Group("/exam-calls")
			{
				calls.PUT("/:id", staff, h.ExamTable.UpdateCall)
				calls.DELETE("/:id", staff, h.ExamTable.DeleteCall)
				calls.GET("/:id/roster", middleware.RoleAuth(admin, secretary, teacher), h.ExamTable.Roster)
				calls.GET("/:id/roster/export", middleware.RoleAuth(admin, secretary, teacher), h.Export.ExportCallRoster)
				calls.POST("/:id/enrollments",
					middleware.RoleAuth(admin, secretary, student),
					middleware.RateLimit(limiter, cfg.Exams.EnrollRateLimit, time.Minute),
					h.ExamEnrollment.Enroll)
			}

			examEnrollments := authorized.Group("/exam-enrollments")
			{
				examEnrollments.GET("/mine", middleware.RoleAuth(student), h.ExamEnrollment.ListMine)
				examEnrollments.GET("/mine/calendar.ics", middleware.RoleAuth(student), h.Export.ExportExamCalendar)
				examEnrollments.DELETE("/:id", middleware.RoleAuth(admin, secretary, student), h.ExamEnrollment.Cancel)
				// presidente del llamado o bedelía; el servicio verifica
				examEnrollments.PUT("/:id/result", middleware.RoleAuth(admin, secretary, teacher), h.ExamEnrollment.RecordResult)
			}
		}
	}

	return r
}

// healthHandler estado de la base y de Redis
func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		dbState := "ok"
		if db == nil {
			dbState = "no configurada"
			status = http.StatusServiceUnavailable
		} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbState = "sin conexión"
			status = http.StatusServiceUnavailable
		}

		redisState := "ok"
		if rdb == nil {
			redisState = "deshabilitado"
		} else if err := rdb.Ping(ctx); err != nil {
			// Redis es opcional: degrada pero no tumba el servicio
			redisState = "sin conexión"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degradado"
		}
		c.JSON(status, gin.H{
			"status": overall,
			"db":     dbState,
			"redis":  redisState,
		})
	}
}
