package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/api/handler"
	"gestion-academica/backend/internal/api/router"
	"gestion-academica/backend/internal/repository"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/database"
	"gestion-academica/backend/pkg/jwt"
	applogger "gestion-academica/backend/pkg/logger"
	"gestion-academica/backend/pkg/redis"
)

func main() {
	// 0. .env local (opcional)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "no se pudo leer .env: %v\n", err)
	}

	// 1. configuración
	cfg, err := config.Load(os.Getenv("GA_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error al cargar la configuración: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error al inicializar el logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("iniciando servidor",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Server.Location().String()),
	)

	// 3. base de datos y migraciones
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("no se pudo conectar a la base de datos", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("no se pudo obtener sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("falló la migración de la base de datos", zap.Error(err))
	}

	// 4. Redis (opcional: sin Redis no hay lista negra ni rate limit)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis no disponible, se continúa sin lista negra ni rate limit", zap.Error(err))
		rdb = nil
	}
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	// 5. dependencias: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, logger)
	h := handler.NewHandler(cfg, svc)

	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 6. servidor HTTP con cierre ordenado
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("servidor HTTP escuchando", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("error del servidor HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("señal recibida, cerrando", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("error al cerrar el servidor", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("error al cerrar la base de datos", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("servidor detenido")
}
