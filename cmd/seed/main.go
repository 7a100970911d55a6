package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/repository"
	"gestion-academica/backend/internal/seed"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/database"
	applogger "gestion-academica/backend/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		careers    int
		students   int
		teachers   int
		chunkSize  int
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga datos de prueba en la base",
		Long: "Siembra carreras, materias, usuarios, un ciclo lectivo con comisiones, " +
			"inscripciones con notas y una mesa de examen. Es idempotente: solo inserta lo que falta.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no se pudo leer .env: %w", err)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, err := applogger.NewLogger(&cfg.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			opts := seed.OptionsFrom(&cfg.Seed)
			flags := cmd.Flags()
			if flags.Changed("careers") {
				opts.Careers = careers
			}
			if flags.Changed("students") {
				opts.StudentsPerCareer = students
			}
			if flags.Changed("teachers") {
				opts.TeachersPerCareer = teachers
			}
			if flags.Changed("chunk-size") {
				opts.ChunkSize = chunkSize
			}
			opts.DryRun = dryRun

			db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
			if err != nil {
				return fmt.Errorf("no se pudo conectar a la base de datos: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := database.RunMigrations(sqlDB, logger); err != nil {
				return err
			}

			seeder := seed.NewSeeder(repository.NewRepository(db), service.ThresholdsFrom(&cfg.Grading), opts, logger)
			report, err := seeder.Run(cmd.Context())
			if err != nil {
				logger.Error("falló el seed", zap.Error(err))
				return err
			}

			printReport(cmd, report)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "ruta al archivo de configuración")
	f.IntVar(&careers, "careers", 0, "cantidad de carreras")
	f.IntVar(&students, "students", 0, "alumnos por carrera")
	f.IntVar(&teachers, "teachers", 0, "docentes por carrera")
	f.IntVar(&chunkSize, "chunk-size", 0, "filas por INSERT en lote")
	f.BoolVar(&dryRun, "dry-run", false, "ejecuta todo y revierte la transacción")

	return cmd
}

func printReport(cmd *cobra.Command, r *seed.Report) {
	entities := make([]string, 0, len(r.Inserted))
	for e := range r.Inserted {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	out := cmd.OutOrStdout()
	if r.DryRun {
		fmt.Fprintln(out, "dry-run: no se guardó ningún cambio")
	}
	fmt.Fprintf(out, "%-22s %10s %10s\n", "entidad", "insertados", "existentes")
	for _, e := range entities {
		fmt.Fprintf(out, "%-22s %10d %10d\n", e, r.Inserted[e], r.Skipped[e])
	}
}
