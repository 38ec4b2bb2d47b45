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

	"appointment-backend/internal/config"
	"appointment-backend/internal/database"
	"appointment-backend/internal/handler"
	"appointment-backend/internal/logger"
	"appointment-backend/internal/models"
	"appointment-backend/internal/repository"
	"appointment-backend/internal/service"
	"appointment-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "appointment-backend"

func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Hospital appointment backend: medical records, doctors and user sync",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the user sync worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			defer closeDB(db, log)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info("schema migrated", zap.String("database", cfg.Database.Database))
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an administrator or doctor account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			// Patients sign up through /api/auth/register
			if role != models.RoleAdmin && role != models.RoleDoctor {
				return fmt.Errorf("--role must be %q or %q", models.RoleAdmin, models.RoleDoctor)
			}

			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			defer closeDB(db, log)

			jwt := utils.NewJWTManager(cfg.JWT.AccessSecret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
			auth := service.NewAuthService(repository.NewUserRepo(db), repository.NewAuditRepo(db), jwt)

			resp, err := auth.Register(cmd.Context(), service.RegisterInput{
				Username: username,
				Password: password,
				Role:     role,
				Name:     name,
			})
			if err != nil {
				return err
			}
			fmt.Printf("User %s (%s) created with id %d\n", resp.User.Username, role, resp.User.ID)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Account username")
	cmd.Flags().String("password", "", "Account password (min 6 characters)")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("role", models.RoleAdmin, "Account role: admin or doctor")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg := config.LoadConfig()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}

func runServer() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	defer closeDB(db, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	recordRepo := repository.NewMedicalRecordRepo(db)
	doctorRepo := repository.NewDoctorRepo(db)
	appointmentRepo := repository.NewAppointmentRepo(db)
	syncTaskRepo := repository.NewSyncTaskRepo(db)

	var departments service.DepartmentStore = repository.NewDepartmentRepo(db)
	if cfg.Redis.Enabled() {
		client, err := database.ConnectRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn("department cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			departments = repository.NewCachedDepartmentRepo(departments, client, cfg.Redis.DepartmentTTL, log)
		}
	}

	tx := database.NewTxManager(db)
	jwt := utils.NewJWTManager(cfg.JWT.AccessSecret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)

	// Services
	authService := service.NewAuthService(userRepo, auditRepo, jwt)
	userSync := service.NewUserSyncService(userRepo, syncTaskRepo, auditRepo, log)
	recordService := service.NewMedicalRecordService(tx, recordRepo, appointmentRepo, doctorRepo, userRepo, auditRepo, log)
	doctorService := service.NewDoctorService(tx, doctorRepo, departments, userRepo, syncTaskRepo, userSync, auditRepo, log)
	exportService := service.NewRecordExportService(recordService, doctorRepo)
	worker := service.NewWorkerService(syncTaskRepo, userSync, cfg.Outbox.PollInterval, cfg.Outbox.StaleAfter, cfg.Outbox.BatchSize, log)

	go worker.Start(ctx)

	gin.SetMode(cfg.Server.GinMode)
	router := handler.NewRouter(handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg.JWT.RefreshTokenExpiry, cfg.Server.GinMode == gin.ReleaseMode, log),
		Records:   handler.NewMedicalRecordHandler(recordService, exportService, log),
		Doctors:   handler.NewDoctorHandler(doctorService, log),
		SyncTasks: handler.NewSyncTaskHandler(userSync, log),
	}, jwt, cfg.CORS.AllowedOrigins, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Stop the worker before draining requests
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
