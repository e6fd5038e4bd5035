package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caremarket/caremarket/internal/config"
	"github.com/caremarket/caremarket/internal/domain/article"
	"github.com/caremarket/caremarket/internal/domain/cart"
	"github.com/caremarket/caremarket/internal/domain/catalog"
	"github.com/caremarket/caremarket/internal/domain/doctor"
	"github.com/caremarket/caremarket/internal/domain/identity"
	"github.com/caremarket/caremarket/internal/domain/review"
	"github.com/caremarket/caremarket/internal/domain/scheduling"
	"github.com/caremarket/caremarket/internal/platform/auth"
	"github.com/caremarket/caremarket/internal/platform/db"
	"github.com/caremarket/caremarket/internal/platform/mailer"
	"github.com/caremarket/caremarket/internal/platform/media"
	"github.com/caremarket/caremarket/internal/platform/middleware"
)

const tokenTTL = 72 * time.Hour

func main() {
	root := &cobra.Command{
		Use:           "caremarket-server",
		Short:         "Healthcare marketplace API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ctx := cmd.Context()

			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			redisOpts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("parse redis url: %w", err)
			}
			redisClient := redis.NewClient(redisOpts)
			defer redisClient.Close()

			tokens := auth.TokenConfig{
				Secret: []byte(cfg.JWTSecret),
				Issuer: cfg.JWTIssuer,
				TTL:    tokenTTL,
			}
			otpStore := auth.NewOTPStore(redisClient, []byte(cfg.OTPSecret),
				time.Duration(cfg.OTPTTLMin)*time.Minute)

			var uploader media.Uploader
			if cfg.MediaURL != "" {
				uploader = media.NewHTTPUploader(cfg.MediaURL, cfg.MediaKey)
			} else {
				uploader = media.NewMemoryUploader()
				log.Warn().Msg("MEDIA_UPLOAD_URL not set, using in-memory uploader")
			}

			var mail mailer.EmailSender
			if cfg.SMTPHost != "" {
				port, _ := strconv.Atoi(cfg.SMTPPort)
				mail = mailer.NewSMTPSender(mailer.SMTPConfig{
					Host: cfg.SMTPHost,
					Port: port,
					User: cfg.SMTPUser,
					Pass: cfg.SMTPPass,
					From: cfg.MailFrom,
				})
			} else {
				mail = &mailer.MockEmailSender{}
				log.Warn().Msg("SMTP_HOST not set, outbound mail is discarded")
			}
			templates := mailer.NewTemplateEngine()

			// Repositories
			userRepo := identity.NewUserRepoPG(pool)
			doctorRepo := doctor.NewRepoPG(pool)
			slotRepo := scheduling.NewSlotRepoPG(pool)
			apptRepo := scheduling.NewAppointmentRepoPG(pool)
			medCategoryRepo := catalog.NewCategoryRepoPG(pool)
			medicineRepo := catalog.NewMedicineRepoPG(pool)
			medMediaRepo := catalog.NewMediaRepoPG(pool)
			artCategoryRepo := article.NewCategoryRepoPG(pool)
			articleRepo := article.NewArticleRepoPG(pool)
			blockRepo := article.NewBlockRepoPG(pool)
			savedRepo := article.NewSavedRepoPG(pool)
			cartRepo := cart.NewRepoPG(pool, medicineRepo)
			reviewRepo := review.NewRepoPG(pool)

			// Services
			identitySvc := identity.NewService(userRepo, otpStore, mail, templates,
				tokens, cfg.OTPTTLMin, log)
			doctorSvc := doctor.NewService(doctorRepo)
			schedulingSvc := scheduling.NewService(slotRepo, apptRepo)
			catalogSvc := catalog.NewService(medCategoryRepo, medicineRepo, medMediaRepo)
			articleSvc := article.NewService(artCategoryRepo, articleRepo, blockRepo, savedRepo)
			cartSvc := cart.NewService(cartRepo, medicineRepo)
			reviewSvc := review.NewService(reviewRepo)

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true

			e.Use(middleware.Recovery(log))
			e.Use(middleware.RequestID())
			e.Use(middleware.Logger(log))
			e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
				AllowOrigins: cfg.CORSOrigins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			}))

			e.GET("/health", db.HealthHandler(pool))

			authmw := auth.OptionalJWTMiddleware(tokens)
			if cfg.IsDev() && cfg.JWTSecret == "" {
				authmw = auth.DevAuthMiddleware(tokens)
				log.Warn().Msg("JWT_SECRET not set, requests default to an admin actor")
			}

			open := e.Group("/api/v1/auth")
			api := e.Group("/api/v1", authmw)
			profile := api.Group("/auth", auth.RequireRole(auth.RolePatient))

			identity.NewHandler(identitySvc).RegisterRoutes(open, profile)
			doctor.NewHandler(doctorSvc, schedulingSvc, reviewSvc, uploader).RegisterRoutes(api)
			schedHandler := scheduling.NewHandler(schedulingSvc)
			schedHandler.RegisterRoutes(api)
			schedHandler.RegisterDoctorRoutes(api)
			catalog.NewHandler(catalogSvc, uploader).RegisterRoutes(api)
			article.NewHandler(articleSvc, uploader).RegisterRoutes(api)
			cart.NewHandler(cartSvc).RegisterRoutes(api)
			review.NewHandler(reviewSvc).RegisterRoutes(api)

			errCh := make(chan error, 1)
			go func() {
				errCh <- e.Start(":" + cfg.Port)
			}()
			log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			log.Info().Msg("shutting down")
			return e.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	var dir string
	migrate.PersistentFlags().StringVar(&dir, "dir", "migrations", "directory containing migration files")

	withMigrator := func(run func(ctx context.Context, m *db.Migrator, log zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			pool, err := db.NewPool(cmd.Context(), cfg.DatabaseURL, 2, 1)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			return run(cmd.Context(), db.NewMigrator(pool, dir), log)
		}
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, log zerolog.Logger) error {
			applied, err := m.Up(ctx)
			if err != nil {
				return err
			}
			log.Info().Int("applied", applied).Msg("migrations complete")
			return nil
		}),
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator, _ zerolog.Logger) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d %-30s %s\n", s.Version, s.Name, state)
			}
			return nil
		}),
	})

	return migrate
}
