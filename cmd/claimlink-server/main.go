package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/claimlink/claimlink/internal/config"
	"github.com/claimlink/claimlink/internal/domain/claims"
	"github.com/claimlink/claimlink/internal/domain/remits"
	"github.com/claimlink/claimlink/internal/platform/auth"
	"github.com/claimlink/claimlink/internal/platform/clearinghouse"
	"github.com/claimlink/claimlink/internal/platform/db"
	"github.com/claimlink/claimlink/internal/platform/middleware"
	"github.com/claimlink/claimlink/internal/platform/x12"
)

// ingestBodyLimit is the elevated body limit for raw 835 ingestion; payer
// remittance files routinely exceed the JSON API limit.
const ingestBodyLimit = "16M"

func main() {
	rootCmd := &cobra.Command{
		Use:   "claimlink-server",
		Short: "ClaimLink EDI API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(x12Cmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the ClaimLink API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func x12Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "x12",
		Short: "Inspect X12 documents from the command line",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Structurally validate an 835 remittance file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			diags := x12.Validate835(string(raw))
			for _, d := range diags {
				fmt.Println(d.String())
			}
			if x12.HasFatal(diags) {
				return fmt.Errorf("document failed structural validation")
			}
			fmt.Println("document is structurally sound")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an 835 remittance file and print the document tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			file := x12.Parse835(string(raw))
			out, err := json.MarshalIndent(file, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if x12.HasFatal(file.Diagnostics) {
				return fmt.Errorf("document failed structural validation")
			}
			return nil
		},
	})

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(cfg.MaxUploadBytes, ingestBodyLimit))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware([]byte(cfg.AuthJWTSecret)))
	}

	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// EDI generator and trading-partner identity
	gen := &x12.Generator{}
	partner := claims.TradingPartner{
		SubmitterID:   cfg.EDISubmitterID,
		SubmitterName: cfg.EDISubmitterName,
		ReceiverID:    cfg.EDIReceiverID,
		ReceiverName:  cfg.EDIReceiverName,
	}

	var submitter claims.Submitter
	if cfg.ClearinghouseEnabled() {
		submitter = clearinghouse.New(cfg.ClearinghouseURL, cfg.ClearinghouseAPIKey, logger)
		logger.Info().Str("url", cfg.ClearinghouseURL).Msg("clearinghouse submission enabled")
	} else {
		logger.Warn().Msg("no clearinghouse configured; claims can be generated but not submitted")
	}

	txRunner := db.NewTxRunner(pool)

	// Claims domain
	claimRepo := claims.NewClaimRepoPG(pool)
	inquiryRepo := claims.NewInquiryRepoPG(pool)
	claimsSvc := claims.NewService(claimRepo, inquiryRepo, gen, partner, submitter, txRunner)
	claims.NewHandler(claimsSvc).RegisterRoutes(apiV1)

	// Remittances domain, posting payment outcomes back onto claims
	remitRepo := remits.NewRepoPG(pool)
	remitsSvc := remits.NewService(remitRepo, claimRepo, txRunner, logger)
	remits.NewHandler(remitsSvc).RegisterRoutes(apiV1)

	// Stateless codec endpoints
	x12.NewHandler(gen).RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
