package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"github.com/username/claimfolio/src/config"
	"github.com/username/claimfolio/src/database"
	"github.com/username/claimfolio/src/logger"
	"github.com/username/claimfolio/src/metrics"
	"github.com/username/claimfolio/src/processors"
	"github.com/username/claimfolio/src/repository"
	"github.com/username/claimfolio/src/security"
	"github.com/username/claimfolio/src/services"
)

// app holds the services every subcommand works with.
type app struct {
	db       *sql.DB
	users    *repository.UserRepository
	cases    *repository.CaseRepository
	auth     *security.AuthService
	holdings services.HoldingService
	imports  services.ImportService
	claims   services.ClaimService
}

var (
	deps          *app
	metricsServer *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "claimfolio",
	Short: "Stock lot ledger and class-action claim generator",
	Long: `Claimfolio imports brokerage activity exports into a FIFO lot ledger and
generates class-action claim records for the holdings of a company.

Examples:
  claimfolio import --user 3 --file activity.csv
  claimfolio holdings --company 1 --symbol ABC --from 2024-01-01 --to 2024-06-30
  claimfolio claim --case 12 --token <actor token>`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if metricsServer != nil {
			metricsServer.Close()
		}
		if deps != nil && deps.db != nil {
			deps.db.Close()
		}
	},
}

func bootstrap(cmd *cobra.Command, args []string) error {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Claimfolio starting...", "command", cmd.Name())

	if len(config.Cfg.JWTSecret) < 32 {
		return errors.New("JWT_SECRET configuration invalid, must be at least 32 bytes")
	}

	metrics.Init()
	if config.Cfg.MetricsAddr != "" {
		startMetricsServer(config.Cfg.MetricsAddr)
	}

	patterns := processors.DefaultPatternTable()
	filePatterns, err := config.LoadActivityPatterns(config.Cfg.ActivityPatternsPath)
	if err != nil {
		return err
	}
	if filePatterns != nil {
		if patterns, err = processors.NewPatternTable(filePatterns.Buy, filePatterns.Sell); err != nil {
			return fmt.Errorf("invalid activity patterns: %w", err)
		}
		logger.L.Info("Activity patterns loaded", "path", config.Cfg.ActivityPatternsPath,
			"buy", len(filePatterns.Buy), "sell", len(filePatterns.Sell))
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing holdings cache...", "ttl", config.Cfg.HoldingsCacheTTL)
	holdingsCache := cache.New(config.Cfg.HoldingsCacheTTL, 2*config.Cfg.HoldingsCacheTTL)

	db := database.DB
	lots := repository.NewLotRepository(db)
	users := repository.NewUserRepository(db)
	cases := repository.NewCaseRepository(db)
	holdings := services.NewHoldingService(lots, patterns, holdingsCache)
	dispatcher := services.NewDispatchRouter(
		services.NewEmailService(config.Cfg),
		services.NewClaimReporter(),
		config.Cfg.DispatchRatePerSecond,
	)

	deps = &app{
		db:       db,
		users:    users,
		cases:    cases,
		auth:     security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.ActorTokenExpiry),
		holdings: holdings,
		imports: services.NewImportService(
			repository.NewTradeRepository(db),
			repository.NewImportLogRepository(db),
			holdings, patterns, config.Cfg.ImportBatchSize,
		),
		claims: services.NewClaimService(cases, repository.NewClaimRepository(db), users, holdings, dispatcher),
	}
	return nil
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	metricsServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.L.Info("Metrics server starting", "address", addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Metrics server failed", "error", err)
		}
	}()
}

// printJSON writes a command result to stdout.
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
