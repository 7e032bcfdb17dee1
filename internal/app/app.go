// Package app wires configuration, storage, the advisory engine and services.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/riskgate/internal/clients/gemini"
	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/services/advisory"
	"github.com/bobmcallan/riskgate/internal/services/entitlement"
	"github.com/bobmcallan/riskgate/internal/services/orchestrator"
	"github.com/bobmcallan/riskgate/internal/services/portfolio"
	"github.com/bobmcallan/riskgate/internal/services/profile"
	"github.com/bobmcallan/riskgate/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Ledger             interfaces.LedgerStore
	AdvisoryEngine     interfaces.AdvisoryEngine
	EntitlementService interfaces.EntitlementService
	PortfolioService   interfaces.PortfolioService
	ProfileService     interfaces.ProfileService
	Orchestrator       interfaces.Orchestrator
	StartupTime        time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes the app.
// configPath may be empty, in which case RISKGATE_CONFIG, the binary
// directory and config/riskgate.toml are tried in that order.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("RISKGATE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "riskgate.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/riskgate.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewAppWithConfig(config, common.NewLoggerFromConfig(config.Logging))
}

// NewAppWithConfig initializes the app from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	ctx := context.Background()

	ledger, err := storage.NewLedgerStore(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var engine interfaces.AdvisoryEngine
	if config.Clients.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewClient(ctx, config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger.WithComponent("gemini")),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithTemperature(config.Clients.Gemini.Temperature),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			engine = geminiClient
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - advisory streaming will be unavailable")
	}

	entitlementService := entitlement.NewService(ledger, logger.WithComponent("entitlement"))
	portfolioService := portfolio.NewService(ledger, logger.WithComponent("portfolio"))
	profileService := profile.NewService(ledger, logger.WithComponent("profile"))

	opts := []orchestrator.Option{
		orchestrator.WithProfiles(profileService),
		orchestrator.WithMaxPromptChars(config.Advisory.MaxPromptChars),
	}
	if engine != nil {
		opts = append(opts, orchestrator.WithRelay(newRelay(engine, config, logger)))
	}
	orch := orchestrator.NewService(entitlementService, portfolioService, logger.WithComponent("orchestrator"), opts...)

	a := &App{
		Config:             config,
		Logger:             logger,
		Ledger:             ledger,
		AdvisoryEngine:     engine,
		EntitlementService: entitlementService,
		PortfolioService:   portfolioService,
		ProfileService:     profileService,
		Orchestrator:       orch,
		StartupTime:        startupStart,
	}

	logger.Info().
		Str("storage", config.Storage.Backend).
		Bool("advisory", engine != nil).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

func newRelay(engine interfaces.AdvisoryEngine, config *common.Config, logger *common.Logger) *advisory.Relay {
	instruction := config.Advisory.SystemInstruction
	if instruction == "" {
		instruction = advisory.DefaultSystemInstruction
	}
	return advisory.NewRelay(engine,
		advisory.WithIdleTimeout(config.Advisory.GetIdleTimeout()),
		advisory.WithSessionConfig(interfaces.SessionConfig{
			SystemInstruction: instruction,
			CodeExecution:     config.Clients.Gemini.CodeExecution,
		}),
		advisory.WithLogger(logger.WithComponent("advisory")),
	)
}

// Close releases storage.
func (a *App) Close() {
	if a.Ledger != nil {
		if err := a.Ledger.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close ledger")
		}
	}
}
