package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/premia/internal/clients/backend"
	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/notify/telegram"
	"github.com/bobmcallan/premia/internal/services/income"
	"github.com/bobmcallan/premia/internal/services/monitor"
	"github.com/bobmcallan/premia/internal/storage/badger"
)

// App holds all initialized services, clients, and the session store.
// It is the shared core used by cmd/premia-server and the server tests.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Store          interfaces.SessionStore
	Backend        interfaces.BackendClient
	IncomeService  interfaces.IncomeService
	MonitorService interfaces.MonitorService
	AlertHub       *monitor.AlertHub
	Notifier       *telegram.Notifier
	StartupTime    time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes every service.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, PREMIA_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("PREMIA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "premia.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/premia.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if !config.Storage.InMemory() && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	logger.Debug().Str("config", configPath).Msg("Configuration loaded")

	return NewAppWithConfig(config, logger)
}

// NewAppWithConfig wires the services from an already loaded configuration.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	store, err := badger.NewSessionStore(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	backendClient := backend.NewClientFromConfig(config.Backend, logger)

	incomeService := income.NewService(
		backendClient,
		store.Assumptions(),
		income.DefaultAssumptions(config.Income),
		logger,
	)

	notifier := telegram.NewNotifier(config.Telegram, logger)
	hub := monitor.NewAlertHub(logger)
	go hub.Run()

	monitorService := monitor.NewService(
		backendClient,
		store.Positions(),
		store.SeenAlerts(),
		config.Monitor,
		logger,
		monitor.WithNotifier(notifier),
		monitor.WithBroadcaster(hub),
	)

	a := &App{
		Config:         config,
		Logger:         logger,
		Store:          store,
		Backend:        backendClient,
		IncomeService:  incomeService,
		MonitorService: monitorService,
		AlertHub:       hub,
		Notifier:       notifier,
		StartupTime:    time.Now(),
	}

	logger.Info().
		Dur("startup", time.Since(startupStart)).
		Bool("telegram", notifier.Enabled()).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop the alert hub, close storage.
func (a *App) Close() {
	if a.AlertHub != nil {
		a.AlertHub.Stop()
		a.AlertHub = nil
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Session store close failed")
		}
		a.Store = nil
	}
}
