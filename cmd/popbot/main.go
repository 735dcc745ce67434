// Package main is the entry point for popbot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"popbot/application"
	"popbot/application/control"
	"popbot/application/vision"
	"popbot/core/eventbus"
	domainmap "popbot/domain/gamemap"
	domainrun "popbot/domain/run"
	domaintower "popbot/domain/tower"
	"popbot/infrastructure/browser"
	"popbot/infrastructure/config"
	"popbot/infrastructure/logging"
	"popbot/infrastructure/ocr"
	"popbot/infrastructure/repository"
	"popbot/resources"
)

func main() {
	mapName := flag.String("map", "monkey_meadow", "map plan to run")
	listMaps := flag.Bool("list", false, "list available map plans and exit")
	flag.Parse()

	// Initialize logging (dev: console only, prod: rotating file)
	logger, closeLog, err := logging.Setup(nil)
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("Starting popbot")

	cfg, err := config.Load(resources.GlobalConfig)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Load tower data
	towerRegistry := domaintower.NewRegistry()
	if err := domaintower.NewLoader(towerRegistry).LoadFromFS(resources.TowerFiles); err != nil {
		logger.Error("Failed to load tower data", "error", err)
		os.Exit(1)
	}
	logger.Info("Towers loaded", "count", towerRegistry.Count())

	// Load map plans
	mapRegistry := domainmap.NewRegistry()
	if err := domainmap.NewLoader(mapRegistry).LoadFromFS(resources.MapFiles); err != nil {
		logger.Error("Failed to load map plans", "error", err)
		os.Exit(1)
	}
	logger.Info("Map plans loaded", "count", mapRegistry.Count())

	if *listMaps {
		for _, name := range mapRegistry.List() {
			fmt.Println(name)
		}
		return
	}

	mapCfg := mapRegistry.Get(*mapName)
	if mapCfg == nil {
		logger.Error("Unknown map plan", "map", *mapName)
		os.Exit(1)
	}

	ctx := context.Background()

	// Optional run-history persistence
	var runRepo domainrun.Repository
	if cfg.Mongo.Enabled {
		mongoCfg := repository.DefaultMongoDBConfig()
		if cfg.Mongo.URI != "" {
			mongoCfg.URI = cfg.Mongo.URI
		}
		if cfg.Mongo.Database != "" {
			mongoCfg.Database = cfg.Mongo.Database
		}
		mongoDB, err := repository.NewMongoDB(ctx, mongoCfg, logger)
		if err != nil {
			logger.Error("Failed to initialize MongoDB", "error", err)
			os.Exit(1)
		}
		defer mongoDB.Close(ctx)
		runRepo = repository.NewMongoRunRepository(mongoDB, logger)
	}

	// OCR client; without a configured endpoint the run proceeds with
	// affordability gating disabled.
	var ocrClient ocr.Client
	if cfg.OCR.BaseURL != "" {
		ocrCfg := ocr.DefaultClientConfig()
		ocrCfg.BaseURL = cfg.OCR.BaseURL
		ocrCfg.Timeout = cfg.OCR.Timeout
		ocrCfg.HealthInterval = cfg.OCR.HealthInterval
		ocrClient = ocr.NewHTTPClient(ocrCfg)
	} else {
		logger.Warn("No OCR endpoint configured, currency gating disabled")
		ocrClient = ocr.NewNoOpClient()
	}
	defer ocrClient.Close()

	// Browser
	driverCfg := browser.DefaultDriverConfig()
	driverCfg.Headless = cfg.Browser.Headless
	driverCfg.ViewportWidth = cfg.Browser.Width
	driverCfg.ViewportHeight = cfg.Browser.Height
	driverCfg.WindowWidth = cfg.Browser.Width
	driverCfg.WindowHeight = cfg.Browser.Height + 120
	driver := browser.NewChromeDPDriver(driverCfg)

	if err := driver.Start(ctx); err != nil {
		logger.Error("Failed to start browser", "error", err)
		os.Exit(1)
	}
	defer driver.Stop()

	if err := driver.Navigate(ctx, cfg.Browser.URL); err != nil {
		logger.Error("Failed to open game", "url", cfg.Browser.URL, "error", err)
		os.Exit(1)
	}
	if err := driver.SetViewport(ctx, cfg.Browser.Width, cfg.Browser.Height); err != nil {
		logger.Warn("Failed to set viewport", "error", err)
	}
	if err := driver.BringToFront(ctx); err != nil {
		logger.Warn("Failed to focus game tab", "error", err)
	}

	// Event bus
	eventBus := eventbus.New(100)
	defer eventBus.Close()

	// Controllers
	capture := vision.NewScreenCapture(driver)
	capture.MaxAttempts = cfg.Retries.CaptureAttempts
	verifier := vision.NewVerifier(capture)

	controlCfg := controlConfig(cfg)
	upgrades := control.NewUpgradeState()
	placer := control.NewPlacementController(verifier, driver, towerRegistry, controlCfg)
	upgrader := control.NewUpgradeController(verifier, driver, upgrades, controlCfg)
	scheduler := control.NewScheduler(mapCfg.Actions, towerRegistry, mapCfg.Difficulty, mapCfg.Mode)

	applyTimingDefaults(mapCfg, cfg)

	runID := uuid.NewString()

	// Currency polling
	reader := application.NewCurrencyReader(&application.CurrencyReaderConfig{
		Screener: driver,
		Client:   ocrClient,
		ROI: ocr.ROI{
			X:      cfg.Regions.Currency.Left,
			Y:      cfg.Regions.Currency.Top,
			Width:  cfg.Regions.Currency.Width,
			Height: cfg.Regions.Currency.Height,
		},
		Interval: cfg.Timing.CurrencyPoll,
		EventBus: eventBus,
		RunID:    runID,
		Logger:   logger,
	})
	reader.Start(ctx)
	defer reader.Stop()

	kill := application.NewKillSwitch()
	runner := application.NewRunner(&application.RunnerConfig{
		RunID:          runID,
		Map:            mapCfg,
		Scheduler:      scheduler,
		Placer:         placer,
		Upgrader:       upgrader,
		Upgrades:       upgrades,
		Currency:       reader,
		EventBus:       eventBus,
		Kill:           kill,
		Logger:         logger,
		BrowserRunning: driver.IsRunning,
	})

	// Signals trigger a clean stop
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Signal received, stopping run", "signal", sig.String())
		kill.Trigger("signal: " + sig.String())
	}()

	runCtx := logging.With(ctx, logger.With("run_id", runner.ID()))
	record, runErr := runner.Run(runCtx)
	if runErr != nil {
		logger.Error("Run ended with error", "error", runErr)
	}

	if runRepo != nil && record != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := runRepo.Save(saveCtx, record); err != nil {
			logger.Warn("Failed to persist run record", "error", err)
		}
		cancel()
	}

	logger.Info("Shutdown complete")
	if runErr != nil {
		os.Exit(1)
	}
}

// controlConfig maps the global settings onto the controller config.
func controlConfig(cfg *config.Config) control.Config {
	out := control.DefaultConfig()
	out.SelectionRegion = toRegion(cfg.Regions.Selection)
	out.MenuLeft = toRegion(cfg.Regions.MenuLeft)
	out.MenuRight = toRegion(cfg.Regions.MenuRight)
	out.PlaceLeft = toRegion(cfg.Regions.PlaceLeft)
	out.PlaceRight = toRegion(cfg.Regions.PlaceRight)
	out.Resting = domainmap.Position{X: cfg.RestingPosition.X, Y: cfg.RestingPosition.Y}
	out.SelectionThreshold = cfg.Thresholds.Selection
	out.TargetingThreshold = cfg.Thresholds.Targeting
	out.UpgradeThreshold = cfg.Thresholds.Upgrade
	out.Policy.MaxAttempts = cfg.Retries.MaxAttempts
	out.Policy.RetryDelay = cfg.Retries.RetryDelay
	out.MonkeyDefaultKey = cfg.Keys.MonkeyDefault
	out.HeroKey = cfg.Keys.Hero
	out.HeroHold = cfg.Timing.HeroHold
	for path, key := range cfg.Keys.UpgradePaths {
		out.PathKeys[path] = key
	}
	return out
}

func toRegion(r config.Region) vision.Region {
	return vision.Region{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
}

// applyTimingDefaults fills zero per-map pacing from the global config.
func applyTimingDefaults(m *domainmap.MapConfig, cfg *config.Config) {
	if m.Timing.PlacementDelay == 0 {
		m.Timing.PlacementDelay = cfg.Timing.PlacementDelay
	}
	if m.Timing.UpgradeDelay == 0 {
		m.Timing.UpgradeDelay = cfg.Timing.UpgradeDelay
	}
}
