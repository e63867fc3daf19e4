// Package app wires configuration, storage, services and handlers into one
// application instance.
package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/handlers"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/services/crawler"
	"github.com/ternarybob/colligo/internal/services/dispatcher"
	"github.com/ternarybob/colligo/internal/services/ingest"
	"github.com/ternarybob/colligo/internal/services/scheduler"
	"github.com/ternarybob/colligo/internal/services/timetable"
	"github.com/ternarybob/colligo/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager
	TimetableStore interfaces.TimetableStore

	CrawlerService   interfaces.CrawlerService
	IngestService    interfaces.IngestService
	Dispatcher       interfaces.Dispatcher
	SchedulerService interfaces.SchedulerService

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	CrawlHandler    *handlers.CrawlHandler
	ScheduleHandler *handlers.ScheduleHandler
	StatusHandler   *handlers.StatusHandler

	watcher *scheduler.Watcher
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Storage
	storageManager, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	if schedule := cfg.Storage.Badger.GCSchedule; schedule != "" {
		if err := storageManager.StartMaintenance(schedule); err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to schedule storage maintenance: %w", err)
		}
	}

	// Timetable store
	store, err := timetable.New(cfg.Timetable.Dir, cfg.Timetable.Name, cfg.Timetable.Format, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize timetable: %w", err)
	}
	app.TimetableStore = store

	// Crawl pipeline
	app.CrawlerService = crawler.NewService(&cfg.Crawler, logger)
	app.IngestService = ingest.NewService(storageManager.VacancyStorage(), logger)
	app.Dispatcher = dispatcher.New(app.CrawlerService, app.IngestService, logger, cfg.Dispatcher.QueueSize)

	// Scheduler
	schedulerService, err := scheduler.NewService(store, app.Dispatcher, logger)
	if err != nil {
		app.Dispatcher.Close()
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	app.SchedulerService = schedulerService

	if cfg.Timetable.Watch {
		// Rewrites through the store itself already reschedule via Mutate;
		// only genuinely external edits should trigger a reload.
		reload := func() error {
			if time.Since(store.LastWrite()) < 2*time.Second {
				return nil
			}
			return schedulerService.Reload()
		}
		watcher, err := scheduler.NewWatcher(store.Path(), reload, logger)
		if err != nil {
			app.Dispatcher.Close()
			storageManager.Close()
			return nil, fmt.Errorf("failed to watch timetable: %w", err)
		}
		app.watcher = watcher
	}

	// HTTP handlers
	app.APIHandler = handlers.NewAPIHandler(logger)
	app.CrawlHandler = handlers.NewCrawlHandler(app.Dispatcher, logger)
	app.ScheduleHandler = handlers.NewScheduleHandler(app.SchedulerService, store, logger)
	app.StatusHandler = handlers.NewStatusHandler(app.SchedulerService, storageManager, logger)

	logger.Info().Msg("Application initialized")
	return app, nil
}

// Start launches the scheduler.
func (a *App) Start() error {
	if err := a.SchedulerService.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Close releases all application resources in reverse dependency order.
func (a *App) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close timetable watcher")
		}
	}

	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	if a.Dispatcher != nil {
		if err := a.Dispatcher.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close dispatcher")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}

	a.Logger.Info().Msg("Application closed")
}
