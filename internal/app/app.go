package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/kairoshq/kairos/internal/coaching"
	"github.com/kairoshq/kairos/internal/config"
	"github.com/kairoshq/kairos/internal/db"
	"github.com/kairoshq/kairos/internal/llm"
	"github.com/kairoshq/kairos/internal/repository"
	"github.com/kairoshq/kairos/internal/service"
)

type App struct {
	Cfg *config.Config
	DB  *sqlx.DB

	GoalService     *service.GoalService
	TrackerService  *service.TrackerService
	HabitService    *service.HabitService
	DailyLogService *service.DailyLogService
	MemoryService   *service.MemoryService
	Orchestrator    *coaching.Orchestrator
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	goalRepository := repository.NewGoalRepository(database)
	trackerRepository := repository.NewTrackerRepository(database)
	habitRepository := repository.NewHabitRepository(database)
	dailyLogRepository := repository.NewDailyLogRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	memoryRepository := repository.NewMemoryRepository(database)

	// Services
	trackerService := service.NewTrackerService(trackerRepository)
	habitService := service.NewHabitService(habitRepository)
	dailyLogService := service.NewDailyLogService(dailyLogRepository, habitRepository, trackerService)
	goalService := service.NewGoalService(goalRepository, trackerService, habitRepository, dailyLogService, dailyLogRepository, sessionRepository)
	memoryService := service.NewMemoryService(memoryRepository, cfg.MemoryLimit)

	// Coaching
	client := llm.NewOpenRouter(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel, cfg.LLMTimeout)
	executor := coaching.NewExecutor(habitService, trackerService, dailyLogService, memoryService)
	snapshotter := coaching.NewSnapshotter(habitService, trackerService, dailyLogService)
	orchestrator := coaching.NewOrchestrator(
		client,
		goalService,
		habitService,
		memoryService,
		sessionRepository,
		executor,
		snapshotter,
		cfg.SessionLockEnabled,
		cfg.SessionLockHours,
	)

	return &App{
		Cfg:             cfg,
		DB:              database,
		GoalService:     goalService,
		TrackerService:  trackerService,
		HabitService:    habitService,
		DailyLogService: dailyLogService,
		MemoryService:   memoryService,
		Orchestrator:    orchestrator,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
