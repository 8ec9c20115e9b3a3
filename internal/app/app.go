package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lernplan_backend/internal/config"
	"lernplan_backend/internal/controller"
	"lernplan_backend/internal/model"
	"lernplan_backend/internal/service"
	"lernplan_backend/internal/store"
	"lernplan_backend/internal/util"
	"lernplan_backend/pkg/database"
	"lernplan_backend/pkg/logger"
	"lernplan_backend/pkg/monitoring"
	"lernplan_backend/pkg/security"
	"lernplan_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	Store           store.Store
	services        *services
	configCallbacks []func(*config.Config)
}

type services struct {
	session *service.SessionService
	metrics *service.MetricsService
	notify  *service.NotifyService
}

type controllers struct {
	dashboard  *controller.DashboardController
	task       *controller.TaskController
	weeklyPlan *controller.WeeklyPlanController
	exam       *controller.ExamController
	habit      *controller.HabitController
	document   *controller.DocumentController
	health     *controller.HealthController
}

// RegisterConfigCallback meldet einen Empfänger für neu geladene
// Konfigurationen an (siehe pkg/configwatcher).
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig reicht eine neu geladene Konfiguration an alle Empfänger
// weiter. Speicher-Backend und Serverport brauchen weiterhin einen Neustart.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

// initStore wählt das Dokument-Backend laut Konfiguration und legt bei
// aktiviertem Redis den Read-Through-Cache davor.
func (a *App) initStore(cfg *config.Config) (store.Store, error) {
	var st store.Store
	var err error

	switch cfg.Storage.Type {
	case util.StorageGitHub:
		st = store.NewGitHubStore(cfg.Storage.GitHubToken, cfg.Storage.GitHubRepo, cfg.Storage.GitHubPath)
	case util.StorageMinio:
		st, err = store.NewMinioStore(&cfg.Storage)
		if err != nil {
			return nil, err
		}
	case util.StorageDatabase:
		db, derr := database.InitDB(&cfg.Database)
		if derr != nil {
			return nil, derr
		}
		st = store.NewDatabaseStore(db)
	default:
		st = store.NewLocalStore(cfg.Storage.LocalPath)
	}

	if cfg.Redis.Enabled {
		rdb, rerr := database.InitRedis(&cfg.Redis)
		if rerr != nil {
			logger.Log.Warn("redis unavailable, snapshot cache disabled", zap.Error(rerr))
		} else {
			st = store.NewCachedStore(st, rdb, cfg.Redis.TTL)
		}
	}

	return st, nil
}

func (a *App) initServices(cfg *config.Config, st store.Store) *services {
	s := &services{}
	s.session = service.NewSessionService(st, cfg.Storage.WriteMode)
	s.metrics = service.NewMetricsService()
	s.notify = service.NewNotifyService(cfg.Notify)
	return s
}

func (a *App) initControllers(s *services, st store.Store) *controllers {
	return &controllers{
		dashboard:  controller.NewDashboardController(s.session, s.metrics),
		task:       controller.NewTaskController(s.session),
		weeklyPlan: controller.NewWeeklyPlanController(s.session),
		exam:       controller.NewExamController(s.session, s.metrics),
		habit:      controller.NewHabitController(s.session),
		document:   controller.NewDocumentController(s.session),
		health:     controller.NewHealthController(st),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks verschickt pro Tag eine Tageszusammenfassung und
// erinnert bei zu hohem Tagespensum; die Kernlogik hängt nie am Erfolg
// einer Benachrichtigung.
func (a *App) startBackgroundTasks(cfg *config.Config, s *services) {
	if !cfg.Notify.Enabled {
		return
	}

	interval := cfg.Notify.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		for range ticker.C {
			doc, _ := s.session.Snapshot()
			now := s.session.Now()

			exam := s.metrics.ExamTotals(doc)
			daysLeft := s.metrics.DaysLeft(doc, now)
			pace := s.metrics.DailyPace(exam.TotalSteps-exam.CompletedSteps, daysLeft)
			summary := s.notify.ComposeDailySummary(s.metrics.DailyTotals(doc, now), exam, daysLeft)

			ctx, cancel := context.WithTimeout(context.Background(), store.OpTimeout)
			s.notify.SendDailySummary(ctx, now.Format(model.DateFormat), summary)
			s.notify.RemindIfBehind(ctx, pace)
			cancel()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)
	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg}

	st, err := app.initStore(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize document store", zap.Error(err))
	}
	app.Store = st

	services := app.initServices(cfg, st)
	app.services = services

	// Erster Abruf: fehlendes oder unerreichbares Snapshot fällt auf das
	// leere Dokument zurück, danach läuft der Tageswechsel genau einmal
	services.session.Load(context.Background())

	controllers := app.initControllers(services, st)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lernplan-dashboard", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.notify.UpdateConfig(newCfg.Notify)
	})

	app.startBackgroundTasks(cfg, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Letzter Stand raus, bevor der Prozess endet (nur im manuellen Modus
	// kann hier noch Ungespeichertes liegen)
	ctx, cancel := context.WithTimeout(context.Background(), store.OpTimeout)
	if _, _, err := a.services.session.Save(ctx); err != nil {
		logger.Log.Warn("final save failed", zap.Error(err))
	}
	cancel()

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
