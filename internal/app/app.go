package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edubridge_enrollment/internal/config"
	"edubridge_enrollment/internal/controller"
	"edubridge_enrollment/internal/repository"
	"edubridge_enrollment/internal/service"
	"edubridge_enrollment/pkg/configwatcher"
	"edubridge_enrollment/pkg/database"
	"edubridge_enrollment/pkg/logger"
	"edubridge_enrollment/pkg/monitoring"
	"edubridge_enrollment/pkg/security"
	"edubridge_enrollment/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	services *services
}

type repositories struct {
	enrollment *repository.EnrollmentRepository
	completion *repository.CompletionRepository
}

type services struct {
	courseClient *service.CourseClient
	enrollment   *service.EnrollmentService
	analytics    *service.AnalyticsService
}

type controllers struct {
	enrollment *controller.EnrollmentController
	creator    *controller.CreatorController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		enrollment: repository.NewEnrollmentRepository(db),
		completion: repository.NewCompletionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.courseClient = service.NewCourseClient(cfg.CourseService)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.completion, s.courseClient, db)
	s.analytics = service.NewAnalyticsService(repos.enrollment)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		enrollment: controller.NewEnrollmentController(s.enrollment),
		creator:    controller.NewCreatorController(s.analytics),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchConfig 配置热更新：目前只接管课程服务地址的切换
func (a *App) watchConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(cfg interface{}) {
		newCfg, ok := cfg.(*config.Config)
		if !ok {
			return
		}
		if newCfg.CourseService.BaseURL != a.Config.CourseService.BaseURL {
			logger.Log.Info("course service base url changed",
				zap.String("baseUrl", newCfg.CourseService.BaseURL))
			a.services.courseClient.SetBaseURL(newCfg.CourseService.BaseURL)
			a.Config.CourseService.BaseURL = newCfg.CourseService.BaseURL
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edubridge-enrollment", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.watchConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Enrollment service running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
