package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/swfilms/internal/config"
	"github.com/user/swfilms/internal/handler"
	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/middleware"
	"github.com/user/swfilms/internal/repository"
	"github.com/user/swfilms/internal/router"
	"github.com/user/swfilms/internal/service"
	"github.com/user/swfilms/internal/utils"
	"golang.org/x/time/rate"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("[Main] 配置加载失败")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if envErr != nil {
		logging.Info().Msg("[Main] 未找到 .env 文件，使用系统环境变量")
	}

	// 数据库迁移与连接
	if err := repository.Migrate(cfg.DatabaseURL); err != nil {
		logging.Fatal().Err(err).Msg("[Main] 数据库迁移失败")
	}

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("[Main] 数据库连接失败")
	}

	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// 初始化仓库
	repos := repository.NewRepositories(db)

	// 上游客户端，各自独立熔断
	swapiClient := utils.NewHTTPClient(cfg.HTTPTimeout,
		utils.WithName("swapi"),
		utils.WithRetries(cfg.HTTPMaxRetries, 0),
		utils.WithHeader("Accept", "application/json"),
	)
	tmdbClient := utils.NewHTTPClient(cfg.HTTPTimeout,
		utils.WithName("tmdb"),
		utils.WithRetries(cfg.HTTPMaxRetries, 0),
	)
	youtubeClient := utils.NewHTTPClient(cfg.HTTPTimeout,
		utils.WithName("youtube"),
		utils.WithRateLimit(rate.NewLimiter(rate.Every(200*time.Millisecond), 5)),
	)

	source, err := service.NewFilmSource(cfg.SwapiProvider, cfg.SwapiBaseURL, swapiClient, cfg.SwapiMaxPages)
	if err != nil {
		logging.Fatal().Err(err).Msg("[Main] SWAPI 数据源初始化失败")
	}
	logging.Info().Str("provider", source.Name()).Msg("[Main] SWAPI 数据源已就绪")

	filmService := service.NewFilmService(
		source,
		service.NewTMDBService(tmdbClient, cfg.TMDBAPIKey, cfg.FranchisePrefix),
		service.NewYouTubeService(youtubeClient, cfg.FranchisePrefix),
		cfg.SiteUrl,
		cfg.Location,
	)
	logService := service.NewLogService(repos.Log, repos.User, cfg.Location)

	// 请求日志异步落库
	dispatcher := service.NewLogDispatcher(logService, cfg.LogQueueSize)
	defer dispatcher.Close()

	// 启动定时清理任务
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	service.NewCleanupService(repos.Log, cfg.LogRetentionDays).Start(ctx)

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 加载模板（使用 multitemplate 解决继承问题）
	r.HTMLRender = router.LoadTemplates(cfg.TemplatesDir)

	// 静态文件
	r.Static("/static", "./web/static")

	// 中间件
	r.Use(middleware.Logger())
	r.Use(middleware.RequestLog(dispatcher, "/api"))

	h := handler.NewHandler(filmService, logService, cfg)

	// 注册路由
	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.HTTPTimeout * 3,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		logging.Info().Str("addr", cfg.SiteUrl).Msg("[Main] 服务器启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("[Main] 服务器启动失败")
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("[Main] 正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("[Main] 服务器强制关闭")
	}

	logging.Info().Msg("[Main] 服务器已退出")
}
