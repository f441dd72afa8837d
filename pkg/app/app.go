// Package app 组装并运行 HTTP 服务：加载配置、初始化存储后端与
// 可观测性组件、装配服务与路由、管理优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/hey-granth/silo/pkg/configs"
	"github.com/hey-granth/silo/pkg/internal/handle"
	"github.com/hey-granth/silo/pkg/internal/repo"
	"github.com/hey-granth/silo/pkg/internal/router"
	"github.com/hey-granth/silo/pkg/internal/service"
	"github.com/hey-granth/silo/pkg/internal/storage"
	nlog "github.com/hey-granth/silo/pkg/log"
	"github.com/hey-granth/silo/pkg/metrics"
	"github.com/hey-granth/silo/pkg/middleware"
	"github.com/hey-granth/silo/pkg/tracing"
)

// App 持有装配完成的服务与其依赖.
type App struct {
	cfg    *configs.AppConfig
	engine *gin.Engine
	store  *storage.Manager
}

// New 按配置装配应用. 所有依赖按初始化顺序显式传递.
func New(ctx context.Context, cfg *configs.AppConfig) (*App, error) {
	nlog.Init(cfg.Log, cfg.Server.Debug)

	if cfg.Tracing.Enabled {
		if err := tracing.InitTracer(cfg.Tracing); err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}

	if err := metrics.Init(cfg.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	store, err := storage.Init(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repository := repo.New(store.DB.GetDB())
	if err := repository.Migrate(ctx); err != nil {
		return nil, err
	}

	transferSvc := service.NewTransferService(repository, store.S3, &cfg.Transfer)
	shareSvc := service.NewShareService(repository, store.S3, &cfg.Transfer)
	handlers := handle.New(transferSvc, shareSvc, store.S3)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(cfg.Server),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.GinLoggerMiddleware(),
		middleware.PrometheusMiddleware(),
	)

	if cfg.Tracing.Enabled {
		engine.Use(middleware.TracingMiddleware())
	}

	engine.Use(middleware.AuthMiddleware(cfg.Auth))

	metrics.MountMetricsEndpoint(cfg.Metrics, engine)
	router.Register(engine, handlers)

	return &App{cfg: cfg, engine: engine, store: store}, nil
}

// Run 启动 HTTP 服务并阻塞到收到退出信号，随后优雅关停.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.engine,
		ReadHeaderTimeout: a.cfg.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		nlog.Logger().Info().Str("addr", addr).Msg("server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	nlog.Logger().Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.GetTimeoutDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if a.cfg.Tracing.Enabled {
		if err := tracing.ShutdownTracer(shutdownCtx); err != nil {
			nlog.Logger().Warn().Err(err).Msg("tracer shutdown")
		}
	}

	return nil
}

// RunServer 从配置路径加载配置并运行服务，供 CLI 入口调用.
func RunServer(configPath string) error {
	cfg, err := configs.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	application, err := New(ctx, cfg)
	if err != nil {
		return err
	}

	return application.Run()
}
