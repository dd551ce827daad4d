package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/retracehq/retrace/internal/config"
	"github.com/retracehq/retrace/internal/infra/cache"
	"github.com/retracehq/retrace/internal/infra/database"
	"github.com/retracehq/retrace/internal/infra/repository"
	"github.com/retracehq/retrace/internal/present/rest"
	"github.com/retracehq/retrace/internal/present/rest/middleware"
	"github.com/retracehq/retrace/internal/service"
	"github.com/retracehq/retrace/internal/usecase"
)

func main() {
	configPath := flag.String("config", "/etc/retrace/config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		slog.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		slog.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	var authCache cache.Cache
	switch conf.Server.CacheBackend {
	case "memcached":
		authCache = cache.NewMemcachedCache(database.NewMemcached(conf.Server.MemcachedAddr))
	default:
		authCache = cache.NewRedisCache(rdb)
	}

	workspaceRepo := repository.NewWorkspaceRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	authService := service.NewAuthService(tokenRepo, authCache)
	signalService := service.NewSignalService(rdb)

	workspaceUsecase := usecase.NewWorkspaceUsecase(workspaceRepo)
	tokenUsecase := usecase.NewTokenUsecase(tokenRepo, workspaceRepo, authService)
	recordUsecase := usecase.NewRecordUsecase(recordRepo, workspaceRepo, signalService)

	ping := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	}

	handler := rest.NewHandler(workspaceUsecase, tokenUsecase, recordUsecase, signalService, ping)
	auth := middleware.NewAuthMiddleware(authService, conf.Server.AdminKey)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	if conf.Server.EnableTrace {
		shutdown, err := setupTracer(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
		e.Use(otelecho.Middleware("retraced"))
	}

	handler.RegisterRoutes(e, auth)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(conf.Server.Listen); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down cleanly", slog.String("error", err.Error()))
	}
}

func setupTracer(endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("retraced"),
		)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Warn("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}, nil
}
