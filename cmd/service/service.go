// File: cmd/service/service.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-home-portal/internal/cache"
	"smart-home-portal/internal/config"
	"smart-home-portal/internal/database"
	"smart-home-portal/internal/handler/account"
	"smart-home-portal/internal/ingest"
	"smart-home-portal/internal/livelog"
	"smart-home-portal/internal/mqtt"
	"smart-home-portal/internal/router"
	"smart-home-portal/internal/service"
	"smart-home-portal/internal/session"
	"smart-home-portal/internal/tables"
	"smart-home-portal/internal/telemetry"
	"smart-home-portal/internal/view"
	"smart-home-portal/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "smart-home-portal/docs" // 引入 swag 產出的 docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// broker 為 run 用到的 mqtt.Client 方法
type broker interface {
	mqtt.Publisher
	mqtt.Subscriber
	Close() error
}

const shutdownTimeout = 10 * time.Second

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	rollbackFn      = database.RollbackAll
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	connectMQTT     = func(opts mqtt.Options) (broker, error) {
		c, err := mqtt.Connect(opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	connectInflux = func(ctx context.Context, opts telemetry.Options) (telemetry.Recorder, error) {
		r, err := telemetry.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	exitFunc = os.Exit
)

// migrate 執行 `service migrate up|down` 子命令
func migrate(cfg *config.Config, direction string) error {
	switch direction {
	case "up":
		if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("Migration 執行失敗: %v", err)
		}
	case "down":
		if err := rollbackFn(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("Rollback 執行失敗: %v", err)
		}
	default:
		return fmt.Errorf("用法: service migrate up|down")
	}
	return nil
}

func run(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("設定載入失敗: %v", err)
	}

	if len(args) > 0 {
		if args[0] != "migrate" {
			return fmt.Errorf("未知的命令: %s", args[0])
		}
		direction := ""
		if len(args) > 1 {
			direction = args[1]
		}
		return migrate(cfg, direction)
	}

	if cfg.RunMigrations {
		if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("Migration 執行失敗: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %v", err)
	}
	defer db.Close()

	redis, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("Redis 連線失敗: %v", err)
	}
	defer redis.Close()

	// Echo 實例及中介層
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	renderer, err := view.New()
	if err != nil {
		return fmt.Errorf("模板載入失敗: %v", err)
	}
	e.Renderer = renderer
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	sessions := session.NewManager(db, redis, session.Options{
		TTL:      cfg.Session.TTL,
		CacheTTL: cfg.Session.CacheTTL,
		Logger:   e.Logger,
	})

	hub := livelog.NewHub(e.Logger)
	go hub.Run(ctx)

	var recorder telemetry.Recorder = telemetry.Nop{}
	if cfg.Influx.URL != "" {
		recorder, err = connectInflux(ctx, telemetry.Options{
			URL:     cfg.Influx.URL,
			Token:   cfg.Influx.Token,
			Org:     cfg.Influx.Org,
			Bucket:  cfg.Influx.Bucket,
			OnError: func(err error) { e.Logger.Errorf("influx 寫入失敗: %v", err) },
		})
		if err != nil {
			return fmt.Errorf("InfluxDB 連線失敗: %v", err)
		}
	}
	defer recorder.Close()

	wp := newWorkerPool(cfg.WorkerCount, worker.WithPanicHandler(func(v any) {
		e.Logger.Errorf("worker task panic: %v", v)
	}))
	defer wp.Stop()

	var publisher mqtt.Publisher = mqtt.Nop{}
	if cfg.MQTT.Broker != "" {
		b, err := connectMQTT(mqtt.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Logger:   e.Logger,
		})
		if err != nil {
			return fmt.Errorf("MQTT 連線失敗: %v", err)
		}
		// 先於 worker pool 關閉，避免停止後仍有訊息送入
		defer b.Close()

		in := ingest.New(db, wp, hub, recorder, e.Logger, cfg.StoreTimeout)
		if err := in.Start(b); err != nil {
			return fmt.Errorf("MQTT 訂閱失敗: %v", err)
		}
		publisher = b
	}

	dispatcher := tables.NewDispatcher(db, tables.NewRegistry(), cfg.StoreTimeout)
	dispatcher.SetSessionInvalidator(sessions)

	router.Setup(e, router.Deps{
		DB:           db,
		Cache:        redis,
		Sessions:     sessions,
		Accounts:     service.NewAccounts(db, sessions),
		Tables:       dispatcher,
		Publisher:    publisher,
		LiveLogs:     hub,
		TablesConfig: cfg.Tables,
		Cookie:       account.CookieOptions{Secure: cfg.Session.CookieSecure, TTL: cfg.Session.TTL},
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			e.Logger.Errorf("server shutdown: %v", err)
		}
	}()

	if err := startServer(e, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
