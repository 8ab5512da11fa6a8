package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"estate-api/internal/core/auth"
	"estate-api/internal/core/cache"
	"estate-api/internal/core/config"
	"estate-api/internal/core/database"
	"estate-api/internal/core/logger"
	"estate-api/internal/core/server"
	"estate-api/internal/events"
	"estate-api/internal/repo"
	"estate-api/internal/service"
	"estate-api/internal/transport/http/handler"
	"estate-api/internal/transport/http/router"
	"estate-api/internal/transport/http/session"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.App.Production(),
		Rotate: logger.FileRotate{
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxMB,
			MaxBackups: cfg.Log.Backup,
		},
	})
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.TTLHours) * time.Hour,
	}
	store := repo.NewUserRepo(db)

	var ledger events.Ledger
	if cfg.Redis.Addr != "" {
		l := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		l.Prefix = cfg.Redis.KeyPrefix
		l.TTL = time.Duration(cfg.Redis.TTLHours) * time.Hour
		l.Log = log
		defer l.Close()
		ledger = l
		log.Info("event ledger enabled", zap.String("redis", cfg.Redis.Addr))
	}
	dispatcher := events.NewDispatcher(service.NewReconciler(store, log), ledger, log)

	if cfg.NATS.URL != "" {
		sub, err := events.NewSubscriber(events.SubscriberOpts{
			URL:     cfg.NATS.URL,
			Subject: cfg.NATS.Subject,
			Queue:   cfg.NATS.Queue,
			Stream:  cfg.NATS.Stream,
		}, dispatcher, log)
		if err != nil {
			log.Fatal("nats subscribe failed", zap.Error(err))
		}
		defer sub.Close()
	}

	r := router.NewAPIEngine(router.Deps{
		Log:            log,
		JWT:            jwter,
		Users:          handler.NewUserHandler(service.NewUserService(store, log), store, session.NewIssuer(jwter, cfg.App.Production()), log),
		Events:         handler.NewEventHandler(dispatcher, log),
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(addr, r, server.Timeouts{
		Read:  time.Duration(cfg.App.HTTP.ReadTimeoutSec) * time.Second,
		Write: time.Duration(cfg.App.HTTP.WriteTimeoutSec) * time.Second,
		Idle:  time.Duration(cfg.App.HTTP.IdleTimeoutSec) * time.Second,
	})

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("estate api starting",
		zap.String("addr", addr),
		zap.String("env", cfg.App.Env),
		zap.String("signup", baseURL+"/api/v1/user/signup"),
		zap.String("events", baseURL+"/api/inngest"),
	)
	server.Start(srv, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	if err := server.Shutdown(srv, 10*time.Second); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("estate api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
