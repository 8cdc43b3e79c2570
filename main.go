package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/api/rest"
	"github.com/kasuganosora/osupanel/audit"
	"github.com/kasuganosora/osupanel/auth"
	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/config"
	dbadapter "github.com/kasuganosora/osupanel/db"
	"github.com/kasuganosora/osupanel/leaderboard"
	"github.com/kasuganosora/osupanel/logging"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/moderation"
	"github.com/kasuganosora/osupanel/notify"
	"github.com/kasuganosora/osupanel/scheduler"
	"github.com/kasuganosora/osupanel/stats"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	base, err := logging.New(cfg.Server.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	traceback, err := logging.NewTraceback(cfg.Log)
	if err != nil {
		log.Fatalf("traceback log: %v", err)
	}
	defer traceback.Close()
	logger := traceback.Tee(base)
	defer logger.Sync()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	if cfg.Database.Mode == dbadapter.ModeSQLite || cfg.Database.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("db migrate failed", zap.Error(err))
		}
	}
	s := store.New(db)
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Cache / PubSub ----
	backend, err := cache.Open(cfg.Cache)
	if err != nil {
		logger.Fatal("cache open failed", zap.Error(err))
	}
	defer backend.Close()
	if cfg.Cache.RedisAddr == "" {
		logger.Warn("cache.redis_addr is not set; notifications will not reach Bancho")
	}
	logger.Info("Cache initialized")

	// ---- Services ----
	auditSvc := audit.New(s, cfg.Panel.Via, logger)
	board := leaderboard.New(backend.Cache, logger)
	publisher := notify.New(backend.PubSub, cfg.Bancho, logger)
	modSvc := moderation.New(s, publisher, auditSvc, board, moderation.ConfigFrom(cfg), logger)
	gate := auth.NewGate(s, cfg.Bancho.BotUserID)
	sessions := auth.NewSessions(cfg.Security, backend.Cache)

	// ---- Scheduler ----
	ring := stats.NewRing(cfg.Panel.OnlineHistorySize)
	poller := stats.NewPoller(backend.Cache, ring, logger)
	sched := scheduler.New(logger)
	sched.AddTicker("online_users", cfg.Panel.OnlinePollInterval, true, poller.Poll)
	if cfg.Panel.DonorSweepInterval > 0 {
		sched.AddTicker("supporter_expiry", cfg.Panel.DonorSweepInterval, false, func(ctx context.Context) {
			n, err := modSvc.ExpireSupporters(ctx)
			if err != nil {
				logger.Error("supporter expiry sweep failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("supporters expired", zap.Int("count", n))
			}
		})
	}

	// ---- HTTP ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := rest.NewRouter(ctx, rest.Deps{
		Config:     cfg,
		Store:      s,
		Gate:       gate,
		Sessions:   sessions,
		Moderation: modSvc,
		Audit:      auditSvc,
		Board:      board,
		Online:     ring,
		PubSub:     backend.PubSub,
		Scheduler:  sched,
		Traceback:  traceback,
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	sched.Stop()
	auditSvc.Stop(shutdownCtx)
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
