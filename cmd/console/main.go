package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"voicera-console/internal/agentops"
	"voicera-console/internal/audit"
	"voicera-console/internal/auth"
	"voicera-console/internal/capability"
	"voicera-console/internal/config"
	"voicera-console/internal/httpapi"
	"voicera-console/internal/metrics"
	"voicera-console/internal/proxy"
	"voicera-console/internal/session"
	"voicera-console/internal/telephony"
	"voicera-console/pkg/logger"
	"voicera-console/pkg/utils"
)

// testCallWindow bounds how long a test call holds its guard.
const testCallWindow = 2 * time.Minute

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	registry, err := capability.Load()
	if err != nil {
		log.Error("capability catalogs invalid", "err", err)
		os.Exit(1)
	}

	mgr, err := auth.NewManager(cfg.Session)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.Session.Store == config.StoreRedis {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	var (
		store session.Store
		guard agentops.Guard
	)
	if rdb != nil {
		store = session.NewRedisStore(rdb, cfg.Session.TTL)
		guard = agentops.NewRedisGuard(rdb, testCallWindow)
	} else {
		store = session.NewMemoryStore(cfg.Session.TTL)
		guard = agentops.NewMemoryGuard(testCallWindow)
	}

	var (
		db        *sql.DB
		auditRepo audit.Repository = audit.NewMemoryRepo()
	)
	if cfg.Audit.Store == config.StorePostgres {
		db, err = utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		pg := audit.NewPostgresRepo(db)
		if err := pg.Migrate(rootCtx); err != nil {
			log.Error("audit migration failed", "err", err)
			os.Exit(1)
		}
		auditRepo = pg
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hc := &http.Client{Timeout: cfg.App.HTTPTimeout}
	sessions := auth.NewSessions(mgr, store, cfg.Session)
	h := &httpapi.Handlers{
		Registry:       registry,
		Sessions:       sessions,
		Audit:          audit.NewService(auditRepo, log),
		Metrics:        m,
		BackendURL:     cfg.Backend.ServerURL,
		VoiceServerURL: cfg.Voice.ServerURL,
		HTTPClient:     hc,
		Caller:         telephony.NewVoiceClient(cfg.Voice.ServerURL, hc),
		Guard:          guard,
	}
	px := proxy.New(cfg.Backend.ServerURL, proxy.WithHTTPClient(hc), proxy.WithObserver(m.ObserveProxy), proxy.WithSessions(sessions))

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(m.Middleware())

	registerRoutes(r, h, px, m, deps{db: db, rdb: rdb})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Exports and recordings stream for longer than a JSON reply.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("console listening", "addr", srv.Addr, "env", cfg.App.Env,
			"session_store", cfg.Session.Store, "audit_store", cfg.Audit.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
