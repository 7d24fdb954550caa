package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kicon/kiconapi/internal/auth"
	"github.com/kicon/kiconapi/internal/config"
	httpx "github.com/kicon/kiconapi/internal/http"
	"github.com/kicon/kiconapi/internal/http/handlers"
	"github.com/kicon/kiconapi/internal/http/middlewares"
	"github.com/kicon/kiconapi/internal/observability"
	"github.com/kicon/kiconapi/internal/redisclient"
	"github.com/kicon/kiconapi/internal/service"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	startCtx, cancelStart := config.WithTimeout(30 * time.Second)
	defer cancelStart()

	shutdownTracer, err := observability.InitTracer(startCtx, observability.TracerConfig{
		ServiceName: cfg.OTELServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.OTELEndpoint,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	st, err := openStores(startCtx, cfg, prom)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	checks := map[string]handlers.Pinger{"store": st.check}

	var counter middlewares.Counter = middlewares.NewMemoryCounter()
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()

		if err := rdb.Ping(startCtx); err != nil {
			log.Warn("redis unreachable at startup, limiter will fall back to memory", "addr", cfg.RedisAddr, "err", err)
		}

		counter = middlewares.NewRedisCounter(rdb, "kicon:ratelimit:", log)
		checks["redis"] = rdb.Ping
	}

	admin, err := auth.NewAdmin(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		log.Error("admin credentials invalid", "err", err)
		os.Exit(1)
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		log.Warn("no admin password configured, admin login is disabled")
	}

	stats := service.NewStats(st.registrations, st.contacts, st.payments, cfg.Event).
		WithCache(time.Duration(cfg.StatsCacheSeconds) * time.Second)

	router := httpx.NewRouter(httpx.Deps{
		Log:           log,
		Prom:          prom,
		Gather:        reg,
		ServiceName:   cfg.OTELServiceName,
		CORSOrigins:   cfg.CORSOrigins,
		Registrations: service.NewRegistrations(st.registrations, cfg.Event, log, prom),
		Contacts:      service.NewContacts(st.contacts, log),
		Payments:      service.NewPayments(st.payments, st.registrations, cfg.Event, log, prom),
		Stats:         stats,
		Admin:         admin,
		Tokens:        auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute),
		Counter:       counter,
		RateLimit:     cfg.RateLimitPerMinute,
		Checks:        checks,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			"port", cfg.Port,
			"env", cfg.Env,
			"store", cfg.StoreDriver,
			"capacity", cfg.Event.Capacity,
			"registration_deadline", cfg.Event.RegistrationDeadline,
		)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
