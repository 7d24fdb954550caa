package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/kicon/kiconapi/internal/auth"
	"github.com/kicon/kiconapi/internal/http/handlers"
	"github.com/kicon/kiconapi/internal/http/middlewares"
	"github.com/kicon/kiconapi/internal/observability"
)

const (
	maxBodyBytes     = 1 << 20
	adminWriteFactor = 5
)

type Deps struct {
	Log    *slog.Logger
	Prom   *observability.Prom
	Gather prometheus.Gatherer

	ServiceName string
	CORSOrigins []string

	Registrations handlers.RegistrationService
	Contacts      handlers.ContactService
	Payments      handlers.PaymentService
	Stats         Stats

	Admin  handlers.Authenticator
	Tokens *auth.Manager

	// Counter backs the public submission limiter.
	Counter   middlewares.Counter
	RateLimit int

	Checks map[string]handlers.Pinger
}

type Stats interface {
	handlers.RegistrationStatsReader
	handlers.ContactStatsReader
	handlers.PaymentStatsReader
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if d.Gather != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gather, promhttp.HandlerOpts{})))
	}

	registrations := handlers.NewRegistrationsHandler(d.Registrations, d.Stats, d.Log)
	contacts := handlers.NewContactsHandler(d.Contacts, d.Stats, d.Log)
	payments := handlers.NewPaymentsHandler(d.Payments, d.Stats, d.Log)
	login := handlers.NewAuthHandler(d.Admin, d.Tokens, d.Log)

	counter := d.Counter
	if counter == nil {
		counter = middlewares.NewMemoryCounter()
	}
	limiter := middlewares.NewRateLimiter(counter, d.RateLimit, time.Minute, d.Log)
	submitLimit := limiter.RateLimiterMiddleware("submit", middlewares.KeyByIP)
	loginLimit := limiter.RateLimiterMiddleware("login", middlewares.KeyByIP)

	// Admin writes are keyed per admin account and get a looser budget than public submissions.
	adminLimit := middlewares.NewRateLimiter(counter, d.RateLimit*adminWriteFactor, time.Minute, d.Log).
		RateLimiterMiddleware("admin_write", middlewares.KeyByAdminOrIP)

	authMW := middlewares.NewAuthMiddleware(d.Tokens)
	admin := []gin.HandlerFunc{authMW.RequireAuth(), authMW.RequireRole(auth.RoleAdmin)}
	adminWrite := []gin.HandlerFunc{authMW.RequireAuth(), authMW.RequireRole(auth.RoleAdmin), adminLimit}

	api := r.Group("/api")
	api.Use(middlewares.MaxBodyBytes(maxBodyBytes), middlewares.RequireJSON())

	api.GET("/", h.Root)
	api.POST("/auth/login", loginLimit, login.Login)

	regs := api.Group("/registrations")
	{
		regs.POST("", submitLimit, registrations.Create)
		regs.GET("/email/:email", registrations.CheckEmail)
		regs.GET("/:id", registrations.Get)

		regs.GET("", append(admin, registrations.List)...)
		regs.GET("/stats/summary", append(admin, registrations.Stats)...)
		regs.PUT("/:id", append(adminWrite, registrations.Update)...)
		regs.DELETE("/:id", append(adminWrite, registrations.Cancel)...)
	}

	cts := api.Group("/contacts")
	{
		cts.POST("", submitLimit, contacts.Create)

		cts.GET("", append(admin, contacts.List)...)
		cts.GET("/stats/summary", append(admin, contacts.Stats)...)
		cts.GET("/:id", append(admin, contacts.Get)...)
		cts.PUT("/:id", append(adminWrite, contacts.Update)...)
	}

	pays := api.Group("/payments")
	{
		pays.GET("/bank-details", payments.BankDetails)
		pays.GET("/info/:registrationId", payments.Info)
		pays.POST("", submitLimit, payments.Create)

		pays.GET("", append(admin, payments.List)...)
		pays.GET("/stats/summary", append(admin, payments.Stats)...)
		pays.PUT("/:id", append(adminWrite, payments.Update)...)
	}

	return r
}
