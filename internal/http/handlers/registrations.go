package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/domain/registration"
	"github.com/kicon/kiconapi/internal/service"
)

type RegistrationService interface {
	Submit(ctx context.Context, req registration.CreateRequest) (registration.Registration, error)
	Get(ctx context.Context, id string) (registration.Registration, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, f registration.Filter) (service.Page[registration.Registration], error)
	Update(ctx context.Context, id string, req registration.UpdateRequest) (registration.Registration, service.UpdateResult, error)
	Cancel(ctx context.Context, id string) (registration.Registration, error)
}

type RegistrationStatsReader interface {
	Registrations(ctx context.Context) (service.RegistrationStats, error)
}

type RegistrationsHandler struct {
	svc   RegistrationService
	stats RegistrationStatsReader
	log   *slog.Logger
}

func NewRegistrationsHandler(svc RegistrationService, stats RegistrationStatsReader, log *slog.Logger) *RegistrationsHandler {
	return &RegistrationsHandler{svc: svc, stats: stats, log: log}
}

const (
	registrationNotFound = "Registration not found"
	requestTimeout       = 5 * time.Second
)

func requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), requestTimeout)
}

func (h *RegistrationsHandler) Create(ctx *gin.Context) {
	var req registration.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	reg, err := h.svc.Submit(cctx, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Internal server error occurred")
		return
	}

	RespondOK(ctx, http.StatusCreated, reg, "Registration submitted successfully! You will receive a confirmation email shortly.")
}

func (h *RegistrationsHandler) List(ctx *gin.Context) {
	q := newQuery(ctx)
	skip, limit := q.page(100, 200)
	status := enumParam(q, "status", registration.Statuses())
	specialty := enumParam(q, "specialty", registration.Specialties())

	if verr := q.err(); verr != nil {
		RespondValidation(ctx, verr)
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	page, err := h.svc.List(cctx, registration.Filter{Status: status, Specialty: specialty, Skip: skip, Limit: limit})
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Failed to fetch registrations")
		return
	}

	RespondList(ctx, page.Items, page.Total, fmt.Sprintf("Retrieved %d registrations", len(page.Items)))
}

func (h *RegistrationsHandler) Get(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	reg, err := h.svc.Get(cctx, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Failed to fetch registration")
		return
	}

	RespondOKWithETag(ctx, reg, "Registration found")
}

func (h *RegistrationsHandler) CheckEmail(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	exists, err := h.svc.EmailExists(cctx, ctx.Param("email"))
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Failed to check email")
		return
	}

	msg := "Email available"
	if exists {
		msg = "Email already registered"
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "exists": exists, "message": msg})
}

func (h *RegistrationsHandler) Update(ctx *gin.Context) {
	var req registration.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	reg, res, err := h.svc.Update(cctx, ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Failed to update registration")
		return
	}

	RespondOK(ctx, http.StatusOK, reg, res.Message("Registration updated successfully"))
}

func (h *RegistrationsHandler) Cancel(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	reg, err := h.svc.Cancel(cctx, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Failed to cancel registration")
		return
	}

	RespondOK(ctx, http.StatusOK, reg, "Registration cancelled successfully")
}

func (h *RegistrationsHandler) Stats(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	st, err := h.stats.Registrations(cctx)
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Failed to get registration statistics")
		return
	}

	RespondOKWithETag(ctx, st, "Registration statistics retrieved successfully")
}
