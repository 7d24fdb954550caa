package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/actorctx"
	"github.com/kicon/kiconapi/internal/domain/payment"
	"github.com/kicon/kiconapi/internal/service"
)

type PaymentService interface {
	BankDetails() payment.BankTransfer
	Info(ctx context.Context, registrationID string) (payment.Payment, payment.Info, error)
	Submit(ctx context.Context, req payment.CreateRequest) (payment.Payment, error)
	Update(ctx context.Context, id string, req payment.UpdateRequest, actor string) (payment.Payment, service.UpdateResult, error)
	List(ctx context.Context, f payment.Filter) (service.Page[payment.Payment], error)
}

type PaymentStatsReader interface {
	Payments(ctx context.Context) (service.PaymentStats, error)
}

type PaymentsHandler struct {
	svc   PaymentService
	stats PaymentStatsReader
	log   *slog.Logger
}

func NewPaymentsHandler(svc PaymentService, stats PaymentStatsReader, log *slog.Logger) *PaymentsHandler {
	return &PaymentsHandler{svc: svc, stats: stats, log: log}
}

const paymentNotFound = "Payment record not found"

type paymentInfoEnvelope struct {
	Envelope
	PaymentInfo payment.Info `json:"payment_info"`
}

func (h *PaymentsHandler) BankDetails(ctx *gin.Context) {
	RespondOK(ctx, http.StatusOK, h.svc.BankDetails(), "Bank details retrieved successfully")
}

func (h *PaymentsHandler) Info(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	p, info, err := h.svc.Info(cctx, ctx.Param("registrationId"))
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Failed to get payment information")
		return
	}

	ctx.JSON(http.StatusOK, paymentInfoEnvelope{
		Envelope:    Envelope{Success: true, Data: p, Message: "Payment information retrieved successfully"},
		PaymentInfo: info,
	})
}

func (h *PaymentsHandler) Create(ctx *gin.Context) {
	var req payment.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	p, err := h.svc.Submit(cctx, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err, registrationNotFound, "Failed to submit payment information")
		return
	}

	RespondOK(ctx, http.StatusCreated, p, "Payment information submitted successfully. Our team will verify your payment within 24-48 hours.")
}

func (h *PaymentsHandler) List(ctx *gin.Context) {
	q := newQuery(ctx)
	skip, limit := q.page(50, 100)
	status := enumParam(q, "status", payment.Statuses())
	registrationID := q.str("registration_id")

	if verr := q.err(); verr != nil {
		RespondValidation(ctx, verr)
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	page, err := h.svc.List(cctx, payment.Filter{Status: status, RegistrationID: registrationID, Skip: skip, Limit: limit})
	if err != nil {
		RespondServiceError(ctx, h.log, err, paymentNotFound, "Failed to fetch payment records")
		return
	}

	RespondList(ctx, page.Items, page.Total, fmt.Sprintf("Retrieved %d payment records", len(page.Items)))
}

func (h *PaymentsHandler) Update(ctx *gin.Context) {
	var req payment.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	actor, _ := actorctx.AdminFrom(ctx.Request.Context())

	cctx, cancel := requestContext(ctx)
	defer cancel()

	p, res, err := h.svc.Update(cctx, ctx.Param("id"), req, actor)
	if err != nil {
		RespondServiceError(ctx, h.log, err, paymentNotFound, "Failed to update payment")
		return
	}

	RespondOK(ctx, http.StatusOK, p, res.Message("Payment updated successfully"))
}

func (h *PaymentsHandler) Stats(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	st, err := h.stats.Payments(cctx)
	if err != nil {
		RespondServiceError(ctx, h.log, err, paymentNotFound, "Failed to get payment statistics")
		return
	}

	RespondOKWithETag(ctx, st, "Payment statistics retrieved successfully")
}
