package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/service"
)

type ContactService interface {
	Submit(ctx context.Context, req contact.CreateRequest) (contact.Contact, error)
	Get(ctx context.Context, id string) (contact.Contact, error)
	List(ctx context.Context, f contact.Filter) (service.Page[contact.Contact], error)
	UpdateStatus(ctx context.Context, id string, req contact.UpdateRequest) (contact.Contact, service.UpdateResult, error)
}

type ContactStatsReader interface {
	Contacts(ctx context.Context) (service.ContactStats, error)
}

type ContactsHandler struct {
	svc   ContactService
	stats ContactStatsReader
	log   *slog.Logger
}

func NewContactsHandler(svc ContactService, stats ContactStatsReader, log *slog.Logger) *ContactsHandler {
	return &ContactsHandler{svc: svc, stats: stats, log: log}
}

const contactNotFound = "Contact inquiry not found"

func (h *ContactsHandler) Create(ctx *gin.Context) {
	var req contact.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	c, err := h.svc.Submit(cctx, req)
	if err != nil {
		RespondServiceError(ctx, h.log, err, contactNotFound, "Failed to submit inquiry")
		return
	}

	RespondOK(ctx, http.StatusCreated, c, "Thank you for your inquiry! We will get back to you within 24 hours.")
}

func (h *ContactsHandler) List(ctx *gin.Context) {
	q := newQuery(ctx)
	skip, limit := q.page(50, 100)
	status := enumParam(q, "status", contact.Statuses())
	kind := enumParam(q, "inquiry_type", contact.InquiryTypes())

	if verr := q.err(); verr != nil {
		RespondValidation(ctx, verr)
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	page, err := h.svc.List(cctx, contact.Filter{Status: status, InquiryType: kind, Skip: skip, Limit: limit})
	if err != nil {
		RespondServiceError(ctx, h.log, err, contactNotFound, "Failed to fetch contact inquiries")
		return
	}

	RespondList(ctx, page.Items, page.Total, fmt.Sprintf("Retrieved %d contact inquiries", len(page.Items)))
}

func (h *ContactsHandler) Get(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	c, err := h.svc.Get(cctx, ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, h.log, err, contactNotFound, "Failed to fetch contact inquiry")
		return
	}

	RespondOKWithETag(ctx, c, "Contact inquiry found")
}

func (h *ContactsHandler) Update(ctx *gin.Context) {
	var req contact.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	c, res, err := h.svc.UpdateStatus(cctx, ctx.Param("id"), req)
	if err != nil {
		RespondServiceError(ctx, h.log, err, contactNotFound, "Failed to update contact inquiry")
		return
	}

	RespondOK(ctx, http.StatusOK, c, res.Message("Contact inquiry updated successfully"))
}

func (h *ContactsHandler) Stats(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	st, err := h.stats.Contacts(cctx)
	if err != nil {
		RespondServiceError(ctx, h.log, err, contactNotFound, "Failed to get contact statistics")
		return
	}

	RespondOKWithETag(ctx, st, "Contact statistics retrieved successfully")
}
