package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/kicon/kiconapi/internal/domain/contact"
	"github.com/kicon/kiconapi/internal/http/handlers"
	"github.com/kicon/kiconapi/internal/observability"
	"github.com/kicon/kiconapi/internal/service"
)

type fakeContacts struct {
	submitFn func(ctx context.Context, req contact.CreateRequest) (contact.Contact, error)
	getFn    func(ctx context.Context, id string) (contact.Contact, error)
	listFn   func(ctx context.Context, f contact.Filter) (service.Page[contact.Contact], error)
	updateFn func(ctx context.Context, id string, req contact.UpdateRequest) (contact.Contact, service.UpdateResult, error)
}

func (f *fakeContacts) Submit(ctx context.Context, req contact.CreateRequest) (contact.Contact, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, req)
	}
	return contact.Contact{}, nil
}

func (f *fakeContacts) Get(ctx context.Context, id string) (contact.Contact, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return contact.Contact{}, nil
}

func (f *fakeContacts) List(ctx context.Context, filter contact.Filter) (service.Page[contact.Contact], error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return service.Page[contact.Contact]{}, nil
}

func (f *fakeContacts) UpdateStatus(ctx context.Context, id string, req contact.UpdateRequest) (contact.Contact, service.UpdateResult, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return contact.Contact{}, service.Updated, nil
}

func newContactsHandler(f *fakeContacts, st *fakeStats) *handlers.ContactsHandler {
	if st == nil {
		st = &fakeStats{}
	}
	return handlers.NewContactsHandler(f, st, observability.Discard())
}

func TestCreateContactHandler(t *testing.T) {
	f := &fakeContacts{
		submitFn: func(ctx context.Context, req contact.CreateRequest) (contact.Contact, error) {
			return contact.Contact{ID: "c-1", Name: req.Name, InquiryType: contact.InquiryGeneral, Status: contact.StatusOpen}, nil
		},
	}

	r := setupRouter(http.MethodPost, "/contacts", newContactsHandler(f, nil).Create)
	w := doRequest(r, http.MethodPost, "/contacts", `{"name":"Ravi","email":"ravi@example.com","subject":"Visa letter","message":"Please send a visa letter."}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	data := decodeBody(t, w)["data"].(map[string]any)
	if data["status"] != "open" || data["inquiryType"] != "general" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestListContactsHandler_InvalidInquiryType(t *testing.T) {
	called := false
	f := &fakeContacts{
		listFn: func(ctx context.Context, filter contact.Filter) (service.Page[contact.Contact], error) {
			called = true
			return service.Page[contact.Contact]{}, nil
		},
	}

	r := setupRouter(http.MethodGet, "/contacts", newContactsHandler(f, nil).List)
	w := doRequest(r, http.MethodGet, "/contacts?inquiry_type=billing", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if called {
		t.Fatalf("service should not be called")
	}
}

func TestUpdateContactHandler_NotFound(t *testing.T) {
	f := &fakeContacts{
		updateFn: func(ctx context.Context, id string, req contact.UpdateRequest) (contact.Contact, service.UpdateResult, error) {
			return contact.Contact{}, service.Updated, contact.ErrNotFound
		},
	}

	r := setupRouter(http.MethodPut, "/contacts/:id", newContactsHandler(f, nil).Update)
	w := doRequest(r, http.MethodPut, "/contacts/missing", `{"status":"closed"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestContactStatsHandler(t *testing.T) {
	st := &fakeStats{
		contactsFn: func(ctx context.Context) (service.ContactStats, error) {
			return service.ContactStats{TotalInquiries: 7, RecentInquiries: 2}, nil
		},
	}

	r := setupRouter(http.MethodGet, "/contacts/stats/summary", newContactsHandler(&fakeContacts{}, st).Stats)
	w := doRequest(r, http.MethodGet, "/contacts/stats/summary", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	data := decodeBody(t, w)["data"].(map[string]any)
	if data["total_inquiries"] != float64(7) || data["recent_inquiries"] != float64(2) {
		t.Fatalf("unexpected stats %v", data)
	}
}
