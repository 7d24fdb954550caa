package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kicon/kiconapi/internal/auth"
	"github.com/kicon/kiconapi/internal/config"
	apphttp "github.com/kicon/kiconapi/internal/http"
	"github.com/kicon/kiconapi/internal/http/handlers"
	"github.com/kicon/kiconapi/internal/observability"
	"github.com/kicon/kiconapi/internal/repo/memory"
	"github.com/kicon/kiconapi/internal/service"
)

const adminPassword = "desk-password"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Total   *int64          `json:"total"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T, mutate func(*config.EventConfig)) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ev := config.DefaultEventConfig()
	// keep admissions open regardless of the wall clock
	ev.RegistrationDeadline = time.Now().AddDate(1, 0, 0)
	if mutate != nil {
		mutate(&ev)
	}

	log := observability.Discard()
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	regs := memory.NewRegistrationsRepo()
	contacts := memory.NewContactsRepo()
	payments := memory.NewPaymentsRepo()

	admin, err := auth.NewAdmin("admin", adminPassword, "")
	require.NoError(t, err)

	router := apphttp.NewRouter(apphttp.Deps{
		Log:           log,
		Prom:          prom,
		Gather:        reg,
		CORSOrigins:   []string{"*"},
		Registrations: service.NewRegistrations(regs, ev, log, prom),
		Contacts:      service.NewContacts(contacts, log),
		Payments:      service.NewPayments(payments, regs, ev, log, prom),
		Stats:         service.NewStats(regs, contacts, payments, ev),
		Admin:         admin,
		Tokens:        auth.NewManager("integration-secret", time.Hour),
		RateLimit:     1000,
		Checks: map[string]handlers.Pinger{
			"store": func(context.Context) error { return nil },
		},
	})

	return &api{t: t, router: router}
}

func (a *api) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (a *api) login() {
	a.t.Helper()

	w, env := a.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": adminPassword})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(a.t, out.AccessToken)
	a.token = out.AccessToken
}

func delegate(email string) map[string]any {
	return map[string]any{
		"fullName":         "Kim Min-jun",
		"gender":           "male",
		"dateOfBirth":      "1985-04-12",
		"nationality":      "Korean",
		"passportNumber":   "M12345678",
		"passportExpiry":   "2031-06-30",
		"mobile":           "+821012345678",
		"email":            email,
		"specialty":        "dentistry",
		"yearsOfPractice":  12,
		"clinicName":       "Gangnam Smile Clinic",
		"clinicAddress":    "123 Teheran-ro, Gangnam-gu, Seoul",
		"designation":      "Director",
		"interests":        []string{"Dental Equipment"},
		"mou":              true,
		"foodPreference":   "both",
		"emergencyContact": "+821098765432",
		"termsAccepted":    true,
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type registrationView struct {
	ID                 string `json:"id"`
	RegistrationStatus string `json:"registrationStatus"`
	PaymentStatus      string `json:"paymentStatus"`
}

type paymentView struct {
	ID         string  `json:"id"`
	Status     string  `json:"payment_status"`
	VerifiedBy *string `json:"verified_by"`
	PaymentDay *string `json:"payment_date"`
}

func TestRegistrationToVerifiedPayment(t *testing.T) {
	a := newAPI(t, nil)

	w, env := a.do(http.MethodPost, "/api/registrations", delegate("kim@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[registrationView](t, env.Data)
	require.Equal(t, "pending", reg.RegistrationStatus)
	require.Equal(t, "unpaid", reg.PaymentStatus)

	w, env = a.do(http.MethodPost, "/api/registrations", delegate("kim@example.com"))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "email_already_registered", env.Error.Code)

	w, _ = a.do(http.MethodGet, "/api/payments/info/"+reg.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = a.do(http.MethodPost, "/api/payments", map[string]any{"registration_id": reg.ID, "transaction_id": "HDFC-UTR-001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pay := decode[paymentView](t, env.Data)
	require.NotNil(t, pay.PaymentDay)

	_, env = a.do(http.MethodGet, "/api/registrations/"+reg.ID, nil)
	require.Equal(t, "advance_paid", decode[registrationView](t, env.Data).PaymentStatus)

	a.login()

	w, env = a.do(http.MethodPut, "/api/payments/"+pay.ID, map[string]any{"payment_status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	verified := decode[paymentView](t, env.Data)
	require.Equal(t, "completed", verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	require.Equal(t, "admin", *verified.VerifiedBy)

	_, env = a.do(http.MethodGet, "/api/registrations/"+reg.ID, nil)
	require.Equal(t, "full_paid", decode[registrationView](t, env.Data).PaymentStatus)

	w, env = a.do(http.MethodPut, "/api/payments/"+pay.ID, map[string]any{"payment_status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "No changes were made", env.Message)

	w, env = a.do(http.MethodDelete, "/api/registrations/"+reg.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "cancelled", decode[registrationView](t, env.Data).RegistrationStatus)

	// cancelled registrations still hold their email
	w, env = a.do(http.MethodPost, "/api/registrations", delegate("kim@example.com"))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "email_already_registered", env.Error.Code)
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	a := newAPI(t, nil)

	for _, path := range []string{
		"/api/registrations",
		"/api/registrations/stats/summary",
		"/api/contacts",
		"/api/payments",
		"/api/payments/stats/summary",
	} {
		w, env := a.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
		require.False(t, env.Success, path)
	}

	w, _ := a.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCapacityAndStats(t *testing.T) {
	a := newAPI(t, func(ev *config.EventConfig) { ev.Capacity = 2 })

	ids := make([]string, 0, 2)
	for _, email := range []string{"one@example.com", "two@example.com"} {
		w, env := a.do(http.MethodPost, "/api/registrations", delegate(email))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids = append(ids, decode[registrationView](t, env.Data).ID)
	}

	w, env := a.do(http.MethodPost, "/api/registrations", delegate("three@example.com"))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "capacity_reached", env.Error.Code)

	a.login()

	w, _ = a.do(http.MethodDelete, "/api/registrations/"+ids[0], nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodPost, "/api/registrations", delegate("three@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, env = a.do(http.MethodGet, "/api/registrations/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, env.Data)
	require.EqualValues(t, 3, stats["total_registrations"])
	require.EqualValues(t, 2, stats["active_registrations"])
	require.EqualValues(t, 0, stats["available_spots"])

	w, env = a.do(http.MethodGet, "/api/registrations?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Total)
	require.EqualValues(t, 3, *env.Total)
	require.Equal(t, "Retrieved 1 registrations", env.Message)
}

func TestValidationFailureListsFields(t *testing.T) {
	a := newAPI(t, nil)

	body := delegate("young@example.com")
	body["dateOfBirth"] = time.Now().AddDate(-17, 0, 0).Format("2006-01-02")
	body["termsAccepted"] = false

	w, env := a.do(http.MethodPost, "/api/registrations", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "invalid_request", env.Error.Code)
	require.Contains(t, w.Body.String(), `"dateOfBirth"`)
	require.Contains(t, w.Body.String(), `"termsAccepted"`)

	a.login()
	_, env = a.do(http.MethodGet, "/api/registrations", nil)
	require.NotNil(t, env.Total)
	require.Zero(t, *env.Total)
}

func TestContactLifecycle(t *testing.T) {
	a := newAPI(t, nil)

	w, env := a.do(http.MethodPost, "/api/contacts", map[string]any{
		"name":        "Priya Sharma",
		"email":       "priya@example.com",
		"subject":     "Hotel booking",
		"message":     "Is the partner hotel rate still available?",
		"inquiryType": "accommodation",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c := decode[map[string]any](t, env.Data)
	require.Equal(t, "open", c["status"])

	a.login()

	id := c["id"].(string)
	w, env = a.do(http.MethodPut, "/api/contacts/"+id, map[string]any{"status": "responded"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "responded", decode[map[string]any](t, env.Data)["status"])

	w, env = a.do(http.MethodPut, "/api/contacts/"+id, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "No update data provided", env.Message)
}

func TestOperationalEndpoints(t *testing.T) {
	a := newAPI(t, nil)

	w, _ := a.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	a.do(http.MethodGet, "/api/payments/bank-details", nil)

	w, _ = a.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "kicon_http_requests_total")
}
