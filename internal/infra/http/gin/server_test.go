package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stayquote/internal/app/bootstrap"
	"stayquote/internal/app/outbox"
	"stayquote/internal/app/policies"
	"stayquote/internal/app/services/auth"
	"stayquote/internal/infra/config"
	mongostore "stayquote/internal/infra/db/mongo"
	"stayquote/internal/infra/obs"
	"stayquote/internal/infra/security"
	"stayquote/internal/infra/storage/memory"
	"stayquote/internal/infra/validation"
)

const adminToken = "test-admin-token"

type testServer struct {
	router http.Handler
	outbox *memory.Outbox
	events []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hasher := security.BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := hasher.Hash(adminToken)
	require.NoError(t, err)

	ts := &testServer{}
	ts.outbox = memory.NewOutbox()
	factory := memory.NewFactory(
		memory.NewBlockedRangeRepository(),
		memory.NewStayRuleRepository(),
		memory.NewSeasonRepository(),
		memory.NewInquiryRepository(),
	)
	seq := 0
	buses := bootstrap.Build(bootstrap.Deps{
		UoW:         factory,
		Outbox:      ts.outbox,
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Cache:       memory.NewAvailabilityCache(time.Minute),
		Validator:   validation.New(),
		Clock:       policies.ClockFunc(func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }),
		IDs: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Logger: logger,
	})
	ts.outbox.Subscribe(func(_ context.Context, rec outbox.EventRecord) error {
		ts.events = append(ts.events, rec.Name)
		return nil
	})

	authService := &auth.Service{Passwords: hasher, AdminTokenHash: hash, Logger: logger}
	ts.router = NewRouter(config.Config{Env: "test"}, obs.Middleware{Logger: logger}, obs.HealthHandlers{}, Handlers{
		Public:    PublicHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Admin:     AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		AdminAuth: AdminAuth{Service: authService, Logger: logger}.Handle,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	return ts.do(t, method, path, body, map[string]string{"Authorization": "Bearer " + adminToken})
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func seedCatalog(t *testing.T, ts *testServer) {
	t.Helper()
	rec := ts.admin(t, http.MethodPost, "/api/v1/admin/pricing-seasons", map[string]any{
		"name": "June", "start_date": "2026-06-01", "end_date": "2026-07-01",
		"currency": "usd", "nightly_min": 500, "nightly_max": 700,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.admin(t, http.MethodPost, "/api/v1/admin/stay-rules", map[string]any{
		"name": "Summer minimum", "start_date": "2026-06-01", "end_date": "2026-09-01",
		"priority": 1, "min_nights": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.admin(t, http.MethodPost, "/api/v1/admin/blocked-dates", map[string]any{
		"start_date": "2026-06-20", "end_date": "2026-06-23", "reason": "owner visit",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/admin/blocked-dates", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/blocked-dates", nil, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "auth: invalid credentials", decode[map[string]string](t, rec)["message"])

	rec = ts.admin(t, http.MethodGet, "/api/v1/admin/blocked-dates", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAvailabilityHidesBlockReasons(t *testing.T) {
	ts := newTestServer(t)
	seedCatalog(t, ts)

	rec := ts.do(t, http.MethodGet, "/api/v1/availability?from=2026-06-01&to=2026-07-01", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "owner visit")

	body := decode[map[string]any](t, rec)
	assert.Equal(t, []any{map[string]any{"start_date": "2026-06-20", "end_date": "2026-06-23"}}, body["blocked"])
	assert.Len(t, body["rules"], 1)
	assert.Len(t, body["seasons"], 1)
}

func TestAvailabilityReflectsCatalogChanges(t *testing.T) {
	ts := newTestServer(t)
	path := "/api/v1/availability?from=2026-06-01&to=2026-07-01"

	rec := ts.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]any](t, rec)["blocked"])

	created := ts.admin(t, http.MethodPost, "/api/v1/admin/blocked-dates", map[string]any{
		"start_date": "2026-06-05", "end_date": "2026-06-06",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	rec = ts.do(t, http.MethodGet, path, nil, nil)
	assert.Len(t, decode[map[string]any](t, rec)["blocked"], 1)

	id := decode[map[string]any](t, created)["id"].(string)
	rec = ts.admin(t, http.MethodDelete, "/api/v1/admin/blocked-dates/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.admin(t, http.MethodDelete, "/api/v1/admin/blocked-dates/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, path, nil, nil)
	assert.Empty(t, decode[map[string]any](t, rec)["blocked"])
}

func TestAvailabilityRejectsBadDates(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/availability?from=06/01/2026", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/availability?from=2026-06-01&to=2030-06-01", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteValidatesAndPrices(t *testing.T) {
	ts := newTestServer(t)
	seedCatalog(t, ts)

	rec := ts.do(t, http.MethodGet, "/api/v1/quote?check_in=2026-06-10&check_out=2026-06-13", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quote := decode[map[string]any](t, rec)
	assert.Equal(t, true, quote["valid"])
	estimate := quote["estimate"].(map[string]any)
	assert.Equal(t, 1500.0, estimate["min"])
	assert.Equal(t, 2100.0, estimate["max"])
	assert.Equal(t, "USD", estimate["currency"])

	rec = ts.do(t, http.MethodGet, "/api/v1/quote?check_in=2026-06-10&check_out=2026-06-12", nil, nil)
	quote = decode[map[string]any](t, rec)
	assert.Equal(t, false, quote["valid"])
	assert.Equal(t, []any{"Minimum stay for this period is 3 nights"}, quote["errors"])
	assert.Nil(t, quote["estimate"])

	rec = ts.do(t, http.MethodGet, "/api/v1/quote?check_in=2026-06-19&check_out=2026-06-24", nil, nil)
	quote = decode[map[string]any](t, rec)
	assert.Equal(t, []any{"Selected dates are not available"}, quote["errors"])

	rec = ts.do(t, http.MethodGet, "/api/v1/quote?check_in=2026-06-10", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func quoteRequest(checkIn, checkOut string) map[string]any {
	return map[string]any{
		"full_name": "Ann Lee", "email": "ann@example.com", "guests": 2,
		"check_in": checkIn, "check_out": checkOut, "pets": true, "pets_details": "one dog",
	}
}

func TestSubmitQuoteRequestFlow(t *testing.T) {
	ts := newTestServer(t)
	seedCatalog(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/quote-requests", quoteRequest("2026-06-10", "2026-06-13"), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, true, created["ok"])
	id := created["id"].(string)
	require.NotEmpty(t, id)

	rec = ts.admin(t, http.MethodGet, "/api/v1/admin/quote-requests?status=new", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[map[string]any](t, rec)
	assert.Equal(t, 1.0, page["total"])
	item := page["items"].([]any)[0].(map[string]any)
	assert.Equal(t, id, item["id"])
	assert.Equal(t, "one dog", item["pets_details"])
	assert.Equal(t, 1500.0, item["estimate"].(map[string]any)["min"])

	rec = ts.admin(t, http.MethodPatch, "/api/v1/admin/quote-requests/"+id+"/status", map[string]string{"status": "booked"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.admin(t, http.MethodPatch, "/api/v1/admin/quote-requests/"+id+"/status", map[string]string{"status": "replied"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "replied", decode[map[string]any](t, rec)["status"])

	rec = ts.admin(t, http.MethodPatch, "/api/v1/admin/quote-requests/missing/status", map[string]string{"status": "replied"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Contains(t, ts.events, "inquiry.submitted")
	assert.Contains(t, ts.events, "inquiry.status_changed")
}

func TestSubmitQuoteRequestRejections(t *testing.T) {
	ts := newTestServer(t)
	seedCatalog(t, ts)

	cases := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"rule violation", quoteRequest("2026-06-10", "2026-06-12"), "Minimum stay for this period is 3 nights"},
		{"blocked", quoteRequest("2026-06-19", "2026-06-24"), "Selected dates are not available"},
		{"inverted", quoteRequest("2026-06-13", "2026-06-10"), "Check-out date must be after check-in date"},
		{"past", quoteRequest("2026-04-01", "2026-04-05"), "inquiry: check-in date is in the past"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/quote-requests", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, decode[map[string]string](t, rec)["message"])
		})
	}

	bad := quoteRequest("2026-06-10", "2026-06-13")
	bad["email"] = "not-an-email"
	rec := ts.do(t, http.MethodPost, "/api/v1/quote-requests", bad, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["message"], "email")
}

func TestSubmitQuoteRequestWithoutPricing(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/quote-requests", quoteRequest("2026-10-01", "2026-10-04"), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Nil(t, decode[map[string]any](t, rec)["estimate"])
}

func TestSubmitQuoteRequestIsIdempotent(t *testing.T) {
	ts := newTestServer(t)
	headers := map[string]string{"Idempotency-Key": "form-123"}

	first := ts.do(t, http.MethodPost, "/api/v1/quote-requests", quoteRequest("2026-10-01", "2026-10-04"), headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := ts.do(t, http.MethodPost, "/api/v1/quote-requests", quoteRequest("2026-10-01", "2026-10-04"), headers)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t, decode[map[string]any](t, first)["id"], decode[map[string]any](t, second)["id"])

	other := ts.do(t, http.MethodPost, "/api/v1/quote-requests", quoteRequest("2026-10-02", "2026-10-05"), headers)
	assert.Equal(t, http.StatusConflict, other.Code)

	rec := ts.admin(t, http.MethodGet, "/api/v1/admin/quote-requests", nil)
	assert.Equal(t, 1.0, decode[map[string]any](t, rec)["total"])
}

func TestCatalogWriteConflicts(t *testing.T) {
	ts := newTestServer(t)
	seedCatalog(t, ts)

	rec := ts.admin(t, http.MethodPost, "/api/v1/admin/pricing-seasons", map[string]any{
		"name": "Late June", "start_date": "2026-06-20", "end_date": "2026-07-10", "nightly_min": 100, "nightly_max": 200,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.admin(t, http.MethodPost, "/api/v1/admin/stay-rules", map[string]any{
		"name": "Tie", "start_date": "2026-07-01", "end_date": "2026-07-15", "priority": 1, "min_nights": 2,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.admin(t, http.MethodPost, "/api/v1/admin/pricing-seasons", map[string]any{
		"name": "Broken", "start_date": "2026-08-01", "end_date": "2026-08-10", "nightly_min": 300, "nightly_max": 200,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.admin(t, http.MethodGet, "/api/v1/admin/pricing-seasons", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]any](t, rec), 1)
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(badRequest("x")))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("wrapped: %w", validation.ErrInvalidInput)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("pricing season: %w", mongostore.ErrConcurrentCatalogWrite)))
}

func TestSiteContentEditing(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/content", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	site := decode[map[string]map[string]string](t, rec)
	assert.Equal(t, "A masterpiece of light and space.", site["home_quote_text"]["text"])

	rec = ts.do(t, http.MethodPut, "/api/v1/admin/content/home_quote_text", map[string]string{"text": "x"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.admin(t, http.MethodPut, "/api/v1/admin/content/welcome_text", map[string]string{"text": "Built in 1962.\nStill bright."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	field := decode[map[string]any](t, rec)
	assert.Equal(t, "textarea", field["type"])
	assert.Equal(t, true, field["custom"])

	rec = ts.do(t, http.MethodGet, "/api/v1/content", nil, nil)
	site = decode[map[string]map[string]string](t, rec)
	assert.Equal(t, "Built in 1962.\nStill bright.", site["welcome_text"]["text"])
	assert.Contains(t, ts.events, "content.updated")

	rec = ts.admin(t, http.MethodGet, "/api/v1/admin/content", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fields := decode[[]map[string]any](t, rec)
	require.Len(t, fields, 2)
	assert.Equal(t, "Home Page Quote", fields[0]["label"])
	assert.Equal(t, "Home", fields[0]["section"])
}

func TestSiteContentRejections(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name   string
		key    string
		text   string
		status int
	}{
		{"unknown key", "footer_text", "hello", http.StatusNotFound},
		{"multi-line quote", "home_quote_text", "one\ntwo", http.StatusBadRequest},
		{"blank", "welcome_text", "   ", http.StatusBadRequest},
		{"empty", "welcome_text", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.admin(t, http.MethodPut, "/api/v1/admin/content/"+tc.key, map[string]string{"text": tc.text})
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
	assert.NotContains(t, ts.events, "content.updated")
}
