package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"daybook/internal/controller"
	"daybook/internal/core"
	"daybook/internal/ledger/memory"
	"daybook/internal/log"
	"daybook/internal/services"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, opts ...Option) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := services.NewLedgerService(store, services.DefaultProvisionWindow, nil)
	view := controller.New(svc, controller.WithClock(clock))
	opts = append([]Option{WithClock(clock)}, opts...)
	srv := NewServer(":0", svc, view, opts...)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	} else if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("%s missing security headers", path)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s missing request id", path)
		}
	}
}

func TestReadyReportsStorageFailure(t *testing.T) {
	srv, _ := newTestServer(t, WithPinger(fakePinger{err: errors.New("disk gone")}))

	rr := do(srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	body := decode[map[string]any](t, rr)
	if body["status"] != "not_ready" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetDayProvisions(t *testing.T) {
	srv, store := newTestServer(t)

	rr := do(srv, http.MethodGet, "/api/days/2026-03-10", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	e := decode[core.LedgerEntry](t, rr)
	if e.Date.String() != "2026-03-10" || !e.ExpectedIncome.IsZero() {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if store.Len() < services.MinProvisionWindow {
		t.Fatalf("expected the window to be provisioned, got %d rows", store.Len())
	}
}

func TestSaveDayJSONAndForm(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(srv, http.MethodPut, "/api/days/2026-03-10", `{"income":"120,50","expenditure":20,"notes":"rent"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	got := decode[saveDayResponse](t, rr)
	if got.Entry.ExpectedIncome.String() != "120.50" || got.Entry.ExpectedExpenditure.String() != "20.00" {
		t.Fatalf("unexpected entry: %+v", got.Entry)
	}
	if got.Entry.CustomNotes != "rent" {
		t.Fatalf("unexpected notes %q", got.Entry.CustomNotes)
	}
	if got.Summary.ExpectedHeldFundAfter.String() != "100.50" {
		t.Fatalf("unexpected summary: %+v", got.Summary)
	}

	// The next day carries the previous net as held funding.
	rr = do(srv, http.MethodPut, "/api/days/2026-03-11", "income=abc&expenditure=5")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	got = decode[saveDayResponse](t, rr)
	if !got.Entry.ExpectedIncome.IsZero() {
		t.Fatalf("unparseable income should be zero, got %s", got.Entry.ExpectedIncome)
	}
	if got.Summary.CurrentlyHeldFunding.String() != "100.50" || got.Summary.ExpectedHeldFundAfter.String() != "95.50" {
		t.Fatalf("unexpected summary: %+v", got.Summary)
	}

	// Notes are limited in characters, and amounts are kept at two places.
	notes := strings.Repeat("é", 2000)
	rr = do(srv, http.MethodPut, "/api/days/2026-03-12", `{"income":"0.005","notes":"`+notes+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	got = decode[saveDayResponse](t, rr)
	if got.Entry.CustomNotes != notes || !got.Entry.ExpectedIncome.Amount.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("unexpected entry: income=%s notes=%d runes", got.Entry.ExpectedIncome.Amount, len([]rune(got.Entry.CustomNotes)))
	}
}

func TestServiceLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{
		Component: log.ComponentHTTP,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	})
	srv, _ := newTestServer(t, WithLogger(logger))

	req := httptest.NewRequest(http.MethodPut, "/api/days/2026-03-10", strings.NewReader("income=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-ID", "trace-7")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Day saved") {
			if !strings.Contains(line, "request_id=trace-7") || !strings.Contains(line, "component=ledger") {
				t.Fatalf("service line lost the request scope: %s", line)
			}
			return
		}
	}
	t.Fatalf("no service line logged:\n%s", buf.String())
}

func TestSaveDayErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad date", http.MethodPut, "/api/days/2026-13-01", "income=1", http.StatusBadRequest},
		{"bad period", http.MethodPut, "/api/days/2026-03-10?period=year", "income=1", http.StatusBadRequest},
		{"notes too long", http.MethodPut, "/api/days/2026-03-10", "notes=" + strings.Repeat("x", 2001), http.StatusUnprocessableEntity},
		{"malformed json", http.MethodPut, "/api/days/2026-03-10", `{"income":`, http.StatusBadRequest},
		{"wrong method", http.MethodDelete, "/api/days/2026-03-10", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d (%s)", tt.want, rr.Code, rr.Body)
			}
		})
	}
}

func TestListDays(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(srv, http.MethodGet, "/api/days?from=2026-03-01&to=2026-03-07", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	body := decode[struct {
		Entries []core.LedgerEntry `json:"entries"`
	}](t, rr)
	if len(body.Entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(body.Entries))
	}

	for path, want := range map[string]int{
		"/api/days":                                  http.StatusBadRequest,
		"/api/days?from=nope":                        http.StatusBadRequest,
		"/api/days?from=2020-01-01&to=2026-01-01":    http.StatusBadRequest,
		"/api/days?from=2026-03-07&to=2026-03-01":    http.StatusOK,
		"/api/days?from=2026-03-07":                  http.StatusOK,
		"/api/days?from=2026-03-07&to=not-a-date-at": http.StatusBadRequest,
	} {
		if rr := do(srv, http.MethodGet, path, ""); rr.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, rr.Code)
		}
	}
}

func TestSummaryDefaultsAndPeriods(t *testing.T) {
	srv, _ := newTestServer(t)
	do(srv, http.MethodPut, "/api/days/2026-03-10", "income=10")
	do(srv, http.MethodPut, "/api/days/2026-03-14", "income=5")
	do(srv, http.MethodPut, "/api/days/2026-03-17", "income=1")

	rr := do(srv, http.MethodGet, "/api/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	sum := decode[core.BalanceSummary](t, rr)
	if sum.Anchor.String() != "2026-03-10" || sum.Period != core.PeriodDay {
		t.Fatalf("expected today/day defaults, got %s/%s", sum.Anchor, sum.Period)
	}
	if sum.NetExpectedIncome.String() != "10.00" {
		t.Fatalf("unexpected day income %s", sum.NetExpectedIncome)
	}

	rr = do(srv, http.MethodGet, "/api/summary?date=2026-03-10&period=WEEK", "")
	sum = decode[core.BalanceSummary](t, rr)
	if sum.NetExpectedIncome.String() != "16.00" || len(sum.Entries) != 8 {
		t.Fatalf("unexpected week summary: income=%s entries=%d", sum.NetExpectedIncome, len(sum.Entries))
	}

	if rr := do(srv, http.MethodGet, "/api/summary?period=fortnight", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCalendar(t *testing.T) {
	srv, _ := newTestServer(t)
	do(srv, http.MethodPut, "/api/days/2026-02-03", "expenditure=4")

	rr := do(srv, http.MethodGet, "/api/calendar?year=2026&month=2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	view := decode[core.MonthView](t, rr)
	if len(view.Days) != 28 {
		t.Fatalf("expected 28 days, got %d", len(view.Days))
	}
	if view.Days[2].Status != core.StatusDeficit {
		t.Fatalf("expected deficit on the 3rd, got %v", view.Days[2].Status)
	}

	if rr := do(srv, http.MethodGet, "/api/calendar", ""); rr.Code != http.StatusOK {
		t.Fatalf("default month status=%d", rr.Code)
	}
	if rr := do(srv, http.MethodGet, "/api/calendar?month=13", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSummaryAtDateBounds(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(srv, http.MethodGet, "/api/summary?date=9999-12-20&period=month", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	if sum := decode[core.BalanceSummary](t, rr); len(sum.Entries) != 12 {
		t.Fatalf("expected 9999-12-20..9999-12-31, got %d entries", len(sum.Entries))
	}

	rr = do(srv, http.MethodGet, "/api/summary?date=0001-01-01", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}

	for _, path := range []string{"/api/days/0000-12-31", "/api/summary?date=0000-06-01", "/api/calendar?year=10000"} {
		if rr := do(srv, http.MethodGet, path, ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rr.Code)
		}
	}
}

func TestViewFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	snap := decode[controller.Snapshot](t, do(srv, http.MethodGet, "/api/view", ""))
	if snap.Date.String() != "2026-03-10" || snap.Screen != controller.ScreenMain {
		t.Fatalf("unexpected initial view: %+v", snap)
	}

	rr := do(srv, http.MethodPost, "/api/view/date", "date=2026-03-12")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}

	rr = do(srv, http.MethodPost, "/api/view/save", `{"income":"7","expenditure":"2","notes":"tips"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body)
	}
	snap = decode[controller.Snapshot](t, rr)
	if snap.Summary == nil || snap.Summary.ExpectedHeldFundAfter.String() != "5.00" {
		t.Fatalf("unexpected summary after save: %+v", snap.Summary)
	}
	if snap.Date.String() != "2026-03-12" {
		t.Fatalf("save changed the selected date: %s", snap.Date)
	}

	rr = do(srv, http.MethodPost, "/api/view/period", "period=month")
	snap = decode[controller.Snapshot](t, rr)
	if snap.Period != core.PeriodMonth || len(snap.Summary.Entries) != 32 {
		t.Fatalf("unexpected month view: %+v", snap)
	}

	rr = do(srv, http.MethodPost, "/api/view/screen", "screen=calendar")
	snap = decode[controller.Snapshot](t, rr)
	if snap.Screen != controller.ScreenCalendar {
		t.Fatalf("expected calendar screen, got %s", snap.Screen)
	}

	for path, body := range map[string]string{
		"/api/view/date":   "date=yesterday",
		"/api/view/period": "period=year",
		"/api/view/screen": "screen=settings",
	} {
		if rr := do(srv, http.MethodPost, path, body); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rr.Code)
		}
	}
}

func TestWritesAreRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, WithRateLimit(2, time.Minute))

	for i := 0; i < 2; i++ {
		if rr := do(srv, http.MethodPost, "/api/view/period", "period=day"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d", i, rr.Code)
		}
	}
	rr := do(srv, http.MethodPost, "/api/view/period", "period=day")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}

	// Reads are not limited.
	if rr := do(srv, http.MethodGet, "/api/view", ""); rr.Code != http.StatusOK {
		t.Fatalf("read was limited: %d", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidDate, http.StatusBadRequest},
		{services.ErrRangeTooLarge, http.StatusBadRequest},
		{badRequest("x"), http.StatusBadRequest},
		{core.ErrNotesTooLong, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
