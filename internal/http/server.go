// Package http exposes the ledger and the view controller as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"daybook/internal/controller"
	"daybook/internal/core"
	"daybook/internal/log"
)

// Ledger is the part of the ledger service the API serves.
type Ledger interface {
	Day(ctx context.Context, date core.Date) (core.LedgerEntry, error)
	Range(ctx context.Context, from, to core.Date) ([]core.LedgerEntry, error)
	SaveDay(ctx context.Context, date core.Date, edit core.DayEdit) (core.LedgerEntry, error)
	Summary(ctx context.Context, anchor core.Date, period core.TimePeriod) (core.BalanceSummary, error)
	Month(ctx context.Context, year, month int) (core.MonthView, error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger Ledger
	view   *controller.Controller
	pinger Pinger
	now    func() time.Time

	logger      *log.Logger
	requests    *log.StructuredLogger
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	started     time.Time

	rateLimit    int
	rateWindow   time.Duration
	shutdownOnce sync.Once
}

type Option func(*Server)

// WithPinger enables the storage check in /readyz.
func WithPinger(p Pinger) Option {
	return func(s *Server) { s.pinger = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the clock used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithRateLimit sets how many writes a client may make per window.
func WithRateLimit(limit int, window time.Duration) Option {
	return func(s *Server) {
		s.rateLimit = limit
		s.rateWindow = window
	}
}

// NewServer wires the routes and returns a server ready to ListenAndServe.
func NewServer(addr string, ledger Ledger, view *controller.Controller, opts ...Option) *Server {
	s := &Server{
		ledger:  ledger,
		view:    view,
		now:     time.Now,
		metrics: &securityMetrics{},
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.Config{Component: log.ComponentHTTP})
	}
	s.requests = log.NewStructuredLogger(s.logger)
	s.rateLimiter = newRateLimiter(s.rateLimit, s.rateWindow)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/days", s.handleListDays)
	mux.HandleFunc("GET /api/days/{date}", s.handleGetDay)
	mux.HandleFunc("PUT /api/days/{date}", s.handleSaveDay)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)

	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("POST /api/view/date", s.handleViewDate)
	mux.HandleFunc("POST /api/view/period", s.handleViewPeriod)
	mux.HandleFunc("POST /api/view/screen", s.handleViewScreen)
	mux.HandleFunc("POST /api/view/save", s.handleViewSave)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withMiddleware tags the request with an ID and a logger, rate limits
// writes, sets security headers and logs completion.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	h := s.withSecurity(next)
	h = log.RequestIDMiddleware(func(r *http.Request) string { return requestIDFrom(r.Context()) })(h)
	h = log.Middleware(s.logger)(h)
	return withRequestID(h)
}

// withRequestID honours a caller's X-Request-ID or generates one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 64 {
			requestID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID)))
	})
}

func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		reqLogger := log.FromContext(ctx)
		clientIP := extractClientIP(r)

		setSecurityHeaders(w.Header())

		if detectSuspiciousRequest(r, s.metrics) {
			reqLogger.WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			writeJSON(rw, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded", RequestID: requestIDFrom(ctx)})
		} else {
			next.ServeHTTP(rw, r)
		}

		s.requests.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func isWrite(method string) bool {
	return method == http.MethodPost || method == http.MethodPut
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
