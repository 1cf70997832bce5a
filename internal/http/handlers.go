package http

import (
	"context"
	"net/http"
	"time"

	"daybook/internal/controller"
	"daybook/internal/core"
	"daybook/internal/log"
)

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the store when it can be pinged.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.activeClients(),
		},
		"security": s.metrics.snapshot(),
	}

	if s.pinger == nil {
		checks["storage"] = "not_checked"
	} else if err := s.pinger.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		checks["storage"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleGetDay returns one provisioned day.
func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	date, err := core.ParseDate(r.PathValue("date"))
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	e, err := s.ledger.Day(r.Context(), date)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleListDays returns every day in [from, to]. to defaults to from.
func (s *Server) handleListDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" {
		s.writeError(w, r, log.OpRead, badRequest("from is required"))
		return
	}
	from, err := core.ParseDate(q.Get("from"))
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	to, err := parseDateOr(q.Get("to"), from)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	entries, err := s.ledger.Range(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":    from,
		"to":      to,
		"entries": entries,
	})
}

type saveDayResponse struct {
	Entry   core.LedgerEntry    `json:"entry"`
	Summary core.BalanceSummary `json:"summary"`
}

// handleSaveDay writes the editable fields of a day and returns the entry
// with a fresh summary anchored on it. Unparseable amounts are saved as zero.
func (s *Server) handleSaveDay(w http.ResponseWriter, r *http.Request) {
	date, err := core.ParseDate(r.PathValue("date"))
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	period, err := parsePeriodOr(r.URL.Query().Get("period"), core.PeriodDay)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}

	e, err := s.ledger.SaveDay(r.Context(), date, p.DayEdit())
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	s.requests.LogDaySaved(r.Context(), e.Date.String(), e.ExpectedIncome.String(), e.ExpectedExpenditure.String())

	sum, err := s.ledger.Summary(r.Context(), date, period)
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	writeJSON(w, http.StatusOK, saveDayResponse{Entry: e, Summary: sum})
}

// handleSummary computes the overview for date (default today) and period
// (default day).
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	anchor, err := parseDateOr(q.Get("date"), s.today())
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	period, err := parsePeriodOr(q.Get("period"), core.PeriodDay)
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	sum, err := s.ledger.Summary(r.Context(), anchor, period)
	if err != nil {
		s.writeError(w, r, log.OpSummarize, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r.URL.Query(), s.now())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	view, err := s.ledger.Month(r.Context(), year, month)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view.Snapshot())
}

func (s *Server) handleViewDate(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, log.OpNavigate, err)
		return
	}
	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		s.writeError(w, r, log.OpNavigate, err)
		return
	}
	s.respondView(w, r, log.OpNavigate)(s.view.SelectDate(r.Context(), date))
}

func (s *Server) handleViewPeriod(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, log.OpNavigate, err)
		return
	}
	period, err := core.ParseTimePeriod(p.Get("period"))
	if err != nil {
		s.writeError(w, r, log.OpNavigate, badRequest("%v", err))
		return
	}
	s.respondView(w, r, log.OpNavigate)(s.view.SelectPeriod(r.Context(), period))
}

func (s *Server) handleViewScreen(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, log.OpNavigate, err)
		return
	}
	screen, err := controller.ParseScreen(p.Get("screen"))
	if err != nil {
		s.writeError(w, r, log.OpNavigate, badRequest("%v", err))
		return
	}
	s.respondView(w, r, log.OpNavigate)(s.view.NavigateTo(screen))
}

// handleViewSave saves the selected day from the entry form fields.
func (s *Server) handleViewSave(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	s.respondView(w, r, log.OpUpdate)(s.view.Save(r.Context(), p.Get("income"), p.Get("expenditure"), p.Get("notes")))
}

func (s *Server) respondView(w http.ResponseWriter, r *http.Request, op string) func(controller.Snapshot, error) {
	return func(snap controller.Snapshot, err error) {
		if err != nil {
			s.writeError(w, r, op, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
