package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"daybook/internal/core"
)

// errBadRequest marks input errors detected by the handlers themselves.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// parseYearMonth reads year and month from query, defaulting to now.
// Unlike a form default, a value that is present but malformed is an error.
func parseYearMonth(query url.Values, now time.Time) (year, month int, err error) {
	year, month = now.Year(), int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if year, err = strconv.Atoi(v); err != nil || year < core.MinDate.Year() || year > core.MaxDate.Year() {
			return 0, 0, badRequest("invalid year %q", v)
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if month, err = strconv.Atoi(v); err != nil || month < 1 || month > 12 {
			return 0, 0, badRequest("invalid month %q", v)
		}
	}
	return year, month, nil
}

// parseDateOr parses s as YYYY-MM-DD, returning fallback when s is blank.
func parseDateOr(s string, fallback core.Date) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return core.ParseDate(s)
}

// parsePeriodOr parses s as a time period, returning fallback when s is blank.
func parsePeriodOr(s string, fallback core.TimePeriod) (core.TimePeriod, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	p, err := core.ParseTimePeriod(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return p, nil
}

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}
