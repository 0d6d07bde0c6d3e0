package usage

import (
	"errors"
	"time"
)

// ErrInvalidMonth is returned when a month is not in YYYY-MM form.
var ErrInvalidMonth = errors.New("usage: month must be YYYY-MM")

// OutcomeOK marks a successful attempt. Failed attempts carry the error kind.
const OutcomeOK = "ok"

// Event is one generation attempt.
type Event struct {
	Model   string
	Stage   string
	Outcome string
	Latency time.Duration
	At      time.Time
}

// ModelUsage aggregates attempts of one model within a month.
type ModelUsage struct {
	Model    string `json:"model"`
	Attempts int64  `json:"attempts"`
	Failures int64  `json:"failures"`
}

// MonthlyUsage is the GET /usage payload.
type MonthlyUsage struct {
	Month  string       `json:"month"`
	Models []ModelUsage `json:"models"`
}
