package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finanze/internal/core"
)

const dateLayout = "2006-01-02"

var (
	errBodyTooLarge = errors.New("request body too large")
	// errEmptyBody flags an absent body; handlers with all-optional fields
	// treat it as an empty payload.
	errEmptyBody = errors.New("empty request body")
)

const maxBodySize = 1 << 20 // 1 MiB

// boundPayload is the wire shape of a date bound. It carries both an
// indefinite flag and a date; toBound collapses the redundancy, the date
// always winning over the flag.
type boundPayload struct {
	Date         string `json:"date,omitempty"`
	IsMonthOnly  bool   `json:"isMonthOnly,omitempty"`
	IsIndefinite bool   `json:"isIndefinite,omitempty"`
}

func (p *boundPayload) toBound() (core.Bound, error) {
	if p == nil || strings.TrimSpace(p.Date) == "" {
		return core.IndefiniteBound(), nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(p.Date))
	if err != nil {
		return core.Bound{}, fmt.Errorf("invalid date %q: expected %s", p.Date, dateLayout)
	}
	return core.BoundAt(t, p.IsMonthOnly), nil
}

// recordPayload is the wire shape of a record for create and update.
type recordPayload struct {
	Kind        string        `json:"kind"`
	Flow        string        `json:"flow,omitempty"`
	Amount      string        `json:"amount"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	AccountID   string        `json:"accountId"`
	IsRecurring bool          `json:"isRecurring,omitempty"`
	Start       *boundPayload `json:"start,omitempty"`
	End         *boundPayload `json:"end,omitempty"`
	Execution   *boundPayload `json:"execution,omitempty"`
	Probability int           `json:"probability,omitempty"`
}

func (p *recordPayload) toRecord() (core.Record, error) {
	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		return core.Record{}, fmt.Errorf("amount: %w", err)
	}

	kind := core.Kind(strings.TrimSpace(p.Kind))
	flow := core.Flow(strings.TrimSpace(p.Flow))
	// Non-plain kinds imply their flow; accept an omitted one.
	if flow == "" {
		flow = core.FlowFor(kind)
	}

	start, err := (p.Start).toBound()
	if err != nil {
		return core.Record{}, fmt.Errorf("start: %w", err)
	}
	end, err := (p.End).toBound()
	if err != nil {
		return core.Record{}, fmt.Errorf("end: %w", err)
	}
	execution, err := (p.Execution).toBound()
	if err != nil {
		return core.Record{}, fmt.Errorf("execution: %w", err)
	}

	r := core.Record{
		Kind:        kind,
		Flow:        flow,
		Amount:      amount,
		Description: sanitizeInput(p.Description),
		Category:    sanitizeInput(p.Category),
		AccountID:   strings.TrimSpace(p.AccountID),
		Recurrence: core.Recurrence{
			Recurring: p.IsRecurring,
			Start:     start,
			End:       end,
		},
		Execution:   execution,
		Probability: core.Probability(p.Probability),
	}
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

// decodeJSON reads and decodes a JSON request body into dst, rejecting
// unknown fields and oversized bodies.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parseTargetMonth extracts year and month query parameters, defaulting to
// the current month. The returned time is the first day of the month, UTC.
func parseTargetMonth(query url.Values) (time.Time, error) {
	now := time.Now().UTC()
	year := now.Year()
	month := int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return time.Time{}, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// parsePolicy reads the aggregation policy toggles from query parameters.
// Defaults: deterministic credits, commitments included.
func parsePolicy(query url.Values) core.Policy {
	policy := core.DefaultPolicy()
	if v := strings.TrimSpace(query.Get("probabilistic")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			policy.UseProbabilistic = b
		}
	}
	if v := strings.TrimSpace(query.Get("commitments")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			policy.IncludeCommitments = b
		}
	}
	return policy
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
