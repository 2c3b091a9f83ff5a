package http

import (
	"net/url"
	"testing"
	"time"
)

func TestBoundPayloadToBound(t *testing.T) {
	tests := []struct {
		name           string
		payload        *boundPayload
		wantIndefinite bool
		wantDate       string
		wantErr        bool
	}{
		{"nil payload", nil, true, "", false},
		{"empty", &boundPayload{}, true, "", false},
		{"indefinite flag", &boundPayload{IsIndefinite: true}, true, "", false},
		{"date", &boundPayload{Date: "2024-03-15"}, false, "2024-03-15", false},
		// A concrete date always wins over a stale indefinite flag.
		{"date with indefinite flag", &boundPayload{Date: "2024-03-15", IsIndefinite: true}, false, "2024-03-15", false},
		{"garbage date", &boundPayload{Date: "15/03/2024"}, false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.payload.toBound()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("toBound() error = %v", err)
			}
			if b.Indefinite() != tt.wantIndefinite {
				t.Errorf("Indefinite() = %v, want %v", b.Indefinite(), tt.wantIndefinite)
			}
			if !tt.wantIndefinite {
				if got := b.Date().Format(dateLayout); got != tt.wantDate {
					t.Errorf("Date() = %s, want %s", got, tt.wantDate)
				}
			}
		})
	}
}

func TestRecordPayloadImpliesFlow(t *testing.T) {
	p := &recordPayload{
		Kind:        "debt",
		Amount:      "100",
		Description: "rata",
		AccountID:   "main",
	}
	r, err := p.toRecord()
	if err != nil {
		t.Fatalf("toRecord() error = %v", err)
	}
	if string(r.Flow) != "expense" {
		t.Errorf("flow = %s, want expense implied by debt", r.Flow)
	}
}

func TestRecordPayloadSanitizes(t *testing.T) {
	p := &recordPayload{
		Kind:        "transaction",
		Flow:        "expense",
		Amount:      "10",
		Description: "  caffe\x00 al bar  ",
		AccountID:   "main",
	}
	r, err := p.toRecord()
	if err != nil {
		t.Fatalf("toRecord() error = %v", err)
	}
	if r.Description != "caffe al bar" {
		t.Errorf("description = %q", r.Description)
	}
}

func TestParseTargetMonth(t *testing.T) {
	got, err := parseTargetMonth(url.Values{"year": {"2024"}, "month": {"3"}})
	if err != nil {
		t.Fatalf("parseTargetMonth() error = %v", err)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseTargetMonth() = %v, want %v", got, want)
	}

	if _, err := parseTargetMonth(url.Values{"month": {"0"}}); err == nil {
		t.Error("month 0 should be rejected")
	}
	if _, err := parseTargetMonth(url.Values{"year": {"duemila"}}); err == nil {
		t.Error("non-numeric year should be rejected")
	}

	// Defaults to the current month.
	got, err = parseTargetMonth(url.Values{})
	if err != nil {
		t.Fatalf("parseTargetMonth() error = %v", err)
	}
	now := time.Now().UTC()
	if got.Year() != now.Year() || got.Month() != now.Month() {
		t.Errorf("default = %v, want current month", got)
	}
}

func TestParsePolicy(t *testing.T) {
	p := parsePolicy(url.Values{})
	if p.UseProbabilistic || !p.IncludeCommitments {
		t.Errorf("default policy = %+v", p)
	}

	p = parsePolicy(url.Values{"probabilistic": {"true"}, "commitments": {"false"}})
	if !p.UseProbabilistic || p.IncludeCommitments {
		t.Errorf("parsed policy = %+v", p)
	}

	// Malformed values keep the defaults.
	p = parsePolicy(url.Values{"probabilistic": {"si"}})
	if p.UseProbabilistic {
		t.Errorf("malformed toggle should keep default, got %+v", p)
	}
}
