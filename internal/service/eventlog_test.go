package service

import (
	"context"
	"testing"
	"time"

	"dualtherm"
)

// fakeEventRepo captures List arguments for assertion.
type fakeEventRepo struct {
	gotFrom time.Time
	gotTo   time.Time
	gotType string

	events []dualtherm.ThermostatEvent
	err    error
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]dualtherm.ThermostatEvent, error) {
	f.gotFrom = from
	f.gotTo = to
	f.gotType = typ
	return f.events, f.err
}

func (f *fakeEventRepo) Append(ctx context.Context, e dualtherm.ThermostatEvent) error {
	f.events = append(f.events, e)
	return nil
}

func TestEventLog_List_NormalizesFilter(t *testing.T) {
	repo := &fakeEventRepo{events: []dualtherm.ThermostatEvent{{EventID: "1"}}}
	svc := NewEventLogService(repo)

	loc := time.FixedZone("UTC+5", 5*3600)
	from := time.Date(2026, 8, 1, 10, 0, 0, 0, loc)
	to := time.Date(2026, 8, 2, 10, 0, 0, 0, loc)

	got, err := svc.List(context.Background(), LogFilter{From: from, To: to, Type: " mode_change "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 event, got %d", len(got))
	}
	if repo.gotFrom.Location() != time.UTC || repo.gotTo.Location() != time.UTC {
		t.Fatalf("times not normalized to UTC: %v, %v", repo.gotFrom, repo.gotTo)
	}
	if repo.gotType != "MODE_CHANGE" {
		t.Fatalf("type = %q, want MODE_CHANGE", repo.gotType)
	}
}

func TestEventLog_List_RejectsInvertedRange(t *testing.T) {
	svc := NewEventLogService(&fakeEventRepo{})

	from := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.List(context.Background(), LogFilter{From: from, To: to}); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}

func TestEventLog_List_ZeroBoundsPassThrough(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := NewEventLogService(repo)

	if _, err := svc.List(context.Background(), LogFilter{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if !repo.gotFrom.IsZero() || !repo.gotTo.IsZero() || repo.gotType != "" {
		t.Fatalf("zero filter should pass through unchanged: %v %v %q", repo.gotFrom, repo.gotTo, repo.gotType)
	}
}
