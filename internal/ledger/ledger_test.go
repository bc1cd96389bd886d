package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chainaware/trace-engine/internal/errs"
	"github.com/chainaware/trace-engine/internal/model"
)

type staticLookup map[string]bool

func (s staticLookup) Has(id string) bool { return s[id] }

func at(minute int) model.Reading {
	return model.Reading{
		Latitude:  48.85,
		Longitude: 2.35,
		Timestamp: time.Date(2026, 3, 1, 10, minute, 0, 0, time.UTC),
	}
}

func newTestLedger(t *testing.T, maxPerProduct int) *Ledger {
	t.Helper()
	return New(NewMemoryStore(maxPerProduct), staticLookup{"prod-1": true})
}

func TestAppendAndHistory(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, 0)

	for _, m := range []int{0, 5, 10} {
		if err := l.Append(ctx, "prod-1", at(m)); err != nil {
			t.Fatalf("append minute %d: %v", m, err)
		}
	}

	history, err := l.History(ctx, "prod-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("history out of order at %d", i)
		}
	}

	latest, ok, err := l.Latest(ctx, "prod-1")
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if !latest.Timestamp.Equal(at(10).Timestamp) {
		t.Errorf("latest = %v, want the minute-10 reading", latest.Timestamp)
	}
}

func TestAppend_UnknownProduct(t *testing.T) {
	l := newTestLedger(t, 0)
	err := l.Append(context.Background(), "nope", at(0))
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAppend_RejectsBackwardsTimestamp(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, 0)

	if err := l.Append(ctx, "prod-1", at(10)); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := l.Append(ctx, "prod-1", at(5))
	if _, ok := errs.AsValidation(err); !ok {
		t.Errorf("expected ValidationError for backwards timestamp, got %v", err)
	}

	// Equal timestamps are allowed (non-decreasing, not strictly increasing).
	if err := l.Append(ctx, "prod-1", at(10)); err != nil {
		t.Errorf("equal timestamp rejected: %v", err)
	}
}

func TestAppend_MissingTimestamp(t *testing.T) {
	l := newTestLedger(t, 0)
	err := l.Append(context.Background(), "prod-1", model.Reading{Latitude: 1, Longitude: 2})
	if _, ok := errs.AsValidation(err); !ok {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestLatest_EmptyHistory(t *testing.T) {
	l := newTestLedger(t, 0)
	_, ok, err := l.Latest(context.Background(), "prod-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if ok {
		t.Error("expected no latest reading for empty history")
	}
}

func TestRetentionCap(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, 3)

	for m := 0; m < 10; m++ {
		if err := l.Append(ctx, "prod-1", at(m)); err != nil {
			t.Fatalf("append minute %d: %v", m, err)
		}
	}

	history, err := l.History(ctx, "prod-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("retained %d readings, want 3", len(history))
	}
	if !history[0].Timestamp.Equal(at(7).Timestamp) {
		t.Errorf("oldest retained should be minute 7, got %v", history[0].Timestamp)
	}

	n, err := l.Count(ctx, "prod-1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
