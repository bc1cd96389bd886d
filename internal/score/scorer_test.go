package score

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/chainaware/trace-engine/internal/alert"
	"github.com/chainaware/trace-engine/internal/errs"
	"github.com/chainaware/trace-engine/internal/ledger"
	"github.com/chainaware/trace-engine/internal/model"
	"github.com/chainaware/trace-engine/internal/registry"
	"github.com/chainaware/trace-engine/internal/risk"
)

type fixture struct {
	registry *registry.Registry
	ledger   *ledger.Ledger
	alerts   *alert.Center
	scorer   *Scorer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := registry.New()
	led := ledger.New(ledger.NewMemoryStore(0), reg)
	alerts := alert.New(alert.NewMemoryStore())
	return &fixture{
		registry: reg,
		ledger:   led,
		alerts:   alerts,
		scorer:   New(reg, led, alerts),
	}
}

func (fx *fixture) register(t *testing.T, in registry.Input) string {
	t.Helper()
	id, err := fx.registry.Register(in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return id
}

func (fx *fixture) appendReadings(t *testing.T, id string, n int) {
	t.Helper()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		r := model.Reading{Latitude: 1, Longitude: 2, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := fx.ledger.Append(context.Background(), id, r); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func (fx *fixture) raise(t *testing.T, id string) model.Alert {
	t.Helper()
	a, err := fx.alerts.MaybeRaise(context.Background(), id, model.Reading{Timestamp: time.Now()}, model.RiskAssessment{
		Level:   model.RiskHigh,
		Factors: []string{risk.FactorTemperatureExtreme},
	})
	if err != nil {
		t.Fatalf("raise: %v", err)
	}
	return *a
}

func bareInput(batch string) registry.Input {
	return registry.Input{
		Name:           "Widget",
		Category:       "electronics",
		Origin:         "Taiwan",
		Manufacturer:   "Acme",
		ProductionDate: "2026-01-01",
		BatchNumber:    batch,
	}
}

func TestCompute_BareProductNoAlerts(t *testing.T) {
	fx := newFixture(t)
	id := fx.register(t, bareInput("B1"))
	fx.appendReadings(t, id, 1)

	// 0 + 0 + 0 + 2 (one reading) + 20 (no alerts) = 22
	got, err := fx.scorer.Compute(context.Background(), id)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(got-22) > 1e-9 {
		t.Errorf("score = %.2f, want 22", got)
	}
}

func TestCompute_FullMetadata(t *testing.T) {
	fx := newFixture(t)
	in := bareInput("B2")
	in.RegulatoryCodes = []string{"FDA-123"}
	in.Specifications = map[string]any{"weight_g": 250}
	in.SensorsConfig = map[string]any{"temperature": true}
	id := fx.register(t, in)
	fx.appendReadings(t, id, 20)

	// 20 + 15 + 15 + 30 (tracking capped) + 20 (no alerts) = 100
	got, err := fx.scorer.Compute(context.Background(), id)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("score = %.2f, want 100", got)
	}
}

func TestCompute_AlertResolutionWeighting(t *testing.T) {
	fx := newFixture(t)
	id := fx.register(t, bareInput("B3"))

	first := fx.raise(t, id)
	fx.raise(t, id)

	// One of two alerts resolved: 0+0+0+0 + 20*(1/2) = 10
	if err := fx.alerts.Resolve(context.Background(), first.ID, "fixed"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, err := fx.scorer.Compute(context.Background(), id)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("score = %.2f, want 10", got)
	}
}

func TestCompute_Bounds(t *testing.T) {
	fx := newFixture(t)
	in := bareInput("B4")
	in.RegulatoryCodes = []string{"A-1", "B-2"}
	in.Specifications = map[string]any{"x": 1}
	in.SensorsConfig = map[string]any{"y": 2}
	id := fx.register(t, in)
	fx.appendReadings(t, id, 100)

	for i := 0; i < 5; i++ {
		fx.raise(t, id)
	}

	got, err := fx.scorer.Compute(context.Background(), id)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got < 0 || got > 100 {
		t.Errorf("score %.2f out of [0,100]", got)
	}
}

func TestCompute_UnknownProduct(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.scorer.Compute(context.Background(), "missing")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompute_TrackingDensity(t *testing.T) {
	for _, n := range []int{0, 1, 5, 15, 16, 40} {
		t.Run(fmt.Sprintf("%d readings", n), func(t *testing.T) {
			fx := newFixture(t)
			id := fx.register(t, bareInput("B5"))
			fx.appendReadings(t, id, n)

			want := math.Min(30, 2*float64(n)) + 20 // density + no-alert bonus
			got, err := fx.scorer.Compute(context.Background(), id)
			if err != nil {
				t.Fatalf("compute: %v", err)
			}
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("score = %.2f, want %.2f", got, want)
			}
		})
	}
}
