// Package score derives the 0–100 composite traceability score per product.
package score

import (
	"context"
	"fmt"

	"github.com/chainaware/trace-engine/internal/alert"
	"github.com/chainaware/trace-engine/internal/ledger"
	"github.com/chainaware/trace-engine/internal/registry"
)

// Scorer reads registry, ledger, and alert state to compute the score.
type Scorer struct {
	registry *registry.Registry
	ledger   *ledger.Ledger
	alerts   *alert.Center
}

// New creates a Scorer over the three stores.
func New(r *registry.Registry, l *ledger.Ledger, a *alert.Center) *Scorer {
	return &Scorer{registry: r, ledger: l, alerts: a}
}

// Compute returns the traceability score for the product, in [0, 100]:
// +20 for regulatory codes, +15 for specifications, +15 for sensor config,
// up to +30 for tracking density (2 per reading), and +20 weighted by the
// fraction of resolved alerts (flat +20 with no alerts at all).
func (s *Scorer) Compute(ctx context.Context, productID string) (float64, error) {
	product, err := s.registry.Get(productID)
	if err != nil {
		return 0, err
	}

	score := 0.0

	if len(product.RegulatoryCodes) > 0 {
		score += 20
	}
	if len(product.Specifications) > 0 {
		score += 15
	}
	if len(product.SensorsConfig) > 0 {
		score += 15
	}

	readings, err := s.ledger.Count(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	score += min(30, 2*float64(readings))

	alerts, err := s.alerts.ForProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("list alerts: %w", err)
	}
	if len(alerts) == 0 {
		score += 20
	} else {
		resolved := 0
		for _, a := range alerts {
			if a.Resolved() {
				resolved++
			}
		}
		score += 20 * float64(resolved) / float64(len(alerts))
	}

	return clamp(score, 0, 100), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
