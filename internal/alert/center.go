// Package alert owns the alert list: raise policy, acknowledgement, and
// resolution.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chainaware/trace-engine/internal/errs"
	"github.com/chainaware/trace-engine/internal/model"
	"github.com/chainaware/trace-engine/internal/risk"
)

// Store is the persistence contract for alerts. Implementations:
// MemoryStore (default) and storage.AlertStore (Postgres).
type Store interface {
	Insert(ctx context.Context, a model.Alert) error
	Get(ctx context.Context, id string) (model.Alert, bool, error)
	Update(ctx context.Context, a model.Alert) error
	ListByProduct(ctx context.Context, productID string) ([]model.Alert, error)
	List(ctx context.Context) ([]model.Alert, error)
}

// typeForFactor maps a risk-factor tag to the alert type it implies.
// Unrecognized factors fall back to quality_risk.
var typeForFactor = map[string]model.AlertType{
	risk.FactorTemperatureExtreme: model.AlertTemperatureDeviation,
	risk.FactorHumidityExtreme:    model.AlertQualityRisk,
	risk.FactorExcessiveShock:     model.AlertQualityRisk,
	risk.FactorSevereWeather:      model.AlertDelayPrediction,
	risk.FactorHeavyTraffic:       model.AlertDelayPrediction,
}

// Center decides when an assessment becomes an alert and manages the
// alert lifecycle.
type Center struct {
	store Store
	now   func() time.Time
}

// New creates a Center over the given store.
func New(store Store) *Center {
	return &Center{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// MaybeRaise creates and stores an alert iff the assessment is high or
// critical. Returns nil with no error for lower levels.
func (c *Center) MaybeRaise(ctx context.Context, productID string, reading model.Reading, a model.RiskAssessment) (*model.Alert, error) {
	if a.Level != model.RiskHigh && a.Level != model.RiskCritical {
		return nil, nil
	}

	alertType := model.AlertQualityRisk
	if len(a.Factors) > 0 {
		if t, ok := typeForFactor[a.Factors[0]]; ok {
			alertType = t
		}
	}

	alrt := model.Alert{
		ID:        uuid.NewString()[:8],
		ProductID: productID,
		Type:      alertType,
		Level:     a.Level,
		Message:   fmt.Sprintf("Risk detected for %s: %s", productID, a.Recommendation),
		Reading:   reading,
		Timestamp: c.now(),
	}

	if err := c.store.Insert(ctx, alrt); err != nil {
		return nil, fmt.Errorf("store alert for %s: %w", productID, err)
	}
	return &alrt, nil
}

// Acknowledge marks the alert as seen by an operator.
func (c *Center) Acknowledge(ctx context.Context, alertID string) error {
	a, ok, err := c.store.Get(ctx, alertID)
	if err != nil {
		return fmt.Errorf("load alert %s: %w", alertID, err)
	}
	if !ok {
		return fmt.Errorf("alert %s: %w", alertID, errs.ErrNotFound)
	}
	a.Acknowledged = true
	if err := c.store.Update(ctx, a); err != nil {
		return fmt.Errorf("update alert %s: %w", alertID, err)
	}
	return nil
}

// Resolve records the resolution text and acknowledges the alert.
func (c *Center) Resolve(ctx context.Context, alertID, resolution string) error {
	a, ok, err := c.store.Get(ctx, alertID)
	if err != nil {
		return fmt.Errorf("load alert %s: %w", alertID, err)
	}
	if !ok {
		return fmt.Errorf("alert %s: %w", alertID, errs.ErrNotFound)
	}
	a.Acknowledged = true
	a.Resolution = resolution
	if err := c.store.Update(ctx, a); err != nil {
		return fmt.Errorf("update alert %s: %w", alertID, err)
	}
	return nil
}

// ForProduct returns the product's alerts in raise order.
func (c *Center) ForProduct(ctx context.Context, productID string) ([]model.Alert, error) {
	return c.store.ListByProduct(ctx, productID)
}

// All returns every alert in raise order.
func (c *Center) All(ctx context.Context) ([]model.Alert, error) {
	return c.store.List(ctx)
}
