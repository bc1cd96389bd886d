// Package external declares the boundary collaborators the tracking core
// consumes. Implementations wrap real provider APIs; the core only depends
// on these interfaces and bounds every call with a timeout.
package external

import (
	"context"

	"github.com/chainaware/trace-engine/internal/model"
)

// WeatherProvider fetches current weather along a route.
type WeatherProvider interface {
	FetchWeather(ctx context.Context, from model.Reading, to model.Destination) (model.WeatherSnapshot, error)
}

// TrafficProvider fetches current traffic conditions along a route.
type TrafficProvider interface {
	FetchTraffic(ctx context.Context, from model.Reading, to model.Destination) (model.TrafficSnapshot, error)
}

// RegulatoryVerifier checks a regulatory code against an external database.
type RegulatoryVerifier interface {
	VerifyRegulatoryCode(ctx context.Context, code, category string) (bool, error)
}

// FraudScorer scores a document's fraud risk in [0, 1].
type FraudScorer interface {
	ScoreFraudRisk(ctx context.Context, document map[string]any) (float64, error)
}

// HistoricalAnalyzer yields risk-factor tags derived from a product's
// historical movement patterns.
type HistoricalAnalyzer interface {
	AnalyzeHistoricalPatterns(ctx context.Context, productID string) ([]string, error)
}

// Capabilities bundles all external collaborators for wiring.
type Capabilities struct {
	Weather    WeatherProvider
	Traffic    TrafficProvider
	Regulatory RegulatoryVerifier
	Fraud      FraudScorer
	Historical HistoricalAnalyzer
}

// WithDefaults fills nil capabilities with the static fallbacks so callers
// never have to nil-check.
func (c Capabilities) WithDefaults() Capabilities {
	if c.Weather == nil {
		c.Weather = StaticWeather{}
	}
	if c.Traffic == nil {
		c.Traffic = StaticTraffic{}
	}
	if c.Regulatory == nil {
		c.Regulatory = AcceptAllRegulatory{}
	}
	if c.Fraud == nil {
		c.Fraud = ZeroFraud{}
	}
	if c.Historical == nil {
		c.Historical = NoHistory{}
	}
	return c
}
