package external

import (
	"context"

	"github.com/chainaware/trace-engine/internal/model"
)

// Static fallback implementations used when no real provider is configured.
// They report benign conditions so risk scoring degrades conservatively
// instead of failing.

// StaticWeather reports calm weather.
type StaticWeather struct{}

func (StaticWeather) FetchWeather(_ context.Context, _ model.Reading, _ model.Destination) (model.WeatherSnapshot, error) {
	return model.WeatherSnapshot{Temperature: 20, Humidity: 50}, nil
}

// StaticTraffic reports free-flowing traffic.
type StaticTraffic struct{}

func (StaticTraffic) FetchTraffic(_ context.Context, _ model.Reading, _ model.Destination) (model.TrafficSnapshot, error) {
	return model.TrafficSnapshot{}, nil
}

// AcceptAllRegulatory accepts every well-formed code. Format validation
// happens in the registry; this capability only covers database lookups.
type AcceptAllRegulatory struct{}

func (AcceptAllRegulatory) VerifyRegulatoryCode(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

// ZeroFraud scores every document as no-risk.
type ZeroFraud struct{}

func (ZeroFraud) ScoreFraudRisk(_ context.Context, _ map[string]any) (float64, error) {
	return 0, nil
}

// NoHistory yields no historical risk factors.
type NoHistory struct{}

func (NoHistory) AnalyzeHistoricalPatterns(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}
