package risk

import (
	"time"

	"github.com/chainaware/trace-engine/internal/model"
)

const (
	recommendRouteHigh   = "Consider alternative routes or delivery methods"
	recommendRouteMedium = "Monitor conditions closely and prepare contingency plans"
	recommendRouteLow    = "Standard delivery route appears safe"
)

// PredictDeliveryRisk scores forward-looking route risk from external
// snapshots and historical factors. It is a separate policy from
// AssessReading with intentionally different thresholds: confidence starts
// at 0.80; three factors or confidence below 0.4 is high, one factor or
// confidence below 0.6 is medium.
func PredictDeliveryRisk(
	weather model.WeatherSnapshot,
	traffic model.TrafficSnapshot,
	historicalFactors []string,
	now time.Time,
) model.RiskAssessment {
	var factors []string
	confidence := 0.80

	if weather.SevereWeather {
		factors = append(factors, FactorSevereWeather)
		confidence -= 0.20
	}
	if weather.TemperatureExtreme {
		factors = append(factors, FactorTemperatureExtreme)
	}
	if traffic.CongestionLevel > 0.7 {
		factors = append(factors, FactorHeavyTraffic)
		confidence -= 0.15
	}
	factors = append(factors, historicalFactors...)

	confidence = clamp01(confidence)

	var level model.RiskLevel
	var recommendation string
	switch {
	case len(factors) >= 3 || confidence < 0.4:
		level, recommendation = model.RiskHigh, recommendRouteHigh
	case len(factors) >= 1 || confidence < 0.6:
		level, recommendation = model.RiskMedium, recommendRouteMedium
	default:
		level, recommendation = model.RiskLow, recommendRouteLow
	}

	return model.RiskAssessment{
		Level:          level,
		Factors:        factors,
		Confidence:     confidence,
		Recommendation: recommendation,
		PredictedAt:    now,
	}
}
