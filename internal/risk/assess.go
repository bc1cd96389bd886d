package risk

import (
	"time"

	"github.com/chainaware/trace-engine/internal/model"
)

// Risk-factor tags produced by the scorers.
const (
	FactorTemperatureExtreme = "temperature_extreme"
	FactorHumidityExtreme    = "humidity_extreme"
	FactorExcessiveShock     = "excessive_shock"
	FactorSevereWeather      = "severe_weather"
	FactorHeavyTraffic       = "heavy_traffic"
	FactorDataUnavailable    = "external_data_unavailable"
)

const (
	recommendHigh   = "Immediate attention required - conditions may affect product quality"
	recommendMedium = "Monitor conditions closely"
	recommendLow    = "Conditions are within acceptable range"
)

// AssessReading scores a single reading against the policy, independent of
// history. Confidence starts at 0.90, drops per violated threshold, and is
// clamped to [0, 1]. Level: two factors or confidence below 0.6 is high;
// one factor or confidence below 0.8 is medium; otherwise low.
func (e *Engine) AssessReading(r model.Reading, now time.Time) model.RiskAssessment {
	p := e.Policy()

	var factors []string
	confidence := 0.90

	if r.Temperature != nil && (*r.Temperature < p.TemperatureMin || *r.Temperature > p.TemperatureMax) {
		factors = append(factors, FactorTemperatureExtreme)
		confidence -= 0.20
	}
	if r.Humidity != nil && (*r.Humidity < p.HumidityMin || *r.Humidity > p.HumidityMax) {
		factors = append(factors, FactorHumidityExtreme)
		confidence -= 0.15
	}
	if r.ShockLevel != nil && *r.ShockLevel > p.ShockMax {
		factors = append(factors, FactorExcessiveShock)
		confidence -= 0.25
	}

	confidence = clamp01(confidence)

	var level model.RiskLevel
	var recommendation string
	switch {
	case len(factors) >= 2 || confidence < 0.6:
		level, recommendation = model.RiskHigh, recommendHigh
	case len(factors) >= 1 || confidence < 0.8:
		level, recommendation = model.RiskMedium, recommendMedium
	default:
		level, recommendation = model.RiskLow, recommendLow
	}

	return model.RiskAssessment{
		Level:          level,
		Factors:        factors,
		Confidence:     confidence,
		Recommendation: recommendation,
		PredictedAt:    now,
	}
}

// Baseline returns the resting assessment for a product with no readings.
func Baseline(now time.Time) model.RiskAssessment {
	return model.RiskAssessment{
		Level:          model.RiskLow,
		Factors:        []string{},
		Confidence:     0.9,
		Recommendation: "Standard monitoring active",
		PredictedAt:    now,
	}
}
