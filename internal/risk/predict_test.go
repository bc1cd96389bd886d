package risk

import (
	"math"
	"testing"
	"time"

	"github.com/chainaware/trace-engine/internal/model"
)

func TestPredictDeliveryRisk(t *testing.T) {
	cases := []struct {
		name           string
		weather        model.WeatherSnapshot
		traffic        model.TrafficSnapshot
		historical     []string
		wantLevel      model.RiskLevel
		wantFactors    int
		wantConfidence float64
	}{
		{
			name:           "clear route",
			wantLevel:      model.RiskLow,
			wantFactors:    0,
			wantConfidence: 0.80,
		},
		{
			name:           "severe weather alone",
			weather:        model.WeatherSnapshot{SevereWeather: true},
			wantLevel:      model.RiskMedium,
			wantFactors:    1,
			wantConfidence: 0.60,
		},
		{
			name:           "temperature extreme costs no confidence",
			weather:        model.WeatherSnapshot{TemperatureExtreme: true},
			wantLevel:      model.RiskMedium,
			wantFactors:    1,
			wantConfidence: 0.80,
		},
		{
			name:           "congestion at threshold passes",
			traffic:        model.TrafficSnapshot{CongestionLevel: 0.7},
			wantLevel:      model.RiskLow,
			wantFactors:    0,
			wantConfidence: 0.80,
		},
		{
			name:           "heavy traffic",
			traffic:        model.TrafficSnapshot{CongestionLevel: 0.71},
			wantLevel:      model.RiskMedium,
			wantFactors:    1,
			wantConfidence: 0.65,
		},
		{
			name:           "three factors is high",
			weather:        model.WeatherSnapshot{SevereWeather: true, TemperatureExtreme: true},
			traffic:        model.TrafficSnapshot{CongestionLevel: 0.9},
			wantLevel:      model.RiskHigh,
			wantFactors:    3,
			wantConfidence: 0.45,
		},
		{
			name:           "historical factors count toward level",
			historical:     []string{"seasonal_delay", "port_congestion", "customs_backlog"},
			wantLevel:      model.RiskHigh,
			wantFactors:    3,
			wantConfidence: 0.80,
		},
	}

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PredictDeliveryRisk(tc.weather, tc.traffic, tc.historical, now)
			if got.Level != tc.wantLevel {
				t.Errorf("level = %s, want %s", got.Level, tc.wantLevel)
			}
			if len(got.Factors) != tc.wantFactors {
				t.Errorf("factors = %v, want %d of them", got.Factors, tc.wantFactors)
			}
			if math.Abs(got.Confidence-tc.wantConfidence) > 1e-9 {
				t.Errorf("confidence = %.4f, want %.4f", got.Confidence, tc.wantConfidence)
			}
		})
	}
}

// The delivery policy has its own thresholds: two factors stay medium here
// even though the reading policy would call them high.
func TestPredictDeliveryRisk_DistinctThresholds(t *testing.T) {
	now := time.Now().UTC()
	got := PredictDeliveryRisk(
		model.WeatherSnapshot{SevereWeather: true},
		model.TrafficSnapshot{CongestionLevel: 0.9},
		nil,
		now,
	)
	if len(got.Factors) != 2 {
		t.Fatalf("expected 2 factors, got %v", got.Factors)
	}
	if got.Level != model.RiskMedium {
		t.Errorf("two delivery factors should be medium, got %s", got.Level)
	}
}
