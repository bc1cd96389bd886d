package model

import "time"

// RiskLevel classifies the severity of a risk assessment.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank returns an ordinal for level comparisons (low < medium < high < critical).
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	}
	return -1
}

// AlertType tags the condition that raised an alert.
type AlertType string

const (
	AlertTemperatureDeviation AlertType = "temperature_deviation"
	AlertRouteDeviation       AlertType = "route_deviation"
	AlertDelayPrediction      AlertType = "delay_prediction"
	AlertQualityRisk          AlertType = "quality_risk"
	AlertSecurityBreach       AlertType = "security_breach"
	AlertRegulatoryViolation  AlertType = "regulatory_violation"
)

// Product is a tracked physical good. Immutable after registration.
type Product struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Category        string            `json:"category"`
	Origin          string            `json:"origin"`
	Manufacturer    string            `json:"manufacturer"`
	ProductionDate  time.Time         `json:"production_date"`
	BatchNumber     string            `json:"batch_number"`
	Specifications  map[string]any    `json:"specifications,omitempty"`
	RegulatoryCodes []string          `json:"regulatory_codes,omitempty"`
	SensorsConfig   map[string]any    `json:"sensors_config,omitempty"`
}

// Reading is one timestamped location/environmental sample for a product.
// Sensor fields are nil when the sample did not include them.
type Reading struct {
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	Pressure    *float64  `json:"pressure,omitempty"`
	ShockLevel  *float64  `json:"shock_level,omitempty"`
}

// RiskAssessment is a computed risk level with contributing factors.
type RiskAssessment struct {
	Level          RiskLevel `json:"level"`
	Factors        []string  `json:"factors"`
	Confidence     float64   `json:"confidence"`
	Recommendation string    `json:"recommendation"`
	PredictedAt    time.Time `json:"predicted_time"`
}

// Alert is a persisted record of a HIGH/CRITICAL risk event.
// ProductID is an explicit foreign key to the product it concerns.
type Alert struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	Type         AlertType `json:"type"`
	Level        RiskLevel `json:"level"`
	Message      string    `json:"message"`
	Reading      Reading   `json:"reading"`
	Timestamp    time.Time `json:"timestamp"`
	Acknowledged bool      `json:"acknowledged"`
	Resolution   string    `json:"resolution,omitempty"`
}

// Resolved reports whether the alert has a recorded resolution.
func (a Alert) Resolved() bool { return a.Resolution != "" }

// Destination is a delivery target for route-risk prediction.
type Destination struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherSnapshot is the shape returned by a weather provider.
type WeatherSnapshot struct {
	Temperature        float64 `json:"temperature"`
	Humidity           float64 `json:"humidity"`
	SevereWeather      bool    `json:"severe_weather"`
	TemperatureExtreme bool    `json:"temperature_extreme"`
}

// TrafficSnapshot is the shape returned by a traffic provider.
type TrafficSnapshot struct {
	CongestionLevel float64 `json:"congestion_level"`
	AverageDelay    float64 `json:"average_delay"`
	Incidents       int     `json:"incidents"`
}
