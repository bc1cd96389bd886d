// Package risk holds the two scoring policies: per-reading condition
// assessment and forward-looking delivery-risk prediction. Both are pure
// functions over their inputs; the reading thresholds are hot-swappable.
package risk

import (
	"sync/atomic"

	"github.com/chainaware/trace-engine/internal/config"
)

// ReadingPolicy holds the thresholds for per-reading assessment. The
// temperature and humidity bounds are exclusive: a value exactly on a bound
// does not trigger a factor.
type ReadingPolicy struct {
	TemperatureMin float64
	TemperatureMax float64
	HumidityMin    float64
	HumidityMax    float64
	ShockMax       float64
}

// DefaultReadingPolicy returns the standard cold-chain envelope.
func DefaultReadingPolicy() ReadingPolicy {
	return ReadingPolicy{
		TemperatureMin: 0,
		TemperatureMax: 40,
		HumidityMin:    30,
		HumidityMax:    80,
		ShockMax:       5,
	}
}

// PolicyFromConfig maps the config section to a ReadingPolicy.
func PolicyFromConfig(rc config.RiskConf) ReadingPolicy {
	return ReadingPolicy{
		TemperatureMin: rc.TemperatureMin,
		TemperatureMax: rc.TemperatureMax,
		HumidityMin:    rc.HumidityMin,
		HumidityMax:    rc.HumidityMax,
		ShockMax:       rc.ShockMax,
	}
}

// Engine carries the current reading policy. The policy pointer is swapped
// atomically on config hot-reload; assessments in flight keep the policy
// they started with.
type Engine struct {
	policy atomic.Pointer[ReadingPolicy]
}

// NewEngine creates an Engine with the given policy.
func NewEngine(p ReadingPolicy) *Engine {
	e := &Engine{}
	e.policy.Store(&p)
	return e
}

// Policy returns the current reading policy.
func (e *Engine) Policy() ReadingPolicy {
	return *e.policy.Load()
}

// SwapPolicy atomically replaces the reading policy (used on hot-reload).
func (e *Engine) SwapPolicy(p ReadingPolicy) {
	e.policy.Store(&p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
