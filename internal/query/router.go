// Package query classifies free-text queries by keyword and dispatches to
// the read paths of the registry, ledger, and alert center.
package query

import (
	"context"
	"strings"

	"github.com/chainaware/trace-engine/internal/alert"
	"github.com/chainaware/trace-engine/internal/ledger"
	"github.com/chainaware/trace-engine/internal/model"
	"github.com/chainaware/trace-engine/internal/registry"
)

// Intent is the classified query type.
type Intent string

const (
	IntentProductSearch Intent = "PRODUCT_SEARCH"
	IntentRiskQuery     Intent = "RISK_QUERY"
	IntentLocationQuery Intent = "LOCATION_QUERY"
	IntentAlertQuery    Intent = "ALERT_QUERY"
	IntentGeneral       Intent = "GENERAL_QUERY"
)

// rules is the ordered classification table: the first rule whose keyword
// appears in the query (case-insensitive substring) wins.
var rules = []struct {
	keywords []string
	intent   Intent
}{
	{[]string{"product", "item"}, IntentProductSearch},
	{[]string{"risk", "danger"}, IntentRiskQuery},
	{[]string{"where", "location"}, IntentLocationQuery},
	{[]string{"alert", "warning"}, IntentAlertQuery},
}

const helpMessage = "I can help you with product searches, risk assessments, location tracking, and alert monitoring."

var helpQueries = []string{
	"Show products from [manufacturer]",
	"What are the high-risk shipments?",
	"Where is product [ID]?",
	"Show alerts for today",
}

// Result is the routed query outcome.
type Result struct {
	Intent           Intent                   `json:"intent"`
	Products         []model.Product          `json:"products,omitempty"`
	Alerts           []model.Alert            `json:"alerts,omitempty"`
	Locations        map[string]model.Reading `json:"locations,omitempty"`
	Response         string                   `json:"response,omitempty"`
	AvailableQueries []string                 `json:"available_queries,omitempty"`
}

// Router dispatches classified queries to the read-only accessors.
type Router struct {
	registry *registry.Registry
	ledger   *ledger.Ledger
	alerts   *alert.Center
}

// New creates a Router over the three stores.
func New(r *registry.Registry, l *ledger.Ledger, a *alert.Center) *Router {
	return &Router{registry: r, ledger: l, alerts: a}
}

// Classify returns the intent for a query without dispatching it.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}

// Route classifies the query and reads the matching state. It introduces
// no new state and never mutates.
func (r *Router) Route(ctx context.Context, text string) (Result, error) {
	intent := Classify(text)

	switch intent {
	case IntentProductSearch:
		return Result{Intent: intent, Products: r.registry.List()}, nil

	case IntentRiskQuery:
		all, err := r.alerts.All(ctx)
		if err != nil {
			return Result{}, err
		}
		var risky []model.Alert
		for _, a := range all {
			if a.Level == model.RiskHigh || a.Level == model.RiskCritical {
				risky = append(risky, a)
			}
		}
		return Result{Intent: intent, Alerts: risky}, nil

	case IntentLocationQuery:
		locations := make(map[string]model.Reading)
		for _, p := range r.registry.List() {
			latest, ok, err := r.ledger.Latest(ctx, p.ID)
			if err != nil {
				return Result{}, err
			}
			if ok {
				locations[p.ID] = latest
			}
		}
		return Result{Intent: intent, Locations: locations}, nil

	case IntentAlertQuery:
		all, err := r.alerts.All(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Intent: intent, Alerts: all}, nil

	default:
		return Result{
			Intent:           IntentGeneral,
			Response:         helpMessage,
			AvailableQueries: helpQueries,
		}, nil
	}
}
