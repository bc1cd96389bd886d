package query

import (
	"context"
	"testing"
	"time"

	"github.com/chainaware/trace-engine/internal/alert"
	"github.com/chainaware/trace-engine/internal/ledger"
	"github.com/chainaware/trace-engine/internal/model"
	"github.com/chainaware/trace-engine/internal/registry"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		query string
		want  Intent
	}{
		{"show me all products", IntentProductSearch},
		{"which ITEMS arrived today", IntentProductSearch},
		{"what are the high-risk shipments", IntentRiskQuery},
		{"is this shipment in danger", IntentRiskQuery},
		{"where is product 123", IntentProductSearch}, // "product" rule wins by order
		{"where is my shipment", IntentLocationQuery},
		{"current location of batch 9", IntentLocationQuery},
		{"show alerts for today", IntentAlertQuery},
		{"any warnings", IntentAlertQuery},
		{"hello", IntentGeneral},
		{"", IntentGeneral},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			if got := Classify(tc.query); got != tc.want {
				t.Errorf("Classify(%q) = %s, want %s", tc.query, got, tc.want)
			}
		})
	}
}

func newTestRouter(t *testing.T) (*Router, *registry.Registry, *ledger.Ledger, *alert.Center) {
	t.Helper()
	reg := registry.New()
	led := ledger.New(ledger.NewMemoryStore(0), reg)
	alerts := alert.New(alert.NewMemoryStore())
	return New(reg, led, alerts), reg, led, alerts
}

func TestRoute_GeneralHelp(t *testing.T) {
	router, _, _, _ := newTestRouter(t)
	res, err := router.Route(context.Background(), "what can you do")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if res.Intent != IntentGeneral {
		t.Fatalf("intent = %s", res.Intent)
	}
	if res.Response == "" || len(res.AvailableQueries) == 0 {
		t.Error("general query should carry the help message and examples")
	}
}

func TestRoute_Dispatch(t *testing.T) {
	ctx := context.Background()
	router, reg, led, alerts := newTestRouter(t)

	id, err := reg.Register(registry.Input{
		Name:           "Vaccine",
		Category:       "pharma",
		Origin:         "Belgium",
		Manufacturer:   "BioCo",
		ProductionDate: "2026-01-01",
		BatchNumber:    "V1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	reading := model.Reading{Latitude: 50.8, Longitude: 4.4, Timestamp: time.Now().UTC()}
	if err := led.Append(ctx, id, reading); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := alerts.MaybeRaise(ctx, id, reading, model.RiskAssessment{Level: model.RiskHigh}); err != nil {
		t.Fatalf("raise: %v", err)
	}

	products, err := router.Route(ctx, "list products")
	if err != nil {
		t.Fatalf("route products: %v", err)
	}
	if len(products.Products) != 1 {
		t.Errorf("products = %d, want 1", len(products.Products))
	}

	risky, err := router.Route(ctx, "any danger out there")
	if err != nil {
		t.Fatalf("route risk: %v", err)
	}
	if len(risky.Alerts) != 1 {
		t.Errorf("risky alerts = %d, want 1", len(risky.Alerts))
	}

	locations, err := router.Route(ctx, "where is everything")
	if err != nil {
		t.Fatalf("route locations: %v", err)
	}
	if len(locations.Locations) != 1 {
		t.Errorf("locations = %d, want 1", len(locations.Locations))
	}
	if got := locations.Locations[id]; got.Latitude != reading.Latitude {
		t.Errorf("latest location latitude = %v", got.Latitude)
	}

	allAlerts, err := router.Route(ctx, "show alerts")
	if err != nil {
		t.Fatalf("route alerts: %v", err)
	}
	if len(allAlerts.Alerts) != 1 {
		t.Errorf("alerts = %d, want 1", len(allAlerts.Alerts))
	}
}
