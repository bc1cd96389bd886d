package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chainaware/trace-engine/internal/alert"
	"github.com/chainaware/trace-engine/internal/engine"
	"github.com/chainaware/trace-engine/internal/events"
	"github.com/chainaware/trace-engine/internal/external"
	"github.com/chainaware/trace-engine/internal/ledger"
	"github.com/chainaware/trace-engine/internal/query"
	"github.com/chainaware/trace-engine/internal/registry"
	"github.com/chainaware/trace-engine/internal/risk"
	"github.com/chainaware/trace-engine/internal/score"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := registry.New()
	led := ledger.New(ledger.NewMemoryStore(0), reg)
	alerts := alert.New(alert.NewMemoryStore())
	scorer := score.New(reg, led, alerts)
	riskEngine := risk.NewEngine(risk.DefaultReadingPolicy())

	tracker := engine.New(context.Background(), reg, led, riskEngine, alerts, scorer,
		external.Capabilities{}, events.Discard{}, engine.Options{
			IngestWorkers:     2,
			QueueDepth:        16,
			CapabilityTimeout: time.Second,
		})
	t.Cleanup(tracker.Shutdown)

	srv := httptest.NewServer(New(tracker, reg, led, alerts, query.New(reg, led, alerts)))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

const validProduct = `{
	"name": "Olive Oil",
	"category": "food",
	"origin": "Spain",
	"manufacturer": "Aceites SA",
	"production_date": "2026-02-01",
	"batch_number": "OO-7"
}`

func TestRegisterAndFetchProduct(t *testing.T) {
	srv := newTestServer(t)

	resp, body := post(t, srv, "/v1/products", validProduct)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	id, _ := body["product_id"].(string)
	if len(id) != 16 {
		t.Fatalf("product_id = %q, want 16 hex chars", id)
	}

	getResp, err := http.Get(srv.URL + "/v1/products/" + id)
	if err != nil {
		t.Fatalf("GET product: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Errorf("GET status = %d, want 200", getResp.StatusCode)
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	resp, body := post(t, srv, "/v1/products", `{"name": "X"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	violations, _ := body["violations"].([]any)
	if len(violations) == 0 {
		t.Error("response should carry the violation list")
	}
}

func TestStatusCodeMapping(t *testing.T) {
	srv := newTestServer(t)

	getResp, err := http.Get(srv.URL + "/v1/products/deadbeefdeadbeef")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404", getResp.StatusCode)
	}

	// Re-registering with a differing field is a conflict.
	if resp, _ := post(t, srv, "/v1/products", validProduct); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first registration status = %d", resp.StatusCode)
	}
	conflicting := strings.Replace(validProduct, "Aceites SA", "Otro SA", 1)
	if resp, _ := post(t, srv, "/v1/products", conflicting); resp.StatusCode != http.StatusConflict {
		t.Errorf("conflicting registration status = %d, want 409", resp.StatusCode)
	}

	// Delivery risk without readings is unprocessable.
	_, body := post(t, srv, "/v1/products", validProduct)
	id, _ := body["product_id"].(string)
	if resp, _ := post(t, srv, "/v1/products/"+id+"/delivery-risk", `{"latitude": 1, "longitude": 2}`); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("no-history delivery risk status = %d, want 422", resp.StatusCode)
	}
}

func TestReadingFlowRaisesAlert(t *testing.T) {
	srv := newTestServer(t)

	_, body := post(t, srv, "/v1/products", validProduct)
	id, _ := body["product_id"].(string)

	reading := `{
		"latitude": 40.4,
		"longitude": -3.7,
		"timestamp": "` + time.Now().UTC().Format(time.RFC3339) + `",
		"temperature": 50,
		"humidity": 90
	}`
	resp, result := post(t, srv, "/v1/products/"+id+"/readings", reading)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("append status = %d, want 200", resp.StatusCode)
	}
	alertBody, ok := result["alert"].(map[string]any)
	if !ok {
		t.Fatalf("two-factor reading should raise an alert, got %v", result)
	}
	alertID, _ := alertBody["id"].(string)

	if resp, _ := post(t, srv, "/v1/alerts/"+alertID+"/resolve", `{"resolution": "cold chain restored"}`); resp.StatusCode != http.StatusOK {
		t.Errorf("resolve status = %d, want 200", resp.StatusCode)
	}
	if resp, _ := post(t, srv, "/v1/alerts/"+alertID+"/resolve", `{}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("resolve without text status = %d, want 400", resp.StatusCode)
	}

	traceResp, err := http.Get(srv.URL + "/v1/products/" + id + "/trace")
	if err != nil {
		t.Fatalf("GET trace: %v", err)
	}
	defer traceResp.Body.Close()
	var trace map[string]any
	if err := json.NewDecoder(traceResp.Body).Decode(&trace); err != nil {
		t.Fatalf("decode trace: %v", err)
	}
	// 2 for one reading plus 20 for a fully-resolved alert history.
	if score, _ := trace["traceability_score"].(float64); score != 22 {
		t.Errorf("traceability score = %v, want 22", score)
	}
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	post(t, srv, "/v1/products", validProduct)

	resp, body := post(t, srv, "/v1/query", `{"query": "show me all products"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query status = %d, want 200", resp.StatusCode)
	}
	if body["intent"] != "PRODUCT_SEARCH" {
		t.Errorf("intent = %v, want PRODUCT_SEARCH", body["intent"])
	}
	products, _ := body["products"].([]any)
	if len(products) != 1 {
		t.Errorf("products = %d, want 1", len(products))
	}
}
