package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainaware/trace-engine/internal/alert"
	"github.com/chainaware/trace-engine/internal/engine"
	"github.com/chainaware/trace-engine/internal/ledger"
	"github.com/chainaware/trace-engine/internal/metrics"
	"github.com/chainaware/trace-engine/internal/model"
	"github.com/chainaware/trace-engine/internal/query"
	"github.com/chainaware/trace-engine/internal/registry"
)

const maxBatchSize = 100

// Handler holds all HTTP handler dependencies.
type Handler struct {
	tracker  *engine.Tracker
	registry *registry.Registry
	ledger   *ledger.Ledger
	alerts   *alert.Center
	router   *query.Router
	mux      *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(tracker *engine.Tracker, reg *registry.Registry, led *ledger.Ledger, alerts *alert.Center, router *query.Router) http.Handler {
	h := &Handler{tracker: tracker, registry: reg, ledger: led, alerts: alerts, router: router, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/products", h.registerProduct)
	h.mux.HandleFunc("GET /v1/products/{id}", h.getProduct)
	h.mux.HandleFunc("GET /v1/products/{id}/trace", h.traceProduct)
	h.mux.HandleFunc("POST /v1/products/{id}/readings", h.appendReading)
	h.mux.HandleFunc("GET /v1/products/{id}/readings", h.listReadings)
	h.mux.HandleFunc("POST /v1/products/{id}/delivery-risk", h.predictDeliveryRisk)
	h.mux.HandleFunc("POST /v1/readings/batch", h.ingestBatch)
	h.mux.HandleFunc("POST /v1/documents/verify", h.verifyDocument)
	h.mux.HandleFunc("GET /v1/alerts", h.listAlerts)
	h.mux.HandleFunc("POST /v1/alerts/{id}/ack", h.acknowledgeAlert)
	h.mux.HandleFunc("POST /v1/alerts/{id}/resolve", h.resolveAlert)
	h.mux.HandleFunc("POST /v1/query", h.routeQuery)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// POST /v1/products — register a product.
func (h *Handler) registerProduct(w http.ResponseWriter, r *http.Request) {
	var in registry.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	id, compliance, err := h.tracker.Register(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"product_id": id,
		"compliance": compliance,
	})
}

// GET /v1/products/{id}
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /v1/products/{id}/trace — full traceability report.
func (h *Handler) traceProduct(w http.ResponseWriter, r *http.Request) {
	report, err := h.tracker.Trace(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POST /v1/products/{id}/readings — synchronous append + assess + alert.
func (h *Handler) appendReading(w http.ResponseWriter, r *http.Request) {
	var reading model.Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	result, err := h.tracker.AppendReading(r.Context(), r.PathValue("id"), reading)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /v1/products/{id}/readings
func (h *Handler) listReadings(w http.ResponseWriter, r *http.Request) {
	history, err := h.ledger.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if history == nil {
		history = []model.Reading{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"readings": history})
}

// POST /v1/products/{id}/delivery-risk
func (h *Handler) predictDeliveryRisk(w http.ResponseWriter, r *http.Request) {
	var dest model.Destination
	if err := json.NewDecoder(r.Body).Decode(&dest); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	assessment, err := h.tracker.PredictDeliveryRisk(r.Context(), r.PathValue("id"), dest)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

type batchReading struct {
	ProductID string        `json:"product_id"`
	Reading   model.Reading `json:"reading"`
}

// POST /v1/readings/batch — async batch ingestion (up to 100 readings).
func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request) {
	var batch []batchReading
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(batch) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one reading")
		return
	}
	if len(batch) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(batch), maxBatchSize))
		return
	}

	jobID := uuid.New().String()
	queued := 0
	for _, item := range batch {
		if h.tracker.AppendAsync(item.ProductID, item.Reading) {
			queued++
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   jobID,
		"total":    len(batch),
		"queued":   queued,
		"rejected": len(batch) - queued,
	})
}

// POST /v1/documents/verify
func (h *Handler) verifyDocument(w http.ResponseWriter, r *http.Request) {
	var document map[string]any
	if err := json.NewDecoder(r.Body).Decode(&document); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	report, err := h.tracker.VerifyDocument(r.Context(), document)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /v1/alerts?product=<id>
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product")
	var alerts []model.Alert
	var err error
	if productID != "" {
		alerts, err = h.alerts.ForProduct(r.Context(), productID)
	} else {
		alerts, err = h.alerts.All(r.Context())
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// POST /v1/alerts/{id}/ack
func (h *Handler) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Acknowledge(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
}

// POST /v1/alerts/{id}/resolve
func (h *Handler) resolveAlert(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.Resolution == "" {
		writeError(w, http.StatusBadRequest, "resolution text is required")
		return
	}
	if err := h.tracker.Resolve(r.Context(), r.PathValue("id"), req.Resolution); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resolved": true})
}

type queryRequest struct {
	Query string `json:"query"`
}

// POST /v1/query — free-text query routing.
func (h *Handler) routeQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	result, err := h.router.Route(r.Context(), req.Query)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the ingest queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.tracker.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ready",
		"queue_utilization": util,
	})
}

// loggingMiddleware logs each request with method, path, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
