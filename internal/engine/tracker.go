// Package engine orchestrates the tracking flows: registration with
// compliance checks, reading ingestion with risk assessment and alerting,
// delivery-risk prediction, and document verification.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/chainaware/trace-engine/internal/alert"
	"github.com/chainaware/trace-engine/internal/errs"
	"github.com/chainaware/trace-engine/internal/events"
	"github.com/chainaware/trace-engine/internal/external"
	"github.com/chainaware/trace-engine/internal/ledger"
	"github.com/chainaware/trace-engine/internal/metrics"
	"github.com/chainaware/trace-engine/internal/model"
	"github.com/chainaware/trace-engine/internal/registry"
	"github.com/chainaware/trace-engine/internal/risk"
	"github.com/chainaware/trace-engine/internal/score"
)

const lockStripes = 64

// Options tunes the Tracker.
type Options struct {
	IngestWorkers     int
	QueueDepth        int
	CapabilityTimeout time.Duration
}

// ReadingResult is the outcome of ingesting one reading.
type ReadingResult struct {
	ProductID  string               `json:"product_id"`
	Assessment model.RiskAssessment `json:"assessment"`
	Alert      *model.Alert         `json:"alert,omitempty"`
	DurationMs int64                `json:"duration_ms"`
}

// ComplianceResult reports per-code regulatory verification at registration.
type ComplianceResult struct {
	OverallCompliant bool              `json:"overall_compliant"`
	Details          []ComplianceEntry `json:"details"`
}

// ComplianceEntry is one code's verification outcome.
type ComplianceEntry struct {
	Code     string `json:"code"`
	Valid    bool   `json:"valid"`
	Verified bool   `json:"verified"`
}

// DocumentReport is the outcome of verifying a document.
type DocumentReport struct {
	DocumentHash     string    `json:"document_hash"`
	Verified         bool      `json:"verified"`
	FraudScore       float64   `json:"fraud_score"`
	RegulatoryStatus bool      `json:"regulatory_status"`
	VerifiedAt       time.Time `json:"verification_timestamp"`
	Issues           []string  `json:"issues"`
}

// TraceReport is the full traceability aggregate for one product.
type TraceReport struct {
	Product           model.Product        `json:"product"`
	LocationHistory   []model.Reading      `json:"location_history"`
	Alerts            []model.Alert        `json:"alerts"`
	CurrentRisk       model.RiskAssessment `json:"current_risk"`
	TraceabilityScore float64              `json:"traceability_score"`
}

// Tracker wires the stores, scorers, and external capabilities together.
// Mutating flows for the same product are serialized via striped locks.
type Tracker struct {
	registry *registry.Registry
	ledger   *ledger.Ledger
	risk     *risk.Engine
	alerts   *alert.Center
	scorer   *score.Scorer
	caps     external.Capabilities
	emitter  events.Emitter

	capTimeout time.Duration
	pool       *workerPool[ingestJob]
	locks      [lockStripes]sync.Mutex
	now        func() time.Time
}

type ingestJob struct {
	productID string
	reading   model.Reading
}

// New creates a Tracker and starts its ingest worker pool.
func New(
	ctx context.Context,
	reg *registry.Registry,
	led *ledger.Ledger,
	riskEngine *risk.Engine,
	alerts *alert.Center,
	scorer *score.Scorer,
	caps external.Capabilities,
	emitter events.Emitter,
	opts Options,
) *Tracker {
	t := &Tracker{
		registry:   reg,
		ledger:     led,
		risk:       riskEngine,
		alerts:     alerts,
		scorer:     scorer,
		caps:       caps.WithDefaults(),
		emitter:    emitter,
		capTimeout: opts.CapabilityTimeout,
		now:        func() time.Time { return time.Now().UTC() },
	}
	t.pool = newWorkerPool(ctx, opts.IngestWorkers, opts.QueueDepth, func(ctx context.Context, j ingestJob) {
		if _, err := t.AppendReading(ctx, j.productID, j.reading); err != nil {
			slog.Warn("async reading ingest failed", "product_id", j.productID, "err", err)
		}
	})
	return t
}

// Register validates and stores a product, verifies regulatory compliance,
// emits the registration event, and runs the initial baseline assessment.
func (t *Tracker) Register(ctx context.Context, in registry.Input) (string, ComplianceResult, error) {
	id, err := t.registry.Register(in)
	if err != nil {
		t.emitter.Emit(ctx, events.TypeRegistrationError, map[string]any{"error": err.Error()})
		return "", ComplianceResult{}, err
	}

	compliance := t.checkCompliance(ctx, in.RegulatoryCodes, in.Category)

	// Baseline assessment over an empty reading: no factors, low risk.
	baseline := risk.Baseline(t.now())

	metrics.ProductsRegistered.Inc()
	t.emitter.Emit(ctx, events.TypeProductRegistered, map[string]any{
		"product_id": id,
		"name":       in.Name,
		"compliance": compliance,
		"baseline":   string(baseline.Level),
	})
	return id, compliance, nil
}

// checkCompliance verifies each regulatory code via the capability. A
// verifier failure marks the code unverified without failing registration.
func (t *Tracker) checkCompliance(ctx context.Context, codes []string, category string) ComplianceResult {
	result := ComplianceResult{OverallCompliant: true}
	for _, code := range codes {
		cctx, cancel := context.WithTimeout(ctx, t.capTimeout)
		valid, err := t.caps.Regulatory.VerifyRegulatoryCode(cctx, code, category)
		cancel()
		if err != nil {
			metrics.CapabilityFailures.WithLabelValues("regulatory").Inc()
			slog.Warn("regulatory verification unavailable", "code", code, "err", err)
			result.Details = append(result.Details, ComplianceEntry{Code: code, Valid: false, Verified: false})
			result.OverallCompliant = false
			continue
		}
		result.Details = append(result.Details, ComplianceEntry{Code: code, Valid: valid, Verified: true})
		if !valid {
			result.OverallCompliant = false
		}
	}
	return result
}

// AppendReading records a reading, assesses it, and raises an alert when
// the assessment is high or critical. The alert is stored only after the
// assessment succeeds; calls for the same product are serialized.
func (t *Tracker) AppendReading(ctx context.Context, productID string, r model.Reading) (*ReadingResult, error) {
	start := t.now()

	lock := t.lockFor(productID)
	lock.Lock()
	defer lock.Unlock()

	if err := t.ledger.Append(ctx, productID, r); err != nil {
		return nil, err
	}
	metrics.ReadingsIngested.Inc()

	assessment := t.risk.AssessReading(r, t.now())
	metrics.Assessments.WithLabelValues("reading", string(assessment.Level)).Inc()

	raised, err := t.alerts.MaybeRaise(ctx, productID, r, assessment)
	if err != nil {
		return nil, fmt.Errorf("raise alert: %w", err)
	}
	if raised != nil {
		metrics.AlertsRaised.WithLabelValues(string(raised.Type)).Inc()
		t.emitter.Emit(ctx, events.TypeAlertRaised, map[string]any{
			"alert_id":   raised.ID,
			"product_id": productID,
			"type":       string(raised.Type),
			"level":      string(raised.Level),
		})
	}

	t.emitter.Emit(ctx, events.TypeLocationUpdated, map[string]any{
		"product_id": productID,
		"location":   map[string]float64{"lat": r.Latitude, "lng": r.Longitude},
		"risk_level": string(assessment.Level),
	})

	result := &ReadingResult{
		ProductID:  productID,
		Assessment: assessment,
		Alert:      raised,
		DurationMs: time.Since(start).Milliseconds(),
	}
	metrics.IngestDuration.Observe(float64(result.DurationMs))
	return result, nil
}

// AppendAsync enqueues a reading for background ingestion. Returns false
// when the queue is full.
func (t *Tracker) AppendAsync(productID string, r model.Reading) bool {
	if !t.pool.Submit(ingestJob{productID: productID, reading: r}) {
		metrics.ReadingsDropped.Inc()
		return false
	}
	return true
}

// PredictDeliveryRisk scores forward-looking route risk for the product.
// Requires a registered product with at least one recorded reading. A
// failed weather or traffic fetch degrades to a conservative assessment
// carrying the external_data_unavailable factor.
func (t *Tracker) PredictDeliveryRisk(ctx context.Context, productID string, dest model.Destination) (model.RiskAssessment, error) {
	if !t.registry.Has(productID) {
		return model.RiskAssessment{}, fmt.Errorf("product %s: %w", productID, errs.ErrNotFound)
	}
	current, ok, err := t.ledger.Latest(ctx, productID)
	if err != nil {
		return model.RiskAssessment{}, err
	}
	if !ok {
		return model.RiskAssessment{}, fmt.Errorf("product %s has no location history: %w", productID, errs.ErrNoData)
	}

	var degraded []string

	wctx, cancel := context.WithTimeout(ctx, t.capTimeout)
	weather, err := t.caps.Weather.FetchWeather(wctx, current, dest)
	cancel()
	if err != nil {
		metrics.CapabilityFailures.WithLabelValues("weather").Inc()
		slog.Warn("weather provider unavailable", "product_id", productID, "err", err)
		weather = model.WeatherSnapshot{}
		degraded = append(degraded, risk.FactorDataUnavailable)
	}

	tctx, cancel := context.WithTimeout(ctx, t.capTimeout)
	traffic, err := t.caps.Traffic.FetchTraffic(tctx, current, dest)
	cancel()
	if err != nil {
		metrics.CapabilityFailures.WithLabelValues("traffic").Inc()
		slog.Warn("traffic provider unavailable", "product_id", productID, "err", err)
		traffic = model.TrafficSnapshot{}
		if len(degraded) == 0 {
			degraded = append(degraded, risk.FactorDataUnavailable)
		}
	}

	hctx, cancel := context.WithTimeout(ctx, t.capTimeout)
	historical, err := t.caps.Historical.AnalyzeHistoricalPatterns(hctx, productID)
	cancel()
	if err != nil {
		metrics.CapabilityFailures.WithLabelValues("historical").Inc()
		slog.Warn("historical analyzer unavailable", "product_id", productID, "err", err)
		historical = nil
	}

	assessment := risk.PredictDeliveryRisk(weather, traffic, append(historical, degraded...), t.now())
	metrics.Assessments.WithLabelValues("delivery", string(assessment.Level)).Inc()
	return assessment, nil
}

// VerifyDocument hashes the document, scores its fraud risk, and checks it
// against the regulatory database. Verified iff the fraud score is below
// 0.3; scores above 0.7 and failed regulatory checks are reported as issues.
func (t *Tracker) VerifyDocument(ctx context.Context, document map[string]any) (DocumentReport, error) {
	canonical, err := json.Marshal(document)
	if err != nil {
		return DocumentReport{}, errs.Validation([]string{fmt.Sprintf("document not serializable: %s", err)})
	}
	sum := sha256.Sum256(canonical)

	fctx, cancel := context.WithTimeout(ctx, t.capTimeout)
	fraudScore, err := t.caps.Fraud.ScoreFraudRisk(fctx, document)
	cancel()
	if err != nil {
		// Conservative fallback: treat an unscorable document as unverifiable.
		metrics.CapabilityFailures.WithLabelValues("fraud").Inc()
		slog.Warn("fraud scorer unavailable", "err", err)
		fraudScore = 1
	}

	category, _ := document["category"].(string)
	code, _ := document["regulatory_code"].(string)
	regulatoryOK := true
	if code != "" {
		rctx, cancel := context.WithTimeout(ctx, t.capTimeout)
		regulatoryOK, err = t.caps.Regulatory.VerifyRegulatoryCode(rctx, code, category)
		cancel()
		if err != nil {
			metrics.CapabilityFailures.WithLabelValues("regulatory").Inc()
			slog.Warn("regulatory verification unavailable", "code", code, "err", err)
			regulatoryOK = false
		}
	}

	report := DocumentReport{
		DocumentHash:     hex.EncodeToString(sum[:]),
		Verified:         fraudScore < 0.3,
		FraudScore:       fraudScore,
		RegulatoryStatus: regulatoryOK,
		VerifiedAt:       t.now(),
		Issues:           []string{},
	}
	if fraudScore > 0.7 {
		report.Issues = append(report.Issues, "High fraud risk detected")
	}
	if !regulatoryOK {
		report.Issues = append(report.Issues, "Regulatory verification failed")
	}

	t.emitter.Emit(ctx, events.TypeDocumentVerified, map[string]any{
		"document_hash": report.DocumentHash,
		"verified":      report.Verified,
		"fraud_score":   report.FraudScore,
	})
	return report, nil
}

// Trace aggregates the product record, full location history, alerts,
// current risk, and traceability score.
func (t *Tracker) Trace(ctx context.Context, productID string) (TraceReport, error) {
	product, err := t.registry.Get(productID)
	if err != nil {
		return TraceReport{}, err
	}
	history, err := t.ledger.History(ctx, productID)
	if err != nil {
		return TraceReport{}, err
	}
	alerts, err := t.alerts.ForProduct(ctx, productID)
	if err != nil {
		return TraceReport{}, err
	}

	current := risk.Baseline(t.now())
	if len(history) > 0 {
		current = t.risk.AssessReading(history[len(history)-1], t.now())
	}

	scoreValue, err := t.scorer.Compute(ctx, productID)
	if err != nil {
		return TraceReport{}, err
	}

	if alerts == nil {
		alerts = []model.Alert{}
	}
	if history == nil {
		history = []model.Reading{}
	}
	return TraceReport{
		Product:           product,
		LocationHistory:   history,
		Alerts:            alerts,
		CurrentRisk:       current,
		TraceabilityScore: scoreValue,
	}, nil
}

// Acknowledge marks an alert as seen and emits the acknowledgement event.
func (t *Tracker) Acknowledge(ctx context.Context, alertID string) error {
	if err := t.alerts.Acknowledge(ctx, alertID); err != nil {
		return err
	}
	t.emitter.Emit(ctx, events.TypeAlertAcknowledged, map[string]any{"alert_id": alertID})
	return nil
}

// Resolve records an alert resolution and emits the resolution event.
func (t *Tracker) Resolve(ctx context.Context, alertID, resolution string) error {
	if err := t.alerts.Resolve(ctx, alertID, resolution); err != nil {
		return err
	}
	t.emitter.Emit(ctx, events.TypeAlertResolved, map[string]any{"alert_id": alertID, "resolution": resolution})
	return nil
}

// QueueUtilization returns ingest queue used / capacity (0–1).
func (t *Tracker) QueueUtilization() float64 {
	if t.pool.QueueCap() == 0 {
		return 0
	}
	return float64(t.pool.QueueLen()) / float64(t.pool.QueueCap())
}

// Shutdown drains the ingest pool gracefully.
func (t *Tracker) Shutdown() {
	t.pool.Drain()
}

func (t *Tracker) lockFor(productID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(productID))
	return &t.locks[h.Sum32()%lockStripes]
}
