// Package events provides the fire-and-forget observability sink.
// Emission failures are logged and swallowed: they must never fail the
// operation that produced the event.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Event types emitted by the tracking core.
const (
	TypeProductRegistered = "PRODUCT_REGISTERED"
	TypeRegistrationError = "REGISTRATION_ERROR"
	TypeLocationUpdated   = "LOCATION_UPDATED"
	TypeAlertRaised       = "ALERT_RAISED"
	TypeAlertAcknowledged = "ALERT_ACKNOWLEDGED"
	TypeAlertResolved     = "ALERT_RESOLVED"
	TypeDocumentVerified  = "DOCUMENT_VERIFIED"
)

// Emitter publishes an event to the observability sink.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload map[string]any)
}

// LogEmitter writes events to the structured log.
type LogEmitter struct{}

func (LogEmitter) Emit(_ context.Context, eventType string, payload map[string]any) {
	slog.Info("event", "type", eventType, "payload", payload, "at", time.Now().UTC())
}

// Discard drops all events. Used in tests.
type Discard struct{}

func (Discard) Emit(context.Context, string, map[string]any) {}
