package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainaware/trace-engine/internal/model"
)

// AlertStore is the Postgres implementation of alert.Store. The triggering
// reading is kept as a JSONB snapshot alongside the alert row.
type AlertStore struct {
	pool *pgxpool.Pool
}

// NewAlertStore creates a store over the pool.
func NewAlertStore(pool *pgxpool.Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

func (s *AlertStore) Insert(ctx context.Context, a model.Alert) error {
	reading, err := json.Marshal(a.Reading)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
        INSERT INTO alerts
            (id, product_id, alert_type, risk_level, message, reading, raised_at, acknowledged, resolution)
        VALUES
            ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9)
    `, a.ID, a.ProductID, string(a.Type), string(a.Level), a.Message, string(reading), a.Timestamp, a.Acknowledged, a.Resolution)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *AlertStore) Get(ctx context.Context, id string) (model.Alert, bool, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, product_id, alert_type, risk_level, message, reading, raised_at, acknowledged, resolution
        FROM alerts
        WHERE id = $1
    `, id)

	a, err := scanAlert(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Alert{}, false, nil
	}
	if err != nil {
		return model.Alert{}, false, err
	}
	return a, true, nil
}

func (s *AlertStore) Update(ctx context.Context, a model.Alert) error {
	cmd, err := s.pool.Exec(ctx, `
        UPDATE alerts
        SET acknowledged = $2,
            resolution = $3
        WHERE id = $1
    `, a.ID, a.Acknowledged, a.Resolution)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *AlertStore) ListByProduct(ctx context.Context, productID string) ([]model.Alert, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, product_id, alert_type, risk_level, message, reading, raised_at, acknowledged, resolution
        FROM alerts
        WHERE product_id = $1
        ORDER BY raised_at ASC
    `, productID)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (s *AlertStore) List(ctx context.Context) ([]model.Alert, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, product_id, alert_type, risk_level, message, reading, raised_at, acknowledged, resolution
        FROM alerts
        ORDER BY raised_at ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func collectAlerts(rows pgx.Rows) ([]model.Alert, error) {
	var out []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAlert(scan func(dest ...any) error) (model.Alert, error) {
	var a model.Alert
	var alertType, riskLevel string
	var readingRaw []byte
	if err := scan(
		&a.ID,
		&a.ProductID,
		&alertType,
		&riskLevel,
		&a.Message,
		&readingRaw,
		&a.Timestamp,
		&a.Acknowledged,
		&a.Resolution,
	); err != nil {
		return model.Alert{}, err
	}
	a.Type = model.AlertType(alertType)
	a.Level = model.RiskLevel(riskLevel)
	if err := json.Unmarshal(readingRaw, &a.Reading); err != nil {
		return model.Alert{}, fmt.Errorf("unmarshal reading: %w", err)
	}
	return a, nil
}
