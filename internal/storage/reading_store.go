package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainaware/trace-engine/internal/model"
)

// ReadingStore is the Postgres implementation of ledger.Store.
type ReadingStore struct {
	pool *pgxpool.Pool
}

// NewReadingStore creates a store over the pool.
func NewReadingStore(pool *pgxpool.Pool) *ReadingStore {
	return &ReadingStore{pool: pool}
}

func (s *ReadingStore) Append(ctx context.Context, productID string, r model.Reading) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO readings
            (product_id, latitude, longitude, recorded_at, temperature, humidity, pressure, shock_level)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8)
    `, productID, r.Latitude, r.Longitude, r.Timestamp, r.Temperature, r.Humidity, r.Pressure, r.ShockLevel)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (s *ReadingStore) Latest(ctx context.Context, productID string) (model.Reading, bool, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT latitude, longitude, recorded_at, temperature, humidity, pressure, shock_level
        FROM readings
        WHERE product_id = $1
        ORDER BY seq DESC
        LIMIT 1
    `, productID)
	if err != nil {
		return model.Reading{}, false, fmt.Errorf("query latest reading: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return model.Reading{}, false, rows.Err()
	}
	r, err := scanReading(rows.Scan)
	if err != nil {
		return model.Reading{}, false, err
	}
	return r, true, nil
}

func (s *ReadingStore) History(ctx context.Context, productID string) ([]model.Reading, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT latitude, longitude, recorded_at, temperature, humidity, pressure, shock_level
        FROM readings
        WHERE product_id = $1
        ORDER BY seq ASC
    `, productID)
	if err != nil {
		return nil, fmt.Errorf("query reading history: %w", err)
	}
	defer rows.Close()

	var out []model.Reading
	for rows.Next() {
		r, err := scanReading(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ReadingStore) Count(ctx context.Context, productID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM readings WHERE product_id = $1
    `, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}

func scanReading(scan func(dest ...any) error) (model.Reading, error) {
	var r model.Reading
	if err := scan(
		&r.Latitude,
		&r.Longitude,
		&r.Timestamp,
		&r.Temperature,
		&r.Humidity,
		&r.Pressure,
		&r.ShockLevel,
	); err != nil {
		return model.Reading{}, fmt.Errorf("scan reading: %w", err)
	}
	return r, nil
}
