package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"caudal/internal/db"
	"caudal/internal/domain"
)

// SQLiteUFRateRepo implements UFRateRepo using a SQLite database.
// Rates are keyed by date; lookups fall back to the latest rate at or
// before the requested date.
type SQLiteUFRateRepo struct {
	db db.DBTX
}

// NewSQLiteUFRateRepo creates a new SQLiteUFRateRepo.
func NewSQLiteUFRateRepo(dbtx db.DBTX) *SQLiteUFRateRepo {
	return &SQLiteUFRateRepo{db: dbtx}
}

func (r *SQLiteUFRateRepo) Upsert(ctx context.Context, rate *domain.UFRate) error {
	query := `INSERT INTO uf_rates (date, value) VALUES (?, ?)
		ON CONFLICT(date) DO UPDATE SET value = excluded.value`
	res, err := r.db.ExecContext(ctx, query, rate.Date.Format(dateLayout), rate.Value.String())
	if err != nil {
		return fmt.Errorf("upserting uf rate: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		rate.ID = id
	}
	return nil
}

// GetAtOrBefore returns the rate effective on the given date: the exact-date
// entry if present, otherwise the most recent earlier one.
func (r *SQLiteUFRateRepo) GetAtOrBefore(ctx context.Context, date time.Time) (*domain.UFRate, error) {
	query := `SELECT id, date, value FROM uf_rates WHERE date <= ? ORDER BY date DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, date.Format(dateLayout))
	return scanUFRate(row)
}

func (r *SQLiteUFRateRepo) Latest(ctx context.Context) (*domain.UFRate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, date, value FROM uf_rates ORDER BY date DESC LIMIT 1`)
	return scanUFRate(row)
}

func (r *SQLiteUFRateRepo) List(ctx context.Context, limit int) ([]*domain.UFRate, error) {
	query := `SELECT id, date, value FROM uf_rates ORDER BY date DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing uf rates: %w", err)
	}
	defer rows.Close()

	var rates []*domain.UFRate
	for rows.Next() {
		rate, err := scanUFRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uf rates: %w", err)
	}
	return rates, nil
}

func scanUFRate(row scanner) (*domain.UFRate, error) {
	var rate domain.UFRate
	var dateStr, valueStr string

	err := row.Scan(&rate.ID, &dateStr, &valueStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("uf rate: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning uf rate: %w", err)
	}

	if rate.Date, err = time.Parse(dateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("parsing rate date: %w", err)
	}
	if rate.Value, err = decimal.NewFromString(valueStr); err != nil {
		return nil, fmt.Errorf("parsing rate value: %w", err)
	}

	return &rate, nil
}
