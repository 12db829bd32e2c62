package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caudal/internal/db"
	"caudal/internal/domain"
)

// SQLiteClientRepo implements ClientRepo using a SQLite database.
// It accepts a db.DBTX so the same repo works inside and outside a
// transaction.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(dbtx db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: dbtx}
}

const clientColumns = `id, rut, name, alias, email, phone, contacts, notes, created_at, updated_at`

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (rut, name, alias, email, phone, contacts, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		c.RUT,
		c.Name,
		nullableStrToValue(c.Alias),
		nullableStrToValue(c.Email),
		nullableStrToValue(c.Phone),
		nullableStrToValue(c.Contacts),
		nullableStrToValue(c.Notes),
		c.CreatedAt.Format(time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading client id: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (r *SQLiteClientRepo) GetByRUT(ctx context.Context, rut string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE rut = ?`, rut)
	return scanClient(row)
}

func (r *SQLiteClientRepo) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}
	return clients, nil
}

func (r *SQLiteClientRepo) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET rut = ?, name = ?, alias = ?, email = ?, phone = ?, contacts = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		c.RUT,
		c.Name,
		nullableStrToValue(c.Alias),
		nullableStrToValue(c.Email),
		nullableStrToValue(c.Phone),
		nullableStrToValue(c.Contacts),
		nullableStrToValue(c.Notes),
		c.UpdatedAt.Format(time.RFC3339),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row scanner) (*domain.Client, error) {
	var c domain.Client
	var alias, email, phone, contacts, notes sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&c.ID, &c.RUT, &c.Name,
		&alias, &email, &phone, &contacts, &notes,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}

	c.Alias = parseNullableStr(alias)
	c.Email = parseNullableStr(email)
	c.Phone = parseNullableStr(phone)
	c.Contacts = parseNullableStr(contacts)
	c.Notes = parseNullableStr(notes)

	var parseErr error
	c.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	c.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &c, nil
}
