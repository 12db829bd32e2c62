package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caudal/internal/db"
	"caudal/internal/domain"
)

// SQLiteWaterRightRepo implements WaterRightRepo using a SQLite database.
type SQLiteWaterRightRepo struct {
	db db.DBTX
}

// NewSQLiteWaterRightRepo creates a new SQLiteWaterRightRepo.
func NewSQLiteWaterRightRepo(dbtx db.DBTX) *SQLiteWaterRightRepo {
	return &SQLiteWaterRightRepo{db: dbtx}
}

const waterRightColumns = `id, procedure_id, naturaleza, foja, numero, anio, cbr, created_at`

func (r *SQLiteWaterRightRepo) Create(ctx context.Context, w *domain.WaterRight) error {
	query := `INSERT INTO water_rights (procedure_id, naturaleza, foja, numero, anio, cbr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		w.ProcedureID,
		string(w.Naturaleza),
		w.Foja,
		w.Numero,
		w.Anio,
		w.CBR,
		w.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting water right: %w", err)
	}
	w.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading water right id: %w", err)
	}
	return nil
}

func (r *SQLiteWaterRightRepo) GetByID(ctx context.Context, id int64) (*domain.WaterRight, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+waterRightColumns+` FROM water_rights WHERE id = ?`, id)
	return scanWaterRight(row)
}

func (r *SQLiteWaterRightRepo) ListByProcedure(ctx context.Context, procedureID int64) ([]*domain.WaterRight, error) {
	query := `SELECT ` + waterRightColumns + ` FROM water_rights WHERE procedure_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, procedureID)
	if err != nil {
		return nil, fmt.Errorf("listing water rights: %w", err)
	}
	defer rows.Close()

	var rights []*domain.WaterRight
	for rows.Next() {
		w, err := scanWaterRight(rows)
		if err != nil {
			return nil, err
		}
		rights = append(rights, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating water rights: %w", err)
	}
	return rights, nil
}

func (r *SQLiteWaterRightRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM water_rights WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting water right: %w", err)
	}
	return nil
}

func (r *SQLiteWaterRightRepo) DeleteByProcedure(ctx context.Context, procedureID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM water_rights WHERE procedure_id = ?`, procedureID); err != nil {
		return fmt.Errorf("deleting procedure water rights: %w", err)
	}
	return nil
}

func scanWaterRight(row scanner) (*domain.WaterRight, error) {
	var w domain.WaterRight
	var naturalezaStr, createdAtStr string

	err := row.Scan(&w.ID, &w.ProcedureID, &naturalezaStr, &w.Foja, &w.Numero, &w.Anio, &w.CBR, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("water right: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning water right: %w", err)
	}

	w.Naturaleza = domain.Naturaleza(naturalezaStr)

	var parseErr error
	w.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}

	return &w, nil
}
