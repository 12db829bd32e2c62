package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caudal/internal/db"
	"caudal/internal/domain"
)

// SQLiteStepRepo implements StepRepo using a SQLite database.
type SQLiteStepRepo struct {
	db db.DBTX
}

// NewSQLiteStepRepo creates a new SQLiteStepRepo.
func NewSQLiteStepRepo(dbtx db.DBTX) *SQLiteStepRepo {
	return &SQLiteStepRepo{db: dbtx}
}

const stepColumns = `id, procedure_id, milestone_id, step_order, title, done, done_at, comment, created_at, updated_at`

func (r *SQLiteStepRepo) Create(ctx context.Context, s *domain.Step) error {
	query := `INSERT INTO steps (procedure_id, milestone_id, step_order, title, done, done_at, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		s.ProcedureID,
		nullableInt64ToValue(s.MilestoneID),
		s.Order,
		s.Title,
		boolToInt(s.Done),
		nullableTimeToString(s.DoneAt, time.RFC3339),
		nullableStrToValue(s.Comment),
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting step: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading step id: %w", err)
	}
	return nil
}

func (r *SQLiteStepRepo) GetByID(ctx context.Context, id int64) (*domain.Step, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+stepColumns+` FROM steps WHERE id = ?`, id)
	return scanStep(row)
}

func (r *SQLiteStepRepo) ListByProcedure(ctx context.Context, procedureID int64) ([]*domain.Step, error) {
	query := `SELECT ` + stepColumns + ` FROM steps WHERE procedure_id = ? ORDER BY step_order, id`
	rows, err := r.db.QueryContext(ctx, query, procedureID)
	if err != nil {
		return nil, fmt.Errorf("listing steps: %w", err)
	}
	defer rows.Close()

	var steps []*domain.Step
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating steps: %w", err)
	}
	return steps, nil
}

// MaxOrder returns the highest step_order for a procedure, 0 if it has no steps.
func (r *SQLiteStepRepo) MaxOrder(ctx context.Context, procedureID int64) (int, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(step_order) FROM steps WHERE procedure_id = ?`, procedureID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading max step order: %w", err)
	}
	return int(max.Int64), nil
}

func (r *SQLiteStepRepo) Update(ctx context.Context, s *domain.Step) error {
	query := `UPDATE steps SET milestone_id = ?, step_order = ?, title = ?, done = ?, done_at = ?, comment = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		nullableInt64ToValue(s.MilestoneID),
		s.Order,
		s.Title,
		boolToInt(s.Done),
		nullableTimeToString(s.DoneAt, time.RFC3339),
		nullableStrToValue(s.Comment),
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating step: %w", err)
	}
	return nil
}

// UnlinkMilestone clears milestone_id on every step bound to the given
// milestone, used before milestones are deleted.
func (r *SQLiteStepRepo) UnlinkMilestone(ctx context.Context, milestoneID int64) error {
	query := `UPDATE steps SET milestone_id = NULL, updated_at = ? WHERE milestone_id = ?`
	if _, err := r.db.ExecContext(ctx, query, nowUTC(), milestoneID); err != nil {
		return fmt.Errorf("unlinking milestone from steps: %w", err)
	}
	return nil
}

func (r *SQLiteStepRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting step: %w", err)
	}
	return nil
}

func (r *SQLiteStepRepo) DeleteByProcedure(ctx context.Context, procedureID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE procedure_id = ?`, procedureID); err != nil {
		return fmt.Errorf("deleting procedure steps: %w", err)
	}
	return nil
}

func scanStep(row scanner) (*domain.Step, error) {
	var s domain.Step
	var milestoneID sql.NullInt64
	var doneAt, comment sql.NullString
	var doneInt int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&s.ID, &s.ProcedureID, &milestoneID, &s.Order, &s.Title,
		&doneInt, &doneAt, &comment,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("step: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning step: %w", err)
	}

	s.MilestoneID = parseNullableInt64(milestoneID)
	s.Done = intToBool(doneInt)
	s.DoneAt = parseNullableTime(doneAt, time.RFC3339)
	s.Comment = parseNullableStr(comment)

	var parseErr error
	s.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	s.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &s, nil
}
