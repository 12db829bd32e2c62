package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caudal/internal/db"
	"caudal/internal/domain"
)

// SQLiteTodoRepo implements TodoRepo using a SQLite database.
type SQLiteTodoRepo struct {
	db db.DBTX
}

// NewSQLiteTodoRepo creates a new SQLiteTodoRepo.
func NewSQLiteTodoRepo(dbtx db.DBTX) *SQLiteTodoRepo {
	return &SQLiteTodoRepo{db: dbtx}
}

const todoColumns = `id, procedure_id, text, done, due_date, created_at, updated_at`

func (r *SQLiteTodoRepo) Create(ctx context.Context, t *domain.Todo) error {
	query := `INSERT INTO todos (procedure_id, text, done, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		t.ProcedureID,
		t.Text,
		boolToInt(t.Done),
		nullableTimeToString(t.DueDate, dateLayout),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting todo: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading todo id: %w", err)
	}
	return nil
}

func (r *SQLiteTodoRepo) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	return scanTodo(row)
}

func (r *SQLiteTodoRepo) ListByProcedure(ctx context.Context, procedureID int64) ([]*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE procedure_id = ? ORDER BY done, due_date IS NULL, due_date, id`
	rows, err := r.db.QueryContext(ctx, query, procedureID)
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	defer rows.Close()

	var todos []*domain.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}
	return todos, nil
}

func (r *SQLiteTodoRepo) Update(ctx context.Context, t *domain.Todo) error {
	query := `UPDATE todos SET text = ?, done = ?, due_date = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		t.Text,
		boolToInt(t.Done),
		nullableTimeToString(t.DueDate, dateLayout),
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}
	return nil
}

func (r *SQLiteTodoRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return nil
}

func (r *SQLiteTodoRepo) DeleteByProcedure(ctx context.Context, procedureID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE procedure_id = ?`, procedureID); err != nil {
		return fmt.Errorf("deleting procedure todos: %w", err)
	}
	return nil
}

func scanTodo(row scanner) (*domain.Todo, error) {
	var t domain.Todo
	var doneInt int
	var dueDate sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(&t.ID, &t.ProcedureID, &t.Text, &doneInt, &dueDate, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("todo: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning todo: %w", err)
	}

	t.Done = intToBool(doneInt)
	t.DueDate = parseNullableTime(dueDate, dateLayout)

	var parseErr error
	t.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	t.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &t, nil
}
