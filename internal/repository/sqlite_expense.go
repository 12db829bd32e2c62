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

// SQLiteExpenseRepo implements ExpenseRepo using a SQLite database.
type SQLiteExpenseRepo struct {
	db db.DBTX
}

// NewSQLiteExpenseRepo creates a new SQLiteExpenseRepo.
func NewSQLiteExpenseRepo(dbtx db.DBTX) *SQLiteExpenseRepo {
	return &SQLiteExpenseRepo{db: dbtx}
}

const expenseColumns = `id, procedure_id, reason, document_type, document_number, amount_uf, organism, paid_at, billed_at, created_at`

func (r *SQLiteExpenseRepo) Create(ctx context.Context, e *domain.Expense) error {
	query := `INSERT INTO expenses (procedure_id, reason, document_type, document_number, amount_uf, organism, paid_at, billed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		e.ProcedureID,
		e.Reason,
		string(e.DocumentType),
		nullableStrToValue(e.DocumentNumber),
		e.AmountUF.String(),
		nullableStrToValue(e.Organism),
		nullableTimeToString(e.PaidAt, dateLayout),
		nullableTimeToString(e.BilledAt, dateLayout),
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading expense id: %w", err)
	}
	return nil
}

func (r *SQLiteExpenseRepo) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	return scanExpense(row)
}

func (r *SQLiteExpenseRepo) ListByProcedure(ctx context.Context, procedureID int64) ([]*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE procedure_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, procedureID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expenses: %w", err)
	}
	return expenses, nil
}

func (r *SQLiteExpenseRepo) Update(ctx context.Context, e *domain.Expense) error {
	query := `UPDATE expenses SET reason = ?, document_type = ?, document_number = ?, amount_uf = ?, organism = ?, paid_at = ?, billed_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		e.Reason,
		string(e.DocumentType),
		nullableStrToValue(e.DocumentNumber),
		e.AmountUF.String(),
		nullableStrToValue(e.Organism),
		nullableTimeToString(e.PaidAt, dateLayout),
		nullableTimeToString(e.BilledAt, dateLayout),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating expense: %w", err)
	}
	return nil
}

func (r *SQLiteExpenseRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	return nil
}

func (r *SQLiteExpenseRepo) DeleteByProcedure(ctx context.Context, procedureID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE procedure_id = ?`, procedureID); err != nil {
		return fmt.Errorf("deleting procedure expenses: %w", err)
	}
	return nil
}

func scanExpense(row scanner) (*domain.Expense, error) {
	var e domain.Expense
	var documentNumber, organism, paidAt, billedAt sql.NullString
	var documentTypeStr, amountStr, createdAtStr string

	err := row.Scan(
		&e.ID, &e.ProcedureID, &e.Reason,
		&documentTypeStr, &documentNumber, &amountStr, &organism,
		&paidAt, &billedAt, &createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("expense: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning expense: %w", err)
	}

	e.DocumentType = domain.DocumentType(documentTypeStr)
	e.DocumentNumber = parseNullableStr(documentNumber)
	e.Organism = parseNullableStr(organism)
	e.PaidAt = parseNullableTime(paidAt, dateLayout)
	e.BilledAt = parseNullableTime(billedAt, dateLayout)

	if e.AmountUF, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("parsing amount_uf: %w", err)
	}

	var parseErr error
	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}

	return &e, nil
}
