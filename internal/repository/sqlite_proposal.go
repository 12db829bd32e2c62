package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caudal/internal/db"
	"caudal/internal/domain"
)

// SQLiteProposalRepo implements ProposalRepo using a SQLite database.
type SQLiteProposalRepo struct {
	db db.DBTX
}

// NewSQLiteProposalRepo creates a new SQLiteProposalRepo.
func NewSQLiteProposalRepo(dbtx db.DBTX) *SQLiteProposalRepo {
	return &SQLiteProposalRepo{db: dbtx}
}

const proposalColumns = `id, client_id, title, description, billing_mode, total_fee_uf, notes, created_at, updated_at`

func (r *SQLiteProposalRepo) Create(ctx context.Context, p *domain.Proposal) error {
	query := `INSERT INTO proposals (client_id, title, description, billing_mode, total_fee_uf, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		p.ClientID,
		p.Title,
		nullableStrToValue(p.Description),
		string(p.BillingMode),
		nullableDecimalToValue(p.TotalFeeUF),
		nullableStrToValue(p.Notes),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting proposal: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading proposal id: %w", err)
	}
	return nil
}

func (r *SQLiteProposalRepo) GetByID(ctx context.Context, id int64) (*domain.Proposal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id)
	return scanProposal(row)
}

func (r *SQLiteProposalRepo) List(ctx context.Context) ([]*domain.Proposal, error) {
	return r.list(ctx, `SELECT `+proposalColumns+` FROM proposals ORDER BY created_at DESC`)
}

func (r *SQLiteProposalRepo) ListByClient(ctx context.Context, clientID int64) ([]*domain.Proposal, error) {
	return r.list(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE client_id = ? ORDER BY created_at DESC`, clientID)
}

func (r *SQLiteProposalRepo) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Proposal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating proposals: %w", err)
	}
	return proposals, nil
}

func (r *SQLiteProposalRepo) Update(ctx context.Context, p *domain.Proposal) error {
	query := `UPDATE proposals SET client_id = ?, title = ?, description = ?, billing_mode = ?, total_fee_uf = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.ClientID,
		p.Title,
		nullableStrToValue(p.Description),
		string(p.BillingMode),
		nullableDecimalToValue(p.TotalFeeUF),
		nullableStrToValue(p.Notes),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating proposal: %w", err)
	}
	return nil
}

func (r *SQLiteProposalRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM proposals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting proposal: %w", err)
	}
	return nil
}

func scanProposal(row scanner) (*domain.Proposal, error) {
	var p domain.Proposal
	var description, totalFee, notes sql.NullString
	var billingModeStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&p.ID, &p.ClientID, &p.Title,
		&description, &billingModeStr, &totalFee, &notes,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("proposal: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning proposal: %w", err)
	}

	p.Description = parseNullableStr(description)
	p.BillingMode = domain.BillingMode(billingModeStr)
	p.Notes = parseNullableStr(notes)
	if p.TotalFeeUF, err = parseNullableDecimal(totalFee); err != nil {
		return nil, fmt.Errorf("parsing total_fee_uf: %w", err)
	}

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &p, nil
}
