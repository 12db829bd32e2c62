package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caudal/internal/db"
	"caudal/internal/domain"
)

// SQLiteMilestoneRepo implements MilestoneRepo using a SQLite database.
type SQLiteMilestoneRepo struct {
	db db.DBTX
}

// NewSQLiteMilestoneRepo creates a new SQLiteMilestoneRepo.
func NewSQLiteMilestoneRepo(dbtx db.DBTX) *SQLiteMilestoneRepo {
	return &SQLiteMilestoneRepo{db: dbtx}
}

const milestoneColumns = `id, proposal_id, title, fee_uf, due_date, is_triggered, triggered_at, note, created_at, updated_at`

func (r *SQLiteMilestoneRepo) Create(ctx context.Context, m *domain.Milestone) error {
	query := `INSERT INTO milestones (proposal_id, title, fee_uf, due_date, is_triggered, triggered_at, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		m.ProposalID,
		m.Title,
		nullableDecimalToValue(m.FeeUF),
		nullableTimeToString(m.DueDate, dateLayout),
		boolToInt(m.IsTriggered),
		nullableTimeToString(m.TriggeredAt, time.RFC3339),
		nullableStrToValue(m.Note),
		m.CreatedAt.Format(time.RFC3339),
		m.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting milestone: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading milestone id: %w", err)
	}
	return nil
}

func (r *SQLiteMilestoneRepo) GetByID(ctx context.Context, id int64) (*domain.Milestone, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+milestoneColumns+` FROM milestones WHERE id = ?`, id)
	return scanMilestone(row)
}

func (r *SQLiteMilestoneRepo) ListByProposal(ctx context.Context, proposalID int64) ([]*domain.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE proposal_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating milestones: %w", err)
	}
	return milestones, nil
}

// ListOverview returns every milestone joined with its proposal and client,
// newest proposals first. Feeds the consolidated milestone view.
func (r *SQLiteMilestoneRepo) ListOverview(ctx context.Context, clientID *int64) ([]MilestoneOverview, error) {
	query := `SELECT m.id, m.proposal_id, m.title, m.fee_uf, m.due_date, m.is_triggered, m.triggered_at, m.note, m.created_at, m.updated_at,
			p.title, c.id, c.name
		FROM milestones m
		JOIN proposals p ON p.id = m.proposal_id
		JOIN clients c ON c.id = p.client_id`
	var args []interface{}
	if clientID != nil {
		query += ` WHERE p.client_id = ?`
		args = append(args, *clientID)
	}
	query += ` ORDER BY p.created_at DESC, m.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing milestone overview: %w", err)
	}
	defer rows.Close()

	var overview []MilestoneOverview
	for rows.Next() {
		var o MilestoneOverview
		var feeUF, dueDate, triggeredAt, note sql.NullString
		var triggeredInt int
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&o.Milestone.ID, &o.Milestone.ProposalID, &o.Milestone.Title,
			&feeUF, &dueDate, &triggeredInt, &triggeredAt, &note,
			&createdAtStr, &updatedAtStr,
			&o.ProposalTitle, &o.ClientID, &o.ClientName,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning milestone overview: %w", err)
		}
		if o.Milestone.FeeUF, err = parseNullableDecimal(feeUF); err != nil {
			return nil, fmt.Errorf("parsing fee_uf: %w", err)
		}
		o.Milestone.DueDate = parseNullableTime(dueDate, dateLayout)
		o.Milestone.IsTriggered = intToBool(triggeredInt)
		o.Milestone.TriggeredAt = parseNullableTime(triggeredAt, time.RFC3339)
		o.Milestone.Note = parseNullableStr(note)
		if o.Milestone.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if o.Milestone.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		overview = append(overview, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating milestone overview: %w", err)
	}
	return overview, nil
}

func (r *SQLiteMilestoneRepo) Update(ctx context.Context, m *domain.Milestone) error {
	query := `UPDATE milestones SET title = ?, fee_uf = ?, due_date = ?, is_triggered = ?, triggered_at = ?, note = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		m.Title,
		nullableDecimalToValue(m.FeeUF),
		nullableTimeToString(m.DueDate, dateLayout),
		boolToInt(m.IsTriggered),
		nullableTimeToString(m.TriggeredAt, time.RFC3339),
		nullableStrToValue(m.Note),
		m.UpdatedAt.Format(time.RFC3339),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating milestone: %w", err)
	}
	return nil
}

func (r *SQLiteMilestoneRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting milestone: %w", err)
	}
	return nil
}

func (r *SQLiteMilestoneRepo) DeleteByProposal(ctx context.Context, proposalID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM milestones WHERE proposal_id = ?`, proposalID); err != nil {
		return fmt.Errorf("deleting proposal milestones: %w", err)
	}
	return nil
}

func scanMilestone(row scanner) (*domain.Milestone, error) {
	var m domain.Milestone
	var feeUF, dueDate, triggeredAt, note sql.NullString
	var triggeredInt int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&m.ID, &m.ProposalID, &m.Title,
		&feeUF, &dueDate, &triggeredInt, &triggeredAt, &note,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("milestone: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning milestone: %w", err)
	}

	if m.FeeUF, err = parseNullableDecimal(feeUF); err != nil {
		return nil, fmt.Errorf("parsing fee_uf: %w", err)
	}
	m.DueDate = parseNullableTime(dueDate, dateLayout)
	m.IsTriggered = intToBool(triggeredInt)
	m.TriggeredAt = parseNullableTime(triggeredAt, time.RFC3339)
	m.Note = parseNullableStr(note)

	var parseErr error
	m.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	m.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &m, nil
}
