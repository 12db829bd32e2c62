package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"caudal/internal/db"
	"caudal/internal/domain"
)

// SQLiteProcedureRepo implements ProcedureRepo using a SQLite database.
type SQLiteProcedureRepo struct {
	db db.DBTX
}

// NewSQLiteProcedureRepo creates a new SQLiteProcedureRepo.
func NewSQLiteProcedureRepo(dbtx db.DBTX) *SQLiteProcedureRepo {
	return &SQLiteProcedureRepo{db: dbtx}
}

const procedureColumns = `id, client_id, proposal_id, type, title, region, province, general_info, status, done_at, last_action_at, created_at, updated_at`

func (r *SQLiteProcedureRepo) Create(ctx context.Context, p *domain.Procedure) error {
	query := `INSERT INTO procedures (client_id, proposal_id, type, title, region, province, general_info, status, done_at, last_action_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		p.ClientID,
		nullableInt64ToValue(p.ProposalID),
		p.Type,
		nullableStrToValue(p.Title),
		nullableStrToValue(p.Region),
		nullableStrToValue(p.Province),
		nullableStrToValue(p.GeneralInfo),
		string(p.Status),
		nullableTimeToString(p.DoneAt, time.RFC3339),
		p.LastAction.Format(time.RFC3339),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting procedure: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading procedure id: %w", err)
	}
	return nil
}

func (r *SQLiteProcedureRepo) GetByID(ctx context.Context, id int64) (*domain.Procedure, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+procedureColumns+` FROM procedures WHERE id = ?`, id)
	return scanProcedure(row)
}

// filterClause builds a WHERE fragment and its args from a ProcedureFilter.
func filterClause(f ProcedureFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.ClientID != nil {
		conds = append(conds, "p.client_id = ?")
		args = append(args, *f.ClientID)
	}
	if f.Type != nil {
		conds = append(conds, "p.type = ?")
		args = append(args, *f.Type)
	} else if f.TypePrefix != nil {
		conds = append(conds, "p.type LIKE ? || '%'")
		args = append(args, *f.TypePrefix)
	}
	if f.Status != nil {
		conds = append(conds, "p.status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Region != nil {
		conds = append(conds, "p.region = ?")
		args = append(args, *f.Region)
	}
	if f.Province != nil {
		conds = append(conds, "p.province = ?")
		args = append(args, *f.Province)
	}
	for _, tag := range f.Tags {
		conds = append(conds, "p.general_info LIKE '%' || ? || '%'")
		args = append(args, tag)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause maps a filter's sort order to its ORDER BY fragment. Only the
// whitelisted orders are accepted; anything else falls back to the default.
func orderClause(order string) string {
	switch order {
	case OrderLastActionAsc:
		return " ORDER BY p.last_action_at ASC"
	case OrderCreatedDesc:
		return " ORDER BY p.created_at DESC"
	case OrderCreatedAsc:
		return " ORDER BY p.created_at ASC"
	default:
		return " ORDER BY p.last_action_at DESC"
	}
}

func (r *SQLiteProcedureRepo) List(ctx context.Context, f ProcedureFilter) ([]*domain.Procedure, error) {
	where, args := filterClause(f)
	query := `SELECT p.id, p.client_id, p.proposal_id, p.type, p.title, p.region, p.province, p.general_info, p.status, p.done_at, p.last_action_at, p.created_at, p.updated_at
		FROM procedures p` + where + orderClause(f.Order)
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing procedures: %w", err)
	}
	defer rows.Close()

	var procedures []*domain.Procedure
	for rows.Next() {
		p, err := scanProcedure(rows)
		if err != nil {
			return nil, err
		}
		procedures = append(procedures, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating procedures: %w", err)
	}
	return procedures, nil
}

func (r *SQLiteProcedureRepo) ListCards(ctx context.Context, f ProcedureFilter) ([]ProcedureCard, error) {
	where, args := filterClause(f)
	query := `SELECT p.id, p.client_id, p.proposal_id, p.type, p.title, p.region, p.province, p.general_info, p.status, p.done_at, p.last_action_at, p.created_at, p.updated_at,
			c.name, c.rut,
			(SELECT COUNT(*) FROM steps s WHERE s.procedure_id = p.id AND s.done = 1),
			(SELECT COUNT(*) FROM steps s WHERE s.procedure_id = p.id)
		FROM procedures p
		JOIN clients c ON c.id = p.client_id` + where + orderClause(f.Order)
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing procedure cards: %w", err)
	}
	defer rows.Close()

	var cards []ProcedureCard
	for rows.Next() {
		var card ProcedureCard
		p := &card.Procedure
		var proposalID sql.NullInt64
		var title, region, province, generalInfo, doneAt sql.NullString
		var statusStr, lastActionStr, createdAtStr, updatedAtStr string

		err := rows.Scan(
			&p.ID, &p.ClientID, &proposalID, &p.Type,
			&title, &region, &province, &generalInfo,
			&statusStr, &doneAt, &lastActionStr, &createdAtStr, &updatedAtStr,
			&card.ClientName, &card.ClientRUT,
			&card.DoneSteps, &card.TotalSteps,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning procedure card: %w", err)
		}

		p.ProposalID = parseNullableInt64(proposalID)
		p.Title = parseNullableStr(title)
		p.Region = parseNullableStr(region)
		p.Province = parseNullableStr(province)
		p.GeneralInfo = parseNullableStr(generalInfo)
		p.Status = domain.Status(statusStr)
		p.DoneAt = parseNullableTime(doneAt, time.RFC3339)
		if p.LastAction, err = time.Parse(time.RFC3339, lastActionStr); err != nil {
			return nil, fmt.Errorf("parsing last_action_at: %w", err)
		}
		if p.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating procedure cards: %w", err)
	}
	return cards, nil
}

func (r *SQLiteProcedureRepo) ListByClient(ctx context.Context, clientID int64) ([]*domain.Procedure, error) {
	return r.List(ctx, ProcedureFilter{ClientID: &clientID})
}

// ListTypes returns the distinct procedure types currently in use.
func (r *SQLiteProcedureRepo) ListTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT type FROM procedures ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("listing procedure types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning procedure type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating procedure types: %w", err)
	}
	return types, nil
}

func (r *SQLiteProcedureRepo) Update(ctx context.Context, p *domain.Procedure) error {
	query := `UPDATE procedures SET client_id = ?, proposal_id = ?, type = ?, title = ?, region = ?, province = ?, general_info = ?, status = ?, done_at = ?, last_action_at = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.ClientID,
		nullableInt64ToValue(p.ProposalID),
		p.Type,
		nullableStrToValue(p.Title),
		nullableStrToValue(p.Region),
		nullableStrToValue(p.Province),
		nullableStrToValue(p.GeneralInfo),
		string(p.Status),
		nullableTimeToString(p.DoneAt, time.RFC3339),
		p.LastAction.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating procedure: %w", err)
	}
	return nil
}

// TouchLastAction stamps the procedure's last activity. Every child mutation
// (step, expense, todo, water right) routes through this.
func (r *SQLiteProcedureRepo) TouchLastAction(ctx context.Context, id int64, at time.Time) error {
	ts := at.UTC().Format(time.RFC3339)
	query := `UPDATE procedures SET last_action_at = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, ts, ts, id); err != nil {
		return fmt.Errorf("touching procedure: %w", err)
	}
	return nil
}

// UnlinkProposal clears proposal_id on every procedure linked to the given
// proposal, used before the proposal itself is deleted.
func (r *SQLiteProcedureRepo) UnlinkProposal(ctx context.Context, proposalID int64) error {
	query := `UPDATE procedures SET proposal_id = NULL, updated_at = ? WHERE proposal_id = ?`
	if _, err := r.db.ExecContext(ctx, query, nowUTC(), proposalID); err != nil {
		return fmt.Errorf("unlinking proposal from procedures: %w", err)
	}
	return nil
}

func (r *SQLiteProcedureRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM procedures WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting procedure: %w", err)
	}
	return nil
}

func scanProcedure(row scanner) (*domain.Procedure, error) {
	var p domain.Procedure
	var proposalID sql.NullInt64
	var title, region, province, generalInfo, doneAt sql.NullString
	var statusStr, lastActionStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&p.ID, &p.ClientID, &proposalID, &p.Type,
		&title, &region, &province, &generalInfo,
		&statusStr, &doneAt, &lastActionStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("procedure: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning procedure: %w", err)
	}

	p.ProposalID = parseNullableInt64(proposalID)
	p.Title = parseNullableStr(title)
	p.Region = parseNullableStr(region)
	p.Province = parseNullableStr(province)
	p.GeneralInfo = parseNullableStr(generalInfo)
	p.Status = domain.Status(statusStr)
	p.DoneAt = parseNullableTime(doneAt, time.RFC3339)

	var parseErr error
	p.LastAction, parseErr = time.Parse(time.RFC3339, lastActionStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing last_action_at: %w", parseErr)
	}
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
