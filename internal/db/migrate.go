package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Deletion order is enforced by the application inside a unit of work
// (children before parents), so child tables reference their parents
// without ON DELETE CASCADE.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		rut        TEXT NOT NULL UNIQUE,
		name       TEXT NOT NULL,
		alias      TEXT,
		email      TEXT,
		phone      TEXT,
		contacts   TEXT,
		notes      TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS proposals (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id    INTEGER NOT NULL REFERENCES clients(id),
		title        TEXT NOT NULL,
		description  TEXT,
		billing_mode TEXT NOT NULL DEFAULT 'HITOS'
		             CHECK(billing_mode IN ('HITOS','HORA','MIXTO')),
		total_fee_uf TEXT,
		notes        TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_proposals_client ON proposals(client_id)`,

	`CREATE TABLE IF NOT EXISTS milestones (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		proposal_id  INTEGER NOT NULL REFERENCES proposals(id),
		title        TEXT NOT NULL,
		fee_uf       TEXT,
		due_date     TEXT,
		is_triggered INTEGER NOT NULL DEFAULT 0,
		triggered_at TEXT,
		note         TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_milestones_proposal ON milestones(proposal_id)`,

	`CREATE TABLE IF NOT EXISTS procedures (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id      INTEGER NOT NULL REFERENCES clients(id),
		proposal_id    INTEGER REFERENCES proposals(id),
		type           TEXT NOT NULL,
		title          TEXT,
		region         TEXT,
		province       TEXT,
		general_info   TEXT,
		status         TEXT NOT NULL DEFAULT 'PENDING'
		               CHECK(status IN ('PENDING','IN_PROGRESS','DONE')),
		done_at        TEXT,
		last_action_at TEXT NOT NULL,
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_procedures_client ON procedures(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_procedures_status ON procedures(status)`,
	`CREATE INDEX IF NOT EXISTS idx_procedures_type ON procedures(type)`,
	`CREATE INDEX IF NOT EXISTS idx_procedures_last_action ON procedures(last_action_at)`,

	`CREATE TABLE IF NOT EXISTS steps (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		procedure_id INTEGER NOT NULL REFERENCES procedures(id),
		milestone_id INTEGER REFERENCES milestones(id),
		step_order   INTEGER NOT NULL,
		title        TEXT NOT NULL,
		done         INTEGER NOT NULL DEFAULT 0,
		done_at      TEXT,
		comment      TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_steps_procedure ON steps(procedure_id)`,
	`CREATE INDEX IF NOT EXISTS idx_steps_milestone ON steps(milestone_id)`,

	`CREATE TABLE IF NOT EXISTS expenses (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		procedure_id    INTEGER NOT NULL REFERENCES procedures(id),
		reason          TEXT NOT NULL,
		document_type   TEXT NOT NULL DEFAULT 'OTRO'
		                CHECK(document_type IN ('BOLETA','FACTURA','OTRO')),
		document_number TEXT,
		amount_uf       TEXT NOT NULL,
		organism        TEXT,
		paid_at         TEXT,
		billed_at       TEXT,
		created_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_expenses_procedure ON expenses(procedure_id)`,

	`CREATE TABLE IF NOT EXISTS todos (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		procedure_id INTEGER NOT NULL REFERENCES procedures(id),
		text         TEXT NOT NULL,
		done         INTEGER NOT NULL DEFAULT 0,
		due_date     TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_todos_procedure ON todos(procedure_id)`,

	`CREATE TABLE IF NOT EXISTS water_rights (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		procedure_id INTEGER NOT NULL REFERENCES procedures(id),
		naturaleza   TEXT NOT NULL DEFAULT 'SUBTERRANEO'
		             CHECK(naturaleza IN ('SUBTERRANEO','SUPERFICIAL')),
		foja         TEXT NOT NULL,
		numero       TEXT NOT NULL,
		anio         INTEGER NOT NULL,
		cbr          TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_water_rights_procedure ON water_rights(procedure_id)`,

	`CREATE TABLE IF NOT EXISTS uf_rates (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		date  TEXT NOT NULL UNIQUE,
		value TEXT NOT NULL
	)`,
}
