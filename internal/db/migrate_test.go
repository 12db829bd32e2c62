package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time — should succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"clients", "proposals", "milestones", "procedures",
		"steps", "expenses", "todos", "water_rights", "uf_rates",
	}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_proposals_client",
		"idx_milestones_proposal",
		"idx_procedures_client",
		"idx_procedures_status",
		"idx_procedures_type",
		"idx_procedures_last_action",
		"idx_steps_procedure",
		"idx_steps_milestone",
		"idx_expenses_procedure",
		"idx_todos_procedure",
		"idx_water_rights_procedure",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_ClientRUTUnique(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO clients (rut, name, created_at, updated_at)
		VALUES ('12345678-5', 'Agrícola Primera', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO clients (rut, name, created_at, updated_at)
		VALUES ('12345678-5', 'Agrícola Segunda', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "duplicate RUT should violate unique constraint")
}

func TestMigrate_ProcedureStatusCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO clients (id, rut, name, created_at, updated_at)
		VALUES (1, '12345678-5', 'Cliente', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO procedures (client_id, type, status, last_action_at, created_at, updated_at)
		VALUES (1, 'ADM_STANDARD', 'INVALID', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "invalid status should be rejected by CHECK constraint")

	_, err = db.Exec(`INSERT INTO procedures (client_id, type, status, last_action_at, created_at, updated_at)
		VALUES (1, 'ADM_STANDARD', 'IN_PROGRESS', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_BillingModeCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO clients (id, rut, name, created_at, updated_at)
		VALUES (1, '12345678-5', 'Cliente', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO proposals (client_id, title, billing_mode, created_at, updated_at)
		VALUES (1, 'Propuesta', 'POR_EVENTO', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "invalid billing mode should be rejected by CHECK constraint")
}

func TestMigrate_StepsAutoincrementAndDefaults(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO clients (id, rut, name, created_at, updated_at)
		VALUES (1, '12345678-5', 'Cliente', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO procedures (id, client_id, type, last_action_at, created_at, updated_at)
		VALUES (1, 1, 'ADM_STANDARD', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	res, err := db.Exec(`INSERT INTO steps (procedure_id, step_order, title, created_at, updated_at)
		VALUES (1, 1, 'Recopilación de antecedentes', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	var done int
	var milestoneID sql.NullInt64
	err = db.QueryRow(`SELECT done, milestone_id FROM steps WHERE id = ?`, id).Scan(&done, &milestoneID)
	require.NoError(t, err)
	assert.Equal(t, 0, done)
	assert.False(t, milestoneID.Valid)
}

func TestMigrate_UFRateDateUnique(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO uf_rates (date, value) VALUES ('2025-06-01', '39123.45')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO uf_rates (date, value) VALUES ('2025-06-01', '39200.00')`)
	assert.Error(t, err, "duplicate rate date should violate unique constraint")
}
