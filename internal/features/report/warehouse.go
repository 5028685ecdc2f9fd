package report

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const createStepsTable = `
CREATE TABLE IF NOT EXISTS approval_steps (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	module TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	requester_id TEXT NOT NULL,
	level_order INTEGER NOT NULL,
	required_role TEXT NOT NULL,
	status TEXT NOT NULL,
	approver_id TEXT,
	action_at TIMESTAMPTZ,
	notes TEXT
)`

const createAuditTable = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	action TEXT NOT NULL,
	module TEXT NOT NULL,
	record_id TEXT NOT NULL,
	actor_id TEXT,
	occurred_at TIMESTAMPTZ
)`

// warehouse wraps the Postgres reporting target. Each export run opens a
// fresh connection; the warehouse is not on the request path.
type warehouse struct {
	db *sql.DB
}

func openWarehouse(connStr string) (*warehouse, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	w := &warehouse{db: db}
	if err := w.ensureTables(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

func (w *warehouse) close() error {
	return w.db.Close()
}

func (w *warehouse) ensureTables() error {
	for _, stmt := range []string{createStepsTable, createAuditTable} {
		if _, err := w.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure warehouse table: %w", err)
		}
	}
	return nil
}

func (w *warehouse) upsertStep(row stepRow) error {
	_, err := w.db.Exec(`
		INSERT INTO approval_steps
			(id, tenant_id, module, entity_id, requester_id, level_order, required_role, status, approver_id, action_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = $8, approver_id = $9, action_at = $10, notes = $11`,
		row.ID, row.TenantID, row.Module, row.EntityID, row.RequesterID,
		row.LevelOrder, row.RequiredRole, row.Status, row.ApproverID, row.ActionAt, row.Notes,
	)
	return err
}

func (w *warehouse) upsertAudit(row auditRow) error {
	_, err := w.db.Exec(`
		INSERT INTO audit_entries
			(id, tenant_id, action, module, record_id, actor_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		row.ID, row.TenantID, row.Action, row.Module, row.RecordID, row.ActorID, row.OccurredAt,
	)
	return err
}
