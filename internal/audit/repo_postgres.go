package audit

import (
	"context"
	"database/sql"

	"voicera-console/pkg/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS console_audit_events (
	id           UUID PRIMARY KEY,
	org_id       TEXT NOT NULL,
	type         TEXT NOT NULL,
	actor_email  TEXT NOT NULL DEFAULT '',
	ip_address   TEXT NOT NULL DEFAULT '',
	request_id   TEXT NOT NULL DEFAULT '',
	agent_type   TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL DEFAULT '',
	target       TEXT NOT NULL DEFAULT '',
	outcome      TEXT NOT NULL,
	message      TEXT NOT NULL DEFAULT '',
	metadata     JSONB,
	created_at   TIMESTAMPTZ NOT NULL
)`

const schemaIndex = `
CREATE INDEX IF NOT EXISTS console_audit_events_org_created
	ON console_audit_events (org_id, created_at DESC)`

// PostgresRepo stores events in console_audit_events. It only ever inserts.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// Migrate creates the table and index when missing.
func (r *PostgresRepo) Migrate(ctx context.Context) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, schemaIndex)
		return err
	})
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO console_audit_events
	(id, org_id, type, actor_email, ip_address, request_id, agent_type, phone_number, target, outcome, message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`
	var metadata any
	if e.Metadata != "" {
		metadata = e.Metadata
	}
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.OrgID,
		string(e.Type),
		e.ActorEmail,
		e.IPAddress,
		e.RequestID,
		e.AgentType,
		e.PhoneNumber,
		e.Target,
		string(e.Outcome),
		e.Message,
		metadata,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) Recent(ctx context.Context, orgID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT id, org_id, type, actor_email, ip_address, request_id, agent_type, phone_number, target, outcome, message, COALESCE(metadata::text, ''), created_at
FROM console_audit_events
WHERE org_id = $1
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID,
			&e.OrgID,
			&e.Type,
			&e.ActorEmail,
			&e.IPAddress,
			&e.RequestID,
			&e.AgentType,
			&e.PhoneNumber,
			&e.Target,
			&e.Outcome,
			&e.Message,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
