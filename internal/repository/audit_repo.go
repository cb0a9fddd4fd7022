package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/workforce-ai/corsgate/internal/models"
)

// MaxAuditPage caps ListRecent.
const MaxAuditPage = 500

// DBTX is the part of *pgxpool.Pool the repository uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AuditRepository handles data access for audit events.
type AuditRepository struct {
	pool DBTX
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool DBTX) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const auditColumns = `id, kind, origin, principal, method, path, reason, correlation_id, created_at`

func scanAuditEvent(row pgx.Row, e *models.AuditEvent) error {
	return row.Scan(
		&e.ID,
		&e.Kind,
		&e.Origin,
		&e.Principal,
		&e.Method,
		&e.Path,
		&e.Reason,
		&e.CorrelationID,
		&e.CreatedAt,
	)
}

// Record inserts an audit event, assigning ID and CreatedAt when unset.
func (r *AuditRepository) Record(ctx context.Context, e *models.AuditEvent) error {
	if e == nil {
		return errors.New("audit event cannot be nil")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_events (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		e.ID, e.Kind, e.Origin, e.Principal, e.Method, e.Path, e.Reason, e.CorrelationID, e.CreatedAt,
	)
	return err
}

// ListRecent returns the newest events, optionally filtered by kind.
func (r *AuditRepository) ListRecent(ctx context.Context, kind string, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 || limit > MaxAuditPage {
		limit = MaxAuditPage
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_events
		WHERE ($1 = '' OR kind = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.AuditEvent, 0)
	for rows.Next() {
		var e models.AuditEvent
		if err := scanAuditEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteOlderThan removes events created before cutoff. Call from a
// background job.
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
