package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-ai/corsgate/internal/models"
)

func newMockRepo(t *testing.T) (*AuditRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewAuditRepository(mock), mock
}

var auditColumnNames = []string{"id", "kind", "origin", "principal", "method", "path", "reason", "correlation_id", "created_at"}

func TestAuditRepository_Record(t *testing.T) {
	repo, mock := newMockRepo(t)

	e := &models.AuditEvent{
		Kind:   models.AuditOriginRejected,
		Origin: "https://evil.example.com",
		Method: "GET",
		Path:   "/api/v1/whoami",
		Reason: "origin not in allow-list",
	}
	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs(pgxmock.AnyArg(), e.Kind, e.Origin, "", e.Method, e.Path, e.Reason, "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Record(context.Background(), e))
	assert.NotEqual(t, uuid.Nil, e.ID, "ID should be assigned")
	assert.False(t, e.CreatedAt.IsZero(), "CreatedAt should be assigned")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_RecordKeepsProvidedFields(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := &models.AuditEvent{ID: id, Kind: models.AuditAuthDenied, CreatedAt: at}
	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs(id, e.Kind, "", "", "", "", "", "", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Record(context.Background(), e))
	assert.Equal(t, id, e.ID)
	assert.Equal(t, at, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_RecordNil(t *testing.T) {
	repo, _ := newMockRepo(t)
	assert.Error(t, repo.Record(context.Background(), nil))
}

func TestAuditRepository_RecordError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO audit_events").WillReturnError(errors.New("connection reset"))

	err := repo.Record(context.Background(), &models.AuditEvent{Kind: models.AuditAuthDenied})
	assert.Error(t, err)
}

func TestAuditRepository_ListRecent(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	at := time.Now().UTC().Truncate(time.Second)
	rows := pgxmock.NewRows(auditColumnNames).
		AddRow(id, models.AuditAuthDenied, "https://app.example.com", "", "GET", "/api/v1/whoami", "invalid token", "corr-1", at)
	mock.ExpectQuery("FROM audit_events").
		WithArgs(models.AuditAuthDenied, 10).
		WillReturnRows(rows)

	events, err := repo.ListRecent(context.Background(), models.AuditAuthDenied, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.Equal(t, "corr-1", events[0].CorrelationID)
	assert.Equal(t, at, events[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_ListRecentClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero", 0, MaxAuditPage},
		{"negative", -5, MaxAuditPage},
		{"too large", MaxAuditPage + 1, MaxAuditPage},
		{"in range", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectQuery("FROM audit_events").
				WithArgs("", tt.want).
				WillReturnRows(pgxmock.NewRows(auditColumnNames))

			events, err := repo.ListRecent(context.Background(), "", tt.limit)
			require.NoError(t, err)
			assert.Empty(t, events)
			assert.NotNil(t, events, "an empty page should encode as []")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAuditRepository_DeleteOlderThan(t *testing.T) {
	repo, mock := newMockRepo(t)

	cutoff := time.Now().Add(-720 * time.Hour)
	mock.ExpectExec(`DELETE FROM audit_events WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
