package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadRowColumns = []string{"id", "summary", "transcript", "model", "source", "recipient", "message_id", "created_at"}

func TestPostgresRepository_Archive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	stored := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "summary", "transcript", "gemini-1.5", "chat-api", "owner@example.com", "msg-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(stored))

	repo := NewPostgresRepository(mock)
	lead := &Lead{
		Summary:    "summary",
		Transcript: "transcript",
		Model:      "gemini-1.5",
		Source:     "chat-api",
		Recipient:  "owner@example.com",
		MessageID:  "msg-1",
	}
	require.NoError(t, repo.Archive(context.Background(), lead))

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, stored, lead.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ArchiveError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO leads").WillReturnError(errors.New("connection reset"))

	err = NewPostgresRepository(mock).Archive(context.Background(), &Lead{Summary: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leads: insert failed")
}

func TestPostgresRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id").
		WithArgs("lead-1").
		WillReturnRows(pgxmock.NewRows(leadRowColumns).
			AddRow("lead-1", "summary", "transcript", "gemini-1.5", "chat-api", "owner@example.com", "", created))
	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)
	lead, err := repo.GetByID(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "chat-api", lead.Source)
	assert.Equal(t, created, lead.CreatedAt)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLeadNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM leads").
		WithArgs("chat-api", 50, 0).
		WillReturnRows(pgxmock.NewRows(leadRowColumns).
			AddRow("lead-2", "s2", "t2", "gemini-1.0", "chat-api", "owner@example.com", "", created).
			AddRow("lead-1", "s1", "t1", "gemini-1.5", "chat-api", "owner@example.com", "", created.Add(-time.Hour)))

	leads, err := NewPostgresRepository(mock).List(context.Background(), ListFilter{Source: "chat-api", Limit: 500})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "lead-2", leads[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Purge(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM leads").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := NewPostgresRepository(mock).Purge(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresRepository_PanicsWithoutPool(t *testing.T) {
	assert.Panics(t, func() { NewPostgresRepository(nil) })
}
