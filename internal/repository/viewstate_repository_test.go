package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

func newViewStateRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestViewStateRepositoryGet(t *testing.T) {
	db, mock, cleanup := newViewStateRepoMock(t)
	defer cleanup()

	repo := NewViewStateRepository(db)
	state := json.RawMessage(`{"pagination":{"page":3,"pageSize":25}}`)
	rows := sqlmock.NewRows([]string{"user_id", "table_key", "state", "updated_at"}).
		AddRow("17", "groups", []byte(state), time.Now())
	mock.ExpectQuery("SELECT user_id, table_key, state").
		WithArgs("17", "groups").
		WillReturnRows(rows)

	record, err := repo.Get(context.Background(), "17", "groups")
	require.NoError(t, err)
	assert.Equal(t, "groups", record.TableKey)
	assert.JSONEq(t, string(state), string(record.State))
}

func TestViewStateRepositoryGetNotFound(t *testing.T) {
	db, mock, cleanup := newViewStateRepoMock(t)
	defer cleanup()

	repo := NewViewStateRepository(db)
	mock.ExpectQuery("SELECT user_id, table_key, state").
		WithArgs("17", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "table_key", "state", "updated_at"}))

	_, err := repo.Get(context.Background(), "17", "missing")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestViewStateRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newViewStateRepoMock(t)
	defer cleanup()

	repo := NewViewStateRepository(db)
	mock.ExpectExec("INSERT INTO view_states").
		WithArgs("17", "professors", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.ViewStateRecord{
		UserID:   "17",
		TableKey: "professors",
		State:    json.RawMessage(`{"sorting":{"sort_by":"surname","desc":false}}`),
	}
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.False(t, record.UpdatedAt.IsZero())
}

func TestViewStateRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newViewStateRepoMock(t)
	defer cleanup()

	repo := NewViewStateRepository(db)
	mock.ExpectExec("DELETE FROM view_states").
		WithArgs("17", "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "17", "gone")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
