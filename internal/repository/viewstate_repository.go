package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

// ViewStateRepository persists per-user table view state: pagination, sorting
// and filter selections, keyed by table.
type ViewStateRepository struct {
	db *sqlx.DB
}

// NewViewStateRepository constructs the repository.
func NewViewStateRepository(db *sqlx.DB) *ViewStateRepository {
	return &ViewStateRepository{db: db}
}

// Get fetches the stored state for a user and table key.
func (r *ViewStateRepository) Get(ctx context.Context, userID, tableKey string) (*models.ViewStateRecord, error) {
	const query = `SELECT user_id, table_key, state, updated_at FROM view_states WHERE user_id = $1 AND table_key = $2`
	var record models.ViewStateRecord
	if err := r.db.GetContext(ctx, &record, query, userID, tableKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get view state: %w", err)
	}
	return &record, nil
}

// List fetches every stored state for a user.
func (r *ViewStateRepository) List(ctx context.Context, userID string) ([]models.ViewStateRecord, error) {
	const query = `SELECT user_id, table_key, state, updated_at FROM view_states WHERE user_id = $1 ORDER BY table_key ASC`
	var records []models.ViewStateRecord
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("list view states: %w", err)
	}
	return records, nil
}

// Upsert inserts or replaces the state for a user and table key.
func (r *ViewStateRepository) Upsert(ctx context.Context, record *models.ViewStateRecord) error {
	const query = `INSERT INTO view_states (user_id, table_key, state, updated_at)
VALUES (:user_id, :table_key, :state, :updated_at)
ON CONFLICT (user_id, table_key)
DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`
	record.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert view state: %w", err)
	}
	return nil
}

// Delete removes the state for a user and table key.
func (r *ViewStateRepository) Delete(ctx context.Context, userID, tableKey string) error {
	const query = `DELETE FROM view_states WHERE user_id = $1 AND table_key = $2`
	result, err := r.db.ExecContext(ctx, query, userID, tableKey)
	if err != nil {
		return fmt.Errorf("delete view state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete view state rows: %w", err)
	}
	if affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}
