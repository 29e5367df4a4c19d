package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type viewStateRepository interface {
	Get(ctx context.Context, userID, tableKey string) (*models.ViewStateRecord, error)
	List(ctx context.Context, userID string) ([]models.ViewStateRecord, error)
	Upsert(ctx context.Context, record *models.ViewStateRecord) error
	Delete(ctx context.Context, userID, tableKey string) error
}

// SaveViewStateRequest persists one table's UI state for the current user.
type SaveViewStateRequest struct {
	TableKey string                `json:"table_key" validate:"required"`
	State    models.TableViewState `json:"state"`
}

// ViewStateService persists per-user table state so pagination, sorting and
// filter selections survive across sessions and devices.
type ViewStateService struct {
	repo      viewStateRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewViewStateService constructs a ViewStateService instance.
func NewViewStateService(repo viewStateRepository, validate *validator.Validate, logger *zap.Logger) *ViewStateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ViewStateService{repo: repo, validator: validate, logger: logger}
}

// Get loads the stored state for one table, or an empty default when nothing
// was saved yet.
func (s *ViewStateService) Get(ctx context.Context, userID, tableKey string) (*models.TableViewState, error) {
	record, err := s.repo.Get(ctx, userID, tableKey)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrNotFound.Code {
			return &models.TableViewState{Filters: models.FilterValues{}}, nil
		}
		return nil, appErr
	}

	state := &models.TableViewState{}
	if err := json.Unmarshal(record.State, state); err != nil {
		// A corrupt blob resets to defaults rather than wedging the table.
		s.logger.Warn("dropping unreadable view state",
			zap.String("user_id", userID),
			zap.String("table_key", tableKey),
			zap.Error(err),
		)
		return &models.TableViewState{Filters: models.FilterValues{}}, nil
	}
	if state.Filters == nil {
		state.Filters = models.FilterValues{}
	}
	return state, nil
}

// List returns every stored table state for the user.
func (s *ViewStateService) List(ctx context.Context, userID string) ([]models.ViewStateRecord, error) {
	records, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return records, nil
}

// Save stores one table's state.
func (s *ViewStateService) Save(ctx context.Context, userID string, req SaveViewStateRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid view state payload")
	}

	blob, err := json.Marshal(req.State)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode view state")
	}

	record := &models.ViewStateRecord{
		UserID:   userID,
		TableKey: req.TableKey,
		State:    blob,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return appErrors.FromError(err)
	}
	return nil
}

// Reset removes one table's stored state.
func (s *ViewStateService) Reset(ctx context.Context, userID, tableKey string) error {
	if err := s.repo.Delete(ctx, userID, tableKey); err != nil {
		return appErrors.FromError(err)
	}
	return nil
}
