package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type fakeViewStateRepo struct {
	records map[string]*models.ViewStateRecord
	getErr  error
	deleted []string
}

func newFakeViewStateRepo() *fakeViewStateRepo {
	return &fakeViewStateRepo{records: map[string]*models.ViewStateRecord{}}
}

func (f *fakeViewStateRepo) key(userID, tableKey string) string {
	return userID + "/" + tableKey
}

func (f *fakeViewStateRepo) Get(_ context.Context, userID, tableKey string) (*models.ViewStateRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	record, ok := f.records[f.key(userID, tableKey)]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return record, nil
}

func (f *fakeViewStateRepo) List(_ context.Context, userID string) ([]models.ViewStateRecord, error) {
	var out []models.ViewStateRecord
	for _, record := range f.records {
		if record.UserID == userID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (f *fakeViewStateRepo) Upsert(_ context.Context, record *models.ViewStateRecord) error {
	f.records[f.key(record.UserID, record.TableKey)] = record
	return nil
}

func (f *fakeViewStateRepo) Delete(_ context.Context, userID, tableKey string) error {
	key := f.key(userID, tableKey)
	if _, ok := f.records[key]; !ok {
		return appErrors.ErrNotFound
	}
	delete(f.records, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func TestViewStateServiceGetDefaultsWhenMissing(t *testing.T) {
	svc := NewViewStateService(newFakeViewStateRepo(), nil, nil)

	state, err := svc.Get(context.Background(), "17", "schedules")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Pagination.Page)
	assert.Empty(t, state.Sorting.SortBy)
	assert.NotNil(t, state.Filters)
}

func TestViewStateServiceGetRoundTrip(t *testing.T) {
	repo := newFakeViewStateRepo()
	svc := NewViewStateService(repo, nil, nil)

	err := svc.Save(context.Background(), "17", SaveViewStateRequest{
		TableKey: "groups",
		State: models.TableViewState{
			Pagination: models.PaginationState{Page: 3, PageSize: 50},
			Sorting:    models.SortingState{SortBy: "name", Desc: true},
			Filters:    models.FilterValues{"faculty_ids": {"2"}},
		},
	})
	require.NoError(t, err)

	state, err := svc.Get(context.Background(), "17", "groups")
	require.NoError(t, err)
	assert.Equal(t, 3, state.Pagination.Page)
	assert.Equal(t, 50, state.Pagination.PageSize)
	assert.True(t, state.Sorting.Desc)
	assert.Equal(t, []string{"2"}, state.Filters["faculty_ids"])
}

func TestViewStateServiceGetResetsCorruptBlob(t *testing.T) {
	repo := newFakeViewStateRepo()
	repo.records["17/schedules"] = &models.ViewStateRecord{
		UserID:   "17",
		TableKey: "schedules",
		State:    json.RawMessage(`{"pagination": "not-an-object"`),
	}
	svc := NewViewStateService(repo, nil, nil)

	state, err := svc.Get(context.Background(), "17", "schedules")
	require.NoError(t, err)
	assert.Equal(t, models.TableViewState{Filters: models.FilterValues{}}, *state)
}

func TestViewStateServiceSaveRequiresTableKey(t *testing.T) {
	svc := NewViewStateService(newFakeViewStateRepo(), nil, nil)

	err := svc.Save(context.Background(), "17", SaveViewStateRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestViewStateServiceListScopedToUser(t *testing.T) {
	repo := newFakeViewStateRepo()
	svc := NewViewStateService(repo, nil, nil)

	require.NoError(t, svc.Save(context.Background(), "17", SaveViewStateRequest{TableKey: "schedules"}))
	require.NoError(t, svc.Save(context.Background(), "99", SaveViewStateRequest{TableKey: "schedules"}))

	records, err := svc.List(context.Background(), "17")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "17", records[0].UserID)
}

func TestViewStateServiceReset(t *testing.T) {
	repo := newFakeViewStateRepo()
	svc := NewViewStateService(repo, nil, nil)

	require.NoError(t, svc.Save(context.Background(), "17", SaveViewStateRequest{TableKey: "schedules"}))
	require.NoError(t, svc.Reset(context.Background(), "17", "schedules"))

	appErr := appErrors.FromError(svc.Reset(context.Background(), "17", "schedules"))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
