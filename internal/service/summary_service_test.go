package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type fakeSummaryUpstream struct {
	conflicts *models.ConflictsSummary
	warnings  *models.WorkloadWarningList
	groups    *models.ScheduleGroupList

	conflictCalls int
	warningCalls  int
	groupCalls    int
}

func (f *fakeSummaryUpstream) ConflictsSummary(_ context.Context, _ upstream.TokenSource, _ int64) (*models.ConflictsSummary, error) {
	f.conflictCalls++
	copied := *f.conflicts
	return &copied, nil
}

func (f *fakeSummaryUpstream) WorkloadWarnings(_ context.Context, _ upstream.TokenSource, _ int64) (*models.WorkloadWarningList, error) {
	f.warningCalls++
	copied := *f.warnings
	return &copied, nil
}

func (f *fakeSummaryUpstream) ScheduleGroups(_ context.Context, _ upstream.TokenSource, _ int64) (*models.ScheduleGroupList, error) {
	f.groupCalls++
	copied := *f.groups
	return &copied, nil
}

// roundTripCache stores marshalled payloads like the Redis repository does.
type roundTripCache struct {
	entries map[string][]byte
}

func (c *roundTripCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *roundTripCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[key] = raw
	return nil
}

func (c *roundTripCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := pattern[:len(pattern)-1]
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
	return nil
}

func summaryFixture() *fakeSummaryUpstream {
	return &fakeSummaryUpstream{
		conflicts: &models.ConflictsSummary{
			Single: []models.ConflictGroup{
				{Type: models.ConflictTypeRoom, Scope: models.ConflictScopeSingle, Count: 2},
			},
			Shared: []models.ConflictGroup{
				{Type: models.ConflictTypeProfessor, Scope: models.ConflictScopeShared, Count: 1},
			},
			TotalSingle: 2,
			TotalShared: 1,
		},
		warnings: &models.WorkloadWarningList{
			Warnings: []models.WorkloadWarning{{
				SubjectAssignmentID: 40,
				ProfessorName:       "Dilshod Rahimov",
				SubjectName:         "Calculus",
				ScheduledHours:      36,
				AllowedHours:        32,
				ExcessHours:         4,
				Lessons: []models.Lesson{
					{ID: 2, Date: "2025-03-14"},
					{ID: 1, Date: "2025-03-12"},
				},
			}},
		},
		groups: &models.ScheduleGroupList{Groups: []models.GroupRef{{ID: 3, Name: "FIT-101"}}},
	}
}

func newSummaryService(up *fakeSummaryUpstream, cache boardCache) *SummaryService {
	return NewSummaryService(up, cache, nil, SummaryConfig{
		ConflictsTTL: 30 * time.Second,
		WarningsTTL:  30 * time.Second,
		GroupsTTL:    60 * time.Second,
	})
}

func TestSummaryConflictsComputesTotal(t *testing.T) {
	svc := newSummaryService(summaryFixture(), &roundTripCache{})

	summary, err := svc.Conflicts(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalConflicts)
}

func TestSummaryCachesAcrossCalls(t *testing.T) {
	up := summaryFixture()
	svc := newSummaryService(up, &roundTripCache{})

	_, err := svc.Conflicts(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)
	_, err = svc.Conflicts(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, up.conflictCalls)

	_, err = svc.Groups(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)
	_, err = svc.Groups(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, up.groupCalls)
}

func TestSummaryInvalidateDropsScheduleKeys(t *testing.T) {
	up := summaryFixture()
	cache := &roundTripCache{}
	svc := newSummaryService(up, cache)

	_, err := svc.Conflicts(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)

	svc.Invalidate(context.Background(), 7)

	_, err = svc.Conflicts(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, up.conflictCalls)
}

func TestSummaryHealthAggregatesIssues(t *testing.T) {
	svc := newSummaryService(summaryFixture(), &roundTripCache{})

	health, err := svc.Health(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, health.TotalIssues)
	assert.True(t, health.HasIssues)
	assert.Equal(t, 1, health.Warnings.TotalWarnings)
}

func TestSummaryHealthCleanSchedule(t *testing.T) {
	up := summaryFixture()
	up.conflicts = &models.ConflictsSummary{}
	up.warnings = &models.WorkloadWarningList{}
	svc := newSummaryService(up, &roundTripCache{})

	health, err := svc.Health(context.Background(), staticTokenSource{}, 7)
	require.NoError(t, err)
	assert.False(t, health.HasIssues)
	assert.Zero(t, health.TotalIssues)
}

func TestSummaryNavigateToFirstLesson(t *testing.T) {
	svc := newSummaryService(summaryFixture(), &roundTripCache{})

	target := svc.NavigateTo([]models.Lesson{
		{ID: 2, Date: "2025-03-14"},
		{ID: 1, Date: "2025-03-12"},
	})
	require.NotNil(t, target)
	assert.Equal(t, "2025-03-14", target.Date)
	assert.Equal(t, models.ViewDay, target.View)
}

func TestSummaryNavigateToSkipsUnparsableDates(t *testing.T) {
	svc := newSummaryService(summaryFixture(), &roundTripCache{})

	target := svc.NavigateTo([]models.Lesson{
		{ID: 3, Date: "not-a-date"},
		{ID: 1, Date: "2025-03-12"},
	})
	require.NotNil(t, target)
	assert.Equal(t, "2025-03-12", target.Date)
}

func TestSummaryNavigateToNoParsableDates(t *testing.T) {
	svc := newSummaryService(summaryFixture(), &roundTripCache{})
	assert.Nil(t, svc.NavigateTo([]models.Lesson{{ID: 1, Date: "bad"}}))
}
