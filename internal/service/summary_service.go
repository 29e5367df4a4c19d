package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/msu-tj/schedule-desk-api/internal/board"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
)

type summaryUpstream interface {
	ConflictsSummary(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*models.ConflictsSummary, error)
	WorkloadWarnings(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*models.WorkloadWarningList, error)
	ScheduleGroups(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*models.ScheduleGroupList, error)
}

// SummaryConfig carries the cache TTLs for the aggregated payloads. Conflict
// and warning data stales fast after lesson edits, so their windows are short.
type SummaryConfig struct {
	ConflictsTTL time.Duration
	WarningsTTL  time.Duration
	GroupsTTL    time.Duration
}

// ScheduleHealth is the combined issue snapshot the dashboard header shows.
type ScheduleHealth struct {
	Conflicts   *models.ConflictsSummary    `json:"conflicts"`
	Warnings    *models.WorkloadWarningList `json:"warnings"`
	TotalIssues int                         `json:"total_issues"`
	HasIssues   bool                        `json:"has_issues"`
}

// SummaryService aggregates conflicts, workload warnings and group rosters
// per schedule, with short-lived caching in front of the upstream.
type SummaryService struct {
	upstream summaryUpstream
	cache    boardCache
	logger   *zap.Logger
	config   SummaryConfig
}

// NewSummaryService constructs a SummaryService instance.
func NewSummaryService(up summaryUpstream, cache boardCache, logger *zap.Logger, config SummaryConfig) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{upstream: up, cache: cache, logger: logger, config: config}
}

// Conflicts returns the conflict summary for a schedule.
func (s *SummaryService) Conflicts(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*models.ConflictsSummary, error) {
	key := fmt.Sprintf("schedule:%d:conflicts", scheduleID)

	cached := &models.ConflictsSummary{}
	if s.cacheGet(ctx, key, cached) {
		return cached, nil
	}

	summary, err := s.upstream.ConflictsSummary(ctx, ts, scheduleID)
	if err != nil {
		return nil, err
	}
	if summary.TotalConflicts == 0 {
		summary.TotalConflicts = summary.CountTotal()
	}

	s.cacheSet(ctx, key, summary, s.config.ConflictsTTL)
	return summary, nil
}

// Warnings returns the workload overrun warnings local to a schedule.
func (s *SummaryService) Warnings(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*models.WorkloadWarningList, error) {
	key := fmt.Sprintf("schedule:%d:warnings", scheduleID)

	cached := &models.WorkloadWarningList{}
	if s.cacheGet(ctx, key, cached) {
		return cached, nil
	}

	warnings, err := s.upstream.WorkloadWarnings(ctx, ts, scheduleID)
	if err != nil {
		return nil, err
	}
	if warnings.TotalWarnings == 0 {
		warnings.TotalWarnings = len(warnings.Warnings)
	}

	s.cacheSet(ctx, key, warnings, s.config.WarningsTTL)
	return warnings, nil
}

// Groups returns the groups involved in a schedule's lessons.
func (s *SummaryService) Groups(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*models.ScheduleGroupList, error) {
	key := fmt.Sprintf("schedule:%d:groups", scheduleID)

	cached := &models.ScheduleGroupList{}
	if s.cacheGet(ctx, key, cached) {
		return cached, nil
	}

	groups, err := s.upstream.ScheduleGroups(ctx, ts, scheduleID)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, key, groups, s.config.GroupsTTL)
	return groups, nil
}

// Health bundles conflicts and warnings into the issue snapshot that gates
// exports and drives the header badge.
func (s *SummaryService) Health(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*ScheduleHealth, error) {
	conflicts, err := s.Conflicts(ctx, ts, scheduleID)
	if err != nil {
		return nil, err
	}
	warnings, err := s.Warnings(ctx, ts, scheduleID)
	if err != nil {
		return nil, err
	}

	total := conflicts.TotalConflicts + warnings.TotalWarnings
	return &ScheduleHealth{
		Conflicts:   conflicts,
		Warnings:    warnings,
		TotalIssues: total,
		HasIssues:   total > 0,
	}, nil
}

// NavigateTo resolves the calendar jump target for a flagged conflict or
// warning: the day view on the date of the first lesson in its list,
// skipping past lessons whose date does not parse.
func (s *SummaryService) NavigateTo(lessons []models.Lesson) *models.NavigationTarget {
	for i := range lessons {
		if _, err := board.ParseDate(lessons[i].Date); err != nil {
			continue
		}
		return &models.NavigationTarget{Date: lessons[i].Date, View: models.ViewDay}
	}
	return nil
}

// Invalidate drops every cached payload for a schedule.
func (s *SummaryService) Invalidate(ctx context.Context, scheduleID int64) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("schedule:%d:*", scheduleID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate schedule cache", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *SummaryService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Get(ctx, key, dest) == nil
}

func (s *SummaryService) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("failed to cache summary", zap.String("key", key), zap.Error(err))
	}
}
