package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/msu-tj/schedule-desk-api/internal/filters"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type entityLister interface {
	List(ctx context.Context, ts upstream.TokenSource, entity string, q models.ListQuery) (*upstream.Page, error)
}

// Table keys with a declared filter set.
const (
	TableSchedules  = "schedules"
	TableGroups     = "groups"
	TableProfessors = "professors"
	TableUsers      = "users"
)

// FilterSetService builds the toolbar filter schema per table. Providers are
// declared per table and resolved against the caller's current selections, so
// dependent filters narrow as their parents are picked.
type FilterSetService struct {
	upstream entityLister
	logger   *zap.Logger
}

// NewFilterSetService constructs a FilterSetService instance.
func NewFilterSetService(up entityLister, logger *zap.Logger) *FilterSetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterSetService{upstream: up, logger: logger}
}

// Tables lists the table keys with a filter set.
func (s *FilterSetService) Tables() []string {
	return []string{TableSchedules, TableGroups, TableProfessors, TableUsers}
}

// Schema resolves the filter schema of a table against the given selections.
// Loaders run fresh per call so the options reflect current upstream data.
func (s *FilterSetService) Schema(ctx context.Context, ts upstream.TokenSource, tableKey string, values models.FilterValues) ([]models.FilterSchemaEntry, error) {
	providers, err := s.providersFor(ts, tableKey)
	if err != nil {
		return nil, err
	}

	resolver := filters.NewResolver(providers...)
	resolver.Load(ctx)
	if resolver.HasError() {
		s.logger.Warn("some filter providers failed to load", zap.String("table_key", tableKey))
	}
	return resolver.Resolve(values), nil
}

func (s *FilterSetService) providersFor(ts upstream.TokenSource, tableKey string) ([]*filters.Provider, error) {
	switch tableKey {
	case TableSchedules:
		return []*filters.Provider{
			s.facultyProvider(ts),
			s.directionProvider(ts),
			s.academicYearProvider(ts),
			periodProvider(),
			s.semesterProvider(ts),
		}, nil
	case TableGroups:
		return []*filters.Provider{
			s.facultyProvider(ts),
			s.directionProvider(ts),
			studyFormProvider(),
		}, nil
	case TableProfessors:
		return []*filters.Provider{
			s.facultyProvider(ts),
		}, nil
	case TableUsers:
		return []*filters.Provider{
			roleProvider(),
			userTypeProvider(),
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no filter set for table %q", tableKey))
}

func (s *FilterSetService) facultyProvider(ts upstream.TokenSource) *filters.Provider {
	type faculty struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	return filters.EntityBacked("faculty_ids", "Faculty", func(ctx context.Context) ([]filters.Item, error) {
		return loadItems(ctx, s.upstream, ts, "faculty", func(f faculty) filters.Item {
			return filters.Item{Value: strconv.FormatInt(f.ID, 10), Label: f.Name}
		})
	})
}

func (s *FilterSetService) directionProvider(ts upstream.TokenSource) *filters.Provider {
	type direction struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		FacultyID int64  `json:"faculty_id"`
	}
	provider := filters.EntityBacked("direction_ids", "Direction", func(ctx context.Context) ([]filters.Item, error) {
		return loadItems(ctx, s.upstream, ts, "direction", func(d direction) filters.Item {
			return filters.Item{
				Value: strconv.FormatInt(d.ID, 10),
				Label: d.Name,
				Attrs: map[string]string{"faculty_id": strconv.FormatInt(d.FacultyID, 10)},
			}
		})
	})
	return provider.Dependent(attrMatches("faculty_ids", "faculty_id"), "faculty_ids")
}

func (s *FilterSetService) academicYearProvider(ts upstream.TokenSource) *filters.Provider {
	type academicYear struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	return filters.EntityBacked("academic_year_ids", "Academic Year", func(ctx context.Context) ([]filters.Item, error) {
		return loadItems(ctx, s.upstream, ts, "academic_year", func(y academicYear) filters.Item {
			return filters.Item{Value: strconv.FormatInt(y.ID, 10), Label: y.Name}
		})
	})
}

func (s *FilterSetService) semesterProvider(ts upstream.TokenSource) *filters.Provider {
	type semester struct {
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		AcademicYearID int64  `json:"academic_year_id"`
		Period         string `json:"period"`
	}
	provider := filters.EntityBacked("semester_ids", "Semester", func(ctx context.Context) ([]filters.Item, error) {
		return loadItems(ctx, s.upstream, ts, "semester", func(sem semester) filters.Item {
			return filters.Item{
				Value: strconv.FormatInt(sem.ID, 10),
				Label: sem.Name,
				Attrs: map[string]string{
					"academic_year_id": strconv.FormatInt(sem.AcademicYearID, 10),
					"period":           sem.Period,
				},
			}
		})
	})
	yearMatch := attrMatches("academic_year_ids", "academic_year_id")
	periodMatch := attrMatches("periods", "period")
	return provider.Dependent(func(item filters.Item, values models.FilterValues) bool {
		return yearMatch(item, values) && periodMatch(item, values)
	}, "academic_year_ids", "periods")
}

func periodProvider() *filters.Provider {
	return filters.Static("periods", "Period", []filters.Item{
		{Value: "winter", Label: "Winter"},
		{Value: "summer", Label: "Summer"},
	})
}

func studyFormProvider() *filters.Provider {
	return filters.Static("study_forms", "Study Form", []filters.Item{
		{Value: "full-time", Label: "Full-time"},
		{Value: "part-time", Label: "Part-time"},
	})
}

func roleProvider() *filters.Provider {
	return filters.Static("user_roles", "Role", []filters.Item{
		{Value: "admin", Label: "Administrator"},
		{Value: "dispatcher", Label: "Dispatcher"},
		{Value: "user", Label: "User"},
	})
}

func userTypeProvider() *filters.Provider {
	provider := filters.Static("user_types", "User Type", []filters.Item{
		{Value: "student", Label: "Student"},
		{Value: "professor", Label: "Professor"},
	})
	return provider.VisibleWhen("user_roles", "user")
}

// attrMatches admits an item when the selection under filterKey is empty or
// contains the item's attrKey attribute.
func attrMatches(filterKey, attrKey string) filters.Predicate {
	return func(item filters.Item, values models.FilterValues) bool {
		if len(values.Selected(filterKey)) == 0 {
			return true
		}
		return values.Has(filterKey, item.Attrs[attrKey])
	}
}

// loadItems pages through an upstream entity collection and maps each record
// into a filter item.
func loadItems[T any](ctx context.Context, lister entityLister, ts upstream.TokenSource, entity string, mapItem func(T) filters.Item) ([]filters.Item, error) {
	const pageSize = 200

	items := []filters.Item{}
	for page := 1; ; page++ {
		records, total, err := upstream.ListAs[T](ctx, lister, ts, entity, models.ListQuery{Page: page, PageSize: pageSize})
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			items = append(items, mapItem(record))
		}
		if len(records) < pageSize || len(items) >= total {
			return items, nil
		}
	}
}
