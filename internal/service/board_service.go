package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/msu-tj/schedule-desk-api/internal/board"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type boardUpstream interface {
	CalendarLessons(ctx context.Context, ts upstream.TokenSource, scheduleID int64, dateFrom, dateTo string) (*models.CalendarLessonList, error)
	Lesson(ctx context.Context, ts upstream.TokenSource, lessonID int64) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, ts upstream.TokenSource, lessonID int64, payload models.LessonPayload) (*models.Lesson, error)
}

type boardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// BoardConfig carries the cache TTL for calendar windows.
type BoardConfig struct {
	LessonsTTL time.Duration
}

// BoardService serves the calendar board: projecting lesson windows onto the
// grouped grid and committing drag and resize interactions back upstream.
type BoardService struct {
	upstream  boardUpstream
	cache     boardCache
	validator *validator.Validate
	logger    *zap.Logger
	config    BoardConfig
}

// NewBoardService constructs a BoardService instance.
func NewBoardService(up boardUpstream, cache boardCache, validate *validator.Validate, logger *zap.Logger, config BoardConfig) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BoardService{upstream: up, cache: cache, validator: validate, logger: logger, config: config}
}

// View fetches the lessons of the requested window and projects them onto
// the grouped board.
func (s *BoardService) View(ctx context.Context, ts upstream.TokenSource, query models.BoardQuery) (*models.BoardView, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid board query")
	}
	if query.View == "" {
		query.View = models.ViewWeek
	}
	if query.GroupBy == "" {
		query.GroupBy = models.GroupByNone
	}
	if !query.GroupBy.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown grouping %q", query.GroupBy))
	}

	date, err := board.ParseDate(query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	from, to := board.DateRange(date, query.View)
	lessons, err := s.windowLessons(ctx, ts, query.ScheduleID, from, to)
	if err != nil {
		return nil, err
	}

	view := board.Project(lessons, query.GroupBy)
	return &view, nil
}

// MoveLesson commits a drag: the lesson takes the dropped slot's date and
// times, and when the board is grouped, the target lane's attribute.
func (s *BoardService) MoveLesson(ctx context.Context, ts upstream.TokenSource, req models.MoveLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	lesson, err := s.upstream.Lesson(ctx, ts, req.LessonID)
	if err != nil {
		return nil, err
	}

	payload := models.PayloadFromLesson(lesson)
	payload.Date = req.Date
	payload.StartTime = req.StartTime
	payload.EndTime = req.EndTime

	if err := s.applyLaneChange(ctx, ts, lesson, &payload, req); err != nil {
		return nil, err
	}

	updated, err := s.upstream.UpdateLesson(ctx, ts, req.LessonID, payload)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, lesson.ScheduleID)
	s.logger.Info("lesson moved",
		zap.Int64("lesson_id", req.LessonID),
		zap.String("date", req.Date),
		zap.String("group_by", string(req.GroupBy)),
	)
	return updated, nil
}

// ResizeLesson commits a duration change. Only the date and times move; the
// group, assignment and room stay as they are.
func (s *BoardService) ResizeLesson(ctx context.Context, ts upstream.TokenSource, req models.ResizeLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resize payload")
	}

	lesson, err := s.upstream.Lesson(ctx, ts, req.LessonID)
	if err != nil {
		return nil, err
	}

	payload := models.PayloadFromLesson(lesson)
	payload.Date = req.Date
	payload.StartTime = req.StartTime
	payload.EndTime = req.EndTime

	updated, err := s.upstream.UpdateLesson(ctx, ts, req.LessonID, payload)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, lesson.ScheduleID)
	return updated, nil
}

// applyLaneChange maps the drop target onto the payload for grouped boards.
func (s *BoardService) applyLaneChange(ctx context.Context, ts upstream.TokenSource, lesson *models.Lesson, payload *models.LessonPayload, req models.MoveLessonRequest) error {
	if req.GroupBy == models.GroupByNone || req.GroupBy == "" || req.TargetResourceID == "" {
		return nil
	}
	if req.TargetResourceID == board.ResourceID(lesson, req.GroupBy) {
		return nil
	}

	switch req.GroupBy {
	case models.GroupByGroup:
		// Dropping onto the placeholder lane keeps the current group.
		if req.TargetResourceID == models.ResourceNoGroup {
			return nil
		}
		groupID, err := parseResourceID(req.TargetResourceID)
		if err != nil {
			return err
		}
		payload.GroupID = groupID
		return nil

	case models.GroupByProfessor:
		if req.TargetResourceID == models.ResourceNoAssignment {
			return appErrors.Clone(appErrors.ErrUnassignedTarget, "")
		}
		assignmentID, err := parseResourceID(req.TargetResourceID)
		if err != nil {
			return err
		}
		if err := s.validateSubjectAssignment(ctx, ts, lesson, assignmentID, req.Date); err != nil {
			return err
		}
		payload.SubjectAssignmentID = assignmentID
		return nil

	case models.GroupByRoom:
		switch req.TargetResourceID {
		case models.ResourceOnline:
			payload.IsOnline = true
			payload.RoomID = nil
		case models.ResourceNoRoom:
			// The placeholder lane carries no room to assign.
		default:
			roomID, err := parseResourceID(req.TargetResourceID)
			if err != nil {
				return err
			}
			payload.IsOnline = false
			payload.RoomID = &roomID
		}
		return nil
	}

	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown grouping %q", req.GroupBy))
}

// validateSubjectAssignment confirms the target lane's assignment covers the
// lesson's subject. A professor lane identifies a subject assignment, so a
// lesson may only land there when its subject matches the assignment's.
func (s *BoardService) validateSubjectAssignment(ctx context.Context, ts upstream.TokenSource, lesson *models.Lesson, assignmentID int64, date string) error {
	if lesson.Subject == nil {
		return appErrors.Clone(appErrors.ErrSubjectMismatch, "lesson has no subject to match")
	}

	day, err := board.ParseDate(date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	from, to := board.DateRange(day, models.ViewWeek)

	lessons, err := s.windowLessons(ctx, ts, lesson.ScheduleID, from, to)
	if err != nil {
		return err
	}

	for i := range lessons {
		if lessons[i].SubjectAssignmentID != assignmentID {
			continue
		}
		if lessons[i].Subject != nil && lessons[i].Subject.ID == lesson.Subject.ID {
			return nil
		}
		return appErrors.Clone(appErrors.ErrSubjectMismatch, "")
	}
	return appErrors.Clone(appErrors.ErrSubjectMismatch, "target lane has no lessons of this subject")
}

func (s *BoardService) windowLessons(ctx context.Context, ts upstream.TokenSource, scheduleID int64, from, to string) ([]models.Lesson, error) {
	key := fmt.Sprintf("schedule:%d:lessons:%s:%s", scheduleID, from, to)

	cached := &models.CalendarLessonList{}
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, cached); err == nil {
			return cached.Items, nil
		}
	}

	list, err := s.upstream.CalendarLessons(ctx, ts, scheduleID, from, to)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, list, s.config.LessonsTTL); err != nil {
			s.logger.Warn("failed to cache lesson window", zap.String("key", key), zap.Error(err))
		}
	}
	return list.Items, nil
}

// invalidate drops every cached payload scoped to the schedule. Conflict
// summaries and workload warnings derive from lessons, so a lesson mutation
// stales them all at once.
func (s *BoardService) invalidate(ctx context.Context, scheduleID int64) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("schedule:%d:*", scheduleID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate schedule cache", zap.String("pattern", pattern), zap.Error(err))
	}
}

func parseResourceID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid resource id %q", raw))
	}
	return id, nil
}
