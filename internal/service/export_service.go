package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/msu-tj/schedule-desk-api/internal/board"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
	"github.com/msu-tj/schedule-desk-api/pkg/export"
)

// Export formats accepted by the upstream render endpoint.
const (
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

type exportUpstream interface {
	ExportSchedule(ctx context.Context, ts upstream.TokenSource, scheduleID int64, format string, groupIDs []int64, filename string) (*upstream.ExportFile, error)
	CalendarLessons(ctx context.Context, ts upstream.TokenSource, scheduleID int64, dateFrom, dateTo string) (*models.CalendarLessonList, error)
}

type exportHealth interface {
	Health(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*ScheduleHealth, error)
	Groups(ctx context.Context, ts upstream.TokenSource, scheduleID int64) (*models.ScheduleGroupList, error)
}

// ExportRequest selects what to render and whether open issues were
// acknowledged.
type ExportRequest struct {
	ScheduleID int64   `json:"schedule_id" validate:"required"`
	Format     string  `json:"format"`
	GroupIDs   []int64 `json:"group_ids"`
	Filename   string  `json:"filename"`
	Confirmed  bool    `json:"confirmed"`
}

// ExportResult is either a rendered file or, when the schedule has open
// issues and the request was not confirmed, the issue snapshot to review.
type ExportResult struct {
	File          *upstream.ExportFile
	PendingIssues *ScheduleHealth
}

// ExportConfig carries export defaults.
type ExportConfig struct {
	DefaultFormat string
}

// ExportService orchestrates schedule downloads: the issue gate in front,
// group selection normalisation, and the upstream render call. It also
// renders board listings locally as a fallback report.
type ExportService struct {
	upstream  exportUpstream
	health    exportHealth
	validator *validator.Validate
	logger    *zap.Logger
	config    ExportConfig
	xlsx      *export.XLSXExporter
	pdf       *export.PDFExporter
}

// NewExportService constructs an ExportService instance.
func NewExportService(up exportUpstream, health exportHealth, validate *validator.Validate, logger *zap.Logger, config ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.DefaultFormat == "" {
		config.DefaultFormat = FormatExcel
	}
	return &ExportService{
		upstream:  up,
		health:    health,
		validator: validate,
		logger:    logger,
		config:    config,
		xlsx:      export.NewXLSXExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Export runs the download flow. With open conflicts or workload warnings an
// unconfirmed request stops at the gate: no upstream render happens and the
// issues come back for review. A confirmed request renders exactly once.
func (s *ExportService) Export(ctx context.Context, ts upstream.TokenSource, req ExportRequest) (*ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	format, err := s.normalizeFormat(req.Format)
	if err != nil {
		return nil, err
	}

	if !req.Confirmed {
		health, err := s.health.Health(ctx, ts, req.ScheduleID)
		if err != nil {
			return nil, err
		}
		if health.HasIssues {
			s.logger.Info("export held for confirmation",
				zap.Int64("schedule_id", req.ScheduleID),
				zap.Int("total_issues", health.TotalIssues),
			)
			return &ExportResult{PendingIssues: health}, nil
		}
	}

	groupIDs, err := s.normalizeGroups(ctx, ts, req.ScheduleID, req.GroupIDs)
	if err != nil {
		return nil, err
	}

	file, err := s.upstream.ExportSchedule(ctx, ts, req.ScheduleID, format, groupIDs, req.Filename)
	if err != nil {
		return nil, err
	}
	if file.Filename == "" {
		file.Filename = s.fallbackFilename(req.ScheduleID, req.Filename, format)
	}

	s.logger.Info("schedule exported",
		zap.Int64("schedule_id", req.ScheduleID),
		zap.String("format", format),
		zap.String("filename", file.Filename),
	)
	return &ExportResult{File: file}, nil
}

// BoardReport renders the lessons of a calendar window into a local tabular
// document, bypassing the upstream renderer.
func (s *ExportService) BoardReport(ctx context.Context, ts upstream.TokenSource, scheduleID int64, date string, view models.CalendarView, format string) (*upstream.ExportFile, error) {
	normalized, err := s.normalizeFormat(format)
	if err != nil {
		return nil, err
	}

	day, err := board.ParseDate(date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	from, to := board.DateRange(day, view)

	list, err := s.upstream.CalendarLessons(ctx, ts, scheduleID, from, to)
	if err != nil {
		return nil, err
	}

	dataset := boardDataset(list.Items)
	title := fmt.Sprintf("Schedule %s to %s", from, to)

	var data []byte
	var contentType string
	switch normalized {
	case FormatPDF:
		data, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		data, err = s.xlsx.Render(dataset, "Schedule")
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render board report")
	}

	return &upstream.ExportFile{
		Data:        data,
		Filename:    s.fallbackFilename(scheduleID, "", normalized),
		ContentType: contentType,
	}, nil
}

func (s *ExportService) normalizeFormat(format string) (string, error) {
	if format == "" {
		format = s.config.DefaultFormat
	}
	switch format {
	case FormatExcel, FormatPDF:
		return format, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}

// normalizeGroups maps "every group selected" to no filter at all, so the
// upstream renders the complete schedule instead of an explicit list.
func (s *ExportService) normalizeGroups(ctx context.Context, ts upstream.TokenSource, scheduleID int64, selected []int64) ([]int64, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	roster, err := s.health.Groups(ctx, ts, scheduleID)
	if err != nil {
		return nil, err
	}
	if len(selected) >= len(roster.Groups) && coversRoster(selected, roster.Groups) {
		return nil, nil
	}

	ids := append([]int64(nil), selected...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func coversRoster(selected []int64, roster []models.GroupRef) bool {
	chosen := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}
	for _, group := range roster {
		if _, ok := chosen[group.ID]; !ok {
			return false
		}
	}
	return true
}

func (s *ExportService) fallbackFilename(scheduleID int64, requested, format string) string {
	name := requested
	if name == "" {
		name = fmt.Sprintf("schedule-%d", scheduleID)
	}
	if format == FormatPDF {
		return name + ".pdf"
	}
	return name + ".xlsx"
}

func boardDataset(lessons []models.Lesson) export.Dataset {
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].Date != lessons[j].Date {
			return lessons[i].Date < lessons[j].Date
		}
		return lessons[i].StartTime < lessons[j].StartTime
	})

	headers := []string{"Date", "Time", "Subject", "Group", "Professor", "Room", "Type"}
	rows := make([]map[string]string, 0, len(lessons))
	for i := range lessons {
		lesson := &lessons[i]

		room := "No Room"
		if lesson.IsOnline {
			room = "Online"
		} else if lesson.Room != nil && lesson.Room.Number != "" {
			room = lesson.Room.Number
		}

		subject := ""
		if lesson.Subject != nil {
			subject = lesson.Subject.Name
		}
		group := ""
		if lesson.Group != nil {
			group = lesson.Group.Name
		}

		rows = append(rows, map[string]string{
			"Date":      lesson.Date,
			"Time":      lesson.StartTime + " - " + lesson.EndTime,
			"Subject":   subject,
			"Group":     group,
			"Professor": lesson.Professor.FullName(),
			"Room":      room,
			"Type":      lesson.LessonType,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
