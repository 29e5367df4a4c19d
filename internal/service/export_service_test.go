package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
)

type fakeExportUpstream struct {
	file   *upstream.ExportFile
	window []models.Lesson

	exportCalls int
	lastFormat  string
	lastGroups  []int64
}

func (f *fakeExportUpstream) ExportSchedule(_ context.Context, _ upstream.TokenSource, _ int64, format string, groupIDs []int64, _ string) (*upstream.ExportFile, error) {
	f.exportCalls++
	f.lastFormat = format
	f.lastGroups = groupIDs
	copied := *f.file
	return &copied, nil
}

func (f *fakeExportUpstream) CalendarLessons(_ context.Context, _ upstream.TokenSource, _ int64, _, _ string) (*models.CalendarLessonList, error) {
	return &models.CalendarLessonList{Items: f.window, Count: len(f.window)}, nil
}

type fakeExportHealth struct {
	health *ScheduleHealth
	groups *models.ScheduleGroupList

	healthCalls int
}

func (f *fakeExportHealth) Health(_ context.Context, _ upstream.TokenSource, _ int64) (*ScheduleHealth, error) {
	f.healthCalls++
	return f.health, nil
}

func (f *fakeExportHealth) Groups(_ context.Context, _ upstream.TokenSource, _ int64) (*models.ScheduleGroupList, error) {
	return f.groups, nil
}

func exportFixtures(hasIssues bool) (*fakeExportUpstream, *fakeExportHealth) {
	up := &fakeExportUpstream{
		file:   &upstream.ExportFile{Data: []byte("bytes"), Filename: ""},
		window: []models.Lesson{*mathLesson()},
	}
	total := 0
	if hasIssues {
		total = 2
	}
	health := &fakeExportHealth{
		health: &ScheduleHealth{
			Conflicts:   &models.ConflictsSummary{TotalConflicts: total},
			Warnings:    &models.WorkloadWarningList{},
			TotalIssues: total,
			HasIssues:   hasIssues,
		},
		groups: &models.ScheduleGroupList{Groups: []models.GroupRef{{ID: 3}, {ID: 8}}},
	}
	return up, health
}

func newExportService(up *fakeExportUpstream, health *fakeExportHealth) *ExportService {
	return NewExportService(up, health, nil, nil, ExportConfig{DefaultFormat: FormatExcel})
}

func TestExportHeldWhenIssuesUnconfirmed(t *testing.T) {
	up, health := exportFixtures(true)
	svc := newExportService(up, health)

	result, err := svc.Export(context.Background(), staticTokenSource{}, ExportRequest{ScheduleID: 7})
	require.NoError(t, err)
	require.NotNil(t, result.PendingIssues)
	assert.Nil(t, result.File)
	assert.Equal(t, 2, result.PendingIssues.TotalIssues)
	assert.Zero(t, up.exportCalls)
}

func TestExportConfirmedRendersOnce(t *testing.T) {
	up, health := exportFixtures(true)
	svc := newExportService(up, health)

	result, err := svc.Export(context.Background(), staticTokenSource{}, ExportRequest{ScheduleID: 7, Confirmed: true})
	require.NoError(t, err)
	require.NotNil(t, result.File)
	assert.Nil(t, result.PendingIssues)
	assert.Equal(t, 1, up.exportCalls)
	assert.Zero(t, health.healthCalls)
}

func TestExportCleanScheduleSkipsGate(t *testing.T) {
	up, health := exportFixtures(false)
	svc := newExportService(up, health)

	result, err := svc.Export(context.Background(), staticTokenSource{}, ExportRequest{ScheduleID: 7})
	require.NoError(t, err)
	require.NotNil(t, result.File)
	assert.Equal(t, 1, up.exportCalls)
	assert.Equal(t, FormatExcel, up.lastFormat)
}

func TestExportAllGroupsSelectedSendsNoFilter(t *testing.T) {
	up, health := exportFixtures(false)
	svc := newExportService(up, health)

	_, err := svc.Export(context.Background(), staticTokenSource{}, ExportRequest{
		ScheduleID: 7,
		GroupIDs:   []int64{8, 3},
	})
	require.NoError(t, err)
	assert.Nil(t, up.lastGroups)
}

func TestExportSubsetOfGroupsKeptSorted(t *testing.T) {
	up, health := exportFixtures(false)
	svc := newExportService(up, health)

	_, err := svc.Export(context.Background(), staticTokenSource{}, ExportRequest{
		ScheduleID: 7,
		GroupIDs:   []int64{8},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, up.lastGroups)
}

func TestExportFallbackFilename(t *testing.T) {
	up, health := exportFixtures(false)
	svc := newExportService(up, health)

	result, err := svc.Export(context.Background(), staticTokenSource{}, ExportRequest{ScheduleID: 7, Format: FormatPDF})
	require.NoError(t, err)
	assert.Equal(t, "schedule-7.pdf", result.File.Filename)
}

func TestExportUpstreamFilenameWins(t *testing.T) {
	up, health := exportFixtures(false)
	up.file.Filename = "spring-2025.xlsx"
	svc := newExportService(up, health)

	result, err := svc.Export(context.Background(), staticTokenSource{}, ExportRequest{ScheduleID: 7})
	require.NoError(t, err)
	assert.Equal(t, "spring-2025.xlsx", result.File.Filename)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	up, health := exportFixtures(false)
	svc := newExportService(up, health)

	_, err := svc.Export(context.Background(), staticTokenSource{}, ExportRequest{ScheduleID: 7, Format: "docx"})
	require.Error(t, err)
	assert.Zero(t, up.exportCalls)
}

func TestBoardReportRendersLocally(t *testing.T) {
	up, health := exportFixtures(false)
	svc := newExportService(up, health)

	file, err := svc.BoardReport(context.Background(), staticTokenSource{}, 7, "2025-03-12", models.ViewDay, FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, "schedule-7.xlsx", file.Filename)
	assert.NotEmpty(t, file.Data)

	pdf, err := svc.BoardReport(context.Background(), staticTokenSource{}, 7, "2025-03-12", models.ViewDay, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.NotEmpty(t, pdf.Data)
}
