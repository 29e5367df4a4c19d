package models

// BoardQuery selects the calendar window and lane dimension to project.
type BoardQuery struct {
	ScheduleID int64        `form:"schedule_id" validate:"required"`
	Date       string       `form:"date" validate:"required"`
	View       CalendarView `form:"view"`
	GroupBy    GroupBy      `form:"group_by"`
}

// MoveLessonRequest captures a drag of a lesson onto a new slot and,
// optionally, a new lane. Times are schedule-local wall-clock strings.
type MoveLessonRequest struct {
	LessonID         int64   `json:"lesson_id" validate:"required"`
	Date             string  `json:"date" validate:"required"`
	StartTime        string  `json:"start_time" validate:"required"`
	EndTime          string  `json:"end_time" validate:"required"`
	GroupBy          GroupBy `json:"group_by"`
	TargetResourceID string  `json:"target_resource_id"`
}

// ResizeLessonRequest captures an in-place duration change. The lane never
// changes on resize.
type ResizeLessonRequest struct {
	LessonID  int64  `json:"lesson_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}
