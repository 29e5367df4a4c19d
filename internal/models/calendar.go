package models

import "time"

// GroupBy selects the lane dimension of the calendar grid.
type GroupBy string

const (
	GroupByNone      GroupBy = "none"
	GroupByGroup     GroupBy = "group"
	GroupByProfessor GroupBy = "professor"
	GroupByRoom      GroupBy = "room"
)

// Valid reports whether the grouping dimension is known.
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByNone, GroupByGroup, GroupByProfessor, GroupByRoom:
		return true
	}
	return false
}

// Placeholder lanes for lessons missing the grouped attribute, plus the
// online lane of the room dimension.
const (
	ResourceNoGroup      = "no-group"
	ResourceNoAssignment = "no-assignment"
	ResourceNoRoom       = "no-room"
	ResourceOnline       = "online"
)

// CalendarView is the active calendar window.
type CalendarView string

const (
	ViewDay  CalendarView = "day"
	ViewWeek CalendarView = "week"
)

// CalendarResource is a grid lane lessons are plotted against.
type CalendarResource struct {
	ResourceID    string `json:"resource_id"`
	ResourceTitle string `json:"resource_title"`
}

// EventDetails carries the display attributes of a plotted lesson.
type EventDetails struct {
	Lesson     Lesson `json:"lesson"`
	LessonType string `json:"lesson_type"`
	IsOnline   bool   `json:"is_online"`
	Room       string `json:"room"`
	Professor  string `json:"professor"`
	Subject    string `json:"subject"`
	Group      string `json:"group"`
	TimeStr    string `json:"time_str"`
}

// CalendarEvent is the renderable unit of the board. Start and End are local
// wall-clock datetimes assembled from the lesson's date and times.
type CalendarEvent struct {
	ID         int64        `json:"id"`
	Title      string       `json:"title"`
	Start      time.Time    `json:"start"`
	End        time.Time    `json:"end"`
	ResourceID string       `json:"resource_id,omitempty"`
	Details    EventDetails `json:"details"`
}

// BoardView bundles the projected lanes and events for one calendar window.
// Resources is nil when grouping is off and the calendar renders flat.
type BoardView struct {
	Resources []CalendarResource `json:"resources,omitempty"`
	Events    []CalendarEvent    `json:"events"`
}

// NavigationTarget points the calendar at the day of a flagged lesson.
type NavigationTarget struct {
	Date string       `json:"date"`
	View CalendarView `json:"view"`
}
