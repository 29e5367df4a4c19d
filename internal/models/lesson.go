package models

// Lesson types as delivered by the upstream API.
const (
	LessonTypeLecture  = "lecture"
	LessonTypePractice = "practice"
	LessonTypeLab      = "lab"
	LessonTypeSeminar  = "seminar"
)

// GroupRef is the group joined onto a lesson.
type GroupRef struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	StudyForm *StudyForm `json:"study_form,omitempty"`
}

// StudyForm is the mode of study attached to a group (full-time, extramural).
type StudyForm struct {
	ID   int64  `json:"id"`
	Form string `json:"form"`
}

// ProfessorRef is the professor joined onto a lesson.
type ProfessorRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// FullName renders "Name Surname" the way the dashboard displays professors.
func (p *ProfessorRef) FullName() string {
	if p == nil {
		return ""
	}
	if p.Name == "" {
		return p.Surname
	}
	if p.Surname == "" {
		return p.Name
	}
	return p.Name + " " + p.Surname
}

// SubjectRef is the subject joined onto a lesson.
type SubjectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RoomRef is the room joined onto a lesson. Number is the display identifier.
type RoomRef struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

// ScheduleRef identifies the schedule a lesson belongs to.
type ScheduleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WorkloadRef identifies the professor workload behind a subject assignment.
type WorkloadRef struct {
	ID int64 `json:"id"`
}

// Lesson is the calendar unit as consumed from the upstream API. Date and
// times stay strings on this side: they are wall-clock, schedule-local values
// ("2006-01-02" / "15:04:05") and must survive a projection round trip byte
// for byte.
type Lesson struct {
	ID                  int64         `json:"id"`
	ScheduleID          int64         `json:"schedule_id"`
	Date                string        `json:"date"`
	StartTime           string        `json:"start_time"`
	EndTime             string        `json:"end_time"`
	LessonType          string        `json:"lesson_type"`
	IsOnline            bool          `json:"is_online"`
	SubjectAssignmentID int64         `json:"subject_assignment_id"`
	Group               *GroupRef     `json:"group,omitempty"`
	Room                *RoomRef      `json:"room,omitempty"`
	Professor           *ProfessorRef `json:"professor,omitempty"`
	Subject             *SubjectRef   `json:"subject,omitempty"`
	Schedule            *ScheduleRef  `json:"schedule,omitempty"`
	Workload            *WorkloadRef  `json:"workload,omitempty"`
}

// LessonPayload is the complete representation the upstream update endpoint
// expects. Partial patches are not accepted there, so every mutation merges
// the original lesson into this struct before applying changes.
type LessonPayload struct {
	ScheduleID          int64  `json:"schedule_id"`
	GroupID             int64  `json:"group_id"`
	SubjectAssignmentID int64  `json:"subject_assignment_id"`
	RoomID              *int64 `json:"room_id"`
	IsOnline            bool   `json:"is_online"`
	Date                string `json:"date"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	LessonType          string `json:"lesson_type"`
}

// PayloadFromLesson flattens a fetched lesson into the full update payload.
func PayloadFromLesson(lesson *Lesson) LessonPayload {
	payload := LessonPayload{
		ScheduleID:          lesson.ScheduleID,
		SubjectAssignmentID: lesson.SubjectAssignmentID,
		IsOnline:            lesson.IsOnline,
		Date:                lesson.Date,
		StartTime:           lesson.StartTime,
		EndTime:             lesson.EndTime,
		LessonType:          lesson.LessonType,
	}
	if payload.LessonType == "" {
		payload.LessonType = LessonTypeLecture
	}
	if lesson.Group != nil {
		payload.GroupID = lesson.Group.ID
	}
	if lesson.Room != nil {
		roomID := lesson.Room.ID
		payload.RoomID = &roomID
	}
	return payload
}

// CalendarLessonList is the upstream calendar window response.
type CalendarLessonList struct {
	Items []Lesson `json:"items"`
	Count int      `json:"count"`
}

// ScheduleGroupList is the list of groups involved in a schedule's lessons.
type ScheduleGroupList struct {
	Groups []GroupRef `json:"groups"`
}
