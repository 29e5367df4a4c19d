// Package board projects flat lesson lists onto the resource-grouped
// calendar grid: lanes (resources) along one grouping dimension and
// time-blocked events. The projection is pure; identical input always yields
// identical output, so it is recomputed freely on every request.
package board

import (
	"sort"
	"strconv"

	"github.com/msu-tj/schedule-desk-api/internal/models"
)

// ResourceID derives the lane a lesson belongs to under the given grouping.
// Under professor grouping the lane is the subject-assignment id, not the
// professor id: a professor teaching two subjects under two assignments
// occupies two distinct lanes, and drag validation relies on that identity.
func ResourceID(lesson *models.Lesson, groupBy models.GroupBy) string {
	switch groupBy {
	case models.GroupByGroup:
		if lesson.Group == nil {
			return models.ResourceNoGroup
		}
		return strconv.FormatInt(lesson.Group.ID, 10)
	case models.GroupByProfessor:
		if lesson.SubjectAssignmentID == 0 {
			return models.ResourceNoAssignment
		}
		return strconv.FormatInt(lesson.SubjectAssignmentID, 10)
	case models.GroupByRoom:
		if lesson.IsOnline {
			return models.ResourceOnline
		}
		if lesson.Room == nil {
			return models.ResourceNoRoom
		}
		return strconv.FormatInt(lesson.Room.ID, 10)
	default:
		return ""
	}
}

// ResourceTitle derives the lane caption for a lesson under the grouping.
func ResourceTitle(lesson *models.Lesson, groupBy models.GroupBy) string {
	switch groupBy {
	case models.GroupByGroup:
		if lesson.Group == nil || lesson.Group.Name == "" {
			return "No Group"
		}
		return lesson.Group.Name
	case models.GroupByProfessor:
		professor := "No Professor"
		if name := lesson.Professor.FullName(); name != "" {
			professor = name
		}
		subject := "Unknown Subject"
		if lesson.Subject != nil && lesson.Subject.Name != "" {
			subject = lesson.Subject.Name
		}
		return professor + " (" + subject + ")"
	case models.GroupByRoom:
		if lesson.IsOnline {
			return "Online"
		}
		if lesson.Room == nil || lesson.Room.Number == "" {
			return "No Room"
		}
		return lesson.Room.Number
	default:
		return ""
	}
}

// Resources builds the de-duplicated lane list for the lessons, sorted by
// title. Returns nil for ungrouped boards.
func Resources(lessons []models.Lesson, groupBy models.GroupBy) []models.CalendarResource {
	if groupBy == models.GroupByNone {
		return nil
	}

	seen := make(map[string]struct{}, len(lessons))
	resources := make([]models.CalendarResource, 0, len(lessons))
	for i := range lessons {
		id := ResourceID(&lessons[i], groupBy)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		resources = append(resources, models.CalendarResource{
			ResourceID:    id,
			ResourceTitle: ResourceTitle(&lessons[i], groupBy),
		})
	}

	sort.Slice(resources, func(i, j int) bool {
		if resources[i].ResourceTitle != resources[j].ResourceTitle {
			return resources[i].ResourceTitle < resources[j].ResourceTitle
		}
		return resources[i].ResourceID < resources[j].ResourceID
	})

	return resources
}

// Event projects one lesson into a renderable calendar event.
func Event(lesson *models.Lesson, groupBy models.GroupBy) (models.CalendarEvent, error) {
	start, err := CombineDateTime(lesson.Date, lesson.StartTime)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	end, err := CombineDateTime(lesson.Date, lesson.EndTime)
	if err != nil {
		return models.CalendarEvent{}, err
	}

	subject := "Unknown Subject"
	if lesson.Subject != nil && lesson.Subject.Name != "" {
		subject = lesson.Subject.Name
	}
	group := "Unknown Group"
	if lesson.Group != nil && lesson.Group.Name != "" {
		group = lesson.Group.Name
	}
	professor := "No professor"
	if name := lesson.Professor.FullName(); name != "" {
		professor = name
	}
	location := "No room"
	if lesson.IsOnline {
		location = "Online"
	} else if lesson.Room != nil && lesson.Room.Number != "" {
		location = lesson.Room.Number
	}

	event := models.CalendarEvent{
		ID:    lesson.ID,
		Title: subject + " - " + group,
		Start: start,
		End:   end,
		Details: models.EventDetails{
			Lesson:     *lesson,
			LessonType: lesson.LessonType,
			IsOnline:   lesson.IsOnline,
			Room:       location,
			Professor:  professor,
			Subject:    subject,
			Group:      group,
			TimeStr:    clockShort(lesson.StartTime) + " - " + clockShort(lesson.EndTime),
		},
	}
	if groupBy != models.GroupByNone {
		event.ResourceID = ResourceID(lesson, groupBy)
	}
	return event, nil
}

// Project builds the full board view for one grouping dimension. Lessons
// with unparseable date or time fields are skipped rather than failing the
// whole board.
func Project(lessons []models.Lesson, groupBy models.GroupBy) models.BoardView {
	events := make([]models.CalendarEvent, 0, len(lessons))
	for i := range lessons {
		event, err := Event(&lessons[i], groupBy)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return models.BoardView{
		Resources: Resources(lessons, groupBy),
		Events:    events,
	}
}

func clockShort(clock string) string {
	if len(clock) >= 5 {
		return clock[:5]
	}
	return clock
}
