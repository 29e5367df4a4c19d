package models

// WorkloadWarning flags a subject assignment whose scheduled hours exceed the
// hours allotted to it within the professor's workload.
type WorkloadWarning struct {
	SubjectAssignmentID int64    `json:"subject_assignment_id"`
	ProfessorName       string   `json:"professor_name"`
	SubjectName         string   `json:"subject_name"`
	ScheduledHours      float64  `json:"scheduled_hours"`
	AllowedHours        float64  `json:"allowed_hours"`
	ExcessHours         float64  `json:"excess_hours"`
	Lessons             []Lesson `json:"lessons"`
}

// WorkloadWarningList mirrors the upstream local-warnings payload.
type WorkloadWarningList struct {
	Warnings      []WorkloadWarning `json:"warnings"`
	TotalWarnings int               `json:"total_warnings"`
}
