package models

// Conflict types reported by the upstream summary endpoint.
const (
	ConflictTypeRoom      = "room"
	ConflictTypeProfessor = "professor"
	ConflictTypeGroup     = "group"
)

// Conflict scopes: single is contained within one schedule, shared crosses
// schedule boundaries.
const (
	ConflictScopeSingle = "single"
	ConflictScopeShared = "shared"
)

// Conflict is one detected scheduling collision and the lessons involved.
type Conflict struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Severity string   `json:"severity,omitempty"`
	Lessons  []Lesson `json:"lessons"`
}

// ConflictGroup bundles conflicts of one type within one scope.
type ConflictGroup struct {
	Type      string     `json:"type"`
	Scope     string     `json:"conflict_scope,omitempty"`
	Conflicts []Conflict `json:"conflicts"`
	Count     int        `json:"count"`
}

// ConflictsSummary mirrors the upstream conflicts/summary payload.
type ConflictsSummary struct {
	Single         []ConflictGroup `json:"single"`
	Shared         []ConflictGroup `json:"shared"`
	TotalSingle    int             `json:"total_single"`
	TotalShared    int             `json:"total_shared"`
	TotalConflicts int             `json:"total_conflicts"`
}

// CountTotal sums group counts across both scopes. The upstream total is
// trusted when present; this recomputation backs the consistency check.
func (s *ConflictsSummary) CountTotal() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, group := range s.Single {
		total += group.Count
	}
	for _, group := range s.Shared {
		total += group.Count
	}
	return total
}
