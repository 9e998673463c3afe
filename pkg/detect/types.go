// Package detect implements the change-detection and categorization engine:
// it compares two snapshots of a match collection, decides which matches are
// new, removed or modified, classifies modifications into typed categories,
// assigns priorities and identifies the affected stakeholder groups.
package detect

import (
	"time"

	"github.com/matchscope/matchscope/pkg/match"
)

// Category is the closed set of change categories.
type Category string

const (
	CategoryNewAssignment     Category = "new_assignment"
	CategoryRefereeChange     Category = "referee_change"
	CategoryTimeChange        Category = "time_change"
	CategoryDateChange        Category = "date_change"
	CategoryVenueChange       Category = "venue_change"
	CategoryTeamChange        Category = "team_change"
	CategoryStatusChange      Category = "status_change"
	CategoryCancellation      Category = "cancellation"
	CategoryPostponement      Category = "postponement"
	CategoryInterruption      Category = "interruption"
	CategoryCompetitionChange Category = "competition_change"
	CategoryUnknown           Category = "unknown"
)

// Priority ranks change urgency for downstream notification routing.
// CRITICAL > HIGH > MEDIUM > LOW.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Stakeholder is a group affected by a change, consumed by downstream
// recipient resolution.
type Stakeholder string

const (
	StakeholderReferees     Stakeholder = "referees"
	StakeholderCoordinators Stakeholder = "coordinators"
	StakeholderTeams        Stakeholder = "teams"
	StakeholderAll          Stakeholder = "all"
)

// Change captures a single detected field or referee-set difference on one
// match. Multiple simultaneous differences on the same match produce multiple
// independent Change records.
type Change struct {
	MatchID      match.ID      `json:"match_id"`
	MatchNumber  string        `json:"match_number,omitempty"`
	Category     Category      `json:"category"`
	Priority     Priority      `json:"priority"`
	Stakeholders []Stakeholder `json:"affected_stakeholders"`
	FieldName    string        `json:"field_name"`
	Previous     interface{}   `json:"previous_value"`
	Current      interface{}   `json:"current_value"`
	Description  string        `json:"change_description"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Affects reports whether the change targets the given stakeholder group,
// treating StakeholderAll as matching every group.
func (c Change) Affects(s Stakeholder) bool {
	for _, sh := range c.Stakeholders {
		if sh == s || sh == StakeholderAll || s == StakeholderAll {
			return true
		}
	}
	return false
}

// MatchChanges groups the change records detected for one modified match.
type MatchChanges struct {
	MatchID     match.ID `json:"match_id"`
	MatchNumber string   `json:"match_number,omitempty"`
	Changes     []Change `json:"changes"`
}
