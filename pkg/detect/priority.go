package detect

import (
	"time"

	"github.com/matchscope/matchscope/pkg/match"
)

var categoryPriorities = map[Category]Priority{
	CategoryCancellation:      PriorityCritical,
	CategoryNewAssignment:     PriorityHigh,
	CategoryRefereeChange:     PriorityHigh,
	CategoryTimeChange:        PriorityHigh,
	CategoryDateChange:        PriorityHigh,
	CategoryVenueChange:       PriorityMedium,
	CategoryTeamChange:        PriorityMedium,
	CategoryPostponement:      PriorityMedium,
	CategoryInterruption:      PriorityMedium,
	CategoryStatusChange:      PriorityMedium,
	CategoryCompetitionChange: PriorityLow,
	CategoryUnknown:           PriorityLow,
}

// assessPriority maps a change category to a priority. Any change to a match
// played on the current UTC calendar date escalates to CRITICAL regardless of
// category. Unparseable match dates fall through to the category table.
func assessPriority(category Category, m match.Match, now func() time.Time) Priority {
	if m.SameDay(now()) {
		return PriorityCritical
	}
	if p, ok := categoryPriorities[category]; ok {
		return p
	}
	return PriorityLow
}
