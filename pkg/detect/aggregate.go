package detect

import (
	"sort"

	"github.com/matchscope/matchscope/pkg/match"
)

// Summary is the immutable result of one collection comparison. TotalChanges
// counts matches that are new, updated or removed; the field-level view is
// the Changes list. Recomputation requires a fresh comparison, not in-place
// mutation.
type Summary struct {
	NewMatches     []match.Match  `json:"new_matches"`
	UpdatedMatches []MatchChanges `json:"updated_matches"`
	RemovedMatches []match.Match  `json:"removed_matches"`

	// Changes flattens every field-level change record across all updated
	// matches, in emission order.
	Changes []Change `json:"changes"`

	TotalChanges        int `json:"total_changes"`
	CriticalChanges     int `json:"critical_changes"`
	HighPriorityChanges int `json:"high_priority_changes"`

	Categories       []Category    `json:"change_categories"`
	StakeholderTypes []Stakeholder `json:"affected_stakeholder_types"`
}

// HasChanges reports whether the comparison found anything at all.
func (s Summary) HasChanges() bool { return s.TotalChanges > 0 }

// HasCriticalChanges reports whether any field-level change is CRITICAL.
func (s Summary) HasCriticalChanges() bool { return s.CriticalChanges > 0 }

// ChangesByCategory returns the field-level changes of one category.
func (s Summary) ChangesByCategory(category Category) []Change {
	var out []Change
	for _, c := range s.Changes {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// ChangesByPriority returns the field-level changes of one priority.
func (s Summary) ChangesByPriority(priority Priority) []Change {
	var out []Change
	for _, c := range s.Changes {
		if c.Priority == priority {
			out = append(out, c)
		}
	}
	return out
}

// ChangesForStakeholder returns the field-level changes affecting the given
// stakeholder group, where changes addressed to ALL match every group.
func (s Summary) ChangesForStakeholder(stakeholder Stakeholder) []Change {
	var out []Change
	for _, c := range s.Changes {
		if c.Affects(stakeholder) {
			out = append(out, c)
		}
	}
	return out
}

// buildSummary folds the key diff and per-match classification results into
// the final aggregate.
func buildSummary(previous, current map[match.ID]match.Match, diff KeyDiff, updated []MatchChanges) Summary {
	s := Summary{
		NewMatches:     make([]match.Match, 0, len(diff.Added)),
		RemovedMatches: make([]match.Match, 0, len(diff.Removed)),
		UpdatedMatches: updated,
	}

	for _, id := range sortedIDs(diff.Added) {
		s.NewMatches = append(s.NewMatches, current[id])
	}
	for _, id := range sortedIDs(diff.Removed) {
		s.RemovedMatches = append(s.RemovedMatches, previous[id])
	}

	categories := make(map[Category]struct{})
	stakeholders := make(map[Stakeholder]struct{})
	for _, mc := range updated {
		for _, c := range mc.Changes {
			s.Changes = append(s.Changes, c)
			categories[c.Category] = struct{}{}
			for _, sh := range c.Stakeholders {
				stakeholders[sh] = struct{}{}
			}
			switch c.Priority {
			case PriorityCritical:
				s.CriticalChanges++
			case PriorityHigh:
				s.HighPriorityChanges++
			}
		}
	}

	for cat := range categories {
		s.Categories = append(s.Categories, cat)
	}
	sort.Slice(s.Categories, func(i, j int) bool { return s.Categories[i] < s.Categories[j] })
	for sh := range stakeholders {
		s.StakeholderTypes = append(s.StakeholderTypes, sh)
	}
	sort.Slice(s.StakeholderTypes, func(i, j int) bool { return s.StakeholderTypes[i] < s.StakeholderTypes[j] })

	s.TotalChanges = len(s.NewMatches) + len(s.UpdatedMatches) + len(s.RemovedMatches)
	return s
}

func sortedIDs(set map[match.ID]struct{}) []match.ID {
	ids := make([]match.ID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
