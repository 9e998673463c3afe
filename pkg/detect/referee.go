package detect

import (
	"strings"

	"github.com/matchscope/matchscope/pkg/match"
)

// refereeDiff describes a difference between two referee assignment sets.
type refereeDiff struct {
	category    Category
	previous    []match.Referee
	current     []match.Referee
	description string
}

// diffReferees compares the referee assignments of two versions of the same
// match. Assignments are compared as unordered sets of referee identifiers:
// reordering the list or editing a name/role on the same identifier is not a
// referee change. Returns nil when the sets are equal.
func diffReferees(prev, curr match.Match) *refereeDiff {
	prevIDs := refereeIDSet(prev.Referees)
	currIDs := refereeIDSet(curr.Referees)

	if idSetsEqual(prevIDs, currIDs) {
		return nil
	}

	prevNames := refereeNames(prev.Referees)
	currNames := refereeNames(curr.Referees)

	if len(prevIDs) == 0 {
		return &refereeDiff{
			category:    CategoryNewAssignment,
			previous:    nil,
			current:     curr.Referees,
			description: "Referees assigned: " + strings.Join(currNames, ", "),
		}
	}

	desc := ""
	if len(currIDs) == 0 {
		desc = "Referees removed: " + strings.Join(prevNames, ", ")
	} else {
		desc = "Referees changed from " + strings.Join(prevNames, ", ") +
			" to " + strings.Join(currNames, ", ")
	}

	return &refereeDiff{
		category:    CategoryRefereeChange,
		previous:    prev.Referees,
		current:     curr.Referees,
		description: desc,
	}
}

func refereeIDSet(referees []match.Referee) map[match.ID]struct{} {
	ids := make(map[match.ID]struct{}, len(referees))
	for _, r := range referees {
		ids[r.ID] = struct{}{}
	}
	return ids
}

func idSetsEqual(a, b map[match.ID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

func refereeNames(referees []match.Referee) []string {
	names := make([]string, 0, len(referees))
	for _, r := range referees {
		name := r.Name
		if name == "" {
			name = "Unknown"
		}
		names = append(names, name)
	}
	return names
}
