package detect

import (
	"github.com/matchscope/matchscope/pkg/match"

	"github.com/matchscope/matchscope/internal/utils"
)

// Index converts a match collection into a map keyed by match ID. Records
// without a usable identifier are skipped silently. When two records share an
// identifier the later one wins.
func Index(matches []match.Match) map[match.ID]match.Match {
	indexed := make(map[match.ID]match.Match, len(matches))
	for _, m := range matches {
		if !m.ID.IsSet() {
			utils.Log.Debugf("Skipping match without identifier (%s)", m.Label())
			continue
		}
		indexed[m.ID] = m
	}
	return indexed
}

// KeyDiff is the result of comparing the key sets of two indexed collections.
// The three sets are disjoint.
type KeyDiff struct {
	Added   map[match.ID]struct{}
	Removed map[match.ID]struct{}
	Common  map[match.ID]struct{}
}

// DiffKeys computes the set difference between the previous and current
// indexes: Added holds identifiers only present in current, Removed only in
// previous, Common in both. Pure set operation, no side effects.
func DiffKeys(previous, current map[match.ID]match.Match) KeyDiff {
	diff := KeyDiff{
		Added:   make(map[match.ID]struct{}),
		Removed: make(map[match.ID]struct{}),
		Common:  make(map[match.ID]struct{}),
	}
	for id := range current {
		if _, ok := previous[id]; ok {
			diff.Common[id] = struct{}{}
		} else {
			diff.Added[id] = struct{}{}
		}
	}
	for id := range previous {
		if _, ok := current[id]; !ok {
			diff.Removed[id] = struct{}{}
		}
	}
	return diff
}
