package detect

import (
	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/match"
)

// Detector runs full collection comparisons. It is stateless between
// invocations; construct one per cycle or share freely as long as callers
// serialize invocations themselves.
type Detector struct {
	classifier *Classifier
}

// NewDetector returns a Detector with a real-clock classifier.
func NewDetector() *Detector {
	return &Detector{classifier: NewClassifier()}
}

// NewDetectorWithClassifier returns a Detector using the given classifier,
// letting callers pin the clock.
func NewDetectorWithClassifier(c *Classifier) *Detector {
	return &Detector{classifier: c}
}

// Compare diffs the previous and current match collections and returns the
// full categorized summary. Matches present in both collections are
// classified field by field; a match with zero detected changes does not
// appear in the updated partition.
func (d *Detector) Compare(previous, current []match.Match) Summary {
	prevIndex := Index(previous)
	currIndex := Index(current)
	diff := DiffKeys(prevIndex, currIndex)

	var updated []MatchChanges
	for _, id := range sortedIDs(diff.Common) {
		changes := d.classifier.Classify(prevIndex[id], currIndex[id])
		if len(changes) == 0 {
			continue
		}
		updated = append(updated, MatchChanges{
			MatchID:     id,
			MatchNumber: currIndex[id].Number,
			Changes:     changes,
		})
	}

	summary := buildSummary(prevIndex, currIndex, diff, updated)
	if summary.HasChanges() {
		utils.Log.Infof("Changes detected: %d new, %d removed, %d updated",
			len(summary.NewMatches), len(summary.RemovedMatches), len(summary.UpdatedMatches))
	} else {
		utils.Log.Debug("No changes detected in match list")
	}
	return summary
}
