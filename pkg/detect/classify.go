package detect

import (
	"fmt"
	"time"

	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/match"
)

// trackedField is one scalar match field the classifier watches. Fields are
// compared in declaration order so emission order is stable.
type trackedField struct {
	name  string
	value func(match.Match) interface{}
}

var trackedFields = []trackedField{
	{"date", func(m match.Match) interface{} { return m.Date }},
	{"kickoff_time", func(m match.Match) interface{} { return m.KickoffTime }},
	{"venue_name", func(m match.Match) interface{} { return m.VenueName }},
	{"home_team_id", func(m match.Match) interface{} { return m.HomeTeamID }},
	{"home_team_name", func(m match.Match) interface{} { return m.HomeTeamName }},
	{"away_team_id", func(m match.Match) interface{} { return m.AwayTeamID }},
	{"away_team_name", func(m match.Match) interface{} { return m.AwayTeamName }},
	{"cancelled", func(m match.Match) interface{} { return m.Cancelled }},
	{"interrupted", func(m match.Match) interface{} { return m.Interrupted }},
	{"postponed", func(m match.Match) interface{} { return m.Postponed }},
}

// Classifier produces categorized change records for a pair of match
// versions. Now is the clock used for same-day priority escalation and record
// timestamps; it defaults to time.Now so tests can pin it.
type Classifier struct {
	Now func() time.Time
}

// NewClassifier returns a Classifier using the real clock.
func NewClassifier() *Classifier {
	return &Classifier{Now: time.Now}
}

func (c *Classifier) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Classify compares the previous and current version of one match and
// returns one change record per differing tracked field, plus at most one
// referee-set change emitted first. A panic while classifying a single match
// is contained here so one malformed record cannot abort a whole collection
// comparison.
func (c *Classifier) Classify(prev, curr match.Match) (changes []Change) {
	defer func() {
		if r := recover(); r != nil {
			utils.Log.Errorf("Classification failed for match %s: %v", curr.ID, r)
			changes = nil
		}
	}()

	if rd := diffReferees(prev, curr); rd != nil {
		changes = append(changes, Change{
			MatchID:      curr.ID,
			MatchNumber:  curr.Number,
			Category:     rd.category,
			Priority:     assessPriority(rd.category, curr, c.now),
			Stakeholders: []Stakeholder{StakeholderReferees, StakeholderCoordinators},
			FieldName:    "referee_assignments",
			Previous:     rd.previous,
			Current:      rd.current,
			Description:  rd.description,
			Timestamp:    c.now().UTC(),
		})
	}

	for _, f := range trackedFields {
		prevValue := f.value(prev)
		currValue := f.value(curr)
		if prevValue == currValue {
			continue
		}
		category, stakeholders, description := classifyField(f.name, prevValue, currValue)
		changes = append(changes, Change{
			MatchID:      curr.ID,
			MatchNumber:  curr.Number,
			Category:     category,
			Priority:     assessPriority(category, curr, c.now),
			Stakeholders: stakeholders,
			FieldName:    f.name,
			Previous:     prevValue,
			Current:      currValue,
			Description:  description,
			Timestamp:    c.now().UTC(),
		})
	}

	return changes
}

// classifyField maps a differing tracked field to its category, affected
// stakeholders and a human-readable description.
func classifyField(name string, prev, curr interface{}) (Category, []Stakeholder, string) {
	all := []Stakeholder{StakeholderAll}

	switch name {
	case "date":
		return CategoryDateChange, all,
			fmt.Sprintf("Match date changed from %v to %v", prev, curr)
	case "kickoff_time":
		return CategoryTimeChange, all,
			fmt.Sprintf("Match time changed from %v to %v", prev, curr)
	case "venue_name":
		return CategoryVenueChange, all,
			fmt.Sprintf("Venue changed from %v to %v", prev, curr)
	case "home_team_id", "home_team_name", "away_team_id", "away_team_name":
		return CategoryTeamChange, []Stakeholder{StakeholderTeams, StakeholderCoordinators},
			fmt.Sprintf("Team information changed: %s from %v to %v", name, prev, curr)
	case "cancelled", "interrupted", "postponed":
		return classifyStatusToggle(name, prev, curr)
	default:
		return CategoryUnknown, all,
			fmt.Sprintf("%s changed from %v to %v", name, prev, curr)
	}
}

// classifyStatusToggle refines a status boolean flip. The specific category
// only fires when the current value is true; a true-to-false transition is a
// plain status change, not a reversal special case.
func classifyStatusToggle(name string, prev, curr interface{}) (Category, []Stakeholder, string) {
	all := []Stakeholder{StakeholderAll}
	active, _ := curr.(bool)

	if active {
		switch name {
		case "cancelled":
			return CategoryCancellation, all, "Match cancelled"
		case "postponed":
			return CategoryPostponement, all, "Match postponed"
		case "interrupted":
			return CategoryInterruption, all, "Match interrupted"
		}
	}
	return CategoryStatusChange, all,
		fmt.Sprintf("Status changed: %s from %v to %v", name, prev, curr)
}
