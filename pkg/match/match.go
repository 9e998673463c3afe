// Package match defines the typed match record and the ingestion boundary
// that turns loosely shaped upstream JSON into validated records.
package match

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ID is a match or referee identifier. Upstream payloads carry identifiers
// inconsistently as JSON strings or numbers, so it decodes both and
// normalizes to a comparable string. A numeric zero or an empty string is
// treated as unset.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*id = ID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier is neither string nor number: %w", err)
	}
	if n.String() == "0" {
		*id = ""
		return nil
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// IsSet reports whether the identifier carries a usable value.
func (id ID) IsSet() bool { return id != "" }

// Referee is a single referee assignment on a match. ID is the canonical
// identity field for change detection; name and role edits on the same ID do
// not count as a referee change.
type Referee struct {
	ID    ID     `json:"referee_id"`
	Name  string `json:"referee_name"`
	Role  string `json:"role_name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Match is one scheduled match as reported by the upstream scheduling API.
type Match struct {
	ID          ID     `json:"match_id"`
	Number      string `json:"match_number,omitempty"`
	Date        string `json:"date"`
	KickoffTime string `json:"kickoff_time"`

	HomeTeamID   ID     `json:"home_team_id"`
	HomeTeamName string `json:"home_team_name"`
	AwayTeamID   ID     `json:"away_team_id"`
	AwayTeamName string `json:"away_team_name"`
	HomeClubID   ID     `json:"home_club_id,omitempty"`
	AwayClubID   ID     `json:"away_club_id,omitempty"`

	VenueName       string `json:"venue_name"`
	CompetitionName string `json:"competition_name,omitempty"`

	Cancelled   bool `json:"cancelled"`
	Interrupted bool `json:"interrupted"`
	Postponed   bool `json:"postponed"`

	Referees []Referee `json:"referee_assignments,omitempty"`
}

// Label returns a short human-readable "Home vs Away" display string.
func (m Match) Label() string {
	home := m.HomeTeamName
	if home == "" {
		home = "Home"
	}
	away := m.AwayTeamName
	if away == "" {
		away = "Away"
	}
	return home + " vs " + away
}

// RefereeNames returns the names of all assigned referees, skipping
// assignments without a name.
func (m Match) RefereeNames() []string {
	var names []string
	for _, r := range m.Referees {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}

// SameDay reports whether the match date equals the calendar date given by
// now, in UTC. Unparseable dates are never same-day.
func (m Match) SameDay(now time.Time) bool {
	if m.Date == "" {
		return false
	}
	d, err := time.Parse("2006-01-02", m.Date)
	if err != nil {
		return false
	}
	return d.Format("2006-01-02") == now.UTC().Format("2006-01-02")
}

// Decode parses a match collection payload. It accepts a bare JSON array of
// match records, or an object that wraps the array under a "matches" or
// "matchlista" key (the legacy snapshot shape).
func Decode(data []byte) ([]Match, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON payload")
	}

	root := gjson.ParseBytes(data)
	payload := data
	if root.IsObject() {
		if arr := root.Get("matches"); arr.Exists() {
			payload = []byte(arr.Raw)
		} else if arr := root.Get("matchlista"); arr.Exists() {
			payload = []byte(arr.Raw)
		} else {
			return nil, fmt.Errorf("object payload has no matches or matchlista key")
		}
	}

	var matches []Match
	if err := json.Unmarshal(payload, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode match list: %w", err)
	}
	return matches, nil
}
