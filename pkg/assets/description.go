// Package assets generates and uploads the per-match side-effect artifacts:
// the group description text, the group info sheet and the avatar image.
package assets

import (
	"fmt"
	"strings"

	"github.com/matchscope/matchscope/pkg/match"
)

// GroupDescription renders the minimalist WhatsApp-style group description
// for a match.
func GroupDescription(m match.Match, matchFactsBase string) string {
	home := m.HomeTeamName
	if home == "" {
		home = "Team 1"
	}
	away := m.AwayTeamName
	if away == "" {
		away = "Team 2"
	}
	competition := m.CompetitionName
	if competition == "" {
		competition = "Competition N/A"
	}
	venue := m.VenueName
	if venue == "" {
		venue = "Venue N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s - %s*\n", home, away)
	fmt.Fprintf(&b, "_%s_\n", competition)
	fmt.Fprintf(&b, "%s\n\n", venue)
	fmt.Fprintf(&b, "Match Facts: %s?matchId=%s\n\n", matchFactsBase, m.ID)
	b.WriteString("---\n")
	b.WriteString("This group is for communication among the referee team. ")
	b.WriteString("Please keep messages relevant to your referee duties for this match.")
	return b.String()
}

// GroupInfo renders the group info sheet: group name, match facts and the
// referee roster with roles.
func GroupInfo(m match.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Group Name: %s - %s\n", m.HomeTeamName, m.AwayTeamName)
	fmt.Fprintf(&b, "Match: %s\n", m.Number)
	fmt.Fprintf(&b, "Competition: %s\n", m.CompetitionName)
	fmt.Fprintf(&b, "Date & Time: %s %s\n", m.Date, m.KickoffTime)
	fmt.Fprintf(&b, "Venue: %s\n\n", m.VenueName)

	b.WriteString("Referees:\n")
	for _, r := range m.Referees {
		if r.Name == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s)\n", r.Name, r.Role)
	}
	return b.String()
}

// FolderPath derives the upload folder for a match's assets, keyed by date
// and team names: {base}/{date}/Match_{id}_{home}_{away}.
func FolderPath(base string, m match.Match) string {
	safe := func(s string) string { return strings.ReplaceAll(s, " ", "_") }
	label := fmt.Sprintf("%s_%s_%s", m.ID, safe(m.HomeTeamName), safe(m.AwayTeamName))
	return fmt.Sprintf("%s/%s/Match_%s", base, m.Date, label)
}
