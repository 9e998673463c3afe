package detect

import (
	"testing"
	"time"

	"github.com/matchscope/matchscope/pkg/match"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testDetector() *Detector {
	return NewDetectorWithClassifier(&Classifier{Now: func() time.Time { return testNow }})
}

func mkMatch(id string) match.Match {
	return match.Match{
		ID:           match.ID(id),
		Number:       "nr-" + id,
		Date:         "2026-06-15",
		KickoffTime:  "15:00",
		HomeTeamID:   "100",
		HomeTeamName: "Home FC",
		AwayTeamID:   "200",
		AwayTeamName: "Away IF",
		VenueName:    "Central Arena",
		Referees: []match.Referee{
			{ID: "r1", Name: "Anna Ref"},
			{ID: "r2", Name: "Bo Ref"},
		},
	}
}

func TestCompare_Idempotent(t *testing.T) {
	matches := []match.Match{mkMatch("1"), mkMatch("2"), mkMatch("3")}

	s := testDetector().Compare(matches, matches)
	if s.HasChanges() {
		t.Fatalf("expected no changes comparing a collection to itself, got %d", s.TotalChanges)
	}
	if len(s.Changes) != 0 {
		t.Fatalf("expected no field-level changes, got %d", len(s.Changes))
	}
}

func TestCompare_NewAndRemoved(t *testing.T) {
	prev := []match.Match{mkMatch("1"), mkMatch("2")}
	curr := []match.Match{mkMatch("2"), mkMatch("3")}

	s := testDetector().Compare(prev, curr)
	if len(s.NewMatches) != 1 || s.NewMatches[0].ID != "3" {
		t.Fatalf("expected match 3 as new, got %#v", s.NewMatches)
	}
	if len(s.RemovedMatches) != 1 || s.RemovedMatches[0].ID != "1" {
		t.Fatalf("expected match 1 as removed, got %#v", s.RemovedMatches)
	}
	if len(s.UpdatedMatches) != 0 {
		t.Fatalf("expected no updated matches, got %d", len(s.UpdatedMatches))
	}
	if s.TotalChanges != 2 {
		t.Fatalf("expected 2 total changes, got %d", s.TotalChanges)
	}

	// Swapping the collections swaps the partitions.
	rev := testDetector().Compare(curr, prev)
	if len(rev.NewMatches) != 1 || rev.NewMatches[0].ID != "1" {
		t.Fatalf("expected match 1 as new in reverse comparison, got %#v", rev.NewMatches)
	}
	if len(rev.RemovedMatches) != 1 || rev.RemovedMatches[0].ID != "3" {
		t.Fatalf("expected match 3 as removed in reverse comparison, got %#v", rev.RemovedMatches)
	}
}

func TestCompare_SingleFieldChange(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.KickoffTime = "17:00"

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if len(s.UpdatedMatches) != 1 {
		t.Fatalf("expected 1 updated match, got %d", len(s.UpdatedMatches))
	}
	if len(s.Changes) != 1 {
		t.Fatalf("expected exactly 1 field-level change, got %d: %#v", len(s.Changes), s.Changes)
	}
	c := s.Changes[0]
	if c.Category != CategoryTimeChange {
		t.Fatalf("expected time_change, got %s", c.Category)
	}
	if c.FieldName != "kickoff_time" {
		t.Fatalf("expected field kickoff_time, got %s", c.FieldName)
	}
	if c.Priority != PriorityHigh {
		t.Fatalf("expected high priority, got %s", c.Priority)
	}
	if c.Previous != "15:00" || c.Current != "17:00" {
		t.Fatalf("expected 15:00 -> 17:00, got %v -> %v", c.Previous, c.Current)
	}
	if s.TotalChanges != 1 {
		t.Fatalf("expected 1 total change, got %d", s.TotalChanges)
	}
}

func TestCompare_RefereeOrderInvariant(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Referees = []match.Referee{
		{ID: "r2", Name: "Bo Ref"},
		{ID: "r1", Name: "Anna Ref"},
	}

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if s.HasChanges() {
		t.Fatalf("reordered referee list must not count as a change, got %#v", s.Changes)
	}
}

func TestCompare_RefereeNameEditIsNotAChange(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Referees = []match.Referee{
		{ID: "r1", Name: "Anna R. Ref", Role: "AR1"},
		{ID: "r2", Name: "Bo Ref"},
	}

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if s.HasChanges() {
		t.Fatalf("name/role edit on same referee IDs must not count as a change, got %#v", s.Changes)
	}
}

func TestClassify_NewAssignment(t *testing.T) {
	prev := mkMatch("1")
	prev.Referees = nil
	curr := mkMatch("1")

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if len(s.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d: %#v", len(s.Changes), s.Changes)
	}
	c := s.Changes[0]
	if c.Category != CategoryNewAssignment {
		t.Fatalf("expected new_assignment, got %s", c.Category)
	}
	if c.Priority != PriorityHigh {
		t.Fatalf("expected high priority, got %s", c.Priority)
	}
	if c.FieldName != "referee_assignments" {
		t.Fatalf("expected field referee_assignments, got %s", c.FieldName)
	}
	if c.Description != "Referees assigned: Anna Ref, Bo Ref" {
		t.Fatalf("unexpected description: %q", c.Description)
	}
}

func TestClassify_RefereeChange(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Referees = []match.Referee{
		{ID: "r1", Name: "Anna Ref"},
		{ID: "r3", Name: "Cleo Ref"},
	}

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if len(s.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(s.Changes))
	}
	c := s.Changes[0]
	if c.Category != CategoryRefereeChange {
		t.Fatalf("expected referee_change, got %s", c.Category)
	}
	if c.Description != "Referees changed from Anna Ref, Bo Ref to Anna Ref, Cleo Ref" {
		t.Fatalf("unexpected description: %q", c.Description)
	}
}

func TestClassify_RefereeRemoval(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Referees = nil

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if len(s.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(s.Changes))
	}
	c := s.Changes[0]
	if c.Category != CategoryRefereeChange {
		t.Fatalf("expected referee_change on removal, got %s", c.Category)
	}
	if c.Description != "Referees removed: Anna Ref, Bo Ref" {
		t.Fatalf("unexpected description: %q", c.Description)
	}
}

func TestClassify_RefereeChangeStakeholders(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Referees = curr.Referees[:1]

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	c := s.Changes[0]
	if !c.Affects(StakeholderReferees) || !c.Affects(StakeholderCoordinators) {
		t.Fatalf("referee change must affect referees and coordinators, got %#v", c.Stakeholders)
	}
	if c.Affects(StakeholderTeams) {
		t.Fatalf("referee change must not affect teams directly, got %#v", c.Stakeholders)
	}
}

func TestClassify_SameDayEscalation(t *testing.T) {
	prev := mkMatch("1")
	prev.Date = testNow.Format("2006-01-02")
	curr := prev
	curr.VenueName = "Backup Field"

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if len(s.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(s.Changes))
	}
	c := s.Changes[0]
	if c.Category != CategoryVenueChange {
		t.Fatalf("expected venue_change, got %s", c.Category)
	}
	if c.Priority != PriorityCritical {
		t.Fatalf("same-day change must escalate to critical, got %s", c.Priority)
	}
	if !s.HasCriticalChanges() {
		t.Fatal("expected HasCriticalChanges to report true")
	}
}

func TestClassify_VenueChangeNotSameDay(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.VenueName = "Backup Field"

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if s.Changes[0].Priority != PriorityMedium {
		t.Fatalf("expected medium priority for future venue change, got %s", s.Changes[0].Priority)
	}
}

func TestClassify_Cancellation(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Cancelled = true

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if len(s.Changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(s.Changes))
	}
	c := s.Changes[0]
	if c.Category != CategoryCancellation {
		t.Fatalf("expected cancellation, got %s", c.Category)
	}
	if c.Priority != PriorityCritical {
		t.Fatalf("cancellation must be critical, got %s", c.Priority)
	}
	if c.Description != "Match cancelled" {
		t.Fatalf("unexpected description: %q", c.Description)
	}
}

func TestClassify_StatusReversal(t *testing.T) {
	prev := mkMatch("1")
	prev.Cancelled = true
	curr := mkMatch("1")

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	c := s.Changes[0]
	if c.Category != CategoryStatusChange {
		t.Fatalf("un-cancelling is a plain status change, got %s", c.Category)
	}
	if c.Priority != PriorityMedium {
		t.Fatalf("expected medium priority, got %s", c.Priority)
	}
}

func TestClassify_Postponement(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Postponed = true

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	c := s.Changes[0]
	if c.Category != CategoryPostponement {
		t.Fatalf("expected postponement, got %s", c.Category)
	}
	if c.Priority != PriorityMedium {
		t.Fatalf("expected medium priority, got %s", c.Priority)
	}
	if c.Description != "Match postponed" {
		t.Fatalf("unexpected description: %q", c.Description)
	}
}

func TestClassify_MultipleSimultaneousChanges(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Date = "2026-06-16"
	curr.KickoffTime = "18:30"
	curr.Referees = curr.Referees[:1]

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if len(s.UpdatedMatches) != 1 {
		t.Fatalf("expected 1 updated match, got %d", len(s.UpdatedMatches))
	}
	if len(s.Changes) != 3 {
		t.Fatalf("expected 3 independent change records, got %d: %#v", len(s.Changes), s.Changes)
	}
	// Referee change is emitted first, then fields in declaration order.
	if s.Changes[0].Category != CategoryRefereeChange {
		t.Fatalf("expected referee change first, got %s", s.Changes[0].Category)
	}
	if s.Changes[1].Category != CategoryDateChange || s.Changes[2].Category != CategoryTimeChange {
		t.Fatalf("unexpected emission order: %s, %s", s.Changes[1].Category, s.Changes[2].Category)
	}
	if s.TotalChanges != 1 {
		t.Fatalf("match-level total must count the match once, got %d", s.TotalChanges)
	}
}

func TestCompare_MixedCycle(t *testing.T) {
	prev := []match.Match{mkMatch("1"), mkMatch("2"), mkMatch("3")}
	updated := mkMatch("2")
	updated.VenueName = "New Arena"
	curr := []match.Match{mkMatch("1"), updated, mkMatch("4")}

	s := testDetector().Compare(prev, curr)
	if len(s.NewMatches) != 1 || len(s.UpdatedMatches) != 1 || len(s.RemovedMatches) != 1 {
		t.Fatalf("expected 1/1/1 partitions, got %d/%d/%d",
			len(s.NewMatches), len(s.UpdatedMatches), len(s.RemovedMatches))
	}
	if s.TotalChanges != 3 {
		t.Fatalf("expected 3 total changes, got %d", s.TotalChanges)
	}
	if len(s.Categories) != 1 || s.Categories[0] != CategoryVenueChange {
		t.Fatalf("expected [venue_change] categories, got %#v", s.Categories)
	}
}

func TestSummary_Filters(t *testing.T) {
	prev := mkMatch("1")
	curr := mkMatch("1")
	curr.Cancelled = true
	curr.Referees = curr.Referees[:1]

	s := testDetector().Compare([]match.Match{prev}, []match.Match{curr})
	if len(s.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(s.Changes))
	}

	if got := s.ChangesByCategory(CategoryCancellation); len(got) != 1 {
		t.Fatalf("expected 1 cancellation, got %d", len(got))
	}
	if got := s.ChangesByPriority(PriorityCritical); len(got) != 1 {
		t.Fatalf("expected 1 critical change, got %d", len(got))
	}
	// Cancellation is addressed to ALL, so every group sees it; the referee
	// change only reaches referees and coordinators.
	if got := s.ChangesForStakeholder(StakeholderTeams); len(got) != 1 {
		t.Fatalf("expected teams to see 1 change, got %d", len(got))
	}
	if got := s.ChangesForStakeholder(StakeholderReferees); len(got) != 2 {
		t.Fatalf("expected referees to see 2 changes, got %d", len(got))
	}
}

func TestIndex_SkipsUnsetIDs(t *testing.T) {
	m1 := mkMatch("1")
	unset := mkMatch("")
	idx := Index([]match.Match{m1, unset})
	if len(idx) != 1 {
		t.Fatalf("expected 1 indexed match, got %d", len(idx))
	}
	if _, ok := idx["1"]; !ok {
		t.Fatalf("expected match 1 in index, got %#v", idx)
	}
}

func TestIndex_DuplicateIDsLastWins(t *testing.T) {
	first := mkMatch("1")
	second := mkMatch("1")
	second.VenueName = "Later Venue"

	idx := Index([]match.Match{first, second})
	if len(idx) != 1 {
		t.Fatalf("expected 1 indexed match, got %d", len(idx))
	}
	if idx["1"].VenueName != "Later Venue" {
		t.Fatalf("expected the later record to win, got %q", idx["1"].VenueName)
	}
}

func TestDiffKeys(t *testing.T) {
	prev := Index([]match.Match{mkMatch("1"), mkMatch("2")})
	curr := Index([]match.Match{mkMatch("2"), mkMatch("3")})

	d := DiffKeys(prev, curr)
	if _, ok := d.Added["3"]; !ok || len(d.Added) != 1 {
		t.Fatalf("expected added={3}, got %#v", d.Added)
	}
	if _, ok := d.Removed["1"]; !ok || len(d.Removed) != 1 {
		t.Fatalf("expected removed={1}, got %#v", d.Removed)
	}
	if _, ok := d.Common["2"]; !ok || len(d.Common) != 1 {
		t.Fatalf("expected common={2}, got %#v", d.Common)
	}
}

func TestCompare_PanicInOneMatchDoesNotAbortOthers(t *testing.T) {
	// A clock that blows up on its first use makes the classification of the
	// first changed match panic; the comparison must still classify the rest.
	calls := 0
	d := NewDetectorWithClassifier(&Classifier{Now: func() time.Time {
		calls++
		if calls == 1 {
			panic("clock unavailable")
		}
		return testNow
	}})

	first := mkMatch("1")
	second := mkMatch("2")
	changedFirst := mkMatch("1")
	changedFirst.VenueName = "Backup Field"
	changedSecond := mkMatch("2")
	changedSecond.VenueName = "Backup Field"

	s := d.Compare(
		[]match.Match{first, second},
		[]match.Match{changedFirst, changedSecond},
	)

	// Match 1 classifies first (sorted order) and panics; only its changes
	// are dropped.
	if len(s.UpdatedMatches) != 1 || s.UpdatedMatches[0].MatchID != "2" {
		t.Fatalf("expected only match 2 in updated partition, got %#v", s.UpdatedMatches)
	}
	if len(s.Changes) != 1 || s.Changes[0].MatchID != "2" {
		t.Fatalf("expected only match 2's change, got %#v", s.Changes)
	}
	if s.TotalChanges != 1 {
		t.Fatalf("expected 1 total change, got %d", s.TotalChanges)
	}
}

func TestCompare_EmptyCollections(t *testing.T) {
	s := testDetector().Compare(nil, nil)
	if s.HasChanges() {
		t.Fatalf("two empty collections must not differ, got %d", s.TotalChanges)
	}

	s = testDetector().Compare(nil, []match.Match{mkMatch("1")})
	if len(s.NewMatches) != 1 || s.TotalChanges != 1 {
		t.Fatalf("expected first snapshot to report 1 new match, got %#v", s)
	}
}
