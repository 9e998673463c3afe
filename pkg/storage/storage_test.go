package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matchscope/matchscope/pkg/detect"
	"github.com/matchscope/matchscope/pkg/match"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "matchscope.sqlite"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mkChange(matchID string, category detect.Category, priority detect.Priority, at time.Time) detect.Change {
	return detect.Change{
		MatchID:      match.ID(matchID),
		Category:     category,
		Priority:     priority,
		Stakeholders: []detect.Stakeholder{detect.StakeholderAll},
		FieldName:    "venue_name",
		Previous:     "Old Arena",
		Current:      "New Arena",
		Description:  "Venue changed from Old Arena to New Arena",
		Timestamp:    at,
	}
}

func TestLogAndListChanges(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	first := mkChange("1", detect.CategoryVenueChange, detect.PriorityMedium, base)
	first.MatchNumber = "nr-1"
	second := mkChange("2", detect.CategoryCancellation, detect.PriorityCritical, base.Add(time.Hour))
	second.FieldName = "cancelled"
	second.Description = "Match cancelled"

	if err := db.LogChanges(ctx, []detect.Change{first, second}); err != nil {
		t.Fatalf("failed to log changes: %v", err)
	}

	changes, err := db.ListRecentChanges(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list changes: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	// Most recent first.
	if changes[0].MatchID != "2" || changes[0].Category != "cancellation" {
		t.Fatalf("unexpected first row: %#v", changes[0])
	}
	if changes[1].MatchNumber != "nr-1" {
		t.Fatalf("match number not preserved: %#v", changes[1])
	}
	if changes[0].OccurredAt.IsZero() {
		t.Fatal("occurred_at did not parse")
	}
	if len(changes[1].Stakeholders) != 1 || changes[1].Stakeholders[0] != "all" {
		t.Fatalf("stakeholders not preserved: %#v", changes[1].Stakeholders)
	}
}

func TestLogChanges_Empty(t *testing.T) {
	db := openTestDB(t)
	if err := db.LogChanges(context.Background(), nil); err != nil {
		t.Fatalf("logging nothing must be a no-op, got %v", err)
	}
}

func TestListRecentChanges_Limit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	var changes []detect.Change
	for i := 0; i < 5; i++ {
		c := mkChange("1", detect.CategoryVenueChange, detect.PriorityMedium, base.Add(time.Duration(i)*time.Minute))
		changes = append(changes, c)
	}
	if err := db.LogChanges(ctx, changes); err != nil {
		t.Fatalf("failed to log changes: %v", err)
	}

	got, err := db.ListRecentChanges(ctx, 3)
	if err != nil {
		t.Fatalf("failed to list changes: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(got))
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	venue := mkChange("1", detect.CategoryVenueChange, detect.PriorityMedium, base)
	cancelled := mkChange("2", detect.CategoryCancellation, detect.PriorityCritical, base)
	cancelled2 := mkChange("3", detect.CategoryCancellation, detect.PriorityCritical, base)

	if err := db.LogChanges(ctx, []detect.Change{venue, cancelled, cancelled2}); err != nil {
		t.Fatalf("failed to log changes: %v", err)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("failed to query stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 categories, got %d: %#v", len(stats), stats)
	}
	// Ordered by category name: cancellation before venue_change.
	if stats[0].Category != "cancellation" || stats[0].Count != 2 || stats[0].Critical != 2 {
		t.Fatalf("unexpected cancellation stats: %#v", stats[0])
	}
	if stats[1].Category != "venue_change" || stats[1].Count != 1 || stats[1].Critical != 0 {
		t.Fatalf("unexpected venue stats: %#v", stats[1])
	}
}
