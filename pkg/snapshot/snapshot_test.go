package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matchscope/matchscope/pkg/match"
)

func TestLoad_MissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "matches_snapshot.json"))
	if got := store.Load(); len(got) != 0 {
		t.Fatalf("expected empty collection for missing snapshot, got %d matches", len(got))
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "data", "matches_snapshot.json"))

	matches := []match.Match{
		{ID: "1", HomeTeamName: "Home FC", AwayTeamName: "Away IF", Date: "2026-06-15"},
		{ID: "2", Referees: []match.Referee{{ID: "r1", Name: "Anna Ref"}}},
	}
	if err := store.Save(matches); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got := store.Load()
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != "1" || got[0].HomeTeamName != "Home FC" {
		t.Fatalf("first match not preserved: %#v", got[0])
	}
	if len(got[1].Referees) != 1 || got[1].Referees[0].ID != "r1" {
		t.Fatalf("referee assignments not preserved: %#v", got[1])
	}
}

func TestLoad_LegacyWrappedShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches_snapshot.json")
	payload := `{"matchlista": [{"match_id": 5}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path).Load()
	if len(got) != 1 || got[0].ID != "5" {
		t.Fatalf("expected legacy wrapped snapshot to load, got %#v", got)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches_snapshot.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := NewStore(path).Load(); len(got) != 0 {
		t.Fatalf("expected empty collection for corrupt snapshot, got %d matches", len(got))
	}
}

func TestSave_Overwrites(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "matches_snapshot.json"))

	if err := store.Save([]match.Match{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.Save([]match.Match{{ID: "3"}}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got := store.Load()
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("expected snapshot to be replaced, got %#v", got)
	}
}
