package goals

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, body string) RawGoal {
	t.Helper()
	var r RawGoal
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
	return r
}

// ============================================================
// Completion signal
// ============================================================

func TestCompletedAtIsCanonical(t *testing.T) {
	g := Normalize(decode(t, `{"id": 1, "title": " Walk ", "completed_at": "2024-06-12T10:00:00Z", "status": "active"}`))
	if !g.Completed || g.Source != SourceCompletedAt {
		t.Fatalf("got %+v", g)
	}
	if g.CompletedAt.IsZero() || g.CompletedAt.Day() != 12 {
		t.Fatalf("completed at %v", g.CompletedAt)
	}
	if g.Title != "Walk" {
		t.Fatalf("title %q", g.Title)
	}
}

func TestLegacyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		done bool
		src  Source
	}{
		{"status", `{"status": "Completed", "is_completed": false}`, true, SourceStatus},
		{"is_completed", `{"status": "open", "is_completed": true, "completed": false}`, true, SourceIsCompleted},
		{"completed flag", `{"completed": true}`, true, SourceCompleted},
		{"empty completed_at", `{"completed_at": "", "completed": true}`, true, SourceCompleted},
		{"null completed_at", `{"completed_at": null}`, false, SourceNone},
		{"nothing", `{}`, false, SourceNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Normalize(decode(t, tt.body))
			if g.Completed != tt.done || g.Source != tt.src {
				t.Fatalf("got completed=%v source=%q", g.Completed, g.Source)
			}
			if g.Source != SourceCompletedAt && !g.CompletedAt.IsZero() {
				t.Fatal("legacy completion should not invent a timestamp")
			}
		})
	}
}

func TestProgressDoesNotComplete(t *testing.T) {
	g := Normalize(decode(t, `{"current_value": 5, "target_value": 5}`))
	if g.Completed {
		t.Fatal("reaching the target is not completion")
	}
	if !g.Progress.Reached() || g.Progress.Percent() != 100 {
		t.Fatalf("progress %+v", g.Progress)
	}
}

// ============================================================
// Progress fallbacks
// ============================================================

func TestProgressFallbackOrder(t *testing.T) {
	g := Normalize(decode(t, `{"progress_value": "3", "progress": 9, "current_value": 1, "target": 12, "goal_value": 4}`))
	if g.Progress.Current != 3 || g.Progress.Target != 12 {
		t.Fatalf("got %+v", g.Progress)
	}

	g = Normalize(decode(t, `{"progress_value": "n/a", "current_value": 2}`))
	if g.Progress.Current != 2 || g.Progress.Target != 1 {
		t.Fatalf("got %+v", g.Progress)
	}
}

func TestPercentClamps(t *testing.T) {
	if (Progress{Current: 30, Target: 10}).Percent() != 100 {
		t.Fatal("expected clamp to 100")
	}
	if (Progress{Current: 1, Target: 0}).Percent() != 0 {
		t.Fatal("zero target should be 0")
	}
	if (Progress{Current: 1, Target: 3}).Percent() != 33 {
		t.Fatal("expected 33")
	}
}

func TestSummarize(t *testing.T) {
	var raw []RawGoal
	body := `[
	  {"id": 1, "completed_at": "2024-06-01T00:00:00Z"},
	  {"id": 2, "status": "completed"},
	  {"id": 3, "current_value": 4, "target_value": 4},
	  {"id": 4, "current_value": 1, "target_value": 4}
	]`
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	s := Summarize(NormalizeAll(raw))
	if s != (Summary{Total: 4, Completed: 2, Reached: 1}) {
		t.Fatalf("got %+v", s)
	}
}
