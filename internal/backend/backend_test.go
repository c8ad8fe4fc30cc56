package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/mirror"
)

const rangeBody = `{
  "range": {"start": "2024-06-10", "end": "2024-06-16", "days": 7, "timezone": "UTC"},
  "days": [
    {
      "date": "2024-06-11",
      "points_total": 30, "points_day": 20, "points_night": 10,
      "completions_count": 2, "principal_count": 2, "recommended_count": 1,
      "categories": {"Regulación": 20, "Físico": 10},
      "emotions": {"Tristeza": {"count": 1, "intensity_avg": 4.0}},
      "emotion_entries": [{"name": "Tristeza", "intensity": 4, "note": null, "created_at": "2024-06-11T21:00:00.123456Z"}],
      "activities": [{"external_id": "breath-1", "name": "Respiración", "category_name": "Regulación",
                      "points": 20, "session_type": "day", "completed_at": "2024-06-11T08:15:00Z"}]
    },
    {"date": "not-a-date"}
  ],
  "totals": {"points_total": 30, "completions_total": 2, "principal_days": 1, "recommended_days": 1},
  "streak": {"current": 0, "best": 1},
  "distributions": {
    "categories_points": {"Regulación": 20, "Físico": 10},
    "emotions": {"Tristeza": {"count": 1, "intensity_avg": 4.0}}
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "secret", time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// ============================================================
// Ordered decoding
// ============================================================

func TestOrderedObjectKeepsDocumentOrder(t *testing.T) {
	var o orderedObject
	if err := json.Unmarshal([]byte(`{"Zeta": 1, "Alfa": 2, "Zeta": 9, "Mu": {"count": 3}}`), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"Zeta", "Alfa", "Mu"}
	if len(o) != len(want) {
		t.Fatalf("got %d fields", len(o))
	}
	for i, k := range want {
		if o[i].Key != k {
			t.Fatalf("field %d: got %q want %q", i, o[i].Key, k)
		}
	}
	if v, _ := numberFrom(o[0].Value, ""); v != 1 {
		t.Fatalf("repeated key should keep first value, got %v", v)
	}
}

func TestOrderedObjectNonObject(t *testing.T) {
	for _, in := range []string{`null`, `[1,2]`, `"x"`, `3`} {
		var o orderedObject
		if err := json.Unmarshal([]byte(in), &o); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if len(o) != 0 {
			t.Fatalf("%s: expected empty", in)
		}
	}
}

func TestDistributionTieOrderSurvivesDecode(t *testing.T) {
	var w wireDistributions
	body := `{"categories_points": {"B": 5, "A": 5, "C": 2}}`
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	top, ok := mirror.TopEntry(resolveCategories(w))
	if !ok || top.Name != "B" {
		t.Fatalf("expected B to win the tie, got %+v", top)
	}
}

func TestDistributionExcludesMalformed(t *testing.T) {
	var o orderedObject
	body := `{"ok": 3, "str": "4.5", "": 9, "   ": 2, "bad": "abc", "obj": {"points": 2}, "nul": null, "bool": true}`
	if err := json.Unmarshal([]byte(body), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := distribution(o, "points")
	want := mirror.Distribution{{Name: "ok", Weight: 3}, {Name: "str", Weight: 4.5}, {Name: "obj", Weight: 2}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

// ============================================================
// Emotion distribution variants
// ============================================================

func resolve(t *testing.T, body string) (mirror.EmotionDistribution, string) {
	t.Helper()
	var w wireDistributions
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return resolveEmotions(w)
}

func TestResolveEmotionsPrefersPoints(t *testing.T) {
	dist, key := resolve(t, `{"emotions": {"Ira": {"count": 9}}, "emotions_points": {"Calma": 12, "Ira": 3}}`)
	if key != "emotions_points" || dist.Kind != mirror.WeightPoints {
		t.Fatalf("got key %q kind %v", key, dist.Kind)
	}
	if dist.Entries[0].Name != "Calma" || dist.Entries[0].Weight != mirror.Points(12) {
		t.Fatalf("got %+v", dist.Entries[0])
	}
}

func TestResolveEmotionsCountObjects(t *testing.T) {
	dist, key := resolve(t, `{"emotions": {"Ira": {"count": 2, "intensity_avg": 7.5}, "Miedo": {"count": 0}, "Calma": 4}}`)
	if key != "emotions" || dist.Kind != mirror.WeightCount {
		t.Fatalf("got key %q kind %v", key, dist.Kind)
	}
	if len(dist.Entries) != 3 {
		t.Fatalf("got %+v", dist.Entries)
	}
	if dist.Entries[0].AverageIntensity == nil || *dist.Entries[0].AverageIntensity != 7.5 {
		t.Fatalf("average not carried: %+v", dist.Entries[0])
	}
	if dist.Entries[2].Weight != mirror.Count(4) {
		t.Fatalf("bare number should be a count: %+v", dist.Entries[2])
	}
}

func TestResolveEmotionsSkipsEmptyVariants(t *testing.T) {
	dist, key := resolve(t, `{"emotions_points": {}, "emotions": {"Ira": {"count": 0}}, "emotions_counts": {"Ira": 2}}`)
	if key != "emotions_counts" || dist.Kind != mirror.WeightCount {
		t.Fatalf("got key %q kind %v", key, dist.Kind)
	}
	if _, key := resolve(t, `{}`); key != "" {
		t.Fatalf("expected no source, got %q", key)
	}
}

// ============================================================
// Client
// ============================================================

func TestClientRange(t *testing.T) {
	var gotAuth, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != rangePath {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Write([]byte(rangeBody))
	})

	r := calendar.WeekRange(calendar.MustParseDate("2024-06-12"))
	p, err := c.Range(context.Background(), r)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header %q", gotAuth)
	}
	if gotQuery != "end=2024-06-16&start=2024-06-10" {
		t.Fatalf("query %q", gotQuery)
	}
	if p.Range != r {
		t.Fatalf("range %v", p.Range)
	}
	if len(p.Days) != 1 {
		t.Fatalf("expected the bad date to be dropped, got %d days", len(p.Days))
	}

	day := p.Days[0]
	if day.Categories[0].Name != "Regulación" || day.PrincipalCount != 2 {
		t.Fatalf("day %+v", day)
	}
	if len(day.EmotionEntries) != 1 || *day.EmotionEntries[0].Intensity != 4 {
		t.Fatalf("entries %+v", day.EmotionEntries)
	}
	if day.EmotionEntries[0].RecordedAt.Hour() != 21 {
		t.Fatalf("recorded at %v", day.EmotionEntries[0].RecordedAt)
	}
	if day.Activities[0].Session != mirror.SessionDay || day.Activities[0].ExternalID != "breath-1" {
		t.Fatalf("activity %+v", day.Activities[0])
	}
	if p.Streak.Best != 1 || p.Totals.PointsTotal != 30 {
		t.Fatalf("totals %+v streak %+v", p.Totals, p.Streak)
	}
	if p.EmotionSource != "emotions" || p.Emotions.Kind != mirror.WeightCount {
		t.Fatalf("emotion source %q", p.EmotionSource)
	}
}

func TestClientToday(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
		  "date": "2024-06-12",
		  "sessions": [{"id": 7, "session_type": "night", "points_earned": 10}],
		  "points_today": 10,
		  "points_by_category": {"Espejo": 10},
		  "activities": [{"name": "Diario", "category_name": "Espejo", "points": 10,
		                  "session_type": "night", "completed_at": "2024-06-12T22:00:00Z"}],
		  "emotion": {"name": "Calma", "intensity": 6, "note": "ok", "created_at": "2024-06-12T22:05:00Z"}
		}`))
	})

	p, err := c.Today(context.Background())
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if p.Date != calendar.MustParseDate("2024-06-12") || p.PointsToday != 10 {
		t.Fatalf("got %+v", p)
	}
	if len(p.Sessions) != 1 || p.Sessions[0].Type != mirror.SessionNight {
		t.Fatalf("sessions %+v", p.Sessions)
	}
	if p.Emotion == nil || p.Emotion.Name != "Calma" || p.Emotion.Note != "ok" {
		t.Fatalf("emotion %+v", p.Emotion)
	}
}

func TestClientTodayEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"date": "2024-06-12", "sessions": [], "points_today": 0, "points_by_category": {},
		  "activities": [], "emotion": null, "message": "nothing yet"}`))
	})
	p, err := c.Today(context.Background())
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if p.Emotion != nil || len(p.PointsByCategory) != 0 {
		t.Fatalf("got %+v", p)
	}
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"msg", http.StatusNotFound, `{"msg": "Usuario no encontrado"}`, "Usuario no encontrado"},
		{"message", http.StatusBadRequest, `{"message": "start debe ser <= end."}`, "start debe ser <= end."},
		{"error", http.StatusInternalServerError, `{"error": "boom"}`, "boom"},
		{"bare 401", http.StatusUnauthorized, ``, "unauthorized"},
		{"html 502", http.StatusBadGateway, `<html>`, "bad gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Today(context.Background())
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fe.Status != tt.status || fe.Message != tt.want {
				t.Fatalf("got %d %q", fe.Status, fe.Message)
			}
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, "", time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Today(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Status != 0 {
		t.Fatalf("expected unreachable FetchError, got %v", err)
	}
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New("  ", "tok", 0); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	c, err := New("http://localhost:3001/", "", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.BaseURL() != "http://localhost:3001" {
		t.Fatalf("trailing slash kept: %s", c.BaseURL())
	}
}

// ============================================================
// Sequencer
// ============================================================

func TestSequencerDropsStale(t *testing.T) {
	var s Sequencer
	if s.IsLatest(0) {
		t.Fatal("zero is never latest")
	}
	first := s.Next()
	second := s.Next()
	if s.IsLatest(first) {
		t.Fatal("first response should be stale")
	}
	if !s.IsLatest(second) {
		t.Fatal("second response should apply")
	}
}

func TestSequencerOutOfOrderResponses(t *testing.T) {
	var s Sequencer
	type response struct {
		seq  uint64
		week string
	}
	a := response{s.Next(), "2024-06-03"}
	b := response{s.Next(), "2024-06-10"}

	var applied []string
	for _, r := range []response{b, a} {
		if s.IsLatest(r.seq) {
			applied = append(applied, r.week)
		}
	}
	if len(applied) != 1 || applied[0] != "2024-06-10" {
		t.Fatalf("applied %v", applied)
	}
}

func TestSequencerConcurrent(t *testing.T) {
	var s Sequencer
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Next()
		}()
	}
	wg.Wait()
	if s.Current() != 50 {
		t.Fatalf("expected 50, got %d", s.Current())
	}
}

func TestClientGoals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != goalsPath {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"id": 1, "title": "Dormir 8h", "status": "completed"}, {"id": 2, "current_value": 3, "target_value": 3}]`))
	})
	gs, err := c.Goals(context.Background())
	if err != nil {
		t.Fatalf("Goals: %v", err)
	}
	if len(gs) != 2 || !gs[0].Completed || gs[1].Completed {
		t.Fatalf("got %+v", gs)
	}
	if !gs[1].Progress.Reached() {
		t.Fatal("second goal should have reached its target")
	}
}
