package store

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/mirror"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func d(s string) calendar.Date { return calendar.MustParseDate(s) }

func samplePayload() mirror.RangePayload {
	four := 4
	return mirror.RangePayload{
		Range: calendar.WeekRange(d("2024-06-12")),
		Days: []mirror.DayRecord{{
			Date:           d("2024-06-11"),
			PointsTotal:    30,
			PrincipalCount: 2,
			Categories:     mirror.Distribution{{Name: "Regulación", Weight: 20}, {Name: "Físico", Weight: 10}},
			EmotionEntries: []mirror.EmotionEntry{{Name: "Tristeza", Intensity: &four}},
		}},
		Totals:     mirror.Totals{PointsTotal: 30, PrincipalDays: 1},
		Streak:     mirror.Streak{Best: 1},
		Categories: mirror.Distribution{{Name: "Regulación", Weight: 20}, {Name: "Físico", Weight: 10}},
		Emotions: mirror.EmotionDistribution{Kind: mirror.WeightPoints, Entries: []mirror.EmotionShare{
			{Name: "Tristeza", Weight: mirror.Points(12)},
		}},
		EmotionSource: "emotions_points",
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := t.TempDir() + "/sub/mirror.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(KeyMetric, "Físico"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if v, _ := s2.GetSetting(KeyMetric); v != "Físico" {
		t.Fatalf("setting lost across reopen: %q", v)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)
	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		KeyBackendURL:  "",
		KeyToken:       "",
		KeyViewMode:    "today",
		KeyWeekCursor:  "",
		KeyMonthCursor: "",
		KeyMetric:      "",
		KeyCacheKeep:   "60",
	}
	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if !errors.Is(err, ErrNoSetting) {
		t.Fatalf("expected ErrNoSetting, got %v", err)
	}
}

func TestSetSettingsBatch(t *testing.T) {
	s := newTestStore(t)
	err := s.SetSettings(
		Setting{Key: KeyBackendURL, Value: "https://api.example.com"},
		Setting{Key: KeyToken, Value: "secret"},
	)
	if err != nil {
		t.Fatalf("SetSettings: %v", err)
	}
	url, tok := s.Backend()
	if url != "https://api.example.com" || tok != "secret" {
		t.Fatalf("got %q %q", url, tok)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 7 {
		t.Fatalf("expected at least 7 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestBackendSettings(t *testing.T) {
	s := newTestStore(t)
	if url, tok := s.Backend(); url != "" || tok != "" {
		t.Fatalf("expected empty defaults, got %q %q", url, tok)
	}
	if err := s.SetBackend(" http://localhost:3001 ", "abc"); err != nil {
		t.Fatal(err)
	}
	if url, tok := s.Backend(); url != "http://localhost:3001" || tok != "abc" {
		t.Fatalf("got %q %q", url, tok)
	}
}

func TestCacheKeepFallback(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyCacheKeep, "lots")
	if s.CacheKeep() != 60 {
		t.Fatal("expected fallback to 60")
	}
	s.SetSetting(KeyCacheKeep, "5")
	if s.CacheKeep() != 5 {
		t.Fatal("expected 5")
	}
}

// ============================================================
// View state
// ============================================================

func TestViewStateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	today := d("2024-06-12")

	st := mirror.NewViewState(today).WithMode(mirror.ModeMonth).Prev().
		WithMetric(mirror.CategoryMetric("Físico")).ToggleEmotion("Ira")
	if err := s.SaveViewState(st); err != nil {
		t.Fatal(err)
	}

	got := s.LoadViewState(today)
	if got.Mode != mirror.ModeMonth || got.MonthCursor.String() != "2024-05" {
		t.Fatalf("got %+v", got)
	}
	if got.Metric.Category != "Físico" {
		t.Fatalf("metric %+v", got.Metric)
	}
	if got.Emotion != "" {
		t.Fatal("emotion selection should not persist")
	}
}

func TestLoadViewStateDefaults(t *testing.T) {
	s := newTestStore(t)
	today := d("2024-06-12")
	got := s.LoadViewState(today)
	if got != mirror.NewViewState(today) {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadViewStateRejectsFuture(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(KeyWeekCursor, "2030-01-01")
	s.SetSetting(KeyMonthCursor, "2030-01")
	s.SetSetting(KeyViewMode, "year")

	today := d("2024-06-12")
	got := s.LoadViewState(today)
	if got.WeekCursor != today || got.MonthCursor != today.YearMonth() || got.Mode != mirror.ModeToday {
		t.Fatalf("got %+v", got)
	}
}

// ============================================================
// Snapshots
// ============================================================

func TestRangeSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	p := samplePayload()
	at := time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC)
	if err := s.SaveRange(p.Range, p, at); err != nil {
		t.Fatal(err)
	}

	c, err := s.LoadRange(p.Range)
	if err != nil {
		t.Fatal(err)
	}
	if !c.FetchedAt.Equal(at) {
		t.Fatalf("fetched at %v", c.FetchedAt)
	}
	got := c.Payload
	if got.Range != p.Range || len(got.Days) != 1 || got.Days[0].Date != d("2024-06-11") {
		t.Fatalf("got %+v", got)
	}
	if got.Categories[0].Name != "Regulación" || got.Categories[1].Name != "Físico" {
		t.Fatalf("category order lost: %+v", got.Categories)
	}
	if got.Emotions.Kind != mirror.WeightPoints || got.Emotions.Entries[0].Weight != mirror.Points(12) {
		t.Fatalf("emotions %+v", got.Emotions)
	}
	if *got.Days[0].EmotionEntries[0].Intensity != 4 {
		t.Fatal("intensity lost")
	}
}

func TestRangeSnapshotReplace(t *testing.T) {
	s := newTestStore(t)
	p := samplePayload()
	s.SaveRange(p.Range, p, time.Now())
	p.Totals.PointsTotal = 99
	s.SaveRange(p.Range, p, time.Now())

	c, err := s.LoadRange(p.Range)
	if err != nil {
		t.Fatal(err)
	}
	if c.Payload.Totals.PointsTotal != 99 {
		t.Fatalf("expected replaced snapshot, got %d", c.Payload.Totals.PointsTotal)
	}
	list, _ := s.ListSnapshots()
	if len(list) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(list))
	}
}

func TestLoadRangeMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadRange(calendar.DayRange(d("2024-01-01")))
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestTodaySnapshot(t *testing.T) {
	s := newTestStore(t)
	p := mirror.TodayPayload{
		Date:             d("2024-06-12"),
		PointsToday:      10,
		PointsByCategory: mirror.Distribution{{Name: "Espejo", Weight: 10}},
		Emotion:          &mirror.EmotionEntry{Name: "Calma"},
	}
	if err := s.SaveToday(p, time.Now()); err != nil {
		t.Fatal(err)
	}
	c, err := s.LoadToday(p.Date)
	if err != nil {
		t.Fatal(err)
	}
	if c.Payload.PointsToday != 10 || c.Payload.Emotion == nil || c.Payload.Emotion.Name != "Calma" {
		t.Fatalf("got %+v", c.Payload)
	}
	if _, err := s.LoadToday(d("2024-06-13")); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestPruneSnapshots(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		p := mirror.RangePayload{Range: calendar.DayRange(d("2024-06-01").AddDays(i))}
		if err := s.SaveRange(p.Range, p, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}
	s.SaveToday(mirror.TodayPayload{Date: d("2024-05-01")}, base)
	s.SaveToday(mirror.TodayPayload{Date: d("2024-06-10")}, base)

	n, err := s.PruneSnapshots(2, d("2024-06-12"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("expected 4 rows pruned, got %d", n)
	}
	list, _ := s.ListSnapshots()
	if len(list) != 2 || list[0].Range.Start != d("2024-06-05") {
		t.Fatalf("kept %+v", list)
	}
	if _, err := s.LoadToday(d("2024-06-10")); err != nil {
		t.Fatal("recent today snapshot should survive")
	}
}

func TestPruneKeepsCurrentRange(t *testing.T) {
	today := d("2024-06-12")
	current := calendar.WeekRange(today)
	for _, keep := range []int{1, 0} {
		s := newTestStore(t)
		base := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
		if err := s.SaveRange(current, mirror.RangePayload{Range: current}, base); err != nil {
			t.Fatal(err)
		}
		for i := 1; i <= 3; i++ {
			older := calendar.WeekRange(today.AddDays(-7 * i))
			if err := s.SaveRange(older, mirror.RangePayload{Range: older}, base.Add(time.Duration(i)*time.Hour)); err != nil {
				t.Fatal(err)
			}
		}

		if _, err := s.PruneSnapshots(keep, today); err != nil {
			t.Fatal(err)
		}
		if _, err := s.LoadRange(current); err != nil {
			t.Fatalf("keep=%d: current week should survive, got %v", keep, err)
		}
		list, _ := s.ListSnapshots()
		if len(list) != keep+1 {
			t.Fatalf("keep=%d: expected %d snapshots, got %+v", keep, keep+1, list)
		}
	}
}

// ============================================================
// Fetch history
// ============================================================

func TestFetchHistory(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)

	s.RecordFetch(Fetch{Kind: FetchToday, StartedAt: base, Duration: 120 * time.Millisecond, Status: 200})
	s.RecordFetch(Fetch{Kind: FetchRange, RangeStart: "2024-06-10", RangeEnd: "2024-06-16",
		StartedAt: base.Add(time.Minute), Status: 200})
	s.RecordFetch(Fetch{Kind: FetchRange, StartedAt: base.Add(2 * time.Minute), Status: 401, Error: "unauthorized"})

	last, err := s.LastFetch(FetchRange)
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.OK() || last.Status != 401 {
		t.Fatalf("last %+v", last)
	}
	ok, _ := s.LastSuccess()
	if ok == nil || ok.RangeEnd != "2024-06-16" {
		t.Fatalf("last success %+v", ok)
	}
	today, _ := s.LastFetch(FetchToday)
	if today == nil || today.Duration != 120*time.Millisecond {
		t.Fatalf("today %+v", today)
	}

	total, failed, err := s.FetchStats(base)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || failed != 1 {
		t.Fatalf("stats %d/%d", total, failed)
	}
}

func TestLastFetchEmpty(t *testing.T) {
	s := newTestStore(t)
	f, err := s.LastFetch("")
	if err != nil || f != nil {
		t.Fatalf("expected nil, got %+v %v", f, err)
	}
}

func TestListFetchesLimitAndFrom(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.RecordFetch(Fetch{Kind: FetchRange, StartedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	from := base.Add(2 * time.Hour)
	list, err := s.ListFetches(FetchFilter{From: &from})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2, got %d", len(list))
	}
	list, _ = s.ListFetches(FetchFilter{Limit: 3})
	if len(list) != 3 || !list[0].StartedAt.Equal(base.Add(3*time.Hour)) {
		t.Fatalf("got %+v", list)
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
