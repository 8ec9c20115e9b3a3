package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"lernplan_backend/internal/store"
	"lernplan_backend/internal/util"
)

// fakeStore ein In-Memory-Backend mit echter Versionsprüfung.
type fakeStore struct {
	mu      sync.Mutex
	content []byte
	version int
	writes  int
	casErr  error
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) Fetch(ctx context.Context) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.content == nil {
		return nil, "", util.ErrStoreNotFound
	}
	return append([]byte{}, f.content...), strconv.Itoa(f.version), nil
}

func (f *fakeStore) CompareAndSwap(ctx context.Context, expected string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.casErr != nil {
		return "", f.casErr
	}
	current := ""
	if f.content != nil {
		current = strconv.Itoa(f.version)
	}
	if expected != current {
		return "", util.ErrStoreConflict
	}
	f.content = append([]byte{}, content...)
	f.version++
	f.writes++
	return strconv.Itoa(f.version), nil
}

var _ store.Store = (*fakeStore)(nil)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestSession(t *testing.T, writeMode string) (*SessionService, *fakeStore, *fakeClock) {
	t.Helper()
	st := &fakeStore{}
	clk := &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := NewSessionService(st, writeMode)
	s.now = clk.Now
	s.Load(context.Background())
	return s, st, clk
}

func TestLoadMissingSnapshot(t *testing.T) {
	s, _, _ := newTestSession(t, util.WriteModeMutation)
	doc, version := s.Snapshot()

	if version != "" {
		t.Fatalf("expected empty version, got %q", version)
	}
	if len(doc.Tasks) != 0 || len(doc.Habits) != 0 || doc.Points != 0 {
		t.Fatalf("expected default document, got %+v", doc)
	}
	if doc.LastUpdate != "2025-03-10" {
		t.Fatalf("expected last_update today, got %q", doc.LastUpdate)
	}
}

func TestAddTaskPersists(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeMutation)

	doc, err := s.AddTask(context.Background(), "  Analysis  ", 2)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if len(doc.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(doc.Tasks))
	}
	if doc.Tasks[0].Name != "Analysis" {
		t.Fatalf("name not trimmed: %q", doc.Tasks[0].Name)
	}
	if doc.Tasks[0].ID == "" {
		t.Fatal("task has no ID")
	}
	if st.writes != 1 {
		t.Fatalf("expected 1 store write, got %d", st.writes)
	}
}

func TestAddTaskIgnoresInvalid(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeMutation)

	for _, c := range []struct {
		name     string
		duration float64
	}{
		{"", 2},
		{"   ", 2},
		{"Analysis", 0},
		{"Analysis", -1},
	} {
		doc, err := s.AddTask(context.Background(), c.name, c.duration)
		if err != nil {
			t.Fatalf("AddTask(%q, %v): %v", c.name, c.duration, err)
		}
		if len(doc.Tasks) != 0 {
			t.Fatalf("AddTask(%q, %v) appended a task", c.name, c.duration)
		}
	}
	if st.writes != 0 {
		t.Fatalf("ignored mutations must not write, got %d writes", st.writes)
	}
}

func TestToggleTaskAwardsPointsOnce(t *testing.T) {
	s, _, _ := newTestSession(t, util.WriteModeMutation)

	doc, _ := s.AddTask(context.Background(), "Analysis", 2)
	id := doc.Tasks[0].ID

	doc, err := s.ToggleTask(context.Background(), id, true)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if doc.Points != 20 {
		t.Fatalf("expected 20 points, got %d", doc.Points)
	}

	// Wiederholtes true ist ein No-op und vergibt nie doppelt
	doc, err = s.ToggleTask(context.Background(), id, true)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if doc.Points != 20 {
		t.Fatalf("repeated toggle awarded again: %d points", doc.Points)
	}

	// Zurücksetzen nimmt keine Punkte weg
	doc, _ = s.ToggleTask(context.Background(), id, false)
	if doc.Points != 20 {
		t.Fatalf("untoggle changed points: %d", doc.Points)
	}
}

func TestToggleTaskFractionalRounding(t *testing.T) {
	s, _, _ := newTestSession(t, util.WriteModeMutation)

	doc, _ := s.AddTask(context.Background(), "Karteikarten", 0.25)
	doc, _ = s.ToggleTask(context.Background(), doc.Tasks[0].ID, true)
	if doc.Points != 3 {
		t.Fatalf("expected round(0.25*10) = 3 points, got %d", doc.Points)
	}
}

func TestStaleIDIsIgnored(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeMutation)
	s.AddTask(context.Background(), "Analysis", 2)
	writesBefore := st.writes

	doc, err := s.ToggleTask(context.Background(), "gibt-es-nicht", true)
	if err != nil {
		t.Fatalf("stale ID must not error: %v", err)
	}
	if doc.Points != 0 {
		t.Fatalf("stale ID awarded points: %d", doc.Points)
	}
	if st.writes != writesBefore {
		t.Fatal("stale ID triggered a write")
	}

	if _, err := s.DeleteTask(context.Background(), "gibt-es-nicht"); err != nil {
		t.Fatalf("stale delete must not error: %v", err)
	}
}

func TestAddWeeklyEntryValidatesDay(t *testing.T) {
	s, _, _ := newTestSession(t, util.WriteModeMutation)

	if _, err := s.AddWeeklyEntry(context.Background(), "Monday", "Lesen", 1); !errors.Is(err, util.ErrUnknownWeekday) {
		t.Fatalf("expected ErrUnknownWeekday, got %v", err)
	}

	doc, err := s.AddWeeklyEntry(context.Background(), "Montag", "Lesen", 1)
	if err != nil {
		t.Fatalf("AddWeeklyEntry: %v", err)
	}
	if len(doc.WeeklyPlan) != 1 || doc.WeeklyPlan[0].Day != "Montag" {
		t.Fatalf("unexpected weekly plan: %+v", doc.WeeklyPlan)
	}
}

func TestConfigureExamValidation(t *testing.T) {
	s, _, _ := newTestSession(t, util.WriteModeMutation)

	if _, err := s.ConfigureExam(context.Background(), "Mathe", "10.03.2025", 3); !errors.Is(err, util.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := s.ConfigureExam(context.Background(), "Mathe", "2025-06-01", -1); !errors.Is(err, util.ErrInvalidChapterCount) {
		t.Fatalf("expected ErrInvalidChapterCount, got %v", err)
	}
}

func TestConfigureExamResize(t *testing.T) {
	s, _, _ := newTestSession(t, util.WriteModeMutation)

	doc, err := s.ConfigureExam(context.Background(), "Mathe", "2025-06-01", 3)
	if err != nil {
		t.Fatalf("ConfigureExam: %v", err)
	}
	if len(doc.Exam.Chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(doc.Exam.Chapters))
	}
	if doc.Exam.Chapters[2].Name != "Kapitel 3" {
		t.Fatalf("unexpected chapter name %q", doc.Exam.Chapters[2].Name)
	}

	chapterID := doc.Exam.Chapters[0].ID
	if _, err := s.SetExamStep(context.Background(), chapterID, 0, true); err != nil {
		t.Fatalf("SetExamStep: %v", err)
	}

	// Gleiche Anzahl: Schritt-Flags und Kennungen bleiben erhalten
	doc, _ = s.ConfigureExam(context.Background(), "Mathe II", "2025-06-15", 3)
	if doc.Exam.Name != "Mathe II" || doc.Exam.Date != "2025-06-15" {
		t.Fatalf("name/date not updated: %+v", doc.Exam)
	}
	if doc.Exam.Chapters[0].ID != chapterID {
		t.Fatal("chapter IDs regenerated despite unchanged count")
	}
	if !doc.Exam.Chapters[0].Steps[0] {
		t.Fatal("step flags lost despite unchanged count")
	}

	// Andere Anzahl: destruktiver Neuaufbau, alle Schritte offen
	doc, _ = s.ConfigureExam(context.Background(), "Mathe II", "2025-06-15", 5)
	if len(doc.Exam.Chapters) != 5 {
		t.Fatalf("expected 5 chapters, got %d", len(doc.Exam.Chapters))
	}
	for i, chap := range doc.Exam.Chapters {
		for step, done := range chap.Steps {
			if done {
				t.Fatalf("chapter %d step %d survived the resize", i, step)
			}
		}
	}
}

func TestSetExamStepBounds(t *testing.T) {
	s, _, _ := newTestSession(t, util.WriteModeMutation)
	doc, _ := s.ConfigureExam(context.Background(), "Mathe", "2025-06-01", 1)
	id := doc.Exam.Chapters[0].ID

	if _, err := s.SetExamStep(context.Background(), id, -1, true); !errors.Is(err, util.ErrStepOutOfRange) {
		t.Fatalf("expected ErrStepOutOfRange, got %v", err)
	}
	if _, err := s.SetExamStep(context.Background(), id, 6, true); !errors.Is(err, util.ErrStepOutOfRange) {
		t.Fatalf("expected ErrStepOutOfRange, got %v", err)
	}
	if _, err := s.SetExamStep(context.Background(), "unbekannt", 0, true); err != nil {
		t.Fatalf("unknown chapter must not error: %v", err)
	}
}

func TestAddHabitDuplicate(t *testing.T) {
	s, _, _ := newTestSession(t, util.WriteModeMutation)

	if _, err := s.AddHabit(context.Background(), "Lesen"); err != nil {
		t.Fatalf("AddHabit: %v", err)
	}
	if _, err := s.AddHabit(context.Background(), "Lesen"); !errors.Is(err, util.ErrHabitExists) {
		t.Fatalf("expected ErrHabitExists, got %v", err)
	}

	doc, err := s.AddHabit(context.Background(), "   ")
	if err != nil {
		t.Fatalf("empty habit name must be ignored: %v", err)
	}
	if len(doc.Habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(doc.Habits))
	}
}

func TestRolloverStreaks(t *testing.T) {
	s, _, clk := newTestSession(t, util.WriteModeMutation)
	ctx := context.Background()

	s.AddHabit(ctx, "Lesen")
	s.ToggleHabit(ctx, "Lesen", true)

	// Tag 1 → Tag 2: erledigt, Streak steigt, Flag fällt
	clk.Advance(24 * time.Hour)
	if err := s.RolloverIfStale(ctx); err != nil {
		t.Fatalf("RolloverIfStale: %v", err)
	}
	doc, _ := s.Snapshot()
	if doc.Habits["Lesen"].Streak != 1 || doc.Habits["Lesen"].Done {
		t.Fatalf("after day 1: %+v", doc.Habits["Lesen"])
	}
	if doc.LastUpdate != "2025-03-11" {
		t.Fatalf("last_update = %q", doc.LastUpdate)
	}

	// Tag 2 → Tag 3: wieder erledigt
	s.ToggleHabit(ctx, "Lesen", true)
	clk.Advance(24 * time.Hour)
	s.RolloverIfStale(ctx)
	doc, _ = s.Snapshot()
	if doc.Habits["Lesen"].Streak != 2 {
		t.Fatalf("streak = %d, expected 2", doc.Habits["Lesen"].Streak)
	}

	// Tag 3 → Tag 4: nicht erledigt, Streak bricht
	clk.Advance(24 * time.Hour)
	s.RolloverIfStale(ctx)
	doc, _ = s.Snapshot()
	if doc.Habits["Lesen"].Streak != 0 {
		t.Fatalf("streak = %d, expected 0 after miss", doc.Habits["Lesen"].Streak)
	}
}

func TestRolloverSameDayIsNoop(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeMutation)
	ctx := context.Background()

	s.AddHabit(ctx, "Lesen")
	s.ToggleHabit(ctx, "Lesen", true)
	writesBefore := st.writes

	if err := s.RolloverIfStale(ctx); err != nil {
		t.Fatalf("RolloverIfStale: %v", err)
	}
	doc, _ := s.Snapshot()
	if !doc.Habits["Lesen"].Done || doc.Habits["Lesen"].Streak != 0 {
		t.Fatalf("same-day rollover mutated habit: %+v", doc.Habits["Lesen"])
	}
	if st.writes != writesBefore {
		t.Fatal("same-day rollover wrote to the store")
	}
}

func TestRolloverResetsDoneFlags(t *testing.T) {
	s, _, clk := newTestSession(t, util.WriteModeMutation)
	ctx := context.Background()

	doc, _ := s.AddTask(ctx, "Analysis", 2)
	s.ToggleTask(ctx, doc.Tasks[0].ID, true)
	doc, _ = s.AddWeeklyEntry(ctx, "Montag", "Lesen", 1)
	s.ToggleWeeklyEntry(ctx, doc.WeeklyPlan[0].ID, true)

	clk.Advance(24 * time.Hour)
	s.RolloverIfStale(ctx)

	doc, _ = s.Snapshot()
	if doc.Tasks[0].Done {
		t.Fatal("task done flag survived the rollover")
	}
	if doc.WeeklyPlan[0].Done {
		t.Fatal("weekly plan done flag survived the rollover")
	}
	if doc.Points != 20 {
		t.Fatalf("rollover changed points: %d", doc.Points)
	}
}

func TestRolloverAwardsBadge(t *testing.T) {
	s, _, clk := newTestSession(t, util.WriteModeMutation)
	ctx := context.Background()

	s.AddHabit(ctx, "Sport")
	s.mu.Lock()
	s.doc.Habits["Sport"].Streak = 6
	s.doc.Habits["Sport"].Done = true
	s.mu.Unlock()

	clk.Advance(24 * time.Hour)
	s.RolloverIfStale(ctx)

	doc, _ := s.Snapshot()
	if doc.Habits["Sport"].Streak != 7 {
		t.Fatalf("streak = %d, expected 7", doc.Habits["Sport"].Streak)
	}
	if !doc.HasBadge("Sport-Meister") {
		t.Fatal("expected Sport-Meister badge")
	}

	// Abzeichen werden nie doppelt vergeben
	s.ToggleHabit(ctx, "Sport", true)
	clk.Advance(24 * time.Hour)
	s.RolloverIfStale(ctx)
	doc, _ = s.Snapshot()
	count := 0
	for _, b := range doc.Badges {
		if b == "Sport-Meister" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("badge awarded %d times", count)
	}

	// Abzeichen überleben das Löschen der Gewohnheit
	s.DeleteHabit(ctx, "Sport")
	doc, _ = s.Snapshot()
	if !doc.HasBadge("Sport-Meister") {
		t.Fatal("badge lost after habit deletion")
	}
}

func TestManualWriteMode(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeManual)
	ctx := context.Background()

	s.AddTask(ctx, "Analysis", 2)
	s.AddHabit(ctx, "Lesen")
	if st.writes != 0 {
		t.Fatalf("manual mode wrote on mutation: %d writes", st.writes)
	}

	doc, version, err := s.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if st.writes != 1 {
		t.Fatalf("expected 1 write after Save, got %d", st.writes)
	}
	if version == "" {
		t.Fatal("version not updated after Save")
	}
	if len(doc.Tasks) != 1 {
		t.Fatalf("unexpected document after Save: %+v", doc)
	}
}

func TestConflictSurfaced(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeMutation)
	st.casErr = util.ErrStoreConflict

	_, err := s.AddTask(context.Background(), "Analysis", 2)
	if !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected ErrStoreConflict, got %v", err)
	}

	// Der lokale Stand bleibt trotz Konflikt erhalten
	doc, _ := s.Snapshot()
	if len(doc.Tasks) != 1 {
		t.Fatalf("local state lost after conflict: %+v", doc.Tasks)
	}
}

func TestSaveRetrySucceedsAfterConflict(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeMutation)
	ctx := context.Background()

	s.AddTask(ctx, "Analysis", 2)
	_, version := s.Snapshot()

	// Ein externer Schreiber überholt die Sitzung
	if _, err := st.CompareAndSwap(ctx, version, []byte(`{"points":99}`)); err != nil {
		t.Fatalf("external write: %v", err)
	}

	if _, _, err := s.Save(ctx); !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected ErrStoreConflict, got %v", err)
	}

	// Der Konflikt übernimmt die frische Versionsmarke; der manuelle
	// Retry gewinnt (last writer wins) statt für immer zu scheitern
	doc, newVersion, err := s.Save(ctx)
	if err != nil {
		t.Fatalf("retry after conflict: %v", err)
	}
	if newVersion == version || newVersion == "" {
		t.Fatalf("version not advanced after retry: %q", newVersion)
	}
	if len(doc.Tasks) != 1 {
		t.Fatalf("local document lost on retry: %+v", doc.Tasks)
	}

	content, _, _ := st.Fetch(ctx)
	if string(content) == `{"points":99}` {
		t.Fatal("retry did not overwrite the external write")
	}
}

func TestResetSucceedsAfterConflict(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeMutation)
	ctx := context.Background()

	s.AddTask(ctx, "Analysis", 2)
	_, version := s.Snapshot()
	st.CompareAndSwap(ctx, version, []byte(`{"points":99}`))

	if _, err := s.Reset(ctx); !errors.Is(err, util.ErrStoreConflict) {
		t.Fatalf("expected ErrStoreConflict, got %v", err)
	}
	doc, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("reset retry after conflict: %v", err)
	}
	if len(doc.Tasks) != 0 || doc.Points != 0 {
		t.Fatalf("reset document not empty: %+v", doc)
	}
}

func TestReset(t *testing.T) {
	s, st, _ := newTestSession(t, util.WriteModeMutation)
	ctx := context.Background()

	s.AddTask(ctx, "Analysis", 2)
	s.AddHabit(ctx, "Lesen")

	doc, err := s.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(doc.Tasks) != 0 || len(doc.Habits) != 0 || doc.Points != 0 {
		t.Fatalf("reset document not empty: %+v", doc)
	}
	if st.writes < 3 {
		t.Fatalf("reset must persist, got %d writes", st.writes)
	}
}

func TestLoadExistingSnapshot(t *testing.T) {
	st := &fakeStore{}
	st.content = []byte(`{"tasks":[{"name":"Analysis","duration":2}],"points":30,"last_update":"2025-03-10"}`)
	st.version = 4

	clk := &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := NewSessionService(st, util.WriteModeMutation)
	s.now = clk.Now
	s.Load(context.Background())

	doc, version := s.Snapshot()
	if version != "4" {
		t.Fatalf("version = %q, expected 4", version)
	}
	if doc.Points != 30 {
		t.Fatalf("points = %d, expected 30", doc.Points)
	}
	if doc.Tasks[0].ID == "" {
		t.Fatal("loaded task has no backfilled ID")
	}
}

func TestLoadCorruptSnapshotStartsFresh(t *testing.T) {
	st := &fakeStore{content: []byte("kein json"), version: 2}
	clk := &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := NewSessionService(st, util.WriteModeMutation)
	s.now = clk.Now
	s.Load(context.Background())

	doc, _ := s.Snapshot()
	if len(doc.Tasks) != 0 || doc.Points != 0 {
		t.Fatalf("expected fresh document, got %+v", doc)
	}
}
