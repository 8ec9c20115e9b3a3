package model

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func TestDefaultDocument(t *testing.T) {
	doc := Default(testNow)

	if doc.Tasks == nil || len(doc.Tasks) != 0 {
		t.Fatalf("expected empty task list, got %v", doc.Tasks)
	}
	if doc.Habits == nil || len(doc.Habits) != 0 {
		t.Fatalf("expected empty habit map, got %v", doc.Habits)
	}
	if doc.Points != 0 {
		t.Fatalf("expected 0 points, got %d", doc.Points)
	}
	if doc.LastUpdate != "2025-03-10" {
		t.Fatalf("expected last_update 2025-03-10, got %q", doc.LastUpdate)
	}
}

func TestDecodePartialDocument(t *testing.T) {
	doc, err := Decode([]byte(`{"points": 42}`), testNow)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if doc.Tasks == nil || doc.WeeklyPlan == nil || doc.Badges == nil {
		t.Fatalf("missing slices not backfilled: %+v", doc)
	}
	if doc.Habits == nil {
		t.Fatal("missing habit map not backfilled")
	}
	if doc.Exam.Chapters == nil {
		t.Fatal("missing chapter list not backfilled")
	}
	if doc.Points != 42 {
		t.Fatalf("expected 42 points, got %d", doc.Points)
	}
	if doc.LastUpdate != "2025-03-10" {
		t.Fatalf("expected last_update backfilled to today, got %q", doc.LastUpdate)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte("not json"), testNow); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestNormalizeClampsNegatives(t *testing.T) {
	doc := &Document{
		Points: -5,
		Habits: map[string]*HabitState{
			"Lesen": {Streak: -3},
			"Sport": nil,
		},
	}
	doc.Normalize(testNow)

	if doc.Points != 0 {
		t.Fatalf("expected points clamped to 0, got %d", doc.Points)
	}
	if doc.Habits["Lesen"].Streak != 0 {
		t.Fatalf("expected streak clamped to 0, got %d", doc.Habits["Lesen"].Streak)
	}
	if doc.Habits["Sport"] == nil {
		t.Fatal("expected nil habit replaced with zero state")
	}
}

func TestNormalizeBackfillsIDs(t *testing.T) {
	doc := &Document{
		Tasks:      []Task{{Name: "Analysis", Duration: 2}},
		WeeklyPlan: []WeeklyPlanEntry{{Day: "Montag", Activity: "Lesen", Duration: 1}},
		Exam:       Exam{Chapters: []ExamChapter{{Name: "Kapitel 1"}}},
	}
	doc.Normalize(testNow)

	if doc.Tasks[0].ID == "" {
		t.Fatal("task ID not backfilled")
	}
	if doc.WeeklyPlan[0].ID == "" {
		t.Fatal("weekly plan entry ID not backfilled")
	}
	if doc.Exam.Chapters[0].ID == "" {
		t.Fatal("chapter ID not backfilled")
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := Default(testNow)
	doc.Tasks = append(doc.Tasks, Task{ID: NewID(), Name: "Analysis", Duration: 2})
	doc.Habits["Lesen"] = &HabitState{Done: true, Streak: 3}

	clone := doc.Clone()
	clone.Tasks[0].Done = true
	clone.Habits["Lesen"].Streak = 99

	if doc.Tasks[0].Done {
		t.Fatal("clone shares task slice with original")
	}
	if doc.Habits["Lesen"].Streak != 3 {
		t.Fatal("clone shares habit state with original")
	}
}

func TestHasBadge(t *testing.T) {
	doc := Default(testNow)
	doc.Badges = append(doc.Badges, "Lesen-Meister")

	if !doc.HasBadge("Lesen-Meister") {
		t.Fatal("expected badge to be found")
	}
	if doc.HasBadge("Sport-Meister") {
		t.Fatal("unexpected badge found")
	}
}
