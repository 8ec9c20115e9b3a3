package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StepCount ist die feste Anzahl Lernschritte pro Kapitel.
const StepCount = 6

// StepLabels benennt die sechs Lernschritte eines Kapitels.
var StepLabels = [StepCount]string{"Lesen", "Fragen", "25%", "50%", "75%", "100%"}

// Task eine manuelle Tagesaufgabe
type Task struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration float64 `json:"duration"` // Stunden, > 0
	Done     bool    `json:"done"`
}

// WeeklyPlanEntry ein wiederkehrender Wochenplan-Eintrag
type WeeklyPlanEntry struct {
	ID       string  `json:"id"`
	Day      string  `json:"day"` // Montag..Sonntag
	Activity string  `json:"activity"`
	Duration float64 `json:"duration"`
	Done     bool    `json:"done"`
}

// ExamChapter ein Kapitel der Klausurvorbereitung mit festen sechs Schritten
type ExamChapter struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Steps [StepCount]bool `json:"steps"`
}

// Exam die Klausurkonfiguration; Date == "" bedeutet "nicht konfiguriert"
type Exam struct {
	Name     string        `json:"name"`
	Date     string        `json:"date"` // ISO-Datum YYYY-MM-DD oder leer
	Chapters []ExamChapter `json:"chapters"`
}

// HabitState Zustand einer Gewohnheit; Streak zählt aufeinanderfolgende Tage
type HabitState struct {
	Done   bool `json:"done"`
	Streak int  `json:"streak"`
}

// Document das persistierte Gesamtaggregat einer Sitzung
type Document struct {
	Tasks      []Task                 `json:"tasks"`
	WeeklyPlan []WeeklyPlanEntry      `json:"weekly_plan"`
	Exam       Exam                   `json:"exam"`
	Habits     map[string]*HabitState `json:"habits"`
	Badges     []string               `json:"badges"`
	Points     int                    `json:"points"`
	LastUpdate string                 `json:"last_update"` // ISO-Datum des letzten Rollovers
}

// NewID erzeugt eine stabile Kennung für einen Listeneintrag.
// Einträge werden nie über ihre Position adressiert.
func NewID() string {
	return uuid.NewString()
}

// Default liefert das leere Dokument für Sitzungen ohne persistierten Stand.
func Default(now time.Time) *Document {
	return &Document{
		Tasks:      []Task{},
		WeeklyPlan: []WeeklyPlanEntry{},
		Exam:       Exam{Chapters: []ExamChapter{}},
		Habits:     map[string]*HabitState{},
		Badges:     []string{},
		LastUpdate: now.Format(DateFormat),
	}
}

// Normalize ergänzt fehlende Felder eines geladenen Dokuments.
// Ein unvollständiges Dokument ist nie ein harter Fehler.
func (d *Document) Normalize(now time.Time) {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.WeeklyPlan == nil {
		d.WeeklyPlan = []WeeklyPlanEntry{}
	}
	if d.Exam.Chapters == nil {
		d.Exam.Chapters = []ExamChapter{}
	}
	if d.Habits == nil {
		d.Habits = map[string]*HabitState{}
	}
	if d.Badges == nil {
		d.Badges = []string{}
	}
	for name, h := range d.Habits {
		if h == nil {
			d.Habits[name] = &HabitState{}
		} else if h.Streak < 0 {
			h.Streak = 0
		}
	}
	if d.Points < 0 {
		d.Points = 0
	}
	if d.LastUpdate == "" {
		d.LastUpdate = now.Format(DateFormat)
	}
	// Alt-Dokumente aus der Quellversion kennen keine Kennungen
	for i := range d.Tasks {
		if d.Tasks[i].ID == "" {
			d.Tasks[i].ID = NewID()
		}
	}
	for i := range d.WeeklyPlan {
		if d.WeeklyPlan[i].ID == "" {
			d.WeeklyPlan[i].ID = NewID()
		}
	}
	for i := range d.Exam.Chapters {
		if d.Exam.Chapters[i].ID == "" {
			d.Exam.Chapters[i].ID = NewID()
		}
	}
}

// Clone liefert eine tiefe Kopie, damit Leser nie den Sitzungszustand teilen.
func (d *Document) Clone() *Document {
	c := *d
	c.Tasks = append([]Task{}, d.Tasks...)
	c.WeeklyPlan = append([]WeeklyPlanEntry{}, d.WeeklyPlan...)
	c.Exam.Chapters = append([]ExamChapter{}, d.Exam.Chapters...)
	c.Badges = append([]string{}, d.Badges...)
	c.Habits = make(map[string]*HabitState, len(d.Habits))
	for name, h := range d.Habits {
		hc := *h
		c.Habits[name] = &hc
	}
	return &c
}

// HasBadge prüft, ob ein Abzeichen bereits vergeben wurde.
func (d *Document) HasBadge(badge string) bool {
	for _, b := range d.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// Decode deserialisiert ein Dokument und ergänzt fehlende Felder.
func Decode(data []byte, now time.Time) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dokument konnte nicht gelesen werden: %w", err)
	}
	doc.Normalize(now)
	return &doc, nil
}

// Encode serialisiert ein Dokument als UTF-8 JSON.
func Encode(doc *Document) ([]byte, error) {
	return json.Marshal(doc)
}
