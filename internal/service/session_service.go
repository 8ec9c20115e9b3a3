package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"lernplan_backend/internal/model"
	"lernplan_backend/internal/store"
	"lernplan_backend/internal/util"
	"lernplan_backend/pkg/logger"
	"lernplan_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// SessionService besitzt das Dokument der laufenden Sitzung und wendet alle
// Mutationen an. Der Zustand gehört exklusiv dieser Instanz; der Mutex
// serialisiert die HTTP-Handler, innerhalb einer Mutation wird nie blockiert
// gewartet. Geschrieben wird über Compare-and-Swap mit der zuletzt gelesenen
// Versionsmarke; ein Konflikt erreicht den Aufrufer als util.ErrStoreConflict
// und lässt den lokalen Stand unangetastet.
type SessionService struct {
	mu        sync.Mutex
	doc       *model.Document
	version   string
	store     store.Store
	writeMode string
	now       func() time.Time
}

func NewSessionService(st store.Store, writeMode string) *SessionService {
	if writeMode != util.WriteModeManual {
		writeMode = util.WriteModeMutation
	}
	return &SessionService{
		store:     st,
		writeMode: writeMode,
		now:       time.Now,
	}
}

// Load holt den persistierten Stand. Ein fehlendes oder unerreichbares
// Snapshot ist kein Fehler: die Sitzung startet mit dem leeren Dokument.
func (s *SessionService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	fctx, cancel := context.WithTimeout(ctx, store.OpTimeout)
	defer cancel()

	content, version, err := s.store.Fetch(fctx)
	switch {
	case err == nil:
		doc, derr := model.Decode(content, now)
		if derr != nil {
			logger.Log.Warn("stored document unreadable, starting fresh", zap.Error(derr))
			doc = model.Default(now)
		}
		s.doc = doc
		s.version = version
	case errors.Is(err, util.ErrStoreNotFound):
		s.doc = model.Default(now)
		s.version = ""
	default:
		logger.Log.Warn("store unavailable, starting with default document",
			zap.String("backend", s.store.Name()), zap.Error(err))
		s.doc = model.Default(now)
		s.version = ""
	}

	if s.rolloverLocked() && s.writeMode == util.WriteModeMutation {
		if perr := s.persistLocked(ctx); perr != nil {
			logger.Log.Warn("rollover not persisted", zap.Error(perr))
		}
	}
}

// Snapshot liefert eine Kopie des Dokuments samt Versionsmarke.
func (s *SessionService) Snapshot() (*model.Document, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), s.version
}

// Now ist die Uhr der Sitzung.
func (s *SessionService) Now() time.Time {
	return s.now()
}

// RolloverIfStale führt den Tageswechsel genau einmal pro Tag aus:
// Gewohnheits-Streaks fortschreiben, alle done-Flags zurücksetzen,
// last_update auf heute. Am selben Tag erneut aufgerufen ist es ein No-op.
func (s *SessionService) RolloverIfStale(ctx context.Context) error {
	_, err := s.mutate(ctx, func(doc *model.Document) bool {
		return s.rolloverLocked()
	})
	return err
}

func (s *SessionService) rolloverLocked() bool {
	today := s.now().Format(model.DateFormat)
	doc := s.doc
	if doc.LastUpdate == today {
		return false
	}

	for name, h := range doc.Habits {
		if h.Done {
			h.Streak++
		} else {
			h.Streak = 0
		}
		h.Done = false

		// Abzeichen sind dauerhaft: einmal vergeben, nie entzogen
		if h.Streak >= 7 {
			badge := name + "-Meister"
			if !doc.HasBadge(badge) {
				doc.Badges = append(doc.Badges, badge)
			}
		}
	}

	// Einheitliche Tagesgrenze: auch Tages- und Wochenplan-Flags starten neu
	for i := range doc.Tasks {
		doc.Tasks[i].Done = false
	}
	for i := range doc.WeeklyPlan {
		doc.WeeklyPlan[i].Done = false
	}

	doc.LastUpdate = today
	return true
}

// AddTask hängt eine Tagesaufgabe an. Leerer Name oder Dauer <= 0 wird
// stillschweigend verworfen, um die Interaktion reibungslos zu halten.
func (s *SessionService) AddTask(ctx context.Context, name string, duration float64) (*model.Document, error) {
	name = strings.TrimSpace(name)
	return s.mutate(ctx, func(doc *model.Document) bool {
		if name == "" || duration <= 0 {
			return false
		}
		doc.Tasks = append(doc.Tasks, model.Task{
			ID:       model.NewID(),
			Name:     name,
			Duration: duration,
		})
		return true
	})
}

// ToggleTask setzt das done-Flag einer Tagesaufgabe. Nur der Übergang
// false→true vergibt Punkte (Dauer × 10); ein wiederholtes true ist ein
// No-op und vergibt nie doppelt. Eine unbekannte Kennung wird ignoriert.
func (s *SessionService) ToggleTask(ctx context.Context, id string, done bool) (*model.Document, error) {
	return s.mutate(ctx, func(doc *model.Document) bool {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID != id {
				continue
			}
			if doc.Tasks[i].Done == done {
				return false
			}
			if done {
				doc.Points += int(math.Round(doc.Tasks[i].Duration * 10))
			}
			doc.Tasks[i].Done = done
			return true
		}
		return false
	})
}

// DeleteTask entfernt eine Tagesaufgabe; unbekannte Kennungen sind No-ops.
func (s *SessionService) DeleteTask(ctx context.Context, id string) (*model.Document, error) {
	return s.mutate(ctx, func(doc *model.Document) bool {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == id {
				doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
				return true
			}
		}
		return false
	})
}

// AddWeeklyEntry hängt einen Wochenplan-Eintrag an. Der Tag muss einer der
// sieben erkannten Wochentage sein.
func (s *SessionService) AddWeeklyEntry(ctx context.Context, day, activity string, duration float64) (*model.Document, error) {
	if !model.IsWeekdayName(day) {
		return nil, util.ErrUnknownWeekday
	}
	activity = strings.TrimSpace(activity)
	return s.mutate(ctx, func(doc *model.Document) bool {
		if activity == "" || duration <= 0 {
			return false
		}
		doc.WeeklyPlan = append(doc.WeeklyPlan, model.WeeklyPlanEntry{
			ID:       model.NewID(),
			Day:      day,
			Activity: activity,
			Duration: duration,
		})
		return true
	})
}

// ToggleWeeklyEntry setzt das done-Flag eines Wochenplan-Eintrags.
func (s *SessionService) ToggleWeeklyEntry(ctx context.Context, id string, done bool) (*model.Document, error) {
	return s.mutate(ctx, func(doc *model.Document) bool {
		for i := range doc.WeeklyPlan {
			if doc.WeeklyPlan[i].ID == id {
				if doc.WeeklyPlan[i].Done == done {
					return false
				}
				doc.WeeklyPlan[i].Done = done
				return true
			}
		}
		return false
	})
}

// DeleteWeeklyEntry entfernt einen Wochenplan-Eintrag.
func (s *SessionService) DeleteWeeklyEntry(ctx context.Context, id string) (*model.Document, error) {
	return s.mutate(ctx, func(doc *model.Document) bool {
		for i := range doc.WeeklyPlan {
			if doc.WeeklyPlan[i].ID == id {
				doc.WeeklyPlan = append(doc.WeeklyPlan[:i], doc.WeeklyPlan[i+1:]...)
				return true
			}
		}
		return false
	})
}

// ConfigureExam setzt Name und Datum der Klausur. Weicht die gewünschte
// Kapitelanzahl vom Bestand ab (oder ist der Bestand leer), wird die
// Kapitelliste vollständig neu erzeugt ("Kapitel N", alle Schritte offen);
// das ist ein destruktiver Resize, kein Merge. Bei unveränderter Anzahl bleiben
// alle Schritt-Flags erhalten.
func (s *SessionService) ConfigureExam(ctx context.Context, name, date string, chapterCount int) (*model.Document, error) {
	if date != "" {
		if _, err := time.Parse(model.DateFormat, date); err != nil {
			return nil, util.ErrInvalidDate
		}
	}
	if chapterCount < 0 {
		return nil, util.ErrInvalidChapterCount
	}

	return s.mutate(ctx, func(doc *model.Document) bool {
		doc.Exam.Name = name
		doc.Exam.Date = date

		if len(doc.Exam.Chapters) == 0 || chapterCount != len(doc.Exam.Chapters) {
			chapters := make([]model.ExamChapter, chapterCount)
			for i := range chapters {
				chapters[i] = model.ExamChapter{
					ID:   model.NewID(),
					Name: fmt.Sprintf("Kapitel %d", i+1),
				}
			}
			doc.Exam.Chapters = chapters
		}
		return true
	})
}

// SetExamStep setzt einen der sechs Lernschritte eines Kapitels.
func (s *SessionService) SetExamStep(ctx context.Context, chapterID string, step int, done bool) (*model.Document, error) {
	if step < 0 || step >= model.StepCount {
		return nil, util.ErrStepOutOfRange
	}
	return s.mutate(ctx, func(doc *model.Document) bool {
		for i := range doc.Exam.Chapters {
			if doc.Exam.Chapters[i].ID == chapterID {
				if doc.Exam.Chapters[i].Steps[step] == done {
					return false
				}
				doc.Exam.Chapters[i].Steps[step] = done
				return true
			}
		}
		return false
	})
}

// AddHabit legt eine Gewohnheit an. Ein leerer Name wird ignoriert,
// ein Duplikat abgelehnt.
func (s *SessionService) AddHabit(ctx context.Context, name string) (*model.Document, error) {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		return s.doc.Clone(), nil
	}
	if _, exists := s.doc.Habits[name]; exists {
		return nil, util.ErrHabitExists
	}
	s.doc.Habits[name] = &model.HabitState{}

	var err error
	if s.writeMode == util.WriteModeMutation {
		err = s.persistLocked(ctx)
	}
	return s.doc.Clone(), err
}

// ToggleHabit setzt das heutige done-Flag einer Gewohnheit; die Streak
// wird erst beim Tageswechsel fortgeschrieben.
func (s *SessionService) ToggleHabit(ctx context.Context, name string, done bool) (*model.Document, error) {
	return s.mutate(ctx, func(doc *model.Document) bool {
		h, ok := doc.Habits[name]
		if !ok || h.Done == done {
			return false
		}
		h.Done = done
		return true
	})
}

// DeleteHabit entfernt eine Gewohnheit; bereits verdiente Abzeichen bleiben.
func (s *SessionService) DeleteHabit(ctx context.Context, name string) (*model.Document, error) {
	return s.mutate(ctx, func(doc *model.Document) bool {
		if _, ok := doc.Habits[name]; !ok {
			return false
		}
		delete(doc.Habits, name)
		return true
	})
}

// Save persistiert den aktuellen Stand unabhängig vom Schreibmodus.
func (s *SessionService) Save(ctx context.Context) (*model.Document, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.persistLocked(ctx)
	return s.doc.Clone(), s.version, err
}

// Reset ersetzt das Dokument durch den leeren Ausgangszustand und
// persistiert ihn sofort.
func (s *SessionService) Reset(ctx context.Context) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = model.Default(s.now())
	return s.doc.Clone(), s.persistLocked(ctx)
}

// mutate serialisiert eine Mutation und persistiert sie je nach Schreibmodus.
// fn meldet, ob sich das Dokument tatsächlich geändert hat; unwirksame
// Mutationen (ValidationIgnored) lösen kein Schreiben aus.
func (s *SessionService) mutate(ctx context.Context, fn func(doc *model.Document) bool) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := fn(s.doc)

	var err error
	if changed && s.writeMode == util.WriteModeMutation {
		err = s.persistLocked(ctx)
	}
	return s.doc.Clone(), err
}

func (s *SessionService) persistLocked(ctx context.Context) error {
	content, err := model.Encode(s.doc)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, store.OpTimeout)
	defer cancel()

	version, err := s.store.CompareAndSwap(wctx, s.version, content)
	switch {
	case err == nil:
		s.version = version
		monitoring.StoreWrites.WithLabelValues(s.store.Name(), "ok").Inc()
		return nil
	case errors.Is(err, util.ErrStoreConflict):
		monitoring.StoreWrites.WithLabelValues(s.store.Name(), "conflict").Inc()
		// Die frische Versionsmarke übernehmen, sonst scheitert auch jeder
		// manuelle Retry an der veralteten Marke. Das Dokument selbst bleibt
		// unangetastet; der nächste Save gewinnt wie beim GET-dann-PUT
		// der Quelle (last writer wins).
		s.refreshVersionLocked(ctx)
		return util.ErrStoreConflict
	default:
		monitoring.StoreWrites.WithLabelValues(s.store.Name(), "error").Inc()
		logger.Log.Error("document write failed",
			zap.String("backend", s.store.Name()), zap.Error(err))
		return err
	}
}

func (s *SessionService) refreshVersionLocked(ctx context.Context) {
	fctx, cancel := context.WithTimeout(ctx, store.OpTimeout)
	defer cancel()

	_, version, err := s.store.Fetch(fctx)
	switch {
	case err == nil:
		s.version = version
	case errors.Is(err, util.ErrStoreNotFound):
		s.version = ""
	default:
		logger.Log.Warn("version refresh after conflict failed",
			zap.String("backend", s.store.Name()), zap.Error(err))
	}
}
