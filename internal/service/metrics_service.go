package service

import (
	"time"

	"lernplan_backend/internal/model"
)

// PaceBehindThreshold ab dieser Schrittzahl pro Tag gilt die Vorbereitung
// als "hinter dem Zeitplan" (reiner UI-Hinweis, kein Fehler).
const PaceBehindThreshold = 6.0

// MetricsService berechnet abgeleitete Kennzahlen aus dem Dokument.
// Alle Methoden sind frei von Seiteneffekten.
type MetricsService struct{}

func NewMetricsService() *MetricsService {
	return &MetricsService{}
}

// DailyTotals Stunden des heutigen Tages
type DailyTotals struct {
	TotalHours     float64 `json:"totalHours"`
	CompletedHours float64 `json:"completedHours"`
	Ratio          float64 `json:"ratio"`
}

// WeeklyTotals Stunden der gesamten Woche
type WeeklyTotals struct {
	TotalHours     float64 `json:"totalHours"`
	CompletedHours float64 `json:"completedHours"`
	Ratio          float64 `json:"ratio"`
}

// ExamTotals Fortschritt der Klausurvorbereitung
type ExamTotals struct {
	TotalSteps     int     `json:"totalSteps"`
	CompletedSteps int     `json:"completedSteps"`
	Percent        float64 `json:"percent"`
}

// DailyTotals summiert alle Tagesaufgaben plus die Wochenplan-Einträge des
// heutigen Wochentags; erledigt zählt nur done == true.
func (s *MetricsService) DailyTotals(doc *model.Document, today time.Time) DailyTotals {
	day := model.WeekdayName(today.Weekday())

	var total, completed float64
	for _, t := range doc.Tasks {
		total += t.Duration
		if t.Done {
			completed += t.Duration
		}
	}
	for _, wp := range doc.WeeklyPlan {
		if wp.Day != day {
			continue
		}
		total += wp.Duration
		if wp.Done {
			completed += wp.Duration
		}
	}

	return DailyTotals{
		TotalHours:     total,
		CompletedHours: completed,
		Ratio:          ratio(completed, total),
	}
}

// WeeklyTotals summiert den gesamten Wochenplan unabhängig vom Tag.
func (s *MetricsService) WeeklyTotals(doc *model.Document) WeeklyTotals {
	var total, completed float64
	for _, wp := range doc.WeeklyPlan {
		total += wp.Duration
		if wp.Done {
			completed += wp.Duration
		}
	}
	return WeeklyTotals{
		TotalHours:     total,
		CompletedHours: completed,
		Ratio:          ratio(completed, total),
	}
}

// ExamTotals zählt erledigte Lernschritte über alle Kapitel.
func (s *MetricsService) ExamTotals(doc *model.Document) ExamTotals {
	totalSteps := model.StepCount * len(doc.Exam.Chapters)
	completed := 0
	for _, chap := range doc.Exam.Chapters {
		for _, done := range chap.Steps {
			if done {
				completed++
			}
		}
	}

	percent := 0.0
	if totalSteps > 0 {
		percent = 100 * float64(completed) / float64(totalSteps)
	}
	return ExamTotals{
		TotalSteps:     totalSteps,
		CompletedSteps: completed,
		Percent:        percent,
	}
}

// DaysLeft Tage bis zur Klausur; 0 ohne konfiguriertes (oder lesbares)
// Datum, negativ wenn die Klausur vorbei ist.
func (s *MetricsService) DaysLeft(doc *model.Document, today time.Time) int {
	if doc.Exam.Date == "" {
		return 0
	}
	examDate, err := time.Parse(model.DateFormat, doc.Exam.Date)
	if err != nil {
		return 0
	}
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(examDate.Sub(todayDate).Hours() / 24)
}

// DailyPace nötige Schritte pro Tag; ohne verbleibende Tage (oder überfällig)
// gilt "alles sofort": die offene Schrittzahl selbst.
func (s *MetricsService) DailyPace(stepsLeft, daysLeft int) float64 {
	if daysLeft > 0 {
		return float64(stepsLeft) / float64(daysLeft)
	}
	return float64(stepsLeft)
}

// BehindSchedule markiert ein zu hohes Tagespensum.
func (s *MetricsService) BehindSchedule(pace float64) bool {
	return pace > PaceBehindThreshold
}

// Level je 100 Punkte ein Level.
func (s *MetricsService) Level(points int) int {
	return points / 100
}

func ratio(completed, total float64) float64 {
	if total > 0 {
		return completed / total
	}
	return 0
}
