package model

import "time"

// DateFormat ist das ISO-Datumsformat des Dokuments.
const DateFormat = "2006-01-02"

// weekdayNames bildet time.Weekday vollständig auf die deutschen Namen ab.
var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
	time.Sunday:    "Sonntag",
}

// WeekdayName liefert den deutschen Wochentagsnamen.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// WeekdayNames liefert alle Wochentage in Planungsreihenfolge (Montag zuerst).
func WeekdayNames() []string {
	return []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag", "Sonntag"}
}

// IsWeekdayName prüft, ob der Wert einer der sieben erkannten Wochentage ist.
func IsWeekdayName(s string) bool {
	for _, name := range weekdayNames {
		if name == s {
			return true
		}
	}
	return false
}
