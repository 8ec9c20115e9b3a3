package util

import "errors"

var (
	ErrStoreNotFound       = errors.New("kein gespeichertes dokument vorhanden")
	ErrStoreConflict       = errors.New("speicherkonflikt: dokument wurde zwischenzeitlich geändert")
	ErrHabitExists         = errors.New("gewohnheit existiert bereits")
	ErrUnknownWeekday      = errors.New("unbekannter wochentag")
	ErrStepOutOfRange      = errors.New("lernschritt außerhalb des gültigen bereichs")
	ErrInvalidDate         = errors.New("ungültiges datum, erwartet JJJJ-MM-TT")
	ErrInvalidChapterCount = errors.New("ungültige kapitelanzahl")
)
