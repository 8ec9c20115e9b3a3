package controller

import (
	"errors"

	"lernplan_backend/internal/model"
	"lernplan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondMutation bildet das Ergebnis einer Mutation einheitlich ab:
// Validierungsfehler als 400, ein verlorener Schreibzugriff als 409,
// sonst das aktualisierte Dokument. Ignorierte Mutationen (leerer Name,
// veraltete Kennung) liefern bewusst 200 mit dem unveränderten Dokument,
// damit der Client einfach neu rendert.
func respondMutation(c *gin.Context, doc *model.Document, err error) {
	switch {
	case err == nil:
		util.Success(c, gin.H{"document": doc})
	case errors.Is(err, util.ErrStoreConflict):
		util.Conflict(c, err.Error())
	case errors.Is(err, util.ErrUnknownWeekday),
		errors.Is(err, util.ErrStepOutOfRange),
		errors.Is(err, util.ErrInvalidDate),
		errors.Is(err, util.ErrInvalidChapterCount),
		errors.Is(err, util.ErrHabitExists):
		util.BadRequest(c, err.Error())
	default:
		util.LogInternalError(c, err)
	}
}
