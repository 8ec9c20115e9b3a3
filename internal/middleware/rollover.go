package middleware

import (
	"errors"

	"lernplan_backend/internal/service"
	"lernplan_backend/internal/util"
	"lernplan_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Rollover führt vor jeder Anfrage den Tageswechsel aus, falls das Dokument
// noch vom Vortag stammt. Innerhalb eines Tages ist das ein No-op; damit
// sieht jede Berechnung garantiert den fortgeschriebenen Zustand.
func Rollover(session *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := session.RolloverIfStale(c.Request.Context()); err != nil {
			// Der Tageswechsel selbst ist gelaufen, nur das Persistieren
			// schlug fehl; die Anfrage darf trotzdem weiterlaufen.
			if !errors.Is(err, util.ErrStoreConflict) {
				logger.Log.Warn("rollover persist failed", zap.Error(err))
			}
		}
		c.Next()
	}
}
