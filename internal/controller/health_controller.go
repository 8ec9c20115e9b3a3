package controller

import (
	"context"
	"errors"
	"net/http"

	"lernplan_backend/internal/store"
	"lernplan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Store store.Store
}

func NewHealthController(st store.Store) *HealthController {
	return &HealthController{Store: st}
}

// HealthCheck godoc
// @Summary Gesundheitsprüfung
// @Description Prüft die Erreichbarkeit des Dokumentspeichers
// @Tags System
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sctx, cancel := context.WithTimeout(ctx.Request.Context(), store.OpTimeout)
	defer cancel()

	// Ein noch fehlendes Dokument ist ein gesunder Zustand
	_, _, err := c.Store.Fetch(sctx)
	if err != nil && !errors.Is(err, util.ErrStoreNotFound) {
		util.Error(ctx, http.StatusServiceUnavailable, "Document store unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"store": c.Store.Name(),
		},
	})
}
