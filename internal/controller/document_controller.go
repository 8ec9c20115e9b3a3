package controller

import (
	"errors"

	"lernplan_backend/internal/service"
	"lernplan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// DocumentController bedient Rohzugriff, expliziten Save und Reset.
type DocumentController struct {
	Session *service.SessionService
}

func NewDocumentController(session *service.SessionService) *DocumentController {
	return &DocumentController{Session: session}
}

// GetDocument godoc
// @Summary Dokument abrufen
// @Description Liefert das rohe Dokument samt Versionsmarke
// @Tags Dokument
// @Produce json
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Router /api/document [get]
func (c *DocumentController) GetDocument(ctx *gin.Context) {
	doc, version := c.Session.Snapshot()
	util.Success(ctx, gin.H{
		"document": doc,
		"version":  version,
	})
}

// SaveDocument godoc
// @Summary Dokument explizit speichern
// @Description Schreibt den aktuellen Stand per Compare-and-Swap; ein Konflikt kommt als 409 zurück und muss manuell wiederholt werden
// @Tags Dokument
// @Produce json
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/document/save [post]
func (c *DocumentController) SaveDocument(ctx *gin.Context) {
	doc, version, err := c.Session.Save(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, util.ErrStoreConflict) {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"document": doc,
		"version":  version,
	})
}

// ResetDocument godoc
// @Summary Dokument zurücksetzen
// @Description Ersetzt das Dokument durch den leeren Ausgangszustand
// @Tags Dokument
// @Produce json
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/document/reset [post]
func (c *DocumentController) ResetDocument(ctx *gin.Context) {
	doc, err := c.Session.Reset(ctx.Request.Context())
	respondMutation(ctx, doc, err)
}
