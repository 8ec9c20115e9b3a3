package controller

import (
	"lernplan_backend/internal/service"
	"lernplan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// HabitController verwaltet Gewohnheiten und deren Streaks.
type HabitController struct {
	Session *service.SessionService
}

func NewHabitController(session *service.SessionService) *HabitController {
	return &HabitController{Session: session}
}

// AddHabitRequest Anlage einer Gewohnheit
type AddHabitRequest struct {
	Name string `json:"name"`
}

// AddHabit godoc
// @Summary Gewohnheit anlegen
// @Description Duplikate werden abgelehnt, leere Namen ignoriert
// @Tags Gewohnheiten
// @Accept json
// @Produce json
// @Param request body AddHabitRequest true "Gewohnheit"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 400 {object} util.Response "Gewohnheit existiert bereits"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/habits [post]
func (c *HabitController) AddHabit(ctx *gin.Context) {
	var request AddHabitRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.Session.AddHabit(ctx.Request.Context(), request.Name)
	respondMutation(ctx, doc, err)
}

// UpdateHabitDone godoc
// @Summary Gewohnheit für heute abhaken
// @Description Die Streak wird erst beim Tageswechsel fortgeschrieben
// @Tags Gewohnheiten
// @Accept json
// @Produce json
// @Param name path string true "Name der Gewohnheit"
// @Param request body UpdateDoneRequest true "Neuer Status"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/habits/{name} [patch]
func (c *HabitController) UpdateHabitDone(ctx *gin.Context) {
	var request UpdateDoneRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.Session.ToggleHabit(ctx.Request.Context(), ctx.Param("name"), request.Done)
	respondMutation(ctx, doc, err)
}

// DeleteHabit godoc
// @Summary Gewohnheit löschen
// @Description Bereits verdiente Abzeichen bleiben erhalten
// @Tags Gewohnheiten
// @Produce json
// @Param name path string true "Name der Gewohnheit"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/habits/{name} [delete]
func (c *HabitController) DeleteHabit(ctx *gin.Context) {
	doc, err := c.Session.DeleteHabit(ctx.Request.Context(), ctx.Param("name"))
	respondMutation(ctx, doc, err)
}
