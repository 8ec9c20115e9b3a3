package controller

import (
	"lernplan_backend/internal/service"
	"lernplan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// WeeklyPlanController verwaltet den wiederkehrenden Wochenplan.
type WeeklyPlanController struct {
	Session *service.SessionService
}

func NewWeeklyPlanController(session *service.SessionService) *WeeklyPlanController {
	return &WeeklyPlanController{Session: session}
}

// AddWeeklyEntryRequest Anlage eines Wochenplan-Eintrags
type AddWeeklyEntryRequest struct {
	Day      string  `json:"day"`
	Activity string  `json:"activity"`
	Duration float64 `json:"duration"`
}

// AddEntry godoc
// @Summary Wochenplan-Eintrag hinzufügen
// @Description Der Tag muss einer der sieben deutschen Wochentage sein
// @Tags Wochenplan
// @Accept json
// @Produce json
// @Param request body AddWeeklyEntryRequest true "Wochenplan-Eintrag"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 400 {object} util.Response "Unbekannter Wochentag"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/weekly-plan [post]
func (c *WeeklyPlanController) AddEntry(ctx *gin.Context) {
	var request AddWeeklyEntryRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.Session.AddWeeklyEntry(ctx.Request.Context(), request.Day, request.Activity, request.Duration)
	respondMutation(ctx, doc, err)
}

// UpdateEntryDone godoc
// @Summary Wochenplan-Eintrag abhaken
// @Tags Wochenplan
// @Accept json
// @Produce json
// @Param id path string true "Eintrags-Kennung"
// @Param request body UpdateDoneRequest true "Neuer Status"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/weekly-plan/{id} [patch]
func (c *WeeklyPlanController) UpdateEntryDone(ctx *gin.Context) {
	var request UpdateDoneRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.Session.ToggleWeeklyEntry(ctx.Request.Context(), ctx.Param("id"), request.Done)
	respondMutation(ctx, doc, err)
}

// DeleteEntry godoc
// @Summary Wochenplan-Eintrag löschen
// @Tags Wochenplan
// @Produce json
// @Param id path string true "Eintrags-Kennung"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/weekly-plan/{id} [delete]
func (c *WeeklyPlanController) DeleteEntry(ctx *gin.Context) {
	doc, err := c.Session.DeleteWeeklyEntry(ctx.Request.Context(), ctx.Param("id"))
	respondMutation(ctx, doc, err)
}
