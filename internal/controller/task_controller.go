package controller

import (
	"lernplan_backend/internal/service"
	"lernplan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TaskController verwaltet die manuellen Tagesaufgaben.
type TaskController struct {
	Session *service.SessionService
}

func NewTaskController(session *service.SessionService) *TaskController {
	return &TaskController{Session: session}
}

// AddTaskRequest Anlage einer Tagesaufgabe
type AddTaskRequest struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
}

// UpdateDoneRequest Änderung eines done-Flags
type UpdateDoneRequest struct {
	Done bool `json:"done"`
}

// AddTask godoc
// @Summary Tagesaufgabe hinzufügen
// @Description Hängt eine Tagesaufgabe an; leerer Name oder Dauer <= 0 wird ignoriert
// @Tags Aufgaben
// @Accept json
// @Produce json
// @Param request body AddTaskRequest true "Tagesaufgabe"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/tasks [post]
func (c *TaskController) AddTask(ctx *gin.Context) {
	var request AddTaskRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.Session.AddTask(ctx.Request.Context(), request.Name, request.Duration)
	respondMutation(ctx, doc, err)
}

// UpdateTaskDone godoc
// @Summary Tagesaufgabe abhaken
// @Description Setzt das done-Flag; der Übergang auf erledigt vergibt Punkte (Dauer × 10)
// @Tags Aufgaben
// @Accept json
// @Produce json
// @Param id path string true "Aufgaben-Kennung"
// @Param request body UpdateDoneRequest true "Neuer Status"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/tasks/{id} [patch]
func (c *TaskController) UpdateTaskDone(ctx *gin.Context) {
	var request UpdateDoneRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.Session.ToggleTask(ctx.Request.Context(), ctx.Param("id"), request.Done)
	respondMutation(ctx, doc, err)
}

// DeleteTask godoc
// @Summary Tagesaufgabe löschen
// @Tags Aufgaben
// @Produce json
// @Param id path string true "Aufgaben-Kennung"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/tasks/{id} [delete]
func (c *TaskController) DeleteTask(ctx *gin.Context) {
	doc, err := c.Session.DeleteTask(ctx.Request.Context(), ctx.Param("id"))
	respondMutation(ctx, doc, err)
}
