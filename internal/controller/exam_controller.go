package controller

import (
	"strconv"

	"lernplan_backend/internal/service"
	"lernplan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ExamController verwaltet Klausurkonfiguration und Lernschritte.
type ExamController struct {
	Session *service.SessionService
	Metrics *service.MetricsService
}

func NewExamController(session *service.SessionService, metrics *service.MetricsService) *ExamController {
	return &ExamController{Session: session, Metrics: metrics}
}

// ConfigureExamRequest Klausurkonfiguration
type ConfigureExamRequest struct {
	Name         string `json:"name"`
	Date         string `json:"date"` // JJJJ-MM-TT oder leer
	ChapterCount int    `json:"chapterCount"`
}

// ConfigureExam godoc
// @Summary Klausur konfigurieren
// @Description Eine abweichende Kapitelanzahl erzeugt die Kapitelliste neu (alle Schritte offen); bei gleicher Anzahl bleiben die Schritte erhalten
// @Tags Klausur
// @Accept json
// @Produce json
// @Param request body ConfigureExamRequest true "Klausurkonfiguration"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 400 {object} util.Response "Ungültiges Datum oder Kapitelanzahl"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/exam [put]
func (c *ExamController) ConfigureExam(ctx *gin.Context) {
	var request ConfigureExamRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.Session.ConfigureExam(ctx.Request.Context(), request.Name, request.Date, request.ChapterCount)
	respondMutation(ctx, doc, err)
}

// UpdateStep godoc
// @Summary Lernschritt setzen
// @Description Setzt einen der sechs Lernschritte eines Kapitels
// @Tags Klausur
// @Accept json
// @Produce json
// @Param id path string true "Kapitel-Kennung"
// @Param step path int true "Schrittindex 0-5"
// @Param request body UpdateDoneRequest true "Neuer Status"
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Failure 400 {object} util.Response "Schrittindex außerhalb des Bereichs"
// @Failure 409 {object} util.Response "Speicherkonflikt"
// @Router /api/exam/chapters/{id}/steps/{step} [patch]
func (c *ExamController) UpdateStep(ctx *gin.Context) {
	step, err := strconv.Atoi(ctx.Param("step"))
	if err != nil {
		util.BadRequest(ctx, "Ungültiger Schrittindex")
		return
	}

	var request UpdateDoneRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc, err := c.Session.SetExamStep(ctx.Request.Context(), ctx.Param("id"), step, request.Done)
	respondMutation(ctx, doc, err)
}

// GetProgress godoc
// @Summary Klausurfortschritt abrufen
// @Tags Klausur
// @Produce json
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Router /api/exam/progress [get]
func (c *ExamController) GetProgress(ctx *gin.Context) {
	doc, _ := c.Session.Snapshot()
	now := c.Session.Now()

	exam := c.Metrics.ExamTotals(doc)
	daysLeft := c.Metrics.DaysLeft(doc, now)
	stepsLeft := exam.TotalSteps - exam.CompletedSteps
	pace := c.Metrics.DailyPace(stepsLeft, daysLeft)

	util.Success(ctx, gin.H{
		"exam":           doc.Exam,
		"totals":         exam,
		"daysLeft":       daysLeft,
		"stepsLeft":      stepsLeft,
		"pace":           pace,
		"behindSchedule": c.Metrics.BehindSchedule(pace),
	})
}
