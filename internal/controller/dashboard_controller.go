package controller

import (
	"lernplan_backend/internal/model"
	"lernplan_backend/internal/service"
	"lernplan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// DashboardController liefert Dokument und alle abgeleiteten Kennzahlen.
type DashboardController struct {
	Session *service.SessionService
	Metrics *service.MetricsService
}

func NewDashboardController(session *service.SessionService, metrics *service.MetricsService) *DashboardController {
	return &DashboardController{Session: session, Metrics: metrics}
}

// GetDashboard godoc
// @Summary Dashboard abrufen
// @Description Liefert das Dokument samt Tages-, Wochen- und Klausur-Kennzahlen
// @Tags Dashboard
// @Produce json
// @Success 200 {object} util.Response{data=map[string]interface{}} "Erfolg"
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	doc, version := c.Session.Snapshot()
	now := c.Session.Now()

	daily := c.Metrics.DailyTotals(doc, now)
	weekly := c.Metrics.WeeklyTotals(doc)
	exam := c.Metrics.ExamTotals(doc)
	daysLeft := c.Metrics.DaysLeft(doc, now)
	stepsLeft := exam.TotalSteps - exam.CompletedSteps
	pace := c.Metrics.DailyPace(stepsLeft, daysLeft)

	util.Success(ctx, gin.H{
		"document":       doc,
		"version":        version,
		"today":          model.WeekdayName(now.Weekday()),
		"daily":          daily,
		"weekly":         weekly,
		"exam":           exam,
		"daysLeft":       daysLeft,
		"stepsLeft":      stepsLeft,
		"pace":           pace,
		"behindSchedule": c.Metrics.BehindSchedule(pace),
		"level":          c.Metrics.Level(doc.Points),
		"stepLabels":     model.StepLabels,
		"weekdays":       model.WeekdayNames(),
	})
}
