package app

import (
	"lernplan_backend/docs"
	"lernplan_backend/internal/middleware"
	"lernplan_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.Use(middleware.Rollover(a.services.session))
	{
		api.GET("/health", c.health.HealthCheck)

		api.GET("/dashboard", c.dashboard.GetDashboard)

		api.GET("/document", c.document.GetDocument)
		api.POST("/document/save", c.document.SaveDocument)
		api.POST("/document/reset", c.document.ResetDocument)

		tasks := api.Group("/tasks")
		{
			tasks.POST("", c.task.AddTask)
			tasks.PATCH("/:id", c.task.UpdateTaskDone)
			tasks.DELETE("/:id", c.task.DeleteTask)
		}

		weeklyPlan := api.Group("/weekly-plan")
		{
			weeklyPlan.POST("", c.weeklyPlan.AddEntry)
			weeklyPlan.PATCH("/:id", c.weeklyPlan.UpdateEntryDone)
			weeklyPlan.DELETE("/:id", c.weeklyPlan.DeleteEntry)
		}

		exam := api.Group("/exam")
		{
			exam.PUT("", c.exam.ConfigureExam)
			exam.GET("/progress", c.exam.GetProgress)
			exam.PATCH("/chapters/:id/steps/:step", c.exam.UpdateStep)
		}

		habits := api.Group("/habits")
		{
			habits.POST("", c.habit.AddHabit)
			habits.PATCH("/:name", c.habit.UpdateHabitDone)
			habits.DELETE("/:name", c.habit.DeleteHabit)
		}
	}
}
