package handler

import "github.com/gin-gonic/gin"

// Handlers groups every API handler mounted by RegisterRoutes.
type Handlers struct {
	Roster   *RosterHandler
	Reports  *ReportHandler
	Fees     *FeeHandler
	Search   *SearchHandler
	Sessions *SessionHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the report endpoints on api and the operational
// endpoints on root.
func RegisterRoutes(root *gin.Engine, api *gin.RouterGroup, h Handlers) {
	root.GET("/health", h.Metrics.Health)
	root.GET("/ready", h.Metrics.Ready)
	root.GET("/metrics", h.Metrics.Prometheus)
	api.GET("/stats", h.Metrics.Stats)

	classes := api.Group("/classes/:id")
	classes.GET("/roster", h.Roster.Roster)
	classes.GET("/id-cards", h.Roster.ClassIDCards)
	classes.GET("/roll-slips", h.Roster.RollSlips)
	classes.GET("/attendance", h.Reports.AttendanceSheet)
	classes.GET("/fee-report", h.Fees.ClassReport)
	classes.POST("/fee-reminders", h.Fees.SendReminders)

	students := api.Group("/students")
	students.GET("/search", h.Search.Search)
	students.GET("/:id/roll-number", h.Roster.RollNumber)
	students.GET("/:id/id-card", h.Roster.IDCard)

	api.GET("/exams/:id/award-list", h.Reports.AwardList)
	api.GET("/fee-records/:id/invoice", h.Fees.Invoice)

	api.GET("/sessions/current", h.Sessions.Current)
	api.PUT("/sessions/:id/current", h.Sessions.SetCurrent)
}
