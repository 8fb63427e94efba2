package routes

import (
	"net/http"

	"github.com/DeiroLy/Safe-Tools/app"
	"github.com/DeiroLy/Safe-Tools/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	modeCtl := controllers.NewModeController(s)
	scanCtl := controllers.NewScanController(s)
	toolCtl := controllers.NewToolController(s)
	deviceCtl := controllers.NewDeviceController(s)

	operatorMW := app.OperatorSession(a.Sessions(), a.Repo, a.Config.RequireOperator)
	seenMW := app.TouchLastSeen(a.Repo, a.RDB, a.Config.LastSeenThrottle)

	r.GET("/healthz", func(c *app.Ctx) {
		if sqlDB, err := a.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, app.H{"ok": false})
			return
		}
		c.JSON(http.StatusOK, app.H{"ok": true})
	})

	// ------------------------------
	// Console
	// ------------------------------
	api := r.Group("/api", operatorMW, seenMW)
	{
		api.POST("/modes", modeCtl.Declare)
		api.GET("/modes/pending", modeCtl.Pending)

		api.POST("/scans", scanCtl.Scan)
		api.POST("/scans/register", scanCtl.Register)
		api.POST("/scans/transition", scanCtl.Transition)

		api.GET("/tools/by-tag/:tag", toolCtl.ByTag)
		api.GET("/tools/:id/logs", toolCtl.History)
		api.GET("/logs", toolCtl.RecentLogs)
	}

	// ------------------------------
	// Scanner relay (plain text)
	// ------------------------------
	r.GET("/api_action", deviceCtl.Action)
	r.GET("/api_register_tag", deviceCtl.RegisterTag)
}
