package controllers

import (
	"net/http"
	"strconv"

	"github.com/DeiroLy/Safe-Tools/app"

	"github.com/gin-gonic/gin"
)

type ToolController struct{ *Srv }

func NewToolController(s *Srv) *ToolController { return &ToolController{Srv: s} }

// GET /api/tools/by-tag/:tag
func (tc *ToolController) ByTag(c *gin.Context) {
	v, err := tc.Tracker.GetToolByTag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		tc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"status": v.Status, "tool": v})
}

// GET /api/tools/:id/logs?limit=
func (tc *ToolController) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	logs, err := tc.Tracker.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		tc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": logs})
}

// GET /api/logs?limit=
func (tc *ToolController) RecentLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	logs, err := tc.Tracker.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		tc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": logs})
}
