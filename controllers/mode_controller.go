package controllers

import (
	"errors"
	"net/http"

	"github.com/DeiroLy/Safe-Tools/app"
	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/gin-gonic/gin"
)

type ModeController struct{ *Srv }

func NewModeController(s *Srv) *ModeController { return &ModeController{Srv: s} }

// POST /api/modes {kind, category}
func (mc *ModeController) Declare(c *gin.Context) {
	var in struct {
		Kind     string `json:"kind" binding:"required"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	kind, err := models.ParseModeKind(in.Kind)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	rec, err := mc.Tracker.DeclareIntent(c.Request.Context(), tracker.Intent{
		Kind:       kind,
		Category:   in.Category,
		OperatorID: app.OperatorID(c),
	})
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"status": "declared", "mode": rec})
}

// GET /api/modes/pending
func (mc *ModeController) Pending(c *gin.Context) {
	p, err := mc.Tracker.LatestPendingRegistration(c.Request.Context())
	if errors.Is(err, tracker.ErrNoPendingRegistration) {
		c.JSON(http.StatusOK, app.H{"status": "none", "pending": nil})
		return
	}
	if err != nil {
		mc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"status": "pending", "pending": p})
}
