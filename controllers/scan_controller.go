package controllers

import (
	"net/http"

	"github.com/DeiroLy/Safe-Tools/app"
	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/gin-gonic/gin"
)

type ScanController struct{ *Srv }

func NewScanController(s *Srv) *ScanController { return &ScanController{Srv: s} }

type scanReq struct {
	Tag           string `json:"tag" binding:"required"`
	ModeID        string `json:"modeId"`
	Action        string `json:"action"`
	BorrowerName  string `json:"borrowerName"`
	BorrowerClass string `json:"borrowerClass"`
}

// POST /api/scans
func (sc *ScanController) Scan(c *gin.Context) {
	var in scanReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	var action models.ModeKind
	if in.Action != "" {
		k, err := models.ParseModeKind(in.Action)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		action = k
	}
	res, err := sc.Tracker.Dispatch(c.Request.Context(), tracker.ScanEvent{
		Tag:           in.Tag,
		Action:        action,
		ModeToken:     in.ModeID,
		OperatorID:    app.OperatorID(c),
		BorrowerName:  in.BorrowerName,
		BorrowerClass: in.BorrowerClass,
	})
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"status": scanStatus(res), "result": res})
}

// POST /api/scans/register
func (sc *ScanController) Register(c *gin.Context) {
	var in struct {
		Tag    string `json:"tag" binding:"required"`
		ModeID string `json:"modeId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := sc.Tracker.ResolveScan(c.Request.Context(), in.Tag, in.ModeID)
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"status": res.Outcome, "result": res})
}

// POST /api/scans/transition
func (sc *ScanController) Transition(c *gin.Context) {
	var in scanReq
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	kind, err := models.ParseModeKind(in.Action)
	if err != nil || !kind.Lending() {
		badRequest(c, "action must be check-out or return")
		return
	}
	res, err := sc.Tracker.Transition(c.Request.Context(), tracker.TransitionRequest{
		Tag:           in.Tag,
		Kind:          kind,
		BorrowerName:  in.BorrowerName,
		BorrowerClass: in.BorrowerClass,
		OperatorID:    app.OperatorID(c),
	})
	if err != nil {
		sc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"status": res.Outcome, "result": res})
}

func scanStatus(res *tracker.ScanResult) string {
	switch {
	case res.Binding != nil:
		return string(res.Binding.Outcome)
	case res.Transition != nil:
		return string(res.Transition.Outcome)
	}
	return "recorded"
}
