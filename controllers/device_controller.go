package controllers

import (
	"fmt"
	"net/http"

	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/gin-gonic/gin"
)

// DeviceController serves the scanner relay. Replies are one line of plain
// text a small display can show: "ok", "ok: <detail>" or "error: <kind>".
type DeviceController struct{ *Srv }

func NewDeviceController(s *Srv) *DeviceController { return &DeviceController{Srv: s} }

// GET /api_action?uid=&acao=retirar|devolver&usuario_id=&borrower_name=&borrower_class=
func (dc *DeviceController) Action(c *gin.Context) {
	uid := c.Query("uid")
	kind, err := models.ParseModeKind(c.Query("acao"))
	if uid == "" || err != nil || !kind.Lending() {
		c.String(http.StatusBadRequest, "error: missing or invalid parameters")
		return
	}
	res, err := dc.Tracker.Transition(c.Request.Context(), tracker.TransitionRequest{
		Tag:           uid,
		Kind:          kind,
		BorrowerName:  c.Query("borrower_name"),
		BorrowerClass: c.Query("borrower_class"),
		OperatorID:    c.Query("usuario_id"),
	})
	if err != nil {
		dc.reject(c, err)
		return
	}
	switch res.Outcome {
	case tracker.OutcomeAlreadyCheckedOut:
		c.String(http.StatusOK, "ok: already checked out")
	case tracker.OutcomeAlreadyAvailable:
		c.String(http.StatusOK, "ok: already available")
	default:
		c.String(http.StatusOK, "ok")
	}
}

// GET /api_register_tag?uid=&mode_id=
func (dc *DeviceController) RegisterTag(c *gin.Context) {
	uid := c.Query("uid")
	if uid == "" {
		c.String(http.StatusBadRequest, "error: missing or invalid parameters")
		return
	}
	res, err := dc.Tracker.ResolveScan(c.Request.Context(), uid, c.Query("mode_id"))
	if err != nil {
		dc.reject(c, err)
		return
	}
	if res.Outcome == tracker.OutcomeAlreadyBound {
		c.String(http.StatusOK, fmt.Sprintf("ok: already bound %s", res.Tool.Code))
		return
	}
	c.String(http.StatusOK, fmt.Sprintf("ok: bound %s", res.Tool.Code))
}

func (dc *DeviceController) reject(c *gin.Context, err error) {
	kind := tracker.KindOf(err)
	if code := httpStatus(kind); code >= 500 {
		dc.Logger.Warn("device request failed", "path", c.FullPath(), "kind", kind, "err", err)
	}
	c.String(httpStatus(kind), "error: "+string(kind))
}
