// controllers/srv.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DeiroLy/Safe-Tools/app"
	"github.com/DeiroLy/Safe-Tools/tracker"

	"github.com/gin-gonic/gin"
)

// Srv is the dependency hub shared by the controllers.
type Srv struct {
	Tracker *tracker.Service
	Logger  *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return NewSrv(a.Tracker, a.Logger)
}

func NewSrv(svc *tracker.Service, logger *slog.Logger) *Srv {
	if logger == nil {
		logger = slog.Default()
	}
	return &Srv{Tracker: svc, Logger: logger.With("component", "http")}
}

// --- helpers ---

func httpStatus(kind tracker.Kind) int {
	switch kind {
	case tracker.KindInvalidInput:
		return http.StatusBadRequest
	case tracker.KindNotFound:
		return http.StatusNotFound
	case tracker.KindConflict:
		return http.StatusConflict
	case tracker.KindResourceExhausted, tracker.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes {"status": kind, "error": msg, "retryable": bool}.
func (s *Srv) fail(c *gin.Context, err error) {
	kind := tracker.KindOf(err)
	code := httpStatus(kind)
	if code >= 500 {
		s.Logger.Warn("request failed", "path", c.FullPath(), "kind", kind, "err", err)
	}
	msg := err.Error()
	var te *tracker.Error
	switch {
	case kind == tracker.KindStoreUnavailable:
		msg = "store temporarily unavailable"
	case kind == tracker.KindInternal:
		msg = "internal error"
	case errors.As(err, &te) && te.Msg != "":
		msg = te.Msg
	}
	c.JSON(code, app.H{"status": kind, "error": msg, "retryable": tracker.Retryable(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, app.H{"status": tracker.KindInvalidInput, "error": msg, "retryable": false})
}
