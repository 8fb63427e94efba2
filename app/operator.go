package app

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/DeiroLy/Safe-Tools/models"
	"github.com/DeiroLy/Safe-Tools/session"

	"github.com/gin-gonic/gin"
)

const (
	AppSessionCookie = "app_session"
	OperatorIDKey    = "operatorID"
	OperatorNameKey  = "operatorName"
)

// OperatorFinder confirms a session's operator still exists.
type OperatorFinder interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// OperatorSession resolves the operator behind the app_session cookie (or a
// bearer session id) and stores it in the context. Without a valid session
// the request proceeds anonymously unless required is set.
func OperatorSession(sessions *session.OperatorSessionStore, users OperatorFinder, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessionID(c.Request)
		if sid == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			c.Next()
			return
		}
		sess, err := sessions.Get(c.Request.Context(), sid)
		if err != nil {
			if required || !errors.Is(err, session.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
				return
			}
			c.Next()
			return
		}
		u, err := users.FindUserByID(c.Request.Context(), sess.OperatorID)
		if err != nil {
			_ = sessions.Delete(c.Request.Context(), sid)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set(OperatorIDKey, u.ID)
		c.Set(OperatorNameKey, u.Username)
		c.Next()
	}
}

// OperatorID returns the operator resolved by OperatorSession, or "".
func OperatorID(c *gin.Context) string {
	v, _ := c.Get(OperatorIDKey)
	id, _ := v.(string)
	return id
}

func sessionID(r *http.Request) string {
	if ck, err := r.Cookie(AppSessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
