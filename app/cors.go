package app

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// useCORS admits the console origins listed in WEB_ORIGIN (comma separated).
// "*" opens the API to any origin, without cookies.
func useCORS(r *gin.Engine, origins string) {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	switch {
	case len(cfg.AllowOrigins) == 0:
		return
	case len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*":
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	default:
		cfg.AllowCredentials = true
	}
	r.Use(cors.New(cfg))
}
