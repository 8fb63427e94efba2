package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type SeenToucher interface {
	TouchUserSeen(ctx context.Context, userID string) error
}

// TouchLastSeen records operator activity at most once per throttle window,
// using a redis SETNX key as the gate.
func TouchLastSeen(users SeenToucher, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid := OperatorID(c)
		if oid == "" {
			c.Next()
			return
		}
		key := "operator:lastseen:" + oid
		if ok, _ := rdb.SetNX(c.Request.Context(), key, "1", throttle).Result(); ok {
			_ = users.TouchUserSeen(c.Request.Context(), oid) // best effort
		}
		c.Next()
	}
}
