package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/worker"
)

// Health reports liveness of the two backing stores plus the dead letter
// backlog per job queue. Degraded dependencies flip the status code to 503
// so load balancers can pull the instance; a nonzero DLQ depth does not —
// it is an operator signal, not an outage.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbOK := true
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbOK = false
		}
		redisOK := rdb.Ping(ctx).Err() == nil

		status := http.StatusOK
		if !dbOK || !redisOK {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    statusWord(dbOK),
			"redis": statusWord(redisOK),
		}
		if redisOK {
			if depths, err := worker.DLQDepths(ctx, rdb); err == nil {
				body["dlq"] = depths
			}
		}
		c.JSON(status, body)
	}
}

func statusWord(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}
