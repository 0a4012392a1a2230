package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is how long the in-progress marker is held
	LockDuration = 30 * time.Second
	// RetentionDuration is how long a completed response is replayable
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

// storedResponse is the replay record kept in redis
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}

type bodyCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware makes money-moving POSTs safe to retry. Requests
// carrying an Idempotency-Key header are processed once per key and caller;
// a retry replays the original response instead of re-executing the handler.
// Requests without the header pass through untouched.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		storageKey := fmt.Sprintf("idempotency:%s:%s", userID, key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == processingMarker:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"message": "request already in progress",
			})
			return

		case err == nil:
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr != nil {
				logger.Warn(ctx, "corrupt idempotency record, reprocessing")
			} else {
				c.Header("Content-Type", stored.ContentType)
				c.Header("X-Idempotency-Replayed", "true")
				c.String(stored.Status, stored.Body)
				c.Abort()
				return
			}

		case !errors.Is(err, redisv9.Nil):
			// Redis is down; better to process the request than refuse it.
			logger.Warn(ctx, "idempotency store unavailable, processing without replay protection")
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"message": "request already in progress",
			})
			return
		}

		w := &bodyCapture{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			record, _ := json.Marshal(storedResponse{
				Status:      status,
				ContentType: c.Writer.Header().Get("Content-Type"),
				Body:        w.body.String(),
			})
			_ = redisSet(ctx, storageKey, string(record), RetentionDuration)
		} else {
			// Failed attempts must stay retryable.
			_ = redisDel(ctx, storageKey)
		}
	}
}
