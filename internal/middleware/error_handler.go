package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"airledger-backend/internal/domain"
	"airledger-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// ErrorHandler is the global error handler. Returns the standard error format;
// 5xx errors are logged and pushed onto the Redis error log when rdb is set.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := errorStatus(err)
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("method", c.Method()).
				Str("path", c.Path()).Msg("request failed")
			recordError(rdb, c, err)
		}
		return response.Error(c, message, code, map[string]interface{}{"trace_id": GetTraceID(c)})
	}
}

// errorStatus maps err to an HTTP status and the message safe to return.
func errorStatus(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case domain.KindOf(err) != domain.KindInternal:
		return response.StatusFor(err), err.Error()
	}
	return fiber.StatusInternalServerError, "Internal Server Error"
}

func recordError(rdb *redis.Client, c *fiber.Ctx, err error) {
	if rdb == nil {
		return
	}
	entry, _ := json.Marshal(map[string]interface{}{
		"time":     time.Now(),
		"method":   c.Method(),
		"path":     c.OriginalURL(),
		"message":  err.Error(),
		"trace_id": GetTraceID(c),
	})
	ctx := context.Background()
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, KeyErrorLog, entry)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	_, _ = pipe.Exec(ctx)
}
