package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/campusradio/server/pkg/ctxlogger"
	"github.com/campusradio/server/pkg/wsrouter"
	"github.com/gorilla/websocket"
)

func (c controller) wsRequestIdWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, conn, payload)
		}
	}
}

func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", wsrouter.GetMessageTypeFromCtx(ctx)))
			c.logger.DebugContext(ctx, "websocket message received", "payload", payload)

			start := time.Now()
			err := next(ctx, conn, payload)
			c.logger.DebugContext(ctx, "websocket message handled",
				"processing_time_us", time.Since(start).Microseconds(),
			)

			return err
		}
	}
}

func (c controller) handleWSError(ctx context.Context, conn *websocket.Conn, err error) {
	if errors.Is(err, errDeliveryFailed) {
		// the request itself succeeded, another widget is going away
		c.logger.WarnContext(ctx, "websocket message not delivered", "type", wsrouter.GetMessageTypeFromCtx(ctx), "error", err)
		return
	}

	c.logger.InfoContext(ctx, "websocket message failed", "type", wsrouter.GetMessageTypeFromCtx(ctx), "error", err)

	if err := c.writeWSError(ctx, conn, err); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}
