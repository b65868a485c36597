package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/campusradio/server/internal/service/playback"
	"github.com/campusradio/server/pkg/ctxlogger"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	closeCodeRejected = 4001
	// maxMessageSize bounds inbound widget frames. Larger frames close the connection.
	maxMessageSize = 64 << 10
)

// connectWidget upgrades the request and serves the widget until its connection closes.
// The role query parameter is required. A missing session id creates a new session.
func (c controller) connectWidget(w http.ResponseWriter, r *http.Request) {
	sessionId := chi.URLParam(r, "session-id")
	role := r.URL.Query().Get("role")

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("role", role))
	if err := c.playbackService.CheckWidgetSlot(ctx, &playback.CheckWidgetSlotParams{
		SessionId: sessionId,
		Role:      role,
	}); err != nil {
		c.writeError(w, r.WithContext(ctx), err)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	connectResp, err := c.playbackService.ConnectWidget(ctx, &playback.ConnectWidgetParams{
		SessionId: sessionId,
		Role:      role,
		Conn:      conn,
	})
	if err != nil {
		// the slot was taken between the check and the upgrade
		c.logger.InfoContext(ctx, "failed to connect widget", "error", err)
		_, code := classifyError(err)
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(closeCodeRejected, code), time.Now().Add(writeWait))
		return
	}
	defer c.writers.forget(conn)

	ctx = context.WithValue(ctx, sessionIdCtxKey, connectResp.SessionId)
	ctx = context.WithValue(ctx, widgetIdCtxKey, connectResp.Widget.Id)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", connectResp.SessionId))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("widget_id", connectResp.Widget.Id))
	c.logger.InfoContext(ctx, "widget connected")

	defer c.disconnect(context.WithoutCancel(ctx), connectResp.SessionId, connectResp.Widget)

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "JOINED_SESSION",
		Payload: map[string]any{
			"session_id": connectResp.SessionId,
			"widget_id":  connectResp.Widget.Id,
			"role":       connectResp.Widget.Role,
			"state":      connectResp.State,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write joined session", "error", err)
		return
	}

	if err := c.broadcast(ctx, connectResp.Conns, &Output{
		Type:    "WIDGET_JOINED",
		Payload: connectResp.Widget,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast widget joined", "error", err)
	}

	if err := c.wsRouter.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, sessionId string, widget playback.Widget) {
	disconnectResp, err := c.playbackService.DisconnectWidget(ctx, &playback.DisconnectWidgetParams{
		SessionId: sessionId,
		WidgetId:  widget.Id,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect widget", "error", err)
		return
	}
	c.logger.InfoContext(ctx, "widget disconnected", "is_session_deleted", disconnectResp.IsSessionDeleted)

	if disconnectResp.IsSessionDeleted {
		return
	}

	if err := c.broadcast(ctx, disconnectResp.Conns, &Output{
		Type:    "WIDGET_LEFT",
		Payload: disconnectResp.Widget,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to broadcast widget left", "error", err)
	}

	if err := c.emit(ctx, &disconnectResp.StateResponse); err != nil {
		c.logger.WarnContext(ctx, "failed to emit disconnect effects", "error", err)
	}
}

// handleLoadingExpired delivers the transition made when a play attempt was never confirmed.
func (c controller) handleLoadingExpired(ctx context.Context, resp playback.StateResponse) {
	if err := c.emit(ctx, &resp); err != nil {
		c.logger.WarnContext(ctx, "failed to emit loading expired", "error", err)
	}
}
