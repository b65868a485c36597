package controller

import (
	"context"

	"github.com/campusradio/server/internal/service/station"
)

type contextKey int

const (
	sessionIdCtxKey contextKey = iota
	widgetIdCtxKey
	claimsCtxKey
)

func (c controller) getSessionIdFromCtx(ctx context.Context) string {
	sessionId, ok := ctx.Value(sessionIdCtxKey).(string)
	if !ok {
		return ""
	}

	return sessionId
}

func (c controller) getWidgetIdFromCtx(ctx context.Context) string {
	widgetId, ok := ctx.Value(widgetIdCtxKey).(string)
	if !ok {
		return ""
	}

	return widgetId
}

func (c controller) getClaimsFromCtx(ctx context.Context) (station.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(station.Claims)
	return claims, ok
}
