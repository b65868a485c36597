package redis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/campusradio/server/internal/repository/session"
)

func (r Repo) getWidgetsKey(sessionId string) string {
	return "session:" + sessionId + ":widgets"
}

func (r Repo) AddWidget(ctx context.Context, params *session.AddWidgetParams) error {
	funcName := "RedisRepo:AddWidget"
	slog.DebugContext(ctx, funcName, "params", params)

	key := r.getWidgetsKey(params.SessionId)
	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, key, params.WidgetId, params.Role)
	pipe.Expire(ctx, key, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return fmt.Errorf("failed to add widget: %w", err)
	}

	return nil
}

func (r Repo) RemoveWidget(ctx context.Context, params *session.RemoveWidgetParams) error {
	funcName := "RedisRepo:RemoveWidget"
	slog.DebugContext(ctx, funcName, "params", params)

	res, err := r.rc.HDel(ctx, r.getWidgetsKey(params.SessionId), params.WidgetId).Result()
	if err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return fmt.Errorf("failed to remove widget: %w", err)
	}

	if res == 0 {
		return session.ErrWidgetNotFound
	}

	return nil
}

// GetWidgets returns the widgets of a session ordered by id.
func (r Repo) GetWidgets(ctx context.Context, sessionId string) ([]session.Widget, error) {
	funcName := "RedisRepo:GetWidgets"
	slog.DebugContext(ctx, funcName, "session_id", sessionId)

	res, err := r.rc.HGetAll(ctx, r.getWidgetsKey(sessionId)).Result()
	if err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return nil, fmt.Errorf("failed to get widgets: %w", err)
	}

	widgets := make([]session.Widget, 0, len(res))
	for id, role := range res {
		widgets = append(widgets, session.Widget{Id: id, Role: role})
	}
	sort.Slice(widgets, func(i, j int) bool { return widgets[i].Id < widgets[j].Id })

	return widgets, nil
}
