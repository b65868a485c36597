package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusradio/server/internal/repository/session"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// checkExclusiveRole fails when role is single-instance and already taken in the session.
func checkExclusiveRole(sc *sessionConns, role string) error {
	switch role {
	case RoleHost:
		if sc.hasRole(RoleHost) {
			return ErrHostAlreadyConnected
		}
	case RolePodcast:
		if sc.hasRole(RolePodcast) {
			return ErrPodcastWidgetAlreadyConnected
		}
	}

	return nil
}

type CheckWidgetSlotParams struct {
	SessionId string
	Role      string
}

// CheckWidgetSlot tells whether a widget with role may join the session. An unknown session always has room.
func (s *service) CheckWidgetSlot(ctx context.Context, params *CheckWidgetSlotParams) error {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Role, RoleRule...),
	); err != nil {
		return err
	}

	if params.SessionId == "" {
		return nil
	}

	if err := validation.Validate(params.SessionId, SessionIdRule...); err != nil {
		return err
	}

	sc, err := s.getSessionConns(ctx, params.SessionId)
	if err != nil {
		return err
	}

	return checkExclusiveRole(&sc, params.Role)
}

type ConnectWidgetParams struct {
	// SessionId of the session to join. The session is created when it does not exist,
	// and a new id is generated when empty.
	SessionId string
	Role      string
	Conn      *websocket.Conn
}

type ConnectWidgetResponse struct {
	SessionId string
	Widget    Widget
	State     State
	// Conns of the other widgets of the session.
	Conns []*websocket.Conn
}

func (s *service) ConnectWidget(ctx context.Context, params *ConnectWidgetParams) (ConnectWidgetResponse, error) {
	if params.SessionId == "" {
		params.SessionId = uuid.NewString()
	}

	if err := validation.ValidateStruct(params,
		validation.Field(&params.SessionId, SessionIdRule...),
		validation.Field(&params.Role, RoleRule...),
		validation.Field(&params.Conn, validation.Required),
	); err != nil {
		return ConnectWidgetResponse{}, err
	}

	unlock := s.locks.lock(params.SessionId)
	defer unlock()

	st, err := s.getState(ctx, params.SessionId)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return ConnectWidgetResponse{}, err
		}

		st = s.defaultState()
		if err := s.sessionRepo.CreateState(ctx, &session.CreateStateParams{
			SessionId: params.SessionId,
			State:     st,
		}); err != nil {
			return ConnectWidgetResponse{}, fmt.Errorf("failed to create state: %w", err)
		}
		slog.InfoContext(ctx, "session created", "session_id", params.SessionId)
	}

	sc, err := s.getSessionConns(ctx, params.SessionId)
	if err != nil {
		return ConnectWidgetResponse{}, err
	}

	if err := checkExclusiveRole(&sc, params.Role); err != nil {
		return ConnectWidgetResponse{}, err
	}

	widgetId := uuid.NewString()
	if err := s.sessionRepo.AddWidget(ctx, &session.AddWidgetParams{
		SessionId: params.SessionId,
		WidgetId:  widgetId,
		Role:      params.Role,
	}); err != nil {
		return ConnectWidgetResponse{}, fmt.Errorf("failed to add widget: %w", err)
	}

	if err := s.connRepo.Add(params.Conn, widgetId); err != nil {
		if err := s.sessionRepo.RemoveWidget(ctx, &session.RemoveWidgetParams{
			SessionId: params.SessionId,
			WidgetId:  widgetId,
		}); err != nil {
			slog.WarnContext(ctx, "failed to roll back widget", "error", err)
		}

		return ConnectWidgetResponse{}, fmt.Errorf("failed to add conn: %w", err)
	}

	if err := s.sessionRepo.ExpireSession(ctx, params.SessionId); err != nil {
		slog.WarnContext(ctx, "failed to refresh session expiry", "error", err)
	}

	widgets := append(sc.widgets, session.Widget{Id: widgetId, Role: params.Role})

	return ConnectWidgetResponse{
		SessionId: params.SessionId,
		Widget:    Widget{Id: widgetId, Role: params.Role},
		State:     s.toState(params.SessionId, st, widgets),
		Conns:     sc.conns,
	}, nil
}

type DisconnectWidgetParams struct {
	SessionId string
	WidgetId  string
}

type DisconnectWidgetResponse struct {
	StateResponse
	Widget           Widget
	IsSessionDeleted bool
}

// DisconnectWidget removes the widget. Losing the host stops an active radio and losing the podcast widget
// pauses the podcast, since their audio elements are gone. The session is deleted with its last widget.
func (s *service) DisconnectWidget(ctx context.Context, params *DisconnectWidgetParams) (DisconnectWidgetResponse, error) {
	unlock := s.locks.lock(params.SessionId)
	defer unlock()

	if _, err := s.connRepo.RemoveByWidgetId(params.WidgetId); err != nil {
		slog.DebugContext(ctx, "conn already removed", "widget_id", params.WidgetId, "error", err)
	}

	sc, err := s.getSessionConns(ctx, params.SessionId)
	if err != nil {
		return DisconnectWidgetResponse{}, err
	}

	role, ok := sc.roleOf(params.WidgetId)
	if !ok {
		return DisconnectWidgetResponse{}, ErrWidgetNotFound
	}

	if err := s.sessionRepo.RemoveWidget(ctx, &session.RemoveWidgetParams{
		SessionId: params.SessionId,
		WidgetId:  params.WidgetId,
	}); err != nil {
		return DisconnectWidgetResponse{}, fmt.Errorf("failed to remove widget: %w", err)
	}

	widget := Widget{Id: params.WidgetId, Role: role}
	if len(sc.widgets) == 1 {
		s.failsafe.stop(params.SessionId)
		if err := s.sessionRepo.RemoveSession(ctx, params.SessionId); err != nil {
			return DisconnectWidgetResponse{}, fmt.Errorf("failed to remove session: %w", err)
		}
		slog.InfoContext(ctx, "session removed", "session_id", params.SessionId)

		return DisconnectWidgetResponse{
			Widget:           widget,
			IsSessionDeleted: true,
		}, nil
	}

	resp, err := s.transitionLocked(ctx, params.SessionId, "", func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		switch role {
		case RoleHost:
			if radioActive(st) {
				resp.Audio = s.failRadio(st)
				resp.Changed = true
				resp.NowPlayingChanged = true
			}
		case RolePodcast:
			if stopPodcast(st) {
				resp.Changed = true
				resp.NowPlayingChanged = true
				resp.PodcastChanged = true
			}
		}

		return nil
	})
	if err != nil {
		return DisconnectWidgetResponse{}, err
	}

	return DisconnectWidgetResponse{
		StateResponse: resp,
		Widget:        widget,
	}, nil
}

func (s *service) GetState(ctx context.Context, sessionId string) (State, error) {
	st, err := s.getState(ctx, sessionId)
	if err != nil {
		return State{}, err
	}

	widgets, err := s.sessionRepo.GetWidgets(ctx, sessionId)
	if err != nil {
		return State{}, fmt.Errorf("failed to get widgets: %w", err)
	}

	return s.toState(sessionId, st, widgets), nil
}
