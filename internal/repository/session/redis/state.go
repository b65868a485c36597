package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusradio/server/internal/repository/session"
	"github.com/redis/go-redis/v9"
)

func (r Repo) getStateKey(sessionId string) string {
	return "session:" + sessionId + ":state"
}

func (r Repo) CreateState(ctx context.Context, params *session.CreateStateParams) error {
	funcName := "RedisRepo:CreateState"
	slog.DebugContext(ctx, funcName, "session_id", params.SessionId)

	key := r.getStateKey(params.SessionId)
	if err := r.hSetIfNotExists(ctx, r.rc, key, params.State); err != nil {
		if errors.Is(err, redis.Nil) {
			return session.ErrSessionAlreadyExists
		}

		slog.ErrorContext(ctx, funcName, "error", err)
		return fmt.Errorf("failed to create state: %w", err)
	}

	if err := r.rc.Expire(ctx, key, r.expireDuration).Err(); err != nil {
		return fmt.Errorf("failed to expire state: %w", err)
	}

	return nil
}

func (r Repo) GetState(ctx context.Context, sessionId string) (session.State, error) {
	funcName := "RedisRepo:GetState"
	slog.DebugContext(ctx, funcName, "session_id", sessionId)

	cmd := r.rc.HGetAll(ctx, r.getStateKey(sessionId))
	fields, err := cmd.Result()
	if err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return session.State{}, fmt.Errorf("failed to get state: %w", err)
	}

	if len(fields) == 0 {
		return session.State{}, session.ErrSessionNotFound
	}

	var state session.State
	if err := cmd.Scan(&state); err != nil {
		return session.State{}, fmt.Errorf("failed to scan state: %w", err)
	}

	return state, nil
}

func (r Repo) IsStateExists(ctx context.Context, sessionId string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getStateKey(sessionId)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if state exists: %w", err)
	}

	return res > 0, nil
}

func (r Repo) SetState(ctx context.Context, params *session.SetStateParams) error {
	funcName := "RedisRepo:SetState"
	slog.DebugContext(ctx, funcName, "session_id", params.SessionId, "state", params.State)

	key := r.getStateKey(params.SessionId)
	exists, err := r.IsStateExists(ctx, params.SessionId)
	if err != nil {
		return err
	}

	if !exists {
		return session.ErrSessionNotFound
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, key, params.State)
	pipe.Expire(ctx, key, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		slog.ErrorContext(ctx, funcName, "error", err)
		return fmt.Errorf("failed to set state: %w", err)
	}

	return nil
}
