package playback

import (
	"context"

	"github.com/campusradio/server/internal/repository/session"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/websocket"
)

type SetVolumeParams struct {
	SessionId string
	SenderId  string
	Volume    float64
	IsMuted   bool
}

type SetVolumeResponse struct {
	Volume VolumeState
	Conns  []*websocket.Conn
}

// SetVolume stores the shared output volume. Every widget receives it by value, including the sender.
func (s *service) SetVolume(ctx context.Context, params *SetVolumeParams) (SetVolumeResponse, error) {
	if err := validation.ValidateStruct(params,
		validation.Field(&params.Volume, VolumeRule...),
	); err != nil {
		return SetVolumeResponse{}, err
	}

	resp, err := s.transition(ctx, params.SessionId, params.SenderId, func(st *session.State, _ *sessionConns, _ string, resp *StateResponse) error {
		st.Volume = params.Volume
		st.IsMuted = params.IsMuted
		resp.Changed = true

		return nil
	})
	if err != nil {
		return SetVolumeResponse{}, err
	}

	return SetVolumeResponse{
		Volume: resp.State.Volume,
		Conns:  resp.Conns,
	}, nil
}
