package inmemory

import (
	"testing"

	"github.com/campusradio/server/internal/repository/connection"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	r := NewRepo()
	c1 := &websocket.Conn{}
	c2 := &websocket.Conn{}

	require.NoError(t, r.Add(c1, "w1"))
	require.ErrorIs(t, r.Add(c1, "w2"), connection.ErrAlreadyExists)
	require.ErrorIs(t, r.Add(c2, "w1"), connection.ErrAlreadyExists)
	require.NoError(t, r.Add(c2, "w2"))

	conn, err := r.GetConn("w2")
	require.NoError(t, err)
	assert.Same(t, c2, conn)

	removed, err := r.RemoveByWidgetId("w1")
	require.NoError(t, err)
	assert.Same(t, c1, removed)
	_, err = r.GetConn("w1")
	assert.ErrorIs(t, err, connection.ErrNotFound)
	require.NoError(t, r.Add(c1, "w3"), "a removed conn can be added again")

	conn, err = r.RemoveByWidgetId("w2")
	require.NoError(t, err)
	assert.Same(t, c2, conn)
	_, err = r.RemoveByWidgetId("w2")
	assert.ErrorIs(t, err, connection.ErrNotFound)
}
