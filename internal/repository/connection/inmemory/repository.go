package inmemory

import (
	"log/slog"
	"sync"

	"github.com/campusradio/server/internal/repository/connection"
	"github.com/gorilla/websocket"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
	}
}

func (r *repo) Add(conn *websocket.Conn, widgetId string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "widget_id", widgetId)
	if _, ok := r.connList[conn]; ok {
		return connection.ErrAlreadyExists
	}
	if _, ok := r.idList[widgetId]; ok {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = widgetId
	r.idList[widgetId] = conn

	return nil
}

func (r *repo) RemoveByWidgetId(widgetId string) (*websocket.Conn, error) {
	funcName := "connection.inmemory.RemoveByWidgetId"
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[widgetId]
	if !ok {
		slog.Debug(funcName, "widget_id", widgetId, "error", connection.ErrNotFound)
		return nil, connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, widgetId)

	return conn, nil
}

func (r *repo) GetConn(widgetId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[widgetId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}
