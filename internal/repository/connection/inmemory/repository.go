// Package inmemory maps websocket connections to user ids and back. The
// websocket layer uses it to find the sockets of everyone in a room when
// broadcasting updates.
package inmemory

import (
	"log/slog"
	"sync"

	"github.com/watchroom/server/internal/repository/connection"
)

type repo struct {
	byConn   map[*connection.Conn]string
	byUserId map[string]*connection.Conn
	mu       sync.RWMutex
	logger   *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		byConn:   make(map[*connection.Conn]string),
		byUserId: make(map[string]*connection.Conn),
		logger:   logger,
	}
}

func (r *repo) Add(conn *connection.Conn, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byConn[conn] != "" || r.byUserId[userId] != nil {
		r.logger.Debug("connection.inmemory.Add", "userId", userId, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.byConn[conn] = userId
	r.byUserId[userId] = conn

	return nil
}

// RemoveByConn unregisters the connection and returns the user id it was
// bound to. The caller owns closing the socket.
func (r *repo) RemoveByConn(conn *connection.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userId, ok := r.byConn[conn]
	if !ok {
		r.logger.Debug("connection.inmemory.RemoveByConn", "error", connection.ErrNotFound)
		return "", connection.ErrNotFound
	}

	delete(r.byConn, conn)
	delete(r.byUserId, userId)

	return userId, nil
}

func (r *repo) GetConn(userId string) (*connection.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byUserId[userId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}
