package realtime

import (
	"sync"
)

// Registry is the process-wide table of live connections, keyed by user id.
// It keeps one authoritative Connection per user: a reconnect replaces the
// previous entry for push delivery, and the superseded socket is left to
// starve on its own read deadline rather than being force-closed here.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection // connectionID -> connection
	userConns   map[string]string      // userID -> connectionID
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]*Connection),
		userConns:   make(map[string]string),
	}
}

// Attach registers a connection for its user. Any prior entry for that user
// is evicted from the table, making the new connection the sole push target.
func (r *Registry) Attach(conn *Connection) {
	r.mu.Lock()
	if existingID, ok := r.userConns[conn.UserID]; ok {
		delete(r.connections, existingID)
	}
	r.connections[conn.ID] = conn
	r.userConns[conn.UserID] = conn.ID
	r.mu.Unlock()
}

// Detach removes a connection if it is still the authoritative handle for its
// user. A stale detach racing a newer attach must not evict the live entry.
func (r *Registry) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Push delivers an event to the current connection of the given user.
// Delivery is best-effort: it reports false when the user has no live
// connection or the write could not be enqueued, and callers needing
// durability must persist before pushing.
func (r *Registry) Push(userID string, event any) bool {
	r.mu.RLock()
	connID, ok := r.userConns[userID]
	if !ok {
		r.mu.RUnlock()
		return false
	}
	conn := r.connections[connID]
	r.mu.RUnlock()
	if conn == nil {
		return false
	}
	return conn.SendEvent(event) == nil
}

// Connected reports whether the user currently has a registered connection.
func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	_, ok := r.userConns[userID]
	r.mu.RUnlock()
	return ok
}

// Close terminates all tracked connections and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		conns = append(conns, conn)
	}
	r.connections = make(map[string]*Connection)
	r.userConns = make(map[string]string)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "registry shutdown")
	}
}

func (r *Registry) detachLocked(connID string) {
	conn, ok := r.connections[connID]
	if !ok {
		return
	}
	delete(r.connections, connID)
	if current, ok := r.userConns[conn.UserID]; ok && current == connID {
		delete(r.userConns, conn.UserID)
	}
}
