package gateway

import "sync"

// Registry is the authoritative index of open connections and their user
// bindings. All mutation goes through Track/Add/Remove so the "no empty
// sets" and "no duplicate filing" invariants hold under concurrent
// connects, disconnects, and reaps.
type Registry struct {
	mu    sync.RWMutex
	all   map[*Connection]struct{}
	users map[string]map[*Connection]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		all:   make(map[*Connection]struct{}),
		users: make(map[string]map[*Connection]struct{}),
	}
}

// Track records a connection that completed the handshake but has not yet
// registered a user. Tracked connections are visible to the liveness
// monitor immediately.
func (r *Registry) Track(c *Connection) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all[c] = struct{}{}
}

// Add files a connection under a user, creating the set if absent. Adding
// the same connection twice is a no-op. The connection must already carry
// the binding (bindUser), so it can never be filed under two users.
func (r *Registry) Add(userID string, c *Connection) {
	if c == nil || userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all[c] = struct{}{}
	set, ok := r.users[userID]
	if !ok {
		set = make(map[*Connection]struct{})
		r.users[userID] = set
	}
	set[c] = struct{}{}
}

// Remove unfiles a connection wherever it is filed. Removing an absent or
// never-added connection is a no-op. Removing the last connection for a
// user deletes the user's key entirely.
func (r *Registry) Remove(c *Connection) {
	if c == nil {
		return
	}
	userID := c.UserID()
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.all, c)
	if userID == "" {
		return
	}
	set, ok := r.users[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.users, userID)
	}
}

// Get returns a point-in-time snapshot of a user's connections. Callers
// must tolerate members closing concurrently.
func (r *Registry) Get(userID string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.users[userID]
	out := make([]*Connection, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Users returns the number of distinct users with at least one registered
// connection.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// Connections returns a snapshot of every open connection, registered or
// not. Used by the liveness monitor.
func (r *Registry) Connections() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.all))
	for c := range r.all {
		out = append(out, c)
	}
	return out
}

// CloseAll closes every open connection and empties the registry.
// Best-effort; used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.all))
	for c := range r.all {
		conns = append(conns, c)
	}
	r.all = make(map[*Connection]struct{})
	r.users = make(map[string]map[*Connection]struct{})
	r.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
