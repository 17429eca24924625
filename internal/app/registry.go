package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dkeye/Parley/internal/core"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Conn   core.SignalConnection
	Cancel context.CancelFunc
}

// Registry tracks live signal connections by session id.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.SessionID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[core.SessionID]*connEntry),
	}
}

func (r *Registry) Bind(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[sid] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound connection")
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound connection")
}

func (r *Registry) Conn(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.conns[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled connection")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Publish marshals v and sends it to one session. Slow consumers are
// dropped rather than awaited.
func (r *Registry) Publish(sid core.SessionID, v any) bool {
	conn, ok := r.Conn(sid)
	if !ok {
		return false
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("sid", string(sid)).Msg("marshal publish")
		return false
	}
	if err := conn.TrySend(core.Frame(data)); err != nil {
		log.Warn().Err(err).Str("module", "app.registry").Str("sid", string(sid)).Msg("publish dropped")
		return false
	}
	return true
}

// Broadcast sends v to every live connection.
func (r *Registry) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Msg("marshal broadcast")
		return
	}

	r.mu.RLock()
	targets := make([]core.SignalConnection, 0, len(r.conns))
	for _, e := range r.conns {
		targets = append(targets, e.Conn)
	}
	r.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.TrySend(core.Frame(data)); err != nil {
			log.Warn().Err(err).Str("module", "app.registry").Msg("broadcast dropped")
		}
	}
}
