package app

import (
	"sync"

	"github.com/dkeye/Parley/internal/core"
	"github.com/rs/zerolog/log"
)

// Calls pairs sessions into active calls. Entries are symmetric: a call
// between a and b is stored in both directions.
type Calls struct {
	mu    sync.RWMutex
	peers map[core.SessionID]core.SessionID
}

func NewCalls() *Calls {
	return &Calls{
		peers: make(map[core.SessionID]core.SessionID),
	}
}

// Link pairs a with b. It refuses self-pairs and any pairing where either
// side already has a peer, so a duplicate answer cannot overwrite a call.
func (c *Calls) Link(a, b core.SessionID) bool {
	if a == b {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.peers[a]; busy {
		return false
	}
	if _, busy := c.peers[b]; busy {
		return false
	}
	c.peers[a] = b
	c.peers[b] = a
	log.Info().Str("module", "app.calls").Str("a", string(a)).Str("b", string(b)).Msg("linked call")
	return true
}

func (c *Calls) PeerOf(sid core.SessionID) (core.SessionID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	peer, ok := c.peers[sid]
	return peer, ok
}

// Unlink removes the call sid is part of, both directions, and reports the
// former peer.
func (c *Calls) Unlink(sid core.SessionID) (core.SessionID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	peer, ok := c.peers[sid]
	if !ok {
		return "", false
	}
	delete(c.peers, sid)
	delete(c.peers, peer)
	log.Info().Str("module", "app.calls").Str("a", string(sid)).Str("b", string(peer)).Msg("unlinked call")
	return peer, true
}

// Count returns the number of active calls.
func (c *Calls) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.peers) / 2
}
