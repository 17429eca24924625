package app

import (
	"errors"
	"sort"
	"sync"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrNameTaken = errors.New("name already taken")

// Presence maps registered display names to live sessions. A name belongs
// to at most one session and a session holds at most one name.
type Presence struct {
	mu     sync.RWMutex
	byName map[string]core.SessionID
	bySID  map[core.SessionID]*domain.User
}

func NewPresence() *Presence {
	return &Presence{
		byName: make(map[string]core.SessionID),
		bySID:  make(map[core.SessionID]*domain.User),
	}
}

// Register claims name for sid. A registered session may register again to
// change its name when the new one is free; the old name is released.
func (p *Presence) Register(sid core.SessionID, name string) (*domain.User, error) {
	u, err := domain.NewUser(string(sid), name)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if holder, ok := p.byName[u.Name]; ok && holder != sid {
		return nil, ErrNameTaken
	}
	if prev, ok := p.bySID[sid]; ok && prev.Name != u.Name {
		delete(p.byName, prev.Name)
	}
	p.byName[u.Name] = sid
	p.bySID[sid] = u
	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("name", u.Name).Msg("registered")
	return u, nil
}

// Unregister releases the session's name. It reports the name that was
// held, if any, and is safe to call for sessions that never registered.
func (p *Presence) Unregister(sid core.SessionID) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.bySID[sid]
	if !ok {
		return "", false
	}
	delete(p.byName, u.Name)
	delete(p.bySID, sid)
	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("name", u.Name).Msg("unregistered")
	return u.Name, true
}

func (p *Presence) Lookup(name string) (core.SessionID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sid, ok := p.byName[name]
	return sid, ok
}

func (p *Presence) NameOf(sid core.SessionID) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if u, ok := p.bySID[sid]; ok {
		return u.Name, true
	}
	return "", false
}

// Online returns the registered names sorted for stable output.
func (p *Presence) Online() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.byName))
	for name := range p.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byName)
}
