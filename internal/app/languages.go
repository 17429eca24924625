package app

import (
	"sync"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// Languages stores per-session language settings. Sessions that never sent
// any are treated as holding the defaults.
type Languages struct {
	mu       sync.RWMutex
	settings map[core.SessionID]domain.LanguageSettings
}

func NewLanguages() *Languages {
	return &Languages{
		settings: make(map[core.SessionID]domain.LanguageSettings),
	}
}

// Set stores the session's settings and reports whether the recognition
// sources changed against what was effective before. A target-only change
// never counts.
func (l *Languages) Set(sid core.SessionID, s domain.LanguageSettings) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.settings[sid]
	if !ok {
		prev = domain.DefaultLanguageSettings()
	}
	l.settings[sid] = s
	changed := !prev.SameSources(s)
	log.Info().
		Str("module", "app.languages").
		Str("sid", string(sid)).
		Str("source", s.Source).
		Str("target", s.Target).
		Bool("source_changed", changed).
		Msg("updated language settings")
	return changed
}

func (l *Languages) Get(sid core.SessionID) domain.LanguageSettings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if s, ok := l.settings[sid]; ok {
		return s
	}
	return domain.DefaultLanguageSettings()
}

func (l *Languages) Remove(sid core.SessionID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.settings, sid)
}
