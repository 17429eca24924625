// Package stt owns the provider recognition streams for connected sessions.
// Streams are opened lazily on the first audio chunk, rotated before the
// provider's hard duration limit, and torn down when the speaker leaves the
// call or the provider fails.
package stt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ErrNoSourceLanguage is returned when a stream would have to be opened
// without any recognition language configured.
var ErrNoSourceLanguage = errors.New("no source language configured")

// TranscriptSink receives recognition results for a speaking session.
type TranscriptSink interface {
	Route(sid core.SessionID, text string, final bool, lang string)
}

// Manager holds at most one live recognition stream per session id, plus
// the renewal timer that retires it before the provider would.
type Manager struct {
	mu       sync.Mutex
	sessions map[core.SessionID]*session

	provider core.SpeechProvider
	sink     TranscriptSink
	ttl      time.Duration
	metrics  *metrics.Metrics
}

func NewManager(provider core.SpeechProvider, sink TranscriptSink, ttl time.Duration, mx *metrics.Metrics) *Manager {
	return &Manager{
		sessions: make(map[core.SessionID]*session),
		provider: provider,
		sink:     sink,
		ttl:      ttl,
		metrics:  mx,
	}
}

// Write forwards one audio chunk, opening a stream first when none is
// live. Empty chunks are dropped and never open a stream.
func (m *Manager) Write(ctx context.Context, sid core.SessionID, settings domain.LanguageSettings, sampleRate int, chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	if sess := m.liveFor(sid, sampleRate); sess != nil {
		if err := sess.stream.SendAudio(chunk); err != nil {
			log.Error().Err(err).Str("module", "app.stt").Str("sid", string(sid)).Msg("audio write failed")
			if m.remove(sid, sess) {
				sess.stop()
				m.metrics.SessionsFailed.Inc()
			}
			return err
		}
		return nil
	}
	return m.openAndSend(ctx, sid, settings, sampleRate, chunk)
}

// liveFor returns the live session matching the incoming sample rate. A
// stream cannot change its encoding mid-flight, so a mismatched one is
// retired and nil is returned to force a fresh open.
func (m *Manager) liveFor(sid core.SessionID, sampleRate int) *session {
	m.mu.Lock()
	sess, ok := m.sessions[sid]
	if ok && sess.sampleRate != sampleRate {
		delete(m.sessions, sid)
		m.mu.Unlock()
		sess.stop()
		m.setActiveGauge()
		log.Info().
			Str("module", "app.stt").
			Str("sid", string(sid)).
			Int("old_rate", sess.sampleRate).
			Int("new_rate", sampleRate).
			Msg("sample rate changed, retiring stream")
		return nil
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return sess
}

func (m *Manager) openAndSend(ctx context.Context, sid core.SessionID, settings domain.LanguageSettings, sampleRate int, chunk []byte) error {
	primary, alts := settings.Source, settings.Alternatives
	if primary == "" {
		if len(alts) == 0 {
			return ErrNoSourceLanguage
		}
		primary, alts = alts[0], alts[1:]
	}
	cfg := core.SpeechStreamConfig{
		Primary:      primary,
		Alternatives: alts,
		SampleRate:   sampleRate,
		Punctuate:    true,
		Interim:      true,
	}
	stream, err := m.provider.OpenStream(ctx, cfg)
	if err != nil {
		m.metrics.SessionsFailed.Inc()
		m.logStreamErr(sid, err, "failed to open recognition stream")
		return err
	}

	sess := &session{
		stream:     stream,
		created:    time.Now(),
		primary:    cfg.Primary,
		sampleRate: sampleRate,
	}

	m.mu.Lock()
	if old, ok := m.sessions[sid]; ok {
		// lost a race with a concurrent open, keep the stream already in place
		m.mu.Unlock()
		stream.Close()
		return old.stream.SendAudio(chunk)
	}
	m.sessions[sid] = sess
	sess.timer = time.AfterFunc(m.ttl, func() { m.expire(sid, sess) })
	m.mu.Unlock()

	m.metrics.SessionsStarted.Inc()
	m.setActiveGauge()
	log.Info().
		Str("module", "app.stt").
		Str("sid", string(sid)).
		Str("language", cfg.Primary).
		Int("sample_rate", sampleRate).
		Msg("opened recognition stream")

	go m.readLoop(sid, sess)

	if err := sess.stream.SendAudio(chunk); err != nil {
		log.Error().Err(err).Str("module", "app.stt").Str("sid", string(sid)).Msg("audio write failed")
		if m.remove(sid, sess) {
			sess.stop()
			m.metrics.SessionsFailed.Inc()
		}
		return err
	}
	return nil
}

// expire fires at the renewal deadline. The guard on session identity
// keeps a stale timer from touching a successor stream.
func (m *Manager) expire(sid core.SessionID, sess *session) {
	if !m.remove(sid, sess) {
		return
	}
	sess.stream.Close()
	m.metrics.SessionsRenewed.Inc()
	m.setActiveGauge()
	log.Info().
		Str("module", "app.stt").
		Str("sid", string(sid)).
		Dur("age", time.Since(sess.created)).
		Msg("stream reached renewal deadline, next chunk reopens")
}

// readLoop drains recognition results into the sink. When the channel
// closes because the provider failed, the session is retired so the next
// chunk starts over.
func (m *Manager) readLoop(sid core.SessionID, sess *session) {
	for res := range sess.stream.Results() {
		m.sink.Route(sid, res.Text, res.Final, res.Language)
	}

	err := sess.stream.Err()
	if err == nil {
		return
	}
	if m.remove(sid, sess) {
		sess.stop()
		m.metrics.SessionsFailed.Inc()
		m.setActiveGauge()
	}
	m.logStreamErr(sid, err, "recognition stream failed")
}

// Teardown closes the session's live stream, if any, and cancels its
// renewal timer.
func (m *Manager) Teardown(sid core.SessionID, reason string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[sid]
	if ok {
		delete(m.sessions, sid)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	sess.stop()
	m.setActiveGauge()
	log.Info().
		Str("module", "app.stt").
		Str("sid", string(sid)).
		Str("reason", reason).
		Msg("closed recognition stream")
	return true
}

// Stop tears down every live stream. Used on server shutdown.
func (m *Manager) Stop() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[core.SessionID]*session)
	m.mu.Unlock()

	for sid, sess := range all {
		sess.stop()
		log.Info().Str("module", "app.stt").Str("sid", string(sid)).Msg("closed recognition stream on shutdown")
	}
	m.setActiveGauge()
}

// Active returns the number of live recognition streams.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// remove deletes the entry only when it still points at sess.
func (m *Manager) remove(sid core.SessionID, sess *session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sessions[sid]
	if !ok || cur != sess {
		return false
	}
	delete(m.sessions, sid)
	return true
}

func (m *Manager) setActiveGauge() {
	m.metrics.SessionsActive.Set(float64(m.Active()))
}

func (m *Manager) logStreamErr(sid core.SessionID, err error, msg string) {
	evt := log.Error().Err(err).Str("module", "app.stt").Str("sid", string(sid))
	switch {
	case errors.Is(err, core.ErrProviderAuth):
		evt.Msg(msg + ": provider rejected credentials, check stt.api_key")
	case errors.Is(err, core.ErrProviderPermission):
		evt.Msg(msg + ": key lacks streaming permission")
	default:
		evt.Msg(msg)
	}
}
