package orch

import (
	"errors"

	"github.com/dkeye/Parley/internal/core"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotRegistered     = errors.New("session not registered")
	ErrTargetUnavailable = errors.New("target unavailable")
)

// CallRequest resolves the callee by name. The adapter forwards the
// signaling payload to the returned session; no association is recorded
// until the callee answers.
func (o *Orchestrator) CallRequest(from core.SessionID, target string) (core.SessionID, string, error) {
	callerName, ok := o.Presence.NameOf(from)
	if !ok {
		return "", "", ErrNotRegistered
	}
	targetSID, ok := o.Presence.Lookup(target)
	if !ok || targetSID == from {
		return "", "", ErrTargetUnavailable
	}
	log.Info().
		Str("module", "app.orch").
		Str("from", callerName).
		Str("target", target).
		Msg("call requested")
	return targetSID, callerName, nil
}

// CallAnswer links the answering session with the caller named in the
// answer payload. Answers naming an absent caller, or arriving when
// either side is already in a call, are dropped without side effects.
func (o *Orchestrator) CallAnswer(answerer core.SessionID, caller string) (core.SessionID, string, bool) {
	answererName, ok := o.Presence.NameOf(answerer)
	if !ok {
		return "", "", false
	}
	callerSID, ok := o.Presence.Lookup(caller)
	if !ok {
		log.Warn().
			Str("module", "app.orch").
			Str("answerer", answererName).
			Str("caller", caller).
			Msg("answer for absent caller dropped")
		return "", "", false
	}
	if !o.Calls.Link(answerer, callerSID) {
		log.Warn().
			Str("module", "app.orch").
			Str("answerer", answererName).
			Str("caller", caller).
			Msg("orphaned or duplicate answer dropped")
		return "", "", false
	}
	o.Metrics.ActiveCalls.Set(float64(o.Calls.Count()))
	log.Info().
		Str("module", "app.orch").
		Str("answerer", answererName).
		Str("caller", caller).
		Msg("call established")
	return callerSID, answererName, true
}

// CallEnd drops the session's call and closes the recognition streams of
// both participants.
func (o *Orchestrator) CallEnd(sid core.SessionID) (core.SessionID, bool) {
	peer, ok := o.Calls.Unlink(sid)
	if !ok {
		return "", false
	}
	o.Transcripts.Teardown(sid, "call ended")
	o.Transcripts.Teardown(peer, "call ended")
	o.Metrics.ActiveCalls.Set(float64(o.Calls.Count()))
	return peer, true
}
