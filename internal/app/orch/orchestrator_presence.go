package orch

import (
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// Register claims a display name for the session. The caller broadcasts
// the refreshed online list on success.
func (o *Orchestrator) Register(sid core.SessionID, name string) (*domain.User, error) {
	u, err := o.Presence.Register(sid, name)
	if err != nil {
		return nil, err
	}
	o.Metrics.RegisteredNames.Set(float64(o.Presence.Count()))
	return u, nil
}

// DisconnectResult tells the adapter what to announce after a session is
// gone.
type DisconnectResult struct {
	Name       string
	Registered bool
	Peer       core.SessionID
	HadPeer    bool
}

// Disconnect clears every trace of the session: its recognition stream,
// its call (closing the peer's stream too), its name and its language
// settings. Safe to run twice, the second pass finds nothing.
func (o *Orchestrator) Disconnect(sid core.SessionID) DisconnectResult {
	o.Transcripts.Teardown(sid, "disconnected")

	peer, hadPeer := o.Calls.Unlink(sid)
	if hadPeer {
		o.Transcripts.Teardown(peer, "peer disconnected")
		o.Metrics.ActiveCalls.Set(float64(o.Calls.Count()))
	}

	name, registered := o.Presence.Unregister(sid)
	o.Languages.Remove(sid)
	if registered {
		o.Metrics.RegisteredNames.Set(float64(o.Presence.Count()))
	}

	log.Info().
		Str("module", "app.orch").
		Str("sid", string(sid)).
		Str("name", name).
		Bool("had_peer", hadPeer).
		Msg("session cleaned up")

	return DisconnectResult{Name: name, Registered: registered, Peer: peer, HadPeer: hadPeer}
}
