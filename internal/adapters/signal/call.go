package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/core"
	"github.com/rs/zerolog/log"
)

// callPayload carries name-addressed signaling. Payload is the caller's
// SDP/candidate blob; the server relays it verbatim and never inspects it.
type callPayload struct {
	Type    string          `json:"type"`
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

type callFailed struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

func (ctl *SignalWSController) handleCallRequest(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p callPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad call_request payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}

	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("call request rate limited")
		ctl.sendJSON(conn, callFailed{Type: "call_failed", Target: p.Target, Reason: "rate_limited"})
		return
	}

	targetSID, callerName, err := ctl.Orch.CallRequest(sid, p.Target)
	if err != nil {
		reason := "target_unavailable"
		if errors.Is(err, orch.ErrNotRegistered) {
			reason = "not_registered"
		}
		ctl.sendJSON(conn, callFailed{Type: "call_failed", Target: p.Target, Reason: reason})
		return
	}

	ctl.Orch.Registry.Publish(targetSID, struct {
		Type    string          `json:"type"`
		From    string          `json:"from"`
		Payload json.RawMessage `json:"payload"`
	}{
		Type:    "incoming_call",
		From:    callerName,
		Payload: p.Payload,
	})
}

func (ctl *SignalWSController) handleCallAnswer(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p callPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad call_answer payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}

	// the caller is resolved strictly from the answer's declared target,
	// orphaned answers die in the orchestrator without side effects
	callerSID, answererName, ok := ctl.Orch.CallAnswer(sid, p.Target)
	if !ok {
		return
	}

	ctl.Orch.Registry.Publish(callerSID, struct {
		Type    string          `json:"type"`
		From    string          `json:"from"`
		Payload json.RawMessage `json:"payload"`
	}{
		Type:    "call_accepted",
		From:    answererName,
		Payload: p.Payload,
	})
}

func (ctl *SignalWSController) handleCallEnd(sid core.SessionID) {
	peer, ok := ctl.Orch.CallEnd(sid)
	if !ok {
		return
	}
	ctl.Orch.Registry.Publish(peer, map[string]any{"type": "peer_disconnected"})
}
