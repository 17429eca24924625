package signal

import (
	"github.com/dkeye/Parley/internal/core"
)

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	resp := struct {
		Type   string `json:"type"`
		Name   string `json:"name,omitempty"`
		InCall bool   `json:"in_call"`
		Peer   string `json:"peer,omitempty"`
	}{
		Type: "whoami",
	}
	resp.Name, _ = ctl.Orch.Presence.NameOf(sid)
	if peer, ok := ctl.Orch.Calls.PeerOf(sid); ok {
		resp.InCall = true
		resp.Peer, _ = ctl.Orch.Presence.NameOf(peer)
	}
	ctl.sendJSON(conn, resp)
}
