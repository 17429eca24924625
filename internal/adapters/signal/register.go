package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

type registerResult struct {
	Type  string `json:"type"`
	OK    bool   `json:"ok"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

func (ctl *SignalWSController) handleRegister(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type registerPayload struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	var p registerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		ctl.sendJSON(conn, registerResult{Type: "register_result", Error: "bad_payload"})
		return
	}

	u, err := ctl.Orch.Register(sid, p.Name)
	if err != nil {
		reason := "invalid_name"
		if errors.Is(err, app.ErrNameTaken) {
			reason = "name_taken"
		} else if errors.Is(err, domain.ErrNameEmpty) {
			reason = "empty_name"
		}
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", p.Name).Str("reason", reason).Msg("register rejected")
		ctl.sendJSON(conn, registerResult{Type: "register_result", Error: reason})
		return
	}

	ctl.sendJSON(conn, registerResult{Type: "register_result", OK: true, Name: u.Name})
	ctl.broadcastOnline()
}
