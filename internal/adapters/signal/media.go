package signal

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleLanguages(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type languagesPayload struct {
		Type         string   `json:"type"`
		Source       string   `json:"source"`
		Alternatives []string `json:"alternatives"`
		Target       string   `json:"target"`
	}
	var p languagesPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad languages payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}
	if len(p.Source) > domain.MaxLangTagLen || len(p.Target) > domain.MaxLangTagLen {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_language_tag",
		})
		return
	}
	for _, alt := range p.Alternatives {
		if len(alt) > domain.MaxLangTagLen {
			ctl.sendJSON(conn, map[string]any{
				"type":  "error",
				"error": "bad_language_tag",
			})
			return
		}
	}

	ctl.Orch.UpdateLanguages(sid, domain.LanguageSettings{
		Source:       p.Source,
		Alternatives: p.Alternatives,
		Target:       p.Target,
	})
}

// handleAudio feeds one PCM chunk to the recognition pipeline. The chunk
// travels base64-encoded in the JSON event, json decodes it back to bytes.
func (ctl *SignalWSController) handleAudio(
	ctx context.Context,
	sid core.SessionID,
	data []byte,
) {
	type audioPayload struct {
		Type       string `json:"type"`
		Chunk      []byte `json:"chunk"`
		SampleRate int    `json:"sample_rate"`
	}
	var p audioPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad audio payload")
		return
	}
	ctl.Orch.SubmitAudio(ctx, sid, p.Chunk, p.SampleRate)
}
