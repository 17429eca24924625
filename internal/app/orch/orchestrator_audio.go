package orch

import (
	"context"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
)

// UpdateLanguages stores the session's new settings. A change to the
// recognition sources retires the live stream so the next chunk reopens
// with the new configuration; a target-only change keeps it.
func (o *Orchestrator) UpdateLanguages(sid core.SessionID, s domain.LanguageSettings) {
	if o.Languages.Set(sid, s) {
		o.Transcripts.Teardown(sid, "language change")
	}
}

// SubmitAudio relays one PCM chunk into the speaker's recognition stream.
// Empty chunks, chunks from unregistered sessions and chunks outside a
// call are dropped.
func (o *Orchestrator) SubmitAudio(ctx context.Context, sid core.SessionID, chunk []byte, sampleRate int) {
	if len(chunk) == 0 {
		return
	}
	if _, ok := o.Presence.NameOf(sid); !ok {
		return
	}
	if _, ok := o.Calls.PeerOf(sid); !ok {
		return
	}
	settings := o.Languages.Get(sid)
	if settings.Source == "" && len(settings.Alternatives) == 0 {
		return
	}
	if err := o.Transcripts.Write(ctx, sid, settings, sampleRate, chunk); err != nil {
		// the manager already logged specifics, next chunk starts fresh
		log.Debug().Err(err).Str("module", "app.orch").Str("sid", string(sid)).Msg("audio chunk dropped")
	}
}
