// Package captions routes recognition results to call participants and
// translates finals when the two sides read different languages.
package captions

import (
	"context"
	"time"

	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Caption is the live_caption event sent to clients.
type Caption struct {
	Type    string `json:"type"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Final   bool   `json:"final"`
}

// Relay fans recognition results out to the speaker and their peer. The
// speaker always sees their own words verbatim. The peer sees finals in
// their own language when the primary subtags differ and the translator
// cooperates; interims and failed translations pass through unmodified.
type Relay struct {
	Registry   *app.Registry
	Presence   *app.Presence
	Calls      *app.Calls
	Languages  *app.Languages
	Translator core.Translator
	Metrics    *metrics.Metrics
	Timeout    time.Duration
}

// Route implements the transcript sink for the stream manager.
func (r *Relay) Route(sid core.SessionID, text string, final bool, lang string) {
	speaker, ok := r.Presence.NameOf(sid)
	if !ok {
		// speaker withdrew between recognition and delivery
		return
	}
	ev := Caption{Type: "live_caption", Speaker: speaker, Text: text, Final: final}
	r.Registry.Publish(sid, ev)
	r.Metrics.CaptionsEmitted.Inc()

	peer, ok := r.Calls.PeerOf(sid)
	if !ok {
		return
	}
	if !final {
		r.Registry.Publish(peer, ev)
		return
	}

	src := domain.PrimarySubtag(lang)
	dst := domain.PrimarySubtag(r.Languages.Get(peer).Target)
	if text == "" || src == "" || dst == "" || src == dst {
		r.Registry.Publish(peer, ev)
		return
	}
	go r.translateTo(peer, ev, src, dst)
}

// translateTo delivers ev to peer in their language, falling back to the
// original text when the provider fails. Runs off the recognition path so
// a slow provider cannot stall caption flow. src and dst are primary
// subtags, the provider does not take regioned tags.
func (r *Relay) translateTo(peer core.SessionID, ev Caption, src, dst string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	r.Metrics.TranslationCalls.Inc()
	out, err := r.Translator.Translate(ctx, ev.Text, src, dst)
	if err != nil {
		r.Metrics.TranslationFailures.Inc()
		log.Warn().
			Err(err).
			Str("module", "app.captions").
			Str("src", src).
			Str("dst", dst).
			Msg("translation failed, delivering original")
	} else {
		ev.Text = out
	}
	r.Registry.Publish(peer, ev)
}

func (r *Relay) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return 4 * time.Second
}
