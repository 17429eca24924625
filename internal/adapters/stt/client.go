// Package stt dials the streaming speech recognition provider and adapts
// its websocket protocol to the core SpeechStream contract.
package stt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultSampleRate = 16000

type Provider struct {
	cfg config.STTConfig
}

func NewProvider(cfg config.STTConfig) *Provider {
	return &Provider{cfg: cfg}
}

// OpenStream dials one recognition stream. Audio goes up as binary PCM
// frames, results come back as JSON events until the provider closes.
func (p *Provider) OpenStream(ctx context.Context, sc core.SpeechStreamConfig) (core.SpeechStream, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse stt url: %w", err)
	}

	sampleRate := sc.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}

	q := u.Query()
	q.Set("model", p.cfg.Model)
	q.Set("language", sc.Primary)
	if len(sc.Alternatives) > 0 {
		q.Set("alt_languages", strings.Join(sc.Alternatives, ","))
	}
	q.Set("encoding", "pcm_s16le")
	q.Set("sample_rate", strconv.Itoa(sampleRate))
	if sc.Punctuate {
		q.Set("punctuate", "true")
	}
	if sc.Interim {
		q.Set("interim_results", "true")
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	if p.cfg.APIKey != "" {
		header.Set("Authorization", "Token "+p.cfg.APIKey)
	}

	dialer := websocket.Dialer{HandshakeTimeout: p.cfg.DialTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return nil, fmt.Errorf("dial recognition stream: %w", core.ErrProviderAuth)
			case http.StatusForbidden:
				return nil, fmt.Errorf("dial recognition stream: %w", core.ErrProviderPermission)
			}
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			if len(body) > 0 {
				return nil, fmt.Errorf("dial recognition stream (status %d): %s", resp.StatusCode, body)
			}
			return nil, fmt.Errorf("dial recognition stream (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial recognition stream: %w", err)
	}

	log.Debug().
		Str("module", "adapters.stt").
		Str("language", sc.Primary).
		Int("sample_rate", sampleRate).
		Msg("recognition stream opened")

	s := newStream(conn)
	go s.readLoop()
	return s, nil
}
