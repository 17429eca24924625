package core

import (
	"context"
	"errors"
)

var (
	// ErrProviderAuth means the speech provider rejected our credentials.
	ErrProviderAuth = errors.New("speech provider rejected credentials")
	// ErrProviderPermission means the credentials are valid but lack access
	// to the requested model or feature.
	ErrProviderPermission = errors.New("speech provider denied permission")
)

// SpeechStreamConfig carries the parameters a recognition stream is opened with.
type SpeechStreamConfig struct {
	Primary      string   // primary recognition language tag
	Alternatives []string // extra tags the provider may detect among
	SampleRate   int      // Hz of the little-endian 16-bit PCM frames
	Punctuate    bool
	Interim      bool
}

// SpeechResult is one recognition event emitted by the provider.
// Language is the detected source tag; providers set it at least on finals.
type SpeechResult struct {
	Text     string
	Final    bool
	Language string
}

// SpeechStream is one live provider-bound recognition session.
// Results closes when the stream dies for any reason; Err reports the cause
// afterwards, nil when the stream was closed deliberately. The provider
// enforces a hard maximum stream duration, so owners rotate proactively.
type SpeechStream interface {
	SendAudio([]byte) error
	Results() <-chan SpeechResult
	Err() error
	Close()
}

// SpeechProvider opens streaming recognition sessions.
type SpeechProvider interface {
	OpenStream(ctx context.Context, cfg SpeechStreamConfig) (SpeechStream, error)
}
