package stt

import (
	"time"

	"github.com/dkeye/Parley/internal/core"
)

type session struct {
	stream     core.SpeechStream
	timer      *time.Timer
	created    time.Time
	primary    string
	sampleRate int
}

// stop cancels the renewal timer and closes the provider stream. Safe to
// call more than once.
func (s *session) stop() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.stream.Close()
}
