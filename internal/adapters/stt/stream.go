package stt

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/Parley/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

var (
	errStreamClosed = errors.New("recognition stream closed")
	errStreamEnded  = errors.New("recognition stream ended by provider")
)

// providerEvent is one JSON message from the recognition socket.
type providerEvent struct {
	Type     string `json:"type"` // "transcript", "error", "done"
	Text     string `json:"text"`
	IsFinal  bool   `json:"is_final"`
	Language string `json:"language"`
	Error    string `json:"error"`
}

type stream struct {
	conn    *websocket.Conn
	results chan core.SpeechResult

	writeMu sync.Mutex
	closed  atomic.Bool

	errMu sync.Mutex
	err   error
}

func newStream(conn *websocket.Conn) *stream {
	return &stream{
		conn:    conn,
		results: make(chan core.SpeechResult, 64),
	}
}

func (s *stream) SendAudio(chunk []byte) error {
	if s.closed.Load() {
		return errStreamClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.BinaryMessage, chunk)
}

func (s *stream) Results() <-chan core.SpeechResult { return s.results }

// Err reports why the stream died. It stays nil when the stream was
// closed on purpose.
func (s *stream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *stream) setErr(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
}

// Close shuts the stream down deliberately. Idempotent.
func (s *stream) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.writeMu.Lock()
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	s.writeMu.Unlock()
	s.conn.Close()
}

// readLoop pumps provider events into the results channel until the
// socket dies or the provider signals it is done.
func (s *stream) readLoop() {
	defer close(s.results)

	for {
		var evt providerEvent
		if err := s.conn.ReadJSON(&evt); err != nil {
			if !s.closed.Load() {
				s.setErr(err)
			}
			return
		}
		switch evt.Type {
		case "transcript":
			s.results <- core.SpeechResult{Text: evt.Text, Final: evt.IsFinal, Language: evt.Language}
		case "error":
			s.setErr(errors.New(evt.Error))
			return
		case "done":
			if !s.closed.Load() {
				s.setErr(errStreamEnded)
			}
			return
		default:
			log.Debug().Str("module", "adapters.stt").Str("type", evt.Type).Msg("ignoring provider event")
		}
	}
}
