package stt

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Parley/internal/core"
	"github.com/dkeye/Parley/internal/domain"
	"github.com/dkeye/Parley/internal/metrics"
)

type fakeStream struct {
	mu      sync.Mutex
	chunks  [][]byte
	sendErr error

	results chan core.SpeechResult
	err     error
	once    sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{results: make(chan core.SpeechResult, 8)}
}

func (f *fakeStream) SendAudio(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.chunks = append(f.chunks, append([]byte(nil), p...))
	return nil
}

func (f *fakeStream) Results() <-chan core.SpeechResult { return f.results }

func (f *fakeStream) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeStream) Close() {
	f.once.Do(func() { close(f.results) })
}

// fail simulates the provider killing the stream.
func (f *fakeStream) fail(err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.err = err
		f.mu.Unlock()
		close(f.results)
	})
}

func (f *fakeStream) sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.chunks))
	copy(out, f.chunks)
	return out
}

type fakeProvider struct {
	mu      sync.Mutex
	streams []*fakeStream
	cfgs    []core.SpeechStreamConfig
	openErr error
}

func (p *fakeProvider) OpenStream(_ context.Context, cfg core.SpeechStreamConfig) (core.SpeechStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	s := newFakeStream()
	p.streams = append(p.streams, s)
	p.cfgs = append(p.cfgs, cfg)
	return s, nil
}

func (p *fakeProvider) opened() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.streams)
}

func (p *fakeProvider) stream(i int) *fakeStream {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streams[i]
}

func (p *fakeProvider) cfg(i int) core.SpeechStreamConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfgs[i]
}

type sinkEvent struct {
	sid   core.SessionID
	text  string
	final bool
	lang  string
}

type recordSink struct {
	mu  sync.Mutex
	got []sinkEvent
}

func (r *recordSink) Route(sid core.SessionID, text string, final bool, lang string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, sinkEvent{sid: sid, text: text, final: final, lang: lang})
}

func (r *recordSink) events() []sinkEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sinkEvent, len(r.got))
	copy(out, r.got)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func settings(src string) domain.LanguageSettings {
	return domain.LanguageSettings{Source: src, Target: "en-US"}
}

func TestWriteOpensLazilyAndKeepsOrder(t *testing.T) {
	p := &fakeProvider{}
	m := NewManager(p, &recordSink{}, time.Hour, metrics.New())
	defer m.Stop()
	ctx := context.Background()

	// empty chunks never open a stream
	if err := m.Write(ctx, "s1", settings("en-US"), 16000, nil); err != nil {
		t.Fatal(err)
	}
	if p.opened() != 0 {
		t.Fatalf("opened = %d after empty chunk, want 0", p.opened())
	}

	for _, c := range [][]byte{{1, 1}, {2, 2}, {3, 3}} {
		if err := m.Write(ctx, "s1", settings("en-US"), 16000, c); err != nil {
			t.Fatal(err)
		}
	}
	if p.opened() != 1 {
		t.Fatalf("opened = %d, want 1", p.opened())
	}
	if m.Active() != 1 {
		t.Fatalf("Active() = %d, want 1", m.Active())
	}

	got := p.stream(0).sent()
	want := [][]byte{{1, 1}, {2, 2}, {3, 3}}
	if len(got) != len(want) {
		t.Fatalf("sent %d chunks, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("chunk[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	cfg := p.cfg(0)
	if cfg.Primary != "en-US" || cfg.SampleRate != 16000 {
		t.Errorf("stream config = %+v", cfg)
	}
	if !cfg.Interim || !cfg.Punctuate {
		t.Errorf("interim/punctuate not requested: %+v", cfg)
	}
}

func TestTranscriptsReachSink(t *testing.T) {
	p := &fakeProvider{}
	sink := &recordSink{}
	m := NewManager(p, sink, time.Hour, metrics.New())
	defer m.Stop()

	if err := m.Write(context.Background(), "s1", settings("he-IL"), 16000, []byte{9}); err != nil {
		t.Fatal(err)
	}
	st := p.stream(0)
	st.results <- core.SpeechResult{Text: "shalom", Final: false, Language: "he-IL"}
	st.results <- core.SpeechResult{Text: "shalom lach", Final: true, Language: "he-IL"}

	waitFor(t, func() bool { return len(sink.events()) == 2 })
	ev := sink.events()
	if ev[0].text != "shalom" || ev[0].final {
		t.Errorf("first event = %+v", ev[0])
	}
	if ev[1].text != "shalom lach" || !ev[1].final || ev[1].lang != "he-IL" {
		t.Errorf("second event = %+v", ev[1])
	}
	if ev[0].sid != "s1" {
		t.Errorf("sid = %q, want s1", ev[0].sid)
	}
}

func TestRenewalRetiresStream(t *testing.T) {
	p := &fakeProvider{}
	m := NewManager(p, &recordSink{}, 40*time.Millisecond, metrics.New())
	defer m.Stop()
	ctx := context.Background()

	if err := m.Write(ctx, "s1", settings("en-US"), 16000, []byte{1}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return m.Active() == 0 })

	// next chunk opens a fresh stream
	if err := m.Write(ctx, "s1", settings("en-US"), 16000, []byte{2}); err != nil {
		t.Fatal(err)
	}
	if p.opened() != 2 {
		t.Fatalf("opened = %d, want 2", p.opened())
	}
}

func TestProviderFailureRetiresStream(t *testing.T) {
	p := &fakeProvider{}
	m := NewManager(p, &recordSink{}, time.Hour, metrics.New())
	defer m.Stop()
	ctx := context.Background()

	if err := m.Write(ctx, "s1", settings("en-US"), 16000, []byte{1}); err != nil {
		t.Fatal(err)
	}
	p.stream(0).fail(errors.New("stream reset"))
	waitFor(t, func() bool { return m.Active() == 0 })

	if err := m.Write(ctx, "s1", settings("en-US"), 16000, []byte{2}); err != nil {
		t.Fatal(err)
	}
	if p.opened() != 2 {
		t.Fatalf("opened = %d, want 2", p.opened())
	}
}

func TestTeardownStopsTimer(t *testing.T) {
	p := &fakeProvider{}
	m := NewManager(p, &recordSink{}, 50*time.Millisecond, metrics.New())
	defer m.Stop()
	ctx := context.Background()

	if err := m.Write(ctx, "s1", settings("en-US"), 16000, []byte{1}); err != nil {
		t.Fatal(err)
	}
	if !m.Teardown("s1", "call ended") {
		t.Fatal("Teardown found no session")
	}
	if m.Teardown("s1", "call ended") {
		t.Error("second Teardown reported a session")
	}

	// open a successor and let the first timer's deadline pass
	if err := m.Write(ctx, "s1", settings("en-US"), 16000, []byte{2}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(80 * time.Millisecond)
	// successor has its own timer and must have been retired by it, not
	// left half-alive by the first session's timer
	waitFor(t, func() bool { return m.Active() == 0 })
	if p.opened() != 2 {
		t.Fatalf("opened = %d, want 2", p.opened())
	}
}

func TestSampleRateChangeRotates(t *testing.T) {
	p := &fakeProvider{}
	m := NewManager(p, &recordSink{}, time.Hour, metrics.New())
	defer m.Stop()
	ctx := context.Background()

	if err := m.Write(ctx, "s1", settings("en-US"), 16000, []byte{1}); err != nil {
		t.Fatal(err)
	}
	if err := m.Write(ctx, "s1", settings("en-US"), 8000, []byte{2}); err != nil {
		t.Fatal(err)
	}
	if p.opened() != 2 {
		t.Fatalf("opened = %d, want 2", p.opened())
	}
	if got := p.cfg(1).SampleRate; got != 8000 {
		t.Errorf("second stream sample rate = %d, want 8000", got)
	}
	if m.Active() != 1 {
		t.Fatalf("Active() = %d, want 1", m.Active())
	}
}

func TestOpenFailureSurfacesError(t *testing.T) {
	p := &fakeProvider{openErr: core.ErrProviderAuth}
	m := NewManager(p, &recordSink{}, time.Hour, metrics.New())
	defer m.Stop()

	err := m.Write(context.Background(), "s1", settings("en-US"), 16000, []byte{1})
	if !errors.Is(err, core.ErrProviderAuth) {
		t.Fatalf("Write() error = %v, want ErrProviderAuth", err)
	}
	if m.Active() != 0 {
		t.Errorf("Active() = %d, want 0", m.Active())
	}
}

func TestStopClosesEverything(t *testing.T) {
	p := &fakeProvider{}
	m := NewManager(p, &recordSink{}, time.Hour, metrics.New())
	ctx := context.Background()

	_ = m.Write(ctx, "s1", settings("en-US"), 16000, []byte{1})
	_ = m.Write(ctx, "s2", settings("es"), 16000, []byte{2})
	if m.Active() != 2 {
		t.Fatalf("Active() = %d, want 2", m.Active())
	}

	m.Stop()
	if m.Active() != 0 {
		t.Errorf("Active() = %d after Stop, want 0", m.Active())
	}
}
