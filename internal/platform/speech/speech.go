// Package speech models the dictation and read-aloud capabilities used by
// handoff entry and the assistants. Recognition itself happens on the
// client; the server only assembles the recognizer's results into a final
// transcript and decides whether replies are spoken.
package speech

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrUnsupported is returned when a capability is not available.
var ErrUnsupported = errors.New("speech capability not supported")

const DefaultLanguage = "en-US"

// Capabilities reports which speech features this deployment offers.
type Capabilities struct {
	Recognition bool   `json:"speech_recognition"`
	Synthesis   bool   `json:"speech_synthesis"`
	Language    string `json:"language"`
}

// Result is one recognizer callback. Only final results become part of
// the transcript.
type Result struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Recognizer turns a stream of recognition results into a transcript.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop()
	Clear()
	Accept(r Result)
	Transcript() string
	Listening() bool
}

// Synthesizer reads text aloud. Speak does not wait for playback.
type Synthesizer interface {
	Speak(ctx context.Context, text string)
}

// Session is a Recognizer for a single dictation.
type Session struct {
	mu         sync.Mutex
	listening  bool
	transcript strings.Builder
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = true
	return nil
}

func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = false
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.Reset()
}

// Accept appends a final result followed by a space. Interim results and
// results arriving while stopped are dropped.
func (s *Session) Accept(r Result) {
	if !r.Final || r.Text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.listening {
		return
	}
	s.transcript.WriteString(r.Text)
	s.transcript.WriteByte(' ')
}

func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.String()
}

func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Unavailable is the Recognizer used when dictation is disabled.
type Unavailable struct{}

func (Unavailable) Start(context.Context) error { return ErrUnsupported }
func (Unavailable) Stop()                       {}
func (Unavailable) Clear()                      {}
func (Unavailable) Accept(Result)               {}
func (Unavailable) Transcript() string          { return "" }
func (Unavailable) Listening() bool             { return false }

// Nop discards everything it is asked to speak.
type Nop struct{}

func (Nop) Speak(context.Context, string) {}

// LogSynthesizer records spoken replies in the log instead of an audio
// device.
type LogSynthesizer struct {
	logger zerolog.Logger
	lang   string
}

func NewLogSynthesizer(logger zerolog.Logger, lang string) *LogSynthesizer {
	return &LogSynthesizer{logger: logger.With().Str("component", "speech").Logger(), lang: lang}
}

func (l *LogSynthesizer) Speak(_ context.Context, text string) {
	l.logger.Debug().Str("lang", l.lang).Int("chars", len(text)).Msg("speaking reply")
}

// Provider hands out recognizers and the synthesizer for a deployment.
type Provider struct {
	caps  Capabilities
	synth Synthesizer
}

// NewProvider enables both capabilities when enabled is set; otherwise
// recognition is unavailable and speech output is discarded.
func NewProvider(enabled bool, lang string, logger zerolog.Logger) *Provider {
	if lang == "" {
		lang = DefaultLanguage
	}
	if !enabled {
		return &Provider{caps: Capabilities{Language: lang}, synth: Nop{}}
	}
	return &Provider{
		caps:  Capabilities{Recognition: true, Synthesis: true, Language: lang},
		synth: NewLogSynthesizer(logger, lang),
	}
}

func (p *Provider) Capabilities() Capabilities {
	return p.caps
}

// NewRecognizer returns a fresh dictation session, or Unavailable.
func (p *Provider) NewRecognizer() Recognizer {
	if !p.caps.Recognition {
		return Unavailable{}
	}
	return NewSession()
}

func (p *Provider) Synthesizer() Synthesizer {
	return p.synth
}

// Transcribe runs results through a fresh recognizer and returns the
// trimmed transcript.
func (p *Provider) Transcribe(ctx context.Context, results []Result) (string, error) {
	rec := p.NewRecognizer()
	if err := rec.Start(ctx); err != nil {
		return "", err
	}
	for _, r := range results {
		rec.Accept(r)
	}
	rec.Stop()
	return strings.TrimSpace(rec.Transcript()), nil
}
