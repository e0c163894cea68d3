// Package speech defines the capture and synthesis engines used by the
// voice assistant, plus implementations that drive external programs.
package speech

import (
	"context"
	"errors"
)

var (
	// ErrCaptureActive is returned when a capture session is already running.
	ErrCaptureActive = errors.New("speech: capture already active")
	// ErrNoSpeech is delivered when a capture session ends with an empty transcript.
	ErrNoSpeech = errors.New("speech: no speech detected")
)

// Result is the outcome of one capture session.
type Result struct {
	Text string
	Err  error
}

// Recognizer turns one spoken utterance into text.
//
// StartCapture begins a session and returns a channel that receives at most
// one Result and is then closed. Stop ends the active session and must
// eventually close its channel. A result racing with Stop may still be
// sent, so callers discard results of sessions they stopped.
type Recognizer interface {
	StartCapture(ctx context.Context) (<-chan Result, error)
	Stop()
}

// Synthesizer speaks an utterance, blocking until playback ends or ctx is
// cancelled. Cancellation is how an in-flight utterance is interrupted.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

// Utterance carries text plus playback parameters relative to the engine's
// defaults (1 is unchanged).
type Utterance struct {
	Text   string
	Rate   float64
	Pitch  float64
	Volume float64
}

// NewUtterance returns text with the assistant's voice settings.
func NewUtterance(text string) Utterance {
	return Utterance{Text: text, Rate: 0.9, Pitch: 1, Volume: 1}
}
