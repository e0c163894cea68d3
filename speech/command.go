package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"
)

// waitDelay bounds how long a killed engine may keep its output pipes open.
const waitDelay = time.Second

func parseCommand(command string) ([]string, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("speech engine unavailable: %w", err)
	}
	return argv, nil
}

// CommandRecognizer runs an external capture program (for example a
// whisper.cpp wrapper) per session and reads the transcript from its stdout.
// The program receives the capture language in VOICE_LANG.
type CommandRecognizer struct {
	argv []string
	lang string

	mu     sync.Mutex
	active *captureSession
}

type captureSession struct {
	cancel context.CancelFunc
}

// NewCommandRecognizer fails when command is empty or its program is not
// installed, which callers treat as "speech capture unsupported".
func NewCommandRecognizer(command, lang string) (*CommandRecognizer, error) {
	argv, err := parseCommand(command)
	if err != nil {
		return nil, err
	}
	return &CommandRecognizer{argv: argv, lang: lang}, nil
}

func (r *CommandRecognizer) StartCapture(ctx context.Context) (<-chan Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, ErrCaptureActive
	}

	ctx, cancel := context.WithCancel(ctx)
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Env = append(os.Environ(), "VOICE_LANG="+r.lang)
	cmd.Stdout = &stdout
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start capture: %w", err)
	}

	s := &captureSession{cancel: cancel}
	r.active = s
	results := make(chan Result, 1)

	go func() {
		defer close(results)
		err := cmd.Wait()
		stopped := ctx.Err() != nil
		cancel()

		r.mu.Lock()
		if r.active == s {
			r.active = nil
		}
		r.mu.Unlock()

		if stopped {
			slog.Debug("VOICE: capture stopped before a result")
			return
		}
		if err != nil {
			results <- Result{Err: fmt.Errorf("capture: %w", err)}
			return
		}
		text := strings.TrimSpace(stdout.String())
		if text == "" {
			results <- Result{Err: ErrNoSpeech}
			return
		}
		results <- Result{Text: text}
	}()

	return results, nil
}

// Stop cancels the active session and frees the recognizer for the next
// one; the stopped session's channel closes without a result.
func (r *CommandRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.cancel()
		r.active = nil
	}
}

// espeak's default speaking rate in words per minute.
const espeakBaseWPM = 175

// CommandSynthesizer pipes utterance text to an external TTS program on
// stdin. espeak and espeak-ng get their rate, pitch and amplitude flags;
// other programs receive VOICE_RATE, VOICE_PITCH and VOICE_VOLUME.
type CommandSynthesizer struct {
	argv   []string
	output io.Writer
}

func NewCommandSynthesizer(command string) (*CommandSynthesizer, error) {
	argv, err := parseCommand(command)
	if err != nil {
		return nil, err
	}
	return &CommandSynthesizer{argv: argv, output: io.Discard}, nil
}

func (s *CommandSynthesizer) isEspeak() bool {
	return strings.HasPrefix(filepath.Base(s.argv[0]), "espeak")
}

func (s *CommandSynthesizer) Speak(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}

	args := append([]string(nil), s.argv[1:]...)
	env := os.Environ()
	if s.isEspeak() {
		args = append(args, "--stdin",
			"-s", strconv.Itoa(int(espeakBaseWPM*u.Rate)),
			"-p", strconv.Itoa(int(50*u.Pitch)),
			"-a", strconv.Itoa(int(100*u.Volume)),
		)
	} else {
		env = append(env,
			"VOICE_RATE="+strconv.FormatFloat(u.Rate, 'f', -1, 64),
			"VOICE_PITCH="+strconv.FormatFloat(u.Pitch, 'f', -1, 64),
			"VOICE_VOLUME="+strconv.FormatFloat(u.Volume, 'f', -1, 64),
		)
	}

	cmd := exec.CommandContext(ctx, s.argv[0], args...)
	cmd.Env = env
	cmd.Stdin = strings.NewReader(u.Text)
	cmd.Stdout = s.output
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}
