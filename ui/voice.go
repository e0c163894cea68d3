package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pantryassistant"
	"pantryassistant/speech"
)

const (
	msgUnsupported  = "Speech recognition is not supported here. Please use the text input instead."
	msgCaptureError = "Sorry, I had trouble understanding. Please try again."
	msgCommandError = "Sorry, I encountered an error processing your request."
)

// defaultCommands is shown when the server cannot list its commands.
var defaultCommands = []string{
	"Add [item] to inventory",
	"Add 2 cups of flour to inventory",
	"Remove [item] from inventory",
	"Update [item] quantity to [amount]",
	"Suggest a recipe",
	"What's my shopping list?",
	"What ingredients do I have?",
}

// VoiceHandlers are the refreshes a voice reply can trigger.
type VoiceHandlers struct {
	OnInventoryUpdate    func(ctx context.Context)
	OnRecipeUpdate       func(r *pantryassistant.Recipe)
	OnShoppingListUpdate func(ctx context.Context)
}

// VoiceAssistant accepts spoken or typed commands, forwards them to the
// server and speaks the reply. Capture and synthesis never overlap:
// capture cannot start while speaking, and a new utterance cancels the
// previous one.
type VoiceAssistant struct {
	api         API
	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer
	handlers    VoiceHandlers
	logger      pantryassistant.CommandLogger
	rate        float64

	warnOnce sync.Once
	wg       sync.WaitGroup

	mu           sync.Mutex
	listening    bool
	session      uint64
	speaking     bool
	transcript   string
	response     string
	utterance    uint64
	cancelSpeech context.CancelFunc
}

type VoiceAssistantOpts struct {
	API API
	// Recognizer may be nil, in which case only text input is available.
	Recognizer speech.Recognizer
	// Synthesizer may be nil, in which case replies are only displayed.
	Synthesizer speech.Synthesizer
	Handlers    VoiceHandlers
	Logger      pantryassistant.CommandLogger
	// Rate overrides the default speaking rate when positive.
	Rate float64
}

func NewVoiceAssistant(opts VoiceAssistantOpts) *VoiceAssistant {
	logger := opts.Logger
	if logger == nil {
		logger = pantryassistant.NewNoOpCommandLogger()
	}
	return &VoiceAssistant{
		api:         opts.API,
		recognizer:  opts.Recognizer,
		synthesizer: opts.Synthesizer,
		handlers:    opts.Handlers,
		logger:      logger,
		rate:        opts.Rate,
	}
}

// Mount reports whether speech capture is available, warning once when it is not.
func (a *VoiceAssistant) Mount() bool {
	if a.recognizer == nil {
		a.warnOnce.Do(func() {
			slog.Warn("VOICE: Speech recognition not supported; falling back to text input")
		})
		return false
	}
	return true
}

// Unmount aborts capture and speech and waits for background work to finish.
func (a *VoiceAssistant) Unmount() {
	a.mu.Lock()
	if a.listening && a.recognizer != nil {
		a.recognizer.Stop()
	}
	a.listening = false
	a.session++
	a.stopSpeakingLocked()
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *VoiceAssistant) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

func (a *VoiceAssistant) Speaking() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speaking
}

func (a *VoiceAssistant) Transcript() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transcript
}

func (a *VoiceAssistant) Response() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.response
}

func (a *VoiceAssistant) setResponse(text string) {
	a.mu.Lock()
	a.response = text
	a.mu.Unlock()
}

// ToggleListening starts a capture session, or stops the active one. It
// returns ErrMicDisabled without side effects while speech is playing.
func (a *VoiceAssistant) ToggleListening(ctx context.Context) error {
	a.mu.Lock()
	if a.speaking {
		a.mu.Unlock()
		return ErrMicDisabled
	}
	if a.recognizer == nil {
		a.response = msgUnsupported
		a.mu.Unlock()
		return nil
	}
	if a.listening {
		a.listening = false
		a.session++
		a.mu.Unlock()
		a.recognizer.Stop()
		return nil
	}
	a.transcript = ""
	a.response = ""
	a.listening = true
	a.session++
	id := a.session
	a.mu.Unlock()

	results, err := a.recognizer.StartCapture(ctx)
	if err != nil {
		slog.Error("VOICE: Error starting recognition", "error", err)
		a.mu.Lock()
		if a.session == id {
			a.listening = false
		}
		a.mu.Unlock()
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.awaitCapture(ctx, id, results)
	}()
	return nil
}

// awaitCapture handles the single outcome of capture session id. Once the
// session is stopped or superseded its outcome is dropped, whatever the
// recognizer still delivers.
func (a *VoiceAssistant) awaitCapture(ctx context.Context, id uint64, results <-chan speech.Result) {
	res, ok := <-results

	a.mu.Lock()
	if a.session != id {
		a.mu.Unlock()
		if ok {
			slog.Debug("VOICE: Dropping result from stopped capture session")
		}
		return
	}
	a.listening = false
	if !ok {
		a.mu.Unlock()
		return
	}
	if res.Err != nil {
		a.response = msgCaptureError
		a.mu.Unlock()
		slog.Error("VOICE: Speech recognition error", "error", res.Err)
		return
	}
	a.transcript = res.Text
	a.mu.Unlock()

	_, _ = a.HandleCommand(ctx, pantryassistant.SourceSpeech, res.Text)
}

// SubmitText sends typed text. Blank input is ignored.
func (a *VoiceAssistant) SubmitText(ctx context.Context, text string) error {
	return a.submit(ctx, pantryassistant.SourceText, text)
}

// SubmitScripted sends a command read from a script.
func (a *VoiceAssistant) SubmitScripted(ctx context.Context, text string) error {
	return a.submit(ctx, pantryassistant.SourceScript, text)
}

func (a *VoiceAssistant) submit(ctx context.Context, source pantryassistant.CommandSource, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	a.mu.Lock()
	a.transcript = text
	a.mu.Unlock()

	_, err := a.HandleCommand(ctx, source, text)
	return err
}

// HandleCommand sends text to the command endpoint, shows and speaks the
// reply, and runs the refresh matching the reply's action tag.
func (a *VoiceAssistant) HandleCommand(ctx context.Context, source pantryassistant.CommandSource, text string) (*pantryassistant.VoiceResponse, error) {
	entry := pantryassistant.CommandLog{Timestamp: time.Now(), Source: source, Text: text}

	resp, err := a.api.ProcessVoice(ctx, text)
	if err != nil {
		entry.Error = err.Error()
		a.logCommand(entry)
		slog.Error("VOICE: Error processing voice command", "error", err)
		a.setResponse(msgCommandError)
		a.Speak(msgCommandError)
		return nil, err
	}

	entry.Reply = resp.Text
	entry.Action = resp.Action
	a.logCommand(entry)

	a.setResponse(resp.Text)
	a.Speak(resp.Text)
	a.dispatch(ctx, resp)
	return resp, nil
}

func (a *VoiceAssistant) logCommand(entry pantryassistant.CommandLog) {
	if err := a.logger.LogCommand(entry); err != nil {
		slog.Warn("VOICE: Failed to log command", "error", err)
	}
}

func (a *VoiceAssistant) dispatch(ctx context.Context, resp *pantryassistant.VoiceResponse) {
	switch resp.Action {
	case pantryassistant.ActionInventoryUpdated, pantryassistant.ActionInventoryList:
		if a.handlers.OnInventoryUpdate != nil {
			a.handlers.OnInventoryUpdate(ctx)
		}
	case pantryassistant.ActionRecipeSuggested:
		recipe, err := resp.Recipe()
		if err != nil {
			slog.Warn("VOICE: Ignoring recipe_suggested reply", "error", err)
			return
		}
		if a.handlers.OnRecipeUpdate != nil {
			a.handlers.OnRecipeUpdate(recipe)
		}
	case pantryassistant.ActionShoppingList:
		if a.handlers.OnShoppingListUpdate != nil {
			a.handlers.OnShoppingListUpdate(ctx)
		}
	default:
		slog.Debug("VOICE: No refresh for action", "action", resp.Action)
	}
}

// Speak plays text, cancelling any utterance still in progress.
func (a *VoiceAssistant) Speak(text string) {
	if a.synthesizer == nil || strings.TrimSpace(text) == "" {
		return
	}

	u := speech.NewUtterance(text)
	if a.rate > 0 {
		u.Rate = a.rate
	}
	ctx, cancel := context.WithCancel(context.Background())

	a.mu.Lock()
	a.stopSpeakingLocked()
	a.utterance++
	id := a.utterance
	a.speaking = true
	a.cancelSpeech = cancel
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer cancel()

		err := a.synthesizer.Speak(ctx, u)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("VOICE: Speech synthesis error", "error", err)
		}

		a.mu.Lock()
		if a.utterance == id {
			a.speaking = false
			a.cancelSpeech = nil
		}
		a.mu.Unlock()
	}()
}

// StopSpeaking cancels the current utterance.
func (a *VoiceAssistant) StopSpeaking() {
	a.mu.Lock()
	a.stopSpeakingLocked()
	a.mu.Unlock()
}

func (a *VoiceAssistant) stopSpeakingLocked() {
	if a.cancelSpeech != nil {
		a.cancelSpeech()
		a.cancelSpeech = nil
	}
	a.speaking = false
	a.utterance++
}

// Help lists the commands the server understands.
func (a *VoiceAssistant) Help(ctx context.Context) []string {
	cmds, err := a.api.SupportedCommands(ctx)
	if err != nil || len(cmds) == 0 {
		if err != nil {
			slog.Error("VOICE: Error loading supported commands", "error", err)
		}
		return defaultCommands
	}
	return cmds
}

func (a *VoiceAssistant) Render(w io.Writer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	mic := "ready"
	switch {
	case a.recognizer == nil:
		mic = "text only"
	case a.speaking:
		mic = "speaking (mic disabled)"
	case a.listening:
		mic = "listening"
	}
	fmt.Fprintf(w, "== Voice Assistant [%s] ==\n", mic)
	if a.transcript != "" {
		fmt.Fprintf(w, "You said: %s\n", a.transcript)
	}
	if a.response != "" {
		fmt.Fprintf(w, "Assistant: %s\n", a.response)
	}
}
