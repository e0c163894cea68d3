package ui

import (
	"context"
	"errors"
	"sync"

	"pantryassistant"
	"pantryassistant/speech"
)

var errNetwork = errors.New("network error")

type addCall struct {
	Name     string
	Quantity float64
	Unit     pantryassistant.Unit
}

type removeCall struct {
	Name     string
	Quantity *float64
}

type applyCall struct {
	Name     string
	Servings int
}

// fakeAPI records calls and returns canned data
type fakeAPI struct {
	mu sync.Mutex

	inventory    []pantryassistant.InventoryItem
	inventoryErr error
	shopping     []pantryassistant.ShoppingListEntry
	shoppingErr  error
	recipe       *pantryassistant.Recipe
	writeErr     error
	voice        *pantryassistant.VoiceResponse
	voiceErr     error
	commands     []string
	commandsErr  error

	inventoryCalls int
	shoppingCalls  int
	suggestCalls   []int
	adds           []addCall
	removes        []removeCall
	applies        []applyCall
	thresholds     map[string]float64
	voiceTexts     []string
}

func (f *fakeAPI) Inventory(ctx context.Context) ([]pantryassistant.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventoryCalls++
	if f.inventoryErr != nil {
		return nil, f.inventoryErr
	}
	return f.inventory, nil
}

func (f *fakeAPI) AddItem(ctx context.Context, name string, quantity float64, unit pantryassistant.Unit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, addCall{name, quantity, unit})
	return f.writeErr
}

func (f *fakeAPI) RemoveItem(ctx context.Context, name string, quantity *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, removeCall{name, quantity})
	return f.writeErr
}

func (f *fakeAPI) SuggestRecipe(ctx context.Context, preferences *string, servings int) (*pantryassistant.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestCalls = append(f.suggestCalls, servings)
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return f.recipe, nil
}

func (f *fakeAPI) ApplyRecipe(ctx context.Context, name string, servings int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applies = append(f.applies, applyCall{name, servings})
	return f.writeErr
}

func (f *fakeAPI) ShoppingList(ctx context.Context) ([]pantryassistant.ShoppingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shoppingCalls++
	if f.shoppingErr != nil {
		return nil, f.shoppingErr
	}
	return f.shopping, nil
}

func (f *fakeAPI) UpdateThreshold(ctx context.Context, name string, threshold float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.thresholds == nil {
		f.thresholds = map[string]float64{}
	}
	f.thresholds[name] = threshold
	return f.writeErr
}

func (f *fakeAPI) ProcessVoice(ctx context.Context, text string) (*pantryassistant.VoiceResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voiceTexts = append(f.voiceTexts, text)
	if f.voiceErr != nil {
		return nil, f.voiceErr
	}
	return f.voice, nil
}

func (f *fakeAPI) SupportedCommands(ctx context.Context) ([]string, error) {
	return f.commands, f.commandsErr
}

func (f *fakeAPI) counts() (inventory, shopping int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inventoryCalls, f.shoppingCalls
}

func (f *fakeAPI) resetCounts() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventoryCalls = 0
	f.shoppingCalls = 0
}

func (f *fakeAPI) voiceCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.voiceTexts...)
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (r *recordingAlerter) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
}

func (r *recordingAlerter) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}

// fakeRecognizer hands out one channel per session and lets the test decide
// whether it yields a result or is stopped. With lazyStop set, Stop leaves
// the channel open so the test can deliver to or close it later.
type fakeRecognizer struct {
	lazyStop bool

	mu       sync.Mutex
	starts   int
	sessions []chan speech.Result
	current  chan speech.Result
}

func (r *fakeRecognizer) StartCapture(ctx context.Context) (<-chan speech.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	ch := make(chan speech.Result, 1)
	r.sessions = append(r.sessions, ch)
	r.current = ch
	return ch, nil
}

func (r *fakeRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		if !r.lazyStop {
			close(r.current)
		}
		r.current = nil
	}
}

func (r *fakeRecognizer) deliver(res speech.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current <- res
	close(r.current)
	r.current = nil
}

// send delivers res on session i without closing it.
func (r *fakeRecognizer) send(i int, res speech.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[i] <- res
}

func (r *fakeRecognizer) closeSession(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	close(r.sessions[i])
}

func (r *fakeRecognizer) startCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

// fakeSynth records utterances; when block is set each Speak waits for
// cancellation.
type fakeSynth struct {
	block bool

	mu        sync.Mutex
	spoken    []string
	rates     []float64
	cancelled []string
}

func (s *fakeSynth) Speak(ctx context.Context, u speech.Utterance) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, u.Text)
	s.rates = append(s.rates, u.Rate)
	s.mu.Unlock()
	if !s.block {
		return nil
	}
	<-ctx.Done()
	s.mu.Lock()
	s.cancelled = append(s.cancelled, u.Text)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *fakeSynth) said() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func (s *fakeSynth) interrupted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cancelled...)
}
