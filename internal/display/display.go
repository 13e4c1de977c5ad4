package display

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/five82/multilogue/internal/render"
	"github.com/five82/multilogue/internal/store"
)

// ErrorFragment replaces the view when the dialogue cannot be rendered.
const ErrorFragment = "Error loading content. Please try editing or loading a new file."

// Mode is the visible state of the dialogue area.
type Mode int

const (
	Picking Mode = iota
	Viewing
	Editing
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return "picking"
	}
}

// TextStore is the durable key-value store holding the dialogue.
type TextStore interface {
	Ensure(key, def string) (string, error)
	Set(key, value string) error
}

// State is what the dialogue area shows. Only one of View and Buffer is
// meaningful, depending on Mode.
type State struct {
	Mode      Mode
	View      string
	Buffer    string
	RenderErr error
}

// Equal reports whether two states present the same visible result.
func (s State) Equal(o State) bool {
	return s.Mode == o.Mode && s.View == o.View && s.Buffer == o.Buffer &&
		(s.RenderErr == nil) == (o.RenderErr == nil)
}

// Reconciler derives the display mode from the persisted dialogue. Editing is
// the only mode held explicitly; Viewing and Picking are recomputed from the
// stored text on every Reconcile.
type Reconciler struct {
	store    TextStore
	renderer render.Renderer
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// New returns a Reconciler in Picking mode. Call Reconcile to load.
func New(st TextStore, r render.Renderer, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: st, renderer: r, logger: logger}
}

// State returns the current display state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Reconciler) read() (string, error) {
	text, err := r.store.Ensure(store.DialogueKey, "")
	if err != nil {
		return "", fmt.Errorf("read dialogue: %w", err)
	}
	return text, nil
}

// Reconcile reads the dialogue and switches to Viewing or Picking. Render
// failures show ErrorFragment and are reported in State.RenderErr only. On a
// read failure the previous state is kept.
func (r *Reconciler) Reconcile() (State, error) {
	text, err := r.read()
	if err != nil {
		return r.State(), err
	}

	next := State{Mode: Picking}
	if strings.TrimSpace(text) != "" {
		next.Mode = Viewing
		res := render.Try(r.renderer, text)
		if res.OK() {
			next.View = res.Fragment
		} else {
			r.logger.Error("render dialogue", "error", res.Err)
			next.View = ErrorFragment
			next.RenderErr = res.Err
		}
	}

	r.mu.Lock()
	r.state = next
	r.mu.Unlock()
	r.logger.Debug("reconciled", "mode", next.Mode.String(), "bytes", len(text))
	return next, nil
}

// EnterEdit loads the stored dialogue verbatim into the edit buffer.
func (r *Reconciler) EnterEdit() (State, error) {
	text, err := r.read()
	if err != nil {
		return r.State(), err
	}
	return r.setEditing(text), nil
}

// Save writes text verbatim and reconciles.
func (r *Reconciler) Save(text string) (State, error) {
	if err := r.store.Set(store.DialogueKey, text); err != nil {
		return r.State(), fmt.Errorf("save dialogue: %w", err)
	}
	return r.Reconcile()
}

// LoadFromFile stores file content and opens it for editing directly.
func (r *Reconciler) LoadFromFile(content string) (State, error) {
	if err := r.store.Set(store.DialogueKey, content); err != nil {
		return r.State(), fmt.Errorf("save loaded file: %w", err)
	}
	return r.setEditing(content), nil
}

// Current returns the stored dialogue without changing the display.
func (r *Reconciler) Current() (string, error) {
	return r.read()
}

func (r *Reconciler) setEditing(text string) State {
	next := State{Mode: Editing, Buffer: text}
	r.mu.Lock()
	r.state = next
	r.mu.Unlock()
	return next
}
