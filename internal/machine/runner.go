package machine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/five82/multilogue/internal/render"
	"github.com/five82/multilogue/internal/settings"
	"github.com/five82/multilogue/internal/store"
)

const defaultSpeaker = "Machine"

// ErrEmptyDialogue is returned when there is nothing to send.
var ErrEmptyDialogue = errors.New("dialogue is empty")

// TextStore is the dialogue store the runner reads and appends to.
type TextStore interface {
	Ensure(key, def string) (string, error)
	Set(key, value string) error
}

// Runner sends the dialogue to the machine and appends its reply.
type Runner struct {
	completer    Completer
	store        TextStore
	speaker      string
	model        string
	systemPrompt string
	notify       func()
	logger       *slog.Logger
}

// NewRunner builds a Runner. notify is called after the reply is stored so
// the view can reconcile; it may be nil.
func NewRunner(c Completer, st TextStore, opts Options, notify func(), logger *slog.Logger) *Runner {
	speaker := strings.TrimSpace(opts.Speaker)
	if speaker == "" {
		speaker = defaultSpeaker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		completer:    c,
		store:        st,
		speaker:      speaker,
		model:        strings.TrimSpace(opts.Model),
		systemPrompt: strings.TrimSpace(opts.SystemPrompt),
		notify:       notify,
		logger:       logger,
	}
}

// Speaker returns the label used for machine turns.
func (r *Runner) Speaker() string {
	return r.speaker
}

// RunMachine sends the stored dialogue and appends "\n\n<Speaker>: <reply>".
func (r *Runner) RunMachine(ctx context.Context, token string, s *settings.Settings) error {
	text, err := r.store.Ensure(store.DialogueKey, "")
	if err != nil {
		return fmt.Errorf("read dialogue: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyDialogue
	}

	req := r.buildRequest(text, s)
	r.logger.Info("machine request", "model", req.Model, "messages", len(req.Messages))
	reply, err := r.completer.Complete(ctx, token, req)
	if err != nil {
		return err
	}
	if reply == "" {
		return fmt.Errorf("machine returned an empty reply")
	}

	// Re-read so edits saved while the request was in flight are kept.
	current, err := r.store.Ensure(store.DialogueKey, "")
	if err != nil {
		return fmt.Errorf("read dialogue: %w", err)
	}
	updated := strings.TrimRight(current, "\n") + "\n\n" + r.speaker + ": " + reply
	if err := r.store.Set(store.DialogueKey, updated); err != nil {
		return fmt.Errorf("append reply: %w", err)
	}
	r.logger.Info("machine reply appended", "speaker", r.speaker, "bytes", len(reply))
	if r.notify != nil {
		r.notify()
	}
	return nil
}

func (r *Runner) buildRequest(text string, s *settings.Settings) Request {
	req := Request{Model: r.model}
	if model := s.String("model"); model != "" {
		req.Model = model
	}
	// JSON has no infinity; an unbounded temperature is left unset.
	if temp, ok := s.Temperature(); ok && !math.IsInf(temp, 0) {
		req.Temperature = &temp
	}
	if n, ok := s.MaxOutputTokens(); ok {
		req.MaxTokens = &n
	}
	if r.systemPrompt != "" {
		req.Messages = append(req.Messages, Message{Role: "system", Content: r.systemPrompt})
	}
	for _, turn := range render.SplitTurns(text) {
		body := strings.TrimSpace(turn.Body)
		switch {
		case turn.Speaker == r.speaker:
			req.Messages = append(req.Messages, Message{Role: "assistant", Content: body})
		case turn.Speaker != "":
			req.Messages = append(req.Messages, Message{Role: "user", Content: turn.Speaker + ": " + body})
		case body != "":
			req.Messages = append(req.Messages, Message{Role: "user", Content: body})
		}
	}
	return req
}
