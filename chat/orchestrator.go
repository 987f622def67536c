package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/habiliai/mcpchat/errors"
	"github.com/habiliai/mcpchat/internal/stringslices"
	"github.com/habiliai/mcpchat/internal/stringutils"
	"github.com/habiliai/mcpchat/memory"
	"github.com/habiliai/mcpchat/router"
)

type (
	State int

	ReplyKind int

	Reply struct {
		Kind ReplyKind
		// Text is the handler output, the error message or the command confirmation.
		Text     string
		Category router.Category
		Handler  string
		// Warning is set when the turn succeeded but the memory could not be saved.
		Warning string
	}

	Orchestrator struct {
		session *Session

		mtx   sync.Mutex
		state State
	}
)

const (
	StateAwaitingInput State = iota
	StateProcessing
	StateShutdown
)

const (
	ReplyIgnored ReplyKind = iota
	ReplyAnswer
	ReplyError
	ReplyCleared
	ReplyExit
)

const (
	clearedText = "Conversation history cleared."
	exitText    = "Ending conversation..."
)

var (
	exitTokens  = []string{"exit", "quit", "q"}
	clearTokens = []string{"clear"}
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "AwaitingInput"
	case StateProcessing:
		return "Processing"
	case StateShutdown:
		return "Shutdown"
	}
	return "Unknown"
}

func NewOrchestrator(session *Session) *Orchestrator {
	return &Orchestrator{
		session: session,
		state:   StateAwaitingInput,
	}
}

func (o *Orchestrator) Session() *Session {
	return o.session
}

func (o *Orchestrator) State() State {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return o.state
}

// HandleLine applies one line of input. Turn failures come back as a
// ReplyError; the returned error is only set once the session is shut down.
func (o *Orchestrator) HandleLine(ctx context.Context, line string) (Reply, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.state == StateShutdown {
		return Reply{}, errors.WithStack(errors.ErrSessionClosed)
	}

	text := stringutils.Clean(line)
	switch {
	case text == "":
		return Reply{Kind: ReplyIgnored}, nil
	case stringslices.ContainsFold(exitTokens, text):
		return o.shutdown(ctx), nil
	case stringslices.ContainsFold(clearTokens, text):
		return o.clear(ctx), nil
	}

	return o.process(ctx, text), nil
}

// Process runs a normal turn on text without looking at control tokens.
func (o *Orchestrator) Process(ctx context.Context, text string) (Reply, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.state == StateShutdown {
		return Reply{}, errors.WithStack(errors.ErrSessionClosed)
	}
	text = stringutils.Clean(text)
	if text == "" {
		return Reply{}, errors.WithStack(errors.ErrEmptyText)
	}

	return o.process(ctx, text), nil
}

func (o *Orchestrator) Clear(ctx context.Context) (Reply, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.state == StateShutdown {
		return Reply{}, errors.WithStack(errors.ErrSessionClosed)
	}
	return o.clear(ctx), nil
}

// Shutdown persists the memory and ends the session. Calling it again is a no-op.
func (o *Orchestrator) Shutdown(ctx context.Context) Reply {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	if o.state == StateShutdown {
		return Reply{Kind: ReplyExit, Text: exitText}
	}
	return o.shutdown(ctx)
}

func (o *Orchestrator) shutdown(ctx context.Context) Reply {
	reply := Reply{
		Kind: ReplyExit,
		Text: exitText,
	}
	reply.Warning = o.persist(context.WithoutCancel(ctx))
	o.state = StateShutdown
	return reply
}

func (o *Orchestrator) clear(ctx context.Context) Reply {
	logger := o.session.Logger

	if err := o.session.Store.Reset(ctx); err != nil {
		logger.Error("failed to clear memory", "err", err)
		return Reply{Kind: ReplyError, Text: err.Error()}
	}

	logger.Info("conversation history cleared")
	return Reply{
		Kind:    ReplyCleared,
		Text:    clearedText,
		Warning: o.persist(ctx),
	}
}

func (o *Orchestrator) process(ctx context.Context, text string) Reply {
	o.state = StateProcessing
	defer func() {
		o.state = StateAwaitingInput
	}()

	var (
		logger   = o.session.Logger
		store    = o.session.Store
		category = o.session.Router.Pick(text)
		handler  = o.session.Registry.Handler(category)
	)
	reply := Reply{
		Category: category,
		Handler:  handler.Name(),
	}

	input, err := store.Add(ctx, text, memory.SourceUser)
	if err != nil {
		logger.Error("failed to store input", "err", err)
		reply.Kind = ReplyError
		reply.Text = err.Error()
		return reply
	}

	logger.Debug("routing input", "category", category, "handler", handler.Name())
	output, err := handler.Invoke(ctx, text)
	if err != nil {
		logger.Error("handler failed", "category", category, "handler", handler.Name(), "err", err)
		o.discard(ctx, input)
		reply.Kind = ReplyError
		reply.Text = err.Error()
		return reply
	}

	reply.Kind = ReplyAnswer
	reply.Text = output

	// empty tool output still counts as an answer, it just is not remembered
	if strings.TrimSpace(output) != "" {
		if _, err := store.Add(ctx, output, memory.SourceAssistant); err != nil {
			logger.Error("failed to store output", "err", err)
			o.discard(ctx, input)
			reply.Warning = err.Error()
			return reply
		}
	}

	reply.Warning = o.persist(ctx)
	return reply
}

// discard drops the input of a turn that did not complete, so a later
// Persist never stores a question without its answer.
func (o *Orchestrator) discard(ctx context.Context, input *memory.Document) {
	if err := o.session.Store.Remove(context.WithoutCancel(ctx), input.ID); err != nil {
		o.session.Logger.Warn("failed to drop unanswered input", "id", input.ID, "err", err)
	}
}

// persist saves the memory and returns a warning text if that failed.
func (o *Orchestrator) persist(ctx context.Context) string {
	if err := o.session.Store.Persist(ctx); err != nil {
		o.session.Logger.Warn("failed to persist memory", "err", err)
		return "failed to save memory: " + err.Error()
	}
	return ""
}
