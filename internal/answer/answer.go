package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/csheth/expertdesk/internal/llm"
	"github.com/csheth/expertdesk/internal/logger"
	"github.com/csheth/expertdesk/internal/session"
	"github.com/csheth/expertdesk/internal/topic"
)

// Mode selects how the answer is delivered to the sink.
type Mode string

const (
	ModeBatch  Mode = "batch"
	ModeStream Mode = "stream"
)

// DefaultTemperature is the sampling temperature used for every request.
const DefaultTemperature = 0.5

const (
	providerHint   = "The model provider returned an error. Check the API key, rate limits and model name."
	unexpectedHint = "Something unexpected went wrong while generating the answer."
)

// ParseMode maps a config value onto a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeStream:
		return ModeStream, nil
	case ModeBatch:
		return ModeBatch, nil
	default:
		return "", fmt.Errorf("unknown response mode %q (want %s or %s)", value, ModeBatch, ModeStream)
	}
}

// Phase is a state of a single submission.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseRejected   Phase = "rejected"
	PhaseCalling    Phase = "calling"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// ErrorKind distinguishes why a submission did not produce an answer.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindProvider   ErrorKind = "provider"
	KindUnexpected ErrorKind = "unexpected"
)

// Outcome is the terminal result of Submit.
type Outcome struct {
	Phase    Phase
	Kind     ErrorKind
	Topic    topic.Topic
	Question string
	Answer   string
	// Message is the user-facing explanation for rejected or failed submissions.
	Message string
	// Detail carries the raw error text.
	Detail   string
	Err      error
	Duration time.Duration
}

func (o Outcome) Succeeded() bool {
	return o.Phase == PhaseSucceeded
}

// Sink is the single output region an answer is rendered into. Every call
// replaces what was shown before.
type Sink interface {
	Render(text string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string)

func (f SinkFunc) Render(text string) { f(text) }

// Options configures a Generator.
type Options struct {
	Mode Mode
	// Temperature overrides DefaultTemperature when set; zero is a valid value.
	Temperature *float64
	Logger      *logger.Logger
	// OnPhase, when set, observes every phase transition.
	OnPhase func(Phase)
}

// Generator validates a question and obtains an answer from the model.
type Generator struct {
	client      llm.Client
	mode        Mode
	temperature float64
	log         *logger.Logger
	onPhase     func(Phase)
}

func New(client llm.Client, opts Options) *Generator {
	mode := opts.Mode
	if mode == "" {
		mode = ModeStream
	}
	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		client:      client,
		mode:        mode,
		temperature: temperature,
		log:         log.With("component", "answer"),
		onPhase:     opts.OnPhase,
	}
}

func (g *Generator) Mode() Mode {
	return g.mode
}

// BuildMessages returns the persona prompt followed by the untrimmed question.
func BuildMessages(t topic.Topic, question string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: t.Persona()},
		{Role: llm.RoleUser, Content: question},
	}
}

// Validate reports the first precondition a submission fails.
func Validate(t topic.Topic, question string) error {
	return session.Validate(t, question)
}

// Submit runs one submission to completion. The sink only ever receives
// answer text; errors are reported through the Outcome.
func (g *Generator) Submit(ctx context.Context, t topic.Topic, question string, sink Sink) (out Outcome) {
	out = Outcome{Topic: t, Question: question}
	g.enter(PhaseValidating)
	if err := Validate(t, question); err != nil {
		out.Phase = PhaseRejected
		out.Kind = KindValidation
		out.Message = err.Error()
		out.Err = err
		g.enter(PhaseRejected)
		g.log.Debug("submission rejected", "topic", t.String(), "reason", err.Error())
		g.enter(PhaseIdle)
		return out
	}

	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = g.fail(out, fmt.Errorf("panic: %v", r))
		}
		out.Duration = time.Since(started)
		g.enter(PhaseIdle)
	}()

	g.enter(PhaseCalling)
	g.log.Info("calling model", "topic", t.String(), "mode", string(g.mode), "client", g.clientName())
	if g.client == nil {
		return g.fail(out, errors.New("no language model client configured"))
	}

	req := llm.Request{Messages: BuildMessages(t, question), Temperature: g.temperature}
	var (
		text string
		err  error
	)
	switch g.mode {
	case ModeBatch:
		text, err = g.client.Complete(ctx, req)
		if err == nil {
			render(sink, text)
		}
	default:
		text, err = g.stream(ctx, req, sink)
	}
	if err != nil {
		return g.fail(out, err)
	}

	out.Phase = PhaseSucceeded
	out.Answer = text
	g.enter(PhaseSucceeded)
	g.log.Info("answer ready", "topic", t.String(), "chars", len(text), "duration", time.Since(started))
	return out
}

func (g *Generator) stream(ctx context.Context, req llm.Request, sink Sink) (string, error) {
	var buf strings.Builder
	_, err := g.client.Stream(ctx, req, func(fragment string) error {
		buf.WriteString(fragment)
		render(sink, buf.String())
		return nil
	})
	if err != nil {
		return "", err
	}
	final := buf.String()
	render(sink, final)
	return final, nil
}

func (g *Generator) fail(out Outcome, err error) Outcome {
	out.Phase = PhaseFailed
	out.Answer = ""
	out.Err = err
	out.Detail = err.Error()
	if llm.IsProviderError(err) {
		out.Kind = KindProvider
		out.Message = providerHint
	} else {
		out.Kind = KindUnexpected
		out.Message = unexpectedHint
	}
	g.enter(PhaseFailed)
	g.log.Warn("answer failed", "topic", out.Topic.String(), "kind", string(out.Kind), "error", err)
	return out
}

func (g *Generator) enter(phase Phase) {
	if g.onPhase != nil {
		g.onPhase(phase)
	}
}

func (g *Generator) clientName() string {
	if g.client == nil {
		return "none"
	}
	return g.client.Name()
}

func render(sink Sink, text string) {
	if sink != nil {
		sink.Render(text)
	}
}
