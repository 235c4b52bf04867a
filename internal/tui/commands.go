package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/expertdesk/internal/answer"
	"github.com/csheth/expertdesk/internal/topic"
)

// answerFragmentMsg replaces the output region with the answer so far.
type answerFragmentMsg struct {
	text string
}

type answerResultMsg struct {
	outcome answer.Outcome
}

func answerJob(gen *answer.Generator, t topic.Topic, question string) jobRunner {
	return func(ctx context.Context, emit func(tea.Msg)) (tea.Msg, error) {
		sink := answer.SinkFunc(func(text string) {
			emit(answerFragmentMsg{text: text})
		})
		outcome := gen.Submit(ctx, t, question, sink)
		return answerResultMsg{outcome: outcome}, outcome.Err
	}
}
