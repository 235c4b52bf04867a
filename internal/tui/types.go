package tui

import "github.com/csheth/expertdesk/internal/topic"

type stage int

const (
	stageIdle stage = iota
	stageCalling
)

type focusArea int

const (
	focusSelector focusArea = iota
	focusInput
)

const heroTitle = "Expert Desk"

const heroTagline = "Ask a culinary researcher or an education advisor."

var instructions = []string{
	"1. Choose the field you want to ask about.",
	"2. Type your question; each field keeps its own draft.",
	"3. Press Enter to get an answer from the matching expert.",
}

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	maxInputWidth             = 100
)

// submission echoes what was asked, shown above the answer.
type submission struct {
	Topic    topic.Topic
	Question string
}
