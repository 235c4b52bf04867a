package session

import "github.com/csheth/expertdesk/internal/topic"

// Event is a user interaction the host surface forwards to the state.
type Event interface {
	isEvent()
}

// SelectionChanged is sent when the user picks a topic.
type SelectionChanged struct {
	Topic topic.Topic
}

// TextChanged is sent whenever the visible input's value changes.
type TextChanged struct {
	Text string
}

// SubmitClicked is sent when the user asks for an answer.
type SubmitClicked struct{}

func (SelectionChanged) isEvent() {}
func (TextChanged) isEvent()      {}
func (SubmitClicked) isEvent()    {}

// Apply dispatches ev against the state. It returns true when the host should
// run a submission with the current state.
func (s *State) Apply(ev Event) bool {
	switch ev := ev.(type) {
	case SelectionChanged:
		s.Select(ev.Topic)
	case TextChanged:
		s.SetText(ev.Text)
	case SubmitClicked:
		return true
	}
	return false
}

// View is an immutable snapshot of what a surface should render.
type View struct {
	Topic        topic.Topic
	InputVisible bool
	InputKey     topic.Key
	Placeholder  string
	Text         string
	CanSubmit    bool
}

func (s *State) View() View {
	return View{
		Topic:        s.topic,
		InputVisible: s.topic.Selected(),
		InputKey:     s.topic.Key(),
		Placeholder:  s.topic.Placeholder(),
		Text:         s.Text(),
		CanSubmit:    s.CanSubmit(),
	}
}
