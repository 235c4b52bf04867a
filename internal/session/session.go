package session

import (
	"errors"
	"strings"

	"github.com/csheth/expertdesk/internal/topic"
)

var (
	// ErrTopicUnselected is reported when a question is submitted before a topic is chosen.
	ErrTopicUnselected = errors.New("select a topic")
	// ErrEmptyQuestion is reported when the active question is blank.
	ErrEmptyQuestion = errors.New("enter a question")
)

// State holds the per-session selection and the per-topic question text.
// Hosts pass it by pointer into every handler; it is not safe for concurrent use.
type State struct {
	topic  topic.Topic
	inputs map[topic.Key]string
}

// New returns an empty state with no topic chosen.
func New() *State {
	return &State{inputs: map[topic.Key]string{}}
}

func (s *State) Topic() topic.Topic {
	return s.topic
}

// Select activates the input slot of t. The sentinel cannot be re-selected.
func (s *State) Select(t topic.Topic) {
	if !t.Selected() {
		return
	}
	s.topic = t
}

// Text returns the question stored under the active topic.
func (s *State) Text() string {
	return s.TextFor(s.topic)
}

// TextFor reads the question stored for t without changing the active topic.
func (s *State) TextFor(t topic.Topic) string {
	if !t.Selected() {
		return ""
	}
	return s.inputs[t.Key()]
}

// SetText stores value under the active topic. Without a topic there is no
// visible input, so the write is dropped.
func (s *State) SetText(value string) {
	if !s.topic.Selected() {
		return
	}
	s.inputs[s.topic.Key()] = value
}

// Validate checks the preconditions of a submission in order.
func (s *State) Validate() error {
	return Validate(s.topic, s.Text())
}

func (s *State) CanSubmit() bool {
	return s.Validate() == nil
}

// Validate reports why a (topic, question) pair cannot be submitted.
func Validate(t topic.Topic, question string) error {
	if !t.Selected() {
		return ErrTopicUnselected
	}
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// Message returns the sentence a surface shows for a validation error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrTopicUnselected):
		return "Please select a topic before asking."
	case errors.Is(err, ErrEmptyQuestion):
		return "Please enter a question."
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}
