package topic

import "strings"

// Topic identifies which expert persona answers the question.
type Topic int

const (
	Unselected Topic = iota
	Cooking
	Education
)

// Key names the per-topic slot that stores the question text.
type Key string

const (
	keyCooking   Key = "question_cooking"
	keyEducation Key = "question_education"
)

const (
	cookingPersona = "You are a top-class culinary researcher and food consultant. " +
		"You are well-versed in both Japanese home cooking and the restaurant industry, " +
		"and you provide practical advice based on scientific evidence."
	educationPersona = "You are an education advisor grounded in learning science. " +
		"You assume Japanese learners as your audience, and you provide step-by-step support " +
		"tailored to their level—breaking concepts down and guiding them from understanding, " +
		"to practice, to mastery."
)

// SentinelLabel is shown while no topic has been chosen yet.
const SentinelLabel = "— choose a topic —"

// All returns the selectable topics in display order.
func All() []Topic {
	return []Topic{Cooking, Education}
}

// Selected reports whether t is one of the real topics.
func (t Topic) Selected() bool {
	return t == Cooking || t == Education
}

// Persona returns the system prompt bound to the topic.
func (t Topic) Persona() string {
	switch t {
	case Cooking:
		return cookingPersona
	case Education:
		return educationPersona
	default:
		return ""
	}
}

func (t Topic) Key() Key {
	switch t {
	case Cooking:
		return keyCooking
	case Education:
		return keyEducation
	default:
		return ""
	}
}

func (t Topic) Label() string {
	switch t {
	case Cooking:
		return "About cooking"
	case Education:
		return "About education"
	default:
		return SentinelLabel
	}
}

// Placeholder is the hint rendered inside the empty question input.
func (t Topic) Placeholder() string {
	switch t {
	case Cooking:
		return "Ask the culinary researcher, e.g. how do I keep rice fluffy?"
	case Education:
		return "Ask the education advisor, e.g. how should I review for exams?"
	default:
		return ""
	}
}

func (t Topic) String() string {
	switch t {
	case Cooking:
		return "cooking"
	case Education:
		return "education"
	default:
		return "unselected"
	}
}

// Parse maps a short name, a key or a label back to a topic. Unknown values
// yield Unselected.
func Parse(value string) Topic {
	value = strings.TrimSpace(value)
	for _, t := range All() {
		if strings.EqualFold(value, t.String()) || strings.EqualFold(value, string(t.Key())) || strings.EqualFold(value, t.Label()) {
			return t
		}
	}
	return Unselected
}
