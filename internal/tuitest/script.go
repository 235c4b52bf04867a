package tuitest

import (
	"fmt"
	"time"
)

// Step waits Pause, then writes Keys to the terminal.
type Step struct {
	Pause time.Duration
	Keys  []byte
}

// Script is an ordered list of steps built with the chainable helpers below.
type Script []Step

const keyGap = 150 * time.Millisecond

var (
	keyEnter = []byte{'\r'}
	keyCtrlC = []byte{3}
	keyEsc   = []byte{27}
)

// Settle waits for the program to finish drawing.
func (s Script) Settle(d time.Duration) Script {
	return append(s, Step{Pause: d})
}

// ChooseTopic presses the number of the n-th topic (1-based), which also
// focuses the question input.
func (s Script) ChooseTopic(n int) Script {
	return append(s, Step{Pause: keyGap, Keys: []byte(fmt.Sprint(n))})
}

// Type writes text into whatever has focus.
func (s Script) Type(text string) Script {
	return append(s, Step{Pause: keyGap, Keys: []byte(text)})
}

// Ask types the question and submits it.
func (s Script) Ask(question string) Script {
	return s.Type(question).Submit()
}

// Submit presses Enter.
func (s Script) Submit() Script {
	return append(s, Step{Pause: keyGap, Keys: keyEnter})
}

// BackToTopics returns focus from the question to the topic list.
func (s Script) BackToTopics() Script {
	return append(s, Step{Pause: keyGap, Keys: keyEsc})
}

// Quit presses Ctrl+C.
func (s Script) Quit() Script {
	return append(s, Step{Pause: keyGap, Keys: keyCtrlC})
}
