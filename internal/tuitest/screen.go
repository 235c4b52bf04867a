package tuitest

import (
	"regexp"
	"strings"
	"time"
)

// Screen is one redraw captured between clear-screen sequences.
type Screen struct {
	Index int
	Raw   string
	Text  string
}

// Recording is everything the program wrote to the terminal.
type Recording struct {
	Raw     []byte
	Screens []Screen
	Elapsed time.Duration
}

var (
	clearScreen = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSeq      = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSeq      = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

func newRecording(raw []byte, elapsed time.Duration) *Recording {
	return &Recording{Raw: raw, Screens: splitScreens(raw), Elapsed: elapsed}
}

func splitScreens(raw []byte) []Screen {
	var screens []Screen
	for _, chunk := range clearScreen.Split(strings.ReplaceAll(string(raw), "\r", ""), -1) {
		chunk = strings.TrimPrefix(strings.Trim(chunk, "\x00"), "\x1b[H")
		text := plain(chunk)
		if strings.TrimSpace(text) == "" {
			continue
		}
		screens = append(screens, Screen{Index: len(screens), Raw: chunk, Text: text})
	}
	return screens
}

// Last returns the final redraw, false when nothing was drawn.
func (r *Recording) Last() (Screen, bool) {
	if r == nil || len(r.Screens) == 0 {
		return Screen{}, false
	}
	return r.Screens[len(r.Screens)-1], true
}

// Contains reports whether text was ever on screen. The standard renderer
// repaints lines in place, so the whole escape-free stream is searched too.
func (r *Recording) Contains(text string) bool {
	if r == nil {
		return false
	}
	for _, s := range r.Screens {
		if strings.Contains(s.Text, text) {
			return true
		}
	}
	return strings.Contains(r.Text(), text)
}

// Text is the escape-free stream, handy in failure output.
func (r *Recording) Text() string {
	if r == nil {
		return ""
	}
	return plain(strings.ReplaceAll(string(r.Raw), "\r", ""))
}

// plain strips escape sequences, trailing blanks on each line and trailing
// empty lines.
func plain(s string) string {
	s = oscSeq.ReplaceAllString(s, "")
	s = csiSeq.ReplaceAllString(s, "")
	s = strings.NewReplacer("\x0e", "", "\x0f", "").Replace(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
