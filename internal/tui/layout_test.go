package tui

import "testing"

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name        string
		width       int
		height      int
		inputWidth  int
		answerWidth int
		wrapWidth   int
	}{
		{name: "narrow", width: 80, height: 24, inputWidth: 72, answerWidth: 76, wrapWidth: 72},
		{name: "wide", width: 200, height: 40, inputWidth: 100, answerWidth: 196, wrapWidth: 192},
		{name: "tiny", width: 30, height: 10, inputWidth: 36, answerWidth: 40, wrapWidth: 36},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.inputWidth != tc.inputWidth {
				t.Fatalf("input width mismatch: got %d want %d", layout.inputWidth, tc.inputWidth)
			}
			if layout.answerWidth != tc.answerWidth {
				t.Fatalf("answer width mismatch: got %d want %d", layout.answerWidth, tc.answerWidth)
			}
			if got := layout.wrapWidth(); got != tc.wrapWidth {
				t.Fatalf("wrap width mismatch: got %d want %d", got, tc.wrapWidth)
			}
		})
	}
}
