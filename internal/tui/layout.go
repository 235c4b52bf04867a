package tui

type pageLayout struct {
	windowWidth  int
	windowHeight int
	inputWidth   int
	answerWidth  int
}

func newPageLayout() pageLayout {
	return pageLayout{
		inputWidth:  70,
		answerWidth: 76,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.answerWidth = innerWidth
	// The answer box draws a border and one column of padding on each side.
	l.inputWidth = innerWidth - 4
	if l.inputWidth > maxInputWidth {
		l.inputWidth = maxInputWidth
	}
}

// wrapWidth is the usable text width inside the answer box.
func (l pageLayout) wrapWidth() int {
	available := l.answerWidth - 4
	if available < 20 {
		available = 20
	}
	return available
}
