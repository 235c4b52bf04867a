package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/expertdesk/internal/answer"
	"github.com/csheth/expertdesk/internal/logger"
	"github.com/csheth/expertdesk/internal/session"
	"github.com/csheth/expertdesk/internal/topic"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Generator *answer.Generator
	// ClientName is shown in the status bar.
	ClientName string
	Logger     *logger.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	input := textinput.New()
	input.Prompt = "› "
	input.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	log := config.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &model{
		config:      config,
		log:         log.With("component", "tui"),
		state:       session.New(),
		stage:       stageIdle,
		focus:       focusSelector,
		cursor:      -1,
		input:       input,
		spinner:     spin,
		layout:      newPageLayout(),
		jobs:        newJobBus(log),
		infoMessage: "Use ↑/↓ or 1/2 to choose a topic.",
	}
}

type model struct {
	config Config
	log    *logger.Logger
	state  *session.State
	stage  stage
	focus  focusArea
	// cursor indexes topic.All(); -1 while the sentinel is shown.
	cursor int

	input   textinput.Model
	spinner spinner.Model
	layout  pageLayout
	jobs    *jobBus

	asked        *submission
	answer       string
	errorMessage string
	errorDetail  string
	infoMessage  string
	lastJob      jobSnapshot
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageCalling {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.jobs.Stop()
			return m, tea.Quit
		}
		if m.stage == stageCalling {
			// One submission at a time; keys wait until the answer settles.
			return m, nil
		}
		if m.focus == focusInput {
			return m.handleInputKey(msg)
		}
		return m.handleSelectorKey(msg)
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.input.Width = m.layout.inputWidth
		return m, nil
	case jobSignalMsg:
		if m.lastJob.ID != msg.Snapshot.ID {
			m.lastJob = msg.Snapshot
		}
		return m, nil
	case jobProgressMsg:
		m.handleJobPayload(msg.Payload)
		return m, waitForJob(msg.updates)
	case jobResultEnvelope:
		m.lastJob = msg.Snapshot
		m.handleJobPayload(msg.Payload)
		return m, nil
	}
	return m, nil
}

func (m *model) handleSelectorKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	topics := topic.All()
	switch key.String() {
	case "up", "k":
		return m, m.moveCursor(-1)
	case "down", "j":
		return m, m.moveCursor(1)
	case "1", "2":
		idx := int(key.Runes[0] - '1')
		if idx < len(topics) {
			m.cursor = idx
			return m, m.selectTopic(topics[idx])
		}
	case "enter", "tab":
		if m.state.Topic().Selected() {
			return m, m.focusInput()
		}
		return m, m.submit()
	case "esc", "q":
		m.jobs.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) handleInputKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc, tea.KeyTab, tea.KeyShiftTab:
		m.focus = focusSelector
		m.input.Blur()
		m.infoMessage = "Use ↑/↓ or 1/2 to switch topics. Your drafts are kept."
		return m, nil
	case tea.KeyEnter:
		return m, m.submit()
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	if after := m.input.Value(); after != before {
		m.state.Apply(session.TextChanged{Text: after})
	}
	return m, cmd
}

func (m *model) moveCursor(delta int) tea.Cmd {
	topics := topic.All()
	next := m.cursor + delta
	if m.cursor < 0 {
		next = 0
	}
	if next < 0 {
		next = 0
	}
	if next >= len(topics) {
		next = len(topics) - 1
	}
	if next == m.cursor {
		return nil
	}
	m.cursor = next
	m.state.Apply(session.SelectionChanged{Topic: topics[next]})
	m.syncInput()
	m.clearOutput()
	return nil
}

// selectTopic picks t and moves focus to its input, the way choosing a
// radio option reveals the question box.
func (m *model) selectTopic(t topic.Topic) tea.Cmd {
	if m.state.Topic() != t {
		m.state.Apply(session.SelectionChanged{Topic: t})
		m.syncInput()
		m.clearOutput()
	}
	return m.focusInput()
}

func (m *model) focusInput() tea.Cmd {
	m.focus = focusInput
	m.infoMessage = "Enter: ask • Esc/Tab: back to topics • Ctrl+C: quit"
	return m.input.Focus()
}

// syncInput rebinds the single visible input to the active topic's slot.
func (m *model) syncInput() {
	view := m.state.View()
	m.input.Placeholder = view.Placeholder
	m.input.SetValue(view.Text)
}

func (m *model) clearOutput() {
	m.asked = nil
	m.answer = ""
	m.errorMessage = ""
	m.errorDetail = ""
}

func (m *model) submit() tea.Cmd {
	if !m.state.Apply(session.SubmitClicked{}) {
		return nil
	}
	m.clearOutput()
	t := m.state.Topic()
	question := m.state.Text()
	if err := m.state.Validate(); err != nil {
		m.errorMessage = validationMessage(err)
		return nil
	}
	if m.config.Generator == nil {
		m.errorMessage = "No language model is configured."
		return nil
	}
	m.asked = &submission{Topic: t, Question: question}
	m.stage = stageCalling
	m.infoMessage = "Generating an answer…"
	m.log.Debug("submitting question", "topic", t.String(), "chars", len(question))
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindAnswer, answerJob(m.config.Generator, t, question)))
}

func (m *model) handleJobPayload(payload tea.Msg) {
	switch msg := payload.(type) {
	case answerFragmentMsg:
		m.answer = msg.text
	case answerResultMsg:
		m.applyOutcome(msg.outcome)
	}
}

func (m *model) applyOutcome(out answer.Outcome) {
	m.stage = stageIdle
	switch out.Phase {
	case answer.PhaseSucceeded:
		m.answer = out.Answer
		m.errorMessage = ""
		m.errorDetail = ""
		m.infoMessage = "Answer ready. Edit the question and press Enter to ask again."
	case answer.PhaseRejected:
		m.asked = nil
		m.answer = ""
		m.errorMessage = validationMessage(out.Err)
	default:
		m.asked = nil
		m.answer = ""
		m.errorMessage = out.Message
		m.errorDetail = out.Detail
		m.infoMessage = "Your question is still there. Press Enter to retry."
	}
}

func validationMessage(err error) string {
	return session.Message(err)
}
