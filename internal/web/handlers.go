package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/csheth/expertdesk/internal/answer"
	"github.com/csheth/expertdesk/internal/logger"
	"github.com/csheth/expertdesk/internal/session"
	"github.com/csheth/expertdesk/internal/topic"
)

type Handler struct {
	gen      *answer.Generator
	client   string
	sessions *sessionRegistry
	log      *logger.Logger
}

func NewHandler(gen *answer.Generator, client string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		gen:      gen,
		client:   client,
		sessions: newSessionRegistry(),
		log:      log.With("component", "web"),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Index renders the caller's form. Visitors without a session get a blank
// form; a session is only kept once they post something.
func (h *Handler) Index(c *gin.Context) {
	view := session.New().View()
	if s := h.sessions.existing(c); s != nil {
		s.mu.Lock()
		view = s.state.View()
		s.mu.Unlock()
	}
	c.HTML(http.StatusOK, "page", h.page(view))
}

// SelectTopic keeps the draft typed under the previous topic, then switches.
func (h *Handler) SelectTopic(c *gin.Context) {
	s := h.sessions.sessionFor(c)
	s.mu.Lock()
	if question, ok := c.GetPostForm("question"); ok {
		s.state.Apply(session.TextChanged{Text: question})
	}
	s.state.Apply(session.SelectionChanged{Topic: topic.Parse(c.PostForm("topic"))})
	s.mu.Unlock()
	c.Redirect(http.StatusSeeOther, "/")
}

// Ask records the question under the checked topic and submits it. Browsers
// that accept text/event-stream get the answer as it grows when the
// generator streams.
func (h *Handler) Ask(c *gin.Context) {
	s := h.sessions.sessionFor(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	// The checked radio wins, so the question goes to the persona the
	// user sees selected and is stored under that topic's key.
	if picked := topic.Parse(c.PostForm("topic")); picked.Selected() && picked != s.state.Topic() {
		s.state.Apply(session.SelectionChanged{Topic: picked})
	}
	if question, ok := c.GetPostForm("question"); ok {
		s.state.Apply(session.TextChanged{Text: question})
	}
	if !s.state.Apply(session.SubmitClicked{}) {
		return
	}
	t, question := s.state.Topic(), s.state.Text()

	if h.gen == nil {
		page := h.page(s.state.View())
		page.Error = "No language model is configured."
		c.HTML(http.StatusServiceUnavailable, "page", page)
		return
	}
	if h.wantsStream(c) {
		h.streamAnswer(c, t, question)
		return
	}
	out := h.gen.Submit(c.Request.Context(), t, question, nil)
	c.HTML(statusFor(out), "page", h.page(s.state.View()).withOutcome(out))
}

func (h *Handler) wantsStream(c *gin.Context) bool {
	return h.gen.Mode() == answer.ModeStream &&
		strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

// streamAnswer sends an "echo" event with the asked topic and question, one
// "answer" event per render with the text so far, an "error" event when the
// submission did not succeed, and a closing "done".
func (h *Handler) streamAnswer(c *gin.Context, t topic.Topic, question string) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if answer.Validate(t, question) == nil {
		c.SSEvent("echo", echo{Topic: t.Label(), Question: question})
		w.Flush()
	}
	sink := answer.SinkFunc(func(text string) {
		c.SSEvent("answer", text)
		w.Flush()
	})
	out := h.gen.Submit(c.Request.Context(), t, question, sink)
	if !out.Succeeded() {
		c.SSEvent("error", errorText(out))
	}
	c.SSEvent("done", "")
	w.Flush()
	h.log.Debug("stream finished", "topic", t.String(), "phase", string(out.Phase))
}

func (h *Handler) page(view session.View) pageData {
	mode := answer.ModeStream
	if h.gen != nil {
		mode = h.gen.Mode()
	}
	return newPageData(view, mode, h.client)
}

func statusFor(out answer.Outcome) int {
	switch {
	case out.Succeeded():
		return http.StatusOK
	case out.Phase == answer.PhaseRejected:
		return http.StatusUnprocessableEntity
	case out.Kind == answer.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorText(out answer.Outcome) string {
	if out.Phase == answer.PhaseRejected {
		return validationMessage(out.Err)
	}
	if out.Detail == "" {
		return out.Message
	}
	return out.Message + "\n" + out.Detail
}

func validationMessage(err error) string {
	return session.Message(err)
}
