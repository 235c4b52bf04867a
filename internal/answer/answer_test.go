package answer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/csheth/expertdesk/internal/llm"
	"github.com/csheth/expertdesk/internal/session"
	"github.com/csheth/expertdesk/internal/topic"
)

type fakeClient struct {
	answer    string
	fragments []string
	err       error
	panicWith any

	calls    int
	requests []llm.Request
}

func (f *fakeClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeClient) Stream(ctx context.Context, req llm.Request, handler llm.StreamHandler) (string, error) {
	f.calls++
	f.requests = append(f.requests, req)
	full := ""
	for _, fragment := range f.fragments {
		full += fragment
		if err := handler(fragment); err != nil {
			return full, err
		}
	}
	if f.err != nil {
		return full, f.err
	}
	return full, nil
}

func (f *fakeClient) Name() string { return "fake" }

type recordingSink struct {
	renders []string
}

func (s *recordingSink) Render(text string) {
	s.renders = append(s.renders, text)
}

func TestSubmitRejectsUnselectedTopic(t *testing.T) {
	client := &fakeClient{answer: "never"}
	sink := &recordingSink{}
	out := New(client, Options{Mode: ModeBatch}).Submit(context.Background(), topic.Unselected, "hello", sink)

	if out.Phase != PhaseRejected || out.Kind != KindValidation {
		t.Fatalf("expected validation rejection, got %+v", out)
	}
	if !errors.Is(out.Err, session.ErrTopicUnselected) || out.Message != "select a topic" {
		t.Fatalf("unexpected rejection reason %q", out.Message)
	}
	if client.calls != 0 || len(sink.renders) != 0 {
		t.Fatalf("model must not be called (calls=%d renders=%d)", client.calls, len(sink.renders))
	}
}

func TestSubmitRejectsBlankQuestion(t *testing.T) {
	for _, question := range []string{"", "   ", "\n\t"} {
		client := &fakeClient{answer: "never"}
		out := New(client, Options{Mode: ModeStream}).Submit(context.Background(), topic.Education, question, nil)
		if out.Phase != PhaseRejected || !errors.Is(out.Err, session.ErrEmptyQuestion) {
			t.Fatalf("%q: expected empty question rejection, got %+v", question, out)
		}
		if out.Message != "enter a question" {
			t.Fatalf("%q: unexpected message %q", question, out.Message)
		}
		if client.calls != 0 {
			t.Fatalf("%q: model called %d times", question, client.calls)
		}
	}
}

func TestSubmitSendsPersonaAndVerbatimQuestion(t *testing.T) {
	for _, mode := range []Mode{ModeBatch, ModeStream} {
		for _, tp := range topic.All() {
			client := &fakeClient{answer: "ok", fragments: []string{"ok"}}
			question := "  How do I stay motivated?  "
			out := New(client, Options{Mode: mode}).Submit(context.Background(), tp, question, nil)
			if !out.Succeeded() {
				t.Fatalf("%s/%v: expected success, got %+v", mode, tp, out)
			}
			if client.calls != 1 {
				t.Fatalf("%s/%v: expected exactly one call, got %d", mode, tp, client.calls)
			}
			want := []llm.Message{
				{Role: llm.RoleSystem, Content: tp.Persona()},
				{Role: llm.RoleUser, Content: question},
			}
			req := client.requests[0]
			if !reflect.DeepEqual(req.Messages, want) {
				t.Fatalf("%s/%v: unexpected messages %+v", mode, tp, req.Messages)
			}
			if req.Temperature != DefaultTemperature {
				t.Fatalf("%s/%v: unexpected temperature %v", mode, tp, req.Temperature)
			}
			if out.Topic != tp || out.Question != question {
				t.Fatalf("%s/%v: outcome should echo the submission", mode, tp)
			}
		}
	}
}

func TestBatchRendersOnce(t *testing.T) {
	client := &fakeClient{answer: "Use a hot pan."}
	sink := &recordingSink{}
	out := New(client, Options{Mode: ModeBatch}).Submit(context.Background(), topic.Cooking, "sear?", sink)
	if !out.Succeeded() || out.Answer != "Use a hot pan." {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !reflect.DeepEqual(sink.renders, []string{"Use a hot pan."}) {
		t.Fatalf("unexpected renders %v", sink.renders)
	}
}

func TestStreamRendersBufferSoFarThenFinal(t *testing.T) {
	client := &fakeClient{fragments: []string{"Hel", "lo"}}
	sink := &recordingSink{}
	out := New(client, Options{Mode: ModeStream}).Submit(context.Background(), topic.Cooking, "greet me", sink)
	if !out.Succeeded() || out.Answer != "Hello" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	want := []string{"Hel", "Hello", "Hello"}
	if !reflect.DeepEqual(sink.renders, want) {
		t.Fatalf("renders = %v, want %v", sink.renders, want)
	}
}

func TestProviderFailureReportsHintAndNoAnswer(t *testing.T) {
	perr := &llm.ProviderError{Provider: "OpenAI", Kind: llm.ErrorAuth, Status: 401, Err: errors.New("bad key")}
	for _, mode := range []Mode{ModeBatch, ModeStream} {
		client := &fakeClient{err: perr, fragments: []string{"partial"}}
		out := New(client, Options{Mode: mode}).Submit(context.Background(), topic.Education, "help", nil)
		if out.Phase != PhaseFailed || out.Kind != KindProvider {
			t.Fatalf("%s: expected provider failure, got %+v", mode, out)
		}
		if out.Answer != "" {
			t.Fatalf("%s: failure must not carry an answer, got %q", mode, out.Answer)
		}
		if out.Message != providerHint || out.Detail != perr.Error() {
			t.Fatalf("%s: unexpected message/detail %q / %q", mode, out.Message, out.Detail)
		}
	}
}

func TestUnexpectedFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("decode exploded")}
	out := New(client, Options{Mode: ModeBatch}).Submit(context.Background(), topic.Cooking, "q", nil)
	if out.Kind != KindUnexpected || out.Message != unexpectedHint || out.Detail != "decode exploded" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestPanicIsRecoveredAsUnexpected(t *testing.T) {
	client := &fakeClient{panicWith: "boom"}
	out := New(client, Options{Mode: ModeBatch}).Submit(context.Background(), topic.Cooking, "q", nil)
	if out.Phase != PhaseFailed || out.Kind != KindUnexpected {
		t.Fatalf("panic should surface as unexpected failure, got %+v", out)
	}
}

func TestPhaseTransitions(t *testing.T) {
	var phases []Phase
	record := func(p Phase) { phases = append(phases, p) }

	New(&fakeClient{answer: "a"}, Options{Mode: ModeBatch, OnPhase: record}).Submit(context.Background(), topic.Cooking, "q", nil)
	want := []Phase{PhaseValidating, PhaseCalling, PhaseSucceeded, PhaseIdle}
	if !reflect.DeepEqual(phases, want) {
		t.Fatalf("success phases = %v, want %v", phases, want)
	}

	phases = nil
	New(&fakeClient{}, Options{OnPhase: record}).Submit(context.Background(), topic.Unselected, "q", nil)
	want = []Phase{PhaseValidating, PhaseRejected, PhaseIdle}
	if !reflect.DeepEqual(phases, want) {
		t.Fatalf("rejection phases = %v, want %v", phases, want)
	}

	phases = nil
	New(&fakeClient{err: errors.New("x")}, Options{Mode: ModeBatch, OnPhase: record}).Submit(context.Background(), topic.Cooking, "q", nil)
	want = []Phase{PhaseValidating, PhaseCalling, PhaseFailed, PhaseIdle}
	if !reflect.DeepEqual(phases, want) {
		t.Fatalf("failure phases = %v, want %v", phases, want)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"": ModeStream, "stream": ModeStream, " BATCH ": ModeBatch}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("carrier-pigeon"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestExplicitZeroTemperatureIsSent(t *testing.T) {
	zero := 0.0
	client := &fakeClient{answer: "ok"}
	New(client, Options{Mode: ModeBatch, Temperature: &zero}).Submit(context.Background(), topic.Cooking, "q", nil)
	if got := client.requests[0].Temperature; got != 0 {
		t.Fatalf("temperature = %v, want 0", got)
	}

	client = &fakeClient{answer: "ok"}
	New(client, Options{Mode: ModeBatch}).Submit(context.Background(), topic.Cooking, "q", nil)
	if got := client.requests[0].Temperature; got != DefaultTemperature {
		t.Fatalf("temperature = %v, want default %v", got, DefaultTemperature)
	}
}
