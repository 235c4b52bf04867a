package tuitest

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSplitScreensOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[HExpert Desk  \r\n(•) About cooking\x1b[2J\x1b[H\x1b[1mAnswer\x1b[0m ready\r\n\r\n")
	rec := newRecording(raw, time.Second)
	if len(rec.Screens) != 2 {
		t.Fatalf("expected 2 screens, got %d: %#v", len(rec.Screens), rec.Screens)
	}
	if rec.Screens[0].Text != "Expert Desk\n(•) About cooking" {
		t.Fatalf("unexpected first screen %q", rec.Screens[0].Text)
	}
	last, ok := rec.Last()
	if !ok || last.Text != "Answer ready" {
		t.Fatalf("unexpected last screen %q", last.Text)
	}
}

func TestContainsSearchesRepaintedStream(t *testing.T) {
	rec := newRecording([]byte("\x1b[1mSalt the \x1b[0mwater\x1b]11;?\x07"), 0)
	if !rec.Contains("Salt the water") {
		t.Fatalf("expected match in %q", rec.Text())
	}
	if rec.Contains("pedagogy") {
		t.Fatalf("unexpected match")
	}
}

func TestScriptBuildsKeystrokes(t *testing.T) {
	script := Script{}.Settle(time.Second).ChooseTopic(2).Ask("Why?").BackToTopics().Quit()
	var keys []string
	for _, step := range script {
		keys = append(keys, string(step.Keys))
	}
	want := []string{"", "2", "Why?", "\r", "\x1b", "\x03"}
	if strings.Join(keys, "|") != strings.Join(want, "|") {
		t.Fatalf("keys = %q, want %q", keys, want)
	}
	if script[0].Pause != time.Second {
		t.Fatalf("settle pause lost: %v", script[0].Pause)
	}
}

func TestProgramEnvSetsProviderAndIsolatesConfig(t *testing.T) {
	t.Setenv("EXPERTDESK_MODEL", "leaked")
	env := programEnv("/tmp/work", Provider{Name: "ollama", Endpoint: "http://127.0.0.1:9"}, []string{"EXTRA=1"})
	joined := strings.Join(env, "\n")
	for _, want := range []string{"EXPERTDESK_PROVIDER=ollama", "EXPERTDESK_ENDPOINT=http://127.0.0.1:9", "XDG_CONFIG_HOME=/tmp/work", "EXTRA=1", "TERM="} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in env", want)
		}
	}
	if strings.Contains(joined, "leaked") || strings.Contains(joined, "EXPERTDESK_MODE=") {
		t.Fatalf("unexpected variables in env:\n%s", joined)
	}
}

func TestReplyToQueriesAnswersInOrder(t *testing.T) {
	var replies bytes.Buffer
	pending := replyToQueries(&replies, []byte("draw\x1b]11;?\x07more\x1b[6n\x1b]10;"))
	if replies.String() != "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R" {
		t.Fatalf("unexpected replies %q", replies.String())
	}
	pending = replyToQueries(&replies, append(pending, []byte("?\x07")...))
	if !strings.HasSuffix(replies.String(), "\x1b]10;rgb:cccc/cccc/cccc\x07") {
		t.Fatalf("split query not answered: %q", replies.String())
	}
	if len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %q", pending)
	}
}
