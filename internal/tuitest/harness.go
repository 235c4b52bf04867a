package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/creack/pty"
)

const (
	defaultCols    = 100
	defaultRows    = 40
	defaultTimeout = 10 * time.Second
)

// Provider points the program at a model endpoint through its EXPERTDESK_*
// environment.
type Provider struct {
	Name     string
	Endpoint string
	Model    string
	Mode     string
}

func (p Provider) env() []string {
	var env []string
	add := func(key, value string) {
		if value != "" {
			env = append(env, "EXPERTDESK_"+key+"="+value)
		}
	}
	add("PROVIDER", p.Name)
	add("ENDPOINT", p.Endpoint)
	add("MODEL", p.Model)
	add("MODE", p.Mode)
	return env
}

// Config describes one scripted run of the expertdesk binary.
type Config struct {
	Binary   string
	Args     []string
	Provider Provider
	// Env is appended after the provider variables.
	Env     []string
	Cols    int
	Rows    int
	Script  Script
	Timeout time.Duration
}

// Run starts Binary in a pseudo terminal with the inline renderer, an empty
// working directory and no dotenv file, replays the script and waits for the
// program to exit.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if cfg.Binary == "" {
		return nil, errors.New("tuitest: binary is required")
	}
	cols, rows := cfg.Cols, cfg.Rows
	if cols <= 0 {
		cols = defaultCols
	}
	if rows <= 0 {
		rows = defaultRows
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	workdir, err := os.MkdirTemp("", "expertdesk-tuitest-")
	if err != nil {
		return nil, fmt.Errorf("tuitest: workdir: %w", err)
	}
	defer os.RemoveAll(workdir)

	args := append([]string{"--no-alt-screen", "--env-file", filepath.Join(workdir, "missing.env")}, cfg.Args...)
	cmd := exec.CommandContext(ctx, cfg.Binary, args...)
	cmd.Dir = workdir
	cmd.Env = programEnv(workdir, cfg.Provider, cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start %s: %w", cfg.Binary, err)
	}
	defer func() { _ = ptmx.Close() }()

	var output bytes.Buffer
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		capture(ptmx, &output)
	}()

	started := time.Now()
	for _, step := range cfg.Script {
		if step.Pause > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tuitest: script interrupted: %w", ctx.Err())
			case <-time.After(step.Pause):
			}
		}
		if len(step.Keys) == 0 {
			continue
		}
		if _, err := ptmx.Write(step.Keys); err != nil {
			return nil, fmt.Errorf("tuitest: write keys: %w", err)
		}
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()
	select {
	case err := <-exited:
		if err != nil {
			return nil, fmt.Errorf("tuitest: program exited: %w", err)
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("tuitest: program still running: %w", ctx.Err())
	}

	_ = ptmx.Close()
	<-drained
	return newRecording(output.Bytes(), time.Since(started)), nil
}

// programEnv keeps PATH and friends but isolates config lookups to workdir.
func programEnv(workdir string, provider Provider, extra []string) []string {
	env := make([]string, 0, len(os.Environ())+8)
	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, "EXPERTDESK_") {
			continue
		}
		env = append(env, entry)
	}
	env = append(env, "XDG_CONFIG_HOME="+workdir, "HOME="+workdir)
	env = append(env, provider.env()...)
	env = append(env, extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// terminalReplies answers the queries lipgloss and bubbletea send at startup;
// without them the program waits for a real terminal.
var terminalReplies = []struct {
	query, reply string
}{
	{"\x1b[6n", "\x1b[1;1R"},
	{"\x1b]10;?\x07", "\x1b]10;rgb:cccc/cccc/cccc\x07"},
	{"\x1b]10;?\x1b\\", "\x1b]10;rgb:cccc/cccc/cccc\x1b\\"},
	{"\x1b]11;?\x07", "\x1b]11;rgb:0000/0000/0000\x07"},
	{"\x1b]11;?\x1b\\", "\x1b]11;rgb:0000/0000/0000\x1b\\"},
}

// capture copies terminal output into out and replies to terminal queries.
// pending keeps a short tail so a query split across reads is still seen.
func capture(term io.ReadWriter, out *bytes.Buffer) {
	buf := make([]byte, 4096)
	var pending []byte
	for {
		n, err := term.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			out.Write(chunk)
			pending = replyToQueries(term, append(pending, chunk...))
		}
		if err != nil {
			return
		}
	}
}

func replyToQueries(w io.Writer, pending []byte) []byte {
	for {
		first, match := -1, -1
		for i, r := range terminalReplies {
			if idx := bytes.Index(pending, []byte(r.query)); idx >= 0 && (first < 0 || idx < first) {
				first, match = idx, i
			}
		}
		if match < 0 {
			break
		}
		_, _ = io.WriteString(w, terminalReplies[match].reply)
		pending = pending[first+len(terminalReplies[match].query):]
	}
	if len(pending) > 32 {
		pending = append([]byte(nil), pending[len(pending)-32:]...)
	}
	return pending
}
