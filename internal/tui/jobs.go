package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/expertdesk/internal/logger"
)

type jobKind string

type jobStatus string

const (
	jobKindAnswer jobKind = "answer"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

// jobProgressMsg carries an intermediate payload; the update loop must keep
// listening on updates until the result envelope arrives.
type jobProgressMsg struct {
	ID      string
	Payload tea.Msg
	updates <-chan tea.Msg
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

// jobRunner performs the work. emit forwards intermediate messages to the UI
// in order, before the final payload.
type jobRunner func(ctx context.Context, emit func(tea.Msg)) (tea.Msg, error)

type jobBus struct {
	counter int64
	ctx     context.Context
	cancel  context.CancelFunc
	log     *logger.Logger
}

func newJobBus(log *logger.Logger) *jobBus {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &jobBus{ctx: ctx, cancel: cancel, log: log.With("component", "jobs")}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

// Stop releases workers blocked on delivering messages after the program exits.
func (b *jobBus) Stop() {
	b.cancel()
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	updates := make(chan tea.Msg, 64)
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	send := func(msg tea.Msg) {
		select {
		case updates <- msg:
		case <-b.ctx.Done():
		}
	}

	runCmd := func() tea.Msg {
		defer close(updates)
		payload, err := runner(b.ctx, func(msg tea.Msg) {
			send(jobProgressMsg{ID: id, Payload: msg, updates: updates})
		})
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		b.log.Info("job finished", "id", id, "kind", string(kind), "status", string(snapshot.Status), "duration", snapshot.Duration, "error", snapshot.Err)
		send(jobResultEnvelope{Snapshot: snapshot, Payload: payload})
		return nil
	}

	b.log.Debug("job started", "id", id, "kind", string(kind))
	return tea.Batch(startCmd, runCmd, waitForJob(updates))
}

func waitForJob(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}
