package tasks

import (
	"context"
	"log/slog"

	"github.com/tehpwnage/posthub/app/poller"
)

// PollSourcesTask runs one full poll cycle through the orchestrator.
type PollSourcesTask struct {
	Task
	poller *poller.Poller
}

func NewPollSourcesTask(p *poller.Poller) *PollSourcesTask {
	return &PollSourcesTask{
		Task:   NewTask(TaskTypePollSources),
		poller: p,
	}
}

func (t *PollSourcesTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.poller.Run(ctx); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", string(TaskTypePollSources),
		"duration", t.GetDuration())

	return nil
}
