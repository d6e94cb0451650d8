package cli

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gymops/gymops/jobs"
)

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type queueInspector interface {
	jobs.QueueInspector
	SchedulerEntries() ([]*asynq.SchedulerEntry, error)
	Close() error
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    taskEnqueuer
	inspector queueInspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redisAddr})
	return &JobsCLI{client: client, inspector: inspector}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// TriggerPrune enqueues an audit retention run.
func (c *JobsCLI) TriggerPrune(ctx context.Context, retention time.Duration) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	if retention < time.Hour {
		return nil, errors.New("jobs cli: retention must be at least one hour")
	}
	task, err := jobs.NewNavigationAuditPruneTask(retention)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string `yaml:"queue"`
	Pending   int    `yaml:"pending"`
	Active    int    `yaml:"active"`
	Scheduled int    `yaml:"scheduled"`
	Retry     int    `yaml:"retry"`
	Archived  int    `yaml:"archived"`
}

// InspectQueues reports the audit and default queues. Queues that never
// received a task show up with zero counts.
func (c *JobsCLI) InspectQueues(ctx context.Context) ([]QueueStats, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := jobs.ConsoleQueues(c.inspector)
	if err != nil {
		return nil, err
	}
	out := make([]QueueStats, 0, len(infos))
	for _, info := range infos {
		out = append(out, QueueStats{
			Queue:     info.Queue,
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
		})
	}
	return out, nil
}

// CronEntry is one periodic task registered by a running worker.
type CronEntry struct {
	ID   string    `yaml:"id"`
	Spec string    `yaml:"spec"`
	Type string    `yaml:"type"`
	Next time.Time `yaml:"next"`
	Prev time.Time `yaml:"prev,omitempty"`
}

// CronEntries lists the periodic tasks, such as the audit prune, that running
// workers have registered.
func (c *JobsCLI) CronEntries(ctx context.Context) ([]CronEntry, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := c.inspector.SchedulerEntries()
	if err != nil {
		return nil, err
	}
	out := make([]CronEntry, 0, len(entries))
	for _, e := range entries {
		entry := CronEntry{ID: e.ID, Spec: e.Spec, Next: e.Next, Prev: e.Prev}
		if e.Task != nil {
			entry.Type = e.Task.Type()
		}
		out = append(out, entry)
	}
	return out, nil
}
