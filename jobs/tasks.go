package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gymops/gymops/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueAudit carries navigation audit events.
	QueueAudit = "audit"

	// TaskNavigationAudit persists one console navigation decision.
	TaskNavigationAudit = "navigation:audit"
	// TaskNavigationAuditPrune removes audit rows past retention.
	TaskNavigationAuditPrune = "navigation:audit:prune"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// NavigationAuditPayload describes a denied or unknown console navigation.
type NavigationAuditPayload struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id,omitempty"`
	Role       string    `json:"role"`
	Path       string    `json:"path"`
	Pattern    string    `json:"pattern,omitempty"`
	Outcome    string    `json:"outcome"`
	Target     string    `json:"target,omitempty"`
	Class      string    `json:"class,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NavigationAuditPrunePayload bounds the prune run.
type NavigationAuditPrunePayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewNavigationAuditTask builds an audit task. The event id doubles as the
// asynq task id so a double publish is rejected by the queue.
func NewNavigationAuditTask(payload NavigationAuditPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.Queue(QueueAudit), asynq.MaxRetry(5)}
	if payload.ID != "" {
		opts = append(opts, asynq.TaskID(payload.ID))
	}
	return asynq.NewTask(TaskNavigationAudit, body, opts...), nil
}

// NewNavigationAuditPruneTask builds the retention task.
func NewNavigationAuditPruneTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(NavigationAuditPrunePayload{RetentionHours: int(retention.Hours())})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNavigationAuditPrune, body, asynq.Queue(QueueDefault)), nil
}
