package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/gymops/gymops/internal/jobs"
)

type execCall struct {
	sql  string
	args []any
}

type stubExecer struct {
	calls []execCall
	tag   pgconn.CommandTag
	err   error
}

func (s *stubExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, execCall{sql: sql, args: args})
	return s.tag, s.err
}

func newTestAuditJob(db Execer, now time.Time) *NavigationAuditJob {
	job := NewNavigationAuditJob(db, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return now }
	return job
}

func auditTask(t *testing.T, payload NavigationAuditPayload) *asynq.Task {
	t.Helper()
	task, err := NewNavigationAuditTask(payload)
	require.NoError(t, err)
	return task
}

func TestNavigationAuditStoresEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db := &stubExecer{}
	job := newTestAuditJob(db, now)

	err := job.Handle(context.Background(), auditTask(t, NavigationAuditPayload{
		ID:      "evt-1",
		UserID:  7,
		Role:    "trainer",
		Path:    "/manager/reports",
		Outcome: "redirect",
		Target:  "/dashboard",
		Class:   "role_mismatch",
	}))
	require.NoError(t, err)
	require.Len(t, db.calls, 1)

	call := db.calls[0]
	assert.Equal(t, insertNavigationAudit, call.sql)
	require.Len(t, call.args, 11)
	assert.Equal(t, "evt-1", call.args[0])
	assert.Equal(t, int64(7), call.args[1])
	assert.Equal(t, "/dashboard", call.args[6])
	assert.Equal(t, now, call.args[10], "missing timestamps default to the job clock")
}

func TestNavigationAuditTreatsDuplicateAsDelivered(t *testing.T) {
	db := &stubExecer{err: &pgconn.PgError{Code: "23505"}}
	job := newTestAuditJob(db, time.Now())

	err := job.Handle(context.Background(), auditTask(t, NavigationAuditPayload{
		ID: "evt-2", Path: "/nowhere", Outcome: "not_found",
	}))
	assert.NoError(t, err)
}

func TestNavigationAuditRetriesStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")
	db := &stubExecer{err: boom}
	job := newTestAuditJob(db, time.Now())

	err := job.Handle(context.Background(), auditTask(t, NavigationAuditPayload{
		ID: "evt-3", Path: "/finance", Outcome: "redirect",
	}))
	require.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestNavigationAuditSkipsBadPayloads(t *testing.T) {
	db := &stubExecer{}
	job := newTestAuditJob(db, time.Now())

	err := job.Handle(context.Background(), asynq.NewTask(TaskNavigationAudit, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), auditTask(t, NavigationAuditPayload{ID: "evt-4"}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, db.calls)
}

func TestNavigationAuditRequiresDatabase(t *testing.T) {
	job := &NavigationAuditJob{}
	err := job.Handle(context.Background(), asynq.NewTask(TaskNavigationAudit, nil))
	assert.Error(t, err)
}

func TestNavigationAuditPruneUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	db := &stubExecer{tag: pgconn.NewCommandTag("DELETE 12")}
	job := newTestAuditJob(db, now)

	task, err := NewNavigationAuditPruneTask(72 * time.Hour)
	require.NoError(t, err)

	require.NoError(t, job.HandlePrune(context.Background(), task))
	require.Len(t, db.calls, 1)
	assert.Equal(t, pruneNavigationAudit, db.calls[0].sql)
	assert.Equal(t, now.Add(-72*time.Hour), db.calls[0].args[0])
}

func TestNavigationAuditPruneRejectsZeroRetention(t *testing.T) {
	db := &stubExecer{}
	job := newTestAuditJob(db, time.Now())

	body, err := json.Marshal(NavigationAuditPrunePayload{})
	require.NoError(t, err)
	err = job.HandlePrune(context.Background(), asynq.NewTask(TaskNavigationAuditPrune, body))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, db.calls)
}

func TestNavigationAuditTaskUsesEventID(t *testing.T) {
	task := auditTask(t, NavigationAuditPayload{ID: "evt-5", Path: "/", Outcome: "redirect"})
	assert.Equal(t, TaskNavigationAudit, task.Type())

	var decoded NavigationAuditPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, "evt-5", decoded.ID)
}

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueAudit}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

func TestPublishNavigationAuditIgnoresTaskIDConflict(t *testing.T) {
	enq := &stubEnqueuer{err: asynq.ErrTaskIDConflict}
	client := &Client{client: enq}

	err := client.PublishNavigationAudit(context.Background(), NavigationAuditPayload{ID: "evt-6", Path: "/", Outcome: "redirect"})
	assert.NoError(t, err)
	assert.Len(t, enq.tasks, 1)

	enq.err = errors.New("redis down")
	err = client.PublishNavigationAudit(context.Background(), NavigationAuditPayload{ID: "evt-7", Path: "/", Outcome: "redirect"})
	assert.Error(t, err)

	var nilClient *Client
	assert.NoError(t, nilClient.PublishNavigationAudit(context.Background(), NavigationAuditPayload{}))
}
