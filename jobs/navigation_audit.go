package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgconn"

	jobmetrics "github.com/gymops/gymops/internal/jobs"
)

// Execer is the slice of pgxpool.Pool the audit jobs use.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const insertNavigationAudit = `INSERT INTO navigation_audit
	(id, user_id, role, path, pattern, outcome, target, class, reason, request_id, occurred_at)
VALUES ($1, NULLIF($2::bigint, 0), $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11)`

const pruneNavigationAudit = `DELETE FROM navigation_audit WHERE occurred_at < $1`

const uniqueViolation = "23505"

// NavigationAuditJob writes navigation audit events to postgres.
type NavigationAuditJob struct {
	DB      Execer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewNavigationAuditJob initialises the audit handlers.
func NewNavigationAuditJob(db Execer, logger *slog.Logger, metrics *jobmetrics.Metrics) *NavigationAuditJob {
	return &NavigationAuditJob{
		DB:      db,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle stores one audit event. Redelivered events hit the primary key and
// are acknowledged without a second row.
func (j *NavigationAuditJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.DB == nil {
		return errors.New("navigation audit: handler not configured")
	}
	var payload NavigationAuditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("navigation audit: decode: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ID == "" || payload.Path == "" || payload.Outcome == "" {
		return fmt.Errorf("navigation audit: incomplete event: %w", asynq.SkipRetry)
	}
	if payload.OccurredAt.IsZero() {
		payload.OccurredAt = j.now()
	}

	tracker := j.metrics().Track(TaskNavigationAudit)
	defer func() {
		err = tracker.End(err)
	}()

	_, err = j.DB.Exec(ctx, insertNavigationAudit,
		payload.ID, payload.UserID, payload.Role, payload.Path, payload.Pattern,
		payload.Outcome, payload.Target, payload.Class, payload.Reason, payload.RequestID,
		payload.OccurredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			j.metrics().AddAuditEvent(payload.Outcome, true)
			j.logger().Debug("audit event already stored", slog.String("id", payload.ID))
			return nil
		}
		j.logger().Error("store audit event", slog.String("id", payload.ID), slog.Any("error", err))
		return err
	}
	j.metrics().AddAuditEvent(payload.Outcome, false)
	return nil
}

// HandlePrune deletes audit rows older than the requested retention.
func (j *NavigationAuditJob) HandlePrune(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.DB == nil {
		return errors.New("navigation audit prune: handler not configured")
	}
	var payload NavigationAuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("navigation audit prune: decode: %v: %w", err, asynq.SkipRetry)
	}
	if payload.RetentionHours <= 0 {
		return fmt.Errorf("navigation audit prune: retention must be positive: %w", asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskNavigationAuditPrune)
	defer func() {
		err = tracker.End(err)
	}()

	cutoff := j.now().Add(-time.Duration(payload.RetentionHours) * time.Hour)
	tag, err := j.DB.Exec(ctx, pruneNavigationAudit, cutoff)
	if err != nil {
		return err
	}
	j.metrics().AddPruned(tag.RowsAffected())
	j.logger().Info("pruned navigation audit",
		slog.Time("cutoff", cutoff),
		slog.Int64("rows", tag.RowsAffected()),
	)
	return nil
}

func (j *NavigationAuditJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskNavigationAudit))
	}
	return slog.Default().With(slog.String("job", TaskNavigationAudit))
}

func (j *NavigationAuditJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *NavigationAuditJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
