package campaign

import (
	"context"
	"time"

	"engagehub/pkg/task"
	"engagehub/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var TaskModule = fx.Module("task.campaign",
	fx.Provide(NewScheduler),
	fx.Invoke(registerTaskHandlers, StartScheduler),
)

func registerTaskHandlers(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.CampaignExpiryRun, func(ctx context.Context, t *asynq.Task) error {
		_, err := svc.ExpireDue(ctx)
		return err
	})
}

// Scheduler enqueues the daily expiry sweep.
type Scheduler struct {
	enqueuer task.Enqueuer
}

func NewScheduler(enqueuer task.Enqueuer) *Scheduler {
	return &Scheduler{enqueuer: enqueuer}
}

func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.run(ctx)
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started campaign expiry scheduler")

	for {
		now := time.Now()
		next := nextRunTime(now, 1, 0)

		sleepDuration := next.Sub(now)
		zap.L().Info("[Scheduler] next run scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", sleepDuration),
		)

		select {
		case <-time.After(sleepDuration):
			s.enqueueSweep()
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}

func (s *Scheduler) enqueueSweep() {
	if _, err := s.enqueuer.Enqueue(
		asynq.NewTask(taskname.CampaignExpiryRun, nil),
		asynq.Queue("low"),
	); err != nil {
		zap.L().Error("[Scheduler] failed to enqueue expiry run", zap.Error(err))
		return
	}

	zap.L().Info("[Scheduler] enqueued campaign expiry run")
}

func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
