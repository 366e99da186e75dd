package accrual

import (
	"context"
	"time"

	"lever/core"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker drives interest compounding and reward index growth for every
// listed market.
type Worker struct {
	worker.BaseJob
	Config      *core.Config
	RiskService core.IRiskService
}

// New new accrual worker
func New(cfg *core.Config, riskService core.IRiskService) *Worker {
	job := Worker{
		Config:      cfg,
		RiskService: riskService,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 10s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "accrual")

	if err := w.RiskService.AccrueAll(ctx, time.Now()); err != nil {
		log.Errorln(err)
		return err
	}

	return nil
}
