package worker

import (
	"lever/pkg/guard"

	"github.com/robfig/cron/v3"
)

// IJob a schedulable background job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob cron-backed job skeleton. Cron fires Run on its own goroutines, so
// an overlapping tick is skipped while a previous one is still in flight.
type BaseJob struct {
	Cron   *cron.Cron
	OnWork OnWork

	busy guard.Guard
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	job.Cron.Stop()
	return nil
}

func (job *BaseJob) Run() {
	if err := job.busy.Enter(); err != nil {
		return
	}
	defer job.busy.Exit()

	_ = job.OnWork()
}
