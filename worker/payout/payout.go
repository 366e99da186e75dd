package payout

import (
	"context"
	"time"

	"lever/core"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/robfig/cron/v3"
)

const checkpointKey = "payout_checkpoint"

const batchLimit = 100

// Worker drains the outbound transfer queue. Transfers stay queued until the
// settlement callback reports success, so a crash never drops a payment.
type Worker struct {
	worker.BaseJob
	Config        *core.Config
	DB            *db.DB
	TransferStore core.ITransferStore
	PropertyStore property.Store
	// Settle performs the actual payment. It must be idempotent on TraceID.
	Settle func(ctx context.Context, transfer *core.Transfer) error
}

// New new payout worker
func New(cfg *core.Config, database *db.DB, transferStore core.ITransferStore, propertyStore property.Store, settle func(ctx context.Context, transfer *core.Transfer) error) *Worker {
	job := Worker{
		Config:        cfg,
		DB:            database,
		TransferStore: transferStore,
		PropertyStore: propertyStore,
		Settle:        settle,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 1s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "payout")

	transfers, err := w.TransferStore.Top(ctx, batchLimit)
	if err != nil {
		log.Errorln(err)
		return err
	}

	for _, transfer := range transfers {
		if w.Settle != nil {
			if err := w.Settle(ctx, transfer); err != nil {
				log.WithField("trace", transfer.TraceID).Errorln("settle:", err)
				return err
			}
		}

		transfer := transfer
		err := w.DB.Tx(func(tx *db.DB) error {
			return w.TransferStore.Handled(ctx, tx, transfer.ID)
		})
		if err != nil {
			log.Errorln(err)
			return err
		}

		if err := w.PropertyStore.Save(ctx, checkpointKey, int64(transfer.ID)); err != nil {
			log.Errorln(err)
			return err
		}
	}

	return nil
}
