package priceoracle

import (
	"context"
	"encoding/json"
	"time"

	"lever/core"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker pulls verified price tickers from the feed and stores the latest
// price per asset.
type Worker struct {
	worker.BaseJob
	Config             *core.Config
	MarketStore        core.IMarketStore
	PriceStore         core.IPriceStore
	PriceOracleService core.IPriceOracleService
}

// New new price oracle worker
func New(cfg *core.Config, marketStore core.IMarketStore, priceStore core.IPriceStore, priceOracleService core.IPriceOracleService) *Worker {
	job := Worker{
		Config:             cfg,
		MarketStore:        marketStore,
		PriceStore:         priceStore,
		PriceOracleService: priceOracleService,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 5s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")

	markets, err := w.MarketStore.AllAsMap(ctx)
	if err != nil {
		log.Errorln(err)
		return err
	}

	tickers, err := w.PriceOracleService.PullPriceTickers(ctx, time.Now())
	if err != nil {
		log.Errorln(err)
		return err
	}

	for _, ticker := range tickers {
		// only listed assets are worth persisting
		if _, found := markets[ticker.AssetID]; !found {
			continue
		}

		content, _ := json.Marshal(ticker)
		price := &core.Price{
			AssetID:   ticker.AssetID,
			Price:     ticker.Price,
			Content:   content,
			UpdatedAt: time.Unix(ticker.Timestamp, 0),
		}

		if err := w.PriceStore.Save(ctx, price); err != nil {
			log.WithField("asset", ticker.AssetID).Errorln(err)
			return err
		}
	}

	return nil
}
