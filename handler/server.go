package handler

import (
	"net/http"

	"lever/core"
	"lever/handler/hc"
	"lever/handler/rest"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
)

// Server http surface: market/account/reward queries plus the balance
// transitions
type Server struct {
	Version string

	Config         *core.Config
	MarketStore    core.IMarketStore
	SupplyStore    core.ISupplyStore
	BorrowStore    core.IBorrowStore
	TransferStore  core.ITransferStore
	MarketService  core.IMarketService
	AccountService core.IAccountService
	RewardService  core.IRewardService
	RiskService    core.IRiskService
	SupplyService  core.ISupplyService
	BorrowService  core.IBorrowService
}

// Handler builds the full route tree
func (s Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.AllowAll().Handler)
	r.Use(logger.WithRequestID)
	r.Use(middleware.Logger)

	r.Mount("/hc", hc.Handle(s.Version))
	r.Mount("/api", rest.Handle(
		s.MarketStore,
		s.SupplyStore,
		s.BorrowStore,
		s.TransferStore,
		s.MarketService,
		s.AccountService,
		s.RewardService,
		s.RiskService,
		s.SupplyService,
		s.BorrowService,
	))

	return r
}
