package rest

import (
	"errors"
	"net/http"

	"lever/core"
	"lever/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	transferStore core.ITransferStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	rewardService core.IRewardService,
	riskService core.IRiskService,
	supplyService core.ISupplyService,
	borrowService core.IBorrowService,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/markets/all", allMarketsHandler(marketStore, supplyStore, borrowStore, marketService))
	router.Get("/markets", marketHandler(marketStore, supplyStore, borrowStore, marketService))
	router.Get("/accounts/{user}", accountHandler(accountService))
	router.Get("/rewards/{user}", rewardsHandler(rewardService))
	router.Get("/transfers", transfersHandler(transferStore))
	router.Get("/liquidation-gate", liquidationGateHandler(riskService))

	router.Post("/markets/enter", enterMarketHandler(marketStore, riskService))
	router.Post("/markets/exit", exitMarketHandler(marketStore, riskService))
	router.Post("/supplies", mintHandler(marketStore, supplyService))
	router.Post("/supplies/redeem", redeemHandler(marketStore, supplyService))
	router.Post("/borrows", borrowHandler(marketStore, borrowService))
	router.Post("/borrows/repay", repayHandler(marketStore, borrowService))
	router.Post("/liquidations", liquidateHandler(marketStore, borrowService))
	router.Post("/rewards/{user}/claim", claimRewardsHandler(rewardService))

	return router
}
