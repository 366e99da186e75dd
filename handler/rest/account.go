package rest

import (
	"errors"
	"net/http"

	"lever/core"
	"lever/handler/render"
	"lever/handler/views"

	"github.com/go-chi/chi"
)

func accountHandler(accountSrv core.IAccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := chi.URLParam(r, "user")
		if userID == "" {
			render.BadRequest(w, errors.New("user required"))
			return
		}

		account, e := accountSrv.LoadAccount(ctx, userID)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, views.Account{Account: account})
	}
}

func rewardsHandler(rewardSrv core.IRewardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := chi.URLParam(r, "user")
		if userID == "" {
			render.BadRequest(w, errors.New("user required"))
			return
		}

		accrued, e := rewardSrv.Accrued(ctx, userID)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, views.Reward{UserID: userID, Accrued: accrued})
	}
}

func claimRewardsHandler(rewardSrv core.IRewardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := chi.URLParam(r, "user")
		if userID == "" {
			render.BadRequest(w, errors.New("user required"))
			return
		}

		transfers, e := rewardSrv.Claim(ctx, userID)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, transfers)
	}
}

func liquidationGateHandler(riskSrv core.IRiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		on, e := riskSrv.LiquidationGate(r.Context())
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, render.H{"on": on})
	}
}
