package rest

import (
	"errors"
	"net/http"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"

	"github.com/shopspring/decimal"
)

func mintHandler(marketStr core.IMarketStore, supplySrv core.ISupplyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string          `json:"user"`
			Symbol string          `json:"symbol"`
			Amount decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.UserID == "" {
			render.BadRequest(w, errors.New("user required"))
			return
		}

		market, e := findListedMarket(ctx, marketStr, params.Symbol)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		supply, e := supplySrv.Mint(ctx, params.UserID, market, params.Amount)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, supply)
	}
}

// redeemHandler redeems by shares, or by target payout when amount is set
func redeemHandler(marketStr core.IMarketStore, supplySrv core.ISupplyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string          `json:"user"`
			Symbol string          `json:"symbol"`
			Shares decimal.Decimal `json:"shares"`
			Amount decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.UserID == "" {
			render.BadRequest(w, errors.New("user required"))
			return
		}

		market, e := findListedMarket(ctx, marketStr, params.Symbol)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		var redeemed decimal.Decimal
		if params.Amount.IsPositive() {
			redeemed, e = supplySrv.RedeemUnderlying(ctx, params.UserID, market, params.Amount)
		} else {
			redeemed, e = supplySrv.Redeem(ctx, params.UserID, market, params.Shares)
		}
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, render.H{"redeemed": redeemed})
	}
}
