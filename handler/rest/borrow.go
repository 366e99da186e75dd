package rest

import (
	"errors"
	"net/http"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"

	"github.com/shopspring/decimal"
)

func borrowHandler(marketStr core.IMarketStore, borrowSrv core.IBorrowService) http.HandlerFunc {
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

		borrow, e := borrowSrv.Borrow(ctx, params.UserID, market, params.Amount)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, borrow)
	}
}

func repayHandler(marketStr core.IMarketStore, borrowSrv core.IBorrowService) http.HandlerFunc {
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

		refund, e := borrowSrv.Repay(ctx, params.UserID, market, params.Amount)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, render.H{"refund": refund})
	}
}

func liquidateHandler(marketStr core.IMarketStore, borrowSrv core.IBorrowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Liquidator       string          `json:"liquidator"`
			Borrower         string          `json:"borrower"`
			Symbol           string          `json:"symbol"`
			CollateralSymbol string          `json:"collateral_symbol"`
			Amount           decimal.Decimal `json:"amount"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		if params.Liquidator == "" || params.Borrower == "" {
			render.BadRequest(w, errors.New("liquidator and borrower required"))
			return
		}

		borrowMarket, e := findListedMarket(ctx, marketStr, params.Symbol)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		collateralMarket, e := findListedMarket(ctx, marketStr, params.CollateralSymbol)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		liquidation, e := borrowSrv.Liquidate(ctx, params.Liquidator, params.Borrower, borrowMarket, collateralMarket, params.Amount)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, liquidation)
	}
}
