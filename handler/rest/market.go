package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"
	"lever/handler/views"
)

func allMarketsHandler(marketStr core.IMarketStore, supplyStr core.ISupplyStore, borrowStr core.IBorrowStore, marketSrv core.IMarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		markets, e := marketStr.All(ctx)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		marketViews := make([]*views.Market, 0)
		for _, m := range markets {
			marketViews = append(marketViews, getMarketView(ctx, m, supplyStr, borrowStr, marketSrv))
		}

		render.JSON(w, marketViews)
	}
}

func marketHandler(marketStr core.IMarketStore, supplyStr core.ISupplyStore, borrowStr core.IBorrowStore, marketSrv core.IMarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Symbol string `json:"symbol"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		market, e := marketStr.FindBySymbol(ctx, strings.ToUpper(params.Symbol))
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		if market.ID == 0 {
			render.BadRequest(w, core.ErrMarketNotListed)
			return
		}

		render.JSON(w, getMarketView(ctx, market, supplyStr, borrowStr, marketSrv))
	}
}

func enterMarketHandler(marketStr core.IMarketStore, riskSrv core.IRiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string `json:"user"`
			Symbol string `json:"symbol"`
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

		if e := riskSrv.EnterMarket(ctx, params.UserID, market.AssetID); e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, render.H{"entered": market.Symbol})
	}
}

func exitMarketHandler(marketStr core.IMarketStore, riskSrv core.IRiskService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			UserID string `json:"user"`
			Symbol string `json:"symbol"`
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

		if e := riskSrv.ExitMarket(ctx, params.UserID, market.AssetID); e != nil {
			render.BadRequest(w, e)
			return
		}

		render.JSON(w, render.H{"exited": market.Symbol})
	}
}

func findListedMarket(ctx context.Context, marketStr core.IMarketStore, symbol string) (*core.Market, error) {
	market, err := marketStr.FindBySymbol(ctx, strings.ToUpper(symbol))
	if err != nil {
		return nil, err
	}

	if market.ID == 0 {
		return nil, core.ErrMarketNotListed
	}

	return market, nil
}

func getMarketView(ctx context.Context, market *core.Market, supplyStr core.ISupplyStore, borrowStr core.IBorrowStore, marketSrv core.IMarketService) *views.Market {
	view := views.Market{Market: market}

	if rate, e := marketSrv.CurSupplyRate(ctx, market); e == nil {
		view.SupplyRate = rate
	}

	if rate, e := marketSrv.CurBorrowRate(ctx, market); e == nil {
		view.BorrowRate = rate
	}

	if supplies, e := supplyStr.FindByAsset(ctx, market.AssetID); e == nil {
		view.Suppliers = int64(len(supplies))
	}

	if count, e := borrowStr.CountOfBorrowers(ctx, market.AssetID); e == nil {
		view.Borrowers = count
	}

	return &view
}
