package supply

import (
	"context"
	"fmt"
	"time"

	"lever/core"
	"lever/pkg/guard"
	"lever/pkg/id"
	"lever/pkg/lever"
	"lever/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type supplyService struct {
	db            *db.DB
	supplyStore   core.ISupplyStore
	marketStore   core.IMarketStore
	marketService core.IMarketService
	riskService   core.IRiskService
	walletz       core.IWalletService

	entryGuard guard.Guard
}

// New new supply service
func New(
	database *db.DB,
	supplyStore core.ISupplyStore,
	marketStore core.IMarketStore,
	marketService core.IMarketService,
	riskService core.IRiskService,
	walletz core.IWalletService,
) core.ISupplyService {
	return &supplyService{
		db:            database,
		supplyStore:   supplyStore,
		marketStore:   marketStore,
		marketService: marketService,
		riskService:   riskService,
		walletz:       walletz,
	}
}

// Mint deposits amount of the underlying and credits shares at the exchange
// rate read after accrual, so every minter pays the up-to-date price.
func (s *supplyService) Mint(ctx context.Context, userID string, market *core.Market, amount decimal.Decimal) (*core.Supply, error) {
	log := logger.FromContext(ctx).WithField("service", "supply")

	if err := s.entryGuard.Enter(); err != nil {
		return nil, err
	}
	defer s.entryGuard.Exit()

	supply, err := s.supplyStore.Find(ctx, userID, market.AssetID)
	if err != nil {
		return nil, err
	}

	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, market, time.Now()); err != nil {
			return err
		}

		if err := s.riskService.MintAllowed(ctx, tx, market, userID, amount); err != nil {
			return err
		}

		exchangeRate := market.CurExchangeRate()
		shares := amount.Div(exchangeRate).Truncate(lever.MaxPrecision)
		if err := lever.Require(shares.IsPositive(), core.ErrInvalidAmount); err != nil {
			return err
		}

		market.TotalCash = market.TotalCash.Add(amount)
		market.TotalShares = market.TotalShares.Add(shares)
		if err := s.marketStore.Update(ctx, tx, market); err != nil {
			return err
		}

		if err := s.walletz.Deposit(ctx, tx, market.AssetID, amount); err != nil {
			return err
		}

		if supply.ID == 0 {
			supply.UserID = userID
			supply.AssetID = market.AssetID
			supply.Shares = shares
			return s.supplyStore.Create(ctx, tx, supply)
		}

		supply.Shares = supply.Shares.Add(shares)
		return s.supplyStore.Update(ctx, tx, supply)
	})
	if err != nil {
		return nil, err
	}

	log.WithField("user", userID).
		WithField("symbol", market.Symbol).
		WithField("amount", amount).
		Infoln("minted")
	return supply, nil
}

func (s *supplyService) Redeem(ctx context.Context, userID string, market *core.Market, shares decimal.Decimal) (decimal.Decimal, error) {
	if err := s.entryGuard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer s.entryGuard.Exit()

	return s.redeem(ctx, userID, market, shares, decimal.Zero)
}

// RedeemUnderlying redeems whatever shares are needed to pay out amount of
// the underlying.
func (s *supplyService) RedeemUnderlying(ctx context.Context, userID string, market *core.Market, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := s.entryGuard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer s.entryGuard.Exit()

	return s.redeem(ctx, userID, market, decimal.Zero, amount)
}

// redeem executes a redemption by shares or, when underlying is positive, by
// target payout. One of the two is zero.
func (s *supplyService) redeem(ctx context.Context, userID string, market *core.Market, shares, underlying decimal.Decimal) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("service", "supply")

	supply, err := s.supplyStore.Find(ctx, userID, market.AssetID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := lever.Require(supply.ID > 0, core.ErrSupplyNotFound); err != nil {
		return decimal.Zero, err
	}

	var redeemed decimal.Decimal
	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, market, time.Now()); err != nil {
			return err
		}

		exchangeRate := market.CurExchangeRate()
		if underlying.IsPositive() {
			shares = number.Ceil(underlying.Div(exchangeRate), lever.MaxPrecision)
			redeemed = underlying
		} else {
			redeemed = shares.Mul(exchangeRate).Truncate(lever.MaxPrecision)
		}

		if err := lever.Require(shares.IsPositive() && shares.LessThanOrEqual(supply.Shares), core.ErrInvalidAmount); err != nil {
			return err
		}

		if err := lever.Require(redeemed.LessThanOrEqual(market.TotalCash), core.ErrInsufficientCash); err != nil {
			return err
		}

		if err := s.riskService.RedeemAllowed(ctx, tx, market, userID, shares); err != nil {
			return err
		}

		market.TotalCash = market.TotalCash.Sub(redeemed)
		market.TotalShares = market.TotalShares.Sub(shares)
		if err := s.marketStore.Update(ctx, tx, market); err != nil {
			return err
		}

		supply.Shares = supply.Shares.Sub(shares)
		if err := s.supplyStore.Update(ctx, tx, supply); err != nil {
			return err
		}

		transfer := &core.Transfer{
			TraceID:    id.TraceIDFrom(fmt.Sprintf("redeem-%s-%s-%d", userID, market.AssetID, time.Now().UnixNano())),
			OpponentID: userID,
			AssetID:    market.AssetID,
			Amount:     redeemed,
		}
		return s.walletz.Transfer(ctx, tx, transfer)
	})
	if err != nil {
		return decimal.Zero, err
	}

	log.WithField("user", userID).
		WithField("symbol", market.Symbol).
		WithField("amount", redeemed).
		Infoln("redeemed")
	return redeemed, nil
}
