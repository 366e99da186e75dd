package borrow

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

type borrowService struct {
	db             *db.DB
	borrowStore    core.IBorrowStore
	supplyStore    core.ISupplyStore
	marketStore    core.IMarketStore
	marketService  core.IMarketService
	accountService core.IAccountService
	riskService    core.IRiskService
	walletz        core.IWalletService

	entryGuard guard.Guard
}

// New new borrow service
func New(
	database *db.DB,
	borrowStore core.IBorrowStore,
	supplyStore core.ISupplyStore,
	marketStore core.IMarketStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	riskService core.IRiskService,
	walletz core.IWalletService,
) core.IBorrowService {
	return &borrowService{
		db:             database,
		borrowStore:    borrowStore,
		supplyStore:    supplyStore,
		marketStore:    marketStore,
		marketService:  marketService,
		accountService: accountService,
		riskService:    riskService,
		walletz:        walletz,
	}
}

func (s *borrowService) Borrow(ctx context.Context, userID string, market *core.Market, amount decimal.Decimal) (*core.Borrow, error) {
	log := logger.FromContext(ctx).WithField("service", "borrow")

	if err := s.entryGuard.Enter(); err != nil {
		return nil, err
	}
	defer s.entryGuard.Exit()

	borrow, err := s.borrowStore.Find(ctx, userID, market.AssetID)
	if err != nil {
		return nil, err
	}

	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, market, time.Now()); err != nil {
			return err
		}

		if err := lever.Require(amount.LessThanOrEqual(market.TotalCash), core.ErrInsufficientCash); err != nil {
			return err
		}

		if err := s.riskService.BorrowAllowed(ctx, tx, market, userID, amount); err != nil {
			return err
		}

		// rebase the stored principal to the current index before adding
		balance := lever.BorrowBalance(ctx, borrow, market)
		market.TotalCash = market.TotalCash.Sub(amount)
		market.TotalBorrows = market.TotalBorrows.Add(amount)
		if err := s.marketStore.Update(ctx, tx, market); err != nil {
			return err
		}

		transfer := &core.Transfer{
			TraceID:    id.TraceIDFrom(fmt.Sprintf("borrow-%s-%s-%d", userID, market.AssetID, time.Now().UnixNano())),
			OpponentID: userID,
			AssetID:    market.AssetID,
			Amount:     amount,
		}
		if err := s.walletz.Transfer(ctx, tx, transfer); err != nil {
			return err
		}

		if borrow.ID == 0 {
			borrow.UserID = userID
			borrow.AssetID = market.AssetID
			borrow.Principal = amount
			borrow.InterestIndex = market.BorrowIndex
			return s.borrowStore.Create(ctx, tx, borrow)
		}

		borrow.Principal = balance.Add(amount)
		borrow.InterestIndex = market.BorrowIndex
		return s.borrowStore.Update(ctx, tx, borrow)
	})
	if err != nil {
		return nil, err
	}

	log.WithField("user", userID).
		WithField("symbol", market.Symbol).
		WithField("amount", amount).
		Infoln("borrowed")
	return borrow, nil
}

// Repay pays down the borrow, capped at the balance owed. The surplus, if
// any, is returned to the payer and reported back.
func (s *borrowService) Repay(ctx context.Context, userID string, market *core.Market, amount decimal.Decimal) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("service", "borrow")

	if err := s.entryGuard.Enter(); err != nil {
		return decimal.Zero, err
	}
	defer s.entryGuard.Exit()

	if err := lever.Require(amount.IsPositive(), core.ErrInvalidAmount); err != nil {
		return decimal.Zero, err
	}

	borrow, err := s.borrowStore.Find(ctx, userID, market.AssetID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := lever.Require(borrow.ID > 0, core.ErrBorrowNotFound); err != nil {
		return decimal.Zero, err
	}

	var refund decimal.Decimal
	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, market, time.Now()); err != nil {
			return err
		}

		if err := s.riskService.RepayAllowed(ctx, tx, market, userID, userID); err != nil {
			return err
		}

		balance := lever.BorrowBalance(ctx, borrow, market)
		actual := number.Min(amount, balance)
		refund = amount.Sub(actual)

		market.TotalBorrows = number.NonNegative(market.TotalBorrows.Sub(actual))
		market.TotalCash = market.TotalCash.Add(actual)
		if err := s.marketStore.Update(ctx, tx, market); err != nil {
			return err
		}

		if err := s.walletz.Deposit(ctx, tx, market.AssetID, actual); err != nil {
			return err
		}

		if refund.IsPositive() {
			transfer := &core.Transfer{
				TraceID:    id.TraceIDFrom(fmt.Sprintf("repay-refund-%s-%s-%d", userID, market.AssetID, time.Now().UnixNano())),
				OpponentID: userID,
				AssetID:    market.AssetID,
				Amount:     refund,
			}
			if err := s.walletz.Transfer(ctx, tx, transfer); err != nil {
				return err
			}
		}

		borrow.Principal = balance.Sub(actual)
		borrow.InterestIndex = market.BorrowIndex
		return s.borrowStore.Update(ctx, tx, borrow)
	})
	if err != nil {
		return decimal.Zero, err
	}

	log.WithField("user", userID).
		WithField("symbol", market.Symbol).
		WithField("amount", amount).
		WithField("refund", refund).
		Infoln("repaid")
	return refund, nil
}

// Liquidate repays part of an underwater borrow and seizes a premium of the
// borrower's collateral shares. The protocol share of the seizure is retired
// into the collateral market's reserves.
func (s *borrowService) Liquidate(ctx context.Context, liquidator, borrower string, borrowMarket, collateralMarket *core.Market, repayAmount decimal.Decimal) (*core.Liquidation, error) {
	log := logger.FromContext(ctx).WithField("service", "borrow")

	if err := s.entryGuard.Enter(); err != nil {
		return nil, err
	}
	defer s.entryGuard.Exit()

	if err := lever.Require(liquidator != borrower, core.ErrOperationForbidden); err != nil {
		return nil, err
	}

	sameMarket := borrowMarket.AssetID == collateralMarket.AssetID
	if sameMarket {
		collateralMarket = borrowMarket
	}

	borrow, err := s.borrowStore.Find(ctx, borrower, borrowMarket.AssetID)
	if err != nil {
		return nil, err
	}

	borrowerSupply, err := s.supplyStore.Find(ctx, borrower, collateralMarket.AssetID)
	if err != nil {
		return nil, err
	}

	liquidatorSupply, err := s.supplyStore.Find(ctx, liquidator, collateralMarket.AssetID)
	if err != nil {
		return nil, err
	}

	var liquidation *core.Liquidation
	err = s.db.Tx(func(tx *db.DB) error {
		now := time.Now()
		if err := s.marketService.AccrueInterest(ctx, tx, borrowMarket, now); err != nil {
			return err
		}

		if !sameMarket {
			if err := s.marketService.AccrueInterest(ctx, tx, collateralMarket, now); err != nil {
				return err
			}
		}

		if err := s.riskService.LiquidateAllowed(ctx, tx, borrowMarket, collateralMarket, liquidator, borrower, repayAmount); err != nil {
			return err
		}

		seizedShares, err := s.accountService.SeizeShares(ctx, borrowMarket, collateralMarket, repayAmount)
		if err != nil {
			return err
		}

		if err := lever.Require(seizedShares.LessThanOrEqual(borrowerSupply.Shares), core.ErrSeizeNotAllowed); err != nil {
			return err
		}

		if err := s.riskService.SeizeAllowed(ctx, tx, borrowMarket, collateralMarket, liquidator, borrower); err != nil {
			return err
		}

		protocolShares := seizedShares.Mul(collateralMarket.ProtocolSeizeShare).Truncate(lever.MaxPrecision)
		liquidatorShares := seizedShares.Sub(protocolShares)

		balance := lever.BorrowBalance(ctx, borrow, borrowMarket)
		borrow.Principal = balance.Sub(repayAmount)
		borrow.InterestIndex = borrowMarket.BorrowIndex
		if err := s.borrowStore.Update(ctx, tx, borrow); err != nil {
			return err
		}

		borrowMarket.TotalBorrows = number.NonNegative(borrowMarket.TotalBorrows.Sub(repayAmount))
		borrowMarket.TotalCash = borrowMarket.TotalCash.Add(repayAmount)

		// the protocol's cut of the seizure is retired into reserves at the
		// current exchange rate
		exchangeRate := collateralMarket.CurExchangeRate()
		collateralMarket.TotalShares = collateralMarket.TotalShares.Sub(protocolShares)
		collateralMarket.Reserves = collateralMarket.Reserves.Add(protocolShares.Mul(exchangeRate).Truncate(lever.MaxPrecision))

		if err := s.marketStore.Update(ctx, tx, borrowMarket); err != nil {
			return err
		}

		if !sameMarket {
			if err := s.marketStore.Update(ctx, tx, collateralMarket); err != nil {
				return err
			}
		}

		if err := s.walletz.Deposit(ctx, tx, borrowMarket.AssetID, repayAmount); err != nil {
			return err
		}

		borrowerSupply.Shares = borrowerSupply.Shares.Sub(seizedShares)
		if err := s.supplyStore.Update(ctx, tx, borrowerSupply); err != nil {
			return err
		}

		if liquidatorSupply.ID == 0 {
			liquidatorSupply.UserID = liquidator
			liquidatorSupply.AssetID = collateralMarket.AssetID
			liquidatorSupply.Shares = liquidatorShares
			if err := s.supplyStore.Create(ctx, tx, liquidatorSupply); err != nil {
				return err
			}
		} else {
			liquidatorSupply.Shares = liquidatorSupply.Shares.Add(liquidatorShares)
			if err := s.supplyStore.Update(ctx, tx, liquidatorSupply); err != nil {
				return err
			}
		}

		liquidation = &core.Liquidation{
			Liquidator:     liquidator,
			Borrower:       borrower,
			AssetID:        borrowMarket.AssetID,
			RepayAmount:    repayAmount,
			SeizedAssetID:  collateralMarket.AssetID,
			SeizedShares:   liquidatorShares,
			ProtocolShares: protocolShares,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("liquidator", liquidator).
		WithField("borrower", borrower).
		WithField("repay", repayAmount).
		WithField("seized", liquidation.SeizedShares).
		Infoln("liquidated")
	return liquidation, nil
}
