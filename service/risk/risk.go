package risk

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const liquidationGateKey = "liquidation_gate"

type riskService struct {
	system           *core.System
	db               *db.DB
	marketStore      core.IMarketStore
	memberStore      core.IMemberStore
	supplyStore      core.ISupplyStore
	borrowStore      core.IBorrowStore
	marketService    core.IMarketService
	accountService   core.IAccountService
	rewardService    core.IRewardService
	allowListService core.IAllowListService
	propertyStore    property.Store
}

// New new risk service
func New(
	system *core.System,
	database *db.DB,
	marketStore core.IMarketStore,
	memberStore core.IMemberStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	marketService core.IMarketService,
	accountService core.IAccountService,
	rewardService core.IRewardService,
	allowListService core.IAllowListService,
	propertyStore property.Store,
) core.IRiskService {
	return &riskService{
		system:           system,
		db:               database,
		marketStore:      marketStore,
		memberStore:      memberStore,
		supplyStore:      supplyStore,
		borrowStore:      borrowStore,
		marketService:    marketService,
		accountService:   accountService,
		rewardService:    rewardService,
		allowListService: allowListService,
		propertyStore:    propertyStore,
	}
}

func (s *riskService) MintAllowed(ctx context.Context, tx *db.DB, market *core.Market, userID string, amount decimal.Decimal) error {
	if err := lever.Require(market.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	if err := lever.Require(!market.MintPaused, core.ErrMarketPaused); err != nil {
		return err
	}

	if err := lever.Require(amount.IsPositive(), core.ErrInvalidAmount); err != nil {
		return err
	}

	if err := s.requireNotBlocked(ctx, userID); err != nil {
		return err
	}

	// cap applies to the underlying held, not the share count
	if market.SupplyCap.IsPositive() {
		held := market.TotalCash.Add(market.TotalBorrows).Sub(market.Reserves)
		if err := lever.Require(held.Add(amount).LessThanOrEqual(market.SupplyCap), core.ErrSupplyCapReached); err != nil {
			return err
		}
	}

	return s.rewardService.DistributeSupplier(ctx, tx, market, userID, time.Now())
}

func (s *riskService) RedeemAllowed(ctx context.Context, tx *db.DB, market *core.Market, userID string, shares decimal.Decimal) error {
	if err := s.redeemAllowedInternal(ctx, market, userID, shares); err != nil {
		return err
	}

	return s.rewardService.DistributeSupplier(ctx, tx, market, userID, time.Now())
}

func (s *riskService) redeemAllowedInternal(ctx context.Context, market *core.Market, userID string, shares decimal.Decimal) error {
	if err := lever.Require(market.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	if err := lever.Require(!market.RedeemPaused, core.ErrMarketPaused); err != nil {
		return err
	}

	if err := lever.Require(shares.IsPositive(), core.ErrInvalidAmount); err != nil {
		return err
	}

	// shares not pledged as collateral redeem freely
	entered, err := s.memberStore.Exists(ctx, userID, market.AssetID)
	if err != nil {
		return err
	}

	if !entered {
		return nil
	}

	liquidity, err := s.accountService.HypotheticalAccountLiquidity(ctx, userID, market.AssetID, shares, decimal.Zero)
	if err != nil {
		return err
	}

	return lever.Require(!liquidity.Shortfall.IsPositive(), core.ErrInsufficientLiquidity)
}

func (s *riskService) BorrowAllowed(ctx context.Context, tx *db.DB, market *core.Market, userID string, amount decimal.Decimal) error {
	if err := lever.Require(market.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	if err := lever.Require(!market.BorrowPaused, core.ErrMarketPaused); err != nil {
		return err
	}

	if err := lever.Require(amount.IsPositive(), core.ErrInvalidAmount); err != nil {
		return err
	}

	if err := s.requireNotBlocked(ctx, userID); err != nil {
		return err
	}

	if market.BorrowCap.IsPositive() {
		if err := lever.Require(market.TotalBorrows.Add(amount).LessThanOrEqual(market.BorrowCap), core.ErrBorrowCapReached); err != nil {
			return err
		}
	}

	// borrowing implies the market counts toward the account, enter if needed
	entered, err := s.memberStore.Exists(ctx, userID, market.AssetID)
	if err != nil {
		return err
	}

	if !entered {
		if err := s.memberStore.Create(ctx, tx, &core.Member{UserID: userID, AssetID: market.AssetID}); err != nil {
			return err
		}
	}

	liquidity, err := s.accountService.HypotheticalAccountLiquidity(ctx, userID, market.AssetID, decimal.Zero, amount)
	if err != nil {
		return err
	}

	if err := lever.Require(!liquidity.Shortfall.IsPositive(), core.ErrInsufficientLiquidity); err != nil {
		return err
	}

	return s.rewardService.DistributeBorrower(ctx, tx, market, userID, time.Now())
}

func (s *riskService) RepayAllowed(ctx context.Context, tx *db.DB, market *core.Market, userID, borrower string) error {
	if err := lever.Require(market.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	return s.rewardService.DistributeBorrower(ctx, tx, market, borrower, time.Now())
}

func (s *riskService) LiquidateAllowed(ctx context.Context, tx *db.DB, borrowMarket, collateralMarket *core.Market, liquidator, borrower string, repayAmount decimal.Decimal) error {
	if err := lever.Require(borrowMarket.ID > 0 && collateralMarket.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	if err := lever.Require(repayAmount.IsPositive(), core.ErrInvalidAmount); err != nil {
		return err
	}

	if err := s.requireNotBlocked(ctx, liquidator); err != nil {
		return err
	}

	gated, err := s.LiquidationGate(ctx)
	if err != nil {
		return err
	}

	if gated {
		whitelisted, err := s.allowListService.InScope(ctx, liquidator, core.AllowScopeLiquidator)
		if err != nil {
			return err
		}

		if err := lever.Require(whitelisted, core.ErrLiquidatorNotAllowed); err != nil {
			return err
		}
	}

	borrow, err := s.borrowStore.Find(ctx, borrower, borrowMarket.AssetID)
	if err != nil {
		return err
	}

	if err := lever.Require(borrow.ID > 0, core.ErrBorrowNotFound); err != nil {
		return err
	}

	// settle the borrower's elapsed borrow-side rewards before the repay
	// rebases the stored principal
	if err := s.rewardService.DistributeBorrower(ctx, tx, borrowMarket, borrower, time.Now()); err != nil {
		return err
	}

	balance := lever.BorrowBalance(ctx, borrow, borrowMarket)

	// a deprecated market winds down, any borrow may be closed in full
	if borrowMarket.IsDeprecated() {
		return lever.Require(repayAmount.LessThanOrEqual(balance), core.ErrTooMuchRepay)
	}

	liquidity, err := s.accountService.CalculateAccountLiquidity(ctx, borrower)
	if err != nil {
		return err
	}

	if err := lever.Require(liquidity.Shortfall.IsPositive(), core.ErrNotLiquidatable); err != nil {
		return err
	}

	maxClose := lever.MaxClose(borrowMarket.CloseFactor, balance)
	return lever.Require(repayAmount.LessThanOrEqual(maxClose), core.ErrTooMuchRepay)
}

func (s *riskService) SeizeAllowed(ctx context.Context, tx *db.DB, borrowMarket, collateralMarket *core.Market, liquidator, borrower string) error {
	if err := lever.Require(borrowMarket.ID > 0 && collateralMarket.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	if err := s.requireNotBlocked(ctx, liquidator); err != nil {
		return err
	}

	now := time.Now()
	if err := s.rewardService.DistributeSupplier(ctx, tx, collateralMarket, borrower, now); err != nil {
		return err
	}

	return s.rewardService.DistributeSupplier(ctx, tx, collateralMarket, liquidator, now)
}

func (s *riskService) TransferAllowed(ctx context.Context, tx *db.DB, market *core.Market, from, to string, shares decimal.Decimal) error {
	// moving shares out is economically a redeem by the sender
	if err := s.redeemAllowedInternal(ctx, market, from, shares); err != nil {
		return err
	}

	if err := s.requireNotBlocked(ctx, to); err != nil {
		return err
	}

	now := time.Now()
	if err := s.rewardService.DistributeSupplier(ctx, tx, market, from, now); err != nil {
		return err
	}

	return s.rewardService.DistributeSupplier(ctx, tx, market, to, now)
}

func (s *riskService) EnterMarket(ctx context.Context, userID, assetID string) error {
	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}

	if err := lever.Require(market.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	entered, err := s.memberStore.Exists(ctx, userID, assetID)
	if err != nil {
		return err
	}

	if entered {
		return nil
	}

	return s.db.Tx(func(tx *db.DB) error {
		return s.memberStore.Create(ctx, tx, &core.Member{UserID: userID, AssetID: assetID})
	})
}

func (s *riskService) ExitMarket(ctx context.Context, userID, assetID string) error {
	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}

	if err := lever.Require(market.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	entered, err := s.memberStore.Exists(ctx, userID, assetID)
	if err != nil {
		return err
	}

	if !entered {
		return nil
	}

	borrow, err := s.borrowStore.Find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	if err := lever.Require(borrow.ID == 0 || !borrow.Principal.IsPositive(), core.ErrExitMarketDenied); err != nil {
		return err
	}

	supply, err := s.supplyStore.Find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	if supply.Shares.IsPositive() {
		liquidity, err := s.accountService.HypotheticalAccountLiquidity(ctx, userID, assetID, supply.Shares, decimal.Zero)
		if err != nil {
			return err
		}

		if err := lever.Require(!liquidity.Shortfall.IsPositive(), core.ErrExitMarketDenied); err != nil {
			return err
		}
	}

	return s.db.Tx(func(tx *db.DB) error {
		return s.memberStore.Delete(ctx, tx, userID, assetID)
	})
}

func (s *riskService) SupportMarket(ctx context.Context, caller string, market *core.Market) error {
	if err := lever.Require(s.system.IsAdmin(caller), core.ErrUnauthorized); err != nil {
		return err
	}

	existing, err := s.marketStore.Find(ctx, market.AssetID)
	if err != nil {
		return err
	}

	if err := lever.Require(existing.ID == 0, core.ErrMarketAlreadyListed); err != nil {
		return err
	}

	valid := market.InitExchangeRate.IsPositive() &&
		!market.ReserveFactor.IsNegative() && market.ReserveFactor.LessThan(decimal.New(1, 0)) &&
		market.LiquidationIncentive.GreaterThanOrEqual(lever.LiquidationIncentiveMin) &&
		market.LiquidationIncentive.LessThanOrEqual(lever.LiquidationIncentiveMax) &&
		market.CloseFactor.GreaterThanOrEqual(lever.CloseFactorMin) &&
		market.CloseFactor.LessThanOrEqual(lever.CloseFactorMax)
	if err := lever.Require(valid, core.ErrInvalidArgument); err != nil {
		return err
	}

	if err := lever.Require(!market.CollateralFactor.IsNegative() &&
		market.CollateralFactor.LessThanOrEqual(lever.CollateralFactorMax), core.ErrInvalidCollateralFactor); err != nil {
		return err
	}

	now := time.Now()
	market.BorrowIndex = decimal.New(1, 0)
	market.ExchangeRate = market.InitExchangeRate
	market.AccruedAt = now

	log := logger.FromContext(ctx).WithField("service", "risk")
	log.WithField("symbol", market.Symbol).Infoln("support market")

	return s.db.Tx(func(tx *db.DB) error {
		return s.marketStore.Create(ctx, tx, market)
	})
}

func (s *riskService) SetCollateralFactor(ctx context.Context, caller, assetID string, factor decimal.Decimal) error {
	return s.updateMarket(ctx, caller, assetID, false, func(market *core.Market) error {
		if err := lever.Require(!factor.IsNegative() &&
			factor.LessThanOrEqual(lever.CollateralFactorMax), core.ErrInvalidCollateralFactor); err != nil {
			return err
		}

		market.CollateralFactor = factor
		return nil
	})
}

func (s *riskService) SetCloseFactor(ctx context.Context, caller, assetID string, factor decimal.Decimal) error {
	return s.updateMarket(ctx, caller, assetID, false, func(market *core.Market) error {
		valid := factor.GreaterThanOrEqual(lever.CloseFactorMin) &&
			factor.LessThanOrEqual(lever.CloseFactorMax)
		if err := lever.Require(valid, core.ErrInvalidArgument); err != nil {
			return err
		}

		market.CloseFactor = factor
		return nil
	})
}

func (s *riskService) SetSupplyCap(ctx context.Context, caller, assetID string, cap decimal.Decimal) error {
	return s.updateMarket(ctx, caller, assetID, true, func(market *core.Market) error {
		if err := lever.Require(!cap.IsNegative(), core.ErrInvalidArgument); err != nil {
			return err
		}

		if err := s.requireCapTightened(caller, market.SupplyCap, cap); err != nil {
			return err
		}

		market.SupplyCap = cap
		return nil
	})
}

func (s *riskService) SetBorrowCap(ctx context.Context, caller, assetID string, cap decimal.Decimal) error {
	return s.updateMarket(ctx, caller, assetID, true, func(market *core.Market) error {
		if err := lever.Require(!cap.IsNegative(), core.ErrInvalidArgument); err != nil {
			return err
		}

		if err := s.requireCapTightened(caller, market.BorrowCap, cap); err != nil {
			return err
		}

		market.BorrowCap = cap
		return nil
	})
}

// requireCapTightened guardians may only lower a cap. Zero lifts a cap
// entirely, so a guardian may never set it.
func (s *riskService) requireCapTightened(caller string, current, next decimal.Decimal) error {
	if s.system.IsAdmin(caller) {
		return nil
	}

	tightened := next.IsPositive() && (!current.IsPositive() || next.LessThanOrEqual(current))
	return lever.Require(tightened, core.ErrUnauthorized)
}

// SetPaused guardians may pause any action, only admins unpause
func (s *riskService) SetPaused(ctx context.Context, caller, assetID, action string, paused bool) error {
	allowed := s.system.IsAdmin(caller) || (paused && s.system.IsGuardian(caller))
	if err := lever.Require(allowed, core.ErrUnauthorized); err != nil {
		return err
	}

	return s.updateMarketInternal(ctx, assetID, func(market *core.Market) error {
		switch action {
		case core.PauseActionMint:
			market.MintPaused = paused
		case core.PauseActionRedeem:
			market.RedeemPaused = paused
		case core.PauseActionBorrow:
			market.BorrowPaused = paused
		default:
			return core.ErrInvalidArgument
		}

		logger.FromContext(ctx).WithField("service", "risk").
			WithField("asset", assetID).
			WithField("action", action).
			WithField("paused", paused).
			Infoln("set market pause")
		return nil
	})
}

func (s *riskService) SetLiquidationGate(ctx context.Context, caller string, on bool) error {
	allowed := s.system.IsAdmin(caller) || (on && s.system.IsGuardian(caller))
	if err := lever.Require(allowed, core.ErrUnauthorized); err != nil {
		return err
	}

	flag := int64(0)
	if on {
		flag = 1
	}

	return s.propertyStore.Save(ctx, liquidationGateKey, flag)
}

func (s *riskService) LiquidationGate(ctx context.Context) (bool, error) {
	v, err := s.propertyStore.Get(ctx, liquidationGateKey)
	if err != nil {
		return false, err
	}

	return v.Int64() != 0, nil
}

func (s *riskService) AccrueAll(ctx context.Context, at time.Time) error {
	markets, err := s.marketStore.All(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, market := range markets {
		market := market
		g.Go(func() error {
			err := s.db.Tx(func(tx *db.DB) error {
				if err := s.marketService.AccrueInterest(ctx, tx, market, at); err != nil {
					return err
				}

				return s.rewardService.UpdateMarketIndices(ctx, tx, market, at)
			})
			if err != nil {
				logger.FromContext(ctx).WithField("service", "risk").
					WithField("symbol", market.Symbol).
					Errorln("accrue:", err)
			}

			return err
		})
	}

	return g.Wait()
}

// updateMarket applies one parameter change under optimistic locking.
// guardianOK widens the caller check to guardians, used for the caps.
func (s *riskService) updateMarket(ctx context.Context, caller, assetID string, guardianOK bool, apply func(*core.Market) error) error {
	allowed := s.system.IsAdmin(caller) || (guardianOK && s.system.IsGuardian(caller))
	if err := lever.Require(allowed, core.ErrUnauthorized); err != nil {
		return err
	}

	return s.updateMarketInternal(ctx, assetID, apply)
}

func (s *riskService) updateMarketInternal(ctx context.Context, assetID string, apply func(*core.Market) error) error {
	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}

	if err := lever.Require(market.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	return s.db.Tx(func(tx *db.DB) error {
		// settle outstanding interest at the old parameters first
		if err := s.marketService.AccrueInterest(ctx, tx, market, time.Now()); err != nil {
			return err
		}

		if err := apply(market); err != nil {
			return err
		}

		return s.marketStore.Update(ctx, tx, market)
	})
}

func (s *riskService) requireNotBlocked(ctx context.Context, userID string) error {
	blocked, err := s.allowListService.InScope(ctx, userID, core.AllowScopeBlocked)
	if err != nil {
		return err
	}

	return lever.Require(!blocked, core.ErrAccountBlocked)
}
