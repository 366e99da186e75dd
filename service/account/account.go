package account

import (
	"context"

	"lever/core"
	"lever/pkg/lever"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

type accountService struct {
	marketStore  core.IMarketStore
	supplyStore  core.ISupplyStore
	borrowStore  core.IBorrowStore
	memberStore  core.IMemberStore
	priceService core.IPriceOracleService
}

// New new account service
func New(
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	memberStore core.IMemberStore,
	priceService core.IPriceOracleService,
) core.IAccountService {
	return &accountService{
		marketStore:  marketStore,
		supplyStore:  supplyStore,
		borrowStore:  borrowStore,
		memberStore:  memberStore,
		priceService: priceService,
	}
}

func (s *accountService) CalculateAccountLiquidity(ctx context.Context, userID string) (*core.AccountLiquidity, error) {
	return s.HypotheticalAccountLiquidity(ctx, userID, "", decimal.Zero, decimal.Zero)
}

// HypotheticalAccountLiquidity walks the markets the account has entered and
// values collateral against debt, modeling a pending redeem/borrow in the
// modified market as additional debt-side pressure. Reads assume a fully
// accrued snapshot; callers accrue first.
func (s *accountService) HypotheticalAccountLiquidity(ctx context.Context, userID, modifiedAssetID string, redeemShares, borrowAmount decimal.Decimal) (*core.AccountLiquidity, error) {
	members, err := s.memberStore.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	collateralValue := decimal.Zero
	debtValue := decimal.Zero

	for _, member := range members {
		market, err := s.marketStore.Find(ctx, member.AssetID)
		if err != nil {
			return nil, err
		}

		if market.ID == 0 {
			continue
		}

		price, err := s.priceService.GetUnderlyingPrice(ctx, market.AssetID)
		if err != nil {
			return nil, err
		}

		exchangeRate := market.CurExchangeRate()
		collateralNorm := market.CollateralFactor.Mul(exchangeRate).Mul(price)

		supply, err := s.supplyStore.Find(ctx, userID, market.AssetID)
		if err != nil {
			return nil, err
		}

		if supply.ID > 0 {
			collateralValue = collateralValue.Add(collateralNorm.Mul(supply.Shares))
		}

		borrow, err := s.borrowStore.Find(ctx, userID, market.AssetID)
		if err != nil {
			return nil, err
		}

		if borrow.ID > 0 {
			balance := lever.BorrowBalance(ctx, borrow, market)
			debtValue = debtValue.Add(balance.Mul(price))
		}

		if market.AssetID == modifiedAssetID {
			debtValue = debtValue.Add(collateralNorm.Mul(redeemShares))
			debtValue = debtValue.Add(price.Mul(borrowAmount))
		}
	}

	return &core.AccountLiquidity{
		Liquidity: number.NonNegative(collateralValue.Sub(debtValue)).Truncate(lever.MaxPrecision),
		Shortfall: number.NonNegative(debtValue.Sub(collateralValue)).Truncate(lever.MaxPrecision),
	}, nil
}

func (s *accountService) SeizeShares(ctx context.Context, borrowMarket, collateralMarket *core.Market, repayAmount decimal.Decimal) (decimal.Decimal, error) {
	priceBorrowed, err := s.priceService.GetUnderlyingPrice(ctx, borrowMarket.AssetID)
	if err != nil {
		return decimal.Zero, err
	}

	priceCollateral, err := s.priceService.GetUnderlyingPrice(ctx, collateralMarket.AssetID)
	if err != nil {
		return decimal.Zero, err
	}

	seized := lever.SeizeShares(
		repayAmount,
		collateralMarket.LiquidationIncentive,
		priceBorrowed,
		priceCollateral,
		collateralMarket.CurExchangeRate(),
	)
	if !seized.IsPositive() {
		return decimal.Zero, core.ErrSeizeNotAllowed
	}

	return seized, nil
}

func (s *accountService) LoadAccount(ctx context.Context, userID string) (*core.Account, error) {
	liquidity, err := s.CalculateAccountLiquidity(ctx, userID)
	if err != nil {
		return nil, err
	}

	supplies, err := s.supplyStore.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	borrows, err := s.borrowStore.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &core.Account{
		UserID:    userID,
		Liquidity: liquidity.Liquidity,
		Shortfall: liquidity.Shortfall,
		Supplies:  supplies,
		Borrows:   borrows,
	}, nil
}
