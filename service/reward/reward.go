package reward

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
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const pausedKey = "reward_transfer_paused"

type rewardService struct {
	system        *core.System
	db            *db.DB
	rewardStore   core.IRewardStore
	marketStore   core.IMarketStore
	supplyStore   core.ISupplyStore
	borrowStore   core.IBorrowStore
	walletz       core.IWalletService
	propertyStore property.Store

	claimGuard guard.Guard
}

// New new reward service
func New(
	system *core.System,
	database *db.DB,
	rewardStore core.IRewardStore,
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	walletz core.IWalletService,
	propertyStore property.Store,
) core.IRewardService {
	return &rewardService{
		system:        system,
		db:            database,
		rewardStore:   rewardStore,
		marketStore:   marketStore,
		supplyStore:   supplyStore,
		borrowStore:   borrowStore,
		walletz:       walletz,
		propertyStore: propertyStore,
	}
}

// advance moves both index sides of cfg up to at, in memory. The timestamps
// advance even when the index does not, so an elapsed slice is never counted
// twice.
func advance(cfg *core.RewardConfig, market *core.Market, at time.Time) {
	if cfg.SupplyAccruedAt.IsZero() {
		cfg.SupplyAccruedAt = at
	}

	if cfg.BorrowAccruedAt.IsZero() {
		cfg.BorrowAccruedAt = at
	}

	cfg.SupplyIndex = lever.CalculateNewRewardIndex(
		cfg.SupplySpeed, cfg.SupplyAccruedAt, cfg.EndAt, at,
		cfg.SupplyIndex, market.TotalShares)
	cfg.BorrowIndex = lever.CalculateNewRewardIndex(
		cfg.BorrowSpeed, cfg.BorrowAccruedAt, cfg.EndAt, at,
		cfg.BorrowIndex, lever.BorrowShareDenominator(market.TotalBorrows, market.BorrowIndex))

	if at.After(cfg.SupplyAccruedAt) {
		cfg.SupplyAccruedAt = at
	}

	if at.After(cfg.BorrowAccruedAt) {
		cfg.BorrowAccruedAt = at
	}
}

func (s *rewardService) UpdateMarketIndices(ctx context.Context, tx *db.DB, market *core.Market, at time.Time) error {
	cfgs, err := s.rewardStore.ConfigsByMarket(ctx, tx, market.AssetID)
	if err != nil {
		return err
	}

	for _, cfg := range cfgs {
		advance(cfg, market, at)
		if err := s.rewardStore.UpdateConfig(ctx, tx, cfg); err != nil {
			return err
		}
	}

	return nil
}

func (s *rewardService) DistributeSupplier(ctx context.Context, tx *db.DB, market *core.Market, userID string, at time.Time) error {
	supply, err := s.supplyStore.Find(ctx, userID, market.AssetID)
	if err != nil {
		return err
	}

	return s.distribute(ctx, tx, market, userID, at, func(cfg *core.RewardConfig, state *core.RewardUserState) {
		state.Accrued = state.Accrued.Add(
			lever.UserAccruedReward(cfg.SupplyIndex, state.SupplyIndex, supply.Shares))
		state.SupplyIndex = cfg.SupplyIndex
	})
}

func (s *rewardService) DistributeBorrower(ctx context.Context, tx *db.DB, market *core.Market, userID string, at time.Time) error {
	borrow, err := s.borrowStore.Find(ctx, userID, market.AssetID)
	if err != nil {
		return err
	}

	// borrow shares, not raw balance, so compounding does not inflate weight
	shares := decimal.Zero
	if borrow.ID > 0 {
		shares = lever.BorrowShareDenominator(
			lever.BorrowBalance(ctx, borrow, market), market.BorrowIndex)
	}

	return s.distribute(ctx, tx, market, userID, at, func(cfg *core.RewardConfig, state *core.RewardUserState) {
		state.Accrued = state.Accrued.Add(
			lever.UserAccruedReward(cfg.BorrowIndex, state.BorrowIndex, shares))
		state.BorrowIndex = cfg.BorrowIndex
	})
}

func (s *rewardService) distribute(ctx context.Context, tx *db.DB, market *core.Market, userID string, at time.Time, settle func(*core.RewardConfig, *core.RewardUserState)) error {
	cfgs, err := s.rewardStore.ConfigsByMarket(ctx, tx, market.AssetID)
	if err != nil {
		return err
	}

	for _, cfg := range cfgs {
		advance(cfg, market, at)

		state, err := s.rewardStore.FindUserState(ctx, tx, cfg.ID, userID)
		if err != nil {
			return err
		}

		if state.ID == 0 {
			state.ConfigID = cfg.ID
			state.UserID = userID
			state.SupplyIndex = lever.RewardInitialIndex
			state.BorrowIndex = lever.RewardInitialIndex
		}

		settle(cfg, state)

		if err := s.rewardStore.SaveUserState(ctx, tx, state); err != nil {
			return err
		}

		if err := s.rewardStore.UpdateConfig(ctx, tx, cfg); err != nil {
			return err
		}
	}

	return nil
}

// Claim pays out pending rewards, capped by the vault's holdings per reward
// asset. A shortfall stays accrued and is reported, never fatal.
func (s *rewardService) Claim(ctx context.Context, userID string) ([]*core.Transfer, error) {
	log := logger.FromContext(ctx).WithField("service", "reward")

	if err := s.claimGuard.Enter(); err != nil {
		return nil, err
	}
	defer s.claimGuard.Exit()

	paused, err := s.paused(ctx)
	if err != nil {
		return nil, err
	}

	if err := lever.Require(!paused, core.ErrRewardPaused); err != nil {
		return nil, err
	}

	states, err := s.rewardStore.UserStatesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var transfers []*core.Transfer
	// several configs may pay the same asset, so the cap tracks what is left
	// of each vault across the whole claim
	remaining := make(map[string]decimal.Decimal)
	err = s.db.Tx(func(tx *db.DB) error {
		for _, state := range states {
			if !state.Accrued.IsPositive() {
				continue
			}

			cfg, err := s.rewardStore.FindConfigByID(ctx, state.ConfigID)
			if err != nil {
				return err
			}

			if cfg.ID == 0 {
				return fmt.Errorf("reward: user state %d references missing config", state.ID)
			}

			balance, ok := remaining[cfg.RewardAssetID]
			if !ok {
				balance, err = s.walletz.Balance(ctx, cfg.RewardAssetID)
				if err != nil {
					return err
				}
			}

			amount := number.Min(state.Accrued, balance)
			remaining[cfg.RewardAssetID] = balance.Sub(amount)
			if amount.IsPositive() {
				transfer := &core.Transfer{
					TraceID:    id.TraceIDFrom(fmt.Sprintf("reward-%s-%d-%d", userID, cfg.ID, time.Now().UnixNano())),
					OpponentID: userID,
					AssetID:    cfg.RewardAssetID,
					Amount:     amount,
				}

				if err := s.walletz.Transfer(ctx, tx, transfer); err != nil {
					return err
				}

				transfers = append(transfers, transfer)
			}

			if shortfall := state.Accrued.Sub(amount); shortfall.IsPositive() {
				log.WithFields(logrus.Fields{
					"user":      userID,
					"asset":     cfg.RewardAssetID,
					"shortfall": shortfall,
				}).Warnln("reward disbursement under-funded")
			}

			state.Accrued = state.Accrued.Sub(amount)
			if err := s.rewardStore.SaveUserState(ctx, tx, state); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return transfers, nil
}

func (s *rewardService) Accrued(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	states, err := s.rewardStore.UserStatesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accrued := make(map[string]decimal.Decimal)
	for _, state := range states {
		if !state.Accrued.IsPositive() {
			continue
		}

		cfg, err := s.rewardStore.FindConfigByID(ctx, state.ConfigID)
		if err != nil {
			return nil, err
		}

		accrued[cfg.RewardAssetID] = accrued[cfg.RewardAssetID].Add(state.Accrued)
	}

	return accrued, nil
}

func (s *rewardService) CreateConfig(ctx context.Context, caller string, cfg *core.RewardConfig) error {
	if err := lever.Require(s.system.IsAdmin(caller) || caller == cfg.Owner, core.ErrUnauthorized); err != nil {
		return err
	}

	if err := validateSpeeds(cfg.SupplySpeed, cfg.BorrowSpeed); err != nil {
		return err
	}

	market, err := s.marketStore.Find(ctx, cfg.MarketAssetID)
	if err != nil {
		return err
	}

	if err := lever.Require(market.ID > 0, core.ErrMarketNotListed); err != nil {
		return err
	}

	existing, err := s.rewardStore.FindConfig(ctx, cfg.MarketAssetID, cfg.RewardAssetID)
	if err != nil {
		return err
	}

	if err := lever.Require(existing.ID == 0, core.ErrRewardConfigExists); err != nil {
		return err
	}

	now := time.Now()
	cfg.SupplyIndex = lever.RewardInitialIndex
	cfg.BorrowIndex = lever.RewardInitialIndex
	cfg.SupplyAccruedAt = now
	cfg.BorrowAccruedAt = now

	return s.db.Tx(func(tx *db.DB) error {
		return s.rewardStore.CreateConfig(ctx, tx, cfg)
	})
}

// SetSpeeds syncs the indices before the new rates take effect, so a change
// never applies retroactively to elapsed time.
func (s *rewardService) SetSpeeds(ctx context.Context, caller, marketAssetID, rewardAssetID string, supplySpeed, borrowSpeed decimal.Decimal) error {
	return s.updateConfig(ctx, caller, marketAssetID, rewardAssetID, func(cfg *core.RewardConfig) error {
		if err := validateSpeeds(supplySpeed, borrowSpeed); err != nil {
			return err
		}

		cfg.SupplySpeed = supplySpeed
		cfg.BorrowSpeed = borrowSpeed
		return nil
	})
}

func (s *rewardService) SetEndAt(ctx context.Context, caller, marketAssetID, rewardAssetID string, endAt time.Time) error {
	return s.updateConfig(ctx, caller, marketAssetID, rewardAssetID, func(cfg *core.RewardConfig) error {
		if err := lever.Require(endAt.After(time.Now()), core.ErrInvalidArgument); err != nil {
			return err
		}

		cfg.EndAt = endAt
		return nil
	})
}

func (s *rewardService) updateConfig(ctx context.Context, caller, marketAssetID, rewardAssetID string, apply func(*core.RewardConfig) error) error {
	cfg, err := s.rewardStore.FindConfig(ctx, marketAssetID, rewardAssetID)
	if err != nil {
		return err
	}

	if err := lever.Require(cfg.ID > 0, core.ErrRewardConfigNotFound); err != nil {
		return err
	}

	if err := lever.Require(s.system.IsAdmin(caller) || caller == cfg.Owner, core.ErrUnauthorized); err != nil {
		return err
	}

	market, err := s.marketStore.Find(ctx, cfg.MarketAssetID)
	if err != nil {
		return err
	}

	return s.db.Tx(func(tx *db.DB) error {
		// settle elapsed time at the old parameters first
		advance(cfg, market, time.Now())

		if err := apply(cfg); err != nil {
			return err
		}

		return s.rewardStore.UpdateConfig(ctx, tx, cfg)
	})
}

// SetPaused guardians may pause disbursement, only admins unpause. Accrual
// keeps running either way.
func (s *rewardService) SetPaused(ctx context.Context, caller string, paused bool) error {
	allowed := s.system.IsAdmin(caller) || (paused && s.system.IsGuardian(caller))
	if err := lever.Require(allowed, core.ErrUnauthorized); err != nil {
		return err
	}

	flag := int64(0)
	if paused {
		flag = 1
	}

	return s.propertyStore.Save(ctx, pausedKey, flag)
}

func (s *rewardService) paused(ctx context.Context) (bool, error) {
	v, err := s.propertyStore.Get(ctx, pausedKey)
	if err != nil {
		return false, err
	}

	return v.Int64() != 0, nil
}

func validateSpeeds(supplySpeed, borrowSpeed decimal.Decimal) error {
	valid := !supplySpeed.IsNegative() && supplySpeed.LessThan(lever.EmissionCap) &&
		!borrowSpeed.IsNegative() && borrowSpeed.LessThan(lever.EmissionCap)
	return lever.Require(valid, core.ErrInvalidEmissionRate)
}
