package risk

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lever/core"
	marketservice "lever/service/market"

	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberStore struct {
	members map[string]bool
}

func memberKey(userID, assetID string) string {
	return userID + "/" + assetID
}

func (s *fakeMemberStore) Create(ctx context.Context, tx *db.DB, member *core.Member) error {
	s.members[memberKey(member.UserID, member.AssetID)] = true
	return nil
}

func (s *fakeMemberStore) Delete(ctx context.Context, tx *db.DB, userID, assetID string) error {
	delete(s.members, memberKey(userID, assetID))
	return nil
}

func (s *fakeMemberStore) Exists(ctx context.Context, userID, assetID string) (bool, error) {
	return s.members[memberKey(userID, assetID)], nil
}

func (s *fakeMemberStore) FindByUser(ctx context.Context, userID string) ([]*core.Member, error) {
	return nil, nil
}

type fakeBorrowStore struct {
	borrows map[string]*core.Borrow
}

func (s *fakeBorrowStore) Create(ctx context.Context, tx *db.DB, borrow *core.Borrow) error {
	s.borrows[memberKey(borrow.UserID, borrow.AssetID)] = borrow
	return nil
}

func (s *fakeBorrowStore) Find(ctx context.Context, userID, assetID string) (*core.Borrow, error) {
	if b, ok := s.borrows[memberKey(userID, assetID)]; ok {
		return b, nil
	}

	return &core.Borrow{}, nil
}

func (s *fakeBorrowStore) FindByUser(ctx context.Context, userID string) ([]*core.Borrow, error) {
	return nil, nil
}

func (s *fakeBorrowStore) FindByAsset(ctx context.Context, assetID string) ([]*core.Borrow, error) {
	return nil, nil
}

func (s *fakeBorrowStore) CountOfBorrowers(ctx context.Context, assetID string) (int64, error) {
	return 0, nil
}

func (s *fakeBorrowStore) Update(ctx context.Context, tx *db.DB, borrow *core.Borrow) error {
	return nil
}

func (s *fakeBorrowStore) All(ctx context.Context) ([]*core.Borrow, error) {
	return nil, nil
}

func (s *fakeBorrowStore) Users(ctx context.Context) ([]string, error) {
	return nil, nil
}

type fakeSupplyStore struct {
	supplies map[string]*core.Supply
}

func (s *fakeSupplyStore) Create(ctx context.Context, tx *db.DB, supply *core.Supply) error {
	s.supplies[memberKey(supply.UserID, supply.AssetID)] = supply
	return nil
}

func (s *fakeSupplyStore) Find(ctx context.Context, userID, assetID string) (*core.Supply, error) {
	if sp, ok := s.supplies[memberKey(userID, assetID)]; ok {
		return sp, nil
	}

	return &core.Supply{}, nil
}

func (s *fakeSupplyStore) FindByUser(ctx context.Context, userID string) ([]*core.Supply, error) {
	return nil, nil
}

func (s *fakeSupplyStore) FindByAsset(ctx context.Context, assetID string) ([]*core.Supply, error) {
	return nil, nil
}

func (s *fakeSupplyStore) Update(ctx context.Context, tx *db.DB, supply *core.Supply) error {
	return nil
}

func (s *fakeSupplyStore) All(ctx context.Context) ([]*core.Supply, error) {
	return nil, nil
}

type fakeMarketStore struct {
	markets map[string]*core.Market
}

func (s *fakeMarketStore) Create(ctx context.Context, tx *db.DB, market *core.Market) error {
	s.markets[market.AssetID] = market
	return nil
}

func (s *fakeMarketStore) Find(ctx context.Context, assetID string) (*core.Market, error) {
	if m, ok := s.markets[assetID]; ok {
		return m, nil
	}

	return &core.Market{}, nil
}

func (s *fakeMarketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	return &core.Market{}, nil
}

func (s *fakeMarketStore) FindByShare(ctx context.Context, shareAssetID string) (*core.Market, error) {
	return &core.Market{}, nil
}

func (s *fakeMarketStore) All(ctx context.Context) ([]*core.Market, error) {
	return nil, nil
}

func (s *fakeMarketStore) AllAsMap(ctx context.Context) (map[string]*core.Market, error) {
	return s.markets, nil
}

func (s *fakeMarketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	return nil
}

type fakeAccountService struct {
	liquidity core.AccountLiquidity
}

func (s *fakeAccountService) CalculateAccountLiquidity(ctx context.Context, userID string) (*core.AccountLiquidity, error) {
	out := s.liquidity
	return &out, nil
}

func (s *fakeAccountService) HypotheticalAccountLiquidity(ctx context.Context, userID, modifiedAssetID string, redeemShares, borrowAmount decimal.Decimal) (*core.AccountLiquidity, error) {
	out := s.liquidity
	return &out, nil
}

func (s *fakeAccountService) SeizeShares(ctx context.Context, borrowMarket, collateralMarket *core.Market, repayAmount decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *fakeAccountService) LoadAccount(ctx context.Context, userID string) (*core.Account, error) {
	return &core.Account{UserID: userID}, nil
}

type fakeRewardService struct {
	suppliers []string
	borrowers []string
}

func (s *fakeRewardService) UpdateMarketIndices(ctx context.Context, tx *db.DB, market *core.Market, at time.Time) error {
	return nil
}

func (s *fakeRewardService) DistributeSupplier(ctx context.Context, tx *db.DB, market *core.Market, userID string, at time.Time) error {
	s.suppliers = append(s.suppliers, userID)
	return nil
}

func (s *fakeRewardService) DistributeBorrower(ctx context.Context, tx *db.DB, market *core.Market, userID string, at time.Time) error {
	s.borrowers = append(s.borrowers, userID)
	return nil
}

func (s *fakeRewardService) Claim(ctx context.Context, userID string) ([]*core.Transfer, error) {
	return nil, nil
}

func (s *fakeRewardService) Accrued(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	return nil, nil
}

func (s *fakeRewardService) CreateConfig(ctx context.Context, caller string, cfg *core.RewardConfig) error {
	return nil
}

func (s *fakeRewardService) SetSpeeds(ctx context.Context, caller, marketAssetID, rewardAssetID string, supplySpeed, borrowSpeed decimal.Decimal) error {
	return nil
}

func (s *fakeRewardService) SetEndAt(ctx context.Context, caller, marketAssetID, rewardAssetID string, endAt time.Time) error {
	return nil
}

func (s *fakeRewardService) SetPaused(ctx context.Context, caller string, paused bool) error {
	return nil
}

type fakeAllowListService struct {
	blocked     map[string]bool
	liquidators map[string]bool
}

func (s *fakeAllowListService) Add(ctx context.Context, caller, userID, scope string) error {
	return nil
}

func (s *fakeAllowListService) Remove(ctx context.Context, caller, userID, scope string) error {
	return nil
}

func (s *fakeAllowListService) InScope(ctx context.Context, userID, scope string) (bool, error) {
	switch scope {
	case core.AllowScopeBlocked:
		return s.blocked[userID], nil
	case core.AllowScopeLiquidator:
		return s.liquidators[userID], nil
	}

	return false, nil
}

type testEnv struct {
	service     core.IRiskService
	market      *core.Market
	memberStore *fakeMemberStore
	account     *fakeAccountService
	allowList   *fakeAllowListService
	borrows     *fakeBorrowStore
	reward      *fakeRewardService
}

const userID = "user-1"

func newTestDB(t *testing.T) *db.DB {
	database, err := db.Connect("sqlite3", filepath.Join(t.TempDir(), "lever.db"))
	require.Nil(t, err)
	require.Nil(t, db.Migrate(database))
	return database
}

func newTestEnv(t *testing.T) *testEnv {
	market := &core.Market{
		ID:           1,
		AssetID:      "btc-asset",
		Symbol:       "BTC",
		TotalCash:    decimal.NewFromInt(900),
		TotalBorrows: decimal.NewFromInt(100),
		CloseFactor:  decimal.NewFromFloat(0.5),
		BorrowIndex:  decimal.New(1, 0),
		AccruedAt:    time.Now(),
	}

	markets := &fakeMarketStore{markets: map[string]*core.Market{market.AssetID: market}}
	members := &fakeMemberStore{members: map[string]bool{}}
	supplies := &fakeSupplyStore{supplies: map[string]*core.Supply{}}
	borrows := &fakeBorrowStore{borrows: map[string]*core.Borrow{}}
	account := &fakeAccountService{}
	allowList := &fakeAllowListService{blocked: map[string]bool{}, liquidators: map[string]bool{}}
	reward := &fakeRewardService{}

	database := newTestDB(t)
	propertyStore := propertystore.New(database)

	system := &core.System{Admins: []string{"admin"}, Guardians: []string{"guardian"}}
	service := New(system, database, markets, members, supplies, borrows,
		marketservice.New(markets), account, reward, allowList, propertyStore)

	return &testEnv{
		service:     service,
		market:      market,
		memberStore: members,
		account:     account,
		allowList:   allowList,
		borrows:     borrows,
		reward:      reward,
	}
}

func TestMintAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(10)

	assert.Nil(t, env.service.MintAllowed(ctx, nil, env.market, userID, amount))

	assert.Equal(t, core.ErrInvalidAmount, env.service.MintAllowed(ctx, nil, env.market, userID, decimal.Zero))
	assert.Equal(t, core.ErrMarketNotListed, env.service.MintAllowed(ctx, nil, &core.Market{}, userID, amount))

	env.market.MintPaused = true
	assert.Equal(t, core.ErrMarketPaused, env.service.MintAllowed(ctx, nil, env.market, userID, amount))
	env.market.MintPaused = false

	env.allowList.blocked[userID] = true
	assert.Equal(t, core.ErrAccountBlocked, env.service.MintAllowed(ctx, nil, env.market, userID, amount))
}

func TestMintSupplyCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// held underlying is 1000, the cap leaves room for exactly 50
	env.market.SupplyCap = decimal.NewFromInt(1050)
	assert.Nil(t, env.service.MintAllowed(ctx, nil, env.market, userID, decimal.NewFromInt(50)))
	assert.Equal(t, core.ErrSupplyCapReached, env.service.MintAllowed(ctx, nil, env.market, userID, decimal.NewFromInt(51)))
}

func TestRedeemAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	shares := decimal.NewFromInt(10)

	env.account.liquidity.Shortfall = decimal.NewFromInt(1)

	// shares not pledged as collateral are free to leave
	assert.Nil(t, env.service.RedeemAllowed(ctx, nil, env.market, userID, shares))

	require.Nil(t, env.memberStore.Create(ctx, nil, &core.Member{UserID: userID, AssetID: env.market.AssetID}))
	assert.Equal(t, core.ErrInsufficientLiquidity, env.service.RedeemAllowed(ctx, nil, env.market, userID, shares))

	env.account.liquidity.Shortfall = decimal.Zero
	assert.Nil(t, env.service.RedeemAllowed(ctx, nil, env.market, userID, shares))

	env.market.RedeemPaused = true
	assert.Equal(t, core.ErrMarketPaused, env.service.RedeemAllowed(ctx, nil, env.market, userID, shares))
}

func TestBorrowAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(10)

	assert.Nil(t, env.service.BorrowAllowed(ctx, nil, env.market, userID, amount))

	// borrowing entered the market implicitly
	entered, err := env.memberStore.Exists(ctx, userID, env.market.AssetID)
	require.Nil(t, err)
	assert.True(t, entered)

	env.market.BorrowPaused = true
	assert.Equal(t, core.ErrMarketPaused, env.service.BorrowAllowed(ctx, nil, env.market, userID, amount))
	env.market.BorrowPaused = false

	env.account.liquidity.Shortfall = decimal.NewFromInt(1)
	assert.Equal(t, core.ErrInsufficientLiquidity, env.service.BorrowAllowed(ctx, nil, env.market, userID, amount))
	env.account.liquidity.Shortfall = decimal.Zero

	env.market.BorrowCap = decimal.NewFromInt(105)
	assert.Nil(t, env.service.BorrowAllowed(ctx, nil, env.market, userID, decimal.NewFromInt(5)))
	assert.Equal(t, core.ErrBorrowCapReached, env.service.BorrowAllowed(ctx, nil, env.market, userID, decimal.NewFromInt(6)))
}

func TestLiquidateAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	liquidator := "liquidator-1"

	repay := decimal.NewFromInt(50)
	assert.Equal(t, core.ErrBorrowNotFound, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, repay))

	// balance 100 at index 1, close factor 0.5 caps the repay at 50
	require.Nil(t, env.borrows.Create(ctx, nil, &core.Borrow{
		ID:            1,
		UserID:        userID,
		AssetID:       env.market.AssetID,
		Principal:     decimal.NewFromInt(100),
		InterestIndex: decimal.New(1, 0),
	}))

	assert.Equal(t, core.ErrNotLiquidatable, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, repay))

	env.account.liquidity.Shortfall = decimal.NewFromInt(1)
	assert.Nil(t, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, repay))
	assert.Equal(t, core.ErrTooMuchRepay, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, decimal.NewFromInt(51)))

	// the borrower's borrow-side rewards settle before the principal moves
	assert.Contains(t, env.reward.borrowers, userID)
}

func TestLiquidateAllowedGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	liquidator := "liquidator-1"

	require.Nil(t, env.borrows.Create(ctx, nil, &core.Borrow{
		ID:            1,
		UserID:        userID,
		AssetID:       env.market.AssetID,
		Principal:     decimal.NewFromInt(100),
		InterestIndex: decimal.New(1, 0),
	}))
	env.account.liquidity.Shortfall = decimal.NewFromInt(1)
	repay := decimal.NewFromInt(50)

	assert.Equal(t, core.ErrUnauthorized, env.service.SetLiquidationGate(ctx, userID, true))
	require.Nil(t, env.service.SetLiquidationGate(ctx, "guardian", true))

	assert.Equal(t, core.ErrLiquidatorNotAllowed, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, repay))

	env.allowList.liquidators[liquidator] = true
	assert.Nil(t, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, repay))

	// only an admin may open the gate back up
	assert.Equal(t, core.ErrUnauthorized, env.service.SetLiquidationGate(ctx, "guardian", false))
	require.Nil(t, env.service.SetLiquidationGate(ctx, "admin", false))

	delete(env.allowList.liquidators, liquidator)
	assert.Nil(t, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, repay))
}

func TestLiquidateAllowedDeprecatedMarket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	liquidator := "liquidator-1"

	require.Nil(t, env.borrows.Create(ctx, nil, &core.Borrow{
		ID:            1,
		UserID:        userID,
		AssetID:       env.market.AssetID,
		Principal:     decimal.NewFromInt(100),
		InterestIndex: decimal.New(1, 0),
	}))

	env.market.BorrowPaused = true
	env.market.ReserveFactor = decimal.New(1, 0)
	require.True(t, env.market.IsDeprecated())

	// no shortfall needed, the whole balance may be closed at once
	assert.Nil(t, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, decimal.NewFromInt(100)))
	assert.Equal(t, core.ErrTooMuchRepay, env.service.LiquidateAllowed(ctx, nil, env.market, env.market, liquidator, userID, decimal.NewFromInt(101)))
}

func TestSeizeAllowedBlockedLiquidator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	liquidator := "liquidator-1"

	assert.Nil(t, env.service.SeizeAllowed(ctx, nil, env.market, env.market, liquidator, userID))

	env.allowList.blocked[liquidator] = true
	assert.Equal(t, core.ErrAccountBlocked, env.service.SeizeAllowed(ctx, nil, env.market, env.market, liquidator, userID))
}

func TestExitMarketWithOpenBorrow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.Nil(t, env.memberStore.Create(ctx, nil, &core.Member{UserID: userID, AssetID: env.market.AssetID}))
	require.Nil(t, env.borrows.Create(ctx, nil, &core.Borrow{
		ID:            1,
		UserID:        userID,
		AssetID:       env.market.AssetID,
		Principal:     decimal.NewFromInt(5),
		InterestIndex: decimal.New(1, 0),
	}))

	assert.Equal(t, core.ErrExitMarketDenied, env.service.ExitMarket(ctx, userID, env.market.AssetID))
}

func TestSupportMarketValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	candidate := &core.Market{
		AssetID:              "new-asset",
		Symbol:               "NEW",
		InitExchangeRate:     decimal.New(1, 0),
		ReserveFactor:        decimal.NewFromFloat(0.1),
		LiquidationIncentive: decimal.NewFromFloat(0.05),
		CloseFactor:          decimal.NewFromFloat(0.5),
	}

	assert.Equal(t, core.ErrUnauthorized, env.service.SupportMarket(ctx, userID, candidate))
	assert.Equal(t, core.ErrMarketAlreadyListed, env.service.SupportMarket(ctx, "admin", &core.Market{AssetID: env.market.AssetID}))

	bad := *candidate
	bad.LiquidationIncentive = decimal.NewFromFloat(0.95)
	assert.Equal(t, core.ErrInvalidArgument, env.service.SupportMarket(ctx, "admin", &bad))

	bad = *candidate
	bad.CollateralFactor = decimal.New(1, 0)
	assert.Equal(t, core.ErrInvalidCollateralFactor, env.service.SupportMarket(ctx, "admin", &bad))
}

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.Equal(t, core.ErrUnauthorized, env.service.SetCollateralFactor(ctx, userID, env.market.AssetID, decimal.NewFromFloat(0.5)))
	assert.Equal(t, core.ErrUnauthorized, env.service.SetPaused(ctx, userID, env.market.AssetID, core.PauseActionMint, true))

	// guardians may pause but never unpause
	assert.Equal(t, core.ErrUnauthorized, env.service.SetPaused(ctx, "guardian", env.market.AssetID, core.PauseActionMint, false))
}

func TestGuardianCapsOnlyTighten(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	asset := env.market.AssetID

	// from unlimited any finite cap is a tightening
	require.Nil(t, env.service.SetSupplyCap(ctx, "guardian", asset, decimal.NewFromInt(100)))
	assert.True(t, env.market.SupplyCap.Equal(decimal.NewFromInt(100)))

	require.Nil(t, env.service.SetSupplyCap(ctx, "guardian", asset, decimal.NewFromInt(80)))

	assert.Equal(t, core.ErrUnauthorized, env.service.SetSupplyCap(ctx, "guardian", asset, decimal.NewFromInt(150)))

	// zero lifts the cap, guardians may never set it
	assert.Equal(t, core.ErrUnauthorized, env.service.SetSupplyCap(ctx, "guardian", asset, decimal.Zero))
	require.Nil(t, env.service.SetSupplyCap(ctx, "admin", asset, decimal.Zero))
	assert.True(t, env.market.SupplyCap.IsZero())

	require.Nil(t, env.service.SetBorrowCap(ctx, "guardian", asset, decimal.NewFromInt(50)))
	assert.Equal(t, core.ErrUnauthorized, env.service.SetBorrowCap(ctx, "guardian", asset, decimal.NewFromInt(60)))
	require.Nil(t, env.service.SetBorrowCap(ctx, "admin", asset, decimal.NewFromInt(60)))
}
