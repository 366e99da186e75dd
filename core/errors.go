package core

// ErrorCode business rejection code.
//
// Rejection codes are expected denials and are returned as values, never
// raised. Anything that is not an ErrorCode is treated as a fault and aborts
// the whole action.
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrUnauthorized caller is not admin or guardian
	ErrUnauthorized ErrorCode = 100002
	// ErrReentered nested entry into an engine entry point
	ErrReentered ErrorCode = 100003
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100004
	// ErrInvalidArgument invalid argument
	ErrInvalidArgument ErrorCode = 100005

	// ErrMarketNotListed market not listed
	ErrMarketNotListed ErrorCode = 100100
	// ErrMarketAlreadyListed market already listed
	ErrMarketAlreadyListed ErrorCode = 100101
	// ErrMarketPaused market action paused by guardian
	ErrMarketPaused ErrorCode = 100102
	// ErrSupplyNotFound no supply position
	ErrSupplyNotFound ErrorCode = 100103
	// ErrBorrowNotFound no borrow position
	ErrBorrowNotFound ErrorCode = 100104
	// ErrSupplyCapReached market supply cap reached
	ErrSupplyCapReached ErrorCode = 100105
	// ErrBorrowCapReached market borrow cap reached
	ErrBorrowCapReached ErrorCode = 100106
	// ErrInvalidCollateralFactor collateral factor out of [0, 0.9]
	ErrInvalidCollateralFactor ErrorCode = 100107
	// ErrMembershipRequired account has not entered the market
	ErrMembershipRequired ErrorCode = 100108
	// ErrExitMarketDenied outstanding borrow or would cause shortfall
	ErrExitMarketDenied ErrorCode = 100109

	// ErrInsufficientLiquidity account liquidity too low
	ErrInsufficientLiquidity ErrorCode = 100200
	// ErrInsufficientCash market cash too low
	ErrInsufficientCash ErrorCode = 100201
	// ErrPriceUnavailable oracle price missing or zero
	ErrPriceUnavailable ErrorCode = 100202
	// ErrRedeemNotAllowed redeem not allowed
	ErrRedeemNotAllowed ErrorCode = 100203
	// ErrBorrowNotAllowed borrow not allowed
	ErrBorrowNotAllowed ErrorCode = 100204
	// ErrSeizeNotAllowed seize not allowed
	ErrSeizeNotAllowed ErrorCode = 100205
	// ErrNotLiquidatable account has no shortfall
	ErrNotLiquidatable ErrorCode = 100206
	// ErrTooMuchRepay repay amount exceeds the close factor cap
	ErrTooMuchRepay ErrorCode = 100207
	// ErrLiquidatorNotAllowed liquidation gate is on and caller not whitelisted
	ErrLiquidatorNotAllowed ErrorCode = 100208
	// ErrAccountBlocked account is on the deny list
	ErrAccountBlocked ErrorCode = 100209

	// ErrRewardConfigExists config for (market, token) already exists
	ErrRewardConfigExists ErrorCode = 100300
	// ErrRewardConfigNotFound no config for (market, token)
	ErrRewardConfigNotFound ErrorCode = 100301
	// ErrInvalidEmissionRate emission rate over the cap
	ErrInvalidEmissionRate ErrorCode = 100302
	// ErrRewardPaused reward disbursement paused
	ErrRewardPaused ErrorCode = 100303
)

var errorNames = map[ErrorCode]string{
	ErrUnknown:                 "unknown",
	ErrOperationForbidden:      "operation_forbidden",
	ErrUnauthorized:            "unauthorized",
	ErrReentered:               "reentered",
	ErrInvalidAmount:           "invalid_amount",
	ErrInvalidArgument:         "invalid_argument",
	ErrMarketNotListed:         "market_not_listed",
	ErrMarketAlreadyListed:     "market_already_listed",
	ErrMarketPaused:            "market_paused",
	ErrSupplyNotFound:          "supply_not_found",
	ErrBorrowNotFound:          "borrow_not_found",
	ErrSupplyCapReached:        "supply_cap_reached",
	ErrBorrowCapReached:        "borrow_cap_reached",
	ErrInvalidCollateralFactor: "invalid_collateral_factor",
	ErrMembershipRequired:      "membership_required",
	ErrExitMarketDenied:        "exit_market_denied",
	ErrInsufficientLiquidity:   "insufficient_liquidity",
	ErrInsufficientCash:        "insufficient_cash",
	ErrPriceUnavailable:        "price_unavailable",
	ErrRedeemNotAllowed:        "redeem_not_allowed",
	ErrBorrowNotAllowed:        "borrow_not_allowed",
	ErrSeizeNotAllowed:         "seize_not_allowed",
	ErrNotLiquidatable:         "not_liquidatable",
	ErrTooMuchRepay:            "too_much_repay",
	ErrLiquidatorNotAllowed:    "liquidator_not_allowed",
	ErrAccountBlocked:          "account_blocked",
	ErrRewardConfigExists:      "reward_config_exists",
	ErrRewardConfigNotFound:    "reward_config_not_found",
	ErrInvalidEmissionRate:     "invalid_emission_rate",
	ErrRewardPaused:            "reward_paused",
}

func (e ErrorCode) String() string {
	if name, ok := errorNames[e]; ok {
		return name
	}

	return "unknown"
}

func (e ErrorCode) Error() string {
	return e.String()
}

// IsErrorCode reports whether err is a business rejection rather than a fault.
func IsErrorCode(err error) (ErrorCode, bool) {
	code, ok := err.(ErrorCode)
	return code, ok
}
