package core

import (
	"context"
	"time"
)

// allow list scopes
const (
	// AllowScopeLiquidator whitelisted liquidator, consulted when the
	// liquidation gate is on
	AllowScopeLiquidator = "liquidator"
	// AllowScopeBlocked deny-listed account, refused by every policy hook
	AllowScopeBlocked = "blocked"
)

// AllowListItem one (user, scope) entry
type AllowListItem struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string    `sql:"size:36;unique_index:allow_list_idx" json:"user_id"`
	Scope     string    `sql:"size:20;unique_index:allow_list_idx" json:"scope"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IAllowListStore allow list store interface
type IAllowListStore interface {
	Save(ctx context.Context, item *AllowListItem) error
	Delete(ctx context.Context, userID, scope string) error
	Exists(ctx context.Context, userID, scope string) (bool, error)
	All(ctx context.Context, scope string) ([]*AllowListItem, error)
}

// IAllowListService allow list service interface
type IAllowListService interface {
	Add(ctx context.Context, caller, userID, scope string) error
	Remove(ctx context.Context, caller, userID, scope string) error
	InScope(ctx context.Context, userID, scope string) (bool, error)
}
