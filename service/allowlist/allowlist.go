package allowlist

import (
	"context"

	"lever/core"
	"lever/pkg/lever"
)

type allowListService struct {
	system *core.System
	store  core.IAllowListStore
}

// New new allow list service
func New(system *core.System, store core.IAllowListStore) core.IAllowListService {
	return &allowListService{
		system: system,
		store:  store,
	}
}

func (s *allowListService) Add(ctx context.Context, caller, userID, scope string) error {
	if err := lever.Require(s.system.IsAdmin(caller), core.ErrUnauthorized); err != nil {
		return err
	}

	return s.store.Save(ctx, &core.AllowListItem{
		UserID: userID,
		Scope:  scope,
	})
}

func (s *allowListService) Remove(ctx context.Context, caller, userID, scope string) error {
	if err := lever.Require(s.system.IsAdmin(caller), core.ErrUnauthorized); err != nil {
		return err
	}

	return s.store.Delete(ctx, userID, scope)
}

func (s *allowListService) InScope(ctx context.Context, userID, scope string) (bool, error) {
	return s.store.Exists(ctx, userID, scope)
}
