package services

import (
	"context"

	"github.com/Sanchex-22/flow-console/modules/core/domain/aggregates/user"
	"github.com/Sanchex-22/flow-console/pkg/composables"
)

type UserService struct {
	repo user.Repository
}

func NewUserService(repo user.Repository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetByCompanyID(ctx context.Context, companyID string) ([]*user.User, error) {
	return s.repo.GetByCompanyID(ctx, companyID)
}

func (s *UserService) Create(ctx context.Context, u *user.User) (*user.User, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*user.User, error) {
		return s.repo.Create(txCtx, u)
	})
}

func (s *UserService) Update(ctx context.Context, u *user.User) (*user.User, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*user.User, error) {
		return s.repo.Update(txCtx, u)
	})
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}
