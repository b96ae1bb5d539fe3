package company

import "context"

type Repository interface {
	GetAll(ctx context.Context) ([]*Company, error)
	GetByID(ctx context.Context, id string) (*Company, error)
	GetByCode(ctx context.Context, code string) (*Company, error)
	Create(ctx context.Context, c *Company) (*Company, error)
	Update(ctx context.Context, c *Company) (*Company, error)
	Delete(ctx context.Context, id string) error
}
