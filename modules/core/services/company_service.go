package services

import (
	"context"

	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/eventbus"
)

type CompanyService struct {
	repo      company.Repository
	publisher eventbus.EventBus
}

func NewCompanyService(repo company.Repository, publisher eventbus.EventBus) *CompanyService {
	return &CompanyService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *CompanyService) GetAll(ctx context.Context) ([]*company.Company, error) {
	return s.repo.GetAll(ctx)
}

// Snapshots is the company list in the shape the scoping layer consumes:
// active companies only, as serializable projections.
func (s *CompanyService) Snapshots(ctx context.Context) ([]*company.Snapshot, error) {
	companies, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	snaps := make([]*company.Snapshot, 0, len(companies))
	for _, c := range companies {
		if !c.IsActive() {
			continue
		}
		snaps = append(snaps, c.Snapshot())
	}
	return snaps, nil
}

func (s *CompanyService) GetByID(ctx context.Context, id string) (*company.Company, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CompanyService) GetByCode(ctx context.Context, code string) (*company.Company, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *CompanyService) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*company.Company, error) {
		return s.repo.Create(txCtx, c)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(company.CreatedEvent{Result: created})
	return created, nil
}

func (s *CompanyService) Update(ctx context.Context, c *company.Company) (*company.Company, error) {
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*company.Company, error) {
		return s.repo.Update(txCtx, c)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(company.UpdatedEvent{Result: updated})
	return updated, nil
}

func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}
	s.publisher.Publish(company.DeletedEvent{ID: id})
	return nil
}
