package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
	"github.com/Sanchex-22/flow-console/modules/core/infrastructure/persistence/models"
	"github.com/Sanchex-22/flow-console/pkg/composables"
)

var (
	ErrCompanyNotFound = fmt.Errorf("company not found")
)

const (
	companyFindQuery = `
		SELECT c.id,
			c.code,
			c.name,
			c.is_active,
			(SELECT COUNT(*) FROM users u WHERE u.company_id = c.id) AS user_count,
			c.device_count,
			c.created_at,
			c.updated_at
		FROM companies c`
)

type CompanyRepository struct{}

func NewCompanyRepository() company.Repository {
	return &CompanyRepository{}
}

func (r *CompanyRepository) GetAll(ctx context.Context) ([]*company.Company, error) {
	return r.queryCompanies(ctx, companyFindQuery+" ORDER BY c.name")
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*company.Company, error) {
	companies, err := r.queryCompanies(ctx, companyFindQuery+" WHERE c.id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, ErrCompanyNotFound
	}
	return companies[0], nil
}

func (r *CompanyRepository) GetByCode(ctx context.Context, code string) (*company.Company, error) {
	companies, err := r.queryCompanies(ctx, companyFindQuery+" WHERE c.code = $1", company.NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, ErrCompanyNotFound
	}
	return companies[0], nil
}

func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	query := `
		INSERT INTO companies (id, code, name, is_active, device_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var id string
	if err := tx.QueryRow(
		ctx,
		query,
		c.ID(),
		c.Code(),
		c.Name(),
		c.IsActive(),
		c.DeviceCount(),
		c.CreatedAt(),
		c.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "failed to insert company")
	}

	return r.GetByID(ctx, id)
}

func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) (*company.Company, error) {
	query := `
		UPDATE companies
		SET code = $1, name = $2, is_active = $3, device_count = $4, updated_at = $5
		WHERE id = $6
		RETURNING id
	`
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var id string
	if err := tx.QueryRow(
		ctx,
		query,
		c.Code(),
		c.Name(),
		c.IsActive(),
		c.DeviceCount(),
		c.UpdatedAt(),
		c.ID(),
	).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "failed to update company")
	}

	return r.GetByID(ctx, id)
}

func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	return err
}

func (r *CompanyRepository) queryCompanies(ctx context.Context, query string, args ...interface{}) ([]*company.Company, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var companies []*company.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(
			&c.ID,
			&c.Code,
			&c.Name,
			&c.IsActive,
			&c.UserCount,
			&c.DeviceCount,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan company row")
		}
		companies = append(companies, toDomainCompany(&c))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return companies, nil
}
