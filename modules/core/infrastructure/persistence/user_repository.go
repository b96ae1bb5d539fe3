package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/Sanchex-22/flow-console/modules/core/domain/aggregates/user"
	"github.com/Sanchex-22/flow-console/modules/core/infrastructure/persistence/models"
	"github.com/Sanchex-22/flow-console/pkg/composables"
)

var (
	ErrUserNotFound = fmt.Errorf("user not found")
)

const (
	userFindQuery = `SELECT id, email, password_hash, roles, company_id, created_at, updated_at FROM users`
)

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	users, err := r.queryUsers(ctx, userFindQuery+" WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	users, err := r.queryUsers(ctx, userFindQuery+" WHERE lower(email) = lower($1)", email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (r *UserRepository) GetByCompanyID(ctx context.Context, companyID string) ([]*user.User, error) {
	return r.queryUsers(ctx, userFindQuery+" WHERE company_id = $1 ORDER BY email", companyID)
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, roles, company_id, created_at, updated_at)
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
		u.ID(),
		u.Email(),
		u.PasswordHash(),
		u.Roles(),
		u.CompanyID(),
		u.CreatedAt(),
		u.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "failed to insert user")
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, roles = $3, company_id = $4, updated_at = $5
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
		u.Email(),
		u.PasswordHash(),
		u.Roles(),
		u.CompanyID(),
		u.UpdatedAt(),
		u.ID(),
	).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "failed to update user")
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.Roles,
			&u.CompanyID,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		users = append(users, toDomainUser(&u))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return users, nil
}
