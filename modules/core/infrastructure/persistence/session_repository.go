package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/session"
	"github.com/Sanchex-22/flow-console/modules/core/infrastructure/persistence/models"
	"github.com/Sanchex-22/flow-console/pkg/composables"
)

var (
	ErrSessionNotFound = fmt.Errorf("session not found")
)

type SessionRepository struct{}

func NewSessionRepository() session.Repository {
	return &SessionRepository{}
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	query := `SELECT token, user_id, ip, user_agent, expires_at, created_at FROM sessions WHERE token = $1`
	var s models.Session
	if err := tx.QueryRow(ctx, query, token).Scan(
		&s.Token,
		&s.UserID,
		&s.IP,
		&s.UserAgent,
		&s.ExpiresAt,
		&s.CreatedAt,
	); err != nil {
		return nil, ErrSessionNotFound
	}
	return toDomainSession(&s), nil
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (token, user_id, ip, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(
		ctx,
		query,
		s.Token,
		s.UserID,
		s.IP,
		s.UserAgent,
		s.ExpiresAt,
		s.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert session")
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
