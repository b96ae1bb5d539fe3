package services_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanchex-22/flow-console/modules/core/domain/aggregates/user"
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/session"
	"github.com/Sanchex-22/flow-console/modules/core/services"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/eventbus"
)

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[string]*company.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: map[string]*company.Company{}}
}

func (r *fakeCompanyRepo) GetAll(ctx context.Context) ([]*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*company.Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCompanyRepo) GetByID(ctx context.Context, id string) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, fmt.Errorf("company not found")
	}
	return c, nil
}

func (r *fakeCompanyRepo) GetByCode(ctx context.Context, code string) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.Code() == company.NormalizeCode(code) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("company not found")
}

func (r *fakeCompanyRepo) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID()] = c
	return c, nil
}

func (r *fakeCompanyRepo) Update(ctx context.Context, c *company.Company) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID()] = c
	return c, nil
}

func (r *fakeCompanyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.companies, id)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*user.User{}}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (r *fakeUserRepo) GetByCompanyID(ctx context.Context, companyID string) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.User
	for _, u := range r.users {
		if u.CompanyID() == companyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return u, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return u, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*session.Session{}}
}

func (r *fakeSessionRepo) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return s, nil
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Token] = s
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, s := range r.sessions {
		if s.Expired() {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

func TestCompanyService_Snapshots(t *testing.T) {
	t.Parallel()
	repo := newFakeCompanyRepo()
	svc := services.NewCompanyService(repo, eventbus.NewEventPublisher(logrus.New()))
	ctx := context.Background()

	_, err := svc.Create(ctx, company.New("Acme Corp", "ACME"))
	require.NoError(t, err)
	inactive := company.New("Globex", "globex")
	inactive.SetIsActive(false)
	_, err = svc.Create(ctx, inactive)
	require.NoError(t, err)

	snaps, err := svc.Snapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "acme", snaps[0].Code, "codes are normalized to lowercase")
	assert.Equal(t, "Acme Corp", snaps[0].Name)
}

func TestCompanyService_PublishesEvents(t *testing.T) {
	t.Parallel()
	repo := newFakeCompanyRepo()
	bus := eventbus.NewEventPublisher(logrus.New())
	svc := services.NewCompanyService(repo, bus)
	ctx := context.Background()

	var mu sync.Mutex
	var created []*company.Company
	bus.Subscribe(func(ev company.CreatedEvent) {
		mu.Lock()
		defer mu.Unlock()
		created = append(created, ev.Result)
	})

	c, err := svc.Create(ctx, company.New("Acme", "acme"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(created) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, c.ID(), created[0].ID())
	mu.Unlock()
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := services.NewAuthService(users, sessions)
	ctx := context.Background()

	u := user.New("admin@acme.test", []string{user.RoleAdmin})
	require.NoError(t, u.SetPassword("s3cret"))
	_, err := users.Create(ctx, u)
	require.NoError(t, err)

	t.Run("ValidCredentials", func(t *testing.T) {
		got, sess, err := svc.Authenticate(ctx, "admin@acme.test", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, u.ID(), got.ID())
		assert.NotEmpty(t, sess.Token)
		assert.True(t, sess.ExpiresAt.After(time.Now()))
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "admin@acme.test", "nope")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, _, err := svc.Authenticate(ctx, "ghost@acme.test", "s3cret")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	})
}

func TestAuthService_CookieAuthenticate(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := services.NewAuthService(users, sessions)
	ctx := context.Background()

	u := user.New("admin@acme.test", []string{user.RoleAdmin})
	require.NoError(t, u.SetPassword("s3cret"))
	_, err := users.Create(ctx, u)
	require.NoError(t, err)

	t.Run("SetsSessionCookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		reqCtx := composables.WithParams(ctx, &composables.Params{Writer: rec})

		got, err := svc.CookieAuthenticate(reqCtx, "admin@acme.test", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, u.ID(), got.ID())

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sid", cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("NoWriterInContext", func(t *testing.T) {
		_, err := svc.CookieAuthenticate(ctx, "admin@acme.test", "s3cret")
		require.Error(t, err)
	})
}

func TestAuthService_Authorize(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := services.NewAuthService(users, sessions)
	ctx := context.Background()

	u := user.New("admin@acme.test", []string{user.RoleAdmin})
	require.NoError(t, u.SetPassword("s3cret"))
	_, err := users.Create(ctx, u)
	require.NoError(t, err)

	_, sess, err := svc.Authenticate(ctx, "admin@acme.test", "s3cret")
	require.NoError(t, err)

	t.Run("ValidToken", func(t *testing.T) {
		got, gotSess, err := svc.Authorize(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, u.ID(), got.ID())
		assert.Equal(t, sess.Token, gotSess.Token)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		_, _, err := svc.Authorize(ctx, "bogus")
		require.Error(t, err)
	})

	t.Run("ExpiredSessionIsDeleted", func(t *testing.T) {
		expired := &session.Session{
			Token:     "expired-token",
			UserID:    u.ID(),
			ExpiresAt: time.Now().Add(-time.Hour),
			CreatedAt: time.Now().Add(-2 * time.Hour),
		}
		require.NoError(t, sessions.Create(ctx, expired))

		_, _, err := svc.Authorize(ctx, expired.Token)
		require.ErrorIs(t, err, services.ErrSessionExpired)

		_, err = sessions.GetByToken(ctx, expired.Token)
		require.Error(t, err, "expired session should be removed")
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	svc := services.NewAuthService(users, sessions)
	ctx := context.Background()

	u := user.New("admin@acme.test", []string{user.RoleAdmin})
	require.NoError(t, u.SetPassword("s3cret"))
	_, err := users.Create(ctx, u)
	require.NoError(t, err)

	_, sess, err := svc.Authenticate(ctx, "admin@acme.test", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, _, err = svc.Authorize(ctx, sess.Token)
	require.Error(t, err)
}
