package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanchex-22/flow-console/modules/core/domain/aggregates/user"
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/session"
	"github.com/Sanchex-22/flow-console/modules/core/presentation/controllers"
	"github.com/Sanchex-22/flow-console/modules/core/services"
	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/constants"
	"github.com/Sanchex-22/flow-console/pkg/eventbus"
	"github.com/Sanchex-22/flow-console/pkg/middleware"
	"github.com/Sanchex-22/flow-console/pkg/scope"
)

type memCompanyRepo struct {
	mu        sync.Mutex
	companies []*company.Company
}

func (r *memCompanyRepo) GetAll(ctx context.Context) ([]*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*company.Company(nil), r.companies...), nil
}

func (r *memCompanyRepo) GetByID(ctx context.Context, id string) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("company not found")
}

func (r *memCompanyRepo) GetByCode(ctx context.Context, code string) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.Code() == company.NormalizeCode(code) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("company not found")
}

func (r *memCompanyRepo) Create(ctx context.Context, c *company.Company) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies = append(r.companies, c)
	return c, nil
}

func (r *memCompanyRepo) Update(ctx context.Context, c *company.Company) (*company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.companies {
		if existing.ID() == c.ID() {
			r.companies[i] = c
		}
	}
	return c, nil
}

func (r *memCompanyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.companies {
		if c.ID() == id {
			r.companies = append(r.companies[:i], r.companies[i+1:]...)
			return nil
		}
	}
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users []*user.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID() == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (r *memUserRepo) GetByCompanyID(ctx context.Context, companyID string) ([]*user.User, error) {
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

func (r *memUserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
	return u, nil
}

func (r *memUserRepo) Update(ctx context.Context, u *user.User) (*user.User, error) {
	return u, nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID() == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func (r *memSessionRepo) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return s, nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Token] = s
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type fixture struct {
	app       application.Application
	router    *mux.Router
	manager   *scope.Manager
	companies *memCompanyRepo
	users     *memUserRepo
	acme      *company.Company
	globex    *company.Company
}

func setup(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	companies := &memCompanyRepo{}
	users := &memUserRepo{}
	sessions := &memSessionRepo{sessions: map[string]*session.Session{}}

	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	companyService := services.NewCompanyService(companies, app.EventPublisher())
	app.RegisterServices(
		companyService,
		services.NewUserService(users),
		services.NewAuthService(users, sessions),
	)

	manager := scope.NewManager(scope.FileStoreFactory(t.TempDir()), logger)

	app.RegisterControllers(
		controllers.NewCompanyController(app, nil),
		controllers.NewLoginController(app, manager),
		controllers.NewSelectionController(app),
		controllers.NewDashboardController(app),
		controllers.NewUsersController(app),
	)

	r := mux.NewRouter()
	r.Use(
		middleware.WithLogger(logger),
		middleware.Provide(constants.AppKey, app),
		middleware.RequestParams(),
		middleware.Authorize(app, manager),
	)
	for _, c := range app.Controllers() {
		c.Register(r)
	}

	f := &fixture{
		app:       app,
		router:    r,
		manager:   manager,
		companies: companies,
		users:     users,
	}

	ctx := context.Background()
	f.acme = company.New("Acme Corp", "acme")
	f.globex = company.New("Globex", "globex")
	_, err := companies.Create(ctx, f.acme)
	require.NoError(t, err)
	_, err = companies.Create(ctx, f.globex)
	require.NoError(t, err)

	admin := user.New("admin@acme.test", []string{user.RoleAdmin})
	require.NoError(t, admin.SetPassword("s3cret"))
	_, err = users.Create(ctx, admin)
	require.NoError(t, err)

	snaps, err := companyService.Snapshots(ctx)
	require.NoError(t, err)
	manager.OnListChanged(snaps)

	return f
}

func (f *fixture) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no sid cookie in login response")
	return nil
}

func (f *fixture) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCompanyList(t *testing.T) {
	f := setup(t)

	rec := f.get("/api/companies/all", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snaps []*company.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snaps))
	require.Len(t, snaps, 2)
	assert.Empty(t, rec.Header().Get(controllers.DegradedHeader))
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	f := setup(t)

	rec := f.get("/acme/dashboard/all", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAutoDefaultSelection(t *testing.T) {
	f := setup(t)
	cookie := f.login(t, "admin@acme.test", "s3cret")

	// First company in the list becomes the selection without any user
	// action, so the landing page renders straight away.
	rec := f.get("/acme/dashboard/all", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Company *company.Snapshot `json:"company"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "acme", payload.Company.Code)
}

func TestURLMismatchFollowsSelection(t *testing.T) {
	f := setup(t)
	cookie := f.login(t, "admin@acme.test", "s3cret")

	// Selection is acme (auto-default); the globex URL drifted from the
	// session context, so the response snaps back to the selection.
	rec := f.get("/globex/dashboard/all", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/acme/dashboard/all", rec.Header().Get("Location"))
}

func TestSelectCompanyRewritesNextPath(t *testing.T) {
	f := setup(t)
	cookie := f.login(t, "admin@acme.test", "s3cret")

	rec := f.postForm("/companies/select", url.Values{
		"code": {"globex"},
		"next": {"/acme/users"},
	}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/globex/users", rec.Header().Get("Location"))

	// The session context now agrees with the rewritten URL.
	rec = f.get("/globex/dashboard/all", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSelectUnknownCompanyClearsSelection(t *testing.T) {
	f := setup(t)
	cookie := f.login(t, "admin@acme.test", "s3cret")

	rec := f.postForm("/companies/select", url.Values{
		"code": {"vanished"},
		"next": {"/acme/users"},
	}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, scope.SelectorPath, rec.Header().Get("Location"))

	// With the selection gone, scoped pages bounce to the selector.
	rec = f.get("/acme/dashboard/all", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, scope.SelectorPath, rec.Header().Get("Location"))
}

func TestSelectorSkippedWhenSelectionValid(t *testing.T) {
	f := setup(t)
	cookie := f.login(t, "admin@acme.test", "s3cret")

	// Warm the session so the auto-default selection exists.
	f.get("/acme/dashboard/all", cookie)

	rec := f.get("/companies/select", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/acme/dashboard/all", rec.Header().Get("Location"))
}

func TestUsersScopedToSelectedCompany(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	acmeUser := user.New("one@acme.test", []string{user.RoleUser}, user.WithCompanyID(f.acme.ID()))
	globexUser := user.New("two@globex.test", []string{user.RoleUser}, user.WithCompanyID(f.globex.ID()))
	_, err := f.users.Create(ctx, acmeUser)
	require.NoError(t, err)
	_, err = f.users.Create(ctx, globexUser)
	require.NoError(t, err)

	cookie := f.login(t, "admin@acme.test", "s3cret")

	rec := f.get("/acme/users", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "one@acme.test", out[0].Email)
}

func TestUsersListHonorsLimitAndOffset(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, email := range []string{"one@acme.test", "two@acme.test", "three@acme.test"} {
		u := user.New(email, []string{user.RoleUser}, user.WithCompanyID(f.acme.ID()))
		_, err := f.users.Create(ctx, u)
		require.NoError(t, err)
	}

	cookie := f.login(t, "admin@acme.test", "s3cret")

	rec := f.get("/acme/users?limit=1&offset=1", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "two@acme.test", out[0].Email)

	// Offset past the end is an empty page, not an error.
	rec = f.get("/acme/users?offset=10", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out)
}

func TestLogoutDropsScopeButKeepsPersistedSelection(t *testing.T) {
	f := setup(t)
	cookie := f.login(t, "admin@acme.test", "s3cret")

	// Pick globex explicitly so there is something persisted beyond the
	// auto-default.
	rec := f.postForm("/companies/select", url.Values{
		"code": {"globex"},
		"next": {""},
	}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	require.Equal(t, http.StatusNoContent, out.Code)

	// The old cookie no longer authenticates.
	rec = f.get("/globex/dashboard/all", cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestCompanyCreateReturnsTimestampedEnvelope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	root := user.New("root@acme.test", []string{user.RoleSuperAdmin})
	require.NoError(t, root.SetPassword("s3cret"))
	_, err := f.users.Create(ctx, root)
	require.NoError(t, err)

	cookie := f.login(t, "root@acme.test", "s3cret")

	body, err := json.Marshal(map[string]string{"name": "Initech", "code": "initech"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/companies", bytes.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out struct {
		Code      string `json:"code"`
		Name      string `json:"name"`
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "initech", out.Code)
	assert.Equal(t, "Initech", out.Name)
	_, err = time.Parse(time.RFC3339, out.CreatedAt)
	assert.NoError(t, err)
	_, err = time.Parse(time.RFC3339, out.UpdatedAt)
	assert.NoError(t, err)
}

func TestCompanyAdminAPIRequiresRole(t *testing.T) {
	f := setup(t)
	cookie := f.login(t, "admin@acme.test", "s3cret")

	body, err := json.Marshal(map[string]string{"name": "Initech", "code": "initech"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/companies", bytes.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	// admin role is not superAdmin.
	require.Equal(t, http.StatusForbidden, rec.Code)
}
