package core

import (
	"context"

	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
	"github.com/Sanchex-22/flow-console/modules/core/infrastructure/persistence"
	"github.com/Sanchex-22/flow-console/modules/core/presentation/controllers"
	"github.com/Sanchex-22/flow-console/modules/core/services"
	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/configuration"
	"github.com/Sanchex-22/flow-console/pkg/scope"
)

func NewModule() *Module {
	return &Module{}
}

type Module struct {
	manager *scope.Manager
	loader  *scope.Loader
}

func (m *Module) Name() string {
	return "core"
}

// Manager is the per-session company-scope registry. Valid after Register.
func (m *Module) Manager() *scope.Manager {
	return m.manager
}

// Loader is the background company-list loader. Valid after Register.
func (m *Module) Loader() *scope.Loader {
	return m.loader
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	companyRepo := persistence.NewCompanyRepository()
	userRepo := persistence.NewUserRepository()
	sessionRepo := persistence.NewSessionRepository()

	companyService := services.NewCompanyService(companyRepo, app.EventPublisher())

	app.RegisterServices(
		companyService,
		services.NewUserService(userRepo),
		services.NewAuthService(userRepo, sessionRepo),
	)

	m.manager = scope.NewManager(scope.FileStoreFactory(conf.Scope.StoreDir), app.Logger())

	// The loader runs outside any request, so the source injects the pool
	// the repositories reach the database through.
	serviceSource := scope.ServiceSource(companyService)
	source := func(ctx context.Context) ([]*company.Snapshot, error) {
		return serviceSource(composables.WithPool(ctx, app.DB()))
	}
	m.loader = scope.NewLoader(source, m.manager, app.Logger(), scope.LoaderOptions{
		Interval:   conf.Scope.RetryInterval,
		RetryLimit: conf.Scope.RetryLimit,
	})

	app.RegisterControllers(
		controllers.NewCompanyController(app, m.loader),
		controllers.NewLoginController(app, m.manager),
		controllers.NewSelectionController(app),
		controllers.NewDashboardController(app),
		controllers.NewUsersController(app),
	)
	return nil
}
