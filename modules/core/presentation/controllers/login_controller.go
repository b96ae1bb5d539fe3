package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Sanchex-22/flow-console/modules/core/presentation/controllers/dtos"
	"github.com/Sanchex-22/flow-console/modules/core/services"
	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/configuration"
	"github.com/Sanchex-22/flow-console/pkg/constants"
	"github.com/Sanchex-22/flow-console/pkg/httpapi"
	"github.com/Sanchex-22/flow-console/pkg/middleware"
	"github.com/Sanchex-22/flow-console/pkg/scope"
)

type LoginController struct {
	app      application.Application
	manager  *scope.Manager
	basePath string
}

func NewLoginController(app application.Application, manager *scope.Manager) application.Controller {
	return &LoginController{
		app:      app,
		manager:  manager,
		basePath: "/api/auth",
	}
}

func (c *LoginController) Key() string {
	return c.basePath
}

func (c *LoginController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Handle(
		"/login",
		middleware.IPRateLimitPeriod(10, time.Minute)(http.HandlerFunc(c.login)),
	).Methods(http.MethodPost)
	router.HandleFunc("/logout", c.logout).Methods(http.MethodPost)
}

func (c *LoginController) authService() *services.AuthService {
	return c.app.Service(services.AuthService{}).(*services.AuthService)
}

func (c *LoginController) login(w http.ResponseWriter, r *http.Request) {
	var dto dtos.LoginRequest
	if err := httpapi.ReadJSON(w, r, &dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	u, err := c.authService().CookieAuthenticate(r.Context(), dto.Email, dto.Password)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"id":    u.ID(),
		"email": u.Email(),
		"roles": u.Roles(),
	})
}

func (c *LoginController) logout(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	cookie, err := r.Cookie(conf.SidCookieKey)
	if err == nil && cookie.Value != "" {
		if err := c.authService().Logout(r.Context(), cookie.Value); err != nil {
			composables.UseLogger(r.Context()).WithError(err).Warn("logout failed")
		}
		// The in-memory scope state goes with the session; the persisted
		// selection survives for the next login.
		c.manager.Drop(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   conf.SidCookieKey,
		Value:  "",
		MaxAge: -1,
		Path:   "/",
	})
	w.WriteHeader(http.StatusNoContent)
}
