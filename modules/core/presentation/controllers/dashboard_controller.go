package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/httpapi"
	"github.com/Sanchex-22/flow-console/pkg/middleware"
	"github.com/Sanchex-22/flow-console/pkg/scope"
)

// DashboardController is the landing page of a company's URL space.
type DashboardController struct {
	app application.Application
}

func NewDashboardController(app application.Application) application.Controller {
	return &DashboardController{app: app}
}

func (c *DashboardController) Key() string {
	return "/{code}/dashboard"
}

func (c *DashboardController) Register(r *mux.Router) {
	router := r.PathPrefix("/{code}/dashboard").Subrouter()
	router.Use(middleware.RequireArea())
	router.HandleFunc("/all", c.overview).Methods(http.MethodGet)
}

func (c *DashboardController) overview(w http.ResponseWriter, r *http.Request) {
	s := composables.UseScope(r.Context())
	selected := s.Selected()

	// The guard checked the selection, but a concurrent request can clear
	// it before this handler reads it. Re-validate the copy taken here.
	if !scope.IsValidSelection(selected) {
		http.Redirect(w, r, scope.SelectorPath, http.StatusFound)
		return
	}

	// The URL segment is user input: a mismatch means the browser URL and
	// the session context drifted apart, and the selection wins.
	if code := mux.Vars(r)["code"]; selected.Code != code {
		http.Redirect(w, r, scope.RewritePath(r.URL.Path, selected.Code), http.StatusFound)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"company":     selected,
		"userCount":   selected.UserCount,
		"deviceCount": selected.DeviceCount,
	})
}
