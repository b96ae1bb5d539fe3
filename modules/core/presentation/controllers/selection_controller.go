package controllers

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/Sanchex-22/flow-console/modules/core/presentation/controllers/dtos"
	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/constants"
	"github.com/Sanchex-22/flow-console/pkg/httpapi"
	"github.com/Sanchex-22/flow-console/pkg/middleware"
	"github.com/Sanchex-22/flow-console/pkg/scope"
)

// SelectionController serves the company selector: the page every
// logged-in user without a valid selection lands on.
type SelectionController struct {
	app      application.Application
	basePath string
}

func NewSelectionController(app application.Application) application.Controller {
	return &SelectionController{
		app:      app,
		basePath: scope.SelectorPath,
	}
}

func (c *SelectionController) Key() string {
	return c.basePath
}

func (c *SelectionController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireSelectorPage())
	router.HandleFunc("", c.page).Methods(http.MethodGet)
	router.HandleFunc("", c.selectCompany).Methods(http.MethodPost)
}

// page lists the companies the user can pick from. The guard upstream
// already bounced anyone holding a valid selection.
func (c *SelectionController) page(w http.ResponseWriter, r *http.Request) {
	s := composables.UseScope(r.Context())
	_ = httpapi.WriteJSON(w, http.StatusOK, s.List())
}

func (c *SelectionController) selectCompany(w http.ResponseWriter, r *http.Request) {
	dto, err := composables.UseForm(&dtos.SelectCompany{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_FORM", err.Error(), nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	s := composables.UseScope(r.Context())
	selected, err := s.ChangeSelection(dto.Code)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to persist selection")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "SELECTION_ERROR", "failed to persist selection", nil)
		return
	}
	if selected == nil {
		// Unknown code: the selection was cleared, pick again.
		http.Redirect(w, r, scope.SelectorPath, http.StatusFound)
		return
	}

	// Keep the user on the page they came from, swapped to the chosen
	// company's URL space.
	next := dto.Next
	if next == "" {
		if ref, err := url.Parse(r.Referer()); err == nil {
			next = ref.Path
		}
	}
	http.Redirect(w, r, scope.RewritePath(next, selected.Code), http.StatusFound)
}
