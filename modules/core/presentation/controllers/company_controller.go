package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Sanchex-22/flow-console/modules/core/domain/aggregates/user"
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
	"github.com/Sanchex-22/flow-console/modules/core/presentation/controllers/dtos"
	"github.com/Sanchex-22/flow-console/modules/core/services"
	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/constants"
	"github.com/Sanchex-22/flow-console/pkg/httpapi"
	"github.com/Sanchex-22/flow-console/pkg/middleware"
	"github.com/Sanchex-22/flow-console/pkg/scope"
)

// DegradedHeader marks company-list responses served while the background
// loader is running on the fallback list.
const DegradedHeader = "X-Scope-Degraded"

type CompanyController struct {
	app      application.Application
	loader   *scope.Loader
	basePath string
}

func NewCompanyController(app application.Application, loader *scope.Loader) application.Controller {
	return &CompanyController{
		app:      app,
		loader:   loader,
		basePath: "/api/companies",
	}
}

func (c *CompanyController) Key() string {
	return c.basePath
}

func (c *CompanyController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()

	// The list endpoint stays open to anonymous callers: the selector page
	// and peer instances poll it before any session exists.
	router.HandleFunc("/all", c.list).Methods(http.MethodGet)

	admin := router.NewRoute().Subrouter()
	admin.Use(
		middleware.RequireAuthenticatedAPI(),
		middleware.RequireRolesAPI(user.RoleSuperAdmin),
	)
	admin.HandleFunc("", c.create).Methods(http.MethodPost)
	admin.HandleFunc("/{id}", c.update).Methods(http.MethodPut)
	admin.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *CompanyController) companyService() *services.CompanyService {
	return c.app.Service(services.CompanyService{}).(*services.CompanyService)
}

func companyResponse(entity *company.Company) dtos.CompanyResponse {
	return dtos.CompanyResponse{
		Snapshot:  entity.Snapshot(),
		CreatedAt: entity.CreatedAt().Format(time.RFC3339),
		UpdatedAt: entity.UpdatedAt().Format(time.RFC3339),
	}
}

func (c *CompanyController) list(w http.ResponseWriter, r *http.Request) {
	snaps, err := c.companyService().Snapshots(r.Context())
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list companies")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "COMPANY_LIST_ERROR", "failed to list companies", nil)
		return
	}
	if c.loader != nil && c.loader.Degraded() {
		w.Header().Set(DegradedHeader, "1")
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, snaps)
}

func (c *CompanyController) create(w http.ResponseWriter, r *http.Request) {
	var dto dtos.CompanyCreateRequest
	if err := httpapi.ReadJSON(w, r, &dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	created, err := c.companyService().Create(r.Context(), company.New(dto.Name, dto.Code))
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to create company")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "COMPANY_CREATE_ERROR", "failed to create company", nil)
		return
	}
	c.refreshList()
	_ = httpapi.WriteJSON(w, http.StatusCreated, companyResponse(created))
}

func (c *CompanyController) update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var dto dtos.CompanyUpdateRequest
	if err := httpapi.ReadJSON(w, r, &dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	existing, err := c.companyService().GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusNotFound, "COMPANY_NOT_FOUND", "company not found", nil)
		return
	}
	existing.SetName(dto.Name)
	existing.SetCode(dto.Code)
	existing.SetIsActive(*dto.IsActive)

	updated, err := c.companyService().Update(r.Context(), existing)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to update company")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "COMPANY_UPDATE_ERROR", "failed to update company", nil)
		return
	}
	c.refreshList()
	_ = httpapi.WriteJSON(w, http.StatusOK, companyResponse(updated))
}

func (c *CompanyController) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := c.companyService().GetByID(r.Context(), id); err != nil {
		_ = httpapi.WriteError(w, http.StatusNotFound, "COMPANY_NOT_FOUND", "company not found", nil)
		return
	}
	if err := c.companyService().Delete(r.Context(), id); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to delete company")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "COMPANY_DELETE_ERROR", "failed to delete company", nil)
		return
	}
	c.refreshList()
	w.WriteHeader(http.StatusNoContent)
}

// refreshList nudges the loader so every session sees a mutation without
// waiting for the next poll.
func (c *CompanyController) refreshList() {
	if c.loader != nil {
		c.loader.Resume()
	}
}
