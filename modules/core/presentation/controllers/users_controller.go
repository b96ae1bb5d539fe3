package controllers

import (
	"net/http"

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

// UsersController manages the users of the currently selected company.
// Every operation resolves the company from the session scope, never from
// the URL alone.
type UsersController struct {
	app application.Application
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{app: app}
}

func (c *UsersController) Key() string {
	return "/{code}/users"
}

func (c *UsersController) Register(r *mux.Router) {
	router := r.PathPrefix("/{code}/users").Subrouter()
	router.Use(middleware.RequireArea(user.RoleSuperAdmin, user.RoleAdmin, user.RoleModerator))
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *UsersController) userService() *services.UserService {
	return c.app.Service(services.UserService{}).(*services.UserService)
}

// scopedCompany resolves the selection backing this request. A request
// that slips through with the fallback or no selection gets a 409 rather
// than an accidental cross-company read.
func (c *UsersController) scopedCompany(w http.ResponseWriter, r *http.Request) (*company.Snapshot, bool) {
	s := composables.UseScope(r.Context())
	selected := s.Selected()
	if !scope.IsValidSelection(selected) {
		_ = httpapi.WriteError(w, http.StatusConflict, "COMPANY_NOT_SELECTED", "no company selected", nil)
		return nil, false
	}
	return selected, true
}

func pageOf(users []*user.User, offset, limit int) []*user.User {
	if offset >= len(users) {
		return nil
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users
}

func (c *UsersController) list(w http.ResponseWriter, r *http.Request) {
	selected, ok := c.scopedCompany(w, r)
	if !ok {
		return
	}
	query, err := composables.UseQuery(&dtos.UserListQuery{}, r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error(), nil)
		return
	}
	users, err := c.userService().GetByCompanyID(r.Context(), selected.ID)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to list users")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "USER_LIST_ERROR", "failed to list users", nil)
		return
	}
	users = pageOf(users, query.Offset, query.Limit)
	out := make([]dtos.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dtos.UserResponse{
			ID:        u.ID(),
			Email:     u.Email(),
			Roles:     u.Roles(),
			CompanyID: u.CompanyID(),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *UsersController) create(w http.ResponseWriter, r *http.Request) {
	selected, ok := c.scopedCompany(w, r)
	if !ok {
		return
	}

	var dto dtos.UserCreateRequest
	if err := httpapi.ReadJSON(w, r, &dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	u := user.New(dto.Email, dto.Roles, user.WithCompanyID(selected.ID))
	if err := u.SetPassword(dto.Password); err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "USER_CREATE_ERROR", "failed to hash password", nil)
		return
	}

	created, err := c.userService().Create(r.Context(), u)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to create user")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "USER_CREATE_ERROR", "failed to create user", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, dtos.UserResponse{
		ID:        created.ID(),
		Email:     created.Email(),
		Roles:     created.Roles(),
		CompanyID: created.CompanyID(),
	})
}

func (c *UsersController) delete(w http.ResponseWriter, r *http.Request) {
	selected, ok := c.scopedCompany(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	existing, err := c.userService().GetByID(r.Context(), id)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		return
	}
	// Scoped delete: the ID must belong to the selected company.
	if existing.CompanyID() != selected.ID {
		_ = httpapi.WriteError(w, http.StatusNotFound, "USER_NOT_FOUND", "user not found", nil)
		return
	}

	if err := c.userService().Delete(r.Context(), id); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to delete user")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "USER_DELETE_ERROR", "failed to delete user", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
