package dtos

import (
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CompanyCreateRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required,alphanum,min=2,max=32"`
}

type CompanyUpdateRequest struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required,alphanum,min=2,max=32"`
	IsActive *bool  `json:"isActive" validate:"required"`
}

// SelectCompany is the selector form: code picks the company, next carries
// the path the browser was on so the company segment can be swapped in
// place.
type SelectCompany struct {
	Code string `form:"code" validate:"required"`
	Next string `form:"next"`
}

type UserCreateRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Roles    []string `json:"roles" validate:"required,min=1,dive,oneof=superAdmin admin moderator user"`
}

// UserListQuery trims the user listing. Zero limit means no cap.
type UserListQuery struct {
	Limit  int `form:"limit" validate:"gte=0"`
	Offset int `form:"offset" validate:"gte=0"`
}

type UserResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	CompanyID string   `json:"companyId"`
}

type CompanyResponse struct {
	*company.Snapshot
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
