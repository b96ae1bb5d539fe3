package persistence

import (
	"github.com/Sanchex-22/flow-console/modules/core/domain/aggregates/user"
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/session"
	"github.com/Sanchex-22/flow-console/modules/core/infrastructure/persistence/models"
)

func toDomainCompany(c *models.Company) *company.Company {
	return company.New(
		c.Name,
		c.Code,
		company.WithID(c.ID),
		company.WithIsActive(c.IsActive),
		company.WithUserCount(c.UserCount),
		company.WithDeviceCount(c.DeviceCount),
		company.WithCreatedAt(c.CreatedAt),
		company.WithUpdatedAt(c.UpdatedAt),
	)
}

func toDomainUser(u *models.User) *user.User {
	return user.New(
		u.Email,
		u.Roles,
		user.WithID(u.ID),
		user.WithPasswordHash(u.PasswordHash),
		user.WithCompanyID(u.CompanyID),
		user.WithCreatedAt(u.CreatedAt),
		user.WithUpdatedAt(u.UpdatedAt),
	)
}

func toDomainSession(s *models.Session) *session.Session {
	return &session.Session{
		Token:     s.Token,
		UserID:    s.UserID,
		IP:        s.IP,
		UserAgent: s.UserAgent,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}
