package models

import (
	"time"
)

type Company struct {
	ID          string
	Code        string
	Name        string
	IsActive    bool
	UserCount   int
	DeviceCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Roles        []string
	CompanyID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Session struct {
	Token     string
	UserID    string
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}
