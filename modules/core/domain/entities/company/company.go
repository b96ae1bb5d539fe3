package company

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is the multi-tenancy unit: every managed resource (users,
// devices, tickets) is scoped to exactly one company at a time.
type Company struct {
	id          string
	code        string
	name        string
	isActive    bool
	userCount   int
	deviceCount int
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*Company)

func WithID(id string) Option {
	return func(c *Company) {
		c.id = id
	}
}

func WithIsActive(isActive bool) Option {
	return func(c *Company) {
		c.isActive = isActive
	}
}

func WithUserCount(n int) Option {
	return func(c *Company) {
		c.userCount = n
	}
}

func WithDeviceCount(n int) Option {
	return func(c *Company) {
		c.deviceCount = n
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(c *Company) {
		c.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(c *Company) {
		c.updatedAt = updatedAt
	}
}

// New creates a company. The code is the URL-safe unique slug used as the
// first path segment of every scoped route.
func New(name, code string, opts ...Option) *Company {
	c := &Company{
		id:        uuid.NewString(),
		name:      name,
		code:      NormalizeCode(code),
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeCode lowercases and trims a company code. Codes are compared
// case-insensitively everywhere.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func (c *Company) ID() string {
	return c.id
}

func (c *Company) Code() string {
	return c.code
}

func (c *Company) Name() string {
	return c.name
}

func (c *Company) IsActive() bool {
	return c.isActive
}

func (c *Company) UserCount() int {
	return c.userCount
}

func (c *Company) DeviceCount() int {
	return c.deviceCount
}

func (c *Company) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Company) UpdatedAt() time.Time {
	return c.updatedAt
}

func (c *Company) SetName(name string) {
	c.name = name
	c.updatedAt = time.Now()
}

func (c *Company) SetCode(code string) {
	c.code = NormalizeCode(code)
	c.updatedAt = time.Now()
}

func (c *Company) SetIsActive(isActive bool) {
	c.isActive = isActive
	c.updatedAt = time.Now()
}

// Snapshot is the serializable projection of a company consumed by the
// scoping layer and the JSON API.
type Snapshot struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	IsActive    bool   `json:"isActive"`
	UserCount   int    `json:"userCount"`
	DeviceCount int    `json:"deviceCount"`
}

func (c *Company) Snapshot() *Snapshot {
	return &Snapshot{
		ID:          c.id,
		Code:        c.code,
		Name:        c.name,
		IsActive:    c.isActive,
		UserCount:   c.userCount,
		DeviceCount: c.deviceCount,
	}
}
