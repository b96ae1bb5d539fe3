package scope

import (
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
)

const (
	LoginPath    = "/login"
	SelectorPath = "/companies/select"
)

// LandingPath is the default landing page of a company, and the path the
// selector rewrite falls back to.
func LandingPath(code string) string {
	return "/" + code + "/dashboard/all"
}

type Decision int

const (
	Render Decision = iota
	RedirectLogin
	RedirectSelector
	RedirectLanding
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectSelector:
		return "redirect-selector"
	case RedirectLanding:
		return "redirect-landing"
	default:
		return "unknown"
	}
}

type GuardInput struct {
	LoggedIn     bool
	Selected     *company.Snapshot
	Roles        []string
	AllowedRoles []string
}

// DecideArea gates an authenticated, company-scoped page. Total: every
// input maps to exactly one decision.
//
// A role mismatch redirects to the company landing page with no error
// surface. Deliberate: it avoids confirming the route exists to
// unauthorized roles.
func DecideArea(in GuardInput) Decision {
	if !in.LoggedIn {
		return RedirectLogin
	}
	if !IsValidSelection(in.Selected) {
		return RedirectSelector
	}
	if !rolesIntersect(in.Roles, in.AllowedRoles) {
		return RedirectLanding
	}
	return Render
}

// DecideSelector gates the company-selection page itself: a valid existing
// selection skips re-selection and goes straight to its landing page.
func DecideSelector(in GuardInput) Decision {
	if !in.LoggedIn {
		return RedirectLogin
	}
	if IsValidSelection(in.Selected) {
		return RedirectLanding
	}
	return Render
}

// An empty allow-list leaves the route open to every authenticated role.
func rolesIntersect(roles, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range roles {
		for _, a := range allowed {
			if r == a {
				return true
			}
		}
	}
	return false
}
