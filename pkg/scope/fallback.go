package scope

import (
	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
)

// FallbackID is the reserved id of the placeholder company shown while the
// real list is loading or after a persistent load failure. Guards never
// accept it as a selection.
const FallbackID = "na"

// Fallback returns the sentinel placeholder company.
func Fallback() *company.Snapshot {
	return &company.Snapshot{
		ID:       FallbackID,
		Code:     "na",
		Name:     "Not applicable",
		IsActive: false,
	}
}

// IsValidSelection reports whether s counts as a real selection for
// routing: non-nil and not the fallback sentinel.
func IsValidSelection(s *company.Snapshot) bool {
	return s != nil && s.ID != FallbackID
}
