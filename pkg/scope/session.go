package scope

import (
	"sync"

	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
)

// Session holds the company selection state for one authenticated session:
// the selected company and the list of companies available to pick from.
// Every transition of the selection writes through to the injected
// SelectionStore inside the same locked step, so memory and storage never
// disagree after a completed update.
type Session struct {
	mu       sync.RWMutex
	store    SelectionStore
	selected *company.Snapshot
	list     []*company.Snapshot
}

// NewSession seeds the selection from the store (nil on absence or
// corruption) and the list from initial.
func NewSession(store SelectionStore, initial []*company.Snapshot) *Session {
	return &Session{
		store:    store,
		selected: store.Load(),
		list:     initial,
	}
}

func (s *Session) Selected() *company.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *Session) List() []*company.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*company.Snapshot, len(s.list))
	copy(out, s.list)
	return out
}

// OnListChanged adopts the delivered list unconditionally, so renames and
// counter updates reach live sessions. When no selection exists and the
// new list is non-empty, the first entry becomes the selection
// (auto-default) and is persisted. The auto-default fires only on that
// transition; it never overrides a later explicit choice.
func (s *Session) OnListChanged(newList []*company.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.list = newList

	if s.selected == nil {
		if len(newList) > 0 {
			return s.setSelectedLocked(newList[0])
		}
		return nil
	}

	// The selection tracks the list entry with its ID: a delivered update
	// to that company replaces the held snapshot and is persisted.
	for _, c := range newList {
		if c.ID == s.selected.ID {
			if *c != *s.selected {
				return s.setSelectedLocked(c)
			}
			return nil
		}
	}
	return nil
}

// ChangeSelection resolves code against the current list. A known code
// becomes the selection; an unknown code clears the selection and the
// persisted record, never leaving a dangling reference.
func (s *Session) ChangeSelection(code string) (*company.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code = company.NormalizeCode(code)
	for _, c := range s.list {
		if c.Code == code {
			return c, s.setSelectedLocked(c)
		}
	}

	s.selected = nil
	return nil, s.store.Clear()
}

// ClearSelection drops the selection and removes the persisted record.
func (s *Session) ClearSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	return s.store.Clear()
}

func (s *Session) setSelectedLocked(c *company.Snapshot) error {
	s.selected = c
	return s.store.Save(c)
}
