package scope

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
)

// Manager owns the shared company list and the per-auth-session scope
// sessions. The loader delivers list updates here; the authorize middleware
// asks for the session bound to the current sid token.
type Manager struct {
	mu       sync.RWMutex
	factory  StoreFactory
	log      *logrus.Logger
	sessions map[string]*Session
	list     []*company.Snapshot
}

func NewManager(factory StoreFactory, log *logrus.Logger) *Manager {
	return &Manager{
		factory:  factory,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// For returns the scope session for the given auth session id, creating it
// on first use with the current company list.
func (m *Manager) For(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		return s
	}
	s := NewSession(m.factory(sessionID), nil)
	if len(m.list) > 0 {
		if err := s.OnListChanged(m.list); err != nil {
			m.log.WithError(err).Warn("failed to persist auto-default selection")
		}
	}
	m.sessions[sessionID] = s
	return s
}

// Drop forgets the scope session for an auth session id. The persisted
// selection is left intact so a re-login resumes where it left off.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// OnListChanged stores the new list and forwards it to every live session.
func (m *Manager) OnListChanged(list []*company.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.list = list
	for id, s := range m.sessions {
		if err := s.OnListChanged(list); err != nil {
			m.log.WithError(err).WithField("session", id).Warn("failed to propagate company list")
		}
	}
}

// List returns the current shared company list.
func (m *Manager) List() []*company.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*company.Snapshot, len(m.list))
	copy(out, m.list)
	return out
}
