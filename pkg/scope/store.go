package scope

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
)

// SelectionStore persists the currently selected company across restarts.
// Load swallows corruption: an unreadable or unparseable record is treated
// as absent, never surfaced as an error.
type SelectionStore interface {
	Load() *company.Snapshot
	Save(s *company.Snapshot) error
	Clear() error
}

// FileStore keeps the selection as a JSON file. One file per auth session.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() *company.Snapshot {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var snap company.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	if snap.ID == "" {
		return nil
	}
	return &snap
}

func (s *FileStore) Save(snap *company.Snapshot) error {
	if snap == nil {
		return s.Clear()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// StoreFactory builds the selection store for an auth session.
type StoreFactory func(sessionID string) SelectionStore

// FileStoreFactory keeps one selection file per auth session under dir.
func FileStoreFactory(dir string) StoreFactory {
	return func(sessionID string) SelectionStore {
		return NewFileStore(filepath.Join(dir, sessionID+".json"))
	}
}

// MemoryStore is an in-process SelectionStore used in tests.
type MemoryStore struct {
	mu   sync.Mutex
	snap *company.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() *company.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil
	}
	snap := *s.snap
	return &snap
}

func (s *MemoryStore) Save(snap *company.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap == nil {
		s.snap = nil
		return nil
	}
	clone := *snap
	s.snap = &clone
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}
