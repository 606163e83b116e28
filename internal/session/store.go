// Package session keeps per-conversation state in memory. Sessions are
// created on first use, keyed by an opaque id, and die with the process;
// there is no cross-session sharing and no persistence.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finchat/backend/internal/advisor"
	"github.com/finchat/backend/internal/ledger"
)

// FileRecord remembers one statement upload for a session.
type FileRecord struct {
	Filename     string    `json:"filename"`
	UploadedAt   time.Time `json:"uploaded_at"`
	Transactions int       `json:"transactions"`
}

// Session is the unit of isolation: one ledger, one advisory conversation,
// one upload history. The embedded mutex serializes operations per
// session, because a ledger append concurrent with a summary read would be
// observed as a torn read.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	Ledger    *ledger.Ledger
	Advisor   *advisor.Session
	Files     []FileRecord
}

// Lock serializes this session's operations. Callers hold it for the full
// request, spanning both the mutation and the summary render.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// RecordFile appends an upload record. Caller must hold the session lock.
func (s *Session) RecordFile(filename string, transactions int) {
	s.Files = append(s.Files, FileRecord{
		Filename:     filename,
		UploadedAt:   time.Now(),
		Transactions: transactions,
	})
}

// Manager is the in-memory session registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newFn    func(id string) *Session
}

// NewManager creates a registry. newFn builds a fresh session (ledger plus
// advisor wiring) and is called under the registry lock, so it must not
// block.
func NewManager(newFn func(id string) *Session) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		newFn:    newFn,
	}
}

// Get returns the session for id, or nil when it does not exist.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// GetOrCreate returns the session for id, creating it on first use. An
// empty id gets a fresh uuid, mirroring clients that let the server mint
// the session key.
func (m *Manager) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}

	m.mu.RLock()
	s := m.sessions[id]
	m.mu.RUnlock()
	if s != nil {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[id]; s != nil {
		return s
	}
	s = m.newFn(id)
	s.ID = id
	s.CreatedAt = time.Now()
	m.sessions[id] = s
	return s
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
