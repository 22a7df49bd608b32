package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/cookfile-viewer/backend/internal/remote"
)

// MaxSessions limits concurrently open workspaces
const MaxSessions = 10

// SessionMaxAge is how long an untouched workspace stays open before cleanup
const SessionMaxAge = 30 * time.Minute

// ErrNoFilename is returned when opening a session without a filename.
var ErrNoFilename = errors.New("session filename is required")

// Manager keeps the open workspaces, one per session filename.
type Manager struct {
	mu         sync.RWMutex
	workspaces map[string]*workspaceState
	store      remote.Store
	settings   Settings
	logger     *log.Logger
}

// workspaceState holds a workspace and its last access time.
type workspaceState struct {
	Workspace    *Workspace
	Opened       time.Time
	LastAccessed time.Time
}

// NewManager creates a manager whose workspaces talk to store.
func NewManager(store remote.Store, settings Settings, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New("session")
		logger.SetLevel(log.OFF)
	}
	return &Manager{
		workspaces: make(map[string]*workspaceState),
		store:      store,
		settings:   settings,
		logger:     logger,
	}
}

// Open creates the workspace of opts.Filename, loads its telemetry, and
// renders its chart. Opening a session that is already open returns the
// existing workspace.
func (m *Manager) Open(ctx context.Context, opts OpenOptions) (*Workspace, error) {
	if opts.Filename == "" {
		return nil, ErrNoFilename
	}
	if ws, ok := m.Get(opts.Filename); ok {
		return ws, nil
	}

	ws := newWorkspace(m.store, m.settings, opts, m.logger)
	if err := ws.load(ctx); err != nil {
		m.logger.Errorf("[Session %s] open failed: %v", opts.Filename, err)
		return nil, err
	}

	m.cleanupOldSessionsIfNeeded()

	now := time.Now()
	m.mu.Lock()
	if existing, ok := m.workspaces[opts.Filename]; ok {
		// opened concurrently; keep the first one
		existing.LastAccessed = now
		m.mu.Unlock()
		ws.close()
		return existing.Workspace, nil
	}
	m.workspaces[opts.Filename] = &workspaceState{Workspace: ws, Opened: now, LastAccessed: now}
	m.mu.Unlock()

	m.logger.Infof("[Session %s] opened", opts.Filename)
	return ws, nil
}

// Get returns the open workspace of filename and marks it used.
func (m *Manager) Get(filename string) (*Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.workspaces[filename]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	return state.Workspace, true
}

// Touch updates the last access time of filename.
func (m *Manager) Touch(filename string) bool {
	_, ok := m.Get(filename)
	return ok
}

// Close tears down the workspace of filename.
func (m *Manager) Close(filename string) bool {
	m.mu.Lock()
	state, ok := m.workspaces[filename]
	delete(m.workspaces, filename)
	m.mu.Unlock()

	if !ok {
		return false
	}
	state.Workspace.close()
	m.logger.Infof("[Session %s] closed", filename)
	return true
}

// Len returns the number of open workspaces.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.workspaces)
}

// CleanupOldSessions closes workspaces idle for longer than maxAge and
// returns how many were closed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.RLock()
	var stale []string
	for name, state := range m.workspaces {
		if state.LastAccessed.Before(cutoff) {
			stale = append(stale, name)
		}
	}
	m.mu.RUnlock()

	for _, name := range stale {
		m.Close(name)
	}
	return len(stale)
}

// cleanupOldSessionsIfNeeded closes the least recently used workspace if at capacity
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.RLock()
	if len(m.workspaces) < MaxSessions {
		m.mu.RUnlock()
		return
	}
	var oldest string
	var oldestTime time.Time
	for name, state := range m.workspaces {
		if oldest == "" || state.LastAccessed.Before(oldestTime) {
			oldest, oldestTime = name, state.LastAccessed
		}
	}
	m.mu.RUnlock()

	if oldest != "" {
		m.logger.Infof("[Session %s] evicted, %d sessions open", oldest, MaxSessions)
		m.Close(oldest)
	}
}
