// game/manager.go
package game

import (
	"sync"
	"time"

	"github.com/bisca-online/gameserver/logger"
)

// ManagerConfig bounds creation and eviction.
type ManagerConfig struct {
	MaxPendingGames int           // waiting games one user may hold open
	MinStake        int64         // match stake bounds, inclusive
	MaxStake        int64
	WaitingTTL      time.Duration // 0 disables the reaper
}

// Manager is the session registry: a shared map of games keyed by id, with a
// monotonically increasing counter. It owns no per-game locking; each Game
// serializes itself.
type Manager struct {
	mu     sync.RWMutex
	games  map[int64]*Game
	nextID int64

	cfg        ManagerConfig
	stopReaper chan struct{}
}

func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		games:      make(map[int64]*Game),
		cfg:        cfg,
		stopReaper: make(chan struct{}),
	}
	if cfg.WaitingTTL > 0 {
		go m.reapLoop()
	}
	return m
}

// Create registers a new waiting game. It enforces the per-user pending
// quota and validates variant, type, and match stake.
func (m *Manager) Create(user User, opts Options) (*Game, error) {
	if opts.Variant == 0 {
		opts.Variant = 9
	}
	if opts.Variant != 3 && opts.Variant != 9 {
		return nil, ErrInvalidVariant
	}
	if opts.Type == "" {
		opts.Type = TypeStandalone
	}
	if opts.Type != TypeStandalone && opts.Type != TypeMatch {
		return nil, ErrInvalidType
	}
	if opts.Type == TypeMatch {
		if opts.Stake < m.cfg.MinStake || opts.Stake > m.cfg.MaxStake {
			return nil, ErrInvalidStake
		}
	} else {
		opts.Stake = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxPendingGames > 0 && m.pendingCountLocked(user.ID) >= m.cfg.MaxPendingGames {
		return nil, ErrQuotaExceeded
	}

	m.nextID++
	g := newGame(m.nextID, user, opts)
	m.games[g.ID] = g
	return g, nil
}

// ListWaiting returns the public lobby list.
func (m *Manager) ListWaiting() []*Game {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Game
	for _, g := range m.games {
		if g.Status() == StatusWaiting {
			out = append(out, g)
		}
	}
	return out
}

func (m *Manager) Get(id int64) (*Game, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	return g, ok
}

// Join seats user as player2 of the given waiting game.
func (m *Manager) Join(id int64, user User) (*Game, error) {
	g, ok := m.Get(id)
	if !ok {
		return nil, ErrGameNotFound
	}
	if err := g.Join(user); err != nil {
		return nil, err
	}
	return g, nil
}

// Cancel removes a still-waiting game; only its creator may do so.
func (m *Manager) Cancel(id int64, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[id]
	if !ok {
		return ErrGameNotFound
	}
	if g.Creator != userID {
		return ErrNotCreator
	}
	if g.Status() != StatusWaiting {
		return ErrAlreadyStarted
	}
	delete(m.games, id)
	return nil
}

// Remove evicts a game from the registry regardless of state.
func (m *Manager) Remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
}

// PendingFor returns the user's waiting games.
func (m *Manager) PendingFor(userID int64) []*Game {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Game
	for _, g := range m.games {
		if g.Creator == userID && g.Status() == StatusWaiting {
			out = append(out, g)
		}
	}
	return out
}

// Counts reports active (in-progress) and waiting game totals for metrics.
func (m *Manager) Counts() (active, waiting int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.games {
		switch g.Status() {
		case StatusInProgress:
			active++
		case StatusWaiting:
			waiting++
		}
	}
	return
}

func (m *Manager) pendingCountLocked(userID int64) int {
	n := 0
	for _, g := range m.games {
		if g.Creator == userID && g.Status() == StatusWaiting {
			n++
		}
	}
	return n
}

// Close stops the reaper.
func (m *Manager) Close() {
	close(m.stopReaper)
}

func (m *Manager) reapLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.reap()
		case <-m.stopReaper:
			return
		}
	}
}

// reap evicts abandoned waiting games older than the TTL. Started games are
// never reaped; they end through play, resignation, or timeout.
func (m *Manager) reap() {
	cutoff := time.Now().Add(-m.cfg.WaitingTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, g := range m.games {
		if g.Status() == StatusWaiting && g.CreatedAt().Before(cutoff) {
			delete(m.games, id)
			logger.Log.Infof("Reaped abandoned waiting game %d", id)
		}
	}
}
