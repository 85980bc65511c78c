package api

import (
	"sync"
	"time"

	"fusion-arena/internal/game"
	"fusion-arena/internal/intent"
	"fusion-arena/internal/logger"
)

func init() {
	logger.Silence()
}

// mockEngine implements EngineInterface for testing. It is safe for
// concurrent use because WebSocket read loops call Submit.
type mockEngine struct {
	mu sync.Mutex

	snapshot  *game.Snapshot
	catalog   *game.Catalog
	attackErr error
	skipErr   error
	submitErr error

	attacks   []string
	moves     []game.Vec2
	submitted []intent.Intent
	skips     []int
	starts    int
	resets    int
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		snapshot: &game.Snapshot{
			Sequence:   1,
			Timestamp:  time.Unix(0, 0),
			TickNumber: 40,
			SimTime:    2,
			Player:     game.PlayerSnapshot{ID: game.PlayerID, HP: 200, MaxHP: 200, Alive: true},
			Enemies: []game.EnemySnapshot{
				{ID: "e1", Archetype: "grunt", State: game.StateChase, HP: 30, MaxHP: 30, Wave: 1},
			},
			Waves: game.SpawnScheduleState{WaveIndex: 1, Phase: game.PhaseSpawning, Alive: 1, MaxAlive: 4},
			Stats: game.SimStats{Kills: 2, FusionTriggers: 1},
		},
		catalog: game.DefaultCatalog(),
	}
}

func (m *mockEngine) GetSnapshot() *game.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

func (m *mockEngine) setSnapshot(s *game.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
}

func (m *mockEngine) UseAttack(attackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attackErr != nil {
		return m.attackErr
	}
	m.attacks = append(m.attacks, attackID)
	return nil
}

func (m *mockEngine) Move(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves = append(m.moves, game.Vec2{X: x, Y: y})
}

func (m *mockEngine) Submit(in intent.Intent) error {
	if err := in.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, in)
	return nil
}

func (m *mockEngine) submittedIntents() []intent.Intent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]intent.Intent(nil), m.submitted...)
}

func (m *mockEngine) SkipToWave(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skipErr != nil {
		return m.skipErr
	}
	m.skips = append(m.skips, n)
	return nil
}

func (m *mockEngine) StartWaves() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	return m.starts == 1
}

func (m *mockEngine) ResetSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
}

func (m *mockEngine) Catalog() *game.Catalog { return m.catalog }

func (m *mockEngine) TickRate() int { return 20 }

func (m *mockEngine) IntentStats() intent.Stats {
	return intent.Stats{Enqueued: uint64(len(m.submittedIntents())), Capacity: 256}
}

func (m *mockEngine) GetEventLogStats() map[string]interface{} {
	return map[string]interface{}{
		"total":   uint64(7),
		"dropped": uint64(1),
		"running": false,
	}
}
