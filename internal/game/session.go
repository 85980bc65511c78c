package game

// SessionEvent is delivered to session subscribers on every transition.
type SessionEvent struct {
	InCombat bool
	At       float64
}

// CombatSessionState is a copy of the session for snapshots.
type CombatSessionState struct {
	InCombat     bool     `json:"inCombat"`
	Registered   []string `json:"registered"`
	LastActivity float64  `json:"lastActivity"`
}

// SessionTracker derives "in combat" from the set of registered hostiles
// plus a trailing exit delay.
type SessionTracker struct {
	exitDelay    float64
	members      map[string]struct{}
	order        []string // registration order, for stable snapshots
	inCombat     bool
	lastActivity float64
	now          float64
	subscribers  []func(SessionEvent)
}

// NewSessionTracker creates a tracker leaving combat exitDelay seconds
// after the last hostile unregisters.
func NewSessionTracker(exitDelay float64) *SessionTracker {
	if exitDelay < 0 {
		exitDelay = 0
	}
	return &SessionTracker{
		exitDelay: exitDelay,
		members:   make(map[string]struct{}),
	}
}

// Subscribe adds a transition observer.
func (s *SessionTracker) Subscribe(fn func(SessionEvent)) {
	s.subscribers = append(s.subscribers, fn)
}

// Register adds id to the hostile set. Empty or already-present IDs are
// ignored. Returns true if the set changed.
func (s *SessionTracker) Register(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.order = append(s.order, id)

	if len(s.members) == 1 && !s.inCombat {
		s.inCombat = true
		s.notify()
	}
	return true
}

// Unregister removes id and stamps the last-activity time.
// Unknown IDs are ignored.
func (s *SessionTracker) Unregister(id string, now float64) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	for i, m := range s.order {
		if m == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.lastActivity = now
	s.now = now
	return true
}

// Tick leaves combat once the set has been empty for longer than the
// exit delay.
func (s *SessionTracker) Tick(now float64) {
	s.now = now
	if !s.inCombat || len(s.members) > 0 {
		return
	}
	if now-s.lastActivity > s.exitDelay {
		s.inCombat = false
		s.notify()
	}
}

// InCombat reports the current session flag.
func (s *SessionTracker) InCombat() bool { return s.inCombat }

// Contains reports whether id is registered.
func (s *SessionTracker) Contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

// Count returns the number of registered hostiles.
func (s *SessionTracker) Count() int { return len(s.members) }

// State returns a copy for snapshots.
func (s *SessionTracker) State() CombatSessionState {
	reg := make([]string, len(s.order))
	copy(reg, s.order)
	return CombatSessionState{
		InCombat:     s.inCombat,
		Registered:   reg,
		LastActivity: s.lastActivity,
	}
}

// Reset clears the set and leaves combat without notifying.
func (s *SessionTracker) Reset() {
	clear(s.members)
	s.order = s.order[:0]
	s.inCombat = false
	s.lastActivity = 0
}

func (s *SessionTracker) notify() {
	ev := SessionEvent{InCombat: s.inCombat, At: s.now}
	for _, fn := range s.subscribers {
		fn(ev)
	}
}
