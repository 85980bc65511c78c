package game

// ComboState tracks the fusion combo flags for one attacker.
type ComboState struct {
	MarkerA   bool    `json:"markerA"`
	MarkerB   bool    `json:"markerB"`
	Countdown float64 `json:"countdown"` // seconds left to land the other marker
	Triggers  int     `json:"triggers"`  // fusion triggers so far
}

// DefaultComboWindow is used when neither content nor config sets one.
const DefaultComboWindow = 3.0

// ComboTracker watches the owner's landed attacks. When both marker attacks
// land within the shared window and the fusion attack is off cooldown, it
// fires the fusion attack automatically.
type ComboTracker struct {
	owner     string
	markerA   string
	markerB   string
	fusion    *AttackDefinition
	window    float64
	cooldowns *Cooldowns
	state     ComboState
}

// NewComboTracker creates a tracker for owner. fusion may be nil, in which
// case markers are tracked but nothing ever triggers.
func NewComboTracker(owner string, cfg ComboConfig, fusion *AttackDefinition, window float64, cooldowns *Cooldowns) *ComboTracker {
	if cfg.Window > 0 {
		window = cfg.Window
	}
	if window <= 0 {
		window = DefaultComboWindow
	}
	return &ComboTracker{
		owner:     owner,
		markerA:   cfg.MarkerA,
		markerB:   cfg.MarkerB,
		fusion:    fusion,
		window:    window,
		cooldowns: cooldowns,
	}
}

// OnAttackLanded records a landed attack and returns the fusion attack if
// this landing triggered it, nil otherwise. The caller resolves the
// returned attack; its cooldown is already engaged.
func (t *ComboTracker) OnAttackLanded(attacker *Combatant, attack *AttackDefinition, now float64) *AttackDefinition {
	if attacker == nil || attack == nil || attacker.ID != t.owner {
		return nil
	}

	switch attack.ID {
	case t.markerA:
		t.state.MarkerA = true
	case t.markerB:
		t.state.MarkerB = true
	default:
		return nil
	}
	t.state.Countdown = t.window

	if !t.state.MarkerA || !t.state.MarkerB || t.fusion == nil {
		return nil
	}
	if !t.cooldowns.Ready(t.owner, t.fusion, now) {
		// Flags stay set until the window runs out.
		return nil
	}

	t.state.MarkerA = false
	t.state.MarkerB = false
	t.state.Countdown = 0
	t.state.Triggers++
	t.cooldowns.Engage(t.owner, t.fusion, now)
	return t.fusion
}

// Tick advances the shared countdown. Flags reset when it reaches zero.
func (t *ComboTracker) Tick(dt float64) {
	if t.state.Countdown <= 0 {
		return
	}
	t.state.Countdown -= dt
	if t.state.Countdown <= timeEpsilon {
		t.state.Countdown = 0
		t.state.MarkerA = false
		t.state.MarkerB = false
	}
}

// State returns a copy of the combo flags.
func (t *ComboTracker) State() ComboState { return t.state }

// Fusion returns the fusion attack, which may be nil.
func (t *ComboTracker) Fusion() *AttackDefinition { return t.fusion }

// Window returns the configured window length in seconds.
func (t *ComboTracker) Window() float64 { return t.window }

// Reset clears flags and the trigger counter.
func (t *ComboTracker) Reset() {
	t.state = ComboState{}
}
