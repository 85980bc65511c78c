package game

// Faction separates the player side from hostiles for target filtering.
type Faction uint8

const (
	FactionPlayer Faction = iota
	FactionEnemy
)

func (f Faction) String() string {
	if f == FactionPlayer {
		return "player"
	}
	return "enemy"
}

// Combatant is any entity with health that can deal or receive damage.
// Invariant: 0 <= HP <= MaxHP and Alive == (HP > 0).
type Combatant struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Faction Faction `json:"faction"`

	HP      int  `json:"hp"`
	MaxHP   int  `json:"maxHp"`
	Defense int  `json:"defense"`
	Level   int  `json:"level"`
	Alive   bool `json:"alive"`

	Pos    Vec2    `json:"pos"`
	Facing Vec2    `json:"facing"`
	Radius float64 `json:"radius"`

	// Speed is the current movement speed after status modifiers.
	Speed   float64 `json:"speed"`
	Stunned bool    `json:"stunned"`

	// DamageMultiplier scales outgoing base damage (infinite-wave scaling).
	DamageMultiplier float64 `json:"damageMultiplier"`
}

// CombatantOptions configures NewCombatant.
type CombatantOptions struct {
	ID               string
	Name             string
	Faction          Faction
	MaxHP            int
	Defense          int
	Level            int
	Speed            float64
	Radius           float64
	Pos              Vec2
	Facing           Vec2
	DamageMultiplier float64
}

// NewCombatant creates a live combatant at full health.
func NewCombatant(opts CombatantOptions) *Combatant {
	if opts.MaxHP < 1 {
		opts.MaxHP = 1
	}
	if opts.Level < 1 {
		opts.Level = 1
	}
	if opts.DamageMultiplier <= 0 {
		opts.DamageMultiplier = 1
	}
	if opts.Facing.IsZero() {
		opts.Facing = Vec2{X: 1}
	}
	name := opts.Name
	if name == "" {
		name = opts.ID
	}
	return &Combatant{
		ID:               opts.ID,
		Name:             name,
		Faction:          opts.Faction,
		HP:               opts.MaxHP,
		MaxHP:            opts.MaxHP,
		Defense:          opts.Defense,
		Level:            opts.Level,
		Alive:            true,
		Pos:              opts.Pos,
		Facing:           opts.Facing.Norm(),
		Radius:           opts.Radius,
		Speed:            opts.Speed,
		DamageMultiplier: opts.DamageMultiplier,
	}
}

// ApplyDamage is the only health-decreasing path. Negative amounts are
// clamped to zero. It returns the health actually removed and whether this
// call killed the combatant.
func (c *Combatant) ApplyDamage(amount int) (dealt int, killed bool) {
	if !c.Alive || amount <= 0 {
		return 0, false
	}
	if amount > c.HP {
		amount = c.HP
	}
	c.HP -= amount
	if c.HP <= 0 {
		c.HP = 0
		c.Alive = false
		c.Stunned = false
		return amount, true
	}
	return amount, false
}

// Heal restores health up to MaxHP. Dead combatants cannot be healed.
func (c *Combatant) Heal(amount int) int {
	if !c.Alive || amount <= 0 {
		return 0
	}
	if c.HP+amount > c.MaxHP {
		amount = c.MaxHP - c.HP
	}
	c.HP += amount
	return amount
}

// Kill removes all remaining health without going through combat.
func (c *Combatant) Kill() bool {
	_, killed := c.ApplyDamage(c.HP)
	return killed
}

// Face points the combatant at target. No-op if target is its position.
func (c *Combatant) Face(target Vec2) {
	if d := target.Sub(c.Pos); !d.IsZero() {
		c.Facing = d.Norm()
	}
}

// HealthFraction returns HP/MaxHP in [0, 1].
func (c *Combatant) HealthFraction() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}
