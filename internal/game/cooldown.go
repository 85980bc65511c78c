package game

// cooldownKey identifies one (attacker, attack) pair.
type cooldownKey struct {
	attacker string
	attack   string
}

// Cooldowns stores last-use timestamps per (attacker, attack).
// Entries are created lazily on first use; a missing entry is ready.
type Cooldowns struct {
	lastUsed map[cooldownKey]float64
}

// NewCooldowns creates an empty cooldown table.
func NewCooldowns() *Cooldowns {
	return &Cooldowns{lastUsed: make(map[cooldownKey]float64)}
}

// Ready reports whether attack can be used by attackerID at now.
func (c *Cooldowns) Ready(attackerID string, attack *AttackDefinition, now float64) bool {
	return c.Remaining(attackerID, attack, now) <= 0
}

// Remaining returns seconds until ready, never negative.
func (c *Cooldowns) Remaining(attackerID string, attack *AttackDefinition, now float64) float64 {
	last, ok := c.lastUsed[cooldownKey{attackerID, attack.ID}]
	if !ok {
		return 0
	}
	rem := last + attack.Cooldown - now
	if rem <= timeEpsilon {
		return 0
	}
	return rem
}

// Progress returns recharge progress in [0, 1]; 1 means ready.
func (c *Cooldowns) Progress(attackerID string, attack *AttackDefinition, now float64) float64 {
	if attack.Cooldown <= 0 {
		return 1
	}
	p := 1 - c.Remaining(attackerID, attack, now)/attack.Cooldown
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Engage records a use at now, starting the cooldown.
func (c *Cooldowns) Engage(attackerID string, attack *AttackDefinition, now float64) {
	c.lastUsed[cooldownKey{attackerID, attack.ID}] = now
}

// Forget drops every entry of an attacker (on despawn).
func (c *Cooldowns) Forget(attackerID string) {
	for k := range c.lastUsed {
		if k.attacker == attackerID {
			delete(c.lastUsed, k)
		}
	}
}

// Reset clears all entries.
func (c *Cooldowns) Reset() {
	clear(c.lastUsed)
}
