package game

import (
	"fmt"
	"math"
	"sort"
)

// Shape is the area an attack covers.
type Shape string

const (
	ShapeNone   Shape = "none"   // Single nearest target along facing
	ShapeCircle Shape = "circle" // Everything within Radius of the attacker
	ShapeCone   Shape = "cone"   // Circle filtered to ConeAngle around facing
)

// Damage categories used by content. Not exhaustive.
const (
	CategoryPhysical = "physical"
	CategoryElectric = "electric"
	CategoryEther    = "ether"
	CategoryFusion   = "fusion"
	CategoryFire     = "fire"
)

// StatusEffectDefinition is immutable content for a timed effect.
type StatusEffectDefinition struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Duration      float64 `json:"duration"`     // seconds
	TickInterval  float64 `json:"tickInterval"` // seconds, 0 = no periodic damage
	DamagePerTick int     `json:"damagePerTick"`
	SlowPercent   float64 `json:"slowPercent"` // 0.0 to 1.0
	Stun          bool    `json:"stun"`
	VFX           string  `json:"vfx,omitempty"`
	SFX           string  `json:"sfx,omitempty"`
}

// EffectChance pairs a status effect with its per-target apply chance.
type EffectChance struct {
	Effect *StatusEffectDefinition `json:"effect"`
	Chance float64                 `json:"chance"`
}

// AttackDefinition is immutable content shared by every use of an attack.
// Never mutated at runtime.
type AttackDefinition struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	BaseDamage   int            `json:"baseDamage"`
	Category     string         `json:"category"`
	Range        float64        `json:"range"`
	Cooldown     float64        `json:"cooldown"`     // seconds
	CastDelay    float64        `json:"castDelay"`    // seconds before resolution
	AnimDuration float64        `json:"animDuration"` // seconds of recovery after resolution
	EnergyCost   float64        `json:"energyCost"`
	Shape        Shape          `json:"shape"`
	Radius       float64        `json:"radius"`
	ConeAngle    float64        `json:"coneAngle"` // full angle, radians
	Effects      []EffectChance `json:"effects,omitempty"`
	VFX          string         `json:"vfx,omitempty"`
	SFX          string         `json:"sfx,omitempty"`
}

// Reach is the broad-phase query radius of the attack.
func (a *AttackDefinition) Reach() float64 {
	if a.Shape != ShapeNone && a.Radius > 0 {
		return a.Radius
	}
	return a.Range
}

// EnemyArchetype is immutable content describing an enemy kind.
type EnemyArchetype struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	MaxHP                int     `json:"maxHp"`
	Defense              int     `json:"defense"`
	Level                int     `json:"level"`
	Speed                float64 `json:"speed"`
	Radius               float64 `json:"radius"`
	DetectionRange       float64 `json:"detectionRange"`
	AttackRange          float64 `json:"attackRange"`
	AttackCooldown       float64 `json:"attackCooldown"`
	AttackID             string  `json:"attackId"`
	PatrolOffsets        []Vec2  `json:"patrolOffsets,omitempty"` // relative to spawn point
	PatrolWait           float64 `json:"patrolWait"`
	ExpReward            int     `json:"expReward"`
	CurrencyReward       int     `json:"currencyReward"`
	BossHealthMultiplier float64 `json:"bossHealthMultiplier"`
}

// WaveDefinition is one bounded batch of spawns.
type WaveDefinition struct {
	Index          int     `json:"index"`
	EnemyCount     int     `json:"enemyCount"`
	SpawnInterval  float64 `json:"spawnInterval"`
	Archetype      string  `json:"archetype,omitempty"` // empty = catalog default
	ExpReward      int     `json:"expReward"`
	CurrencyReward int     `json:"currencyReward"`
	Boss           bool    `json:"boss"`

	// Set on synthesized infinite-mode waves. Zero means 1.
	HealthMultiplier float64 `json:"healthMultiplier,omitempty"`
	DamageMultiplier float64 `json:"damageMultiplier,omitempty"`
}

// ComboConfig names the two marker attacks and the fusion they trigger.
type ComboConfig struct {
	MarkerA string  `json:"markerA"`
	MarkerB string  `json:"markerB"`
	Fusion  string  `json:"fusion"`
	Window  float64 `json:"window"` // 0 = use the combat config window
}

// Catalog is the complete content set handed to a simulation by reference.
type Catalog struct {
	Attacks          map[string]*AttackDefinition       `json:"attacks"`
	Effects          map[string]*StatusEffectDefinition `json:"effects"`
	Archetypes       map[string]*EnemyArchetype         `json:"archetypes"`
	Waves            []WaveDefinition                   `json:"waves"`
	Combo            ComboConfig                        `json:"combo"`
	DefaultArchetype string                             `json:"defaultArchetype"`
}

// Attack returns the attack with the given ID.
func (c *Catalog) Attack(id string) (*AttackDefinition, error) {
	if a, ok := c.Attacks[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAttack, id)
}

// Archetype returns the archetype with the given ID, or the default for "".
func (c *Catalog) Archetype(id string) (*EnemyArchetype, error) {
	if id == "" {
		id = c.DefaultArchetype
	}
	if a, ok := c.Archetypes[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, id)
}

// AttackList returns all attacks sorted by ID.
func (c *Catalog) AttackList() []*AttackDefinition {
	list := make([]*AttackDefinition, 0, len(c.Attacks))
	for _, a := range c.Attacks {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Validate checks cross references and value ranges.
func (c *Catalog) Validate() error {
	for id, a := range c.Attacks {
		if a == nil {
			return fmt.Errorf("attack %q: %w: nil", id, ErrInvalidDefinition)
		}
		if a.BaseDamage < 0 || a.Cooldown < 0 || a.CastDelay < 0 || a.EnergyCost < 0 {
			return fmt.Errorf("attack %q: %w: negative value", id, ErrInvalidDefinition)
		}
		switch a.Shape {
		case ShapeNone:
			if a.Range <= 0 {
				return fmt.Errorf("attack %q: %w: range must be positive", id, ErrInvalidDefinition)
			}
		case ShapeCircle, ShapeCone:
			if a.Reach() <= 0 {
				return fmt.Errorf("attack %q: %w: radius must be positive", id, ErrInvalidDefinition)
			}
			if a.Shape == ShapeCone && (a.ConeAngle <= 0 || a.ConeAngle > 2*math.Pi) {
				return fmt.Errorf("attack %q: %w: cone angle out of range", id, ErrInvalidDefinition)
			}
		default:
			return fmt.Errorf("attack %q: %w: shape %q", id, ErrInvalidDefinition, a.Shape)
		}
		for _, ec := range a.Effects {
			if ec.Effect == nil {
				return fmt.Errorf("attack %q: %w", id, ErrUnknownEffect)
			}
			if ec.Chance < 0 || ec.Chance > 1 {
				return fmt.Errorf("attack %q: %w: chance %.2f", id, ErrInvalidDefinition, ec.Chance)
			}
		}
	}

	for id, e := range c.Effects {
		if e.Duration <= 0 || e.TickInterval < 0 || e.SlowPercent < 0 || e.SlowPercent >= 1 {
			return fmt.Errorf("effect %q: %w", id, ErrInvalidDefinition)
		}
	}

	for id, a := range c.Archetypes {
		if a.MaxHP <= 0 || a.AttackRange <= 0 {
			return fmt.Errorf("archetype %q: %w", id, ErrInvalidDefinition)
		}
		if _, err := c.Attack(a.AttackID); err != nil {
			return fmt.Errorf("archetype %q: %w", id, err)
		}
	}
	if _, err := c.Archetype(""); err != nil {
		return fmt.Errorf("default archetype: %w", err)
	}

	for i, w := range c.Waves {
		if w.EnemyCount < 0 || w.SpawnInterval < 0 {
			return fmt.Errorf("wave %d: %w", i+1, ErrInvalidDefinition)
		}
		if _, err := c.Archetype(w.Archetype); err != nil {
			return fmt.Errorf("wave %d: %w", i+1, err)
		}
	}

	for _, id := range []string{c.Combo.MarkerA, c.Combo.MarkerB, c.Combo.Fusion} {
		if id == "" {
			continue
		}
		if _, err := c.Attack(id); err != nil {
			return fmt.Errorf("combo: %w", err)
		}
	}
	return nil
}

// DefaultCatalog returns the built-in content set.
// Each call returns fresh definitions so callers may adjust them in tests.
func DefaultCatalog() *Catalog {
	effects := map[string]*StatusEffectDefinition{
		"static": {
			ID: "static", Name: "Static Shock",
			Duration: 1.0, Stun: true,
			VFX: "vfx_static", SFX: "sfx_zap",
		},
		"ether_burn": {
			ID: "ether_burn", Name: "Ether Burn",
			Duration: 3.0, TickInterval: 1.0, DamagePerTick: 3,
			VFX: "vfx_ether_burn",
		},
		"burn": {
			ID: "burn", Name: "Burn",
			Duration: 4.0, TickInterval: 1.0, DamagePerTick: 2,
			VFX: "vfx_burn", SFX: "sfx_sizzle",
		},
		"chill": {
			ID: "chill", Name: "Chill",
			Duration: 2.0, SlowPercent: 0.3,
			VFX: "vfx_chill",
		},
		"cripple": {
			ID: "cripple", Name: "Cripple",
			Duration: 3.0, SlowPercent: 0.5,
			VFX: "vfx_cripple",
		},
		"daze": {
			ID: "daze", Name: "Daze",
			Duration: 1.5, Stun: true,
			VFX: "vfx_daze", SFX: "sfx_thud",
		},
	}

	attacks := map[string]*AttackDefinition{
		// Player loadout
		"slash": {
			ID: "slash", Name: "Slash", BaseDamage: 10, Category: CategoryPhysical,
			Range: 2.0, Cooldown: 0.5, CastDelay: 0.1, AnimDuration: 0.2,
			Shape: ShapeNone, VFX: "vfx_slash", SFX: "sfx_slash",
		},
		"shock_palm": {
			ID: "shock_palm", Name: "Shock Palm", BaseDamage: 8, Category: CategoryElectric,
			Range: 2.5, Cooldown: 1.5, CastDelay: 0.15, AnimDuration: 0.25, EnergyCost: 10,
			Shape: ShapeNone,
			Effects: []EffectChance{{Effect: effects["static"], Chance: 0.35}},
			VFX:     "vfx_shock", SFX: "sfx_zap",
		},
		"ether_lance": {
			ID: "ether_lance", Name: "Ether Lance", BaseDamage: 12, Category: CategoryEther,
			Range: 6.0, Cooldown: 2.0, CastDelay: 0.3, AnimDuration: 0.3, EnergyCost: 15,
			Shape:   ShapeNone,
			Effects: []EffectChance{{Effect: effects["ether_burn"], Chance: 0.5}},
			VFX:     "vfx_lance", SFX: "sfx_lance",
		},
		"sweep": {
			ID: "sweep", Name: "Sweep", BaseDamage: 7, Category: CategoryPhysical,
			Range: 3.0, Cooldown: 3.0, CastDelay: 0.2, AnimDuration: 0.4, EnergyCost: 20,
			Shape: ShapeCone, Radius: 3.0, ConeAngle: math.Pi / 2,
			Effects: []EffectChance{{Effect: effects["chill"], Chance: 0.5}},
			VFX:     "vfx_sweep", SFX: "sfx_whoosh",
		},
		"fusion_burst": {
			ID: "fusion_burst", Name: "Fusion Burst", BaseDamage: 30, Category: CategoryFusion,
			Range: 4.0, Cooldown: 8.0,
			Shape: ShapeCircle, Radius: 4.0,
			Effects: []EffectChance{
				{Effect: effects["static"], Chance: 1.0},
				{Effect: effects["ether_burn"], Chance: 1.0},
			},
			VFX: "vfx_fusion", SFX: "sfx_fusion",
		},

		// Enemy attacks
		"claw": {
			ID: "claw", Name: "Claw", BaseDamage: 6, Category: CategoryPhysical,
			Range: 1.5, Cooldown: 1.2, CastDelay: 0.3, AnimDuration: 0.3,
			Shape: ShapeNone, SFX: "sfx_claw",
		},
		"spit": {
			ID: "spit", Name: "Spit", BaseDamage: 4, Category: CategoryFire,
			Range: 7.0, Cooldown: 2.5, CastDelay: 0.5, AnimDuration: 0.3,
			Shape:   ShapeNone,
			Effects: []EffectChance{{Effect: effects["burn"], Chance: 0.4}},
			VFX:     "vfx_spit", SFX: "sfx_spit",
		},
		"slam": {
			ID: "slam", Name: "Slam", BaseDamage: 14, Category: CategoryPhysical,
			Range: 2.5, Cooldown: 3.0, CastDelay: 0.8, AnimDuration: 0.6,
			Shape: ShapeCircle, Radius: 2.5,
			Effects: []EffectChance{
				{Effect: effects["daze"], Chance: 0.25},
				{Effect: effects["cripple"], Chance: 0.5},
			},
			VFX: "vfx_slam", SFX: "sfx_slam",
		},
	}

	archetypes := map[string]*EnemyArchetype{
		"grunt": {
			ID: "grunt", Name: "Grunt", MaxHP: 30, Defense: 1, Level: 1,
			Speed: 3.0, Radius: 0.5, DetectionRange: 10, AttackRange: 1.5,
			AttackCooldown: 1.5, AttackID: "claw",
			ExpReward: 10, CurrencyReward: 2, BossHealthMultiplier: 3,
		},
		"spitter": {
			ID: "spitter", Name: "Spitter", MaxHP: 20, Defense: 0, Level: 1,
			Speed: 2.5, Radius: 0.5, DetectionRange: 12, AttackRange: 6,
			AttackCooldown: 2.5, AttackID: "spit",
			PatrolOffsets: []Vec2{{X: 3}, {Y: 3}, {X: -3}, {Y: -3}}, PatrolWait: 1.0,
			ExpReward: 12, CurrencyReward: 3, BossHealthMultiplier: 3,
		},
		"brute": {
			ID: "brute", Name: "Brute", MaxHP: 80, Defense: 4, Level: 2,
			Speed: 2.0, Radius: 0.8, DetectionRange: 9, AttackRange: 2.0,
			AttackCooldown: 3.0, AttackID: "slam",
			ExpReward: 40, CurrencyReward: 10, BossHealthMultiplier: 3,
		},
	}

	return &Catalog{
		Attacks:    attacks,
		Effects:    effects,
		Archetypes: archetypes,
		Waves: []WaveDefinition{
			{Index: 1, EnemyCount: 5, SpawnInterval: 1.0, Archetype: "grunt", ExpReward: 50, CurrencyReward: 10},
			{Index: 2, EnemyCount: 6, SpawnInterval: 0.8, ExpReward: 60, CurrencyReward: 12},
			{Index: 3, EnemyCount: 4, SpawnInterval: 1.2, Archetype: "spitter", ExpReward: 70, CurrencyReward: 15},
			{Index: 4, EnemyCount: 2, SpawnInterval: 2.0, Archetype: "brute", ExpReward: 150, CurrencyReward: 40, Boss: true},
		},
		Combo: ComboConfig{
			MarkerA: "shock_palm",
			MarkerB: "ether_lance",
			Fusion:  "fusion_burst",
		},
		DefaultArchetype: "grunt",
	}
}
