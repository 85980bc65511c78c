package content

// EffectsFile is effects.yaml.
type EffectsFile struct {
	Effects []EffectRecord `yaml:"effects"`
}

type EffectRecord struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Duration      float64 `yaml:"duration"`
	TickInterval  float64 `yaml:"tick_interval"`
	DamagePerTick int     `yaml:"damage_per_tick"`
	SlowPercent   float64 `yaml:"slow_percent"`
	Stun          bool    `yaml:"stun"`
	VFX           string  `yaml:"vfx"`
	SFX           string  `yaml:"sfx"`
}

// AttacksFile is attacks.yaml.
type AttacksFile struct {
	Attacks []AttackRecord `yaml:"attacks"`
}

type AttackRecord struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	BaseDamage   int            `yaml:"base_damage"`
	Category     string         `yaml:"category"`
	Range        float64        `yaml:"range"`
	Cooldown     float64        `yaml:"cooldown"`
	CastDelay    float64        `yaml:"cast_delay"`
	AnimDuration float64        `yaml:"anim_duration"`
	EnergyCost   float64        `yaml:"energy_cost"`
	Shape        string         `yaml:"shape"`
	Radius       float64        `yaml:"radius"`
	ConeAngle    float64        `yaml:"cone_angle"` // degrees
	Effects      []EffectChance `yaml:"effects"`
	VFX          string         `yaml:"vfx"`
	SFX          string         `yaml:"sfx"`
}

type EffectChance struct {
	Effect string  `yaml:"effect"`
	Chance float64 `yaml:"chance"`
}

// EnemiesFile is enemies.yaml.
type EnemiesFile struct {
	Default    string            `yaml:"default"`
	Archetypes []ArchetypeRecord `yaml:"archetypes"`
}

type ArchetypeRecord struct {
	ID                   string       `yaml:"id"`
	Name                 string       `yaml:"name"`
	MaxHP                int          `yaml:"max_hp"`
	Defense              int          `yaml:"defense"`
	Level                int          `yaml:"level"`
	Speed                float64      `yaml:"speed"`
	Radius               float64      `yaml:"radius"`
	DetectionRange       float64      `yaml:"detection_range"`
	AttackRange          float64      `yaml:"attack_range"`
	AttackCooldown       float64      `yaml:"attack_cooldown"`
	Attack               string       `yaml:"attack"`
	Patrol               [][2]float64 `yaml:"patrol"` // offsets from the spawn point
	PatrolWait           float64      `yaml:"patrol_wait"`
	ExpReward            int          `yaml:"exp_reward"`
	CurrencyReward       int          `yaml:"currency_reward"`
	BossHealthMultiplier float64      `yaml:"boss_health_multiplier"`
}

// WavesFile is waves.yaml.
type WavesFile struct {
	Waves []WaveRecord `yaml:"waves"`
}

type WaveRecord struct {
	EnemyCount     int     `yaml:"enemy_count"`
	SpawnInterval  float64 `yaml:"spawn_interval"`
	Archetype      string  `yaml:"archetype"`
	ExpReward      int     `yaml:"exp_reward"`
	CurrencyReward int     `yaml:"currency_reward"`
	Boss           bool    `yaml:"boss"`
}

// ComboFile is combo.yaml.
type ComboFile struct {
	MarkerA string  `yaml:"marker_a"`
	MarkerB string  `yaml:"marker_b"`
	Fusion  string  `yaml:"fusion"`
	Window  float64 `yaml:"window"`
}
