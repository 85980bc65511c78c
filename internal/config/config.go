// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for simulation, wave and server settings.
//
// IMPORTANT: When changing balance defaults, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// COMBAT CONFIGURATION
// =============================================================================

// CombatConfig holds the tunables of attack resolution and the fusion combo.
type CombatConfig struct {
	TickRate       int     // Simulation ticks per second
	Seed           int64   // RNG seed (0 = time based)
	CritChance     float64 // Probability of a critical hit (0.0 to 1.0)
	CritMultiplier float64 // Damage multiplier on critical hits
	HitRadius      float64 // Default hit radius for combatants without one
	ComboWindow    float64 // Seconds both marker attacks must land within
	ExitDelay      float64 // Seconds with no hostiles before combat ends
	Debug          bool    // Panic on programming errors instead of ignoring them
}

// DefaultCombat returns the default combat configuration.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		TickRate:       20,
		Seed:           0,
		CritChance:     0.1,
		CritMultiplier: 1.5,
		HitRadius:      0.5,
		ComboWindow:    3.0,
		ExitDelay:      3.0,
		Debug:          false,
	}
}

// CombatFromEnv returns combat configuration with environment variable overrides.
func CombatFromEnv() CombatConfig {
	cfg := DefaultCombat()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if s := getEnvInt64("SIM_SEED", 0); s != 0 {
		cfg.Seed = s
	}
	if c := getEnvFloat("CRIT_CHANCE", -1); c >= 0 && c <= 1 {
		cfg.CritChance = c
	}
	if m := getEnvFloat("CRIT_MULTIPLIER", 0); m > 0 {
		cfg.CritMultiplier = m
	}
	if w := getEnvFloat("COMBO_WINDOW", 0); w > 0 {
		cfg.ComboWindow = w
	}
	if d := getEnvFloat("COMBAT_EXIT_DELAY", -1); d >= 0 {
		cfg.ExitDelay = d
	}
	if os.Getenv("SIM_DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg
}

// =============================================================================
// PLAYER CONFIGURATION
// =============================================================================

// PlayerConfig holds the starting stats of the player combatant.
type PlayerConfig struct {
	MaxHP       int
	Defense     int
	Level       int
	Speed       float64  // Units per second
	MaxEnergy   float64  // Energy pool for attack costs
	EnergyRegen float64  // Energy per second
	Loadout     []string // Attack IDs the player may use
}

// DefaultPlayer returns the default player configuration.
func DefaultPlayer() PlayerConfig {
	return PlayerConfig{
		MaxHP:       200,
		Defense:     2,
		Level:       1,
		Speed:       6,
		MaxEnergy:   100,
		EnergyRegen: 10,
		Loadout:     []string{"slash", "shock_palm", "ether_lance", "sweep"},
	}
}

// PlayerFromEnv returns player configuration with environment variable overrides.
func PlayerFromEnv() PlayerConfig {
	cfg := DefaultPlayer()

	if hp := getEnvInt("PLAYER_MAX_HP", 0); hp > 0 {
		cfg.MaxHP = hp
	}
	if def := getEnvInt("PLAYER_DEFENSE", -1); def >= 0 {
		cfg.Defense = def
	}
	if lvl := getEnvInt("PLAYER_LEVEL", 0); lvl > 0 {
		cfg.Level = lvl
	}
	if e := getEnvFloat("PLAYER_ENERGY", 0); e > 0 {
		cfg.MaxEnergy = e
	}
	if r := getEnvFloat("PLAYER_ENERGY_REGEN", -1); r >= 0 {
		cfg.EnergyRegen = r
	}
	if l := getEnvList("PLAYER_LOADOUT"); len(l) > 0 {
		cfg.Loadout = l
	}

	return cfg
}

// =============================================================================
// WAVE CONFIGURATION
// =============================================================================

// Point is a 2D coordinate in world units.
type Point struct {
	X, Y float64
}

// WaveConfig holds spawn pacing, population caps and infinite-mode scaling.
type WaveConfig struct {
	MaxAlive           int     // Hard cap on simultaneously alive enemies
	Infinite           bool    // Synthesize waves after the defined ones run out
	AutoStart          bool    // Begin wave 1 when the engine starts
	BetweenWaveDelay   float64 // Seconds between clearance and the next wave
	SpawnPoints        []Point // Round-robin spawn positions
	SpawnRadius        float64 // Random spawn radius around Origin (no spawn points)
	RingRadius         float64 // Ring around the player (no spawn points or radius)
	Origin             Point   // Scheduler origin
	CountIncrement     int     // Extra enemies per synthesized wave
	IntervalDecay      float64 // Spawn interval multiplier per synthesized wave
	MinInterval        float64 // Spawn interval floor
	HealthScalePerWave float64 // Added health multiplier per synthesized wave
	DamageScalePerWave float64 // Added damage multiplier per synthesized wave
}

// DefaultWaves returns the default wave configuration.
func DefaultWaves() WaveConfig {
	return WaveConfig{
		MaxAlive:           4,
		Infinite:           false,
		AutoStart:          true,
		BetweenWaveDelay:   3.0,
		SpawnRadius:        0,
		RingRadius:         12,
		CountIncrement:     2,
		IntervalDecay:      0.9,
		MinInterval:        0.25,
		HealthScalePerWave: 0.15,
		DamageScalePerWave: 0.1,
	}
}

// WavesFromEnv returns wave configuration with environment variable overrides.
func WavesFromEnv() WaveConfig {
	cfg := DefaultWaves()

	if m := getEnvInt("MAX_ENEMIES_ALIVE", 0); m > 0 {
		cfg.MaxAlive = m
	}
	if os.Getenv("INFINITE_WAVES") == "true" {
		cfg.Infinite = true
	}
	if os.Getenv("WAVES_AUTOSTART") == "false" {
		cfg.AutoStart = false
	}
	if d := getEnvFloat("BETWEEN_WAVE_DELAY", -1); d >= 0 {
		cfg.BetweenWaveDelay = d
	}
	if pts := getEnvPoints("SPAWN_POINTS"); len(pts) > 0 {
		cfg.SpawnPoints = pts
	}
	if r := getEnvFloat("SPAWN_RADIUS", -1); r >= 0 {
		cfg.SpawnRadius = r
	}
	if r := getEnvFloat("SPAWN_RING_RADIUS", -1); r >= 0 {
		cfg.RingRadius = r
	}
	if inc := getEnvInt("WAVE_COUNT_INCREMENT", -1); inc >= 0 {
		cfg.CountIncrement = inc
	}
	if d := getEnvFloat("WAVE_INTERVAL_DECAY", 0); d > 0 && d <= 1 {
		cfg.IntervalDecay = d
	}
	if m := getEnvFloat("WAVE_MIN_INTERVAL", -1); m >= 0 {
		cfg.MinInterval = m
	}

	return cfg
}

// =============================================================================
// WORLD CONFIGURATION
// =============================================================================

// WorldConfig holds arena bounds and spatial indexing settings.
// The arena is centered on the origin.
type WorldConfig struct {
	Width       float64
	Height      float64
	CellSize    float64 // Spatial grid cell size (largest common query radius)
	MaxEntities int     // Preallocation hint for the spatial grid
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Width:       200,
		Height:      200,
		CellSize:    10,
		MaxEntities: 256,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int
	EventLogPath  string
	DebugServer   bool
	IntentBuffer  int // Buffered player intents between ticks
	BroadcastRate int // WebSocket state pushes per second
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:          3000,
		EventLogPath:  "events.jsonl",
		DebugServer:   true,
		IntentBuffer:  256,
		BroadcastRate: 10,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if path, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = path
	}
	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.DebugServer = false
	}
	if b := getEnvInt("INTENT_BUFFER", 0); b > 0 {
		cfg.IntentBuffer = b
	}
	if r := getEnvInt("BROADCAST_RATE", 0); r > 0 {
		cfg.BroadcastRate = r
	}

	return cfg
}

// =============================================================================
// CONTENT CONFIGURATION
// =============================================================================

// ContentConfig points at the YAML content directory.
type ContentConfig struct {
	Dir string // Empty = built-in catalog
}

// ContentFromEnv returns content configuration with environment variable overrides.
func ContentFromEnv() ContentConfig {
	return ContentConfig{Dir: os.Getenv("CONTENT_DIR")}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Combat  CombatConfig
	Player  PlayerConfig
	Waves   WaveConfig
	World   WorldConfig
	Server  ServerConfig
	Content ContentConfig
}

// Default returns the complete configuration without environment overrides.
func Default() AppConfig {
	return AppConfig{
		Combat: DefaultCombat(),
		Player: DefaultPlayer(),
		Waves:  DefaultWaves(),
		World:  DefaultWorld(),
		Server: DefaultServer(),
	}
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Combat:  CombatFromEnv(),
		Player:  PlayerFromEnv(),
		Waves:   WavesFromEnv(),
		World:   DefaultWorld(),
		Server:  ServerFromEnv(),
		Content: ContentFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvList parses a comma-separated list, skipping empty items.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvPoints parses "x:y,x:y". Malformed entries are skipped.
func getEnvPoints(key string) []Point {
	var pts []Point
	for _, item := range getEnvList(key) {
		xs, ys, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if errX != nil || errY != nil {
			continue
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts
}
