// Package content loads combat definitions from YAML files into an
// immutable game.Catalog.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"fusion-arena/internal/game"
	"fusion-arena/internal/logger"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// File names inside a content directory.
const (
	EffectsFileName = "effects.yaml"
	AttacksFileName = "attacks.yaml"
	EnemiesFileName = "enemies.yaml"
	WavesFileName   = "waves.yaml"
	ComboFileName   = "combo.yaml"
)

func loadYAML(fsys fs.FS, name string, out any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("content: %s: %w", name, err)
	}
	return nil
}

// Load reads every content file from dir. An empty dir yields the built-in
// catalog.
func Load(dir string) (*game.Catalog, error) {
	if dir == "" {
		logger.For("content").Info("no content directory configured, using built-in catalog")
		return game.DefaultCatalog(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: %s is not a directory", dir)
	}
	cat, err := LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	logger.For("content").WithFields(logrus.Fields{
		"dir":        filepath.Clean(dir),
		"attacks":    len(cat.Attacks),
		"effects":    len(cat.Effects),
		"archetypes": len(cat.Archetypes),
		"waves":      len(cat.Waves),
	}).Info("content loaded")
	return cat, nil
}

// LoadFS reads content from fsys. effects, attacks and enemies are required;
// waves and combo are optional.
func LoadFS(fsys fs.FS) (*game.Catalog, error) {
	var ef EffectsFile
	var af AttacksFile
	var nf EnemiesFile
	var wf WavesFile
	var cf ComboFile

	if err := loadYAML(fsys, EffectsFileName, &ef); err != nil {
		return nil, err
	}
	if err := loadYAML(fsys, AttacksFileName, &af); err != nil {
		return nil, err
	}
	if err := loadYAML(fsys, EnemiesFileName, &nf); err != nil {
		return nil, err
	}
	if err := loadYAML(fsys, WavesFileName, &wf); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err := loadYAML(fsys, ComboFileName, &cf); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return Build(ef, af, nf, wf, cf)
}

// Build converts parsed records into a validated catalog.
func Build(ef EffectsFile, af AttacksFile, nf EnemiesFile, wf WavesFile, cf ComboFile) (*game.Catalog, error) {
	cat := &game.Catalog{
		Attacks:          make(map[string]*game.AttackDefinition, len(af.Attacks)),
		Effects:          make(map[string]*game.StatusEffectDefinition, len(ef.Effects)),
		Archetypes:       make(map[string]*game.EnemyArchetype, len(nf.Archetypes)),
		DefaultArchetype: nf.Default,
		Combo: game.ComboConfig{
			MarkerA: cf.MarkerA,
			MarkerB: cf.MarkerB,
			Fusion:  cf.Fusion,
			Window:  cf.Window,
		},
	}

	for _, r := range ef.Effects {
		if r.ID == "" {
			return nil, fmt.Errorf("content: effect: %w: missing id", game.ErrInvalidDefinition)
		}
		if _, dup := cat.Effects[r.ID]; dup {
			return nil, fmt.Errorf("content: effect %q: %w: duplicate id", r.ID, game.ErrInvalidDefinition)
		}
		cat.Effects[r.ID] = &game.StatusEffectDefinition{
			ID:            r.ID,
			Name:          orDefault(r.Name, r.ID),
			Duration:      r.Duration,
			TickInterval:  r.TickInterval,
			DamagePerTick: r.DamagePerTick,
			SlowPercent:   r.SlowPercent,
			Stun:          r.Stun,
			VFX:           r.VFX,
			SFX:           r.SFX,
		}
	}

	for _, r := range af.Attacks {
		a, err := buildAttack(r, cat.Effects)
		if err != nil {
			return nil, err
		}
		if _, dup := cat.Attacks[a.ID]; dup {
			return nil, fmt.Errorf("content: attack %q: %w: duplicate id", a.ID, game.ErrInvalidDefinition)
		}
		cat.Attacks[a.ID] = a
	}

	for _, r := range nf.Archetypes {
		if r.ID == "" {
			return nil, fmt.Errorf("content: archetype: %w: missing id", game.ErrInvalidDefinition)
		}
		arch := &game.EnemyArchetype{
			ID:                   r.ID,
			Name:                 orDefault(r.Name, r.ID),
			MaxHP:                r.MaxHP,
			Defense:              r.Defense,
			Level:                max(r.Level, 1),
			Speed:                r.Speed,
			Radius:               r.Radius,
			DetectionRange:       r.DetectionRange,
			AttackRange:          r.AttackRange,
			AttackCooldown:       r.AttackCooldown,
			AttackID:             r.Attack,
			PatrolWait:           r.PatrolWait,
			ExpReward:            r.ExpReward,
			CurrencyReward:       r.CurrencyReward,
			BossHealthMultiplier: r.BossHealthMultiplier,
		}
		if arch.BossHealthMultiplier <= 0 {
			arch.BossHealthMultiplier = 3
		}
		for _, off := range r.Patrol {
			arch.PatrolOffsets = append(arch.PatrolOffsets, game.Vec2{X: off[0], Y: off[1]})
		}
		cat.Archetypes[arch.ID] = arch
	}
	if cat.DefaultArchetype == "" && len(nf.Archetypes) > 0 {
		cat.DefaultArchetype = nf.Archetypes[0].ID
	}

	for i, r := range wf.Waves {
		cat.Waves = append(cat.Waves, game.WaveDefinition{
			Index:          i + 1,
			EnemyCount:     r.EnemyCount,
			SpawnInterval:  r.SpawnInterval,
			Archetype:      r.Archetype,
			ExpReward:      r.ExpReward,
			CurrencyReward: r.CurrencyReward,
			Boss:           r.Boss,
		})
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	return cat, nil
}

func buildAttack(r AttackRecord, effects map[string]*game.StatusEffectDefinition) (*game.AttackDefinition, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("content: attack: %w: missing id", game.ErrInvalidDefinition)
	}
	shape := game.Shape(orDefault(r.Shape, string(game.ShapeNone)))
	a := &game.AttackDefinition{
		ID:           r.ID,
		Name:         orDefault(r.Name, r.ID),
		BaseDamage:   r.BaseDamage,
		Category:     orDefault(r.Category, game.CategoryPhysical),
		Range:        r.Range,
		Cooldown:     r.Cooldown,
		CastDelay:    r.CastDelay,
		AnimDuration: r.AnimDuration,
		EnergyCost:   r.EnergyCost,
		Shape:        shape,
		Radius:       r.Radius,
		ConeAngle:    r.ConeAngle * math.Pi / 180,
		VFX:          r.VFX,
		SFX:          r.SFX,
	}
	for _, ec := range r.Effects {
		def, ok := effects[ec.Effect]
		if !ok {
			return nil, fmt.Errorf("content: attack %q: %w: %q", r.ID, game.ErrUnknownEffect, ec.Effect)
		}
		a.Effects = append(a.Effects, game.EffectChance{Effect: def, Chance: ec.Chance})
	}
	return a, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
