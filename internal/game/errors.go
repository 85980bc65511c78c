package game

import "errors"

// Content errors surface at load/validation time.
var (
	ErrUnknownAttack     = errors.New("unknown attack")
	ErrUnknownEffect     = errors.New("unknown status effect")
	ErrUnknownArchetype  = errors.New("unknown enemy archetype")
	ErrInvalidDefinition = errors.New("invalid definition")
)

// Intent errors are returned to whoever submitted the player action.
var (
	ErrPlayerDead      = errors.New("player is dead")
	ErrPlayerStunned   = errors.New("player is stunned")
	ErrCasting         = errors.New("another attack is being cast")
	ErrOnCooldown      = errors.New("attack on cooldown")
	ErrNotEnoughEnergy = errors.New("not enough energy")
	ErrNotInLoadout    = errors.New("attack not in loadout")
	ErrAutomaticAttack = errors.New("attack triggers automatically")
	ErrInvalidWave     = errors.New("invalid wave number")
)
