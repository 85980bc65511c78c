package game

import "math"

// Hitbox is the resolved collision shape of one attack use.
// All checks are O(1) angle/distance math.
type Hitbox struct {
	Shape     Shape
	Origin    Vec2
	Forward   Vec2    // Unit facing of the attacker
	Range     float64 // Reach along Forward for ShapeNone
	Radius    float64 // Circle/cone radius
	HalfAngle float64 // Cone half-angle in radians
}

// NewHitbox builds the hitbox for attack used by attacker.
func NewHitbox(attack *AttackDefinition, attacker *Combatant) Hitbox {
	fwd := attacker.Facing.Norm()
	if fwd.IsZero() {
		fwd = Vec2{X: 1}
	}
	return Hitbox{
		Shape:     attack.Shape,
		Origin:    attacker.Pos,
		Forward:   fwd,
		Range:     attack.Range,
		Radius:    attack.Reach(),
		HalfAngle: attack.ConeAngle / 2,
	}
}

// Check tests target against the hitbox. hitRadius is the target's
// tolerance perpendicular to the facing ray for ShapeNone.
// It returns whether the target is hit and the sort key (distance along
// the ray for ShapeNone, straight-line distance otherwise).
func (h Hitbox) Check(target Vec2, hitRadius float64) (bool, float64) {
	d := target.Sub(h.Origin)
	distance := d.Len()

	switch h.Shape {
	case ShapeNone:
		along := d.Dot(h.Forward)
		if along < 0 || along > h.Range {
			return false, along
		}
		perp := math.Abs(d.Cross(h.Forward))
		return perp <= hitRadius, along

	case ShapeCircle:
		return distance <= h.Radius, distance

	case ShapeCone:
		if distance > h.Radius {
			return false, distance
		}
		if distance == 0 {
			// Overlapping the attacker counts as inside any cone
			return true, distance
		}
		diff := normalizeAngle(d.Angle() - h.Forward.Angle())
		return math.Abs(diff) <= h.HalfAngle+timeEpsilon, distance
	}

	return false, distance
}
