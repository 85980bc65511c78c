package game

import "math"

// Vec2 is a position or direction in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (a Vec2) Add(b Vec2) Vec2           { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2           { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2      { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Dot(b Vec2) float64        { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Cross(b Vec2) float64      { return a.X*b.Y - a.Y*b.X }
func (a Vec2) Len() float64              { return math.Hypot(a.X, a.Y) }
func (a Vec2) IsZero() bool              { return a.X == 0 && a.Y == 0 }
func (a Vec2) Angle() float64            { return math.Atan2(a.Y, a.X) }
func (a Vec2) DistanceTo(b Vec2) float64 { return b.Sub(a).Len() }

// Norm returns the unit vector, or zero for the zero vector.
func (a Vec2) Norm() Vec2 {
	l := a.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// FromAngle returns the unit vector pointing at angle radians.
func FromAngle(angle float64) Vec2 {
	return Vec2{math.Cos(angle), math.Sin(angle)}
}

// MoveToward steps from a toward b by at most maxStep.
// The second result reports whether b was reached.
func MoveToward(a, b Vec2, maxStep float64) (Vec2, bool) {
	d := b.Sub(a)
	dist := d.Len()
	if dist <= maxStep || dist == 0 {
		return b, true
	}
	return a.Add(d.Scale(maxStep / dist)), false
}

// normalizeAngle normalizes an angle to the range [-π, π].
func normalizeAngle(angle float64) float64 {
	const twoPi = 2 * math.Pi
	angle = math.Mod(angle, twoPi)
	if angle < 0 {
		angle += twoPi
	}
	if angle > math.Pi {
		angle -= twoPi
	}
	return angle
}
