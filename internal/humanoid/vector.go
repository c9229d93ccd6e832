package humanoid

import "math"

// Vector2D is a 2D point or direction in viewport pixel space.
type Vector2D struct {
	X float64
	Y float64
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2D) Mul(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Mag returns the euclidean length of the vector.
func (v Vector2D) Mag() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the euclidean distance between two points.
func (v Vector2D) Dist(o Vector2D) float64 {
	return v.Sub(o).Mag()
}

// Normalize returns a unit vector in the same direction. The zero vector
// normalizes to itself.
func (v Vector2D) Normalize() Vector2D {
	m := v.Mag()
	if m == 0 {
		return Vector2D{}
	}
	return Vector2D{X: v.X / m, Y: v.Y / m}
}
