package systems

import "math"

// Vec2 is a 2D vector in simulation space (y up).
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// LengthSq returns the squared length (avoid sqrt in hot path).
func (v Vec2) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the Euclidean length.
func (v Vec2) Length() float32 {
	return sqrtf(v.X*v.X + v.Y*v.Y)
}

// sqrtf is a float32 square root.
func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// floorToInt floors a float32 to an int32 cell coordinate.
func floorToInt(x float32) int32 {
	return int32(math.Floor(float64(x)))
}

// nextPow2 returns the smallest power of two >= n (n >= 1).
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
