package geom

import "math"

// Epsilon is the default tolerance used by the NearlyEqual helpers.
const Epsilon = 1e-6

// Vec3 is a 3D vector in world units.
type Vec3 struct {
	X, Y, Z float64
}

func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Length() float64      { return math.Sqrt(v.Dot(v)) }
func (v Vec3) IsZero() bool         { return v.X == 0 && v.Y == 0 && v.Z == 0 }

func (v Vec3) NearlyEqual(o Vec3, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol && math.Abs(v.Z-o.Z) <= tol
}

// Quat is a rotation quaternion. The zero value is not a valid rotation;
// use IdentityQuat.
type Quat struct {
	X, Y, Z, W float64
}

func IdentityQuat() Quat { return Quat{W: 1} }

// Normalized returns q scaled to unit length. A degenerate quaternion
// normalizes to the identity.
func (q Quat) Normalized() Quat {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n < Epsilon {
		return IdentityQuat()
	}
	return Quat{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// NearlyEqual treats q and -q as the same rotation.
func (q Quat) NearlyEqual(o Quat, tol float64) bool {
	same := math.Abs(q.X-o.X) <= tol && math.Abs(q.Y-o.Y) <= tol &&
		math.Abs(q.Z-o.Z) <= tol && math.Abs(q.W-o.W) <= tol
	if same {
		return true
	}
	return math.Abs(q.X+o.X) <= tol && math.Abs(q.Y+o.Y) <= tol &&
		math.Abs(q.Z+o.Z) <= tol && math.Abs(q.W+o.W) <= tol
}

// Transform is a world-space location, rotation and scale. It is both the
// world object's transform and the store-side transform component.
type Transform struct {
	Location Vec3
	Rotation Quat
	Scale    Vec3
}

// Identity returns the transform at the origin with no rotation and unit scale.
func Identity() Transform {
	return Transform{Rotation: IdentityQuat(), Scale: Vec3{1, 1, 1}}
}

// At returns the identity transform moved to loc.
func At(loc Vec3) Transform {
	t := Identity()
	t.Location = loc
	return t
}

// Translated returns t moved by d.
func (t Transform) Translated(d Vec3) Transform {
	t.Location = t.Location.Add(d)
	return t
}

func (t Transform) NearlyEqual(o Transform, tol float64) bool {
	return t.Location.NearlyEqual(o.Location, tol) &&
		t.Rotation.NearlyEqual(o.Rotation, tol) &&
		t.Scale.NearlyEqual(o.Scale, tol)
}

// Equal reports whether t and o match within Epsilon.
func (t Transform) Equal(o Transform) bool {
	return t.NearlyEqual(o, Epsilon)
}
