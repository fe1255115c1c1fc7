// Package geom provides the 3D primitives shared by the signing space
// engine: points, vectors, extents, and axis-aligned volumes.
//
// Coordinates are signer-centered: +X right, +Y up, +Z toward the
// addressee. All units are relative to the neutral signing space before
// scaling.
package geom

import "math"

// Tolerance is the epsilon used by overlap and containment comparisons.
// Distances within Tolerance of a boundary count as touching, not
// overlapping.
const Tolerance = 1e-6

// Point3D is a position in signing space coordinates.
type Point3D struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// Sub returns the vector from other to p.
func (p Point3D) Sub(other Point3D) Vector3D {
	return Vector3D{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Add returns the point displaced by v.
func (p Point3D) Add(v Vector3D) Point3D {
	return Point3D{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// Distance returns the Euclidean distance between two points.
func (p Point3D) Distance(other Point3D) float64 {
	return p.Sub(other).Length()
}

// Vector3D is a displacement in signing space coordinates.
type Vector3D struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// Length returns the Euclidean length of the vector.
func (v Vector3D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Scale returns the vector multiplied by f.
func (v Vector3D) Scale(f float64) Vector3D {
	return Vector3D{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Normalize returns the unit vector in v's direction. A near-zero vector
// has no direction, so the +X axis is returned; displacement along a
// deterministic axis beats dividing by zero when two centers coincide.
func (v Vector3D) Normalize() Vector3D {
	length := v.Length()
	if length < Tolerance {
		return Vector3D{X: 1}
	}
	return v.Scale(1 / length)
}

// Dims are the extents of a volume along each axis.
type Dims struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Depth  float64 `json:"depth" bson:"depth"`
}

// Area3D is an axis-aligned volume centered at a point.
type Area3D struct {
	Center Point3D `json:"center" bson:"center"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Depth  float64 `json:"depth" bson:"depth"`
}

// Cube returns a volume with equal extents on every axis.
func Cube(center Point3D, side float64) Area3D {
	return Area3D{Center: center, Width: side, Height: side, Depth: side}
}

// HalfExtent returns half the largest dimension: the radius of the
// bounding sphere used by center-distance overlap checks.
func (a Area3D) HalfExtent() float64 {
	side := a.Width
	if a.Height > side {
		side = a.Height
	}
	if a.Depth > side {
		side = a.Depth
	}
	return side / 2
}

// Contains reports whether p lies inside the volume. Boundary points
// within Tolerance count as inside.
func (a Area3D) Contains(p Point3D) bool {
	return math.Abs(p.X-a.Center.X) <= a.Width/2+Tolerance &&
		math.Abs(p.Y-a.Center.Y) <= a.Height/2+Tolerance &&
		math.Abs(p.Z-a.Center.Z) <= a.Depth/2+Tolerance
}

// Overlaps reports whether two volumes encroach on each other, using the
// bounding-sphere approximation: centers closer than the sum of half
// extents. Touching volumes do not overlap.
func (a Area3D) Overlaps(b Area3D) bool {
	dist := a.Center.Distance(b.Center)
	return dist < a.HalfExtent()+b.HalfExtent()-Tolerance
}

// Clamp01 clamps v to the closed interval [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
