package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bone is a single node of a skeleton hierarchy.
// All transforms are local to the parent bone; the root's parent is the skinned mesh itself.
type Bone struct {
	// Name is the bone's identifier. Body segment 0 is left unnamed.
	Name string

	// Parent is the index of the parent bone in the owning skeleton, -1 for the root.
	Parent int

	// Children are the indices of the direct children, in attachment order.
	Children []int

	// Position is the local offset from the parent bone.
	Position mgl32.Vec3

	// Rotation is the local orientation relative to the parent bone.
	Rotation mgl32.Quat

	// Scale is the local scale factor along each axis.
	Scale mgl32.Vec3
}

// newBone creates an unparented bone at rest (identity rotation, unit scale) with the given local offset.
func newBone(name string, position mgl32.Vec3) Bone {
	return Bone{
		Name:     name,
		Parent:   -1,
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// LocalMatrix composes the bone's local translation, rotation, and scale into a single matrix (T * R * S).
//
// Returns:
//   - mgl32.Mat4: the bone's transform relative to its parent
func (b *Bone) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(b.Position.X(), b.Position.Y(), b.Position.Z())
	s := mgl32.Scale3D(b.Scale.X(), b.Scale.Y(), b.Scale.Z())
	return t.Mul4(b.Rotation.Normalize().Mat4()).Mul4(s)
}

// clone returns a copy of the bone that shares no memory with the original.
func (b Bone) clone() Bone {
	children := make([]int, len(b.Children))
	copy(children, b.Children)
	b.Children = children
	return b
}
