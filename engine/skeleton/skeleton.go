package skeleton

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Skeleton is an ordered bone list with cached world matrices and a captured bind pose.
// Parents always precede their children in the list, so world matrices resolve in a single forward pass.
// World matrices are expressed in the space of the skinned mesh the root is attached to.
type Skeleton struct {
	sizing Sizing
	layout Layout
	bones  []Bone

	world         []mgl32.Mat4
	worldRotation []mgl32.Quat

	bindLocal   []Bone
	inverseBind []mgl32.Mat4
}

func newSkeleton(s Sizing, capacity int) *Skeleton {
	return &Skeleton{
		sizing: s,
		bones:  make([]Bone, 0, capacity),
	}
}

// attach appends a bone under the given parent (-1 for none) and returns its index.
func (sk *Skeleton) attach(b Bone, parent int) int {
	idx := len(sk.bones)
	b.Parent = parent
	sk.bones = append(sk.bones, b)
	if parent >= 0 {
		sk.bones[parent].Children = append(sk.bones[parent].Children, idx)
	}
	return idx
}

// Sizing returns the dimensions the skeleton was built with.
func (sk *Skeleton) Sizing() Sizing {
	return sk.sizing
}

// Layout returns the index of each bone role.
func (sk *Skeleton) Layout() Layout {
	return sk.layout
}

// Len returns the number of bones.
func (sk *Skeleton) Len() int {
	return len(sk.bones)
}

// Bones returns the bone list in creation order. The slice is owned by the skeleton.
func (sk *Skeleton) Bones() []Bone {
	return sk.bones
}

// Bone returns a pointer to the bone at index i so callers (IK solver, panel sliders) can edit it in place.
// Call UpdateWorldMatrices after editing.
//
// Parameters:
//   - i: the bone index
//
// Returns:
//   - *Bone: the bone, or nil when i is out of range
func (sk *Skeleton) Bone(i int) *Bone {
	if i < 0 || i >= len(sk.bones) {
		return nil
	}
	return &sk.bones[i]
}

// IndexOf returns the index of the first bone with the given name, or -1.
func (sk *Skeleton) IndexOf(name string) int {
	for i := range sk.bones {
		if sk.bones[i].Name == name {
			return i
		}
	}
	return -1
}

// UpdateWorldMatrices recomputes every bone's world matrix and world rotation from the local transforms.
func (sk *Skeleton) UpdateWorldMatrices() {
	if len(sk.world) != len(sk.bones) {
		sk.world = make([]mgl32.Mat4, len(sk.bones))
		sk.worldRotation = make([]mgl32.Quat, len(sk.bones))
	}

	for i := range sk.bones {
		b := &sk.bones[i]
		local := b.LocalMatrix()
		if b.Parent < 0 {
			sk.world[i] = local
			sk.worldRotation[i] = b.Rotation.Normalize()
			continue
		}
		sk.world[i] = sk.world[b.Parent].Mul4(local)
		sk.worldRotation[i] = sk.worldRotation[b.Parent].Mul(b.Rotation).Normalize()
	}
}

// UpdateWorldMatrix recomputes the world matrix of bone i and all of its descendants.
// Ancestors are assumed to be up to date.
//
// Parameters:
//   - i: the bone index whose subtree should be refreshed
func (sk *Skeleton) UpdateWorldMatrix(i int) {
	if len(sk.world) != len(sk.bones) {
		sk.UpdateWorldMatrices()
		return
	}
	b := &sk.bones[i]
	local := b.LocalMatrix()
	if b.Parent < 0 {
		sk.world[i] = local
		sk.worldRotation[i] = b.Rotation.Normalize()
	} else {
		sk.world[i] = sk.world[b.Parent].Mul4(local)
		sk.worldRotation[i] = sk.worldRotation[b.Parent].Mul(b.Rotation).Normalize()
	}
	for _, c := range b.Children {
		sk.UpdateWorldMatrix(c)
	}
}

// WorldMatrix returns the cached world matrix of bone i.
func (sk *Skeleton) WorldMatrix(i int) mgl32.Mat4 {
	return sk.world[i]
}

// WorldPosition returns the cached world-space position of bone i.
func (sk *Skeleton) WorldPosition(i int) mgl32.Vec3 {
	return sk.world[i].Col(3).Vec3()
}

// WorldRotation returns the cached world-space orientation of bone i.
func (sk *Skeleton) WorldRotation(i int) mgl32.Quat {
	return sk.worldRotation[i]
}

// Bind captures the current pose as the bind pose: the local transforms are stored for Pose and the inverse of
// every world matrix is stored for skinning. World matrices must be current.
func (sk *Skeleton) Bind() {
	sk.bindLocal = make([]Bone, len(sk.bones))
	sk.inverseBind = make([]mgl32.Mat4, len(sk.bones))
	for i := range sk.bones {
		sk.bindLocal[i] = sk.bones[i].clone()
		sk.inverseBind[i] = sk.world[i].Inv()
	}
}

// InverseBindMatrix returns the inverse of bone i's world matrix at bind time.
func (sk *Skeleton) InverseBindMatrix(i int) mgl32.Mat4 {
	return sk.inverseBind[i]
}

// Pose returns every bone, the target included, to its bind pose and refreshes the world matrices.
//
// Returns:
//   - error: an error if the skeleton has never been bound
func (sk *Skeleton) Pose() error {
	if len(sk.bindLocal) != len(sk.bones) {
		return fmt.Errorf("skeleton has no bind pose")
	}
	for i := range sk.bones {
		sk.bones[i].Position = sk.bindLocal[i].Position
		sk.bones[i].Rotation = sk.bindLocal[i].Rotation
		sk.bones[i].Scale = sk.bindLocal[i].Scale
	}
	sk.UpdateWorldMatrices()
	return nil
}

// SkinMatrices writes world * inverseBind for every bone into dst, growing it when too short.
// At bind pose every entry is the identity.
//
// Parameters:
//   - dst: destination slice, reused between frames
//
// Returns:
//   - []mgl32.Mat4: the filled slice (len == Len())
func (sk *Skeleton) SkinMatrices(dst []mgl32.Mat4) []mgl32.Mat4 {
	if cap(dst) < len(sk.bones) {
		dst = make([]mgl32.Mat4, len(sk.bones))
	}
	dst = dst[:len(sk.bones)]
	for i := range sk.bones {
		dst[i] = sk.world[i].Mul4(sk.inverseBind[i])
	}
	return dst
}

// Clone returns a deep copy of the skeleton including its bind pose.
func (sk *Skeleton) Clone() *Skeleton {
	c := &Skeleton{
		sizing:        sk.sizing,
		layout:        sk.layout,
		bones:         make([]Bone, len(sk.bones)),
		world:         append([]mgl32.Mat4(nil), sk.world...),
		worldRotation: append([]mgl32.Quat(nil), sk.worldRotation...),
		inverseBind:   append([]mgl32.Mat4(nil), sk.inverseBind...),
	}
	for i := range sk.bones {
		c.bones[i] = sk.bones[i].clone()
	}
	if sk.bindLocal != nil {
		c.bindLocal = make([]Bone, len(sk.bindLocal))
		for i := range sk.bindLocal {
			c.bindLocal[i] = sk.bindLocal[i].clone()
		}
	}
	return c
}

// Equal reports whether two skeletons have the same sizing, layout, and bone hierarchy with identical local
// transforms.
func (sk *Skeleton) Equal(other *Skeleton) bool {
	if other == nil || sk.sizing != other.sizing || sk.layout != other.layout || len(sk.bones) != len(other.bones) {
		return false
	}
	for i := range sk.bones {
		a, b := &sk.bones[i], &other.bones[i]
		if a.Name != b.Name || a.Parent != b.Parent || len(a.Children) != len(b.Children) {
			return false
		}
		for j := range a.Children {
			if a.Children[j] != b.Children[j] {
				return false
			}
		}
		if a.Position != b.Position || a.Rotation != b.Rotation || a.Scale != b.Scale {
			return false
		}
	}
	return true
}
