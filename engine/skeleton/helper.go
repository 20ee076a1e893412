package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
)

var (
	helperParentColor = mgl32.Vec3{0, 0, 1}
	helperChildColor  = mgl32.Vec3{0, 1, 0}
)

// AppendHelperLines appends one segment per bone joining it to its parent bone, blue at the parent and green at
// the child. The root is skipped since its parent is the mesh. World matrices must be current.
//
// Parameters:
//   - lines: the destination line list
func (sk *Skeleton) AppendHelperLines(lines *geometry.Lines) {
	for i := range sk.bones {
		p := sk.bones[i].Parent
		if p < 0 {
			continue
		}
		lines.Segment(sk.WorldPosition(p), sk.WorldPosition(i), helperParentColor, helperChildColor)
	}
}
