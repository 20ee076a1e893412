package demo

import (
	"fmt"

	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
	"github.com/mo-kasiri/Three-IK/engine/skin"
	"github.com/mo-kasiri/Three-IK/export"
)

// Rig is the bone chain, the open cylinder around it and the per-vertex binding between the two.
type Rig struct {
	Skeleton   *skeleton.Skeleton
	Geometry   *geometry.Geometry
	Influences []skin.Influence
}

// BuildRig builds the chain for sizing and binds an open cylinder of the chain's height to it. The cylinder has
// one height segment per bone segment, and at least one.
//
// Parameters:
//   - sizing: segment height and count
//   - radius: cylinder radius
//   - radialSegments: cylinder subdivisions around its axis
//
// Returns:
//   - Rig: the bound rig
//   - error: a sizing or binding error
func BuildRig(sizing skeleton.Sizing, radius float32, radialSegments int) (Rig, error) {
	sk, err := skeleton.BuildChain(sizing)
	if err != nil {
		return Rig{}, err
	}
	geom := geometry.NewCylinder(radius, radius, sizing.Height(), radialSegments, max(sizing.SegmentCount, 1), true)

	binder, err := skin.NewBinder(sk)
	if err != nil {
		return Rig{}, err
	}
	influences, err := binder.Bind(geom.Positions)
	if err != nil {
		return Rig{}, fmt.Errorf("bind cylinder: %w", err)
	}
	return Rig{Skeleton: sk, Geometry: geom, Influences: influences}, nil
}

// Export writes the rig as binary glTF to path.
func (r Rig) Export(path string) error {
	return export.SaveGLB(path, r.Skeleton, r.Geometry, r.Influences)
}
