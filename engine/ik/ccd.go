package ik

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
)

// degenerateLength is the shortest effector or target offset a link can still aim with.
const degenerateLength = 1e-6

// minRotation is the smallest per-link angle worth applying, in radians.
const minRotation = 1e-5

// Solver moves bones of a skeleton so that each chain's effector approaches its target.
type Solver interface {
	// Update runs the configured passes for every chain and leaves the skeleton's world matrices current.
	Update()

	// Chains returns the chains the solver was built with.
	Chains() []Chain
}

type ccdSolver struct {
	skeleton *skeleton.Skeleton
	chains   []Chain
}

var _ Solver = &ccdSolver{}

// NewCCDSolver creates a cyclic coordinate descent solver over the given skeleton.
//
// Parameters:
//   - sk: the skeleton whose bones are rotated in place
//   - chains: the IK chains, solved in order on every Update
//
// Returns:
//   - Solver: the solver
//   - error: ErrInvalidChain if any chain references a bone the skeleton does not have
func NewCCDSolver(sk *skeleton.Skeleton, chains ...Chain) (Solver, error) {
	for i := range chains {
		if err := chains[i].Validate(sk.Len()); err != nil {
			return nil, fmt.Errorf("chain %d: %w", i, err)
		}
	}
	return &ccdSolver{
		skeleton: sk,
		chains:   append([]Chain(nil), chains...),
	}, nil
}

func (s *ccdSolver) Chains() []Chain {
	return s.chains
}

func (s *ccdSolver) Update() {
	for i := range s.chains {
		s.solve(&s.chains[i])
	}
}

// solve runs CCD on one chain. Each link is rotated in its own frame so that the direction to the effector lines
// up with the direction to the target, then its subtree is refreshed before the next link is considered.
func (s *ccdSolver) solve(c *Chain) {
	sk := s.skeleton
	targetPos := sk.WorldPosition(c.Target)

	for range c.iterations() {
		rotated := false
		for _, l := range c.Links {
			bone := sk.Bone(l.Index)
			linkPos := sk.WorldPosition(l.Index)
			invLinkQ := sk.WorldRotation(l.Index).Inverse()

			effectorVec := invLinkQ.Rotate(sk.WorldPosition(c.Effector).Sub(linkPos))
			targetVec := invLinkQ.Rotate(targetPos.Sub(linkPos))
			if effectorVec.Len() < degenerateLength || targetVec.Len() < degenerateLength {
				continue
			}
			effectorVec = effectorVec.Normalize()
			targetVec = targetVec.Normalize()

			angle := float32(math.Acos(float64(mgl32.Clamp(targetVec.Dot(effectorVec), -1, 1))))
			if angle < minRotation {
				continue
			}
			if c.MinAngle != nil && angle < *c.MinAngle {
				angle = *c.MinAngle
			}
			if c.MaxAngle != nil && angle > *c.MaxAngle {
				angle = *c.MaxAngle
			}

			axis := effectorVec.Cross(targetVec)
			if axis.Len() < degenerateLength {
				// Opposite directions: any perpendicular axis works.
				axis = perpendicular(effectorVec)
			}
			bone.Rotation = bone.Rotation.Mul(mgl32.QuatRotate(angle, axis.Normalize())).Normalize()

			if l.RotationMin != nil || l.RotationMax != nil {
				e := eulerXYZ(bone.Rotation)
				if l.RotationMin != nil {
					e = mgl32.Vec3{max(e[0], l.RotationMin[0]), max(e[1], l.RotationMin[1]), max(e[2], l.RotationMin[2])}
				}
				if l.RotationMax != nil {
					e = mgl32.Vec3{min(e[0], l.RotationMax[0]), min(e[1], l.RotationMax[1]), min(e[2], l.RotationMax[2])}
				}
				bone.Rotation = quatFromEulerXYZ(e)
			}

			sk.UpdateWorldMatrix(l.Index)
			rotated = true
		}
		if !rotated {
			break
		}
	}
}

// perpendicular returns a unit vector orthogonal to v.
func perpendicular(v mgl32.Vec3) mgl32.Vec3 {
	p := v.Cross(mgl32.Vec3{1, 0, 0})
	if p.Len() < degenerateLength {
		p = v.Cross(mgl32.Vec3{0, 1, 0})
	}
	return p.Normalize()
}

// eulerXYZ decomposes a rotation into intrinsic X, then Y, then Z angles.
func eulerXYZ(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()
	m13 := mgl32.Clamp(m.At(0, 2), -1, 1)
	y := float32(math.Asin(float64(m13)))
	if math.Abs(float64(m13)) < 0.9999999 {
		x := float32(math.Atan2(float64(-m.At(1, 2)), float64(m.At(2, 2))))
		z := float32(math.Atan2(float64(-m.At(0, 1)), float64(m.At(0, 0))))
		return mgl32.Vec3{x, y, z}
	}
	x := float32(math.Atan2(float64(m.At(2, 1)), float64(m.At(1, 1))))
	return mgl32.Vec3{x, y, 0}
}

// quatFromEulerXYZ is the inverse of eulerXYZ.
func quatFromEulerXYZ(e mgl32.Vec3) mgl32.Quat {
	s1, c1 := math.Sincos(float64(e[0]) / 2)
	s2, c2 := math.Sincos(float64(e[1]) / 2)
	s3, c3 := math.Sincos(float64(e[2]) / 2)
	return mgl32.Quat{
		W: float32(c1*c2*c3 - s1*s2*s3),
		V: mgl32.Vec3{
			float32(s1*c2*c3 + c1*s2*s3),
			float32(c1*s2*c3 - s1*c2*s3),
			float32(c1*c2*s3 + s1*s2*c3),
		},
	}
}
