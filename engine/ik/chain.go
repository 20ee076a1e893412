package ik

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
)

// ErrInvalidChain is returned when a chain references bones that do not exist or cannot be solved.
var ErrInvalidChain = errors.New("invalid IK chain")

// Link is one bone the solver is allowed to rotate.
type Link struct {
	// Index is the bone index in the skeleton.
	Index int

	// RotationMin and RotationMax clamp the bone's local Euler XYZ rotation in radians. Nil means unlimited.
	RotationMin *mgl32.Vec3
	RotationMax *mgl32.Vec3
}

// Chain describes one IK problem: move Effector onto Target by rotating Links in order.
type Chain struct {
	Target   int
	Effector int
	Links    []Link

	// Iterations is the number of CCD passes per Update. Zero means one.
	Iterations int

	// MinAngle and MaxAngle clamp the rotation applied to a single link per step. Nil means unclamped.
	MinAngle *float32
	MaxAngle *float32
}

// DefaultChain returns the chain used by the skinned cylinder demo: the last segment chases the target bone while
// the segment below it, then the last segment itself, then the rest down to segment 0, are rotated.
// For four segments this is target 6, effector 5, links [4, 5, 3, 2, 1].
//
// Parameters:
//   - layout: the bone layout of the chain
//
// Returns:
//   - Chain: the chain with all rotation limits unset
func DefaultChain(layout skeleton.Layout) Chain {
	c := Chain{
		Target:   layout.Target,
		Effector: layout.LastSegment,
	}
	below := layout.LastSegment - 1
	if below >= layout.FirstSegment {
		c.Links = append(c.Links, Link{Index: below})
	}
	c.Links = append(c.Links, Link{Index: layout.LastSegment})
	for i := below - 1; i >= layout.FirstSegment; i-- {
		c.Links = append(c.Links, Link{Index: i})
	}
	return c
}

// iterations returns the effective pass count.
func (c *Chain) iterations() int {
	if c.Iterations <= 0 {
		return 1
	}
	return c.Iterations
}

// Validate checks every index against a bone list of the given length.
//
// Parameters:
//   - boneCount: the number of bones in the skeleton
//
// Returns:
//   - error: ErrInvalidChain (wrapped) describing the first problem found, or nil
func (c *Chain) Validate(boneCount int) error {
	inRange := func(i int) bool { return i >= 0 && i < boneCount }

	if !inRange(c.Target) {
		return fmt.Errorf("%w: target %d outside [0, %d)", ErrInvalidChain, c.Target, boneCount)
	}
	if !inRange(c.Effector) {
		return fmt.Errorf("%w: effector %d outside [0, %d)", ErrInvalidChain, c.Effector, boneCount)
	}
	if len(c.Links) == 0 {
		return fmt.Errorf("%w: no links", ErrInvalidChain)
	}
	for i, l := range c.Links {
		if !inRange(l.Index) {
			return fmt.Errorf("%w: link %d index %d outside [0, %d)", ErrInvalidChain, i, l.Index, boneCount)
		}
		if l.Index == c.Target {
			return fmt.Errorf("%w: link %d is the target bone", ErrInvalidChain, i)
		}
	}
	if c.MinAngle != nil && c.MaxAngle != nil && *c.MinAngle > *c.MaxAngle {
		return fmt.Errorf("%w: min angle %v above max angle %v", ErrInvalidChain, *c.MinAngle, *c.MaxAngle)
	}
	return nil
}
