package skin

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
)

var (
	// ErrIndexOutOfRange is returned when a vertex lies outside the chain height, which would map it to a bone index
	// outside [0, segmentCount+1] or onto the stretch above the last segment.
	ErrIndexOutOfRange = errors.New("vertex maps outside the bone chain")

	// ErrChainCoupling is returned when the bone at the highest index the binder can emit is missing or is not the
	// last body segment.
	ErrChainCoupling = errors.New("bone chain does not provide the top skin index")
)

// boundaryTolerance is the relative slack allowed when snapping vertices that sit on the chain ends.
const boundaryTolerance = 1e-6

// Rig is the part of a skeleton the binder needs.
type Rig interface {
	Sizing() skeleton.Sizing
	Layout() skeleton.Layout
	Len() int
}

// Binder assigns bone influences to mesh vertices by their height along the chain axis.
type Binder struct {
	sizing   skeleton.Sizing
	topIndex int
}

// NewBinder creates a binder for the given rig.
//
// Every vertex is weighted between the bone at floor(y/segmentHeight) and the next one, so the highest index the
// binder emits is segmentCount+1. That slot must be the last body segment of the chain and never the IK target,
// which is parented to the root and would drag the top ring with it. NewBinder checks this before any vertex is
// bound and fails with ErrChainCoupling if it does not hold.
//
// Parameters:
//   - rig: the skeleton (or anything reporting its sizing and layout)
//
// Returns:
//   - *Binder: the binder
//   - error: a sizing validation error or ErrChainCoupling
func NewBinder(rig Rig) (*Binder, error) {
	s := rig.Sizing()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create skin binder: %w", err)
	}

	top := s.SegmentCount + 1
	if top >= rig.Len() {
		return nil, fmt.Errorf("%w: index %d requested but the chain has %d bones", ErrChainCoupling, top, rig.Len())
	}
	if l := rig.Layout(); l.LastSegment != top || l.Target == top {
		return nil, fmt.Errorf("%w: index %d is expected to be the last segment, layout is %+v", ErrChainCoupling, top, l)
	}
	if top > math.MaxUint16 {
		return nil, fmt.Errorf("%w: index %d does not fit a 16-bit joint index", ErrIndexOutOfRange, top)
	}

	return &Binder{sizing: s, topIndex: top}, nil
}

// TopIndex returns the highest bone index the binder can emit.
func (b *Binder) TopIndex() int {
	return b.topIndex
}

// BindVertex computes the influence of a single vertex in mesh space.
//
// The vertex height is remapped into [0, height], the lower bone is floor(y/segmentHeight), and the upper bone
// receives the fractional position inside that segment. Heights within a tiny tolerance of either end are snapped
// onto it so float noise from geometry generation does not reject the end rings. Anything further out on either
// side is rejected.
//
// Parameters:
//   - p: the vertex position
//
// Returns:
//   - Influence: two active slots with weights summing to 1
//   - error: ErrIndexOutOfRange if the vertex lies below 0 or above height, beyond the tolerance
func (b *Binder) BindVertex(p mgl32.Vec3) (Influence, error) {
	segH := float64(b.sizing.SegmentHeight)
	height := float64(b.sizing.Height())
	slack := boundaryTolerance * math.Max(height, segH)

	y := float64(p.Y()) + float64(b.sizing.HalfHeight())
	switch {
	case y < 0 && y > -slack:
		y = 0
	case y > height && y < height+slack:
		y = height
	case y > height:
		return Influence{}, fmt.Errorf("%w: y=%v is above the top of the chain at %v",
			ErrIndexOutOfRange, p.Y(), b.sizing.HalfHeight())
	}

	lowF := math.Floor(y / segH)
	if math.IsNaN(lowF) || lowF < 0 || lowF+1 > float64(b.topIndex) {
		return Influence{}, fmt.Errorf("%w: y=%v gives indices (%v, %v), valid range is [0, %d]",
			ErrIndexOutOfRange, p.Y(), lowF, lowF+1, b.topIndex)
	}
	low := int(lowF)

	w := float32((y - lowF*segH) / segH)
	if w < 0 {
		w = 0
	} else if w >= 1 {
		w = 0
		low++
		if low+1 > b.topIndex {
			return Influence{}, fmt.Errorf("%w: y=%v rounds past the top of the chain", ErrIndexOutOfRange, p.Y())
		}
	}

	return Influence{
		Indices: [MaxInfluences]uint16{uint16(low), uint16(low + 1), 0, 0},
		Weights: [MaxInfluences]float32{1 - w, w, 0, 0},
		Active:  ActiveInfluences,
	}, nil
}

// Bind computes the influence of every vertex. It stops at the first vertex outside the chain.
//
// Parameters:
//   - positions: vertex positions in mesh space
//
// Returns:
//   - []Influence: one entry per vertex, in the same order
//   - error: ErrIndexOutOfRange wrapped with the offending vertex index
func (b *Binder) Bind(positions []mgl32.Vec3) ([]Influence, error) {
	out := make([]Influence, len(positions))
	for i, p := range positions {
		in, err := b.BindVertex(p)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		out[i] = in
	}
	return out, nil
}
