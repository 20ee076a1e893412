package skeleton

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrInvalidSegmentHeight is returned when the segment height is not a positive finite number.
	ErrInvalidSegmentHeight = errors.New("segment height must be a positive finite number")

	// ErrInvalidSegmentCount is returned when the segment count is negative.
	ErrInvalidSegmentCount = errors.New("segment count must not be negative")
)

// Sizing holds the immutable dimensions of a bone chain.
type Sizing struct {
	// SegmentHeight is the vertical distance between two consecutive body bones.
	SegmentHeight float32 `yaml:"segment_height" json:"segmentHeight"`

	// SegmentCount is the number of body segments above segment 0.
	SegmentCount int `yaml:"segment_count" json:"segmentCount"`
}

// Height returns the total chain height (SegmentHeight * SegmentCount).
func (s Sizing) Height() float32 {
	return s.SegmentHeight * float32(s.SegmentCount)
}

// HalfHeight returns half of the total chain height.
func (s Sizing) HalfHeight() float32 {
	return s.Height() * 0.5
}

// Validate checks that the sizing describes a buildable chain.
//
// Returns:
//   - error: ErrInvalidSegmentHeight or ErrInvalidSegmentCount (wrapped), or nil when valid
func (s Sizing) Validate() error {
	h := float64(s.SegmentHeight)
	if !(h > 0) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidSegmentHeight, s.SegmentHeight)
	}
	if s.SegmentCount < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSegmentCount, s.SegmentCount)
	}
	return nil
}

// Layout records where the builder placed each role in the bone list.
// Consumers read indices from here rather than assuming the append order of the builder.
type Layout struct {
	// Root is the index of the root bone (always 0).
	Root int

	// FirstSegment is the index of body segment 0.
	FirstSegment int

	// LastSegment is the index of the topmost body segment.
	LastSegment int

	// Target is the index of the IK target bone, parented to the root.
	Target int
}

// Segment returns the bone index of body segment i (0 = first segment).
//
// Parameters:
//   - i: the body segment number
//
// Returns:
//   - int: the bone index of that segment
func (l Layout) Segment(i int) int {
	return l.FirstSegment + i
}

// BuildChain builds the bone chain for the given sizing.
//
// The resulting list is ordered root, segment 0, segment 1..SegmentCount, target, for a total of SegmentCount+3
// bones. The root sits at -HalfHeight so the chain is centred on the mesh origin, every segment above segment 0 is
// offset by SegmentHeight from the previous one, and the target hangs off the root one segment above the top of
// the chain. The returned skeleton already has its bind pose captured.
//
// Parameters:
//   - s: the chain dimensions
//
// Returns:
//   - *Skeleton: the bound skeleton
//   - error: a sizing validation error
func BuildChain(s Sizing) (*Skeleton, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build bone chain: %w", err)
	}

	sk := newSkeleton(s, s.SegmentCount+3)

	root := sk.attach(newBone("root", mgl32.Vec3{0, -s.HalfHeight(), 0}), -1)

	prev := sk.attach(newBone("", mgl32.Vec3{0, 0, 0}), root)
	first := prev

	for i := 1; i <= s.SegmentCount; i++ {
		prev = sk.attach(newBone(fmt.Sprintf("bone%d", i), mgl32.Vec3{0, s.SegmentHeight, 0}), prev)
	}

	target := sk.attach(newBone("target", mgl32.Vec3{0, s.Height() + s.SegmentHeight, 0}), root)

	sk.layout = Layout{
		Root:         root,
		FirstSegment: first,
		LastSegment:  prev,
		Target:       target,
	}

	sk.UpdateWorldMatrices()
	sk.Bind()
	return sk, nil
}
