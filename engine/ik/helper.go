package ik

import (
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
)

var (
	targetMarkerColor   = geometry.HexColor(0xff8888)
	effectorMarkerColor = geometry.HexColor(0x88ff88)
	linkMarkerColor     = geometry.HexColor(0x8888ff)
	chainLineColor      = geometry.HexColor(0xff0000)
)

// Helper draws the IK chains of a solver as debug lines: a marker on the target, the effector and every link,
// and a polyline running from the effector through the links in solve order.
type Helper struct {
	skeleton   *skeleton.Skeleton
	chains     []Chain
	markerSize float32
}

// NewHelper creates a helper for the given chains.
//
// Parameters:
//   - sk: the skeleton the chains index into
//   - markerSize: half-size of the cross drawn at each bone
//   - chains: the chains to draw
//
// Returns:
//   - *Helper: the helper
func NewHelper(sk *skeleton.Skeleton, markerSize float32, chains ...Chain) *Helper {
	return &Helper{skeleton: sk, chains: chains, markerSize: markerSize}
}

// AppendLines appends the current chain state in mesh space to lines. World matrices must be current.
func (h *Helper) AppendLines(lines *geometry.Lines) {
	sk := h.skeleton
	for _, c := range h.chains {
		lines.Cross(sk.WorldPosition(c.Target), h.markerSize, targetMarkerColor)
		lines.Cross(sk.WorldPosition(c.Effector), h.markerSize, effectorMarkerColor)

		prev := sk.WorldPosition(c.Effector)
		for _, l := range c.Links {
			p := sk.WorldPosition(l.Index)
			lines.Cross(p, h.markerSize, linkMarkerColor)
			lines.Segment(prev, p, chainLineColor, chainLineColor)
			prev = p
		}
	}
}
