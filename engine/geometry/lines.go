package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LineVertex is one end of a debug line segment.
type LineVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Lines accumulates line-list vertices (two per segment) for debug helpers.
type Lines struct {
	Vertices []LineVertex
}

// Reset clears the accumulated segments while keeping the allocation.
func (l *Lines) Reset() {
	l.Vertices = l.Vertices[:0]
}

// Segment appends a segment with a colour at each end.
func (l *Lines) Segment(from, to, fromColor, toColor mgl32.Vec3) {
	l.Vertices = append(l.Vertices, LineVertex{from, fromColor}, LineVertex{to, toColor})
}

// Cross appends a three-axis marker of half-size s centred on p.
func (l *Lines) Cross(p mgl32.Vec3, s float32, color mgl32.Vec3) {
	l.Segment(p.Sub(mgl32.Vec3{s, 0, 0}), p.Add(mgl32.Vec3{s, 0, 0}), color, color)
	l.Segment(p.Sub(mgl32.Vec3{0, s, 0}), p.Add(mgl32.Vec3{0, s, 0}), color, color)
	l.Segment(p.Sub(mgl32.Vec3{0, 0, s}), p.Add(mgl32.Vec3{0, 0, s}), color, color)
}

// Transform moves every vertex by m.
func (l *Lines) Transform(m mgl32.Mat4) {
	for i := range l.Vertices {
		l.Vertices[i].Position = mgl32.TransformCoordinate(l.Vertices[i].Position, m)
	}
}

// HexColor converts a 0xRRGGBB value to a linear 0..1 RGB vector.
func HexColor(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}
