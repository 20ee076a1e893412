package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NewCylinder builds a cylinder around the Y axis centred on the origin.
//
// Vertices of the side are generated row by row from the top (+height/2) to the bottom, each row holding
// radialSegments+1 vertices with the seam duplicated. Caps follow the side when openEnded is false.
//
// Parameters:
//   - radiusTop: radius at +height/2
//   - radiusBottom: radius at -height/2
//   - height: total height
//   - radialSegments: segments around the circumference (min 3)
//   - heightSegments: rows of faces along the height (min 1)
//   - openEnded: true to omit the caps
//
// Returns:
//   - *Geometry: the cylinder
func NewCylinder(radiusTop, radiusBottom, height float32, radialSegments, heightSegments int, openEnded bool) *Geometry {
	radialSegments = max(radialSegments, 3)
	heightSegments = max(heightSegments, 1)

	g := &Geometry{}
	half := height / 2
	var slope float32
	if height != 0 {
		slope = (radiusBottom - radiusTop) / height
	}

	grid := make([][]uint32, heightSegments+1)
	for y := 0; y <= heightSegments; y++ {
		v := float32(y) / float32(heightSegments)
		radius := v*(radiusBottom-radiusTop) + radiusTop
		row := make([]uint32, radialSegments+1)
		for x := 0; x <= radialSegments; x++ {
			u := float64(x) / float64(radialSegments)
			sin, cos := math.Sincos(u * 2 * math.Pi)
			sinT, cosT := float32(sin), float32(cos)

			row[x] = uint32(len(g.Positions))
			g.Positions = append(g.Positions, mgl32.Vec3{radius * sinT, -v*height + half, radius * cosT})
			g.Normals = append(g.Normals, mgl32.Vec3{sinT, slope, cosT}.Normalize())
		}
		grid[y] = row
	}

	for x := 0; x < radialSegments; x++ {
		for y := 0; y < heightSegments; y++ {
			a := grid[y][x]
			b := grid[y+1][x]
			c := grid[y+1][x+1]
			d := grid[y][x+1]
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}

	if !openEnded {
		if radiusTop > 0 {
			g.addCap(radiusTop, half, radialSegments, true)
		}
		if radiusBottom > 0 {
			g.addCap(radiusBottom, -half, radialSegments, false)
		}
	}
	return g
}

// addCap appends a disc at height y: one centre vertex per radial segment, then the rim.
func (g *Geometry) addCap(radius, y float32, radialSegments int, top bool) {
	sign := float32(-1)
	if top {
		sign = 1
	}
	centerStart := uint32(len(g.Positions))
	for x := 1; x <= radialSegments; x++ {
		g.Positions = append(g.Positions, mgl32.Vec3{0, y, 0})
		g.Normals = append(g.Normals, mgl32.Vec3{0, sign, 0})
	}
	rimStart := uint32(len(g.Positions))
	for x := 0; x <= radialSegments; x++ {
		sin, cos := math.Sincos(float64(x) / float64(radialSegments) * 2 * math.Pi)
		g.Positions = append(g.Positions, mgl32.Vec3{radius * float32(sin), y, radius * float32(cos)})
		g.Normals = append(g.Normals, mgl32.Vec3{0, sign, 0})
	}
	for x := uint32(0); x < uint32(radialSegments); x++ {
		c := centerStart + x
		i := rimStart + x
		if top {
			g.Indices = append(g.Indices, i, i+1, c)
		} else {
			g.Indices = append(g.Indices, i+1, i, c)
		}
	}
}

// NewSphere builds a UV sphere centred on the origin with poles on the Y axis.
//
// Parameters:
//   - radius: sphere radius
//   - widthSegments: segments around the equator (min 3)
//   - heightSegments: segments from pole to pole (min 2)
//
// Returns:
//   - *Geometry: the sphere
func NewSphere(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	g := &Geometry{}
	grid := make([][]uint32, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		sinTheta, cosTheta := math.Sincos(v * math.Pi)
		row := make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			sinPhi, cosPhi := math.Sincos(u * 2 * math.Pi)
			p := mgl32.Vec3{
				float32(-cosPhi * sinTheta),
				float32(cosTheta),
				float32(sinPhi * sinTheta),
			}
			row[ix] = uint32(len(g.Positions))
			g.Positions = append(g.Positions, p.Mul(radius))
			g.Normals = append(g.Normals, p)
		}
		grid[iy] = row
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// NewPlane builds a single-quad plane in the XY plane facing +Z.
//
// Parameters:
//   - width: extent along X
//   - height: extent along Y
//
// Returns:
//   - *Geometry: the plane
func NewPlane(width, height float32) *Geometry {
	hw, hh := width/2, height/2
	return &Geometry{
		Positions: []mgl32.Vec3{
			{-hw, hh, 0}, {hw, hh, 0},
			{-hw, -hh, 0}, {hw, -hh, 0},
		},
		Normals: []mgl32.Vec3{
			{0, 0, 1}, {0, 0, 1},
			{0, 0, 1}, {0, 0, 1},
		},
		Indices: []uint32{0, 2, 1, 2, 3, 1},
	}
}
