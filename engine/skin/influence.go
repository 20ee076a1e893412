package skin

const (
	// MaxInfluences is the number of bone slots every vertex carries, matching the 4-wide JOINTS/WEIGHTS layout
	// that skinning pipelines expect.
	MaxInfluences = 4

	// ActiveInfluences is the number of slots the chain binder fills; the remaining slots stay zero.
	ActiveInfluences = 2
)

// Influence is the fixed-capacity set of bones that deform a single vertex.
// Only the first Active slots are meaningful; the rest are zero index with zero weight.
type Influence struct {
	Indices [MaxInfluences]uint16
	Weights [MaxInfluences]float32
	Active  int
}

// Sum returns the total weight of the active slots.
func (in Influence) Sum() float32 {
	var s float32
	for i := 0; i < in.Active; i++ {
		s += in.Weights[i]
	}
	return s
}

// Flatten interleaves a list of influences into the per-vertex 4-wide index and weight arrays consumed by GPU
// vertex layouts and glTF JOINTS_0/WEIGHTS_0 accessors.
//
// Parameters:
//   - influences: one entry per vertex
//
// Returns:
//   - [][4]uint16: the joint indices per vertex
//   - [][4]float32: the joint weights per vertex
func Flatten(influences []Influence) ([][MaxInfluences]uint16, [][MaxInfluences]float32) {
	joints := make([][MaxInfluences]uint16, len(influences))
	weights := make([][MaxInfluences]float32, len(influences))
	for i, in := range influences {
		joints[i] = in.Indices
		weights[i] = in.Weights
	}
	return joints, weights
}
