package skin

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
)

// DeformerOption is a functional option for configuring a Deformer.
type DeformerOption func(*deformerImpl)

// WithWorkerCount sets how many pool workers split the vertex range. Values <= 0 use GOMAXPROCS.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - DeformerOption: option function to apply
func WithWorkerCount(n int) DeformerOption {
	return func(d *deformerImpl) {
		d.workers = n
	}
}

// WithChunkSize sets the number of vertices skinned per task. Values <= 0 keep the default of 256.
//
// Parameters:
//   - n: vertices per task
//
// Returns:
//   - DeformerOption: option function to apply
func WithChunkSize(n int) DeformerOption {
	return func(d *deformerImpl) {
		if n > 0 {
			d.chunkSize = n
		}
	}
}

type deformerImpl struct {
	restPositions []mgl32.Vec3
	restNormals   []mgl32.Vec3
	influences    []Influence
	maxIndex      int

	positions []mgl32.Vec3
	normals   []mgl32.Vec3

	workers   int
	chunkSize int
	pool      worker.DynamicWorkerPool
	closeOnce sync.Once
}

// Deformer applies linear blend skinning to a bound mesh on the CPU.
type Deformer interface {
	// Deform skins every vertex with the given per-bone skin matrices (world * inverse bind).
	// Results are available through Positions and Normals until the next call.
	//
	// Parameters:
	//   - skinMatrices: one matrix per bone, indexed by the influence indices
	//
	// Returns:
	//   - error: an error if an influence references a bone with no matrix
	Deform(skinMatrices []mgl32.Mat4) error

	// Positions returns the skinned positions from the last Deform call.
	//
	// Returns:
	//   - []mgl32.Vec3: skinned positions, owned by the deformer
	Positions() []mgl32.Vec3

	// Normals returns the skinned, renormalized normals from the last Deform call.
	//
	// Returns:
	//   - []mgl32.Vec3: skinned normals, owned by the deformer
	Normals() []mgl32.Vec3

	// Close stops the worker pool. The deformer must not be used afterwards.
	Close()
}

var _ Deformer = &deformerImpl{}

// NewDeformer creates a deformer for a mesh in its bind pose.
// Before the first Deform call the outputs hold the rest pose.
//
// Parameters:
//   - positions: rest positions in mesh space
//   - normals: rest normals (may be nil)
//   - influences: one influence per vertex
//   - options: functional options
//
// Returns:
//   - Deformer: the deformer
//   - error: an error when the attribute lengths disagree
func NewDeformer(positions, normals []mgl32.Vec3, influences []Influence, options ...DeformerOption) (Deformer, error) {
	if len(influences) != len(positions) {
		return nil, fmt.Errorf("influence count %d does not match vertex count %d", len(influences), len(positions))
	}
	if normals != nil && len(normals) != len(positions) {
		return nil, fmt.Errorf("normal count %d does not match vertex count %d", len(normals), len(positions))
	}

	d := &deformerImpl{
		restPositions: positions,
		restNormals:   normals,
		influences:    influences,
		maxIndex:      -1,
		positions:     append([]mgl32.Vec3(nil), positions...),
		chunkSize:     256,
	}
	if normals != nil {
		d.normals = append([]mgl32.Vec3(nil), normals...)
	}
	for _, in := range influences {
		for k := 0; k < in.Active; k++ {
			if int(in.Indices[k]) > d.maxIndex {
				d.maxIndex = int(in.Indices[k])
			}
		}
	}

	for _, option := range options {
		option(d)
	}
	if d.workers <= 0 {
		d.workers = runtime.GOMAXPROCS(0)
	}

	chunks := (len(positions) + d.chunkSize - 1) / d.chunkSize
	d.pool = worker.NewDynamicWorkerPool(d.workers, max(chunks, 1), time.Second)
	return d, nil
}

func (d *deformerImpl) Deform(skinMatrices []mgl32.Mat4) error {
	if d.maxIndex >= len(skinMatrices) {
		return fmt.Errorf("influences reference bone %d but only %d skin matrices were given", d.maxIndex, len(skinMatrices))
	}

	// The pool's Wait blocks until workers go idle, so each frame joins on its own WaitGroup.
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(d.restPositions); start += d.chunkSize {
		end := min(start+d.chunkSize, len(d.restPositions))
		wg.Add(1)
		s, e := start, end
		d.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				d.deformRange(s, e, skinMatrices)
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
	return nil
}

// deformRange skins vertices [start, end). Ranges never overlap so no locking is needed.
func (d *deformerImpl) deformRange(start, end int, skinMatrices []mgl32.Mat4) {
	for i := start; i < end; i++ {
		in := d.influences[i]
		rest := d.restPositions[i].Vec4(1)

		var p mgl32.Vec4
		var n mgl32.Vec3
		for k := 0; k < in.Active; k++ {
			w := in.Weights[k]
			if w == 0 {
				continue
			}
			m := skinMatrices[in.Indices[k]]
			p = p.Add(m.Mul4x1(rest).Mul(w))
			if d.restNormals != nil {
				n = n.Add(m.Mat3().Mul3x1(d.restNormals[i]).Mul(w))
			}
		}
		d.positions[i] = p.Vec3()
		if d.restNormals != nil {
			if n.Len() > 1e-8 {
				n = n.Normalize()
			}
			d.normals[i] = n
		}
	}
}

func (d *deformerImpl) Positions() []mgl32.Vec3 {
	return d.positions
}

func (d *deformerImpl) Normals() []mgl32.Vec3 {
	return d.normals
}

func (d *deformerImpl) Close() {
	d.closeOnce.Do(func() {
		d.pool.Stop()
	})
}
