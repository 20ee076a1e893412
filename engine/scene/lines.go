package scene

import (
	"fmt"
	"sync"

	"github.com/mo-kasiri/Three-IK/common"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
)

// LineSet is a dynamic line list re-uploaded whenever its segments change.
type LineSet interface {
	// Name returns the debug label.
	Name() string

	// Capacity returns the maximum number of vertices.
	Capacity() int

	// Count returns the number of vertices drawn.
	Count() int

	// Update uploads the vertices and sets the draw count.
	//
	// Parameters:
	//   - vertices: line-list vertices, two per segment
	//
	// Returns:
	//   - error: an error if vertices exceed the capacity
	Update(vertices []geometry.LineVertex) error

	// Release releases the vertex buffer.
	Release()
}

type lineSet struct {
	mu       *sync.Mutex
	name     string
	renderer renderer.Renderer
	provider bind_group_provider.BindGroupProvider
	capacity int
}

var _ LineSet = &lineSet{}

func newLineSet(r renderer.Renderer, name string, capacity int) (*lineSet, error) {
	p := bind_group_provider.NewBindGroupProvider(name)
	if err := r.InitVertexBuffer(p, uint64(capacity*renderer.LineVertexStride)); err != nil {
		return nil, fmt.Errorf("line set %s: %w", name, err)
	}
	return &lineSet{
		mu:       &sync.Mutex{},
		name:     name,
		renderer: r,
		provider: p,
		capacity: capacity,
	}, nil
}

func (l *lineSet) Name() string {
	return l.name
}

func (l *lineSet) Capacity() int {
	return l.capacity
}

func (l *lineSet) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.provider.VertexCount()
}

func (l *lineSet) Update(vertices []geometry.LineVertex) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(vertices) > l.capacity {
		return fmt.Errorf("line set %s: %d vertices, capacity %d: %w", l.name, len(vertices), l.capacity, renderer.ErrVertexOverflow)
	}
	if len(vertices) > 0 {
		if err := l.renderer.WriteVertexBuffer(l.provider, common.SliceToBytes(vertices)); err != nil {
			return err
		}
	}
	l.provider.SetVertexCount(len(vertices))
	return nil
}

func (l *lineSet) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.provider.Release()
}
