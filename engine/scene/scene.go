package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mo-kasiri/Three-IK/engine/camera"
	"github.com/mo-kasiri/Three-IK/engine/game_object"
	"github.com/mo-kasiri/Three-IK/engine/light"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/bind_group_provider"
)

var (
	// ErrNoModel is returned by Add for an object without a Model or Material.
	ErrNoModel = errors.New("game object has no model or material")
	// ErrDuplicateID is returned by Add when the object ID is already registered.
	ErrDuplicateID = errors.New("duplicate game object id")
)

// Scene holds the objects, lights and debug line sets drawn with one Camera and Renderer.
// Scenes can be hot-swapped via the Active flag to switch between different views.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// AddLight adds a light. The frame uniform carries the first enabled ambient and the first enabled point light.
	AddLight(l light.Light)

	// Lights returns the scene's lights in insertion order.
	Lights() []light.Light

	// Add uploads the object's model, creates its object uniform and registers it. Objects without an ID are
	// assigned the next free one.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	//   - error: ErrNoModel, ErrDuplicateID or a GPU resource error
	Add(obj game_object.GameObject) (uint64, error)

	// Get retrieves a GameObject by its ID, or nil.
	Get(id uint64) game_object.GameObject

	// Remove unregisters a GameObject and releases its object uniform. The model is left to its owner.
	Remove(id uint64)

	// Count returns the number of registered GameObjects.
	Count() int

	// AddLines creates a line set drawn with the lines pipeline after every object.
	//
	// Parameters:
	//   - name: debug label
	//   - capacity: maximum number of vertices (two per segment)
	//
	// Returns:
	//   - LineSet: the line set, empty until its first Update
	//   - error: a buffer creation error
	AddLines(name string, capacity int) (LineSet, error)

	// Prepare writes the frame uniform, every enabled object's uniform and the writes staged by their animators.
	// Must be called before DrawCalls in the same frame.
	Prepare()

	// DrawCalls issues one draw per enabled object, then one per non-empty line set. Objects whose animator has a
	// bone palette are drawn with the skinned variant of their material's pipeline and the palette as group 2.
	// Must be called within a BeginFrame/EndFrame block on the renderer.
	//
	// Returns:
	//   - error: the first draw error
	DrawCalls() error

	// Release releases the scene's uniforms, line sets, object models and animators.
	Release()
}

type scene struct {
	mu *sync.Mutex

	name     string
	active   bool
	camera   camera.Camera
	renderer renderer.Renderer

	lights   []light.Light
	objects  map[uint64]game_object.GameObject
	order    []uint64
	nextID   uint64
	lineSets []*lineSet

	frameProvider bind_group_provider.BindGroupProvider
}

var _ Scene = &scene{}

// NewScene creates a scene and its frame uniform.
// Panics if the frame bind group cannot be created.
//
// Parameters:
//   - name: the scene identifier
//   - cam: the camera whose view-projection is written each frame
//   - r: the renderer owning the GPU resources
//   - options: functional options for the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.Mutex{},
		name:     name,
		active:   true,
		camera:   cam,
		renderer: r,
		objects:  make(map[uint64]game_object.GameObject),
		nextID:   1,
	}

	s.frameProvider = bind_group_provider.NewBindGroupProvider(name + " Frame")
	if err := r.InitBindGroup(s.frameProvider, renderer.FrameBindGroupLayout(), nil); err != nil {
		panic(fmt.Sprintf("scene %s: frame bind group: %v", name, err))
	}

	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lights)
}

func (s *scene) Add(obj game_object.GameObject) (uint64, error) {
	if obj.Model() == nil || obj.Material() == nil {
		return 0, fmt.Errorf("%s: %w", obj.Name(), ErrNoModel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if obj.ID() == 0 {
		obj.SetID(s.nextID)
	}
	id := obj.ID()
	if _, exists := s.objects[id]; exists {
		return 0, fmt.Errorf("%s: id %d: %w", obj.Name(), id, ErrDuplicateID)
	}
	s.nextID = max(s.nextID, id+1)

	if err := obj.Model().Init(s.renderer); err != nil {
		return 0, fmt.Errorf("add %s: %w", obj.Name(), err)
	}
	if anim := obj.Animator(); anim != nil {
		if err := anim.Init(s.renderer); err != nil {
			return 0, fmt.Errorf("add %s: %w", obj.Name(), err)
		}
	}
	if obj.ObjectProvider() == nil {
		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s Object %d", obj.Name(), id))
		if err := s.renderer.InitBindGroup(p, renderer.ObjectBindGroupLayout(), nil); err != nil {
			return 0, fmt.Errorf("add %s: %w", obj.Name(), err)
		}
		obj.SetObjectProvider(p)
	}

	s.objects[id] = obj
	s.order = append(s.order, id)
	return id, nil
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.objects[id]
	if !exists {
		return
	}
	if p := obj.ObjectProvider(); p != nil {
		p.Release()
		obj.SetObjectProvider(nil)
	}
	delete(s.objects, id)
	s.order = slices.DeleteFunc(s.order, func(v uint64) bool { return v == id })
}

func (s *scene) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *scene) AddLines(name string, capacity int) (LineSet, error) {
	ls, err := newLineSet(s.renderer, name, capacity)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.lineSets = append(s.lineSets, ls)
	s.mu.Unlock()
	return ls, nil
}

// BuildFrameUniform assembles the group 0 uniform from a camera and a light list.
// The first enabled ambient and point lights are used; a missing light contributes nothing.
//
// Parameters:
//   - cam: the camera
//   - lights: candidate lights
//
// Returns:
//   - renderer.GPUFrameUniform: the frame uniform
func BuildFrameUniform(cam camera.Camera, lights []light.Light) renderer.GPUFrameUniform {
	u := renderer.GPUFrameUniform{
		ViewProjection: cam.ViewProjectionMatrix(),
		CameraPosition: cam.Position(),
		Ambient:        light.GPULight{LightType: uint32(light.LightTypeAmbient)},
		Point:          light.GPULight{LightType: uint32(light.LightTypePoint)},
	}
	var haveAmbient, havePoint bool
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		switch l.Type() {
		case light.LightTypeAmbient:
			if !haveAmbient {
				u.Ambient, haveAmbient = l.GPU(), true
			}
		case light.LightTypePoint:
			if !havePoint {
				u.Point, havePoint = l.GPU(), true
			}
		}
	}
	return u
}

func (s *scene) Prepare() {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame := BuildFrameUniform(s.camera, s.lights)
	writes := make([]bind_group_provider.BufferWrite, 0, len(s.order)+1)
	writes = append(writes, bind_group_provider.BufferWrite{Provider: s.frameProvider, Binding: 0, Data: frame.Marshal()})

	for _, id := range s.order {
		obj := s.objects[id]
		if !obj.Enabled() {
			continue
		}
		u := obj.Material().ObjectUniform(obj.ModelMatrix())
		writes = append(writes, bind_group_provider.BufferWrite{Provider: obj.ObjectProvider(), Binding: 0, Data: u.Marshal()})
		if anim := obj.Animator(); anim != nil {
			writes = append(writes, anim.StagedWriteData()...)
		}
	}
	s.renderer.WriteBuffers(writes)
}

func (s *scene) DrawCalls() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		obj := s.objects[id]
		if !obj.Enabled() {
			continue
		}
		mat := obj.Material()
		mesh := obj.Model().MeshProvider(mat.Wireframe())
		key := mat.PipelineKey()
		groups := []bind_group_provider.BindGroupProvider{s.frameProvider, obj.ObjectProvider()}
		if anim := obj.Animator(); anim != nil {
			if palette := anim.PaletteProvider(); palette != nil {
				key = renderer.SkinnedPipelineKey(key)
				groups = append(groups, palette)
			}
		}
		if err := s.renderer.DrawCall(key, mesh, 1, groups); err != nil {
			return fmt.Errorf("draw %s: %w", obj.Name(), err)
		}
	}

	for _, ls := range s.lineSets {
		if ls.Count() == 0 {
			continue
		}
		groups := []bind_group_provider.BindGroupProvider{s.frameProvider}
		if err := s.renderer.DrawCall(renderer.PipelineLines, ls.provider, 1, groups); err != nil {
			return fmt.Errorf("draw %s: %w", ls.name, err)
		}
	}
	return nil
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		obj := s.objects[id]
		if p := obj.ObjectProvider(); p != nil {
			p.Release()
			obj.SetObjectProvider(nil)
		}
		if anim := obj.Animator(); anim != nil {
			anim.Release()
		}
		obj.Model().Release()
	}
	clear(s.objects)
	s.order = nil

	for _, ls := range s.lineSets {
		ls.Release()
	}
	s.lineSets = nil
	s.frameProvider.Release()
}
