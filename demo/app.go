// Package demo builds the skinned cylinder scene and runs its per-frame IK, skinning and helper updates.
package demo

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mo-kasiri/Three-IK/engine/camera"
	"github.com/mo-kasiri/Three-IK/engine/game_object"
	"github.com/mo-kasiri/Three-IK/engine/geometry"
	"github.com/mo-kasiri/Three-IK/engine/ik"
	"github.com/mo-kasiri/Three-IK/engine/light"
	"github.com/mo-kasiri/Three-IK/engine/model"
	"github.com/mo-kasiri/Three-IK/engine/profiler"
	"github.com/mo-kasiri/Three-IK/engine/renderer"
	"github.com/mo-kasiri/Three-IK/engine/renderer/animator"
	"github.com/mo-kasiri/Three-IK/engine/renderer/material"
	"github.com/mo-kasiri/Three-IK/engine/scene"
	"github.com/mo-kasiri/Three-IK/engine/skeleton"
	"github.com/mo-kasiri/Three-IK/engine/skin"
)

// AppOption is a functional option for configuring an App.
type AppOption func(*App)

// WithCylinder sets the radius and radial segment count of the skinned cylinder. The defaults are 5 and 8.
func WithCylinder(radius float32, radialSegments int) AppOption {
	return func(a *App) {
		a.radius = radius
		a.radialSegments = radialSegments
	}
}

// WithIterations sets the number of CCD passes per solver update. The default is 1.
func WithIterations(n int) AppOption {
	return func(a *App) {
		a.iterations = n
	}
}

// WithAutoUpdate sets the initial State.AutoUpdate returned by NewState. The default is true.
func WithAutoUpdate(enabled bool) AppOption {
	return func(a *App) {
		a.autoUpdate = enabled
	}
}

// WithSkinning selects where the cylinder is skinned. The default is animator.BackendTypeGPU.
func WithSkinning(backend animator.AnimatorBackendType) AppOption {
	return func(a *App) {
		a.skinning = backend
	}
}

// WithWorkers configures the CPU skinning worker pool. It has no effect with GPU skinning.
//
// Parameters:
//   - count: number of workers, 0 for GOMAXPROCS
//   - chunkSize: vertices per task, 0 for the default
//
// Returns:
//   - AppOption: option function to apply
func WithWorkers(count, chunkSize int) AppOption {
	return func(a *App) {
		a.deformerOptions = append(a.deformerOptions, skin.WithWorkerCount(count), skin.WithChunkSize(chunkSize))
	}
}

// WithProfiler records "ik" and "skin" timings on p.
func WithProfiler(p *profiler.Profiler) AppOption {
	return func(a *App) {
		a.profiler = p
	}
}

// WithSnapshotSink registers fn to receive a Snapshot whenever the published state changes.
// fn is called on the frame goroutine and must not block.
func WithSnapshotSink(fn func(Snapshot)) AppOption {
	return func(a *App) {
		a.publish = fn
	}
}

// WithExportPath sets the file written by ActionExport without a path.
func WithExportPath(path string) AppOption {
	return func(a *App) {
		a.exportPath = path
	}
}

// WithBoneDump writes a listing of the bone list to w once the chain is built.
func WithBoneDump(w io.Writer) AppOption {
	return func(a *App) {
		a.dump = w
	}
}

// App owns the demo scene: lights, a sphere and a floor plane sharing one material, the cylinder skinned to the
// bone chain, and the skeleton and IK helper lines.
type App struct {
	mu      *sync.Mutex
	pending []Action

	renderer renderer.Renderer
	scene    scene.Scene

	skeleton   *skeleton.Skeleton
	geometry   *geometry.Geometry
	influences []skin.Influence
	animator   animator.Animator
	solver     ik.Solver
	ikHelper   *ik.Helper

	material   material.Material
	cylinder   game_object.GameObject
	boneLines  scene.LineSet
	chainLines scene.LineSet

	lines        geometry.Lines
	skinMatrices []mgl32.Mat4

	profiler  *profiler.Profiler
	publish   func(Snapshot)
	last      Snapshot
	published bool

	radius          float32
	radialSegments  int
	iterations      int
	autoUpdate      bool
	exportPath      string
	dump            io.Writer
	skinning        animator.AnimatorBackendType
	deformerOptions []skin.DeformerOption
}

// NewApp builds the bone chain and binds the cylinder to it, then creates the scene on r.
//
// Parameters:
//   - sizing: segment height and count of the chain
//   - r: the renderer, its pipelines registered
//   - cam: the scene camera
//   - options: functional options
//
// Returns:
//   - *App: the app
//   - error: a sizing, binding or GPU resource error
func NewApp(sizing skeleton.Sizing, r renderer.Renderer, cam camera.Camera, options ...AppOption) (*App, error) {
	a := &App{
		mu:             &sync.Mutex{},
		renderer:       r,
		radius:         5,
		radialSegments: 8,
		iterations:     1,
		autoUpdate:     true,
		exportPath:     "three-ik.glb",
		skinning:       animator.BackendTypeGPU,
	}
	for _, opt := range options {
		opt(a)
	}

	if err := a.buildRig(sizing); err != nil {
		return nil, err
	}
	if err := a.buildScene(cam); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) buildRig(sizing skeleton.Sizing) error {
	rig, err := BuildRig(sizing, a.radius, a.radialSegments)
	if err != nil {
		return err
	}
	sk := rig.Skeleton
	if a.dump != nil {
		sk.Dump(a.dump)
	}

	chain := ik.DefaultChain(sk.Layout())
	chain.Iterations = a.iterations
	solver, err := ik.NewCCDSolver(sk, chain)
	if err != nil {
		return err
	}

	a.skeleton = sk
	a.geometry = rig.Geometry
	a.influences = rig.Influences
	a.solver = solver
	a.ikHelper = ik.NewHelper(sk, sizing.SegmentHeight/8, chain)
	return nil
}

func (a *App) buildScene(cam camera.Camera) error {
	ambient := light.NewAmbientLight(0xffffff, 0.5)
	point := light.NewPointLight(0xff9000, 0.5, 10, 2)
	point.SetPosition(mgl32.Vec3{1, -0.5, 1})
	a.scene = scene.NewScene("Three IK", cam, a.renderer, scene.WithLights(ambient, point))

	a.material = material.NewMaterial(
		material.WithName("Standard"),
		material.WithRoughness(0.4),
		material.WithWireframe(true),
	)

	sphere := game_object.NewGameObject(
		game_object.WithName("Sphere"),
		game_object.WithModel(model.NewModel(model.WithName("Sphere"), model.WithGeometry(geometry.NewSphere(0.5, 32, 32)))),
		game_object.WithMaterial(a.material),
		game_object.WithPosition(mgl32.Vec3{-1.5, 0, 0}),
	)
	plane := game_object.NewGameObject(
		game_object.WithName("Plane"),
		game_object.WithModel(model.NewModel(model.WithName("Plane"), model.WithGeometry(geometry.NewPlane(5, 5)))),
		game_object.WithMaterial(a.material),
		game_object.WithPosition(mgl32.Vec3{0, -0.65, 0}),
		game_object.WithRotation(mgl32.Vec3{-math.Pi / 2, 0, 0}),
	)
	anim, err := a.newCylinderAnimator()
	if err != nil {
		a.scene.Release()
		return err
	}
	a.animator = anim
	a.cylinder = game_object.NewGameObject(
		game_object.WithName("Skinned Cylinder"),
		game_object.WithModel(anim.Model()),
		game_object.WithMaterial(a.material),
		game_object.WithAnimator(anim),
	)
	for _, obj := range []game_object.GameObject{sphere, plane, a.cylinder} {
		if _, err := a.scene.Add(obj); err != nil {
			anim.Release()
			a.scene.Release()
			return err
		}
	}

	if a.boneLines, err = a.scene.AddLines("Skeleton Helper", 2*a.skeleton.Len()); err != nil {
		a.scene.Release()
		return err
	}
	if a.chainLines, err = a.scene.AddLines("IK Helper", chainLineCapacity(a.solver.Chains())); err != nil {
		a.scene.Release()
		return err
	}
	return nil
}

// newCylinderAnimator creates the cylinder model in the layout its skinning backend needs: joint influences for
// the skinned pipelines, or a dynamic vertex buffer rewritten by a deformer.
func (a *App) newCylinderAnimator() (animator.Animator, error) {
	opts := []animator.AnimatorBuilderOption{animator.WithBoneCount(a.skeleton.Len())}
	modelOpts := []model.ModelBuilderOption{model.WithName("Skinned Cylinder"), model.WithGeometry(a.geometry)}

	switch a.skinning {
	case animator.BackendTypeCPU:
		deformer, err := skin.NewDeformer(a.geometry.Positions, a.geometry.Normals, a.influences, a.deformerOptions...)
		if err != nil {
			return nil, err
		}
		modelOpts = append(modelOpts, model.WithDynamic(true))
		opts = append(opts, animator.WithDeformer(deformer))
	default:
		modelOpts = append(modelOpts, model.WithSkin(skin.Flatten(a.influences)))
	}

	opts = append(opts, animator.WithModel(model.NewModel(modelOpts...)))
	return animator.NewAnimator(a.skinning, opts...), nil
}

// chainLineCapacity is the vertex count ik.Helper emits: a six-vertex cross on the target, the effector and each
// link, plus one segment per link.
func chainLineCapacity(chains []ik.Chain) int {
	n := 0
	for _, c := range chains {
		n += (2+len(c.Links))*6 + 2*len(c.Links)
	}
	return n
}

// Scene returns the demo scene, to be registered with the engine.
func (a *App) Scene() scene.Scene {
	return a.scene
}

// Skeleton returns the bone chain.
func (a *App) Skeleton() *skeleton.Skeleton {
	return a.skeleton
}

// Influences returns the per-vertex skin binding of the cylinder.
func (a *App) Influences() []skin.Influence {
	return a.influences
}

// NewState returns the initial demo state: wireframe on, auto-update as configured and the target sliders
// centred on the target's bind position.
func (a *App) NewState() State {
	return State{
		AutoUpdate: a.autoUpdate,
		Wireframe:  true,
		Target:     newTargetControl(a.skeleton.Bone(a.skeleton.Layout().Target).Position),
	}
}

// Enqueue queues an action for the next Frame. Safe to call from any goroutine.
func (a *App) Enqueue(act Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = append(a.pending, act)
}

func (a *App) drain() []Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	acts := a.pending
	a.pending = nil
	return acts
}

func (a *App) time(name string, fn func()) {
	if a.profiler == nil {
		fn()
		return
	}
	a.profiler.Time(name, fn)
}

func (a *App) solve() {
	a.time("ik", a.solver.Update)
}

// Frame is the per-frame callback. It applies queued actions, runs the solver when st.AutoUpdate is set, hands
// the skin matrices to the cylinder's animator, uploads the helper lines, and publishes a snapshot when the state
// changed. The engine draws the scene afterwards, writing the staged bone palette in Scene.Prepare.
//
// Parameters:
//   - st: the demo state
//   - dt: seconds since the previous frame
//
// Returns:
//   - error: every action, skinning and upload error of the frame, joined
func (a *App) Frame(st *State, dt float32) error {
	var errs []error
	for _, act := range a.drain() {
		if err := act.apply(a, st); err != nil {
			errs = append(errs, err)
		}
	}

	if st.AutoUpdate {
		a.solve()
	}
	a.skeleton.UpdateWorldMatrices()

	a.skinMatrices = a.skeleton.SkinMatrices(a.skinMatrices)
	var skinErr error
	a.time("skin", func() { skinErr = a.animator.Update(a.skinMatrices) })
	if skinErr != nil {
		errs = append(errs, skinErr)
	}

	a.material.SetWireframe(st.Wireframe)

	a.lines.Reset()
	a.skeleton.AppendHelperLines(&a.lines)
	if err := a.boneLines.Update(a.lines.Vertices); err != nil {
		errs = append(errs, err)
	}
	a.lines.Reset()
	a.ikHelper.AppendLines(&a.lines)
	if err := a.chainLines.Update(a.lines.Vertices); err != nil {
		errs = append(errs, err)
	}

	a.publishSnapshot(st)
	if len(errs) > 0 {
		return fmt.Errorf("frame: %w", errors.Join(errs...))
	}
	return nil
}

// Snapshot returns the view of st that is published to the debug panel.
func (a *App) Snapshot(st *State) Snapshot {
	layout := a.skeleton.Layout()
	sizing := a.skeleton.Sizing()
	effector := a.skeleton.WorldPosition(layout.LastSegment)
	target := a.skeleton.WorldPosition(layout.Target)
	return Snapshot{
		AutoUpdate:    st.AutoUpdate,
		Wireframe:     st.Wireframe,
		Target:        st.Target.Position,
		TargetMin:     st.Target.Min,
		TargetMax:     st.Target.Max,
		Effector:      effector,
		Distance:      effector.Sub(target).Len(),
		SegmentHeight: sizing.SegmentHeight,
		SegmentCount:  sizing.SegmentCount,
		BoneCount:     a.skeleton.Len(),
	}
}

func (a *App) publishSnapshot(st *State) {
	if a.publish == nil {
		return
	}
	snap := a.Snapshot(st)
	if a.published && snap == a.last {
		return
	}
	a.last, a.published = snap, true
	a.publish(snap)
}

// Close releases the scene's GPU resources, the cylinder's animator and its skinning workers included.
func (a *App) Close() {
	a.scene.Release()
}

// RenderCallback returns an engine render callback that drives Frame with st and reports errors through report, at most
// once per interval.
//
// Parameters:
//   - st: the demo state, owned by the callback from now on
//   - interval: minimum time between two reports
//   - report: receives frame errors, e.g. log.Println
//
// Returns:
//   - func(float32): the render callback
func (a *App) RenderCallback(st *State, interval time.Duration, report func(error)) func(dt float32) {
	var lastReport time.Time
	return func(dt float32) {
		if err := a.Frame(st, dt); err != nil && time.Since(lastReport) >= interval {
			lastReport = time.Now()
			report(err)
		}
	}
}
