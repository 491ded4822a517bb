package scene

import (
	"maps"
	"math"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-glvm/engine/camera"
	"github.com/Carmen-Shannon/oxy-glvm/engine/game_object"
	"github.com/Carmen-Shannon/oxy-glvm/engine/recorder"
	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
)

// Scene holds a registry of GameObjects viewed through a Camera and records them into a
// fragment chain: one clear leaf followed by one draw leaf per visible object, in ID order.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Camera returns the scene's camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Add registers an object. Objects without an ID are assigned the next free one.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject) uint64

	// Get returns the object with the given ID, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove unregisters the object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Count returns the number of registered objects.
	//
	// Returns:
	//   - int: object count
	Count() int

	// Visible returns the enabled objects whose bounding spheres intersect the camera frustum,
	// in ID order. With culling disabled every enabled object is returned.
	//
	// Returns:
	//   - []game_object.GameObject: the visible objects
	Visible() []game_object.GameObject

	// Advance applies each object's rotation speed for dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)

	// Record records the visible objects into a new chain on a, one leaf per recorder job.
	// When a matrix location is configured each draw leaf uploads its model-view-projection
	// matrix with UniformMatrix4fv; those matrices stay pinned until Release.
	//
	// Parameters:
	//   - a: the arena to record into
	//   - r: the recorder that runs the leaf jobs
	//
	// Returns:
	//   - vm.Fragment: head of the recorded chain
	//   - error: the recorder's error, if any
	Record(a vm.Arena, r recorder.Recorder) (vm.Fragment, error)

	// Release unpins every matrix slab handed out by Record. Chains recorded by this scene
	// must be deleted or never replayed again before calling it.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	name     string
	cam      camera.Camera
	registry map[uint64]game_object.GameObject
	nextID   uint64

	cullingDisabled bool
	matrixLocation  int32
	clearColor      [4]float32

	pinner runtime.Pinner
}

var _ Scene = &scene{}

// NewScene creates a new Scene viewed through cam. NewScene panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		cam:            cam,
		registry:       make(map[uint64]game_object.GameObject),
		nextID:         1,
		matrixLocation: -1,
		clearColor:     [4]float32{0, 0, 0, 1},
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add registers obj. Caller must hold the write lock.
func (s *scene) add(obj game_object.GameObject) uint64 {
	id := obj.ID()
	if id == 0 {
		id = s.nextID
		obj.SetID(id)
	}
	s.nextID = max(s.nextID, id+1)
	s.registry[id] = obj
	return id
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Visible() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frustum := s.cam.Frustum()
	out := make([]game_object.GameObject, 0, len(s.registry))
	for _, id := range slices.Sorted(maps.Keys(s.registry)) {
		obj := s.registry[id]
		if !obj.Enabled() {
			continue
		}
		if !s.cullingDisabled {
			center, r := obj.BoundingSphere()
			if !frustum.ContainsSphere(center, r) {
				continue
			}
		}
		out = append(out, obj)
	}
	return out
}

func (s *scene) Advance(dt float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.registry {
		obj.Advance(dt)
	}
}

func (s *scene) Record(a vm.Arena, r recorder.Recorder) (vm.Fragment, error) {
	visible := s.Visible()

	s.mu.Lock()
	location := s.matrixLocation
	clearColor := s.clearColor
	var matrices []float32
	if location >= 0 && len(visible) > 0 {
		matrices = make([]float32, 16*len(visible))
		vp := s.cam.ViewProjectionMatrix()
		for i, obj := range visible {
			mvp := vp.Mul(obj.ModelMatrix())
			copy(matrices[16*i:], mvp[:])
		}
		s.pinner.Pin(&matrices[0])
	}
	s.mu.Unlock()

	jobs := make([]recorder.Job, 0, len(visible)+1)
	jobs = append(jobs, func(w *vm.BlockWriter) error {
		w.BindFramebuffer(vm.EnumFramebuffer, 0).
			ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3]).
			Clear(vm.EnumColorBufferBit | vm.EnumDepthBufferBit)
		return nil
	})
	for i, obj := range visible {
		h := obj.Handles()
		jobs = append(jobs, func(w *vm.BlockWriter) error {
			w.Enable(vm.EnumDepthTest).
				Enable(vm.EnumCullFaceCap).
				BindProgram(h.Program).
				ActiveTexture(vm.EnumTexture0).
				BindTexture(vm.EnumTexture2D, h.Texture).
				BindVertexArray(h.VertexArray)
			if matrices != nil {
				w.UniformMatrix(vm.UniformMatrix4fv, location, 1, false, &matrices[16*i])
			}
			w.DrawArrays(vm.EnumTriangles, 0, h.Count)
			return nil
		})
	}
	return r.RecordChain(a, jobs)
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinner.Unpin()
}

// Grid lays out n objects on a square grid in the XZ plane centered on the origin.
// Handles cycle through three programs, five vertex arrays and four textures so that
// neighbouring leaves share some state and differ in the rest.
//
// Parameters:
//   - n: number of objects
//   - spacing: distance between neighbouring grid cells
//
// Returns:
//   - []game_object.GameObject: the objects in row-major order
func Grid(n int, spacing float32) []game_object.GameObject {
	if n <= 0 {
		return nil
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	half := float32(side-1) * spacing / 2
	out := make([]game_object.GameObject, n)
	for k := range out {
		row, col := k/side, k%side
		out[k] = game_object.NewGameObject(
			game_object.WithPosition(float32(col)*spacing-half, 0, float32(row)*spacing-half),
			game_object.WithRotationSpeed(0, float32(k%7+1)*0.25, 0),
			game_object.WithHandles(game_object.Handles{
				Program:     uint32(k%3 + 1),
				VertexArray: uint32(k%5 + 1),
				Texture:     uint32(k%4 + 1),
				Count:       36,
			}),
		)
	}
	return out
}
