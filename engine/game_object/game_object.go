package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-glvm/common"
)

// Handles names the GL objects a game object draws with. Zero means unbound.
type Handles struct {
	Program     uint32
	VertexArray uint32
	Texture     uint32
	// Count is the number of vertices passed to DrawArrays.
	Count int32
}

type gameObject struct {
	mu      sync.Mutex
	id      uint64
	enabled atomic.Bool
	handles Handles
	radius  float32

	position      common.Vec3
	scale         common.Vec3
	rotation      common.Vec3
	rotationSpeed common.Vec3
}

// GameObject defines the interface for a drawable scene entity: a transform, a bounding sphere
// used for culling, and the GL handles its draw leaf binds.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Handles returns the GL objects bound when drawing this object.
	//
	// Returns:
	//   - Handles: program, vertex array, texture and vertex count
	Handles() Handles

	// Radius returns the bounding sphere radius before scaling.
	//
	// Returns:
	//   - float32: the radius
	Radius() float32

	// BoundingSphere returns the world-space bounding sphere, scaled by the largest scale component.
	//
	// Returns:
	//   - common.Vec3: sphere center
	//   - float32: sphere radius
	BoundingSphere() (common.Vec3, float32)

	// Position returns the object's position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the object's Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// RotationSpeed returns the rotation applied per second by Advance.
	//
	// Returns:
	//   - rx, ry, rz: rotation speed values
	RotationSpeed() (rx, ry, rz float32)

	// Scale returns the object's scale.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// ModelMatrix returns the object's model matrix.
	//
	// Returns:
	//   - common.Mat4: translate * rotate * scale
	ModelMatrix() common.Mat4

	// Advance applies RotationSpeed for dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetHandles replaces the GL handles.
	//
	// Parameters:
	//   - h: the new handles
	SetHandles(h Handles)

	// SetPosition sets the object's position.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetRotation sets the object's rotation.
	//
	// Parameters:
	//   - rx, ry, rz: rotation angles in radians
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed sets the rotation applied per second by Advance.
	//
	// Parameters:
	//   - rx, ry, rz: rotation speed in radians per second
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale sets the object's scale.
	//
	// Parameters:
	//   - sx, sy, sz: scale components
	SetScale(sx, sy, sz float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled object at the origin with unit scale and a unit bounding sphere.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		scale:  common.Vec3{1, 1, 1},
		radius: 1,
	}
	g.enabled.Store(true)
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *gameObject) ID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Handles() Handles {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handles
}

func (g *gameObject) Radius() float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.radius
}

func (g *gameObject) BoundingSphere() (common.Vec3, float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := max(abs(g.scale[0]), abs(g.scale[1]), abs(g.scale[2]))
	return g.position, g.radius * s
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) RotationSpeed() (rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotationSpeed[0], g.rotationSpeed[1], g.rotationSpeed[2]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) ModelMatrix() common.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return common.Model(g.position, g.rotation, g.scale)
}

func (g *gameObject) Advance(dt float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.rotation {
		g.rotation[i] += g.rotationSpeed[i] * dt
	}
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetHandles(h Handles) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handles = h
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = common.Vec3{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = common.Vec3{rx, ry, rz}
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotationSpeed = common.Vec3{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = common.Vec3{sx, sy, sz}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
