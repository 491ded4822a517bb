package game_object

import "github.com/Carmen-Shannon/oxy-glvm/common"

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithHandles sets the GL objects the GameObject draws with.
//
// Parameters:
//   - h: program, vertex array, texture and vertex count
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the handles
func WithHandles(h Handles) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.handles = h
	}
}

// WithRadius sets the unscaled bounding sphere radius used for culling.
//
// Parameters:
//   - r: the radius
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the radius
func WithRadius(r float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.radius = r
	}
}

// WithPosition sets the initial position of the GameObject.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = common.Vec3{x, y, z}
	}
}

// WithScale sets the initial scale of the GameObject.
//
// Parameters:
//   - sx, sy, sz: scale components
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = common.Vec3{sx, sy, sz}
	}
}

// WithRotation sets the initial rotation of the GameObject in radians.
//
// Parameters:
//   - rx, ry, rz: rotation angles
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = common.Vec3{rx, ry, rz}
	}
}

// WithRotationSpeed sets the rotation applied per second by Advance.
//
// Parameters:
//   - rx, ry, rz: rotation speed in radians per second
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation speed
func WithRotationSpeed(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = common.Vec3{rx, ry, rz}
	}
}
