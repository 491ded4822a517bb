package scene

import (
	"github.com/Carmen-Shannon/oxy-glvm/engine/game_object"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.add(obj)
		}
	}
}

// WithCullingDisabled disables frustum culling, so every enabled object gets a draw leaf.
// By default culling is enabled (disabled = false).
//
// Parameters:
//   - disabled: true to disable frustum culling, false to enable it (default)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}

// WithMatrixLocation sets the uniform location that receives each object's model-view-projection
// matrix. A negative location (the default) records no matrix uploads, which keeps recorded chains
// free of host pointers.
//
// Parameters:
//   - location: the uniform location, or -1
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMatrixLocation(location int32) SceneBuilderOption {
	return func(s *scene) {
		s.matrixLocation = location
	}
}

// WithClearColor sets the color the clear leaf clears the default framebuffer to.
//
// Parameters:
//   - r, g, b, a: color components in [0, 1]
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClearColor(r, g, b, a float32) SceneBuilderOption {
	return func(s *scene) {
		s.clearColor = [4]float32{r, g, b, a}
	}
}
