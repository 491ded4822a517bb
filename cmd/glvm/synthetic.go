package main

import (
	"math"

	"github.com/Carmen-Shannon/oxy-glvm/engine/camera"
	"github.com/Carmen-Shannon/oxy-glvm/engine/recorder"
	"github.com/Carmen-Shannon/oxy-glvm/engine/scene"
	"github.com/Carmen-Shannon/oxy-glvm/engine/vm"
)

const gridSpacing = 2.5

// recordSynthetic lays out n objects on a grid, frames them with a camera and records the
// visible ones in parallel, one leaf per object. With matrices set every draw leaf also uploads
// its model-view-projection matrix to uniform location 0; the returned release func unpins them.
func recordSynthetic(a vm.Arena, n int, matrices bool) (vm.Fragment, func(), error) {
	side := math.Ceil(math.Sqrt(float64(n)))
	half := float32(side-1) * gridSpacing / 2

	cam := camera.NewCamera(
		camera.WithPosition(0, half+2, 2*half+6),
		camera.WithAspect(16.0/9.0),
		camera.WithClipPlanes(0.1, 4*half+20),
	)
	location := int32(-1)
	if matrices {
		location = 0
	}
	s := scene.NewScene("synthetic", cam,
		scene.WithObjects(scene.Grid(n, gridSpacing)...),
		scene.WithMatrixLocation(location),
		scene.WithClearColor(0.1, 0.1, 0.12, 1),
	)
	log.Infof("synthetic scene: %d objects, %d visible", s.Count(), len(s.Visible()))

	head, err := s.Record(a, recorder.NewRecorder())
	if err != nil {
		s.Release()
		return vm.NilFragment, nil, err
	}
	return head, s.Release, nil
}
