package workflow

import (
	pkgerrors "flowboard/pkg/errors"
)

// Point is a pointer location in client coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Centering offsets so a dropped node's visual center lands roughly
// under the cursor
const (
	centerOffsetX = 100
	centerOffsetY = 50
)

// ComputePosition maps a pointer-drop location plus the canvas origin
// into a graph coordinate for a new node. A missing origin is an error:
// the caller must abort the drop rather than place the node at an
// undefined location.
func ComputePosition(pointer Point, origin *Point) (Position, error) {
	if origin == nil {
		return Position{}, pkgerrors.NewPreconditionError("canvas origin unavailable")
	}

	return Position{
		X: pointer.X - origin.X - centerOffsetX,
		Y: pointer.Y - origin.Y - centerOffsetY,
	}, nil
}
