package grid

import (
	"fmt"

	"hcsgrid/pkg/coords"
)

// DuplicateCoordinateError reports two sources addressing the same cell with
// the same role and stacked-axis values. Neither source is dropped; the pass
// fails.
type DuplicateCoordinateError struct {
	Coordinates string
	Role        coords.Role
	First       string
	Second      string
}

func (e *DuplicateCoordinateError) Error() string {
	return fmt.Sprintf("duplicate coordinates [%s] role %s: %s and %s", e.Coordinates, e.Role, e.First, e.Second)
}

// DuplicatePathError reports one path supplied as more than one source.
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("path %s supplied more than once", e.Path)
}
