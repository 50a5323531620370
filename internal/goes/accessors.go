package goes

import (
	"goesfetch/internal/composite"
	"goesfetch/internal/dataset"
	"goesfetch/internal/fov"
)

// FieldOfViewProvider is implemented by datasets that can derive their
// instrument footprint.
type FieldOfViewProvider interface {
	FieldOfView() (*fov.FieldOfView, error)
}

// CompositeProvider is implemented by datasets that can render
// multispectral composites from their channels.
type CompositeProvider interface {
	Composite(name string, opts ...composite.Option) (*composite.Image, error)
}

var (
	_ FieldOfViewProvider = (*dataset.Dataset)(nil)
	_ CompositeProvider   = (*dataset.Dataset)(nil)
	_ DatasetLoader       = dataset.Loader{}
)
