package renderer

import (
	"errors"
	"fmt"
)

// ErrGPUAllocation is the sentinel matched by every AllocationError via errors.Is.
var ErrGPUAllocation = errors.New("gpu allocation failed")

// AllocationKind names the kind of GPU object that failed to allocate.
type AllocationKind string

const (
	AllocationKindVertexBuffer  AllocationKind = "vertex buffer"
	AllocationKindIndexBuffer   AllocationKind = "index buffer"
	AllocationKindUniformBuffer AllocationKind = "uniform buffer"
	AllocationKindTexture       AllocationKind = "texture"
)

// AllocationError reports a buffer or texture the GPU boundary could not create.
type AllocationError struct {
	Kind  AllocationKind
	Label string
	Err   error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocating %s %q: %v", e.Kind, e.Label, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

func (e *AllocationError) Is(target error) bool { return target == ErrGPUAllocation }
