package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError via errors.Is.
	ErrParse = errors.New("malformed asset")

	// ErrDegenerateGeometry matches every *DegenerateGeometryError via errors.Is.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrLoaderClosed is delivered to LoadAsync callbacks queued after Close.
	ErrLoaderClosed = errors.New("loader is closed")
)

// ParseError reports malformed OBJ or MTL text.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse %s: %s", e.File, e.Msg)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// DegenerateGeometryError is returned by BuildTangents when WithDegenerateCheck is set
// and a triangle's UV mapping has a zero (or non-finite) determinant.
type DegenerateGeometryError struct {
	// Triangle is the index of the offending triangle (index offset / 3).
	Triangle int
	Indices  [3]uint32
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("triangle %d %v has a degenerate UV mapping", e.Triangle, e.Indices)
}

func (e *DegenerateGeometryError) Is(target error) bool {
	return target == ErrDegenerateGeometry
}
