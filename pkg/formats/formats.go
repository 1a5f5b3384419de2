// Package formats provides readers and writers for the DAT, MESH and
// Wavefront OBJ/MTL mesh encodings.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshconv/pkg/mesh"
)

// Format errors.
var (
	ErrUnknownFormat = errors.New("unknown mesh format")
	ErrNumericField  = errors.New("non-numeric value in numeric field")

	// ErrIndexOutOfRange is returned when a face or UV reference addresses
	// an element that does not exist.
	ErrIndexOutOfRange = mesh.ErrIndexOutOfRange
)

// Format identifies a mesh encoding.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatDAT
	FormatMESH
	FormatOBJ
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatDAT:
		return "dat"
	case FormatMESH:
		return "mesh"
	case FormatOBJ:
		return "obj"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// Ext returns the file extension of the format, including the dot.
func (f Format) Ext() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + f.String()
}

// ParseFormat parses a format name such as "dat" or ".OBJ".
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "dat":
		return FormatDAT, nil
	case "mesh":
		return FormatMESH, nil
	case "obj":
		return FormatOBJ, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatOf returns the format of path judged by its extension.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return FormatUnknown, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// DefaultTarget returns the format a source is converted to when no target
// is requested: DAT becomes MESH, MESH and OBJ become DAT.
func (f Format) DefaultTarget() Format {
	switch f {
	case FormatDAT:
		return FormatMESH
	case FormatMESH, FormatOBJ:
		return FormatDAT
	default:
		return FormatUnknown
	}
}
