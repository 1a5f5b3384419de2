package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshconv/pkg/encoding"
	"github.com/Faultbox/meshconv/pkg/formats"
	"github.com/Faultbox/meshconv/pkg/mesh"
)

// read parses src as format from, decoding text with enc.
func read(src string, from formats.Format, enc string) (*mesh.Mesh, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := encoding.NewReader(f, enc)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(src)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	switch from {
	case formats.FormatDAT:
		return formats.ReadDAT(r, name)
	case formats.FormatMESH:
		return formats.ReadMESH(r, name)
	case formats.FormatOBJ:
		dir := filepath.Dir(src)
		return formats.ReadOBJ(r, name, formats.OBJReadOptions{
			OpenMaterialLib: func(lib string) (io.ReadCloser, error) {
				return openDecoded(filepath.Join(dir, filepath.FromSlash(lib)), enc)
			},
		})
	default:
		return nil, fmt.Errorf("%w: %s", formats.ErrUnknownFormat, from)
	}
}

type decodedFile struct {
	io.Reader
	io.Closer
}

// openDecoded opens path for reading through the enc decoder.
func openDecoded(path, enc string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := encoding.NewReader(f, enc)
	if err != nil {
		f.Close()
		return nil, err
	}
	return decodedFile{Reader: r, Closer: f}, nil
}
