// Package convert runs a single conversion job: read a source mesh, resolve
// its textures and write the target encoding atomically.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/internal/config"
	"github.com/Faultbox/meshconv/internal/logger"
	"github.com/Faultbox/meshconv/internal/texture"
	"github.com/Faultbox/meshconv/pkg/encoding"
	"github.com/Faultbox/meshconv/pkg/formats"
	"github.com/Faultbox/meshconv/pkg/mesh"
)

// Options controls a conversion job.
type Options struct {
	// Target is the output format. FormatUnknown uses the default pairing.
	Target    formats.Format
	OutputDir string

	// Encoding names the text encoding of sources and outputs.
	Encoding string

	// TextureSize is the fallback nominal texture resolution for DAT output.
	TextureSize float64

	// ProbeTextures enables reading texture files to find their size.
	// Textures are looked up in the source directory, then TextureDirs.
	ProbeTextures bool
	TextureDirs   []string

	// Textures caches probed sizes across jobs. Nil disables sharing.
	Textures *texture.Cache
}

// OptionsFromConfig builds job options from the convert config section.
func OptionsFromConfig(cfg config.ConvertConfig) (Options, error) {
	opts := Options{
		OutputDir:     cfg.OutputDir,
		Encoding:      cfg.Encoding,
		TextureSize:   cfg.TextureSize,
		ProbeTextures: cfg.ProbeTextures,
		TextureDirs:   cfg.TextureDirs,
	}
	if cfg.Target != "" {
		target, err := formats.ParseFormat(cfg.Target)
		if err != nil {
			return Options{}, err
		}
		opts.Target = target
	}
	if _, err := encoding.Lookup(cfg.Encoding); err != nil {
		return Options{}, err
	}
	if opts.ProbeTextures {
		opts.Textures = texture.NewCache()
	}
	return opts, nil
}

// Result describes one finished job.
type Result struct {
	Source   string        `yaml:"source"`
	Output   string        `yaml:"output,omitempty"`
	Material string        `yaml:"material,omitempty"`
	From     string        `yaml:"from,omitempty"`
	To       string        `yaml:"to,omitempty"`
	Vertices int           `yaml:"vertices"`
	Faces    int           `yaml:"faces"`
	Edges    int           `yaml:"edges"`
	Textures int           `yaml:"textures"`
	Textured bool          `yaml:"textured"`
	Skipped  int           `yaml:"skipped_lines,omitempty"`
	Dropped  int           `yaml:"degenerate_faces,omitempty"`
	Warnings []string      `yaml:"warnings,omitempty"`
	Error    string        `yaml:"error,omitempty"`
	Duration time.Duration `yaml:"duration"`
}

// Failed reports whether the job ended with an error.
func (r Result) Failed() bool {
	return r.Error != ""
}

// OutputPath returns where src is written as target: the lower-cased source
// name with its extension swapped, in outDir or next to src. A name equal to
// the source gets ".1" appended.
func OutputPath(src string, target formats.Format, outDir string) string {
	base := strings.ToLower(filepath.Base(src))
	name := strings.TrimSuffix(base, filepath.Ext(base)) + target.Ext()

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	out := filepath.Join(dir, name)
	if strings.EqualFold(filepath.Clean(out), filepath.Clean(src)) {
		out += ".1"
	}
	return out
}

// OutputFor returns the path File would write src to under opts.
func OutputFor(src string, opts Options) (string, error) {
	from, err := formats.FormatOf(src)
	if err != nil {
		return "", err
	}
	return OutputPath(src, opts.targetFor(from), opts.OutputDir), nil
}

func (o Options) targetFor(from formats.Format) formats.Format {
	if o.Target == formats.FormatUnknown {
		return from.DefaultTarget()
	}
	return o.Target
}

// File converts src according to opts. The returned Result is filled in as
// far as the job got, also on error.
func File(ctx context.Context, src string, opts Options) (Result, error) {
	start := time.Now()
	res := Result{Source: src}
	err := run(ctx, src, opts, &res)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err.Error()
	}
	return res, err
}

func run(ctx context.Context, src string, opts Options, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := logger.ForFile(src)

	from, err := formats.FormatOf(src)
	if err != nil {
		return err
	}
	target := opts.targetFor(from)
	res.From, res.To = from.String(), target.String()

	m, err := read(src, from, opts.Encoding)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	res.Vertices = len(m.Vertices)
	res.Faces = len(m.Faces)
	res.Edges = len(mesh.Edges(m.Triangles()))
	res.Textures = m.Textures.Len()
	res.Skipped = m.Stats.Malformed
	res.Dropped = m.Stats.Degenerate
	res.Warnings = append(res.Warnings, m.Stats.Warnings...)
	if n := m.Stats.DeclaredVerts; n >= 0 && n != len(m.Vertices) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("declared %d vertices, read %d", n, len(m.Vertices)))
	}
	if n := m.Stats.DeclaredFaces; n >= 0 && n != m.Stats.Polygons {
		res.Warnings = append(res.Warnings, fmt.Sprintf("declared %d faces, read %d", n, m.Stats.Polygons))
	}
	for _, w := range res.Warnings {
		log.Warn("source warning", zap.String("warning", w))
	}
	log.Debug("read mesh",
		zap.Stringer("format", from),
		zap.Int("vertices", res.Vertices),
		zap.Int("faces", res.Faces),
		zap.Int("edges", res.Edges),
		zap.Int("textures", res.Textures),
		zap.Int("skipped_lines", res.Skipped),
		zap.Int("degenerate", res.Dropped),
	)

	uvs, err := m.ResolveUVs()
	switch {
	case err == nil:
		res.Textured = true
	case errors.Is(err, mesh.ErrTextureCoverage):
		if len(m.UsedTextures()) > 0 {
			res.Warnings = append(res.Warnings, "writing untextured: "+err.Error())
			log.Warn("texture coverage incomplete, writing untextured", zap.Error(err))
		}
	default:
		return err
	}

	// Last chance to stop before touching the filesystem.
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	res.Output = OutputPath(src, target, opts.OutputDir)

	switch target {
	case formats.FormatDAT:
		sizes := textureSizes(filepath.Dir(src), opts)
		err = writeFile(res.Output, opts.Encoding, func(w io.Writer) error {
			return formats.WriteDAT(w, m, formats.DATOptions{Source: filepath.Base(src), UVs: uvs, TextureSize: sizes})
		})
	case formats.FormatMESH:
		err = writeFile(res.Output, opts.Encoding, func(w io.Writer) error {
			return formats.WriteMESH(w, m, formats.MESHOptions{UVs: uvs})
		})
	case formats.FormatOBJ:
		err = writeOBJ(src, m, uvs, opts.Encoding, res)
	default:
		err = fmt.Errorf("%w: no writer for %s", formats.ErrUnknownFormat, target)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", res.Output, err)
	}

	log.Info("converted",
		zap.String("output", res.Output),
		zap.Int("faces", res.Faces),
		zap.Bool("textured", res.Textured),
	)
	return nil
}

// writeOBJ writes the OBJ file and, when textured, its material library.
// Both files are rendered before either is committed.
func writeOBJ(src string, m *mesh.Mesh, uvs [][3]mesh.UV, enc string, res *Result) error {
	var (
		mtlPath string
		mtl     *bytes.Buffer
		lib     string
		err     error
	)
	if uvs != nil {
		mtlPath = strings.TrimSuffix(res.Output, filepath.Ext(res.Output)) + ".mtl"
		lib = filepath.Base(mtlPath)
		mtl, err = render(enc, func(w io.Writer) error {
			return formats.WriteMTL(w, m.UsedTextures())
		})
		if err != nil {
			return err
		}
	}
	obj, err := render(enc, func(w io.Writer) error {
		return formats.WriteOBJ(w, m, formats.OBJOptions{Source: filepath.Base(src), MaterialLib: lib, UVs: uvs})
	})
	if err != nil {
		return err
	}

	if mtl != nil {
		if err := atomic.WriteFile(mtlPath, mtl); err != nil {
			return err
		}
	}
	if err := atomic.WriteFile(res.Output, obj); err != nil {
		if mtl != nil {
			_ = os.Remove(mtlPath)
		}
		return err
	}
	res.Material = mtlPath
	return nil
}

// writeFile renders a file in memory and replaces path atomically, so a
// failed or cancelled job never leaves a partial output.
func writeFile(path, enc string, fn func(io.Writer) error) error {
	buf, err := render(enc, fn)
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, buf)
}

// render runs fn against an in-memory buffer in the target encoding.
func render(enc string, fn func(io.Writer) error) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	w, err := encoding.NewWriter(&buf, enc)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

// textureSizes returns the DAT texture size callback for a job.
func textureSizes(srcDir string, opts Options) func(string) (float64, float64) {
	fallback := opts.TextureSize
	if fallback <= 0 {
		fallback = formats.DefaultTextureSize
	}
	if !opts.ProbeTextures {
		return func(string) (float64, float64) { return fallback, fallback }
	}

	cache := opts.Textures
	if cache == nil {
		cache = texture.NewCache()
	}
	index := texture.BuildIndex(append([]string{srcDir}, opts.TextureDirs...)...)
	return func(name string) (float64, float64) {
		if w, h, ok := cache.Size(index, name); ok {
			return float64(w), float64(h)
		}
		return fallback, fallback
	}
}
