// Package texture locates texture images next to converted meshes and
// reads their pixel dimensions.
package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// extensions lists the image types Probe can decode.
var extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tga":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Index maps lowercase texture file names to filesystem paths.
type Index struct {
	entries map[string]string // base.lower() → full path
}

// BuildIndex scans dirs (not recursively) for image files. When two dirs
// hold the same name the earlier dir wins. Unreadable dirs are skipped.
func BuildIndex(dirs ...string) *Index {
	idx := &Index{entries: make(map[string]string)}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !extensions[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			key := strings.ToLower(e.Name())
			if _, exists := idx.entries[key]; !exists {
				idx.entries[key] = filepath.Join(dir, e.Name())
			}
		}
	}
	return idx
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Any directory part of the name is ignored.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	// Strip path prefix (e.g., "Textures\\hull.png" → "hull.png")
	texName = strings.ReplaceAll(texName, "\\", "/")
	path, ok := idx.entries[strings.ToLower(filepath.Base(texName))]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
