package texture

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

// writeImage encodes a blank w×h image at path with enc.
func writeImage(t *testing.T, path string, w, h int, enc func(*os.File, image.Image) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := enc(f, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func encodePNG(f *os.File, img image.Image) error { return png.Encode(f, img) }
func encodeTGA(f *os.File, img image.Image) error { return tga.Encode(f, img) }
func encodeBMP(f *os.File, img image.Image) error { return bmp.Encode(f, img) }

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		w, h int
		enc  func(*os.File, image.Image) error
	}{
		{"hull.png", 64, 32, encodePNG},
		{"decal.tga", 128, 128, encodeTGA},
		{"sign.bmp", 16, 8, encodeBMP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			writeImage(t, path, tt.w, tt.h, tt.enc)

			w, h, err := Probe(path)
			if err != nil {
				t.Fatalf("Probe failed: %v", err)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestProbeErrors(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.png")
	if err := os.WriteFile(bogus, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Probe(bogus); err == nil {
		t.Error("expected decode error")
	}
	if _, _, err := Probe(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected open error")
	}
}

func TestIndex(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeImage(t, filepath.Join(first, "Hull.PNG"), 4, 4, encodePNG)
	writeImage(t, filepath.Join(second, "hull.png"), 8, 8, encodePNG)
	writeImage(t, filepath.Join(second, "wing.png"), 8, 8, encodePNG)
	if err := os.WriteFile(filepath.Join(second, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	idx := BuildIndex(first, second, filepath.Join(first, "missing"))
	if idx.Len() != 2 {
		t.Errorf("expected 2 indexed textures, got %d", idx.Len())
	}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"hull.png", filepath.Join(first, "Hull.PNG"), true},
		{`Textures\wing.png`, filepath.Join(second, "wing.png"), true},
		{"models/WING.png", filepath.Join(second, "wing.png"), true},
		{"notes.txt", "", false},
		{"tail.png", "", false},
	}
	for _, tt := range tests {
		got, ok := idx.ResolvePath(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCacheSize(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "hull.png"), 64, 32, encodePNG)
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}
	idx := BuildIndex(dir)
	cache := NewCache()

	w, h, ok := cache.Size(idx, "hull.png")
	if !ok || w != 64 || h != 32 {
		t.Fatalf("Size = %d, %d, %v", w, h, ok)
	}
	if _, _, ok := cache.Size(idx, "HULL.png"); !ok {
		t.Error("second lookup failed")
	}
	if _, _, ok := cache.Size(idx, "broken.png"); ok {
		t.Error("broken texture should not resolve")
	}
	if _, _, ok := cache.Size(idx, "broken.png"); ok {
		t.Error("cached failure should not resolve")
	}
	if _, _, ok := cache.Size(idx, "absent.png"); ok {
		t.Error("absent texture should not resolve")
	}

	hits, misses := cache.Stats()
	if hits != 2 || misses != 2 {
		t.Errorf("stats = %d hits, %d misses; want 2, 2", hits, misses)
	}
}

func TestCacheConcurrent(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "hull.png"), 32, 32, encodePNG)
	idx := BuildIndex(dir)
	cache := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w, _, ok := cache.Size(idx, "hull.png"); !ok || w != 32 {
				t.Errorf("concurrent Size = %d, %v", w, ok)
			}
		}()
	}
	wg.Wait()

	hits, misses := cache.Stats()
	if hits+misses != 8 || misses < 1 {
		t.Errorf("stats = %d hits, %d misses", hits, misses)
	}
}
