package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.obj", "a.DAT", "c.mesh", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.dat"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := expandArgs([]string{"single.obj", dir, "missing/x.dat"})
	if err != nil {
		t.Fatalf("expandArgs failed: %v", err)
	}
	want := []string{
		"single.obj",
		filepath.Join(dir, "a.DAT"),
		filepath.Join(dir, "b.obj"),
		filepath.Join(dir, "c.mesh"),
		"missing/x.dat",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandArgs = %v, want %v", got, want)
	}
}
