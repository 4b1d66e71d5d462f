package mmap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOptionsHas(t *testing.T) {
	var o Options = Writable | Prefault
	if !o.Has(Writable) || o.Has(SequentialAccess) {
		t.Fatalf("Options.Has returned unexpected results for %v", o)
	}
}

func TestRegion_MapGrowSync(t *testing.T) {
	f := tempFile(t)

	r, err := Map(f, 4096, Writable|SequentialAccess)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer r.Close()
	if r.Len() != 4096 || !r.Writable() {
		t.Fatalf("Len = %d, Writable = %v, wanted 4096, true", r.Len(), r.Writable())
	}
	if fi := must(f.Stat()); fi.Size() != 4096 {
		t.Fatalf("file size = %d, wanted 4096", fi.Size())
	}

	r.Data()[0] = 0x42
	r.Data()[4095] = 0x43
	if err := r.Grow(3 * 4096); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if r.Len() != 3*4096 {
		t.Fatalf("Len after Grow = %d, wanted %d", r.Len(), 3*4096)
	}
	if r.Data()[0] != 0x42 || r.Data()[4095] != 0x43 {
		t.Fatalf("data lost across Grow: %x %x", r.Data()[0], r.Data()[4095])
	}
	if err := r.Grow(100); err != nil {
		t.Fatalf("shrinking Grow: %v", err)
	}
	if r.Len() != 3*4096 {
		t.Fatalf("Grow to a smaller size changed Len to %d", r.Len())
	}

	r.Data()[8192] = 0x44
	if err := r.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Sync(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Sync after Close = %v, wanted ErrClosed", err)
	}

	raw := must(os.ReadFile(f.Name()))
	if len(raw) != 3*4096 || raw[0] != 0x42 || raw[8192] != 0x44 {
		t.Fatalf("file contents not persisted: len=%d", len(raw))
	}
}

func TestRegion_FailedGrowKeepsMapping(t *testing.T) {
	f := tempFile(t)
	r, err := Map(f, 4096, Writable)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer r.Close()
	r.Data()[100] = 0x55

	// the mapping outlives the descriptor, but the file can no longer be extended
	f.Close()
	if err := r.Grow(8192); err == nil {
		t.Fatalf("Grow with a closed file succeeded")
	}
	if r.Len() != 4096 || r.Data()[100] != 0x55 {
		t.Fatalf("Len = %d, Data()[100] = %x after failed Grow, wanted 4096, 55", r.Len(), r.Data()[100])
	}
}

func TestRegion_ReadOnly(t *testing.T) {
	f := tempFile(t)
	if err := f.Truncate(4096); err != nil {
		t.Fatal(err)
	}
	r, err := Map(f, 4096, RandomAccess)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer r.Close()
	if err := r.Grow(8192); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Grow = %v, wanted ErrReadOnly", err)
	}
	if err := r.Sync(); err != nil {
		t.Fatalf("Sync of read-only region = %v, wanted nil", err)
	}
}

func TestMap_InvalidSize(t *testing.T) {
	f := tempFile(t)
	if _, err := Map(f, 0, Writable); err == nil {
		t.Fatalf("Map(size=0) succeeded, wanted error")
	}
}

func tempFile(t *testing.T) *os.File {
	t.Helper()
	f := must(os.OpenFile(filepath.Join(t.TempDir(), "region.bin"), os.O_RDWR|os.O_CREATE, 0o644))
	t.Cleanup(func() { f.Close() })
	return f
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
