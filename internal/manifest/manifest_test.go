package manifest

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aegis.yaml")

	m := &Manifest{
		Name:  "demo",
		Entry: "main.ag",
		Dependencies: []Dependency{
			{Name: "geo", Version: "^1.0.0", Source: "registry"},
		},
	}
	if err := Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != m.Name || got.Entry != m.Entry {
		t.Errorf("got %+v, want %+v", got, m)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0] != m.Dependencies[0] {
		t.Errorf("got deps %+v, want %+v", got.Dependencies, m.Dependencies)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	if _, err := Load("/no/such/aegis.yaml"); err == nil {
		t.Error("expected error loading missing manifest")
	}
}

func TestLoadLockMissingFileReturnsEmpty(t *testing.T) {
	l, err := LoadLock(filepath.Join(t.TempDir(), "missing.lock"))
	if err != nil {
		t.Fatalf("LoadLock: %v", err)
	}
	if len(l.Entries) != 0 {
		t.Errorf("expected empty lock, got %+v", l.Entries)
	}
}

func TestSaveAndLoadLock(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aegis.lock")
	l := &Lock{Entries: []LockEntry{{Name: "geo", Version: "1.2.0", Source: "registry", Dir: "deps/geo"}}}
	if err := SaveLock(path, l); err != nil {
		t.Fatalf("SaveLock: %v", err)
	}
	got, err := LoadLock(path)
	if err != nil {
		t.Fatalf("LoadLock: %v", err)
	}
	if len(got.Entries) != 1 || got.Entries[0] != l.Entries[0] {
		t.Errorf("got %+v, want %+v", got.Entries, l.Entries)
	}
}

type fakeFetcher struct {
	calls []Dependency
}

func (f *fakeFetcher) Fetch(dep Dependency) (string, string, error) {
	f.calls = append(f.calls, dep)
	return "deps/" + dep.Name, dep.Version, nil
}

func TestResolveSkipsAlreadyLocked(t *testing.T) {
	m := &Manifest{Dependencies: []Dependency{
		{Name: "geo", Version: "1.0.0", Source: "registry"},
		{Name: "math2", Version: "2.0.0", Source: "registry"},
	}}
	lock := &Lock{Entries: []LockEntry{{Name: "geo", Version: "1.0.0", Source: "registry", Dir: "deps/geo"}}}
	fetcher := &fakeFetcher{}

	got, err := Resolve(m, lock, fetcher)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(fetcher.calls) != 1 || fetcher.calls[0].Name != "math2" {
		t.Errorf("expected fetcher called once for math2, got %+v", fetcher.calls)
	}
	if len(got.Entries) != 2 {
		t.Errorf("expected 2 lock entries, got %d", len(got.Entries))
	}
}

func TestResolvePropagatesFetchError(t *testing.T) {
	m := &Manifest{Dependencies: []Dependency{{Name: "broken", Version: "1.0.0"}}}
	lock := &Lock{}
	fetcher := &erroringFetcher{}
	if _, err := Resolve(m, lock, fetcher); err == nil {
		t.Error("expected error from Resolve when fetcher fails")
	}
}

type erroringFetcher struct{}

func (erroringFetcher) Fetch(dep Dependency) (string, string, error) {
	return "", "", errFetchFailed
}

var errFetchFailed = errors.New("fetch failed")
