// Package manifest models a project's dependency manifest
// (aegis.yaml) and the boundary for resolving those dependencies onto
// disk. It parses and writes the manifest's on-disk shape only; it
// never reaches out to a registry itself — a Fetcher supplied by the
// host does that.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Dependency is one entry of a manifest's dependency list: a package
// name, the version constraint the manifest asked for, and where it
// comes from (a registry name, a git URL, or a local path).
type Dependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Source  string `yaml:"source"`
}

// Manifest is the parsed form of aegis.yaml: the project's own name,
// its entry script, and its declared dependencies.
type Manifest struct {
	Name         string       `yaml:"name"`
	Entry        string       `yaml:"entry"`
	Dependencies []Dependency `yaml:"dependencies"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Save writes m to path as YAML.
func Save(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LockEntry is one resolved dependency in a lock file: the exact
// version and source a Fetcher previously resolved Dependency to.
type LockEntry struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Source  string `yaml:"source"`
	Dir     string `yaml:"dir"` // where Fetcher deposited it, relative to the project root
}

// Lock is the resolved, reproducible form of a Manifest's dependency
// list, written after a successful Fetcher pass.
type Lock struct {
	Entries []LockEntry `yaml:"entries"`
}

// LoadLock reads a lock file at path; a missing file is not an error,
// it just means nothing has been resolved yet.
func LoadLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Lock{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	var l Lock
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing lock file: %w", err)
	}
	return &l, nil
}

func SaveLock(path string, l *Lock) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding lock file: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Fetcher resolves one Dependency onto local disk and reports where it
// landed. Implementations talk to whatever registry/VCS the host
// wants; this package only describes the contract and the resulting
// on-disk shape (a Lock).
type Fetcher interface {
	Fetch(dep Dependency) (dir string, resolvedVersion string, err error)
}

// Resolve runs fetcher over every dependency in m not already present
// (by name+version) in lock, appending newly resolved entries.
func Resolve(m *Manifest, lock *Lock, fetcher Fetcher) (*Lock, error) {
	resolved := make(map[string]bool, len(lock.Entries))
	for _, e := range lock.Entries {
		resolved[e.Name+"@"+e.Version] = true
	}
	for _, dep := range m.Dependencies {
		if resolved[dep.Name+"@"+dep.Version] {
			continue
		}
		dir, version, err := fetcher.Fetch(dep)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", dep.Name, err)
		}
		lock.Entries = append(lock.Entries, LockEntry{
			Name:    dep.Name,
			Version: version,
			Source:  dep.Source,
			Dir:     dir,
		})
	}
	return lock, nil
}
