package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Lockfile pins the resolved versions of script-package dependencies in
// script.lock next to the manifest.
type Lockfile struct {
	Path     string           `yaml:"-"`
	Root     string           `yaml:"root"`
	Tool     string           `yaml:"tool"`
	Packages []*LockedPackage `yaml:"packages"`
}

// LockedPackage records one resolved dependency: the sanitized name, the
// resolved version (the checked-out commit hash or pinned rev, or "local"),
// and the source spec
// ("git:<url>" or "path:<dir>").
type LockedPackage struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Source  string `yaml:"source"`
}

// NewLockfile creates an empty lockfile for the given root package.
func NewLockfile(root string, tool string) *Lockfile {
	return &Lockfile{Root: root, Tool: tool}
}

// LoadLockfile reads and parses script.lock.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lock Lockfile
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", path, err)
	}
	lock.Path = path
	return &lock, nil
}

// WriteLockfile serializes the lockfile with packages in name order.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	sorted := make([]*LockedPackage, 0, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil {
			sorted = append(sorted, pkg)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	lock.Packages = sorted

	data, err := yaml.Marshal(lock)
	if err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("lockfile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", path, err)
	}
	return nil
}

// FindPackage returns the locked entry for a dependency name.
func (l *Lockfile) FindPackage(name string) (*LockedPackage, bool) {
	if l == nil {
		return nil, false
	}
	for _, pkg := range l.Packages {
		if pkg != nil && pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// Upsert replaces or appends a locked package, reporting whether the
// lockfile changed.
func (l *Lockfile) Upsert(pkg *LockedPackage) bool {
	if l == nil || pkg == nil {
		return false
	}
	for idx, existing := range l.Packages {
		if existing != nil && existing.Name == pkg.Name {
			if existing.Version == pkg.Version && existing.Source == pkg.Source {
				return false
			}
			l.Packages[idx] = pkg
			return true
		}
	}
	l.Packages = append(l.Packages, pkg)
	return true
}
