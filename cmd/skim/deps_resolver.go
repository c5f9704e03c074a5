package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"skim/interpreter-go/pkg/driver"
)

type dependencyInstaller struct {
	manifest     *driver.Manifest
	manifestRoot string
	cacheDir     string
	logs         []string
	git          *gitFetcher
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	var root string
	if manifest != nil {
		root = filepath.Dir(manifest.Path)
	}
	return &dependencyInstaller{
		manifest:     manifest,
		manifestRoot: root,
		cacheDir:     cacheDir,
		logs:         []string{},
		git:          newGitFetcher(cacheDir),
	}
}

// Install resolves every manifest dependency in name order, fetching git
// sources into the cache and pinning the outcome in the lockfile.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if d.manifest == nil {
		return false, d.logs, nil
	}

	names := make([]string, 0, len(d.manifest.Dependencies))
	for name := range d.manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	for _, name := range names {
		spec := d.manifest.Dependencies[name]
		if spec == nil {
			return false, d.logs, fmt.Errorf("dependency %q has no descriptor", name)
		}
		pkg, err := d.resolveDependency(name, spec, lock)
		if err != nil {
			return false, d.logs, err
		}
		if lock.Upsert(pkg) {
			changed = true
		}
	}
	return changed, d.logs, nil
}

func (d *dependencyInstaller) resolveDependency(name string, spec *driver.DependencySpec, lock *driver.Lockfile) (*driver.LockedPackage, error) {
	sanitized := sanitizeName(name)

	if spec.Path != "" {
		pathSpec := spec.Path
		if !filepath.IsAbs(pathSpec) {
			pathSpec = filepath.Join(d.manifestRoot, filepath.FromSlash(pathSpec))
		}
		info, err := os.Stat(pathSpec)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("dependency %q: path %s is not a directory", name, pathSpec)
		}
		d.logs = append(d.logs, fmt.Sprintf("Using %s from local path %s", sanitized, pathSpec))
		return &driver.LockedPackage{
			Name:    sanitized,
			Version: "local",
			Source:  "path:" + spec.Path,
		}, nil
	}

	// Reuse a still-cached pinned checkout before touching the network.
	if existing, ok := lock.FindPackage(sanitized); ok && existing.Source == "git:"+spec.Git {
		checkoutDir := filepath.Join(d.cacheDir, "pkg", "src", sanitized, sanitizePathSegment(existing.Version))
		if info, err := os.Stat(checkoutDir); err == nil && info.IsDir() {
			d.logs = append(d.logs, fmt.Sprintf("Reusing %s %s", sanitized, existing.Version))
			return existing, nil
		}
	}

	pkg, err := d.git.Fetch(sanitized, spec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	d.logs = append(d.logs, fmt.Sprintf("Fetched %s %s", pkg.Name, pkg.Version))
	return pkg, nil
}

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch clones a script package and leaves a pinned checkout under
// <cache>/pkg/src/<name>/<version>.
func (g *gitFetcher) Fetch(name string, spec *driver.DependencySpec) (*driver.LockedPackage, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("git URL required")
	}

	baseDir := filepath.Join(g.cacheDir, "pkg", "src", name)
	version, err := ensureGitCheckout(baseDir, url, spec)
	if err != nil {
		return nil, err
	}

	return &driver.LockedPackage{
		Name:    name,
		Version: version,
		Source:  "git:" + url,
	}, nil
}

func ensureGitCheckout(baseDir, url string, spec *driver.DependencySpec) (string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(rev))
		if _, err := os.Stat(existing); err == nil {
			return rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		Depth:             0,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git clone %s: %w", url, err)
	}

	revision := gitRevisionFromSpec(spec)
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("resolve revision %s: %w", revision, err)
	}

	version := hash.String()
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git checkout %s: %w", revision, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	return version, nil
}

func gitRevisionFromSpec(spec *driver.DependencySpec) plumbing.Revision {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev)
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag)
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/heads/" + branch)
	}
	return plumbing.Revision("HEAD")
}

func sanitizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return b.String()
}
