package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"skim/interpreter-go/pkg/driver"
)

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "script.yml"), []byte("name: test\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	child := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := findManifest(child)
	if err != nil {
		t.Fatalf("findManifest returned error: %v", err)
	}
	want := filepath.Join(root, "script.yml")
	if found != want {
		t.Fatalf("findManifest = %q, want %q", found, want)
	}
}

func TestFindManifestMissing(t *testing.T) {
	if _, err := findManifest(t.TempDir()); err == nil {
		t.Fatalf("expected errManifestNotFound")
	}
}

func TestResolveSkimHomeEnv(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "cache")
	t.Setenv("SKIM_HOME", target)

	got, err := resolveSkimHome()
	if err != nil {
		t.Fatalf("resolveSkimHome error: %v", err)
	}
	if got != target {
		t.Fatalf("resolveSkimHome = %q, want %q", got, target)
	}
}

func TestResolveSkimHomeDefault(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("SKIM_HOME", "")
	t.Setenv("HOME", tmp)

	got, err := resolveSkimHome()
	if err != nil {
		t.Fatalf("resolveSkimHome error: %v", err)
	}
	if want := filepath.Join(tmp, ".skim"); got != want {
		t.Fatalf("resolveSkimHome = %q, want %q", got, want)
	}
}

func TestLooksLikePathCandidate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"bench", false},
		{"script.js", true},
		{"./bench", true},
		{"src/app.js", true},
	}
	for _, tc := range cases {
		if got := looksLikePathCandidate(tc.in); got != tc.want {
			t.Fatalf("looksLikePathCandidate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExecuteEntryRunsScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.js")
	if err := os.WriteFile(script, []byte("var x = 40; x + 2;"), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if code := executeEntry(script, nil); code != 0 {
		t.Fatalf("executeEntry = %d, want 0", code)
	}
}

func TestExecuteEntryReportsUncaughtThrow(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "main.js")
	if err := os.WriteFile(script, []byte("throw 'boom';"), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if code := executeEntry(script, nil); code != 1 {
		t.Fatalf("executeEntry = %d, want 1", code)
	}
}

func TestExecuteEntryInjectsManifestGlobals(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "script.yml")
	manifestBody := "name: demo\nentry: main.js\nglobals:\n  limit: 7\n"
	if err := os.WriteFile(manifestPath, []byte(manifestBody), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	script := filepath.Join(dir, "main.js")
	if err := os.WriteFile(script, []byte("if (limit !== 7) { throw 'missing global' } limit;"), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if code := executeEntry(script, manifest); code != 0 {
		t.Fatalf("executeEntry = %d, want 0", code)
	}
}

func TestInstallerResolvesPathDependency(t *testing.T) {
	root := t.TempDir()
	libDir := filepath.Join(root, "lib")
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifestPath := filepath.Join(root, "script.yml")
	manifestBody := "name: demo\ndependencies:\n  lib:\n    path: lib\n"
	if err := os.WriteFile(manifestPath, []byte(manifestBody), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	lock := driver.NewLockfile(manifest.Name, cliToolVersion)
	installer := newDependencyInstaller(manifest, t.TempDir())
	changed, _, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed {
		t.Fatalf("expected lockfile change")
	}
	pkg, ok := lock.FindPackage("lib")
	if !ok || pkg.Version != "local" || pkg.Source != "path:lib" {
		t.Fatalf("locked package = %#v, %v", pkg, ok)
	}
}

func TestInstallerFetchesGitDependency(t *testing.T) {
	fixture := t.TempDir()
	repo, err := git.PlainInit(fixture, false)
	if err != nil {
		t.Fatalf("init fixture repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(fixture, "lib.js"), []byte("function lib(){ return 1 }"), 0o600); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("lib.js"); err != nil {
		t.Fatalf("add: %v", err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	root := t.TempDir()
	manifestPath := filepath.Join(root, "script.yml")
	manifestBody := "name: demo\ndependencies:\n  lib:\n    git: " + fixture + "\n    rev: " + hash.String() + "\n"
	if err := os.WriteFile(manifestPath, []byte(manifestBody), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	cacheDir := t.TempDir()
	lock := driver.NewLockfile(manifest.Name, cliToolVersion)
	installer := newDependencyInstaller(manifest, cacheDir)
	changed, _, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed {
		t.Fatalf("expected lockfile change")
	}
	pkg, ok := lock.FindPackage("lib")
	if !ok || pkg.Version != hash.String() {
		t.Fatalf("locked package = %#v, %v", pkg, ok)
	}
	checkout := filepath.Join(cacheDir, "pkg", "src", "lib", sanitizePathSegment(hash.String()), "lib.js")
	if _, err := os.Stat(checkout); err != nil {
		t.Fatalf("checkout missing: %v", err)
	}

	// A second install reuses the cached checkout without changes.
	changed, _, err = installer.Install(lock)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if changed {
		t.Fatalf("second install should be a no-op")
	}
}
