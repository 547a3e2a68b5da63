package petrel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRepoKey(t *testing.T) {
	a := RepoKey("/home/user/projects/foo")
	b := RepoKey("/home/user/other/foo")
	if len(a) != 8 {
		t.Fatalf("expected 8-char key, got %q", a)
	}
	if a == b {
		t.Fatalf("distinct paths must get distinct keys: %q", a)
	}
	if a != RepoKey("/home/user/projects/foo") {
		t.Fatalf("key must be stable for the same path")
	}
}

func TestEnsureCaches(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	repo := filepath.Join(home, "myrepo")
	if err := os.MkdirAll(repo, 0o755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}

	uvCache, err := EnsureCaches(repo)
	if err != nil {
		t.Fatalf("EnsureCaches: %v", err)
	}
	if uvCache != filepath.Join(home, ".cache", "petrel", "uv_cache") {
		t.Fatalf("unexpected uv cache path: %q", uvCache)
	}
	if st, err := os.Stat(uvCache); err != nil || !st.IsDir() {
		t.Fatalf("expected uv cache dir to exist: %v", err)
	}

	venv := filepath.Join(home, ".cache", "petrel", "myrepo-"+RepoKey(repo), ".venv")
	if st, err := os.Stat(venv); err != nil || !st.IsDir() {
		t.Fatalf("expected per-repo venv cache dir %s: %v", venv, err)
	}
}

func TestEnsureCachesDistinctReposSameName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	repoA := filepath.Join(home, "a", "proj")
	repoB := filepath.Join(home, "b", "proj")
	for _, r := range []string{repoA, repoB} {
		if err := os.MkdirAll(r, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if _, err := EnsureCaches(r); err != nil {
			t.Fatalf("EnsureCaches(%s): %v", r, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(home, ".cache", "petrel"))
	if err != nil {
		t.Fatalf("read cache base: %v", err)
	}
	var projDirs []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "proj-") {
			projDirs = append(projDirs, e.Name())
		}
	}
	if len(projDirs) != 2 {
		t.Fatalf("expected two distinct cache dirs for same-named repos, got %v", projDirs)
	}
}
