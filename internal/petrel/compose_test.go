package petrel

import (
	"errors"
	"reflect"
	"testing"
)

func TestComposeRunArgsOrdering(t *testing.T) {
	opts := RunOptions{
		Name:          "x",
		PersistentDir: "/a",
		DestDir:       "/b",
		RepoDir:       "/r",
		Image:         "img",
		CodexPath:     "/codex",
		Args:          []string{"--version"},
	}
	got := ComposeRunArgs(opts)
	want := []string{
		"run",
		"--name", "x",
		"--rm",
		"-it",
		"-v", "/r:" + RepoMountDest,
		"--mount", "src=/a,dst=/b",
		"img",
		"/codex", "--version",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("argv mismatch:\n got: %v\nwant: %v", got, want)
	}
}

func TestComposeRunArgsDeterministic(t *testing.T) {
	opts := RunOptions{
		Name:          "codex-test",
		PersistentDir: "/p",
		DestDir:       "/d",
		RepoDir:       "/repo",
		UVCacheDir:    "/uv",
		Image:         "codex:latest",
		CodexPath:     DefaultCodexPath,
		Args:          []string{"exec", "do things"},
	}
	first := ComposeRunArgs(opts)
	second := ComposeRunArgs(opts)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("compose is not deterministic:\n%v\n%v", first, second)
	}
}

func TestComposeRunArgsShellMode(t *testing.T) {
	opts := RunOptions{
		Name:          "x",
		PersistentDir: "/a",
		DestDir:       "/b",
		RepoDir:       "/r",
		Image:         "img",
		CodexPath:     "/codex",
		Shell:         true,
	}
	got := ComposeRunArgs(opts)
	if got[len(got)-1] != "/bin/bash" {
		t.Fatalf("expected /bin/bash entry point, got %v", got)
	}
	for _, a := range got {
		if a == "/codex" {
			t.Fatalf("shell mode must not include the codex path: %v", got)
		}
	}
}

func TestComposeRunArgsUVCacheMount(t *testing.T) {
	opts := RunOptions{
		Name:          "x",
		PersistentDir: "/a",
		DestDir:       "/b",
		RepoDir:       "/r",
		UVCacheDir:    "/cache/uv",
		Image:         "img",
		CodexPath:     "/codex",
	}
	got := ComposeRunArgs(opts)
	found := false
	for i, a := range got {
		if a == "src=/cache/uv,dst="+UVCacheMountDest {
			found = true
			if got[i-1] != "--mount" {
				t.Fatalf("uv cache mapping not preceded by --mount: %v", got)
			}
		}
	}
	if !found {
		t.Fatalf("expected uv cache mount in %v", got)
	}
}

func TestValidateRejectsShellWithArgs(t *testing.T) {
	opts := RunOptions{Shell: true, Args: []string{"--version"}}
	err := opts.Validate()
	if err == nil {
		t.Fatalf("expected error for --shell with pass-through args")
	}
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestValidateAllowsShellAlone(t *testing.T) {
	if err := (RunOptions{Shell: true}).Validate(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := (RunOptions{Args: []string{"--help"}}).Validate(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
