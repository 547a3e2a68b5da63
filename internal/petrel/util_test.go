package petrel

import (
	"path/filepath"
	"testing"
)

func TestShellQuote(t *testing.T) {
	got := shellQuote([]string{"container", "run", "--name", "codex test", "a'b", "plain"})
	want := `container run --name 'codex test' 'a'\''b' plain`
	if got != want {
		t.Fatalf("shellQuote mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestExpandUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := expandUser("~"); got != home {
		t.Fatalf("expected %q, got %q", home, got)
	}
	if got := expandUser("~/x"); got != filepath.Join(home, "x") {
		t.Fatalf("expected %q, got %q", filepath.Join(home, "x"), got)
	}
	if got := expandUser("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute paths must pass through, got %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
	if got := firstNonEmpty("", " "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
