package petrel

import "testing"

func TestParseCodexVersion(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"codex-cli 9.9.9", "9.9.9"},
		{"codex-cli 1.2.3\n", "1.2.3"},
		{"Codex CLI version 0.14.0 (build abc)", "0.14.0"},
		{"no version here", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := parseCodexVersion(c.in); got != c.want {
			t.Fatalf("parseCodexVersion(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
