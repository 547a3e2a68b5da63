package petrel

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"time"
)

var semverRE = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// CodexVersion returns the host codex CLI version, or "" when codex is not
// installed or its output has no recognizable version. Never an error: the
// version only gates image tagging.
func CodexVersion() string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, CodexBin, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return ""
	}
	return parseCodexVersion(out.String())
}

func parseCodexVersion(out string) string {
	if m := semverRE.FindStringSubmatch(out); m != nil {
		return m[1]
	}
	return ""
}
