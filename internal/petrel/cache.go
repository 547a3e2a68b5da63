package petrel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// RepoKey derives a short stable key for a repository path so distinct repos
// with the same basename get distinct cache directories.
func RepoKey(repoDir string) string {
	sum := sha256.Sum256([]byte(repoDir))
	return hex.EncodeToString(sum[:])[:8]
}

func cacheBase() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "petrel"), nil
}

// EnsureCaches creates the per-repo venv cache and the shared uv cache under
// ~/.cache/petrel and returns the uv cache path (the one that gets mounted).
func EnsureCaches(repoDir string) (string, error) {
	abs, err := filepath.Abs(expandUser(repoDir))
	if err != nil {
		return "", err
	}
	base, err := cacheBase()
	if err != nil {
		return "", err
	}

	repoCache := filepath.Join(base, filepath.Base(abs)+"-"+RepoKey(abs))
	uvCache := filepath.Join(base, "uv_cache")
	for _, dir := range []string{filepath.Join(repoCache, ".venv"), uvCache} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create cache dir %s: %w", dir, err)
		}
	}
	return uvCache, nil
}
