package petrel

import "fmt"

// RunOptions is everything the codex command needs to compose a
// `container run` invocation.
type RunOptions struct {
	Name          string
	PersistentDir string // host dir persisted across runs
	DestDir       string // mount destination of PersistentDir in the container
	RepoDir       string // repository bind-mounted at RepoMountDest
	UVCacheDir    string // host uv cache, mounted at UVCacheMountDest when set
	Image         string
	CodexPath     string   // codex executable inside the container
	Shell         bool     // run /bin/bash instead of codex
	Args          []string // pass-through arguments for codex
}

// Validate rejects option combinations the composer cannot express.
func (o RunOptions) Validate() error {
	if o.Shell && len(o.Args) > 0 {
		return fmt.Errorf("%w: --shell cannot be combined with pass-through codex arguments", ErrInvalidOptions)
	}
	return nil
}

// ComposeRunArgs builds the argv handed to the container binary. Pure: same
// options, same sequence.
func ComposeRunArgs(o RunOptions) []string {
	args := []string{
		"run",
		"--name", o.Name,
		"--rm",
		"-it",
		"-v", o.RepoDir + ":" + RepoMountDest,
		"--mount", "src=" + o.PersistentDir + ",dst=" + o.DestDir,
	}
	if o.UVCacheDir != "" {
		args = append(args, "--mount", "src="+o.UVCacheDir+",dst="+UVCacheMountDest)
	}
	args = append(args, o.Image)
	if o.Shell {
		return append(args, "/bin/bash")
	}
	args = append(args, o.CodexPath)
	return append(args, o.Args...)
}
