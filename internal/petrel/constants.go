package petrel

const (
	ContainerBin = "container"
	CodexBin     = "codex"

	DefaultName      = "codex-test"
	DefaultImage     = "codex"
	DefaultDestDir   = "/home/linuxbrew/.codex"
	DefaultCodexPath = "/home/linuxbrew/.linuxbrew/bin/codex"

	// PersistentDirName is resolved under the user's home directory.
	PersistentDirName = ".codex-container"

	RepoMountDest    = "/home/linuxbrew/repo"
	UVCacheMountDest = "/home/linuxbrew/.uv_cache"
)
