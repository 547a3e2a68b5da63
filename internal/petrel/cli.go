package petrel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func Main() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		// Cobra already prints errors for many cases; keep this concise.
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() > 0 {
			return ee.ExitCode()
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "petrel",
		Short: "Run the Codex CLI inside an Apple container",
		Long: strings.TrimSpace(`
Run the Codex CLI inside a container managed by the Apple container subsystem.

petrel codex      starts Codex in a container with your repository mounted
petrel build      builds the container image from a Dockerfile template
petrel dockerfile prints the rendered Dockerfile template

Defaults for the codex command can be stored in a config file:
  petrel config set image codex
  petrel config show
`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// dockerfile and config never touch the container runtime.
			for current := cmd; current != nil; current = current.Parent() {
				if current.Name() == "dockerfile" || current.Name() == "config" {
					return nil
				}
			}
			return Container{}.Require()
		},
	}

	root.AddCommand(newCodexCmd())
	root.AddCommand(newDockerfileCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newConfigCmd())
	return root
}

func newCodexCmd() *cobra.Command {
	var (
		name          string
		persistentDir string
		destDir       string
		repoDir       string
		image         string
		codexPath     string
		shell         bool
		noAutoStart   bool
	)

	cmd := &cobra.Command{
		Use:   "codex [flags] [-- codex-args...]",
		Short: "Run the Codex container with sensible defaults",
		Long: strings.TrimSpace(`
Run the Codex container with sensible defaults.

Arguments after -- are passed verbatim to the codex executable inside the
container. Use --shell to get an interactive bash instead (debug aid).
`),
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}

			opts := RunOptions{
				Name:      firstNonEmpty(name, cfg.Name, DefaultName),
				DestDir:   firstNonEmpty(destDir, cfg.DestDir, DefaultDestDir),
				Image:     firstNonEmpty(image, cfg.Image, DefaultImage),
				CodexPath: firstNonEmpty(codexPath, cfg.CodexPath, DefaultCodexPath),
				Shell:     shell,
				Args:      args,
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			opts.PersistentDir, err = resolvePersistentDir(firstNonEmpty(persistentDir, cfg.PersistentDir))
			if err != nil {
				return err
			}
			opts.RepoDir, err = resolveRepoDir(repoDir)
			if err != nil {
				return err
			}

			ct := Container{}
			if err := ct.EnsureRunning(cmd.Context(), !noAutoStart); err != nil {
				return err
			}
			if err := ensureImage(cmd.Context(), ct, opts.Image, noAutoStart); err != nil {
				return err
			}

			// Ensure mount sources exist so `--mount src=…` never errors.
			if err := os.MkdirAll(opts.PersistentDir, 0o755); err != nil {
				return fmt.Errorf("create persistent dir %s: %w", opts.PersistentDir, err)
			}
			opts.UVCacheDir, err = EnsureCaches(opts.RepoDir)
			if err != nil {
				return err
			}

			argv := ComposeRunArgs(opts)
			fmt.Println("Executing: " + shellQuote(append([]string{ContainerBin}, argv...)))
			// Replace process for better UX (signals/TTY).
			return execReplace(ContainerBin, argv)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name for the running container instance (default "+DefaultName+")")
	cmd.Flags().StringVar(&persistentDir, "persistent-dir", "", "Host directory to persist Codex data (default ~/"+PersistentDirName+")")
	cmd.Flags().StringVar(&destDir, "dest-dir", "", "Destination path inside the container for the persistent directory (default "+DefaultDestDir+")")
	cmd.Flags().StringVar(&repoDir, "repo-dir", "", "Local repository to bind-mount inside the container (default: current directory)")
	cmd.Flags().StringVar(&image, "image", "", "Container image name, tag optional (default "+DefaultImage+")")
	cmd.Flags().StringVar(&codexPath, "codex-path", "", "Path to the Codex executable inside the container (default "+DefaultCodexPath+")")
	cmd.Flags().BoolVar(&shell, "shell", false, "Launch an interactive shell instead of Codex (debug aid)")
	cmd.Flags().BoolVar(&noAutoStart, "no-auto-start", false, "Do not attempt to auto-start the container subsystem; error instead")
	return cmd
}

// ensureImage makes sure the selected image exists and is current, prompting
// to (re)build where a terminal is available.
func ensureImage(ctx context.Context, ct Container, image string, noAutoStart bool) error {
	version := CodexVersion()
	if !ct.ImageExists(ctx, image) {
		if !isTTY() {
			return fmt.Errorf("container image %q not found; build it with: petrel build --tag %s", image, image)
		}
		if !confirm(fmt.Sprintf("Container image %q not found. Build it now?", image), true) {
			return fmt.Errorf("image %q is required but was not built", image)
		}
		if err := runBuild(ct, buildOptions{Tag: image, ContextDir: ".", Version: version, AutoStart: !noAutoStart}); err != nil {
			return err
		}
	}

	if version == "" || !isTTY() {
		return nil
	}
	repo, _, _ := strings.Cut(image, ":")
	versionTag := repo + ":" + version
	latestTags := ct.ImageRepoTags(ctx, repo+":latest")
	current := ct.ImageExists(ctx, versionTag) && contains(latestTags, versionTag)
	if current {
		return nil
	}
	if !confirm(fmt.Sprintf("Container image %q is outdated. Build it now?", repo+":latest"), true) {
		return nil
	}
	return runBuild(ct, buildOptions{Tag: repo, ContextDir: ".", Version: version, AutoStart: !noAutoStart})
}

func resolvePersistentDir(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, PersistentDirName), nil
	}
	return filepath.Abs(expandUser(p))
}

func resolveRepoDir(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(expandUser(p))
	if err != nil {
		return "", err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repo dir: %w", err)
	}
	if !st.IsDir() {
		return "", fmt.Errorf("repo dir is not a directory: %s", abs)
	}
	return abs, nil
}

func newDockerfileCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "dockerfile",
		Short: "Print the rendered Dockerfile template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rendered, err := RenderTemplateFile(file, nil)
			if err != nil {
				return err
			}
			if !strings.HasSuffix(rendered, "\n") {
				rendered += "\n"
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the Dockerfile template (default: built-in template)")
	return cmd
}

type buildOptions struct {
	Tag          string
	TemplateFile string
	ContextDir   string
	Version      string // host codex version, "" when undetectable
	Rebuild      bool
	AutoStart    bool
}

func runBuild(ct Container, opts buildOptions) error {
	if err := ct.EnsureRunning(context.Background(), opts.AutoStart); err != nil {
		return err
	}

	rendered, err := RenderTemplateFile(opts.TemplateFile, map[string]string{"codex_version": opts.Version})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "petrel-dockerfile-*")
	if err != nil {
		return fmt.Errorf("create temp Dockerfile: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(rendered); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp Dockerfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	repo, _, _ := strings.Cut(opts.Tag, ":")
	var tags []string
	if opts.Version != "" {
		tags = append(tags, repo+":"+opts.Version)
	}
	tags = append(tags, repo+":latest")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()
	if err := ct.BuildImage(ctx, tags, tmp.Name(), opts.ContextDir, opts.Rebuild); err != nil {
		return fmt.Errorf("container build: %w", err)
	}
	return ct.EnsureTags(context.Background(), repo, opts.Version)
}

func newBuildCmd() *cobra.Command {
	var (
		tag         string
		file        string
		contextDir  string
		rebuild     bool
		noAutoStart bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the container image using the Dockerfile template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(contextDir); err != nil {
				return fmt.Errorf("build context: %w", err)
			}
			return runBuild(Container{}, buildOptions{
				Tag:          tag,
				TemplateFile: file,
				ContextDir:   contextDir,
				Version:      CodexVersion(),
				Rebuild:      rebuild,
				AutoStart:    !noAutoStart,
			})
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", DefaultImage, "Container image tag to build")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the Dockerfile template (default: built-in template)")
	cmd.Flags().StringVar(&contextDir, "context", ".", "Build context directory")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Force a full rebuild without using any cached layers")
	cmd.Flags().BoolVar(&noAutoStart, "no-auto-start", false, "Do not attempt to auto-start the container subsystem; error instead")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage petrel configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:         %s\n", getConfigPath())
			fmt.Fprintf(out, "name:           %s\n", firstNonEmpty(cfg.Name, DefaultName))
			fmt.Fprintf(out, "image:          %s\n", firstNonEmpty(cfg.Image, DefaultImage))
			fmt.Fprintf(out, "codex-path:     %s\n", firstNonEmpty(cfg.CodexPath, DefaultCodexPath))
			fmt.Fprintf(out, "dest-dir:       %s\n", firstNonEmpty(cfg.DestDir, DefaultDestDir))
			fmt.Fprintf(out, "persistent-dir: %s\n", firstNonEmpty(cfg.PersistentDir, "~/"+PersistentDirName))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a default (name, image, codex-path, dest-dir, persistent-dir)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			if err := setConfigKey(&cfg, strings.TrimSpace(args[0]), strings.TrimSpace(args[1])); err != nil {
				return err
			}
			if err := writeConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %s=%s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}
