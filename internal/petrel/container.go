package petrel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	startPollInterval = 500 * time.Millisecond
	startTimeout      = 30 * time.Second
)

// Container wraps the host `container` CLI (the Apple container subsystem
// frontend). The zero value talks to the real binary.
type Container struct {
	Bin     string        // defaults to "container"
	Timeout time.Duration // default per-call timeout

	// Exec overrides subprocess execution. Tests swap this in so no real
	// processes are spawned. It must return the combined output and an error
	// on nonzero exit, like runCapture does for the real binary.
	Exec func(ctx context.Context, args ...string) (string, error)
}

func (c Container) bin() string {
	if c.Bin == "" {
		return ContainerBin
	}
	return c.Bin
}

func (c Container) runCapture(ctx context.Context, args ...string) (string, error) {
	if c.Exec != nil {
		return c.Exec(ctx, args...)
	}
	cmd := exec.CommandContext(ctx, c.bin(), args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if err == nil {
		return out.String(), nil
	}
	msg := strings.TrimSpace(out.String())
	if msg == "" {
		return "", err
	}
	return out.String(), fmt.Errorf("%w: %s", err, msg)
}

// run streams output to the host terminal; used for long operations (build,
// system start) where the user wants to see progress.
func (c Container) run(ctx context.Context, args ...string) error {
	if c.Exec != nil {
		_, err := c.Exec(ctx, args...)
		return err
	}
	cmd := exec.CommandContext(ctx, c.bin(), args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Require verifies the container binary is installed on the host.
func (c Container) Require() error {
	if c.Exec != nil {
		return nil
	}
	if _, err := exec.LookPath(c.bin()); err != nil {
		return fmt.Errorf("%w (install it first, e.g. `brew install container`)", ErrCLINotFound)
	}
	return nil
}

// SystemRunning reports whether the container subsystem is up. The status
// subcommand exits 0 only when the subsystem is running.
func (c Container) SystemRunning(ctx context.Context) (bool, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	_, err := c.runCapture(ctx, "system", "status")
	if err == nil {
		return true, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return false, ErrCLINotFound
	}
	return false, nil
}

// EnsureRunning is the subsystem gatekeeper: verify the subsystem is up and,
// when permitted, start it and wait for readiness.
func (c Container) EnsureRunning(ctx context.Context, autoStart bool) error {
	running, err := c.SystemRunning(ctx)
	if err != nil {
		return err
	}
	if running {
		return nil
	}
	if !autoStart {
		return ErrSubsystemNotRunning
	}

	fmt.Fprintln(os.Stderr, "Apple container subsystem is not running - starting it now…")
	startCtx, cancel := context.WithTimeout(ctx, orDefault(c.Timeout, 60*time.Second))
	defer cancel()
	if err := c.run(startCtx, "system", "start"); err != nil {
		return fmt.Errorf("%w: %v", ErrSubsystemStartFailed, err)
	}

	deadline := time.Now().Add(startTimeout)
	for {
		running, err := c.SystemRunning(ctx)
		if err != nil {
			return err
		}
		if running {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: subsystem did not become ready within %s", ErrSubsystemStartFailed, startTimeout)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrSubsystemStartFailed, ctx.Err())
		case <-time.After(startPollInterval):
		}
	}
}

// ImageExists reports whether the image (or tag) is present locally.
func (c Container) ImageExists(ctx context.Context, ref string) bool {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	_, err := c.runCapture(ctx, "images", "inspect", ref)
	return err == nil
}

// ImageRepoTags returns the RepoTags of a local image, or nil when the image
// is missing or the inspect output cannot be decoded.
func (c Container) ImageRepoTags(ctx context.Context, ref string) []string {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	out, err := c.runCapture(ctx, "images", "inspect", ref)
	if err != nil {
		return nil
	}
	var arr []struct {
		RepoTags []string `json:"RepoTags"`
	}
	if err := json.Unmarshal([]byte(out), &arr); err != nil || len(arr) == 0 {
		return nil
	}
	return arr[0].RepoTags
}

// TagImage applies dst as an additional tag of src.
func (c Container) TagImage(ctx context.Context, src, dst string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()
	_, err := c.runCapture(ctx, "image", "tag", src, dst)
	return err
}

// BuildImage runs `container build` with the given tags, Dockerfile, and
// context directory, streaming output to the terminal.
func (c Container) BuildImage(ctx context.Context, tags []string, dockerfile, contextDir string, noCache bool) error {
	args := []string{"build"}
	if noCache {
		args = append(args, "--no-cache")
	}
	for _, t := range tags {
		args = append(args, "--tag", t)
	}
	args = append(args, "--file", dockerfile, contextDir)
	fmt.Println("Executing: " + shellQuote(append([]string{c.bin()}, args...)))
	return c.run(ctx, args...)
}

// EnsureTags reconciles the expected tag set for a built image: whichever of
// repo:<version> / repo:latest exists becomes the source for any missing one.
func (c Container) EnsureTags(ctx context.Context, repo, version string) error {
	expected := []string{repo + ":latest"}
	if version != "" {
		expected = append([]string{repo + ":" + version}, expected...)
	}

	var existing []string
	for _, tag := range expected {
		if c.ImageExists(ctx, tag) {
			existing = append(existing, tag)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	source := existing[0]
	for _, tag := range expected {
		if contains(existing, tag) {
			continue
		}
		if err := c.TagImage(ctx, source, tag); err != nil {
			return fmt.Errorf("tag %s as %s: %w", source, tag, err)
		}
	}
	return nil
}

func (c Container) callCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, orDefault(c.Timeout, 20*time.Second))
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func orDefault[T comparable](v T, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
