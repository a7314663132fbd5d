package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Sequence counter for generating unique exec process identifiers.
var execSeq uint64

// Returns a unique exec process identifier.
func nextExecID() string {
	return fmt.Sprintf("exec-%d", atomic.AddUint64(&execSeq, 1))
}

// Output of a command execution inside a container.
type ExecResult struct {
	ExitCode int    // Exit code of the process.
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
}

// Runs a command inside the container.
//
// The command is passed to the shell as a single argument via "shell -c
// command". Environment variables and working directory override the
// container's OCI spec for this execution only. A non-zero exit code is
// reported in the result, not as an error; the caller decides.
func (c *Container) Exec(ctx context.Context, shell, command string, env []string, workdir string) (*ExecResult, error) {
	pspec, err := c.buildProcessSpec(ctx, env, workdir, shell, "-c", command)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	var stdout, stderr bytes.Buffer
	exitCode, err := c.execProcess(ctx, pspec, &stdout, &stderr)
	if err != nil {
		return nil, err
	}

	return &ExecResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// Creates a directory inside the container, including parents.
func (c *Container) MkdirAll(ctx context.Context, path string) error {
	pspec, err := c.buildProcessSpec(ctx, nil, "", "mkdir", "-p", path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	var stderr bytes.Buffer
	exitCode, err := c.execProcess(ctx, pspec, nil, &stderr)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("%w: mkdir failed with exit code %d (%s)", ErrRuntime, exitCode, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Builds an OCI process spec for running a command inside the container.
//
// The base values are copied from the container's own OCI spec, then env
// and workdir are overridden if provided.
func (c *Container) buildProcessSpec(ctx context.Context, env []string, workdir string, args ...string) (*specs.Process, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, err
	}

	spec, err := ctr.Spec(ctx)
	if err != nil {
		return nil, err
	}

	pspec := *spec.Process
	pspec.Terminal = false
	pspec.Args = args

	if len(env) > 0 {
		pspec.Env = mergeEnv(pspec.Env, env)
	}
	if workdir != "" {
		pspec.Cwd = workdir
	}

	return &pspec, nil
}

// Merges override env vars on top of a base env slice.
func mergeEnv(base, overrides []string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	for _, entry := range overrides {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}

	result := make([]string, 0, len(merged))
	for k, v := range merged {
		result = append(result, k+"="+v)
	}
	return result
}

// Starts a process inside the container's running task, waits for it to
// exit, and returns the exit code.
//
// The process is attached to the task as an additional exec, not as the
// primary process. This requires the task to already be running (started by
// [Container.startTask] during container creation). Nil output streams are
// replaced with io.Discard. A non-zero exit code is not treated as an
// error; the caller decides how to handle it.
func (c *Container) execProcess(ctx context.Context, pspec *specs.Process, stdout, stderr io.Writer) (int, error) {
	task, err := c.loadTask(ctx)
	if err != nil {
		return 0, err
	}

	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	process, err := task.Exec(ctx, nextExecID(), pspec, cio.NewCreator(
		cio.WithStreams(nil, stdout, stderr),
	))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return awaitProcess(ctx, process)
}

// Loads the container's running task.
func (c *Container) loadTask(ctx context.Context) (containerd.Task, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	task, err := ctr.Task(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return task, nil
}

// Waits for an exec process to exit and returns the exit code.
//
// The process is started, then the function blocks until it exits. The
// process is always deleted before returning.
func awaitProcess(ctx context.Context, process containerd.Process) (int, error) {
	statusC, err := process.Wait(ctx)
	if err != nil {
		process.Delete(ctx)
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := process.Start(ctx); err != nil {
		process.Delete(ctx)
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	exitStatus := <-statusC
	process.Delete(ctx)

	code, _, err := exitStatus.Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return int(code), nil
}
