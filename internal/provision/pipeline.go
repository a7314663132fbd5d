package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/containerd/platforms"

	"github.com/fabricforge/mpimage/internal/recipe"
	"github.com/fabricforge/mpimage/internal/runtime"
)

// The surface the executor needs from a build container. Satisfied by
// [runtime.Container].
type container interface {
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*runtime.ExecResult, error)
	MkdirAll(ctx context.Context, path string) error
}

// Holds shared state for executing the steps of one recipe run.
type pipeline struct {
	ctr        container // Build container the steps run in.
	arch       string    // Normalized architecture of the build platform.
	buildRoot  string    // Staging root for source trees.
	aptUpdated bool      // Whether the package index has been refreshed.
}

// Creates a new [pipeline] for a container started for the given platform.
func newPipeline(ctr container, platform, buildRoot string) (*pipeline, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvision, err)
	}

	return &pipeline{
		ctr:       ctr,
		arch:      p.Architecture,
		buildRoot: buildRoot,
	}, nil
}

// Executes a list of steps in order against the build container.
//
// Steps execute strictly in sequence; the first failure aborts the run.
// There is no retry and no rollback: a failed run leaves the container in a
// partially provisioned state, which the caller destroys without exporting.
func (p *pipeline) run(ctx context.Context, steps []recipe.Step) error {
	for i, step := range steps {
		if err := p.executeStep(ctx, step); err != nil {
			return fmt.Errorf("%w: step %d (%s): %w", ErrProvision, i+1, step.Kind(), err)
		}
	}
	return nil
}

// Runs a shell command inside the build container, treating a non-zero exit
// code as an error.
func (p *pipeline) exec(ctx context.Context, command string, env []string, workdir string) error {
	slog.Debug("run", "command", command, "workdir", workdir)

	result, err := p.ctr.Exec(ctx, defaultShell, command, env, workdir)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: exit code %d: %s", ErrCommandFailed, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Maps kernel architecture identifiers (uname -m) to their OCI equivalents
// so recipes may use either form.
func normalizeArch(arch string) string {
	switch arch {
	case "x86_64":
		return "amd64"
	case "aarch64":
		return "arm64"
	default:
		return arch
	}
}

// Whether a step's architecture gate matches the build architecture.
func archMatches(want, have string) bool {
	return normalizeArch(want) == normalizeArch(have)
}
