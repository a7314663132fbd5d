package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fabricforge/mpimage/internal/paths"
	"github.com/fabricforge/mpimage/internal/recipe"
	"github.com/fabricforge/mpimage/internal/runtime"
)

// Staging root used when the recipe does not declare a build_root variable.
const defaultBuildRoot = "/var/tmp/mpimage"

// Controls recipe execution.
type Options struct {
	Recipe   *recipe.Recipe // Recipe to execute.
	Base     string         // Path to the base OCI archive.
	Resource string         // Resource name, used as a prefix for container IDs.
	Output   string         // Directory for the exported image.
	Platform string         // Target platform (e.g., "linux/amd64"). Defaults to host.
}

// Returned after successful recipe execution.
type Result struct {
	Output string // Directory containing the exported image.
}

// Executes a recipe against the container runtime.
//
// A build container is started from the base image, the recipe's steps are
// applied strictly in declaration order, and the committed filesystem is
// exported as an OCI archive to the output directory. The first failing
// step aborts the whole run; the partially provisioned container is
// destroyed, never exported.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = runtime.DefaultPlatform()
	}

	slog.Info("executing recipe",
		"resource", opts.Resource,
		"base", opts.Base,
		"output", opts.Output,
		"steps", len(opts.Recipe.Steps),
		"platform", opts.Platform,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	id := fmt.Sprintf("%s-provision", opts.Resource)
	ctr, err := rt.StartContainer(ctx, opts.Base, id, opts.Platform)
	if err != nil {
		return nil, err
	}
	defer ctr.Destroy(ctx)

	p, err := newPipeline(ctr, opts.Platform, buildRoot(opts.Recipe))
	if err != nil {
		return nil, err
	}

	if err := p.run(ctx, opts.Recipe.Steps); err != nil {
		return nil, err
	}

	if err := ctr.Stop(ctx); err != nil {
		return nil, err
	}

	if err := ctr.Export(ctx, opts.Output); err != nil {
		return nil, err
	}

	return &Result{Output: opts.Output}, nil
}

// Returns the staging root declared by the recipe, or the default.
func buildRoot(r *recipe.Recipe) string {
	if root, ok := r.Var("build_root"); ok && root != "" {
		return root
	}
	return defaultBuildRoot
}
