package cli

import (
	"context"
	"log/slog"

	"github.com/fabricforge/mpimage/internal/paths"
	"github.com/fabricforge/mpimage/internal/provision"
	"github.com/fabricforge/mpimage/internal/recipe"
	"github.com/fabricforge/mpimage/internal/runtime"
)

// Represents the 'mpimage build' command.
type BuildCmd struct {
	Base     string            `arg:"" help:"Path to the base OCI archive." type:"existingfile"`
	Recipe   string            `short:"r" help:"Recipe file. Defaults to the built-in MPI recipe." type:"existingfile" optional:""`
	Output   string            `short:"o" help:"Output directory for the exported image." placeholder:"DIR"`
	Platform string            `short:"p" help:"Target platform (e.g. linux/amd64). Defaults to the host." placeholder:"OS/ARCH"`
	Resource string            `help:"Name prefix for build containers." default:"mpi"`
	Set      map[string]string `help:"Override recipe variables (name=value)." placeholder:"NAME=VALUE"`
}

// Executes the build command.
//
// Loads and resolves the recipe, starts a build container from the base
// image, applies the recipe, and exports the provisioned image.
func (c *BuildCmd) Run(ctx context.Context) error {
	r, err := loadRecipe(c.Recipe, c.Set)
	if err != nil {
		return err
	}

	rt, err := runtime.New(RootCmd.Address, RootCmd.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	output := c.Output
	if output == "" {
		output = paths.Output()
	}

	result, err := provision.Run(ctx, rt, provision.Options{
		Recipe:   r,
		Base:     c.Base,
		Resource: c.Resource,
		Output:   output,
		Platform: c.Platform,
	})
	if err != nil {
		return err
	}

	slog.Info("build complete", "output", result.Output)
	return nil
}

// Loads a recipe file, or the built-in MPI recipe when no file is given.
func loadRecipe(path string, overrides map[string]string) (*recipe.Recipe, error) {
	if path == "" {
		return recipe.Default(overrides)
	}
	return recipe.LoadFile(path, overrides)
}
