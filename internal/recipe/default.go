package recipe

import _ "embed"

// Built-in MPI runtime recipe: UCX, then Slurm PMI2, then Open MPI, with
// pinned versions and known-good configure flags.
//
//go:embed mpi.yaml
var defaultRecipe []byte

// Loads the built-in MPI recipe with optional variable overrides.
func Default(overrides map[string]string) (*Recipe, error) {
	return Load(defaultRecipe, overrides)
}
