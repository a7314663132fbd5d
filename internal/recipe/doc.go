// Package recipe models ordered provisioning recipes.
//
// A recipe is a variable map plus a flat, ordered list of steps. Each step
// is one of: a package install, an architecture-gated package install, a
// source build (fetch at a pinned tag or URL, then configure/make/install),
// a best-effort cleanup, or a config-file append. Steps are immutable once
// loaded and execute exactly once, in declaration order; ordering is the
// only correctness guarantee between steps.
//
// Loading parses YAML strictly, applies variable overrides, expands ${name}
// references (variables may reference each other), and validates the
// result: build commands must parse as POSIX shell, version-shaped
// variables must parse as versions, and build prerequisites declared via
// needs must already be satisfied by declaration order.
//
// The built-in recipe (mpi.yaml) assembles an Open MPI runtime with UCX
// and Slurm PMI2 support; [Default] loads it with overridable pins.
package recipe
