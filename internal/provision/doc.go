// Package provision executes provisioning recipes against build containers.
//
// A run starts a container from a base OCI archive, applies the recipe's
// steps strictly in declaration order, and exports the committed filesystem
// as a new OCI archive. Ordering is the only correctness guarantee between
// steps: a step's preconditions (a cloned tree on disk, an installed
// library) are established solely by the steps before it.
//
// Failure semantics are fail-fast with no retry and no rollback. Any
// non-zero exit from a package install, source fetch, or build command
// halts the run and the partially provisioned container is destroyed
// without being exported. Cleanup steps are the one exception: they remove
// staging content that is no longer needed, so their failure is logged and
// ignored.
//
// Architecture-gated package steps compare their gate against the
// architecture of the platform the container was started for and are a
// silent no-op elsewhere.
//
// Example usage:
//
//	result, err := provision.Run(ctx, rt, provision.Options{
//	    Recipe:   r,
//	    Base:     "ubuntu-22.04.tar",
//	    Resource: "mpi-runtime",
//	    Output:   "dist",
//	})
//	if err != nil {
//	    return err
//	}
package provision
