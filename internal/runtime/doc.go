// Package runtime manages build containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image import
// and container creation. Base OCI archives are imported, tagged with a
// deterministic content hash, unpacked for the target platform, and used
// to create containers with overlayfs snapshots.
//
// Each [Container] wraps a running containerd task. Provisioning commands
// are executed inside the container as additional exec processes, and the
// final filesystem state can be committed and exported as a new OCI
// archive. When the container is no longer needed it should be destroyed
// to release its snapshot and task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "mpimage")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartContainer(ctx, "base.tar", "mpi-build", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "apt-get update", nil, "")
//	if err != nil {
//	    return err
//	}
//
//	if err := ctr.Export(ctx, "output"); err != nil {
//	    return err
//	}
package runtime
