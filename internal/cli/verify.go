package cli

import (
	"context"
	"fmt"

	"github.com/containerd/platforms"

	"github.com/fabricforge/mpimage/internal/inspect"
	"github.com/fabricforge/mpimage/internal/runtime"
)

// Represents the 'mpimage verify' command.
type VerifyCmd struct {
	Image    string            `arg:"" help:"Path to the provisioned OCI archive." type:"existingfile"`
	Recipe   string            `short:"r" help:"Recipe the image was built from. Defaults to the built-in MPI recipe." type:"existingfile" optional:""`
	Platform string            `short:"p" help:"Platform the image was built for. Defaults to the host." placeholder:"OS/ARCH"`
	Set      map[string]string `help:"Override recipe variables (name=value)." placeholder:"NAME=VALUE"`
}

// Executes the verify command.
//
// Starts a container from the provisioned image and checks the compiled-in
// transport set, the launch agent override, and the installed component
// versions against the recipe's pins. A failed check is reported for every
// finding and fails the command.
func (c *VerifyCmd) Run(ctx context.Context) error {
	r, err := loadRecipe(c.Recipe, c.Set)
	if err != nil {
		return err
	}

	platform := c.Platform
	if platform == "" {
		platform = runtime.DefaultPlatform()
	}
	p, err := platforms.Parse(platform)
	if err != nil {
		return err
	}

	rt, err := runtime.New(RootCmd.Address, RootCmd.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctr, err := rt.StartContainer(ctx, c.Image, "mpi-verify", platform)
	if err != nil {
		return err
	}
	defer ctr.Destroy(ctx)

	prefix, _ := r.Var("prefix")
	if prefix == "" {
		prefix = "/usr/local"
	}
	pinnedOMPI, _ := r.Var("ompi_version")
	pinnedUCX, _ := r.Var("ucx_version")

	report, err := inspect.Run(ctx, ctr, inspect.Options{
		Prefix:      prefix,
		Arch:        p.Architecture,
		OMPIVersion: pinnedOMPI,
		UCXVersion:  pinnedUCX,
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, check := range report.Checks {
		status := "ok  "
		if !check.OK {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%s  %-12s  %s\n", status, check.Name, check.Detail)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(report.Checks))
	}
	return nil
}
