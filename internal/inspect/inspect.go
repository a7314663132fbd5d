package inspect

import (
	"context"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/fabricforge/mpimage/internal/runtime"
)

// MCA parameter that names the remote launch agent. The produced image
// carries no rsh/ssh, so the install pipeline pins it to "false".
const launchAgentParam = "plm_rsh_agent"

// The surface needed from a container holding the produced image. Satisfied
// by [runtime.Container].
type Execer interface {
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*runtime.ExecResult, error)
}

// Controls image verification.
type Options struct {
	Prefix      string // Install prefix of the MPI runtime (e.g., /usr/local).
	Arch        string // Normalized architecture the image was built for.
	OMPIVersion string // Pinned Open MPI version to compare against. Empty skips the check.
	UCXVersion  string // Pinned UCX version to compare against. Empty skips the check.
}

// Outcome of a single verification check.
type Check struct {
	Name   string // Short identifier for the check.
	OK     bool   // Whether the check passed.
	Detail string // Human-readable finding.
}

// Collected verification results for one image.
type Report struct {
	Checks []Check
}

// Whether every check passed.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Appends a check outcome.
func (r *Report) add(name string, ok bool, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, OK: ok, Detail: fmt.Sprintf(format, args...)})
}

// Verifies a provisioned MPI image.
//
// Runs the runtime's diagnostics commands inside a container started from
// the image and checks the compiled-in transport set, the launch agent
// override in the generated MCA params file, and (where pins are given)
// the installed Open MPI and UCX versions.
func Run(ctx context.Context, ctr Execer, opts Options) (*Report, error) {
	report := &Report{}

	output, err := execOutput(ctx, ctr, opts.Prefix+"/bin/ompi_info --all")
	if err != nil {
		return nil, err
	}

	components := parseComponents(output)
	checkTransports(report, components, opts.Arch)
	checkVersion(report, output, opts.OMPIVersion)

	// UCX installs under its own subtree of the prefix and ships its own
	// diagnostics command.
	if opts.UCXVersion != "" {
		ucxOutput, err := execOutput(ctx, ctr, opts.Prefix+"/ucx/bin/ucx_info -v")
		if err != nil {
			return nil, err
		}
		checkUCXVersion(report, ucxOutput, opts.UCXVersion)
	}

	paramsPath := opts.Prefix + "/etc/openmpi-mca-params.conf"
	params, err := execOutput(ctx, ctr, "cat "+paramsPath)
	if err != nil {
		return nil, err
	}
	checkLaunchAgent(report, params)

	return report, nil
}

// Checks the compiled-in transport component set.
//
// The image must carry the tcp byte-transfer layer and the UCX pml, and
// must not carry the openib verbs transport (excluded at configure time).
// The PSM2-backed cm path is required on amd64; elsewhere the package is
// unavailable upstream and its absence is expected, so it is reported
// without failing.
func checkTransports(r *Report, components map[string][]string, arch string) {
	if hasComponent(components, "btl", "tcp") {
		r.add("btl-tcp", true, "tcp transport compiled in")
	} else {
		r.add("btl-tcp", false, "tcp transport missing")
	}

	if hasComponent(components, "pml", "ucx") {
		r.add("pml-ucx", true, "ucx transport compiled in")
	} else {
		r.add("pml-ucx", false, "ucx transport missing")
	}

	if hasComponent(components, "btl", "openib") {
		r.add("btl-openib", false, "openib transport present despite being disabled at configure time")
	} else {
		r.add("btl-openib", true, "openib transport excluded")
	}

	hasPSM2 := hasComponent(components, "mtl", "psm2") || hasComponent(components, "pml", "cm")
	switch {
	case hasPSM2:
		r.add("mtl-psm2", true, "psm2/cm path compiled in")
	case arch != "amd64":
		r.add("mtl-psm2", true, "psm2/cm path absent (expected on non-x86_64)")
	default:
		r.add("mtl-psm2", false, "psm2/cm path missing on x86_64")
	}
}

// Compares the installed Open MPI version against the recipe pin.
func checkVersion(r *Report, output, pinned string) {
	if pinned == "" {
		return
	}
	compareVersion(r, "ompi-version", "Open MPI", parseVersion(output), pinned)
}

// Compares the installed UCX library version against the recipe pin.
func checkUCXVersion(r *Report, output, pinned string) {
	compareVersion(r, "ucx-version", "UCX", parseUCXVersion(output), pinned)
}

// Records a version-pin comparison for one built component.
func compareVersion(r *Report, name, component, installed, pinned string) {
	if installed == "" {
		r.add(name, false, "could not determine installed %s version", component)
		return
	}

	want, err := goversion.NewVersion(pinned)
	if err != nil {
		r.add(name, false, "invalid pinned %s version %q: %v", component, pinned, err)
		return
	}
	got, err := goversion.NewVersion(installed)
	if err != nil {
		r.add(name, false, "unparsable installed %s version %q: %v", component, installed, err)
		return
	}

	if got.Equal(want) {
		r.add(name, true, "installed %s %s matches pin", component, installed)
	} else {
		r.add(name, false, "installed %s %s, pinned %s", component, installed, pinned)
	}
}

// Checks the launch agent override in the MCA params file.
//
// The pipeline appends exactly one "plm_rsh_agent = false" line; without it
// the first multi-node launch fails looking for a remote shell binary.
func checkLaunchAgent(r *Report, params string) {
	count, value := countParam(params, launchAgentParam)
	switch {
	case count == 0:
		r.add("launch-agent", false, "%s not set; multi-node launch would look for a missing rsh agent", launchAgentParam)
	case count > 1:
		r.add("launch-agent", false, "%s set %d times, want exactly once", launchAgentParam, count)
	case value != "false":
		r.add("launch-agent", false, "%s = %q, want \"false\"", launchAgentParam, value)
	default:
		r.add("launch-agent", true, "launch agent disabled")
	}
}

// Runs a command inside the container and returns its stdout, failing on a
// non-zero exit.
func execOutput(ctx context.Context, ctr Execer, command string) (string, error) {
	result, err := ctr.Exec(ctx, "/bin/sh", command, nil, "")
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("%w: %q exited %d: %s",
			ErrInspect, command, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return result.Stdout, nil
}
