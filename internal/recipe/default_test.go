package recipe

import (
	"strings"
	"testing"
)

func loadDefault(t *testing.T) *Recipe {
	t.Helper()
	r, err := Default(nil)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return r
}

// Index of the build step with the given name, or -1.
func buildIndex(r *Recipe, name string) int {
	for i := range r.Steps {
		if b := r.Steps[i].Build; b != nil && b.Name == name {
			return i
		}
	}
	return -1
}

func TestDefaultBuildOrder(t *testing.T) {
	r := loadDefault(t)

	ucx := buildIndex(r, "ucx")
	pmi2 := buildIndex(r, "pmi2")
	ompi := buildIndex(r, "ompi")

	if ucx < 0 || pmi2 < 0 || ompi < 0 {
		t.Fatalf("missing build step: ucx=%d pmi2=%d ompi=%d", ucx, pmi2, ompi)
	}
	if !(ucx < pmi2 && pmi2 < ompi) {
		t.Fatalf("build order ucx=%d pmi2=%d ompi=%d, want ucx < pmi2 < ompi", ucx, pmi2, ompi)
	}
}

func TestDefaultOmpiConfigureFlags(t *testing.T) {
	r := loadDefault(t)

	b := r.Steps[buildIndex(r, "ompi")].Build
	configure := b.Commands[0]

	for _, flag := range []string{
		"--with-ucx=/usr/local/ucx",
		"--with-pmi=/usr/local",
		"--enable-mca-no-build=btl-openib,plm-slurm",
		"--disable-pty-support",
	} {
		if !strings.Contains(configure, flag) {
			t.Errorf("ompi configure missing %q:\n%s", flag, configure)
		}
	}

	if len(b.Needs) != 2 {
		t.Fatalf("ompi needs = %v, want [ucx pmi2]", b.Needs)
	}
}

func TestDefaultCleanupAfterEachBuild(t *testing.T) {
	r := loadDefault(t)

	for _, name := range []string{"ucx", "pmi2", "ompi"} {
		build := buildIndex(r, name)

		found := false
		for i := build + 1; i < len(r.Steps); i++ {
			for _, p := range r.Steps[i].Cleanup {
				if strings.HasSuffix(p, "/"+name) {
					found = true
				}
			}
			if found {
				break
			}
			// A later build before this cleanup would mean the staging
			// tree outlives its component's install.
			if r.Steps[i].Build != nil {
				t.Fatalf("build %q has no cleanup before the next build", name)
			}
		}
		if !found {
			t.Fatalf("build %q has no cleanup step", name)
		}
	}
}

func TestDefaultCleanupSparesInstallPrefix(t *testing.T) {
	r := loadDefault(t)

	for i := range r.Steps {
		for _, p := range r.Steps[i].Cleanup {
			if strings.HasPrefix(p, "/usr/local") {
				t.Fatalf("cleanup path %q removes installed content", p)
			}
		}
	}
}

func TestDefaultLaunchAgentAppend(t *testing.T) {
	r := loadDefault(t)

	appends := 0
	for i := range r.Steps {
		a := r.Steps[i].Append
		if a == nil {
			continue
		}
		appends++
		if a.Path != "/usr/local/etc/openmpi-mca-params.conf" {
			t.Fatalf("append path = %q", a.Path)
		}
		if a.Line != "plm_rsh_agent = false" {
			t.Fatalf("append line = %q", a.Line)
		}
		if i != len(r.Steps)-1 {
			t.Fatal("launch agent append is not the final step")
		}
	}
	if appends != 1 {
		t.Fatalf("append steps = %d, want exactly 1", appends)
	}
}

func TestDefaultArchGate(t *testing.T) {
	r := loadDefault(t)

	gated := 0
	for i := range r.Steps {
		if r.Steps[i].Kind() != KindArchPackages {
			continue
		}
		gated++
		if r.Steps[i].Arch != "amd64" {
			t.Fatalf("arch gate = %q, want amd64", r.Steps[i].Arch)
		}
		for _, p := range r.Steps[i].Packages {
			if !strings.HasPrefix(p, "libpsm2") {
				t.Fatalf("gated package %q is not the psm2 pair", p)
			}
		}
	}
	if gated != 1 {
		t.Fatalf("arch-gated steps = %d, want 1", gated)
	}
}

func TestDefaultVersionOverride(t *testing.T) {
	r, err := Default(map[string]string{"ompi_version": "4.1.6"})
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	b := r.Steps[buildIndex(r, "ompi")].Build
	if !strings.Contains(b.Archive, "openmpi-4.1.6.tar.gz") {
		t.Fatalf("archive = %q, want overridden version in URL", b.Archive)
	}
}
