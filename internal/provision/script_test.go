package provision

import (
	"strings"
	"testing"

	"github.com/fabricforge/mpimage/internal/recipe"
)

func TestAptInstallCommand(t *testing.T) {
	cmd := aptInstallCommand([]string{"git", "curl"})

	if !strings.Contains(cmd, "--no-install-recommends") {
		t.Fatalf("command %q pulls recommended packages", cmd)
	}
	if !strings.Contains(cmd, "git") || !strings.Contains(cmd, "curl") {
		t.Fatalf("command %q missing package names", cmd)
	}
}

func TestFetchCommandGit(t *testing.T) {
	b := &recipe.Build{Name: "ucx", Git: "https://example.com/ucx.git", Tag: "v1.13.1"}
	cmd := fetchCommand(b, "/var/tmp/build/ucx")

	if !strings.Contains(cmd, "--depth 1") {
		t.Fatalf("clone %q is not shallow", cmd)
	}
	if !strings.Contains(cmd, "--branch 'v1.13.1'") {
		t.Fatalf("clone %q does not pin the tag", cmd)
	}
	if !strings.Contains(cmd, "'/var/tmp/build/ucx'") {
		t.Fatalf("clone %q does not target the staging dir", cmd)
	}
}

func TestFetchCommandArchive(t *testing.T) {
	b := &recipe.Build{Name: "ompi", Archive: "https://example.com/openmpi-4.1.4.tar.gz"}
	cmd := fetchCommand(b, "/var/tmp/build/ompi")

	if !strings.Contains(cmd, "curl -fsSL") {
		t.Fatalf("fetch %q does not download the archive", cmd)
	}
	if !strings.Contains(cmd, "--strip-components=1") {
		t.Fatalf("fetch %q keeps the archive's top-level directory", cmd)
	}
}

func TestAppendCommand(t *testing.T) {
	a := &recipe.Append{
		Path: "/usr/local/etc/openmpi-mca-params.conf",
		Line: "plm_rsh_agent = false",
	}
	cmd := appendCommand(a)

	if !strings.Contains(cmd, ">> '/usr/local/etc/openmpi-mca-params.conf'") {
		t.Fatalf("command %q does not append to the config file", cmd)
	}
	if !strings.Contains(cmd, "'plm_rsh_agent = false'") {
		t.Fatalf("command %q does not quote the literal line", cmd)
	}
	if !strings.Contains(cmd, "mkdir -p '/usr/local/etc'") {
		t.Fatalf("command %q does not create the parent directory", cmd)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"two words", "'two words'"},
		{"it's", `'it'\''s'`},
	}

	for _, tt := range tests {
		if got := shellQuote(tt.in); got != tt.want {
			t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvList(t *testing.T) {
	got := envList(map[string]string{"CXXFLAGS": "-O2", "CFLAGS": "-O3"})
	if len(got) != 2 || got[0] != "CFLAGS=-O3" || got[1] != "CXXFLAGS=-O2" {
		t.Fatalf("envList = %v, want sorted key=value pairs", got)
	}

	if envList(nil) != nil {
		t.Fatal("envList(nil) should be nil")
	}
}
