package recipe

import (
	"errors"
	"strings"
	"testing"
)

const minimalRecipe = `
vars:
  prefix: /usr/local
  ucx_version: 1.13.1
  ucx_tag: v${ucx_version}
steps:
  - packages: [git, curl]
  - build:
      name: ucx
      git: https://example.com/ucx.git
      tag: ${ucx_tag}
      commands:
        - ./configure --prefix=${prefix}
        - make install
  - cleanup: [/var/tmp/ucx]
  - append:
      path: ${prefix}/etc/test.conf
      line: key = value
`

func TestLoad(t *testing.T) {
	r, err := Load([]byte(minimalRecipe), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(r.Steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(r.Steps))
	}

	kinds := []Kind{KindPackages, KindBuild, KindCleanup, KindAppend}
	for i, want := range kinds {
		if got := r.Steps[i].Kind(); got != want {
			t.Fatalf("step %d kind = %v, want %v", i+1, got, want)
		}
	}

	b := r.Steps[1].Build
	if b.Tag != "v1.13.1" {
		t.Fatalf("tag = %q, want nested variable expansion", b.Tag)
	}
	if b.Commands[0] != "./configure --prefix=/usr/local" {
		t.Fatalf("command = %q, want expanded prefix", b.Commands[0])
	}

	if r.Steps[3].Append.Path != "/usr/local/etc/test.conf" {
		t.Fatalf("append path = %q, want expanded prefix", r.Steps[3].Append.Path)
	}
}

func TestLoadOverrides(t *testing.T) {
	r, err := Load([]byte(minimalRecipe), map[string]string{"ucx_version": "1.14.0"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Steps[1].Build.Tag != "v1.14.0" {
		t.Fatalf("tag = %q, want override to propagate", r.Steps[1].Build.Tag)
	}

	_, err = Load([]byte(minimalRecipe), map[string]string{"ucx_verison": "1.14.0"})
	if !errors.Is(err, ErrUndefinedVar) {
		t.Fatalf("typoed override: err = %v, want ErrUndefinedVar", err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load([]byte("steps:\n  - packages: [git]\n    retries: 3\n"), nil)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse for unknown field", err)
	}
}

func TestLoadUndefinedVariable(t *testing.T) {
	_, err := Load([]byte("steps:\n  - cleanup: [\"${nope}/tmp\"]\n"), nil)
	if !errors.Is(err, ErrUndefinedVar) {
		t.Fatalf("err = %v, want ErrUndefinedVar", err)
	}
}

func TestLoadVariableCycle(t *testing.T) {
	src := `
vars:
  a: ${b}
  b: ${a}
steps:
  - packages: [git]
`
	_, err := Load([]byte(src), nil)
	if !errors.Is(err, ErrVarCycle) {
		t.Fatalf("err = %v, want ErrVarCycle", err)
	}
}

func TestLoadInvalidVersionVar(t *testing.T) {
	src := `
vars:
  ucx_version: not-a-version
steps:
  - packages: [git]
`
	_, err := Load([]byte(src), nil)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse for bad version pin", err)
	}
}

func TestStepKindExclusivity(t *testing.T) {
	s := Step{Packages: []string{"git"}, Cleanup: []string{"/tmp/x"}}
	if s.Kind() != KindInvalid {
		t.Fatalf("kind = %v, want invalid for two populated kinds", s.Kind())
	}

	if (Step{}).Kind() != KindInvalid {
		t.Fatal("empty step should be invalid")
	}

	s = Step{Arch: "amd64", Packages: []string{"libpsm2-2"}}
	if s.Kind() != KindArchPackages {
		t.Fatalf("kind = %v, want arch-packages", s.Kind())
	}
}

func TestArchGateOnlyOnPackageSteps(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			"arch on build",
			"steps:\n  - arch: amd64\n    build:\n      name: x\n      archive: https://example.com/x.tar.gz\n      commands: [make]\n",
		},
		{
			"arch on cleanup",
			"steps:\n  - arch: amd64\n    cleanup: [/var/tmp/x]\n",
		},
		{
			"arch on append",
			"steps:\n  - arch: amd64\n    append:\n      path: /etc/test.conf\n      line: key = value\n",
		},
		{
			"repos on cleanup",
			"steps:\n  - repos: [universe]\n    cleanup: [/var/tmp/x]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.src), nil); !errors.Is(err, ErrInvalidStep) {
				t.Fatalf("err = %v, want ErrInvalidStep for misplaced gate", err)
			}
		})
	}
}

func TestValidateBuild(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			"git without tag",
			"steps:\n  - build:\n      name: x\n      git: https://example.com/x.git\n      commands: [make]\n",
		},
		{
			"both git and archive",
			"steps:\n  - build:\n      name: x\n      git: https://example.com/x.git\n      tag: v1\n      archive: https://example.com/x.tar.gz\n      commands: [make]\n",
		},
		{
			"no commands",
			"steps:\n  - build:\n      name: x\n      archive: https://example.com/x.tar.gz\n",
		},
		{
			"shell syntax error",
			"steps:\n  - build:\n      name: x\n      archive: https://example.com/x.tar.gz\n      commands: [\"./configure --prefix=(\"]\n",
		},
		{
			"duplicate names",
			"steps:\n  - build:\n      name: x\n      archive: https://example.com/x.tar.gz\n      commands: [make]\n  - build:\n      name: x\n      archive: https://example.com/y.tar.gz\n      commands: [make]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.src), nil); !errors.Is(err, ErrInvalidStep) {
				t.Fatalf("err = %v, want ErrInvalidStep", err)
			}
		})
	}
}

func TestValidateBuildOrder(t *testing.T) {
	outOfOrder := `
steps:
  - build:
      name: ompi
      archive: https://example.com/ompi.tar.gz
      needs: [ucx]
      commands: [make]
  - build:
      name: ucx
      archive: https://example.com/ucx.tar.gz
      commands: [make]
`
	if _, err := Load([]byte(outOfOrder), nil); !errors.Is(err, ErrBuildOrder) {
		t.Fatalf("err = %v, want ErrBuildOrder for need declared later", err)
	}

	unknown := `
steps:
  - build:
      name: ompi
      archive: https://example.com/ompi.tar.gz
      needs: [pmix]
      commands: [make]
`
	if _, err := Load([]byte(unknown), nil); !errors.Is(err, ErrBuildOrder) {
		t.Fatalf("err = %v, want ErrBuildOrder for unknown need", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	r, err := Load([]byte(minimalRecipe), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), "v1.13.1") {
		t.Fatalf("marshaled recipe missing resolved tag:\n%s", out)
	}
}
