package recipe

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Identifies what a provisioning step does.
type Kind int

const (
	KindInvalid Kind = iota
	KindPackages
	KindArchPackages
	KindBuild
	KindCleanup
	KindAppend
)

// Returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPackages:
		return "packages"
	case KindArchPackages:
		return "arch-packages"
	case KindBuild:
		return "build"
	case KindCleanup:
		return "cleanup"
	case KindAppend:
		return "append"
	default:
		return "invalid"
	}
}

// An ordered provisioning recipe.
//
// Vars are bound once at load time and substituted into step fields via
// ${name} references. Steps execute strictly in declaration order.
type Recipe struct {
	Vars  map[string]string `yaml:"vars,omitempty"`
	Steps []Step            `yaml:"steps"`
}

// A single provisioning step. Exactly one step kind may be populated.
type Step struct {
	// System packages to install. When Arch is also set, the install only
	// runs on that architecture and is a no-op elsewhere. Repos names
	// non-default repository channels to enable before the install.
	Packages []string `yaml:"packages,omitempty"`
	Arch     string   `yaml:"arch,omitempty"`
	Repos    []string `yaml:"repos,omitempty"`

	// Fetch, build, and install a source package.
	Build *Build `yaml:"build,omitempty"`

	// Paths to remove, best-effort.
	Cleanup []string `yaml:"cleanup,omitempty"`

	// A line to append to a configuration file.
	Append *Append `yaml:"append,omitempty"`
}

// A source-build step: fetch a source tree and run its build commands.
type Build struct {
	Name string `yaml:"name"`

	// Source locator: exactly one of Git (clone at Tag, shallow) or
	// Archive (download and extract) must be set.
	Git     string `yaml:"git,omitempty"`
	Tag     string `yaml:"tag,omitempty"`
	Archive string `yaml:"archive,omitempty"`

	// Staging directory for the source tree. Defaults to a subdirectory of
	// the executor's build root, named after the step.
	Workdir string `yaml:"workdir,omitempty"`

	// Build commands, run in order inside the staging directory. The first
	// failing command aborts the whole recipe.
	Commands []string `yaml:"commands"`

	// Environment overrides for the build commands (e.g. CFLAGS).
	Env map[string]string `yaml:"env,omitempty"`

	// Names of build steps that must have completed before this one.
	// Declaration order must already satisfy these; they are validated,
	// never reordered.
	Needs []string `yaml:"needs,omitempty"`
}

// A config-append step: append one literal line to a file, creating it and
// its parent directories if absent.
type Append struct {
	Path string `yaml:"path"`
	Line string `yaml:"line"`
}

// Returns the kind of the step, or [KindInvalid] if no kind or more than one
// kind is populated.
func (s Step) Kind() Kind {
	k := KindInvalid
	set := 0

	if len(s.Packages) > 0 {
		set++
		if s.Arch != "" {
			k = KindArchPackages
		} else {
			k = KindPackages
		}
	}
	if s.Build != nil {
		set++
		k = KindBuild
	}
	if len(s.Cleanup) > 0 {
		set++
		k = KindCleanup
	}
	if s.Append != nil {
		set++
		k = KindAppend
	}

	if set != 1 {
		return KindInvalid
	}
	return k
}

// Parses a recipe from YAML, applies variable overrides, expands ${name}
// references, and validates the result.
//
// Unknown YAML fields are rejected. Override keys must name variables the
// recipe declares; overriding an undeclared variable is an error so typos
// do not silently leave a pinned version in place.
func Load(data []byte, overrides map[string]string) (*Recipe, error) {
	var r Recipe

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	for k, v := range overrides {
		if _, ok := r.Vars[k]; !ok {
			return nil, fmt.Errorf("%w: override of undeclared variable %q", ErrUndefinedVar, k)
		}
		r.Vars[k] = v
	}

	if err := r.expand(); err != nil {
		return nil, err
	}

	if err := r.validate(); err != nil {
		return nil, err
	}

	return &r, nil
}

// Reads and loads a recipe from a file.
func LoadFile(path string, overrides map[string]string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return Load(data, overrides)
}

// Returns the value of a recipe variable and whether it is declared.
func (r *Recipe) Var(name string) (string, bool) {
	v, ok := r.Vars[name]
	return v, ok
}

// Serializes the resolved recipe back to YAML.
func (r *Recipe) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return out, nil
}
