package recipe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"
	goversion "github.com/hashicorp/go-version"
	"mvdan.cc/sh/v3/syntax"
)

// Suffix marking a variable as version-shaped. Such variables must parse as
// versions so a mistyped pin fails at load time instead of mid-build.
const versionVarSuffix = "_version"

// Validates the resolved recipe.
//
// Checks each step for structural validity, parses every build command as
// POSIX shell, verifies version-shaped variables, and verifies that the
// declaration order of build steps satisfies their declared prerequisites.
func (r *Recipe) validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: recipe has no steps", ErrInvalidStep)
	}

	if err := r.validateVars(); err != nil {
		return err
	}

	names := make(map[string]bool)
	for i := range r.Steps {
		if err := validateStep(&r.Steps[i], names); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return r.validateBuildOrder()
}

// Checks version-shaped variables with a real version parser.
func (r *Recipe) validateVars() error {
	for name, value := range r.Vars {
		if !strings.HasSuffix(name, versionVarSuffix) {
			continue
		}
		if _, err := goversion.NewVersion(value); err != nil {
			return fmt.Errorf("%w: variable %q: %v", ErrParse, name, err)
		}
	}
	return nil
}

// Validates a single step. Build names encountered so far are tracked in
// names for uniqueness checks.
func validateStep(s *Step, names map[string]bool) error {
	switch s.Kind() {
	case KindPackages, KindArchPackages:
		for _, p := range s.Packages {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%w: empty package name", ErrInvalidStep)
			}
		}
		for _, repo := range s.Repos {
			if strings.TrimSpace(repo) == "" {
				return fmt.Errorf("%w: empty repository name", ErrInvalidStep)
			}
		}

	case KindBuild:
		if err := validateNoGate(s, "build"); err != nil {
			return err
		}
		return validateBuild(s.Build, names)

	case KindCleanup:
		if err := validateNoGate(s, "cleanup"); err != nil {
			return err
		}
		for _, p := range s.Cleanup {
			if !strings.HasPrefix(p, "/") {
				return fmt.Errorf("%w: cleanup path %q is not absolute", ErrInvalidStep, p)
			}
		}

	case KindAppend:
		if err := validateNoGate(s, "append"); err != nil {
			return err
		}
		if s.Append.Path == "" || s.Append.Line == "" {
			return fmt.Errorf("%w: append requires path and line", ErrInvalidStep)
		}
		if !strings.HasPrefix(s.Append.Path, "/") {
			return fmt.Errorf("%w: append path %q is not absolute", ErrInvalidStep, s.Append.Path)
		}

	default:
		return fmt.Errorf("%w: step must have exactly one of packages, build, cleanup, append", ErrInvalidStep)
	}

	return nil
}

// Rejects package-step adjuncts on other step kinds.
//
// An arch gate on a build, cleanup, or append step would be silently
// ignored and the step would run on every architecture; failing at load
// time surfaces the misplaced gate instead.
func validateNoGate(s *Step, kind string) error {
	if s.Arch != "" {
		return fmt.Errorf("%w: arch gate is not valid on a %s step", ErrInvalidStep, kind)
	}
	if len(s.Repos) > 0 {
		return fmt.Errorf("%w: repos are not valid on a %s step", ErrInvalidStep, kind)
	}
	return nil
}

// Validates a build step and records its name.
func validateBuild(b *Build, names map[string]bool) error {
	if b.Name == "" {
		return fmt.Errorf("%w: build requires a name", ErrInvalidStep)
	}
	if names[b.Name] {
		return fmt.Errorf("%w: duplicate build name %q", ErrInvalidStep, b.Name)
	}
	names[b.Name] = true

	hasGit := b.Git != ""
	hasArchive := b.Archive != ""
	if hasGit == hasArchive {
		return fmt.Errorf("%w: build %q requires exactly one of git or archive", ErrInvalidStep, b.Name)
	}
	if hasGit && b.Tag == "" {
		return fmt.Errorf("%w: build %q requires a tag for git sources", ErrInvalidStep, b.Name)
	}

	if len(b.Commands) == 0 {
		return fmt.Errorf("%w: build %q has no commands", ErrInvalidStep, b.Name)
	}

	parser := syntax.NewParser()
	for i, cmd := range b.Commands {
		if _, err := parser.Parse(strings.NewReader(cmd), b.Name); err != nil {
			return fmt.Errorf("%w: build %q command %d: %v", ErrInvalidStep, b.Name, i+1, err)
		}
	}

	return nil
}

// Verifies that declaration order is a valid topological order of the build
// prerequisite graph.
//
// Each build step may name earlier builds in needs. The steps are never
// reordered; ordering is the recipe author's responsibility and the only
// correctness guarantee, so a need that points at a later or unknown build
// is an error.
func (r *Recipe) validateBuildOrder() error {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	position := make(map[string]int)
	for i := range r.Steps {
		b := r.Steps[i].Build
		if b == nil {
			continue
		}
		position[b.Name] = i
		if err := g.AddVertex(b.Name); err != nil {
			return fmt.Errorf("%w: %v", ErrBuildOrder, err)
		}
	}

	for i := range r.Steps {
		b := r.Steps[i].Build
		if b == nil {
			continue
		}
		for _, need := range b.Needs {
			pos, ok := position[need]
			if !ok {
				return fmt.Errorf("%w: build %q needs unknown build %q", ErrBuildOrder, b.Name, need)
			}
			if err := g.AddEdge(need, b.Name); err != nil {
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					return fmt.Errorf("%w: cycle between %q and %q", ErrBuildOrder, need, b.Name)
				}
				return fmt.Errorf("%w: %v", ErrBuildOrder, err)
			}
			if pos >= position[b.Name] {
				return fmt.Errorf("%w: build %q needs %q, which is declared later", ErrBuildOrder, b.Name, need)
			}
		}
	}

	return nil
}
