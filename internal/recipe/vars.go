package recipe

import (
	"fmt"
	"regexp"
)

// Matches a ${name} variable reference. Shell constructs like $(nproc) or
// $VAR pass through untouched; the braced form is reserved for recipe
// variables.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Resolves variable definitions and substitutes ${name} references in all
// step fields.
//
// Variables may reference other variables; resolution follows references
// recursively and fails on cycles. After expansion every variable is a plain
// string and steps contain no ${name} references.
func (r *Recipe) expand() error {
	if err := r.resolveVars(); err != nil {
		return err
	}

	for i := range r.Steps {
		if err := r.expandStep(&r.Steps[i]); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return nil
}

// Resolves inter-variable references in the vars map.
func (r *Recipe) resolveVars() error {
	resolved := make(map[string]string, len(r.Vars))

	var resolve func(name string, trail []string) (string, error)
	resolve = func(name string, trail []string) (string, error) {
		if v, ok := resolved[name]; ok {
			return v, nil
		}

		raw, ok := r.Vars[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUndefinedVar, name)
		}

		for _, seen := range trail {
			if seen == name {
				return "", fmt.Errorf("%w: %q", ErrVarCycle, name)
			}
		}
		trail = append(trail, name)

		var expandErr error
		v := varPattern.ReplaceAllStringFunc(raw, func(match string) string {
			ref := varPattern.FindStringSubmatch(match)[1]
			val, err := resolve(ref, trail)
			if err != nil && expandErr == nil {
				expandErr = err
			}
			return val
		})
		if expandErr != nil {
			return "", expandErr
		}

		resolved[name] = v
		return v, nil
	}

	for name := range r.Vars {
		if _, err := resolve(name, nil); err != nil {
			return err
		}
	}

	r.Vars = resolved
	return nil
}

// Substitutes resolved variables into every string field of a step.
func (r *Recipe) expandStep(s *Step) error {
	var err error

	expand := func(v string) string {
		out, e := r.expandString(v)
		if e != nil && err == nil {
			err = e
		}
		return out
	}

	for i, p := range s.Packages {
		s.Packages[i] = expand(p)
	}
	for i, p := range s.Repos {
		s.Repos[i] = expand(p)
	}
	for i, p := range s.Cleanup {
		s.Cleanup[i] = expand(p)
	}

	if b := s.Build; b != nil {
		b.Git = expand(b.Git)
		b.Tag = expand(b.Tag)
		b.Archive = expand(b.Archive)
		b.Workdir = expand(b.Workdir)
		for i, c := range b.Commands {
			b.Commands[i] = expand(c)
		}
		for k, v := range b.Env {
			b.Env[k] = expand(v)
		}
	}

	if a := s.Append; a != nil {
		a.Path = expand(a.Path)
		a.Line = expand(a.Line)
	}

	return err
}

// Substitutes ${name} references in a single string.
func (r *Recipe) expandString(s string) (string, error) {
	var err error
	out := varPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := varPattern.FindStringSubmatch(match)[1]
		v, ok := r.Vars[name]
		if !ok && err == nil {
			err = fmt.Errorf("%w: %q", ErrUndefinedVar, name)
		}
		return v
	})
	return out, err
}
