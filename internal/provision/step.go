package provision

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/fabricforge/mpimage/internal/recipe"
)

// Executes a single step, dispatching on its kind.
func (p *pipeline) executeStep(ctx context.Context, step recipe.Step) error {
	switch step.Kind() {
	case recipe.KindPackages:
		return p.installPackages(ctx, step.Packages, step.Repos)

	case recipe.KindArchPackages:
		if !archMatches(step.Arch, p.arch) {
			slog.Info("skipping packages for other architecture",
				"arch", step.Arch, "build_arch", p.arch, "packages", step.Packages)
			return nil
		}
		return p.installPackages(ctx, step.Packages, step.Repos)

	case recipe.KindBuild:
		return p.buildSource(ctx, step.Build)

	case recipe.KindCleanup:
		p.cleanup(ctx, step.Cleanup)
		return nil

	case recipe.KindAppend:
		return p.appendConfig(ctx, step.Append)

	default:
		return fmt.Errorf("%w: unrecognized step", ErrProvision)
	}
}

// Installs system packages without pulling recommended dependencies.
//
// Non-default repository channels named by the step are enabled first.
// The package index is refreshed once per run, before the first install,
// and again after a channel is enabled so the new channel's packages are
// resolvable. An unavailable package fails the step and with it the whole
// run.
func (p *pipeline) installPackages(ctx context.Context, packages, repos []string) error {
	for _, repo := range repos {
		if err := p.exec(ctx, enableRepoCommand(repo), nil, ""); err != nil {
			return err
		}
		p.aptUpdated = false
	}

	if !p.aptUpdated {
		if err := p.exec(ctx, aptUpdateCommand, nil, ""); err != nil {
			return err
		}
		p.aptUpdated = true
	}

	slog.Info("installing packages", "count", len(packages))
	return p.exec(ctx, aptInstallCommand(packages), nil, "")
}

// Fetches a source tree and runs its build commands.
//
// The source is cloned at a pinned tag with shallow history, or downloaded
// and extracted from an archive URL, into a staging directory. Build
// commands then run in order inside that directory with the step's
// environment overrides. Any failing sub-step is fatal, so a failed fetch
// never reaches the build commands and a failed build never reaches
// dependent steps.
func (p *pipeline) buildSource(ctx context.Context, b *recipe.Build) error {
	workdir := b.Workdir
	if workdir == "" {
		workdir = path.Join(p.buildRoot, b.Name)
	}

	slog.Info("building from source", "name", b.Name, "workdir", workdir)

	if err := p.ctr.MkdirAll(ctx, path.Dir(workdir)); err != nil {
		return err
	}
	if err := p.exec(ctx, fetchCommand(b, workdir), nil, ""); err != nil {
		return err
	}

	env := envList(b.Env)
	for _, cmd := range b.Commands {
		if err := p.exec(ctx, cmd, env, workdir); err != nil {
			return err
		}
	}

	return nil
}

// Removes staging paths, best-effort.
//
// Cleanup removes staging trees whose artifacts are already installed; a
// leftover tree only bloats the image, so failure here never fails the run.
func (p *pipeline) cleanup(ctx context.Context, cleanupPaths []string) {
	for _, target := range cleanupPaths {
		if err := p.exec(ctx, cleanupCommand(target), nil, ""); err != nil {
			slog.Warn("cleanup failed", "path", target, "error", err)
		}
	}
}

// Appends a literal line to a configuration file, creating the file and its
// parent directories if absent.
func (p *pipeline) appendConfig(ctx context.Context, a *recipe.Append) error {
	slog.Info("appending config line", "path", a.Path)
	return p.exec(ctx, appendCommand(a), nil, "")
}
