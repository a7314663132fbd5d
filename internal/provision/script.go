package provision

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/fabricforge/mpimage/internal/recipe"
)

// Default shell used to run step commands.
const defaultShell = "/bin/sh"

// Refreshes the package index. Run once per pipeline, before the first
// package install.
const aptUpdateCommand = "apt-get update"

// Renders the install command for a set of packages.
//
// --no-install-recommends keeps weak dependencies out of the image; the MPI
// stack names everything it needs explicitly.
func aptInstallCommand(packages []string) string {
	return "apt-get install -y --no-install-recommends " + strings.Join(packages, " ")
}

// Renders the command enabling a non-default repository channel.
//
// --no-update defers the index refresh; the pipeline refreshes once after
// all channels for the step are enabled.
func enableRepoCommand(repo string) string {
	return "add-apt-repository -y --no-update " + shellQuote(repo)
}

// Renders the fetch command for a source-build step.
//
// Git sources are cloned at the pinned tag with depth 1; archive sources
// are downloaded and extracted with the leading path component stripped.
// Either way the source tree ends up directly in workdir.
func fetchCommand(b *recipe.Build, workdir string) string {
	if b.Git != "" {
		return fmt.Sprintf("git clone --depth 1 --branch %s %s %s",
			shellQuote(b.Tag), shellQuote(b.Git), shellQuote(workdir))
	}
	return fmt.Sprintf("mkdir -p %s && curl -fsSL %s | tar -xz -C %s --strip-components=1",
		shellQuote(workdir), shellQuote(b.Archive), shellQuote(workdir))
}

// Renders the removal command for a cleanup path.
func cleanupCommand(target string) string {
	return "rm -rf -- " + shellQuote(target)
}

// Renders the append command for a config line.
//
// The parent directory is created first so the append works on a freshly
// generated config path. printf writes the line literally; the shell quoting
// keeps spaces and equals signs intact.
func appendCommand(a *recipe.Append) string {
	return fmt.Sprintf("mkdir -p %s && printf '%%s\\n' %s >> %s",
		shellQuote(path.Dir(a.Path)), shellQuote(a.Line), shellQuote(a.Path))
}

// Quotes a string for safe use as a single shell word.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Formats an environment map as sorted "key=value" strings for container
// exec. Sorting keeps renders deterministic.
func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
