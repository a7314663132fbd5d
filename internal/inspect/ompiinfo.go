package inspect

import (
	"bufio"
	"strings"
)

// Parses ompi_info output into a framework-to-components map.
//
// Component lines have the form:
//
//	MCA btl: tcp (MCA v2.1.0, API v3.1.0, Component v4.1.4)
//
// The trailing parenthesized version info is dropped. Lines that do not
// match the component form are ignored.
func parseComponents(output string) map[string][]string {
	components := make(map[string][]string)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "MCA ") {
			continue
		}

		rest := strings.TrimPrefix(line, "MCA ")
		framework, component, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}

		framework = strings.TrimSpace(framework)
		component = strings.TrimSpace(component)
		if i := strings.IndexByte(component, ' '); i >= 0 {
			component = component[:i]
		}
		if framework == "" || component == "" {
			continue
		}

		components[framework] = append(components[framework], component)
	}

	return components
}

// Extracts the Open MPI version from ompi_info output.
//
// The header contains a line of the form "Open MPI: 4.1.4". Returns an
// empty string when no such line exists.
func parseVersion(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if v, ok := strings.CutPrefix(line, "Open MPI:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Whether a framework's component list contains the named component.
func hasComponent(components map[string][]string, framework, name string) bool {
	for _, c := range components[framework] {
		if c == name {
			return true
		}
	}
	return false
}
