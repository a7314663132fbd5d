package inspect

import (
	"bufio"
	"strings"
)

// Extracts the library version from ucx_info output.
//
// The header contains a line of the form "# Library version: 1.13.1".
// Returns an empty string when no such line exists.
func parseUCXVersion(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if v, ok := strings.CutPrefix(line, "Library version:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
