package inspect

import (
	"bufio"
	"strings"
)

// Counts assignments of a key in MCA params file content and returns the
// last assigned value.
//
// The file is line-oriented "key = value"; comment lines start with '#'.
// Whitespace around the key and value is insignificant.
func countParam(content, key string) (count int, value string) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) != key {
			continue
		}

		count++
		value = strings.TrimSpace(v)
	}
	return count, value
}
