package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnvExpr replaces ${env.KEY} with the value of KEY, empty when unset.
// Expressions with an invalid key or no closing brace are kept verbatim.
func expandEnvExpr(value string) string {
	var b strings.Builder
	for {
		before, rest, found := strings.Cut(value, envPrefix)
		b.WriteString(before)
		if !found {
			return b.String()
		}
		key, after, closed := strings.Cut(rest, "}")
		if !closed {
			b.WriteString(envPrefix)
			b.WriteString(rest)
			return b.String()
		}
		if !isEnvKey(key) {
			b.WriteString(envPrefix)
			value = rest
			continue
		}
		b.WriteString(os.Getenv(key))
		value = after
	}
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
