package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnvExpr replaces all occurrences of ${env.KEY} in the input with the
// value returned by lookup (empty when unset). Malformed expressions stay literal.
func expandEnvExpr(text string, lookup func(string) string) string {
	if !strings.Contains(text, envPrefix) {
		return text
	}
	if lookup == nil {
		lookup = os.Getenv
	}
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(text[i:], envPrefix)
		if idx < 0 {
			b.WriteString(text[i:])
			break
		}
		b.WriteString(text[i : i+idx])
		startKey := i + idx + len(envPrefix)
		endKey := strings.IndexByte(text[startKey:], '}')
		if endKey < 0 {
			b.WriteString(text[i+idx:])
			break
		}
		key := text[startKey : startKey+endKey]
		if !isEnvKey(key) {
			// keep the prefix literal and rescan the remainder for nested expressions
			b.WriteString(text[i+idx : startKey])
			i = startKey
			continue
		}
		b.WriteString(lookup(key))
		i = startKey + endKey + 1
	}
	return b.String()
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
