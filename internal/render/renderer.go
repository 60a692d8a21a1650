// Package render substitutes bracketed placeholders in template text.
//
// The substitution contract is deliberately permissive: every occurrence of
// [variable_name] with a bound value is replaced literally, and unknown
// placeholders are left untouched so a typo in a template degrades to
// visible bracket text instead of failing the send. No HTML escaping is
// performed; template bodies are expected to be pre-sanitized.
package render

import "strings"

// Vars is a closed mapping of placeholder name to replacement value.
type Vars map[string]string

// Render performs a single pass over the template, replacing each
// [name] placeholder whose name is bound in vars. The scan is
// order-independent: replacement values are never re-scanned for
// placeholders.
func Render(template string, vars Vars) string {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		open := strings.IndexByte(template[i:], '[')
		if open < 0 {
			b.WriteString(template[i:])
			break
		}
		open += i
		b.WriteString(template[i:open])

		name, end, ok := scanPlaceholder(template, open)
		if !ok {
			b.WriteByte('[')
			i = open + 1
			continue
		}

		if val, bound := vars[name]; bound {
			b.WriteString(val)
		} else {
			// Unknown placeholder: keep the bracket text verbatim.
			b.WriteString(template[open:end])
		}
		i = end
	}

	return b.String()
}

// scanPlaceholder reads a [name] placeholder starting at the opening bracket.
// Names are one or more letters, digits, or underscores. Returns the name,
// the index just past the closing bracket, and whether a well-formed
// placeholder was found.
func scanPlaceholder(s string, open int) (string, int, bool) {
	j := open + 1
	for j < len(s) && isNameByte(s[j]) {
		j++
	}
	if j == open+1 || j >= len(s) || s[j] != ']' {
		return "", 0, false
	}
	return s[open+1 : j], j + 1, true
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
