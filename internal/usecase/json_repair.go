package usecase

import (
	"regexp"
	"strings"
)

// Text repair for malformed model output. Pure text → text functions,
// kept free of I/O so they can be exercised against tables of
// known-bad inputs.

var (
	codeFenceRe     = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSONSpan returns the first complete `{...}` span in s,
// honoring string literals and escapes. When no closing brace is found
// the span runs to the end of s (a truncated object the repair pass
// can still close).
func ExtractJSONSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return s[start:], true
}

// RepairJSON applies the repair pass: strip code fences, drop control
// characters, remove trailing commas before closing brackets, and when
// brace/bracket counts are unbalanced (truncated output) drop the
// trailing incomplete member and append the missing closers.
func RepairJSON(s string) string {
	s = stripCodeFences(s)
	s = stripControlChars(s)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = closeTruncated(s)
	// closing a truncated object can expose a fresh trailing comma
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

func stripCodeFences(s string) string {
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return trimmed
}

func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// closeTruncated walks the text tracking container nesting. Balanced
// input is returned unchanged. Truncated input is cut back to the end
// of the last complete member, then the open containers at that point
// are closed in reverse order.
func closeTruncated(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	var stack []byte
	inString := false
	escaped := false

	// prevSig is the last significant byte seen outside strings; it
	// tells a string at EOF apart by position: after '{' or ',' inside
	// an object it is a key, after ':' it is a value.
	prevSig := byte(0)
	stringPrev := byte(0)

	// lastComplete is the index just past the most recent complete
	// value (closing quote of a value string, closing bracket, or the
	// end of a bare literal), with the container stack at that point.
	lastComplete := -1
	var lastStack []byte

	markComplete := func(end int) {
		lastComplete = end
		lastStack = append(lastStack[:0:0], stack...)
	}

	i := 0
	for i < len(trimmed) {
		c := trimmed[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				next := nextNonSpace(trimmed, i+1)
				keyString := next == ':' ||
					(next == 0 && objectKeyPosition(stack, stringPrev))
				if !keyString {
					markComplete(i + 1)
				}
				prevSig = '"'
			}
			i++
			continue
		}
		switch c {
		case '"':
			inString = true
			stringPrev = prevSig
			i++
		case '{', '[':
			stack = append(stack, c)
			prevSig = c
			i++
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			prevSig = c
			i++
			markComplete(i)
		default:
			if isLiteralStart(c) {
				j := i
				for j < len(trimmed) && isLiteralChar(trimmed[j]) {
					j++
				}
				i = j
				prevSig = c
				// a literal running to EOF may itself be cut off
				if j < len(trimmed) {
					markComplete(i)
				}
			} else {
				if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
					prevSig = c
				}
				i++
			}
		}
	}

	if !inString && len(stack) == 0 {
		return s
	}
	if lastComplete < 0 {
		// nothing complete survived; close what opened before any value
		return trimmed + closers(stack)
	}

	repaired := strings.TrimRight(trimmed[:lastComplete], " \t\r\n")
	repaired = strings.TrimSuffix(repaired, ",")
	return repaired + closers(lastStack)
}

// nextNonSpace returns the first non-whitespace byte at or after pos,
// or 0 when only whitespace remains.
func nextNonSpace(s string, pos int) byte {
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return s[i]
		}
	}
	return 0
}

// objectKeyPosition reports whether a string opened after prev sits in
// key position: directly inside an object, following the opening brace
// or a member separator. A string after ':' is a member value.
func objectKeyPosition(stack []byte, prev byte) bool {
	if len(stack) == 0 || stack[len(stack)-1] != '{' {
		return false
	}
	return prev == '{' || prev == ','
}

func isLiteralStart(c byte) bool {
	return c == '-' || (c >= '0' && c <= '9') || c == 't' || c == 'f' || c == 'n'
}

func isLiteralChar(c byte) bool {
	return c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')
}

func closers(stack []byte) string {
	var sb strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			sb.WriteByte('}')
		} else {
			sb.WriteByte(']')
		}
	}
	return sb.String()
}
