package harness

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Chunk thresholds per language. Java string constants are capped at 65535
// bytes of modified UTF-8, so chunks are kept well below that even when
// every character needs six bytes.
const (
	JavaChunkSize   = 3000
	CppChunkSize    = 4096
	PythonChunkSize = 1 << 16
)

// splitRunes cuts s into pieces of at most n runes.
func splitRunes(s string, n int) []string {
	var parts []string
	for len(s) > 0 {
		i, count := 0, 0
		for i < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
			count++
		}
		parts = append(parts, s[:i])
		s = s[i:]
	}
	return parts
}

// splitBytes cuts s into pieces of at most n bytes.
func splitBytes(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	return append(parts, s)
}

func javaString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			// \u escapes are expanded before lexing, so ASCII controls must be octal
			case r < 0x20 || r == 0x7f:
				fmt.Fprintf(&b, `\%03o`, r)
			case r < 0x80:
				b.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(&b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// JavaLiteral returns a Java expression evaluating to s.
func JavaLiteral(s string) string {
	if utf8.RuneCountInString(s) <= JavaChunkSize {
		return javaString(s)
	}
	parts := splitRunes(s, JavaChunkSize)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = javaString(p)
	}
	return "joinString(new String[]{" + strings.Join(quoted, ",\n            ") + "})"
}

func cppString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '?':
			b.WriteString(`\?`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// CppLiteral returns a C++ expression convertible to std::string holding
// exactly the bytes of s, NUL bytes included.
func CppLiteral(s string) string {
	if len(s) <= CppChunkSize && !strings.ContainsRune(s, 0) {
		return cppString(s)
	}
	parts := splitBytes(s, CppChunkSize)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = cppString(p)
	}
	return fmt.Sprintf("std::string(%s, %d)", strings.Join(quoted, "\n        "), len(s))
}

func pythonString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			switch {
			case r < 0x20 || r == 0x7f:
				fmt.Fprintf(&b, `\x%02x`, r)
			case r < 0x80:
				b.WriteRune(r)
			case r > 0xffff:
				fmt.Fprintf(&b, `\U%08x`, r)
			default:
				fmt.Fprintf(&b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// PythonLiteral returns a Python expression evaluating to s.
func PythonLiteral(s string) string {
	if utf8.RuneCountInString(s) <= PythonChunkSize {
		return pythonString(s)
	}
	parts := splitRunes(s, PythonChunkSize)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = pythonString(p)
	}
	return "''.join([" + strings.Join(quoted, ",\n    ") + "])"
}
