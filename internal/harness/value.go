package harness

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Canonical renders a test-case value as the text a harness embeds for a
// parameter of type t.
//
// Strings stay verbatim for string (and unknown) parameters. Array-shaped
// values are normalized to compact strict JSON; a string that cannot be
// read is passed through unchanged so the harness reports the failure for
// that test case alone.
func Canonical(t ParamType, v any) (string, error) {
	switch {
	case t == TypeString || !t.Known():
		if s, ok := v.(string); ok {
			return s, nil
		}
		if v == nil {
			return "", nil
		}
		return encode(v)

	case t == TypeInt:
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s), nil
		}
		return encode(v)

	case t == TypeBoolean:
		if s, ok := v.(string); ok {
			return strings.ToLower(strings.TrimSpace(s)), nil
		}
		return encode(v)
	}

	if s, ok := v.(string); ok {
		parsed, err := ParseLenient(s)
		if err != nil {
			return strings.TrimSpace(s), nil
		}
		v = parsed
	}
	return encode(v)
}

func encode(v any) (string, error) {
	var b strings.Builder
	if err := writeJSON(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeJSON(b *strings.Builder, v any) error {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case string:
		b.WriteString(quoteJSON(x))
	case json.Number:
		b.WriteString(x.String())
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e18 {
			b.WriteString(strconv.FormatInt(int64(x), 10))
		} else {
			b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		}
	case int:
		b.WriteString(strconv.Itoa(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeJSON(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("cannot encode %T: %w", v, err)
		}
		b.Write(data)
	}
	return nil
}

// quoteJSON quotes s the way every harness display helper does.
func quoteJSON(s string) string {
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
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ParseLenient reads JSON plus the looser forms problem authors write:
// single-quoted strings and Python's None/True/False.
// Numbers are returned as json.Number.
func ParseLenient(s string) (any, error) {
	p := &lenientParser{src: s}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return v, nil
}

type lenientParser struct {
	src string
	pos int
}

func (p *lenientParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *lenientParser) skip() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *lenientParser) value() (any, error) {
	p.skip()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '[':
		return p.array()
	case c == '"' || c == '\'':
		return p.str(c)
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.word()
	}
}

func (p *lenientParser) array() (any, error) {
	p.pos++
	out := []any{}
	p.skip()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return out, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skip()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated array")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
			p.skip()
			if p.pos < len(p.src) && p.src[p.pos] == ']' {
				p.pos++
				return out, nil
			}
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

func (p *lenientParser) str(quote byte) (any, error) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == quote {
			p.pos++
			return b.String(), nil
		}
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
			continue
		}
		p.pos++
		if p.pos >= len(p.src) {
			break
		}
		e := p.src[p.pos]
		p.pos++
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			r, err := p.unicode()
			if err != nil {
				return nil, err
			}
			b.WriteRune(r)
		default:
			b.WriteByte(e)
		}
	}
	return nil, p.errorf("unterminated string")
}

func (p *lenientParser) unicode() (rune, error) {
	hex4 := func() (rune, error) {
		if p.pos+4 > len(p.src) {
			return 0, p.errorf("short unicode escape")
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
		if err != nil {
			return 0, p.errorf("bad unicode escape")
		}
		p.pos += 4
		return rune(n), nil
	}
	r, err := hex4()
	if err != nil {
		return 0, err
	}
	if r >= 0xd800 && r < 0xdc00 && strings.HasPrefix(p.src[p.pos:], `\u`) {
		p.pos += 2
		lo, err := hex4()
		if err != nil {
			return 0, err
		}
		return (r-0xd800)<<10 + (lo - 0xdc00) + 0x10000, nil
	}
	return r, nil
}

func (p *lenientParser) number() (any, error) {
	start := p.pos
	if c := p.src[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	for p.pos < len(p.src) && strings.IndexByte("0123456789.eE+-", p.src[p.pos]) >= 0 {
		p.pos++
	}
	text := strings.TrimPrefix(p.src[start:p.pos], "+")
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return nil, p.errorf("bad number %q", text)
	}
	return json.Number(text), nil
}

func (p *lenientParser) word() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			break
		}
		p.pos++
	}
	switch w := p.src[start:p.pos]; w {
	case "null", "None":
		return nil, nil
	case "true", "True":
		return true, nil
	case "false", "False":
		return false, nil
	default:
		p.pos = start
		return nil, p.errorf("unexpected token")
	}
}
