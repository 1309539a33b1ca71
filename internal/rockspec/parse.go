package rockspec

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// Parse reads the restricted Lua table-literal subset spec.md §3/§4.4/§9
// describes: top-level "key = value" assignments (a rockspec or manifest
// file is itself an implicit outer table), nested "{ ... }" tables and
// arrays, string/number/boolean/nil scalars. A leading shebang line is
// stripped. Function values, calls, and any other executable construct
// are rejected as syntax errors — the evaluator never executes code, it
// only ever builds a Table.
func Parse(src string) (*Table, error) {
	src = stripShebang(src)

	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanStrings | scanner.ScanRawStrings |
		scanner.ScanFloats | scanner.ScanInts | scanner.ScanComments | scanner.SkipComments
	s.Error = func(*scanner.Scanner, string) {} // we surface errors via parser return values

	p := &parser{s: &s}
	p.advance()

	root := NewTable()
	for p.tok != scanner.EOF {
		key, val, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		root.Set(key, val)
	}
	return root, nil
}

func stripShebang(src string) string {
	if strings.HasPrefix(src, "#!") {
		if i := strings.IndexByte(src, '\n'); i >= 0 {
			return src[i+1:]
		}
		return ""
	}
	return src
}

type parser struct {
	s   *scanner.Scanner
	tok rune
	txt string
}

func (p *parser) advance() {
	p.tok = p.s.Scan()
	p.txt = p.s.TokenText()
}

func (p *parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("rockspec: %s: %s", p.s.Position, fmt.Sprintf(format, args...))
}

// parseAssignment parses "identifier = value".
func (p *parser) parseAssignment() (string, Value, error) {
	if p.tok != scanner.Ident {
		return "", nil, p.errf("expected identifier, got %q", p.txt)
	}
	key := p.txt
	p.advance()
	if p.tok != '=' {
		return "", nil, p.errf("expected '=' after %q, got %q", key, p.txt)
	}
	p.advance()
	val, err := p.parseValue()
	if err != nil {
		return "", nil, err
	}
	return key, val, nil
}

func (p *parser) parseValue() (Value, error) {
	switch p.tok {
	case scanner.String, scanner.RawString:
		s, err := strconv.Unquote(p.txt)
		if err != nil {
			// text/scanner's raw strings use backticks, which Unquote
			// also handles; if it still fails, treat the literal token
			// text (sans quotes) as the string value.
			s = strings.Trim(p.txt, "\"'`")
		}
		p.advance()
		return s, nil
	case scanner.Int, scanner.Float:
		n, err := strconv.ParseFloat(p.txt, 64)
		if err != nil {
			return nil, p.errf("invalid number %q", p.txt)
		}
		p.advance()
		return n, nil
	case scanner.Ident:
		switch p.txt {
		case "true":
			p.advance()
			return true, nil
		case "false":
			p.advance()
			return false, nil
		case "nil":
			p.advance()
			return nil, nil
		case "function":
			return nil, p.errf("function values are not permitted in a rockspec table")
		default:
			return nil, p.errf("unexpected identifier %q (bare identifiers are not valid values)", p.txt)
		}
	case '{':
		return p.parseTable()
	case '-':
		// negative number literal
		p.advance()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		n, ok := v.(float64)
		if !ok {
			return nil, p.errf("unary '-' only applies to numbers")
		}
		return -n, nil
	default:
		return nil, p.errf("unexpected token %q", p.txt)
	}
}

// parseTable parses "{ item, item = value, ... }", producing either a
// *Table (if any entries use "key = value" form) or a []Value (a pure
// array). Mixed tables keep explicit keys and append array entries under
// their 1-based positional index as a string key, mirroring how LuaRocks
// dependency/array fields are consumed by callers of GetStringList.
func (p *parser) parseTable() (Value, error) {
	if p.tok != '{' {
		return nil, p.errf("expected '{'")
	}
	p.advance()

	tbl := NewTable()
	var arr []Value
	isTable := false
	idx := 1

	for p.tok != '}' {
		if p.tok == scanner.EOF {
			return nil, p.errf("unterminated table literal")
		}

		// Lookahead: "ident =" is a keyed entry; "[" expr "]" "=" is also
		// a keyed entry (string-valued keys only, restricted evaluator).
		if p.tok == scanner.Ident {
			// Peek by speculatively consuming; since text/scanner has no
			// native pushback for idents followed by '=', we resolve by
			// parsing the identifier then checking the next token.
			key := p.txt
			p.advance()
			if p.tok == '=' {
				p.advance()
				val, err := p.parseValue()
				if err != nil {
					return nil, err
				}
				tbl.Set(key, val)
				isTable = true
			} else {
				return nil, p.errf("bare identifier %q is not a valid table entry", key)
			}
		} else if p.tok == '[' {
			p.advance()
			if p.tok != scanner.String && p.tok != scanner.RawString {
				return nil, p.errf("only string keys are permitted in [\"...\"] form")
			}
			key, err := strconv.Unquote(p.txt)
			if err != nil {
				key = strings.Trim(p.txt, "\"'`")
			}
			p.advance()
			if p.tok != ']' {
				return nil, p.errf("expected ']'")
			}
			p.advance()
			if p.tok != '=' {
				return nil, p.errf("expected '=' after [\"...\"]")
			}
			p.advance()
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			tbl.Set(key, val)
			isTable = true
		} else {
			val, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
			tbl.Set(strconv.Itoa(idx), val)
			idx++
		}

		if p.tok == ',' || p.tok == ';' {
			p.advance()
			continue
		}
		break
	}

	if p.tok != '}' {
		return nil, p.errf("expected '}', got %q", p.txt)
	}
	p.advance()

	if isTable {
		return tbl, nil
	}
	if arr == nil {
		return []Value{}, nil
	}
	return arr, nil
}
