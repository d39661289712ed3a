// Package parser implements a hand-written lexer and recursive-descent
// parser producing the ast trees consumed by the evaluator. The supported
// grammar covers scripts and modules.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joeyhub/harmony/ast"
)

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkIdent
	tkKeyword
	tkNumber
	tkBigInt
	tkString
	tkTemplate
	tkRegExp
	tkPunct
)

type templatePart struct {
	raw    string
	cooked string
	valid  bool
	// tail is true for the closing part terminated by a backtick.
	tail bool
}

type token struct {
	kind    tokenKind
	literal string // identifier name, punctuator, keyword
	num     float64
	str     string // string literal value / bigint digits / regexp body
	flags   string // regexp flags
	parts   []templatePart
	exprs   []string // raw substitution sources for templates, parsed by parseTemplateLiteral

	idx           ast.Idx
	newlineBefore bool
}

var keywords = map[string]bool{
	"await": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "export": true, "extends": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "let": true, "new": true, "of": true,
	"return": true, "static": true, "super": true, "switch": true, "this": true,
	"throw": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "async": true, "get": true,
	"set": true, "null": true, "true": true, "false": true,
}

// lexer scans tokens on demand. The parser decides whether a '/' starts a
// regular expression via the regexOK hint.
type lexer struct {
	src  string
	name string
	pos  int
}

type lexerState struct {
	pos int
}

func (l *lexer) state() lexerState {
	return lexerState{pos: l.pos}
}

func (l *lexer) restore(s lexerState) {
	l.pos = s.pos
}

type parseError struct {
	name string
	pos  int
	msg  string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%s: %s (offset %d)", e.name, e.msg, e.pos)
}

func (l *lexer) errorf(pos int, format string, args ...interface{}) error {
	return &parseError{name: l.name, pos: pos, msg: fmt.Sprintf(format, args...)}
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// next scans the next token. regexOK permits a leading '/' to start a
// regular expression literal.
func (l *lexer) next(regexOK bool) (token, error) {
	newline := false
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case r == '\n':
			newline = true
			l.pos += size
		case unicode.IsSpace(r):
			l.pos += size
		case r == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case r == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return token{}, l.errorf(l.pos, "unterminated comment")
			}
			if strings.ContainsRune(l.src[l.pos:l.pos+2+end], '\n') {
				newline = true
			}
			l.pos += end + 4
		default:
			goto scan
		}
	}
scan:
	if l.pos >= len(l.src) {
		return token{kind: tkEOF, idx: ast.Idx(l.pos), newlineBefore: newline}, nil
	}
	start := l.pos
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])

	tok := token{idx: ast.Idx(start), newlineBefore: newline}

	switch {
	case isIdentStart(r):
		l.pos += size
		for l.pos < len(l.src) {
			r2, s2 := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r2) {
				break
			}
			l.pos += s2
		}
		name := l.src[start:l.pos]
		tok.literal = name
		if keywords[name] {
			tok.kind = tkKeyword
		} else {
			tok.kind = tkIdent
		}
		return tok, nil

	case r >= '0' && r <= '9':
		return l.scanNumber(start, tok)

	case r == '.' && l.pos+1 < len(l.src) && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9':
		return l.scanNumber(start, tok)

	case r == '"' || r == '\'':
		return l.scanString(byte(r), tok)

	case r == '`':
		return l.scanTemplate(tok)

	case r == '/' && regexOK:
		return l.scanRegExp(tok)
	}

	// Punctuators, longest first.
	puncts := []string{
		">>>=", "...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
		"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "++", "--", "+=", "-=",
		"*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
		"{", "}", "(", ")", "[", "]", ";", ",", "<", ">", "+", "-", "*", "/",
		"%", "&", "|", "^", "!", "~", "?", ":", "=", ".", "#",
	}
	rest := l.src[l.pos:]
	for _, p := range puncts {
		if strings.HasPrefix(rest, p) {
			l.pos += len(p)
			tok.kind = tkPunct
			tok.literal = p
			return tok, nil
		}
	}
	return token{}, l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) scanNumber(start int, tok token) (token, error) {
	s := l.src
	i := l.pos
	if s[i] == '0' && i+1 < len(s) && (s[i+1] == 'x' || s[i+1] == 'X' || s[i+1] == 'o' || s[i+1] == 'O' || s[i+1] == 'b' || s[i+1] == 'B') {
		base := 16
		switch s[i+1] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		i += 2
		digits := i
		for i < len(s) && digitVal(s[i]) >= 0 && digitVal(s[i]) < base {
			i++
		}
		if i == digits {
			return token{}, l.errorf(start, "invalid number literal")
		}
		if i < len(s) && s[i] == 'n' {
			v, _ := strconv.ParseUint(s[digits:i], base, 64)
			l.pos = i + 1
			tok.kind = tkBigInt
			tok.str = strconv.FormatUint(v, 10)
			return tok, nil
		}
		v, err := strconv.ParseUint(s[digits:i], base, 64)
		if err != nil {
			f := 0.0
			for _, c := range s[digits:i] {
				f = f*float64(base) + float64(digitVal(byte(c)))
			}
			l.pos = i
			tok.kind = tkNumber
			tok.num = f
			return tok, nil
		}
		l.pos = i
		tok.kind = tkNumber
		tok.num = float64(v)
		return tok, nil
	}

	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	isInt := true
	if i < len(s) && s[i] == 'n' && isInt {
		digits := s[l.pos:i]
		l.pos = i + 1
		tok.kind = tkBigInt
		tok.str = digits
		return tok, nil
	}
	if i < len(s) && s[i] == '.' {
		isInt = false
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		isInt = false
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	f, err := strconv.ParseFloat(s[l.pos:i], 64)
	if err != nil {
		return token{}, l.errorf(start, "invalid number literal")
	}
	l.pos = i
	tok.kind = tkNumber
	tok.num = f
	return tok, nil
}

func digitVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}

func (l *lexer) scanString(quote byte, tok token) (token, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case quote:
			l.pos++
			tok.kind = tkString
			tok.str = b.String()
			return tok, nil
		case '\n':
			return token{}, l.errorf(start, "unterminated string literal")
		case '\\':
			cooked, next, err := l.scanEscape(l.pos)
			if err != nil {
				return token{}, err
			}
			b.WriteString(cooked)
			l.pos = next
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			b.WriteRune(r)
			l.pos += size
		}
	}
	return token{}, l.errorf(start, "unterminated string literal")
}

// scanEscape decodes the escape sequence starting at the backslash,
// returning the cooked text and the next offset.
func (l *lexer) scanEscape(pos int) (string, int, error) {
	if pos+1 >= len(l.src) {
		return "", 0, l.errorf(pos, "unterminated escape sequence")
	}
	c := l.src[pos+1]
	switch c {
	case 'n':
		return "\n", pos + 2, nil
	case 't':
		return "\t", pos + 2, nil
	case 'r':
		return "\r", pos + 2, nil
	case 'b':
		return "\b", pos + 2, nil
	case 'f':
		return "\f", pos + 2, nil
	case 'v':
		return "\v", pos + 2, nil
	case '0':
		if pos+2 >= len(l.src) || l.src[pos+2] < '0' || l.src[pos+2] > '9' {
			return "\x00", pos + 2, nil
		}
		return "", 0, l.errorf(pos, "octal escape sequences are not allowed")
	case 'x':
		if pos+3 >= len(l.src) {
			return "", 0, l.errorf(pos, "invalid hexadecimal escape sequence")
		}
		v, err := strconv.ParseUint(l.src[pos+2:pos+4], 16, 32)
		if err != nil {
			return "", 0, l.errorf(pos, "invalid hexadecimal escape sequence")
		}
		return string(rune(v)), pos + 4, nil
	case 'u':
		if pos+2 < len(l.src) && l.src[pos+2] == '{' {
			end := strings.IndexByte(l.src[pos+3:], '}')
			if end < 0 {
				return "", 0, l.errorf(pos, "invalid Unicode escape sequence")
			}
			v, err := strconv.ParseUint(l.src[pos+3:pos+3+end], 16, 32)
			if err != nil || v > 0x10FFFF {
				return "", 0, l.errorf(pos, "invalid Unicode escape sequence")
			}
			return string(rune(v)), pos + 4 + end, nil
		}
		if pos+5 >= len(l.src) {
			return "", 0, l.errorf(pos, "invalid Unicode escape sequence")
		}
		v, err := strconv.ParseUint(l.src[pos+2:pos+6], 16, 32)
		if err != nil {
			return "", 0, l.errorf(pos, "invalid Unicode escape sequence")
		}
		return string(rune(v)), pos + 6, nil
	case '\n':
		return "", pos + 2, nil
	default:
		r, size := utf8.DecodeRuneInString(l.src[pos+1:])
		return string(r), pos + 1 + size, nil
	}
}

// scanTemplate scans a whole template literal: parts separated by ${. The
// substitutions are re-lexed by the parser from their recorded spans.
func (l *lexer) scanTemplate(tok token) (token, error) {
	start := l.pos
	l.pos++ // backtick
	var parts []templatePart
	var exprs []string
	var raw, cooked strings.Builder
	valid := true
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '`':
			l.pos++
			parts = append(parts, templatePart{raw: raw.String(), cooked: cooked.String(), valid: valid, tail: true})
			tok.kind = tkTemplate
			tok.parts = parts
			tok.exprs = exprs
			return tok, nil
		case c == '$' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '{':
			parts = append(parts, templatePart{raw: raw.String(), cooked: cooked.String(), valid: valid})
			raw.Reset()
			cooked.Reset()
			valid = true
			l.pos += 2
			depth := 1
			exprStart := l.pos
			for l.pos < len(l.src) && depth > 0 {
				switch l.src[l.pos] {
				case '{':
					depth++
				case '}':
					depth--
				}
				l.pos++
			}
			if depth != 0 {
				return token{}, l.errorf(start, "unterminated template literal")
			}
			exprs = append(exprs, l.src[exprStart:l.pos-1])
		case c == '\\':
			seqStart := l.pos
			cookedSeq, next, err := l.scanEscape(l.pos)
			if err != nil {
				// Invalid escapes are legal in tagged templates; the cooked
				// value becomes undefined.
				valid = false
				cookedSeq = ""
				next = l.pos + 2
			}
			raw.WriteString(l.src[seqStart:next])
			cooked.WriteString(cookedSeq)
			l.pos = next
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			raw.WriteRune(r)
			cooked.WriteRune(r)
			l.pos += size
		}
	}
	return token{}, l.errorf(start, "unterminated template literal")
}

func (l *lexer) scanRegExp(tok token) (token, error) {
	start := l.pos
	l.pos++ // slash
	inClass := false
	var body strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			if l.pos+1 >= len(l.src) {
				return token{}, l.errorf(start, "unterminated regular expression")
			}
			body.WriteString(l.src[l.pos : l.pos+2])
			l.pos += 2
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			l.pos++
			flagStart := l.pos
			for l.pos < len(l.src) {
				r, size := utf8.DecodeRuneInString(l.src[l.pos:])
				if !isIdentPart(r) {
					break
				}
				l.pos += size
			}
			tok.kind = tkRegExp
			tok.str = body.String()
			tok.flags = l.src[flagStart:l.pos]
			return tok, nil
		case c == '\n':
			return token{}, l.errorf(start, "unterminated regular expression")
		}
		body.WriteByte(c)
		l.pos++
	}
	return token{}, l.errorf(start, "unterminated regular expression")
}
