// Package pathexpr expands glob or named-group regular expressions against a
// storage listing and turns the named captures into ad-hoc coordinates.
package pathexpr

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode records how an expression was interpreted.
type Mode int

const (
	ModeGlob Mode = iota
	ModeRegexp
)

func (m Mode) String() string {
	if m == ModeGlob {
		return "glob"
	}
	return "regexp"
}

// Expression is a compiled, fully anchored path expression.
type Expression struct {
	raw       string
	mode      Mode
	re        *regexp.Regexp
	matchPath bool
}

// regexOnly lists characters that never appear in the supported glob syntax.
const regexOnly = `([\+^$|{`

// Compile picks glob or regexp mode: an expression is a regexp when it has a
// named group or any character in regexOnly, a glob otherwise.
func Compile(expr string) (*Expression, error) {
	if strings.ContainsAny(expr, regexOnly) {
		return CompileRegexp(expr)
	}
	return CompileGlob(expr)
}

// CompileGlob translates "*" to ".*" and "?" to "." and escapes everything
// else. "*" crosses directory separators.
func CompileGlob(glob string) (*Expression, error) {
	var b strings.Builder
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return build(glob, ModeGlob, b.String())
}

// CompileRegexp uses expr as written, anchored at both ends. Named groups may
// use either (?P<name>...) or (?<name>...).
func CompileRegexp(expr string) (*Expression, error) {
	return build(expr, ModeRegexp, expr)
}

func build(raw string, mode Mode, body string) (*Expression, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty path expression")
	}
	re, err := regexp.Compile(`^(?:` + body + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile %s %q: %w", mode, raw, err)
	}
	return &Expression{raw: raw, mode: mode, re: re, matchPath: strings.Contains(raw, "/")}, nil
}

func (e *Expression) String() string { return e.raw }

func (e *Expression) Mode() Mode { return e.mode }

// MatchesPath reports whether the expression is tested against the
// root-relative path rather than the base name.
func (e *Expression) MatchesPath() bool { return e.matchPath }

// Groups returns the expression's named groups in declaration order.
func (e *Expression) Groups() []string {
	var out []string
	for _, n := range e.re.SubexpNames() {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
