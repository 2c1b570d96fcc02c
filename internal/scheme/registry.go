// Package scheme holds the ordered registry of vendor file naming schemes and
// the classifier and extractor that turn a file name into coordinates.
//
// Registry order is part of the contract: schemes are tried in the order they
// were registered and, within a scheme, patterns in declared order. The first
// full match wins.
package scheme

import (
	"fmt"
	"regexp"

	"hcsgrid/pkg/coords"
)

// Field binds one named capture group to the axis it fills.
type Field struct {
	Group  string
	Axis   coords.Axis
	Decode Decoder
}

// Pattern is one regular-expression variant of a scheme.
type Pattern struct {
	id     string
	expr   *regexp.Regexp
	fields []Field
	groups map[string]int
}

// NewPattern compiles expr and binds fields to its named groups. The
// expression should be anchored; Classify relies on full matches.
func NewPattern(id, expr string, fields ...Field) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %s: %w", id, err)
	}
	p := &Pattern{id: id, expr: re, fields: fields, groups: make(map[string]int)}
	for i, name := range re.SubexpNames() {
		if name != "" {
			p.groups[name] = i
		}
	}
	for _, f := range fields {
		if _, ok := p.groups[f.Group]; !ok {
			return nil, fmt.Errorf("pattern %s: field %s references missing group %q", id, f.Axis, f.Group)
		}
		if f.Decode == nil {
			return nil, fmt.Errorf("pattern %s: field %s has no decoder", id, f.Axis)
		}
	}
	return p, nil
}

func mustPattern(id, expr string, fields ...Field) *Pattern {
	p, err := NewPattern(id, expr, fields...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) ID() string { return p.id }

// Expr returns the source of the compiled expression.
func (p *Pattern) Expr() string { return p.expr.String() }

// Fields returns the pattern's field bindings in declared order.
func (p *Pattern) Fields() []Field {
	out := make([]Field, len(p.fields))
	copy(out, p.fields)
	return out
}

// Scheme is a named vendor naming convention.
type Scheme struct {
	id       string
	patterns []*Pattern
}

// NewScheme groups patterns under an id; pattern order is preserved.
func NewScheme(id string, patterns ...*Pattern) *Scheme {
	return &Scheme{id: id, patterns: patterns}
}

func (s *Scheme) ID() string { return s.id }

// Patterns returns the scheme's patterns in try order.
func (s *Scheme) Patterns() []*Pattern {
	out := make([]*Pattern, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Registry is an ordered, read-only sequence of schemes. It is safe for
// concurrent use once constructed.
type Registry struct {
	schemes []*Scheme
}

// New validates and freezes schemes into a registry.
func New(schemes ...*Scheme) (*Registry, error) {
	seen := make(map[string]struct{}, len(schemes))
	for _, s := range schemes {
		if s == nil || s.id == "" {
			return nil, fmt.Errorf("scheme registry: scheme without id")
		}
		if _, dup := seen[s.id]; dup {
			return nil, fmt.Errorf("scheme registry: duplicate scheme %s", s.id)
		}
		seen[s.id] = struct{}{}
		if len(s.patterns) == 0 {
			return nil, fmt.Errorf("scheme registry: scheme %s has no patterns", s.id)
		}
		ids := make(map[string]struct{}, len(s.patterns))
		for _, p := range s.patterns {
			if _, dup := ids[p.id]; dup {
				return nil, fmt.Errorf("scheme registry: scheme %s repeats pattern %s", s.id, p.id)
			}
			ids[p.id] = struct{}{}
		}
	}
	out := make([]*Scheme, len(schemes))
	copy(out, schemes)
	return &Registry{schemes: out}, nil
}

// All returns the registered schemes in try order.
func (r *Registry) All() []*Scheme {
	out := make([]*Scheme, len(r.schemes))
	copy(out, r.schemes)
	return out
}

// Lookup returns the scheme with id.
func (r *Registry) Lookup(id string) (*Scheme, bool) {
	for _, s := range r.schemes {
		if s.id == id {
			return s, true
		}
	}
	return nil, false
}

var defaultRegistry = func() *Registry {
	r, err := New(builtinSchemes()...)
	if err != nil {
		panic(err)
	}
	return r
}()

// Default returns the process-wide registry of built-in schemes.
func Default() *Registry { return defaultRegistry }
