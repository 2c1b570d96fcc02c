package scheme

import (
	"fmt"
	"path"

	"hcsgrid/pkg/coords"
)

// Match is the transient result of classifying one file name.
type Match struct {
	Name    string
	Scheme  *Scheme
	Pattern *Pattern
	// Groups holds the raw capture of every named group that participated.
	Groups map[string]string
}

// Classify returns the first scheme/pattern in registry order that fully
// matches the base name of name.
func (r *Registry) Classify(name string) (Match, bool) {
	base := path.Base(name)
	for _, s := range r.schemes {
		for _, p := range s.patterns {
			if groups, ok := p.match(base); ok {
				return Match{Name: base, Scheme: s, Pattern: p, Groups: groups}, true
			}
		}
	}
	return Match{}, false
}

// Candidates lists every scheme with at least one pattern accepting name, in
// registry order. Classify always picks the first element.
func (r *Registry) Candidates(name string) []*Scheme {
	base := path.Base(name)
	var out []*Scheme
	for _, s := range r.schemes {
		for _, p := range s.patterns {
			if _, ok := p.match(base); ok {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// ExtractName classifies and extracts in one step. A name with no matching
// scheme yields *NoSchemeMatchError.
func (r *Registry) ExtractName(name string) (Match, coords.Record, error) {
	m, ok := r.Classify(name)
	if !ok {
		return Match{}, coords.Record{}, &NoSchemeMatchError{Name: name}
	}
	rec, err := m.Record()
	return m, rec, err
}

// Record decodes the match into a coordinate record.
func (m Match) Record() (coords.Record, error) {
	return decodeFields(m.Name, m.Scheme, m.Pattern, m.Groups)
}

// Extract decodes name against an explicit scheme and pattern.
func Extract(name string, s *Scheme, p *Pattern) (coords.Record, error) {
	base := path.Base(name)
	groups, ok := p.match(base)
	if !ok {
		return coords.Record{}, fmt.Errorf("%s does not match %s/%s", base, s.ID(), p.ID())
	}
	return decodeFields(base, s, p, groups)
}

func (p *Pattern) match(name string) (map[string]string, bool) {
	idx := p.expr.FindStringSubmatchIndex(name)
	if idx == nil || idx[0] != 0 || idx[1] != len(name) {
		return nil, false
	}
	groups := make(map[string]string, len(p.groups))
	for g, i := range p.groups {
		if idx[2*i] < 0 {
			continue
		}
		groups[g] = name[idx[2*i]:idx[2*i+1]]
	}
	return groups, true
}

func decodeFields(name string, s *Scheme, p *Pattern, groups map[string]string) (coords.Record, error) {
	entries := make([]coords.Entry, 0, len(p.fields))
	for _, f := range p.fields {
		raw, ok := groups[f.Group]
		if !ok {
			continue
		}
		v, err := f.Decode(raw)
		if err != nil {
			return coords.Record{}, &MalformedCoordinateError{
				Name: name, Scheme: s.ID(), Pattern: p.ID(), Group: f.Group, Raw: raw, Err: err,
			}
		}
		entries = append(entries, coords.Entry{Axis: f.Axis, Value: v})
	}
	return coords.NewRecord(entries...), nil
}
