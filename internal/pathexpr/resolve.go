package pathexpr

import (
	"context"
	"path"
	"sort"
	"strings"

	"hcsgrid/internal/blob"
	"hcsgrid/pkg/coords"
)

// Lister is the slice of blob.Store the resolver needs.
type Lister interface {
	List(ctx context.Context, prefix string, opts blob.ListOptions) ([]blob.Info, error)
}

// Hit is one matched file. Key is the full store key; Coords holds one
// string entry per participating named group.
type Hit struct {
	Key    string
	Coords coords.Record
}

// Resolve lists every file under root and returns those the expression
// accepts, ordered by key. No matches is an empty result, not an error.
func Resolve(ctx context.Context, l Lister, root string, e *Expression, opts blob.ListOptions) ([]Hit, error) {
	infos, err := l.List(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	dir := strings.Trim(root, "/")
	hits := make([]Hit, 0)
	for _, in := range infos {
		rel := strings.TrimPrefix(strings.TrimPrefix(in.Key, dir), "/")
		if rec, ok := e.Match(rel); ok {
			hits = append(hits, Hit{Key: in.Key, Coords: rec})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Key < hits[j].Key })
	return hits, nil
}

// Match tests a root-relative path. Captured values are kept verbatim;
// unnamed groups and groups that did not participate produce no entry.
func (e *Expression) Match(rel string) (coords.Record, bool) {
	subject := rel
	if !e.matchPath {
		subject = path.Base(rel)
	}
	idx := e.re.FindStringSubmatchIndex(subject)
	if idx == nil {
		return coords.Record{}, false
	}
	var entries []coords.Entry
	for i, name := range e.re.SubexpNames() {
		if name == "" || idx[2*i] < 0 {
			continue
		}
		entries = append(entries, coords.Entry{Axis: coords.Axis(name), Value: coords.String(subject[idx[2*i]:idx[2*i+1]])})
	}
	return coords.NewRecord(entries...), true
}
