// Package coords defines the addressing model shared by the scheme extractor,
// the path resolver and the grid assembler: axes, typed axis values, sparse
// coordinate records and the sources that carry them.
package coords

import (
	"fmt"
	"strconv"
	"strings"
)

// Axis names a logical addressing dimension.
type Axis string

const (
	AxisRow       Axis = "row"
	AxisColumn    Axis = "column"
	AxisField     Axis = "field"
	AxisPlane     Axis = "plane"
	AxisChannel   Axis = "channel"
	AxisTimepoint Axis = "timepoint"
	AxisReplicate Axis = "replicate"
	AxisTreatment Axis = "treatment"
)

// PriorityAxes is the fixed layout order used before any ad-hoc axis.
var PriorityAxes = []Axis{AxisRow, AxisColumn, AxisField, AxisPlane, AxisChannel, AxisTimepoint}

// Kind discriminates the payload of a Value.
type Kind uint8

const (
	KindUnspecified Kind = iota
	KindInt
	KindString
)

// Value is a typed axis value. The zero Value is Unspecified.
type Value struct {
	kind Kind
	i    int
	s    string
}

// Int returns an integer axis value.
func Int(i int) Value { return Value{kind: KindInt, i: i} }

// String returns a string axis value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Unspecified returns the placeholder used for sources lacking an axis.
func Unspecified() Value { return Value{} }

func (v Value) Kind() Kind { return v.kind }

// IsUnspecified reports whether v is the missing-axis placeholder.
func (v Value) IsUnspecified() bool { return v.kind == KindUnspecified }

// AsInt returns the integer payload and whether v is an integer.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == KindInt }

// AsString returns the string payload and whether v is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// String renders the value; Unspecified renders as "-".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.Itoa(v.i)
	case KindString:
		return v.s
	default:
		return "-"
	}
}

// Compare orders two explicit values: ints ascending, then strings
// lexicographically. Unspecified compares equal to itself and before
// everything else; callers that need another placement handle it first.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if v.kind < o.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindInt:
		switch {
		case v.i < o.i:
			return -1
		case v.i > o.i:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(v.s, o.s)
	}
	return 0
}

// Record is an immutable sparse mapping from axis to value. Insertion order
// is preserved for rendering and first-seen axis ordering.
type Record struct {
	order  []Axis
	values map[Axis]Value
}

// Entry is one axis/value pair used to build a Record.
type Entry struct {
	Axis  Axis
	Value Value
}

// NewRecord builds a record from entries. A repeated axis keeps its first
// position and its last value.
func NewRecord(entries ...Entry) Record {
	r := Record{values: make(map[Axis]Value, len(entries))}
	for _, e := range entries {
		if _, ok := r.values[e.Axis]; !ok {
			r.order = append(r.order, e.Axis)
		}
		r.values[e.Axis] = e.Value
	}
	return r
}

// With returns a copy of r with axis set to v.
func (r Record) With(axis Axis, v Value) Record {
	out := Record{order: make([]Axis, len(r.order), len(r.order)+1), values: make(map[Axis]Value, len(r.values)+1)}
	copy(out.order, r.order)
	for k, val := range r.values {
		out.values[k] = val
	}
	if _, ok := out.values[axis]; !ok {
		out.order = append(out.order, axis)
	}
	out.values[axis] = v
	return out
}

// Get returns the value for axis and whether the record carries it.
func (r Record) Get(axis Axis) (Value, bool) {
	v, ok := r.values[axis]
	return v, ok
}

// Has reports whether the record carries axis.
func (r Record) Has(axis Axis) bool {
	_, ok := r.values[axis]
	return ok
}

// Axes returns the record's axes in insertion order.
func (r Record) Axes() []Axis {
	out := make([]Axis, len(r.order))
	copy(out, r.order)
	return out
}

func (r Record) Len() int { return len(r.order) }

// Equal reports whether both records carry the same axes with equal values,
// regardless of insertion order.
func (r Record) Equal(o Record) bool {
	if len(r.values) != len(o.values) {
		return false
	}
	for k, v := range r.values {
		ov, ok := o.values[k]
		if !ok || ov.kind != v.kind || ov.Compare(v) != 0 {
			return false
		}
	}
	return true
}

// String renders the record as space separated axis=value pairs in
// insertion order.
func (r Record) String() string {
	var b strings.Builder
	for i, a := range r.order {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%s", a, r.values[a])
	}
	return b.String()
}

// Map returns the record as plain strings, mainly for serialization.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.order))
	for _, a := range r.order {
		out[string(a)] = r.values[a].String()
	}
	return out
}

// Role tags what kind of artifact a source is.
type Role string

const (
	RoleImage  Role = "image"
	RoleLabels Role = "labels"
	RoleTable  Role = "table"
)

// ParseRole maps a case-insensitive role name to a Role. An empty string
// yields RoleImage.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(RoleImage):
		return RoleImage, nil
	case string(RoleLabels), "label":
		return RoleLabels, nil
	case string(RoleTable):
		return RoleTable, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Source is one addressable file with its coordinates.
type Source struct {
	Path   string
	Coords Record
	Role   Role
}
