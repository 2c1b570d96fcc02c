package coords

import (
	"sort"
	"testing"

	"hcsgrid/testutil"
)

func TestValue_Order(t *testing.T) {
	vals := []Value{String("b"), Int(10), Unspecified(), Int(2), String("a")}
	sort.Slice(vals, func(i, j int) bool { return vals[i].Compare(vals[j]) < 0 })
	want := []string{"-", "2", "10", "a", "b"}
	for i, v := range vals {
		if v.String() != want[i] {
			t.Fatalf("position %d = %s, want %s", i, v, want[i])
		}
	}
	if Int(3).Compare(Int(3)) != 0 || String("x").Compare(String("x")) != 0 {
		t.Fatalf("equal values must compare 0")
	}
}

func TestValue_Accessors(t *testing.T) {
	if n, ok := Int(7).AsInt(); !ok || n != 7 {
		t.Fatalf("AsInt = %d, %v", n, ok)
	}
	if _, ok := String("7").AsInt(); ok {
		t.Fatalf("string value must not report int")
	}
	if s, ok := String("ch1").AsString(); !ok || s != "ch1" {
		t.Fatalf("AsString = %q, %v", s, ok)
	}
	var zero Value
	if !zero.IsUnspecified() || zero.Kind() != KindUnspecified {
		t.Fatalf("zero value must be unspecified")
	}
}

func TestRecord_SparseOrderedImmutable(t *testing.T) {
	r := NewRecord(
		Entry{AxisRow, Int(1)},
		Entry{AxisColumn, Int(2)},
		Entry{AxisRow, Int(3)},
	)
	if r.Len() != 2 || r.String() != "row=3 column=2" {
		t.Fatalf("record = %s (len %d)", r, r.Len())
	}
	r2 := r.With(AxisField, Int(5))
	if r.Has(AxisField) {
		t.Fatalf("With must not mutate the receiver")
	}
	if !r2.Has(AxisField) || r2.String() != "row=3 column=2 field=5" {
		t.Fatalf("with = %s", r2)
	}
	axes := r2.Axes()
	axes[0] = AxisPlane
	if r2.Axes()[0] != AxisRow {
		t.Fatalf("Axes must return a copy")
	}
	if _, ok := r.Get(AxisTimepoint); ok {
		t.Fatalf("absent axis must not be reported")
	}
}

func TestRecord_Equal(t *testing.T) {
	a := NewRecord(Entry{AxisRow, Int(1)}, Entry{AxisChannel, String("1")})
	b := NewRecord(Entry{AxisChannel, String("1")}, Entry{AxisRow, Int(1)})
	if !a.Equal(b) {
		t.Fatalf("insertion order must not affect equality")
	}
	c := NewRecord(Entry{AxisRow, Int(1)}, Entry{AxisChannel, Int(1)})
	if a.Equal(c) {
		t.Fatalf("int and string values must differ")
	}
	if a.Equal(NewRecord(Entry{AxisRow, Int(1)})) {
		t.Fatalf("different axis sets must differ")
	}
	if m := a.Map(); m["row"] != "1" || m["channel"] != "1" || len(m) != 2 {
		t.Fatalf("map = %v", m)
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{"": RoleImage, "IMAGE": RoleImage, "labels": RoleLabels, "label": RoleLabels, " table ": RoleTable}
	for in, want := range cases {
		got, err := ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseRole("mask"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestCoordsPackageIsDependencyFree(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.AnyOf(testutil.InternalImportForbidden, testutil.ThirdPartyImport),
		"pkg/coords is the shared leaf of every engine package")
}
