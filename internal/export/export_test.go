package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"hcsgrid/internal/grid"
	"hcsgrid/pkg/coords"
)

func well(path string, row, col, field int) coords.Source {
	return coords.Source{
		Path: path,
		Role: coords.RoleImage,
		Coords: coords.NewRecord(
			coords.Entry{Axis: coords.AxisRow, Value: coords.Int(row)},
			coords.Entry{Axis: coords.AxisColumn, Value: coords.Int(col)},
			coords.Entry{Axis: coords.AxisField, Value: coords.Int(field)},
		),
	}
}

func plate(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.Assemble([]coords.Source{
		well("r1c1f1.tif", 1, 1, 1),
		well("r1c1f2.tif", 1, 1, 2),
		well("r2c3f1.tif", 2, 3, 1),
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return g
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, plate(t)); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		{"position", "row", "column", "field", "role", "path"},
		{"0", "1", "1", "1", "image", "r1c1f1.tif"},
		{"1", "1", "1", "2", "image", "r1c1f2.tif"},
		{"2", "2", "3", "1", "image", "r2c3f1.tif"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("csv (-want +got):\n%s", diff)
	}
}

func TestRows_DenseAndUnspecified(t *testing.T) {
	g, err := grid.Assemble([]coords.Source{
		{Path: "a.tif", Role: coords.RoleImage, Coords: coords.NewRecord(coords.Entry{Axis: coords.AxisRow, Value: coords.Int(1)})},
		{Path: "b.tif", Role: coords.RoleImage, Coords: coords.NewRecord(coords.Entry{Axis: coords.AxisColumn, Value: coords.Int(2)})},
	}, grid.WithDense())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	rows := Rows(g)
	// 2 row values x 2 column values, all placeholders included.
	if len(rows) != 4 {
		t.Fatalf("rows = %v", rows)
	}
	var empty int
	for _, r := range rows {
		if r[len(r)-1] == "" {
			empty++
		}
	}
	if empty != 2 {
		t.Fatalf("expected two placeholder rows, got %d in %v", empty, rows)
	}
}

func TestWriteXLSX_PlateMap(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, plate(t)); err != nil {
		t.Fatalf("write: %v", err)
	}
	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = wb.Close() }()
	rows, err := wb.GetRows(GridSheet)
	if err != nil {
		t.Fatalf("grid rows: %v", err)
	}
	if len(rows) != 4 || rows[3][5] != "r2c3f1.tif" {
		t.Fatalf("grid sheet = %v", rows)
	}
	plateRows, err := wb.GetRows(PlateSheet)
	if err != nil {
		t.Fatalf("plate rows: %v", err)
	}
	want := [][]string{
		{"", "1", "3"},
		{"A", "2"},
		{"B", "", "1"},
	}
	if diff := cmp.Diff(want, plateRows); diff != "" {
		t.Fatalf("plate (-want +got):\n%s", diff)
	}
}

func TestWriteXLSX_NoPlateWithoutWellAxes(t *testing.T) {
	g, err := grid.Assemble([]coords.Source{{
		Path: "t1.tif", Role: coords.RoleImage,
		Coords: coords.NewRecord(coords.Entry{Axis: coords.AxisTimepoint, Value: coords.Int(1)}),
	}})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, g); err != nil {
		t.Fatalf("write: %v", err)
	}
	wb, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = wb.Close() }()
	if diff := cmp.Diff([]string{GridSheet}, wb.GetSheetList()); diff != "" {
		t.Fatalf("sheets (-want +got):\n%s", diff)
	}
}

func TestFormatFor(t *testing.T) {
	for name, want := range map[string]Format{"out.csv": FormatCSV, "OUT.XLSX": FormatXLSX} {
		got, err := FormatFor(name)
		if err != nil || got != want {
			t.Fatalf("%s: got %q, %v", name, got, err)
		}
	}
	if _, err := FormatFor("out.json"); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestRowLabel(t *testing.T) {
	cases := map[int]string{1: "A", 16: "P", 26: "Z", 27: "AA", 52: "AZ"}
	for n, want := range cases {
		if got := rowLabel(coords.Int(n)); got != want {
			t.Fatalf("rowLabel(%d) = %q, want %q", n, got, want)
		}
	}
	if got := rowLabel(coords.String("H")); got != "H" {
		t.Fatalf("string row label = %q", got)
	}
}
