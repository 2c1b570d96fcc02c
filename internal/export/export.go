// Package export renders assembled grids as tables: CSV for pipelines and an
// XLSX workbook with a plate map for people.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"hcsgrid/internal/grid"
	"hcsgrid/pkg/coords"
)

// Sheet names in the XLSX workbook.
const (
	GridSheet  = "Grid"
	PlateSheet = "Plate"
)

// Format selects an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks the format from a file extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format for %s (want .csv or .xlsx)", name)
	}
}

// Write encodes g in format f.
func Write(w io.Writer, f Format, g *grid.Grid) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, g)
	case FormatXLSX:
		return WriteXLSX(w, g)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// Header returns the column names of the tabular form: position, one column
// per grid axis, role and path.
func Header(g *grid.Grid) []string {
	h := []string{"position"}
	for _, a := range g.Axes() {
		h = append(h, string(a))
	}
	return append(h, "role", "path")
}

// Rows flattens g into one row per source in position order. Cells without
// sources yield a single row with empty role and path.
func Rows(g *grid.Grid) [][]string {
	var rows [][]string
	for _, c := range g.Cells() {
		prefix := []string{strconv.Itoa(c.Position)}
		for _, v := range c.Tuple {
			prefix = append(prefix, cellText(v))
		}
		if len(c.Sources) == 0 {
			rows = append(rows, append(append([]string(nil), prefix...), "", ""))
			continue
		}
		for _, s := range c.Sources {
			rows = append(rows, append(append([]string(nil), prefix...), string(s.Role), s.Path))
		}
	}
	return rows
}

func cellText(v coords.Value) string {
	if v.IsUnspecified() {
		return ""
	}
	return v.String()
}

// WriteCSV writes Header and Rows as CSV.
func WriteCSV(w io.Writer, g *grid.Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(g)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(g)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with the tabular form on GridSheet. When g has
// both row and column axes a PlateSheet is added: well rows down, well
// columns across, each cell holding the number of sources at that well.
func WriteXLSX(w io.Writer, g *grid.Grid) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()
	if err := wb.SetSheetName("Sheet1", GridSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeTable(wb, g); err != nil {
		return err
	}
	if hasAxis(g, coords.AxisRow) && hasAxis(g, coords.AxisColumn) {
		if err := writePlate(wb, g); err != nil {
			return err
		}
	}
	if err := wb.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(wb *excelize.File, g *grid.Grid) error {
	rows := append([][]string{Header(g)}, Rows(g)...)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(r))
		for j, s := range r {
			vals[j] = s
		}
		if err := wb.SetSheetRow(GridSheet, cell, &vals); err != nil {
			return fmt.Errorf("write %s row %d: %w", GridSheet, i+1, err)
		}
	}
	return nil
}

func writePlate(wb *excelize.File, g *grid.Grid) error {
	if _, err := wb.NewSheet(PlateSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	rows := g.Values(coords.AxisRow)
	cols := g.Values(coords.AxisColumn)
	rowIdx := indexOf(rows)
	colIdx := indexOf(cols)
	for j, c := range cols {
		name, _ := excelize.CoordinatesToCellName(j+2, 1)
		if err := wb.SetCellValue(PlateSheet, name, cellText(c)); err != nil {
			return err
		}
	}
	for i, r := range rows {
		name, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := wb.SetCellValue(PlateSheet, name, rowLabel(r)); err != nil {
			return err
		}
	}
	counts := make(map[[2]int]int)
	ri, ci := axisIndex(g, coords.AxisRow), axisIndex(g, coords.AxisColumn)
	for _, c := range g.Cells() {
		key := [2]int{rowIdx[c.Tuple[ri].String()], colIdx[c.Tuple[ci].String()]}
		counts[key] += len(c.Sources)
	}
	for key, n := range counts {
		if n == 0 {
			continue
		}
		name, _ := excelize.CoordinatesToCellName(key[1]+2, key[0]+2)
		if err := wb.SetCellValue(PlateSheet, name, n); err != nil {
			return err
		}
	}
	return nil
}

// rowLabel renders integer rows as plate letters (1 -> A, 27 -> AA).
func rowLabel(v coords.Value) string {
	n, ok := v.AsInt()
	if !ok || n < 1 {
		return cellText(v)
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

func hasAxis(g *grid.Grid, a coords.Axis) bool { return axisIndex(g, a) >= 0 }

func axisIndex(g *grid.Grid, a coords.Axis) int {
	for i, x := range g.Axes() {
		if x == a {
			return i
		}
	}
	return -1
}

func indexOf(vals []coords.Value) map[string]int {
	m := make(map[string]int, len(vals))
	for i, v := range vals {
		m[v.String()] = i
	}
	return m
}
