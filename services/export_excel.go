package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type workbookStyles struct {
	title, subtitle, header, component, material, label, value int
}

// GenerateExcel writes one sheet per floor and returns the workbook bytes.
func GenerateExcel(floors []ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}

	if len(floors) == 0 {
		floors = []ExportData{{Title: "Estimate"}}
	}
	used := make(map[string]bool)
	for i, data := range floors {
		name := uniqueSheetName(data, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("set sheet name: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %q: %w", name, err)
		}
		if err := writeFloorSheet(f, name, data, styles); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	defs := []struct {
		dst   *int
		name  string
		style *excelize.Style
	}{
		{&s.title, "title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&s.subtitle, "subtitle", &excelize.Style{Font: &excelize.Font{Size: 11}}},
		{&s.header, "header", &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorders(),
		}},
		{&s.component, "component", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 10}, Border: thinBorders()}},
		{&s.material, "material", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		{&s.label, "summary label", &excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "right"},
		}},
		{&s.value, "summary value", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, fmt.Errorf("create %s style: %w", d.name, err)
		}
		*d.dst = id
	}
	return s, nil
}

// uniqueSheetName derives a valid sheet name (max 31 chars, no []:*?/\)
// from the floor name.
func uniqueSheetName(data ExportData, used map[string]bool) string {
	name := data.Floor
	if name == "" {
		name = data.Title
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, name)
	if name == "" {
		name = "Floor"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = base
		if len(name)+len(suffix) > 31 {
			name = name[:31-len(suffix)]
		}
		name += suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func writeFloorSheet(f *excelize.File, sheet string, data ExportData, s workbookStyles) error {
	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]
	widths := []float64{6, 40, 12, 8, 14, 18, 24}
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// Rows 1-3: title, floor, date.
	header := []struct {
		text  string
		style int
	}{
		{data.Title, s.title},
		{fmt.Sprintf("Floor: %s (%s)", data.Floor, data.Category), s.subtitle},
		{"Date: " + data.CreatedDate, s.subtitle},
	}
	for i, h := range header {
		cell := fmt.Sprintf("A%d", i+1)
		end := fmt.Sprintf("%s%d", lastCol, i+1)
		if err := f.MergeCell(sheet, cell, end); err != nil {
			return fmt.Errorf("merge header row %d: %w", i+1, err)
		}
		f.SetCellValue(sheet, cell, sanitizeExcelCell(h.text))
		f.SetCellStyle(sheet, cell, end, h.style)
	}

	headers := []string{"#", "Description", "Qty", "UOM", "Rate", "Amount", "Remarks"}
	for i, h := range headers {
		f.SetCellValue(sheet, columns[i]+"5", h)
	}
	f.SetCellStyle(sheet, "A5", lastCol+"5", s.header)

	row := 6
	for _, r := range data.Rows {
		rs := fmt.Sprintf("%d", row)
		desc := r.Description
		style := s.component
		if r.Level > 0 {
			desc = "  " + desc
			style = s.material
		}
		f.SetCellValue(sheet, "A"+rs, r.Index)
		f.SetCellValue(sheet, "B"+rs, sanitizeExcelCell(desc))
		f.SetCellValue(sheet, "C"+rs, r.Qty)
		f.SetCellValue(sheet, "D"+rs, sanitizeExcelCell(r.UOM))
		if r.Rate != 0 {
			f.SetCellValue(sheet, "E"+rs, r.Rate)
		}
		f.SetCellValue(sheet, "F"+rs, FormatINR(r.Amount))
		f.SetCellValue(sheet, "G"+rs, sanitizeExcelCell(r.Remarks))
		f.SetCellStyle(sheet, "A"+rs, lastCol+rs, style)
		row++
	}

	row++
	summary := []struct{ label, value string }{
		{"Direct Cost:", FormatINR(data.DirectTotal)},
	}
	for _, e := range data.Expenses {
		summary = append(summary, struct{ label, value string }{
			fmt.Sprintf("%s (%s%%):", e.Head, formatQty(e.Percent)), FormatINR(e.Amount),
		})
	}
	summary = append(summary,
		struct{ label, value string }{"Total Indirect:", FormatINR(data.IndirectTotal)},
		struct{ label, value string }{"Grand Total:", FormatINR(data.GrandTotal)},
		struct{ label, value string }{"Round Off:", FormatINR(data.RoundOff)},
		struct{ label, value string }{"Amount Payable:", FormatINR(data.Payable)},
	)
	for _, line := range summary {
		rs := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "E"+rs, sanitizeExcelCell(line.label))
		f.SetCellStyle(sheet, "E"+rs, "E"+rs, s.label)
		f.SetCellValue(sheet, "F"+rs, line.value)
		f.SetCellStyle(sheet, "F"+rs, "F"+rs, s.value)
		row++
	}
	rs := fmt.Sprintf("%d", row)
	if err := f.MergeCell(sheet, "A"+rs, lastCol+rs); err != nil {
		return fmt.Errorf("merge amount in words: %w", err)
	}
	f.SetCellValue(sheet, "A"+rs, data.AmountInWords)
	f.SetCellStyle(sheet, "A"+rs, lastCol+rs, s.subtitle)
	return nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
