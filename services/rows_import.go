package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowImportIssue is a problem found on one line of a measurement sheet.
// Issues never block the import; the affected cell counts as zero.
type RowImportIssue struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RowImportResult holds the detail rows parsed from a measurement sheet.
type RowImportResult struct {
	TotalRows int              `json:"total_rows"`
	Rows      []DetailRow      `json:"rows"`
	Issues    []RowImportIssue `json:"issues"`
	Ignored   []string         `json:"ignored_columns"`
}

var measurementColumns = map[string]string{
	"description":  FieldChildComponent,
	"component":    FieldChildComponent,
	"item":         FieldChildComponent,
	"no":           FieldNo,
	"nos":          FieldNo,
	"number":       FieldNo,
	"length":       FieldLength,
	"l":            FieldLength,
	"width":        FieldWidth,
	"breadth":      FieldWidth,
	"b":            FieldWidth,
	"height":       FieldHeight,
	"depth":        FieldHeight,
	"h":            FieldHeight,
	"d":            FieldHeight,
	"quantity":     FieldQuantity,
	"qty":          FieldQuantity,
	"deduction":    FieldIsDeduction,
	"is deduction": FieldIsDeduction,
}

// ParseMeasurementSheet reads a .csv or .xlsx measurement sheet into detail
// rows ready to be pasted into a component. Rows without a usable quantity
// but with all four dimensions get their quantity computed.
func ParseMeasurementSheet(r io.Reader, fileName string) (*RowImportResult, error) {
	var (
		headers []string
		data    [][]string
		err     error
	)
	switch lower := strings.ToLower(fileName); {
	case strings.HasSuffix(lower, ".csv"):
		headers, data, err = parseCSV(r)
	case strings.HasSuffix(lower, ".xlsx"):
		headers, data, err = parseExcel(r)
	default:
		return nil, &ValidationError{Field: "file", Message: "unsupported file format: must be .csv or .xlsx"}
	}
	if err != nil {
		return nil, err
	}

	fields, ignored := mapMeasurementHeaders(headers)
	res := &RowImportResult{Ignored: ignored}
	for i, line := range data {
		rowNum := i + 2
		if blankLine(line) {
			continue
		}
		res.TotalRows++
		row, issues := buildDetailRow(rowNum, fields, line)
		res.Rows = append(res.Rows, row)
		res.Issues = append(res.Issues, issues...)
	}
	return res, nil
}

func mapMeasurementHeaders(headers []string) ([]string, []string) {
	mapped := make([]string, len(headers))
	var ignored []string
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(h), "*")))
		if f, ok := measurementColumns[norm]; ok {
			mapped[i] = f
		} else if norm != "" {
			ignored = append(ignored, h)
		}
	}
	return mapped, ignored
}

func blankLine(line []string) bool {
	for _, v := range line {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func buildDetailRow(rowNum int, fields, line []string) (DetailRow, []RowImportIssue) {
	row := DetailRow{ID: NewRowID()}
	var issues []RowImportIssue
	quantitySet := false

	for col, field := range fields {
		if field == "" || col >= len(line) {
			continue
		}
		v := strings.TrimSpace(line[col])
		if v == "" {
			continue
		}
		switch field {
		case FieldChildComponent:
			row.ChildComponent = v
			continue
		case FieldIsDeduction:
			row.IsDeduction = truthyCell(v)
			continue
		}

		var cell any = v
		if n, ok := ParseNumber(v); ok {
			cell = n
		} else {
			issues = append(issues, RowImportIssue{Row: rowNum, Field: field, Message: fmt.Sprintf("%q is not a number and counts as zero", v)})
		}
		switch field {
		case FieldNo:
			row.No = cell
		case FieldLength:
			row.Length = cell
		case FieldWidth:
			row.Width = cell
		case FieldHeight:
			row.Height = cell
		case FieldQuantity:
			row.Quantity = cell
			_, quantitySet = cell.(float64)
		}
	}
	if !quantitySet {
		row.Recalculate()
	}
	return row, issues
}

func truthyCell(v string) bool {
	switch strings.ToLower(v) {
	case "y", "yes", "true", "1", "deduction", "ded", "-":
		return true
	}
	return false
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, &ValidationError{Field: "file", Message: fmt.Sprintf("failed to parse CSV: %v", err)}
	}
	if len(allRows) < 2 {
		return nil, nil, &ValidationError{Field: "file", Message: "file must contain a header row and at least one data row"}
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, &ValidationError{Field: "file", Message: fmt.Sprintf("failed to open Excel file: %v", err)}
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, &ValidationError{Field: "file", Message: "file must contain a header row and at least one data row"}
	}
	return rows[0], rows[1:], nil
}

// GenerateIssueReport creates a downloadable .xlsx listing import issues.
func GenerateIssueReport(issues []RowImportIssue) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Issues"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Column")
	f.SetCellValue(sheet, "C1", "Issue")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 18)
	f.SetColWidth(sheet, "C", "C", 55)
	for i, is := range issues {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, is.Row)
		f.SetCellValue(sheet, "B"+row, is.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(is.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write issue report: %w", err)
	}
	return buf.Bytes(), nil
}
