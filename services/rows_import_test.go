package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseMeasurementSheet_CSV(t *testing.T) {
	csv := "Description,No,Length,Width,Height,Quantity,Deduction,Notes\n" +
		"Footing F1,4,1.8,1.8,0.9,,no,x\n" +
		"Opening,1,1,0.23,2.1,,yes,\n" +
		"Extra,abc,,,,2.5,,\n" +
		",,,,,,,\n"

	res, err := ParseMeasurementSheet(strings.NewReader(csv), "sheet.CSV")
	if err != nil {
		t.Fatalf("ParseMeasurementSheet: %v", err)
	}
	if res.TotalRows != 3 || len(res.Rows) != 3 {
		t.Fatalf("rows = %d/%d, want 3", res.TotalRows, len(res.Rows))
	}
	if len(res.Ignored) != 1 || res.Ignored[0] != "Notes" {
		t.Errorf("ignored = %v, want [Notes]", res.Ignored)
	}

	tests := []struct {
		name      string
		component string
		quantity  float64
		deduction bool
	}{
		{"computed from dimensions", "Footing F1", 11.66, false},
		{"deduction", "Opening", 0.48, true},
		{"entered quantity", "Extra", 2.5, false},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := res.Rows[i]
			if r.ChildComponent != tt.component {
				t.Errorf("component = %q, want %q", r.ChildComponent, tt.component)
			}
			if got := NumberOrZero(r.Quantity); got != tt.quantity {
				t.Errorf("quantity = %v, want %v", got, tt.quantity)
			}
			if r.IsDeduction != tt.deduction {
				t.Errorf("deduction = %v, want %v", r.IsDeduction, tt.deduction)
			}
			if r.ID == "" {
				t.Error("row id not assigned")
			}
		})
	}

	if len(res.Issues) != 1 || res.Issues[0].Row != 4 || res.Issues[0].Field != FieldNo {
		t.Errorf("issues = %+v, want one issue on row 4 column no", res.Issues)
	}
	if got := Aggregate(res.Rows); got != 13.68 {
		t.Errorf("Aggregate = %v, want 13.68", got)
	}
}

func TestParseMeasurementSheet_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]any{"Item", "Nos", "L", "B", "D", "Qty"})
	f.SetSheetRow(sheet, "A2", &[]any{"Slab panel", "1", "5", "3", "0.15", ""})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	f.Close()

	res, err := ParseMeasurementSheet(&buf, "measure.xlsx")
	if err != nil {
		t.Fatalf("ParseMeasurementSheet: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(res.Rows))
	}
	if res.Rows[0].ChildComponent != "Slab panel" || NumberOrZero(res.Rows[0].Quantity) != 2.25 {
		t.Errorf("unexpected row %+v", res.Rows[0])
	}
}

func TestParseMeasurementSheet_Rejects(t *testing.T) {
	tests := []struct {
		name, file, body string
	}{
		{"unsupported extension", "rows.txt", "a,b\n1,2\n"},
		{"header only", "rows.csv", "Description,Quantity\n"},
		{"not a workbook", "rows.xlsx", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMeasurementSheet(strings.NewReader(tt.body), tt.file)
			if !IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestGenerateIssueReport(t *testing.T) {
	data, err := GenerateIssueReport([]RowImportIssue{{Row: 3, Field: FieldLength, Message: "=bad"}})
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, _ := f.GetCellValue("Issues", "C2")
	if got != "'=bad" {
		t.Errorf("C2 = %q, want sanitized message", got)
	}
}
