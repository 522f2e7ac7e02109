package services

import (
	"fmt"
	"time"
)

// ExportRow is one line of a floor's cost sheet.
type ExportRow struct {
	Level       int    // 0 = component, 1 = material or labour line
	Index       string // "1", "1.1", ...
	Description string
	Qty         float64
	UOM         string
	Rate        float64
	Amount      float64
	Remarks     string
}

// ExportData is the read-only projection of one floor used by the
// workbook and PDF generators.
type ExportData struct {
	Title         string
	Floor         string
	Category      FloorCategory
	CreatedDate   string
	Rows          []ExportRow
	Expenses      []ExpenseRow
	DirectTotal   float64
	IndirectTotal float64
	GrandTotal    float64
	RoundOff      float64
	Payable       float64
	AmountInWords string
}

// BuildExportData projects a floor snapshot for export. Components whose
// volume is no longer positive are left out and the totals are computed
// over what remains, re-applying the floor's allocation percentages.
func BuildExportData(title string, snap FloorSnapshot, created time.Time) ExportData {
	data := ExportData{
		Title:       title,
		Floor:       snap.Floor,
		Category:    snap.Category,
		CreatedDate: created.Format("02 Jan 2006"),
	}

	var included []MaterialGroupRow
	for _, r := range snap.Material {
		if r.Volume <= 0 {
			continue
		}
		included = append(included, r)
		idx := fmt.Sprintf("%d", len(included))
		data.Rows = append(data.Rows, ExportRow{
			Level:       0,
			Index:       idx,
			Description: r.Component,
			Qty:         r.Volume,
			UOM:         r.Unit,
			Amount:      r.TotalAmount,
			Remarks:     r.Remarks,
		})
		n := 0
		for _, m := range r.Materials {
			n++
			data.Rows = append(data.Rows, ExportRow{
				Level:       1,
				Index:       fmt.Sprintf("%s.%d", idx, n),
				Description: m.Material,
				Qty:         m.TotalQty,
				UOM:         m.UOM,
				Rate:        m.MaterialRate,
				Amount:      m.MaterialAmount,
				Remarks:     m.Remarks,
			})
		}
		if r.LabourRate > 0 {
			n++
			data.Rows = append(data.Rows, ExportRow{
				Level:       1,
				Index:       fmt.Sprintf("%s.%d", idx, n),
				Description: "Labour",
				Qty:         r.Volume,
				UOM:         r.Unit,
				Rate:        r.LabourRate,
				Amount:      r.LabourAmount,
			})
		}
	}

	data.DirectTotal = DirectTotal(included)
	if snap.Expense != nil {
		exp := Allocate(data.DirectTotal, snap.Expense.Table())
		data.Expenses = exp.Rows
		data.IndirectTotal = exp.TotalIndirect
	}
	data.GrandTotal = Round2(data.DirectTotal + data.IndirectTotal)
	data.RoundOff = roundOff(data.GrandTotal)
	data.Payable = Round2(data.GrandTotal + data.RoundOff)
	data.AmountInWords = AmountToWords(data.Payable)
	return data
}
