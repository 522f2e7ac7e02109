package services

import (
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	mutedText = &props.Color{Red: 80, Green: 80, Blue: 80}
	lightFill = &props.Color{Red: 245, Green: 245, Blue: 245}
)

// GeneratePDF renders the cost sheet of every floor, one after another,
// using maroto/v2.
func GeneratePDF(floors []ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)
	if len(floors) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(text.New("No floors to export", props.Text{Size: 10, Align: align.Center}))))
	}
	for i, data := range floors {
		if i > 0 {
			m.AddRows(row.New(10))
		}
		addFloorHeader(m, data)
		addTableHeader(m)
		for _, r := range data.Rows {
			addTableRow(m, r)
		}
		addSummary(m, data)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addFloorHeader(m core.Maroto, data ExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
			),
		),
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Floor: %s (%s)", data.Floor, data.Category), props.Text{
					Size: 9, Align: align.Left, Color: mutedText,
				}),
			),
			col.New(6).Add(
				text.New("Date: "+data.CreatedDate, props.Text{Size: 9, Align: align.Right, Color: mutedText}),
			),
		),
		row.New(4),
	)
}

func addTableHeader(m core.Maroto) {
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	centered := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	left := centered
	left.Align = align.Left

	cols := []struct {
		size  int
		label string
		style props.Text
	}{
		{1, "#", centered},
		{4, "Description", left},
		{1, "Qty", centered},
		{1, "UOM", centered},
		{1, "Rate", centered},
		{2, "Amount", centered},
		{2, "Remarks", left},
	}
	r := row.New(8)
	for _, c := range cols {
		r.Add(col.New(c.size).Add(text.New(c.label, c.style)).WithStyle(headerCell))
	}
	m.AddRows(r)
}

// addTableRow writes a component in bold and its material and labour
// lines indented on a light background.
func addTableRow(m core.Maroto, r ExportRow) {
	base := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}
	prefix := ""
	var cell *props.Cell
	if r.Level > 0 {
		base = props.Text{Size: 7, Align: align.Center}
		prefix = "  "
		cell = &props.Cell{BackgroundColor: lightFill}
	}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	rate := ""
	if r.Rate != 0 {
		rate = formatQty(r.Rate)
	}
	cols := []core.Col{
		col.New(1).Add(text.New(r.Index, base)),
		col.New(4).Add(text.New(prefix+r.Description, left)),
		col.New(1).Add(text.New(formatQty(r.Qty), right)),
		col.New(1).Add(text.New(r.UOM, base)),
		col.New(1).Add(text.New(rate, right)),
		col.New(2).Add(text.New(FormatINR(r.Amount), right)),
		col.New(2).Add(text.New(r.Remarks, left)),
	}
	if cell != nil {
		for i := range cols {
			cols[i] = cols[i].WithStyle(cell)
		}
	}
	m.AddRows(row.New(7).Add(cols...))
}

func addSummary(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	bold := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	line := func(label, value string) {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(label, bold)).WithStyle(summaryCell),
				col.New(4).Add(text.New(value, bold)).WithStyle(summaryCell),
			),
		)
	}
	line("Direct Cost", FormatINR(data.DirectTotal))
	for _, e := range data.Expenses {
		line(fmt.Sprintf("%s (%s%%)", e.Head, formatQty(e.Percent)), FormatINR(e.Amount))
	}
	line("Total Indirect", FormatINR(data.IndirectTotal))
	line("Grand Total", FormatINR(data.GrandTotal))
	line("Round Off", FormatINR(data.RoundOff))
	line("Amount Payable", FormatINR(data.Payable))

	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(text.New(data.AmountInWords, props.Text{Size: 8, Style: fontstyle.Italic, Align: align.Left})),
		),
	)
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}
