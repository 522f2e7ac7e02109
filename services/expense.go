package services

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AllocationEntry is one head of a floor category's allocation table.
type AllocationEntry struct {
	Head    string  `json:"head"`
	Percent float64 `json:"allocationPercent"`
}

// Validate implements validation.Validatable.
func (a AllocationEntry) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Head, validation.Required),
		validation.Field(&a.Percent, validation.Min(0.0), validation.Max(100.0)),
	)
}

// ExpenseRow is an allocated indirect expense head.
type ExpenseRow struct {
	Head    string  `json:"head"`
	Percent float64 `json:"allocationPercent"`
	Amount  float64 `json:"amount"`
}

// ExpenseSummary is the indirect expense allocation of one floor.
// Persisted is set when the rows came from storage rather than derivation.
type ExpenseSummary struct {
	Rows          []ExpenseRow `json:"rows"`
	DirectTotal   float64      `json:"directTotal"`
	TotalIndirect float64      `json:"totalIndirect"`
	GrandTotal    float64      `json:"grandTotal"`
	Persisted     bool         `json:"persisted"`
}

// Allocate spreads directTotal over the allocation table.
func Allocate(directTotal float64, table []AllocationEntry) ExpenseSummary {
	s := ExpenseSummary{
		Rows:        make([]ExpenseRow, 0, len(table)),
		DirectTotal: Round2(directTotal),
	}
	for _, a := range table {
		s.Rows = append(s.Rows, ExpenseRow{
			Head:    a.Head,
			Percent: a.Percent,
			Amount:  Round2(directTotal * a.Percent / 100),
		})
	}
	s.resum()
	return s
}

// AllocateForCategory allocates directTotal with the table configured for
// category.
func AllocateForCategory(category FloorCategory, directTotal float64, src AllocationSource) (ExpenseSummary, error) {
	table, err := src.AllocationTable(category)
	if err != nil {
		return ExpenseSummary{}, fmt.Errorf("allocation table for %s: %w", category, err)
	}
	if err := validation.Validate(table); err != nil {
		return ExpenseSummary{}, validationFromOzzo(err)
	}
	return Allocate(directTotal, table), nil
}

// SetPercent changes one head's percentage, recomputes only that row and
// re-sums. The direct total is left as it is.
func (s *ExpenseSummary) SetPercent(index int, percent float64) error {
	if index < 0 || index >= len(s.Rows) {
		return &ValidationError{Field: "index", Message: fmt.Sprintf("no expense head at position %d", index)}
	}
	if percent < 0 || percent > 100 {
		return &ValidationError{Field: "allocationPercent", Message: "must be between 0 and 100"}
	}
	s.Rows[index].Percent = percent
	s.Rows[index].Amount = Round2(s.DirectTotal * percent / 100)
	s.resum()
	return nil
}

// Table returns the percentages currently applied, for re-allocation
// against a new direct total.
func (s ExpenseSummary) Table() []AllocationEntry {
	table := make([]AllocationEntry, len(s.Rows))
	for i, r := range s.Rows {
		table[i] = AllocationEntry{Head: r.Head, Percent: r.Percent}
	}
	return table
}

func (s *ExpenseSummary) resum() {
	var total float64
	for _, r := range s.Rows {
		total += r.Amount
	}
	s.TotalIndirect = Round2(total)
	s.GrandTotal = Round2(s.DirectTotal + s.TotalIndirect)
}

// FloorTotals is the cost roll-up of a floor.
type FloorTotals struct {
	Direct   float64 `json:"direct"`
	Indirect float64 `json:"indirect"`
	Grand    float64 `json:"grand"`
}

// ComputeFloorTotals sums material rows and the expense allocation.
func ComputeFloorTotals(rows []MaterialGroupRow, expense *ExpenseSummary) FloorTotals {
	t := FloorTotals{Direct: DirectTotal(rows)}
	if expense != nil {
		var sum float64
		for _, r := range expense.Rows {
			sum += r.Amount
		}
		t.Indirect = Round2(sum)
	}
	t.Grand = Round2(t.Direct + t.Indirect)
	return t
}
