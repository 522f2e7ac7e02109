package services

import (
	"github.com/google/uuid"
)

// DetailRow is one dimensional measurement line of a component. The
// measurement cells hold whatever the grid reported (numbers, numeric
// strings, blanks or free text).
type DetailRow struct {
	ID             string `json:"id"`
	GroupIndex     int    `json:"groupIndex"`
	ChildComponent string `json:"childComponent"`
	No             any    `json:"no"`
	Length         any    `json:"length"`
	Width          any    `json:"widthBreadth"`
	Height         any    `json:"heightDepth"`
	Quantity       any    `json:"quantity"`
	IsDeduction    bool   `json:"isDeduction"`
}

// ComponentGroup is a unit of work on a floor. Quantity is always the
// aggregate of Rows and is never entered by hand.
type ComponentGroup struct {
	ID          string      `json:"id"`
	Index       int         `json:"index"`
	Name        string      `json:"name"`
	Unit        string      `json:"unit"`
	Mixture     string      `json:"mixture"`
	LabourRate  float64     `json:"labourRate"`
	Category    string      `json:"category"`
	Instruction string      `json:"instruction"`
	Quantity    float64     `json:"quantity"`
	Rows        []DetailRow `json:"rows"`
}

// NewRowID returns an opaque identifier for a grid row.
func NewRowID() string {
	return uuid.NewString()
}

// NewDetailRow creates an empty measurement row attached to a group.
func NewDetailRow(groupIndex int) DetailRow {
	return DetailRow{ID: NewRowID(), GroupIndex: groupIndex}
}

// Recalculate sets Quantity to No×Length×Width×Height when all four cells
// are numeric. Otherwise the independently entered quantity is kept.
func (r *DetailRow) Recalculate() {
	dims := []any{r.No, r.Length, r.Width, r.Height}
	product := 1.0
	for _, d := range dims {
		v, ok := ParseNumber(d)
		if !ok {
			return
		}
		product *= v
	}
	r.Quantity = Round2(product)
}

// SignedQuantity is the row's contribution to its group total.
func (r DetailRow) SignedQuantity() float64 {
	q := NumberOrZero(r.Quantity)
	if r.IsDeduction {
		return -q
	}
	return q
}

// Aggregate returns Σ(additions) − Σ(deductions) over rows rounded to 2
// decimals. Non-numeric quantities count as zero.
func Aggregate(rows []DetailRow) float64 {
	var total float64
	for _, r := range rows {
		total += r.SignedQuantity()
	}
	return Round2(total)
}

// AggregateGroup writes the aggregate of g.Rows into the group header.
func AggregateGroup(g *ComponentGroup) float64 {
	g.Quantity = Aggregate(g.Rows)
	return g.Quantity
}

// AggregateGroups re-aggregates every group of a floor.
func AggregateGroups(groups []ComponentGroup) {
	for i := range groups {
		AggregateGroup(&groups[i])
	}
}

// AggregateTagged aggregates a flat row sequence whose rows carry their
// group index, returning the total for each group seen.
func AggregateTagged(rows []DetailRow) map[int]float64 {
	buckets := make(map[int][]DetailRow)
	for _, r := range rows {
		buckets[r.GroupIndex] = append(buckets[r.GroupIndex], r)
	}
	totals := make(map[int]float64, len(buckets))
	for idx, rs := range buckets {
		totals[idx] = Aggregate(rs)
	}
	return totals
}

// FindGroup returns the position of the group with the given id, or -1.
func FindGroup(groups []ComponentGroup, id string) int {
	for i := range groups {
		if groups[i].ID == id {
			return i
		}
	}
	return -1
}

// FindGroupByName returns the position of the first group named name, or -1.
func FindGroupByName(groups []ComponentGroup, name string) int {
	for i := range groups {
		if groups[i].Name == name {
			return i
		}
	}
	return -1
}

// reindexGroups renumbers groups by position and repoints their rows.
func reindexGroups(groups []ComponentGroup) {
	for i := range groups {
		groups[i].Index = i
		for j := range groups[i].Rows {
			groups[i].Rows[j].GroupIndex = i
		}
	}
}

// ensureIDs assigns ids to groups and rows created without one.
func ensureIDs(groups []ComponentGroup) {
	for i := range groups {
		if groups[i].ID == "" {
			groups[i].ID = NewRowID()
		}
		for j := range groups[i].Rows {
			if groups[i].Rows[j].ID == "" {
				groups[i].Rows[j].ID = NewRowID()
			}
		}
	}
}
