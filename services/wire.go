package services

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ExpenseKey is the sibling key holding the allocation inside a floor's
// persisted material document.
const ExpenseKey = "Expense"

// WireDetailRow is the persisted shape of a detail row.
type WireDetailRow struct {
	ID             string `json:"id,omitempty"`
	ChildComponent string `json:"childComponent"`
	No             any    `json:"no"`
	Length         any    `json:"length"`
	WidthBreadth   any    `json:"widthBreadth"`
	HeightDepth    any    `json:"heightDepth"`
	Quantity       any    `json:"quantity"`
	IsDeduction    bool   `json:"isDeduction"`
}

// WireComponent is the persisted shape of a component, keyed by name.
type WireComponent struct {
	Index         *int            `json:"index,omitempty"`
	ID            string          `json:"id,omitempty"`
	Unit          string          `json:"Unit"`
	Mixture       string          `json:"Mixture"`
	Category      string          `json:"Category"`
	LabourRate    float64         `json:"labourRate,omitempty"`
	Instruction   string          `json:"instruction,omitempty"`
	TotalQuantity float64         `json:"TotalQuantity"`
	Rows          []WireDetailRow `json:"rows"`
}

// WireMaterial is the persisted shape of a material child row.
type WireMaterial struct {
	ID              string  `json:"id,omitempty"`
	Material        string  `json:"material"`
	CatalogID       string  `json:"catalogId,omitempty"`
	ConsumptionRate float64 `json:"consumptionRate"`
	MaterialQty     float64 `json:"materialQty"`
	Wastage         float64 `json:"wastage"`
	TotalQty        float64 `json:"totalQty"`
	UOM             string  `json:"uom"`
	MaterialRate    float64 `json:"materialRate"`
	MaterialAmount  float64 `json:"materialAmount"`
	TotalAmount     float64 `json:"totalAmount"`
	Remarks         string  `json:"remarks,omitempty"`
	Manual          bool    `json:"manual,omitempty"`
}

// WireMaterialGroup is the persisted shape of a component's material
// breakdown, keyed by component name.
type WireMaterialGroup struct {
	Index          *int           `json:"index,omitempty"`
	ID             string         `json:"id,omitempty"`
	Volume         float64        `json:"volume"`
	Unit           string         `json:"unit"`
	LabourRate     float64        `json:"labourRate"`
	LabourAmount   float64        `json:"labourAmount"`
	MaterialAmount float64        `json:"materialAmount"`
	TotalAmount    float64        `json:"totalAmount"`
	Category       string         `json:"Category"`
	Remarks        string         `json:"remarks,omitempty"`
	Materials      []WireMaterial `json:"materials"`
}

// WireExpense is one persisted allocation head, keyed by head name.
type WireExpense struct {
	Index   *int    `json:"index,omitempty"`
	Percent float64 `json:"allocationPercent"`
	Amount  float64 `json:"amount"`
}

func intPtr(i int) *int { return &i }

func checkNames(names []string, reserved string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return &ValidationError{Field: "component", Message: "component name is required"}
		}
		if n == reserved {
			return &ValidationError{Field: "component", Message: fmt.Sprintf("%q is a reserved name", n)}
		}
		if seen[n] {
			return &ValidationError{Field: "component", Message: fmt.Sprintf("duplicate component %q", n)}
		}
		seen[n] = true
	}
	return nil
}

// EncodeQuantity converts a floor's components to the persisted mapping.
func EncodeQuantity(groups []ComponentGroup) (map[string]WireComponent, error) {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	if err := checkNames(names, ""); err != nil {
		return nil, err
	}

	out := make(map[string]WireComponent, len(groups))
	for i, g := range groups {
		rows := make([]WireDetailRow, len(g.Rows))
		for j, r := range g.Rows {
			rows[j] = WireDetailRow{
				ID:             r.ID,
				ChildComponent: r.ChildComponent,
				No:             r.No,
				Length:         r.Length,
				WidthBreadth:   r.Width,
				HeightDepth:    r.Height,
				Quantity:       r.Quantity,
				IsDeduction:    r.IsDeduction,
			}
		}
		out[g.Name] = WireComponent{
			Index:         intPtr(i),
			ID:            g.ID,
			Unit:          g.Unit,
			Mixture:       g.Mixture,
			Category:      g.Category,
			LabourRate:    g.LabourRate,
			Instruction:   g.Instruction,
			TotalQuantity: Round2(g.Quantity),
			Rows:          rows,
		}
	}
	return out, nil
}

// DecodeQuantity rebuilds a floor's components from the persisted mapping.
// Components are ordered by their stored index, then by name. Quantities are
// re-aggregated from the rows rather than trusted.
func DecodeQuantity(m map[string]WireComponent) []ComponentGroup {
	names := orderedKeys(m, func(w WireComponent) *int { return w.Index })
	groups := make([]ComponentGroup, 0, len(names))
	for i, name := range names {
		w := m[name]
		g := ComponentGroup{
			ID:          w.ID,
			Index:       i,
			Name:        name,
			Unit:        w.Unit,
			Mixture:     w.Mixture,
			LabourRate:  w.LabourRate,
			Category:    w.Category,
			Instruction: w.Instruction,
			Rows:        make([]DetailRow, len(w.Rows)),
		}
		if g.ID == "" {
			g.ID = NewRowID()
		}
		for j, r := range w.Rows {
			id := r.ID
			if id == "" {
				id = NewRowID()
			}
			g.Rows[j] = DetailRow{
				ID:             id,
				GroupIndex:     i,
				ChildComponent: r.ChildComponent,
				No:             r.No,
				Length:         r.Length,
				Width:          r.WidthBreadth,
				Height:         r.HeightDepth,
				Quantity:       r.Quantity,
				IsDeduction:    r.IsDeduction,
			}
		}
		AggregateGroup(&g)
		groups = append(groups, g)
	}
	return groups
}

// MarshalQuantity encodes a floor's components as a JSON document.
func MarshalQuantity(groups []ComponentGroup) ([]byte, error) {
	m, err := EncodeQuantity(groups)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// UnmarshalQuantity parses a floor's persisted component document.
func UnmarshalQuantity(data []byte) ([]ComponentGroup, error) {
	if len(data) == 0 || string(data) == "null" {
		return []ComponentGroup{}, nil
	}
	var m map[string]WireComponent
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode quantity document: %w", err)
	}
	return DecodeQuantity(m), nil
}

// MarshalMaterial encodes a floor's material grid, with the expense
// allocation under ExpenseKey when present.
func MarshalMaterial(rows []MaterialGroupRow, expense *ExpenseSummary) ([]byte, error) {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Component
	}
	if err := checkNames(names, ExpenseKey); err != nil {
		return nil, err
	}

	doc := make(map[string]any, len(rows)+1)
	for i, r := range rows {
		mats := make([]WireMaterial, len(r.Materials))
		for j, c := range r.Materials {
			mats[j] = WireMaterial{
				ID:              c.ID,
				Material:        c.Material,
				CatalogID:       c.CatalogID,
				ConsumptionRate: c.ConsumptionRate,
				MaterialQty:     c.MaterialQty,
				Wastage:         c.Wastage,
				TotalQty:        c.TotalQty,
				UOM:             c.UOM,
				MaterialRate:    c.MaterialRate,
				MaterialAmount:  c.MaterialAmount,
				TotalAmount:     c.MaterialAmount,
				Remarks:         c.Remarks,
				Manual:          c.Manual,
			}
		}
		doc[r.Component] = WireMaterialGroup{
			Index:          intPtr(i),
			ID:             r.ID,
			Volume:         r.Volume,
			Unit:           r.Unit,
			LabourRate:     r.LabourRate,
			LabourAmount:   r.LabourAmount,
			MaterialAmount: r.MaterialAmount,
			TotalAmount:    r.TotalAmount,
			Category:       r.Category,
			Remarks:        r.Remarks,
			Materials:      mats,
		}
	}
	if expense != nil {
		heads := make(map[string]WireExpense, len(expense.Rows))
		for i, e := range expense.Rows {
			heads[e.Head] = WireExpense{Index: intPtr(i), Percent: e.Percent, Amount: e.Amount}
		}
		doc[ExpenseKey] = heads
	}
	return json.Marshal(doc)
}

// UnmarshalMaterial parses a floor's persisted material document. The
// returned expense is nil when the document carries no allocation.
func UnmarshalMaterial(data []byte) ([]MaterialGroupRow, *ExpenseSummary, error) {
	if len(data) == 0 || string(data) == "null" {
		return []MaterialGroupRow{}, nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode material document: %w", err)
	}

	var heads map[string]WireExpense
	if exp, ok := raw[ExpenseKey]; ok {
		if err := json.Unmarshal(exp, &heads); err != nil {
			return nil, nil, fmt.Errorf("decode expense allocation: %w", err)
		}
		delete(raw, ExpenseKey)
	}

	groups := make(map[string]WireMaterialGroup, len(raw))
	for name, msg := range raw {
		var w WireMaterialGroup
		if err := json.Unmarshal(msg, &w); err != nil {
			return nil, nil, fmt.Errorf("decode material row %q: %w", name, err)
		}
		groups[name] = w
	}

	names := orderedKeys(groups, func(w WireMaterialGroup) *int { return w.Index })
	rows := make([]MaterialGroupRow, 0, len(names))
	for _, name := range names {
		w := groups[name]
		r := MaterialGroupRow{
			ID:             w.ID,
			Component:      name,
			Category:       w.Category,
			Unit:           w.Unit,
			Volume:         w.Volume,
			LabourRate:     w.LabourRate,
			LabourAmount:   w.LabourAmount,
			MaterialAmount: w.MaterialAmount,
			TotalAmount:    w.TotalAmount,
			Remarks:        w.Remarks,
			Materials:      make([]MaterialChildRow, len(w.Materials)),
		}
		if r.ID == "" {
			r.ID = NewRowID()
		}
		for j, m := range w.Materials {
			id := m.ID
			if id == "" {
				id = NewRowID()
			}
			r.Materials[j] = MaterialChildRow{
				ID:              id,
				Material:        m.Material,
				CatalogID:       m.CatalogID,
				ConsumptionRate: m.ConsumptionRate,
				MaterialQty:     m.MaterialQty,
				Wastage:         m.Wastage,
				TotalQty:        m.TotalQty,
				UOM:             m.UOM,
				MaterialRate:    m.MaterialRate,
				MaterialAmount:  m.MaterialAmount,
				Remarks:         m.Remarks,
				Manual:          m.Manual,
			}
		}
		rows = append(rows, r)
	}

	if heads == nil {
		return rows, nil, nil
	}
	exp := &ExpenseSummary{DirectTotal: DirectTotal(rows)}
	for _, head := range orderedKeys(heads, func(w WireExpense) *int { return w.Index }) {
		h := heads[head]
		exp.Rows = append(exp.Rows, ExpenseRow{Head: head, Percent: h.Percent, Amount: h.Amount})
	}
	exp.resum()
	return rows, exp, nil
}

// orderedKeys sorts map keys by stored index; keys without one come last
// in name order.
func orderedKeys[T any](m map[string]T, index func(T) *int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := index(m[keys[i]]), index(m[keys[j]])
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}
