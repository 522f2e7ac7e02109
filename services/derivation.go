package services

// MaterialChildRow is one material consumed by a component.
type MaterialChildRow struct {
	ID              string  `json:"id"`
	Material        string  `json:"material"`
	CatalogID       string  `json:"catalogId"`
	ConsumptionRate float64 `json:"consumptionRate"`
	MaterialQty     float64 `json:"materialQty"`
	Wastage         float64 `json:"wastage"`
	TotalQty        float64 `json:"totalQty"`
	UOM             string  `json:"uom"`
	MaterialRate    float64 `json:"materialRate"`
	MaterialAmount  float64 `json:"materialAmount"`
	Remarks         string  `json:"remarks"`
	Manual          bool    `json:"manual"`
}

// MaterialGroupRow is the cost breakdown of one component with a positive
// quantity. Volume is a snapshot of the component's aggregated quantity.
type MaterialGroupRow struct {
	ID             string             `json:"id"`
	Component      string             `json:"component"`
	Category       string             `json:"category"`
	Unit           string             `json:"unit"`
	Volume         float64            `json:"volume"`
	LabourRate     float64            `json:"labourRate"`
	LabourAmount   float64            `json:"labourAmount"`
	MaterialAmount float64            `json:"materialAmount"`
	TotalAmount    float64            `json:"totalAmount"`
	Remarks        string             `json:"remarks"`
	Materials      []MaterialChildRow `json:"materials"`
}

// Derive produces the material breakdown of a component, or nil when its
// quantity is not positive. A mixture that matches no recipe silently
// takes the labour-only path.
func Derive(g ComponentGroup, configs []MixtureConfig) *MaterialGroupRow {
	volume := Round2(g.Quantity)
	if volume <= 0 {
		return nil
	}

	row := &MaterialGroupRow{
		ID:         g.ID,
		Component:  g.Name,
		Category:   g.Category,
		Unit:       g.Unit,
		Volume:     volume,
		LabourRate: g.LabourRate,
	}

	if cfg, ok := MatchMixture(g.Mixture, configs); ok {
		for _, c := range Constituents {
			spec, ok := cfg.Constituents[c]
			if !ok || spec.Ratio <= 0 {
				continue
			}
			name := spec.DisplayName
			if name == "" {
				name = string(c)
			}
			child := MaterialChildRow{
				ID:              g.ID + ":" + string(c),
				Material:        name,
				CatalogID:       spec.CatalogID,
				ConsumptionRate: spec.Ratio,
				Wastage:         spec.Wastage,
				UOM:             spec.Unit,
				MaterialRate:    spec.DefaultRate,
			}
			RecalculateChild(&child, volume)
			row.Materials = append(row.Materials, child)
			row.MaterialAmount += child.MaterialAmount
		}
		row.MaterialAmount = Round2(row.MaterialAmount)
	}

	row.LabourAmount = Round2(volume * g.LabourRate)
	row.TotalAmount = Round2(row.MaterialAmount + row.LabourAmount)
	return row
}

// DeriveFloor derives the material grid of a whole floor, skipping
// components without a positive quantity.
func DeriveFloor(groups []ComponentGroup, configs []MixtureConfig) []MaterialGroupRow {
	rows := make([]MaterialGroupRow, 0, len(groups))
	for _, g := range groups {
		if r := Derive(g, configs); r != nil {
			rows = append(rows, *r)
		}
	}
	return rows
}

// RecalculateChild recomputes the quantities and amount of a material row
// from its own ratio, wastage and rate.
func RecalculateChild(c *MaterialChildRow, volume float64) {
	c.MaterialQty = Round2(volume * c.ConsumptionRate)
	c.TotalQty = Round2(c.MaterialQty * (1 + c.Wastage/100))
	c.MaterialAmount = Round2(c.TotalQty * c.MaterialRate)
}

// SumMaterials adds up the amounts of the child rows.
func SumMaterials(children []MaterialChildRow) float64 {
	var sum float64
	for _, c := range children {
		sum += c.MaterialAmount
	}
	return Round2(sum)
}

// RecalculateGroup refreshes every child and the group totals after a
// manual edit to the material grid. A row whose last material was removed
// drops to labour only.
func RecalculateGroup(r *MaterialGroupRow) {
	for i := range r.Materials {
		RecalculateChild(&r.Materials[i], r.Volume)
	}
	r.MaterialAmount = SumMaterials(r.Materials)
	r.LabourAmount = Round2(r.Volume * r.LabourRate)
	r.TotalAmount = Round2(r.MaterialAmount + r.LabourAmount)
}

// NewCatalogChild builds a manually added material row priced from the
// material catalog.
func NewCatalogChild(m CatalogMaterial, consumptionRate, volume float64) MaterialChildRow {
	c := MaterialChildRow{
		ID:              NewRowID(),
		Material:        m.Material,
		CatalogID:       m.ID,
		ConsumptionRate: consumptionRate,
		Wastage:         m.Wastage,
		UOM:             m.Unit,
		MaterialRate:    m.DefaultRate,
		Manual:          true,
	}
	RecalculateChild(&c, volume)
	return c
}

// FindMaterialRow returns the position of the row for component, or -1.
func FindMaterialRow(rows []MaterialGroupRow, component string) int {
	for i := range rows {
		if rows[i].Component == component {
			return i
		}
	}
	return -1
}

// DirectTotal sums the total amount of every material row.
func DirectTotal(rows []MaterialGroupRow) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.TotalAmount
	}
	return Round2(sum)
}
