package collections

import (
	"context"
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
)

// SampleEstimationTitle is the title of the estimation Seed creates.
const SampleEstimationTitle = "Sample Residence G+1"

type sampleRow struct {
	label       string
	no, l, w, h float64
	deduction   bool
}

// sampleMeasurements are the measurement sheets of the sample estimation,
// per floor and component.
var sampleMeasurements = map[string]map[string][]sampleRow{
	"Foundation": {
		"Earth Work Excavation": {
			{label: "Footings F1", no: 8, l: 1.8, w: 1.8, h: 1.5},
			{label: "Footings F2", no: 4, l: 2.1, w: 2.1, h: 1.5},
		},
		"PCC Below Footing": {
			{label: "F1", no: 8, l: 1.8, w: 1.8, h: 0.1},
			{label: "F2", no: 4, l: 2.1, w: 2.1, h: 0.1},
		},
		"Footing Concrete": {
			{label: "F1", no: 8, l: 1.5, w: 1.5, h: 0.45},
			{label: "F2", no: 4, l: 1.8, w: 1.8, h: 0.5},
		},
		"Column Concrete Upto Plinth": {
			{label: "C1", no: 12, l: 0.3, w: 0.45, h: 1.5},
		},
	},
	"Ground Floor": {
		"Column Concrete": {
			{label: "C1", no: 12, l: 0.3, w: 0.45, h: 3.0},
		},
		"Slab Concrete": {
			{label: "Main slab", no: 1, l: 12, w: 9, h: 0.125},
			{label: "Staircase cut-out", no: 1, l: 3, w: 1.2, h: 0.125, deduction: true},
		},
		"Brickwork": {
			{label: "External walls", no: 1, l: 42, w: 0.23, h: 2.7},
			{label: "Openings", no: 6, l: 1.2, w: 0.23, h: 1.5, deduction: true},
		},
	},
}

// Seed fills empty reference tables with the stock mixtures, catalog,
// templates and allocations, and creates a sample estimation when there
// is none. It is safe to call on every startup.
func Seed(app *pocketbase.PocketBase) error {
	if err := seedReferenceTables(app); err != nil {
		return err
	}

	existing, err := app.FindAllRecords(services.EstimationsCollection)
	if err != nil {
		return fmt.Errorf("seed: could not query estimations: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}
	log.Println("seed: estimations collection is empty, inserting sample estimation")
	return seedSampleEstimation(app)
}

func seedReferenceTables(app *pocketbase.PocketBase) error {
	tables := []struct {
		name   string
		insert func(col *core.Collection) error
	}{
		{services.MixtureConfigsCollection, func(col *core.Collection) error {
			for i, m := range services.DefaultMixtures {
				r := core.NewRecord(col)
				r.Set("sort_order", i)
				r.Set("grade", m.Grade)
				r.Set("constituents", m.Constituents)
				if err := app.Save(r); err != nil {
					return fmt.Errorf("mixture %q: %w", m.Grade, err)
				}
			}
			return nil
		}},
		{services.MaterialCatalogCollection, func(col *core.Collection) error {
			for _, m := range services.DefaultCatalog {
				r := core.NewRecord(col)
				r.Set("code", m.ID)
				r.Set("material", m.Material)
				r.Set("category_name", m.CategoryName)
				r.Set("unit", m.Unit)
				r.Set("default_rate", m.DefaultRate)
				r.Set("wastage", m.Wastage)
				if err := app.Save(r); err != nil {
					return fmt.Errorf("material %q: %w", m.Material, err)
				}
			}
			return nil
		}},
		{services.ComponentTemplatesCollection, func(col *core.Collection) error {
			for _, cat := range services.FloorCategories {
				for i, g := range services.DefaultTemplates[cat] {
					r := core.NewRecord(col)
					r.Set("floor_category", string(cat))
					r.Set("sort_order", i)
					r.Set("name", g.Name)
					r.Set("unit", g.Unit)
					r.Set("mixture", g.Mixture)
					r.Set("labour_rate", g.LabourRate)
					r.Set("category", g.Category)
					r.Set("instruction", g.Instruction)
					if err := app.Save(r); err != nil {
						return fmt.Errorf("template %q: %w", g.Name, err)
					}
				}
			}
			return nil
		}},
		{services.ExpenseAllocationsCollection, func(col *core.Collection) error {
			for _, cat := range services.FloorCategories {
				for i, a := range services.DefaultAllocations[cat] {
					r := core.NewRecord(col)
					r.Set("floor_category", string(cat))
					r.Set("sort_order", i)
					r.Set("head", a.Head)
					r.Set("allocation_percent", a.Percent)
					if err := app.Save(r); err != nil {
						return fmt.Errorf("allocation %q: %w", a.Head, err)
					}
				}
			}
			return nil
		}},
	}

	for _, t := range tables {
		col, err := app.FindCollectionByNameOrId(t.name)
		if err != nil {
			return fmt.Errorf("seed: could not find %s collection: %w", t.name, err)
		}
		total, err := app.CountRecords(col)
		if err != nil {
			return fmt.Errorf("seed: could not count %s: %w", t.name, err)
		}
		if total > 0 {
			continue
		}
		if err := t.insert(col); err != nil {
			return fmt.Errorf("seed %s: %w", t.name, err)
		}
		log.Printf("seed: filled %s", t.name)
	}
	return nil
}

func seedSampleEstimation(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId(services.EstimationsCollection)
	if err != nil {
		return fmt.Errorf("seed: could not find estimations collection: %w", err)
	}
	est := core.NewRecord(col)
	est.Set("title", SampleEstimationTitle)
	est.Set("reference_number", "EST-0001")
	if err := app.Save(est); err != nil {
		return fmt.Errorf("seed: create estimation: %w", err)
	}

	store := services.NewPocketBaseStore(app)
	ctrl, err := store.NewEstimationSession(0)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	ctx := context.Background()
	if err := ctrl.LoadInitial(ctx, est.Id); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	for _, floor := range []string{"Foundation", "Ground Floor"} {
		if err := ctrl.Select(floor); err != nil {
			return fmt.Errorf("seed: select %q: %w", floor, err)
		}
		view, err := ctrl.View()
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		for _, g := range view.Quantity {
			sheet := sampleMeasurements[floor][g.Name]
			if len(sheet) == 0 {
				continue
			}
			rows := make([]services.DetailRow, len(sheet))
			for i, m := range sheet {
				rows[i] = services.DetailRow{
					ChildComponent: m.label,
					No:             m.no,
					Length:         m.l,
					Width:          m.w,
					Height:         m.h,
					IsDeduction:    m.deduction,
				}
				rows[i].Recalculate()
			}
			if err := ctrl.InsertDetailRows(g.ID, len(g.Rows), rows); err != nil {
				return fmt.Errorf("seed: rows for %q: %w", g.Name, err)
			}
		}
	}
	if err := ctrl.Select(""); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return ctrl.Save(ctx)
}
