package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Collection names used by PocketBaseStore.
const (
	EstimationsCollection        = "estimations"
	FloorQuantitiesCollection    = "floor_quantities"
	FloorMaterialsCollection     = "floor_materials"
	MixtureConfigsCollection     = "mixture_configs"
	MaterialCatalogCollection    = "material_catalog"
	ComponentTemplatesCollection = "component_templates"
	ExpenseAllocationsCollection = "expense_allocations"
)

// PocketBaseStore persists estimations in PocketBase and serves the
// reference tables (templates, recipes, catalog, allocations) from it.
type PocketBaseStore struct {
	app core.App
}

// NewPocketBaseStore wraps app.
func NewPocketBaseStore(app core.App) *PocketBaseStore {
	return &PocketBaseStore{app: app}
}

func recordJSON(r *core.Record, field string) []byte {
	switch v := r.Get(field).(type) {
	case types.JSONRaw:
		return v
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}

func (s *PocketBaseStore) floorRecords(ctx context.Context, collection, estimationID string) ([]*core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.app.FindRecordById(EstimationsCollection, estimationID); err != nil {
		return nil, &NotFoundError{Kind: "estimation", Name: estimationID}
	}
	records, err := s.app.FindRecordsByFilter(collection,
		"estimation = {:estimation}", "floor", 0, 0,
		map[string]any{"estimation": estimationID},
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return records, nil
}

// LoadFloorData implements Remote.
func (s *PocketBaseStore) LoadFloorData(ctx context.Context, estimationID string) (map[string][]ComponentGroup, error) {
	records, err := s.floorRecords(ctx, FloorQuantitiesCollection, estimationID)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]ComponentGroup, len(records))
	for _, r := range records {
		groups, err := UnmarshalQuantity(recordJSON(r, "data"))
		if err != nil {
			return nil, fmt.Errorf("floor %q: %w", r.GetString("floor"), err)
		}
		out[r.GetString("floor")] = groups
	}
	return out, nil
}

// LoadMaterialData implements Remote.
func (s *PocketBaseStore) LoadMaterialData(ctx context.Context, estimationID string) (map[string]FloorMaterials, error) {
	records, err := s.floorRecords(ctx, FloorMaterialsCollection, estimationID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]FloorMaterials, len(records))
	for _, r := range records {
		rows, expense, err := UnmarshalMaterial(recordJSON(r, "data"))
		if err != nil {
			return nil, fmt.Errorf("floor %q: %w", r.GetString("floor"), err)
		}
		out[r.GetString("floor")] = FloorMaterials{Rows: rows, Expense: expense}
	}
	return out, nil
}

// SaveAll implements Remote. Every floor document of the estimation is
// replaced in a single transaction; floors missing from the snapshots are
// removed.
func (s *PocketBaseStore) SaveAll(ctx context.Context, estimationID string, quantity map[string][]ComponentGroup, material map[string]FloorMaterials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.app.FindRecordById(EstimationsCollection, estimationID); err != nil {
		return &NotFoundError{Kind: "estimation", Name: estimationID}
	}

	quantityDocs := make(map[string][]byte, len(quantity))
	for floor, groups := range quantity {
		b, err := MarshalQuantity(groups)
		if err != nil {
			return fmt.Errorf("floor %q: %w", floor, err)
		}
		quantityDocs[floor] = b
	}
	materialDocs := make(map[string][]byte, len(material))
	for floor, fm := range material {
		b, err := MarshalMaterial(fm.Rows, fm.Expense)
		if err != nil {
			return fmt.Errorf("floor %q: %w", floor, err)
		}
		materialDocs[floor] = b
	}

	err := s.app.RunInTransaction(func(txApp core.App) error {
		if err := replaceFloorDocs(txApp, FloorQuantitiesCollection, estimationID, quantityDocs); err != nil {
			return err
		}
		return replaceFloorDocs(txApp, FloorMaterialsCollection, estimationID, materialDocs)
	})
	if err != nil {
		return fmt.Errorf("save estimation %s: %w", estimationID, err)
	}
	log.Printf("pb_store: saved %d quantity and %d material floors for estimation %s",
		len(quantityDocs), len(materialDocs), estimationID)
	return nil
}

func replaceFloorDocs(app core.App, collection, estimationID string, docs map[string][]byte) error {
	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	existing, err := app.FindRecordsByFilter(col,
		"estimation = {:estimation}", "", 0, 0,
		map[string]any{"estimation": estimationID},
	)
	if err != nil {
		return fmt.Errorf("query %s: %w", collection, err)
	}

	byFloor := make(map[string]*core.Record, len(existing))
	for _, r := range existing {
		floor := r.GetString("floor")
		if _, keep := docs[floor]; !keep {
			if err := app.Delete(r); err != nil {
				return fmt.Errorf("delete %s %q: %w", collection, floor, err)
			}
			continue
		}
		byFloor[floor] = r
	}

	for floor, doc := range docs {
		r, ok := byFloor[floor]
		if !ok {
			r = core.NewRecord(col)
			r.Set("estimation", estimationID)
			r.Set("floor", floor)
		}
		r.Set("data", types.JSONRaw(doc))
		if err := app.Save(r); err != nil {
			return fmt.Errorf("save %s %q: %w", collection, floor, err)
		}
	}
	return nil
}

// DefaultComponents implements TemplateSource.
func (s *PocketBaseStore) DefaultComponents(category FloorCategory) ([]ComponentGroup, error) {
	records, err := s.app.FindRecordsByFilter(ComponentTemplatesCollection,
		"floor_category = {:category}", "sort_order", 0, 0,
		map[string]any{"category": string(category)},
	)
	if err != nil {
		return nil, fmt.Errorf("query component templates: %w", err)
	}
	groups := make([]ComponentGroup, len(records))
	for i, r := range records {
		groups[i] = ComponentGroup{
			ID:          NewRowID(),
			Index:       i,
			Name:        r.GetString("name"),
			Unit:        r.GetString("unit"),
			Mixture:     r.GetString("mixture"),
			LabourRate:  r.GetFloat("labour_rate"),
			Category:    r.GetString("category"),
			Instruction: r.GetString("instruction"),
		}
	}
	return groups, nil
}

// MixtureConfigs implements MixtureSource.
func (s *PocketBaseStore) MixtureConfigs() ([]MixtureConfig, error) {
	records, err := s.app.FindAllRecords(MixtureConfigsCollection)
	if err != nil {
		return nil, fmt.Errorf("query mixture configs: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].GetInt("sort_order") < records[j].GetInt("sort_order")
	})
	configs := make([]MixtureConfig, 0, len(records))
	for _, r := range records {
		cfg := MixtureConfig{Grade: r.GetString("grade")}
		if err := r.UnmarshalJSONField("constituents", &cfg.Constituents); err != nil {
			return nil, fmt.Errorf("mixture %q constituents: %w", cfg.Grade, err)
		}
		if err := validation.Validate(cfg); err != nil {
			return nil, fmt.Errorf("mixture %q: %w", cfg.Grade, validationFromOzzo(err))
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// MaterialCatalog implements MaterialCatalogSource.
func (s *PocketBaseStore) MaterialCatalog() ([]CatalogMaterial, error) {
	records, err := s.app.FindAllRecords(MaterialCatalogCollection)
	if err != nil {
		return nil, fmt.Errorf("query material catalog: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].GetString("material") < records[j].GetString("material")
	})
	out := make([]CatalogMaterial, len(records))
	for i, r := range records {
		out[i] = CatalogMaterial{
			ID:           r.GetString("code"),
			Material:     r.GetString("material"),
			CategoryName: r.GetString("category_name"),
			Unit:         r.GetString("unit"),
			DefaultRate:  r.GetFloat("default_rate"),
			Wastage:      r.GetFloat("wastage"),
		}
	}
	return out, nil
}

// AllocationTable implements AllocationSource.
func (s *PocketBaseStore) AllocationTable(category FloorCategory) ([]AllocationEntry, error) {
	records, err := s.app.FindRecordsByFilter(ExpenseAllocationsCollection,
		"floor_category = {:category}", "sort_order", 0, 0,
		map[string]any{"category": string(category)},
	)
	if err != nil {
		return nil, fmt.Errorf("query expense allocations: %w", err)
	}
	out := make([]AllocationEntry, len(records))
	for i, r := range records {
		out[i] = AllocationEntry{Head: r.GetString("head"), Percent: r.GetFloat("allocation_percent")}
	}
	return out, nil
}

// NewEstimationSession builds a cache store and controller for one
// estimation backed by this store. The caches are not loaded yet.
func (s *PocketBaseStore) NewEstimationSession(settleDelay time.Duration) (*Controller, error) {
	mixtures, err := s.MixtureConfigs()
	if err != nil {
		return nil, err
	}
	store := NewCacheStore(s, mixtures, s)
	return NewController(store, s, ControllerSources{Templates: s, Catalog: s}, settleDelay), nil
}
