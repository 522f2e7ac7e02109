package services

import "context"

// TemplateSource supplies the default components a new floor is seeded with.
type TemplateSource interface {
	DefaultComponents(category FloorCategory) ([]ComponentGroup, error)
}

// MixtureSource supplies the mixture recipes.
type MixtureSource interface {
	MixtureConfigs() ([]MixtureConfig, error)
}

// MaterialCatalogSource supplies material rates for manually added rows.
type MaterialCatalogSource interface {
	MaterialCatalog() ([]CatalogMaterial, error)
}

// AllocationSource supplies the indirect expense table of a floor category.
type AllocationSource interface {
	AllocationTable(category FloorCategory) ([]AllocationEntry, error)
}

// FloorMaterials is a floor's persisted material grid and expense allocation.
type FloorMaterials struct {
	Rows    []MaterialGroupRow
	Expense *ExpenseSummary
}

// Remote is the persisted estimation store.
type Remote interface {
	LoadFloorData(ctx context.Context, estimationID string) (map[string][]ComponentGroup, error)
	LoadMaterialData(ctx context.Context, estimationID string) (map[string]FloorMaterials, error)
	SaveAll(ctx context.Context, estimationID string, quantity map[string][]ComponentGroup, material map[string]FloorMaterials) error
}

// StaticSources serves templates, recipes, catalog and allocation tables
// from memory. DefaultSources returns one filled with the stock data.
type StaticSources struct {
	Templates   map[FloorCategory][]ComponentGroup
	Mixtures    []MixtureConfig
	Catalog     []CatalogMaterial
	Allocations map[FloorCategory][]AllocationEntry
}

// DefaultComponents implements TemplateSource. Each call returns fresh ids.
func (s *StaticSources) DefaultComponents(category FloorCategory) ([]ComponentGroup, error) {
	tmpl := s.Templates[category]
	out := make([]ComponentGroup, len(tmpl))
	for i, g := range tmpl {
		g.ID = NewRowID()
		g.Index = i
		g.Rows = nil
		out[i] = g
	}
	return out, nil
}

// MixtureConfigs implements MixtureSource.
func (s *StaticSources) MixtureConfigs() ([]MixtureConfig, error) {
	return s.Mixtures, nil
}

// MaterialCatalog implements MaterialCatalogSource.
func (s *StaticSources) MaterialCatalog() ([]CatalogMaterial, error) {
	return s.Catalog, nil
}

// AllocationTable implements AllocationSource.
func (s *StaticSources) AllocationTable(category FloorCategory) ([]AllocationEntry, error) {
	return s.Allocations[category], nil
}
