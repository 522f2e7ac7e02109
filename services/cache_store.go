package services

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/tiendc/go-deepcopy"
)

// FloorSnapshot is a by-value view of one floor's cached layers.
// Material is nil until the material grid has been generated.
type FloorSnapshot struct {
	Floor    string             `json:"floor"`
	Category FloorCategory      `json:"category"`
	Quantity []ComponentGroup   `json:"quantity"`
	Material []MaterialGroupRow `json:"material"`
	Expense  *ExpenseSummary    `json:"expense"`
	Totals   FloorTotals        `json:"totals"`
}

type floorEntry struct {
	quantity []ComponentGroup
	material []MaterialGroupRow
	expense  *ExpenseSummary
}

// CacheStore owns the per-floor quantity, material and expense caches.
// Every mutation runs to completion under the store lock and readers only
// ever receive copies, so no half-updated floor is observable.
type CacheStore struct {
	mu          sync.RWMutex
	floors      map[string]*floorEntry
	templates   TemplateSource
	mixtures    []MixtureConfig
	allocations AllocationSource
}

// NewCacheStore creates an empty store.
func NewCacheStore(templates TemplateSource, mixtures []MixtureConfig, allocations AllocationSource) *CacheStore {
	return &CacheStore{
		floors:      make(map[string]*floorEntry),
		templates:   templates,
		mixtures:    mixtures,
		allocations: allocations,
	}
}

// LoadFloor returns the cached floor, seeding the quantity grid from the
// default component template on first access. The material grid is left
// to be generated lazily.
func (s *CacheStore) LoadFloor(name string) (FloorSnapshot, error) {
	if name == "" {
		return FloorSnapshot{}, &ValidationError{Field: "floor", Message: "floor name is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.floors[name]
	if !ok || e.quantity == nil {
		groups, err := s.templates.DefaultComponents(CategoryForFloor(name))
		if err != nil {
			return FloorSnapshot{}, fmt.Errorf("default components for %q: %w", name, err)
		}
		if groups == nil {
			groups = []ComponentGroup{}
		}
		ensureIDs(groups)
		reindexGroups(groups)
		AggregateGroups(groups)
		if !ok {
			e = &floorEntry{}
			s.floors[name] = e
		}
		e.quantity = groups
		log.Printf("cache_store: seeded floor %q with %d default components", name, len(groups))
	}
	return s.snapshotLocked(name, e)
}

// HasQuantity reports whether the floor has a non-empty quantity snapshot.
func (s *CacheStore) HasQuantity(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.floors[name]
	return ok && len(e.quantity) > 0
}

// Snapshot returns the floor without seeding or deriving anything.
func (s *CacheStore) Snapshot(name string) (FloorSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.floors[name]
	if !ok {
		return FloorSnapshot{}, false, nil
	}
	snap, err := s.snapshotLocked(name, e)
	return snap, true, err
}

// SaveQuantity replaces the floor's quantity snapshot, re-aggregates every
// group and propagates the change into the material cache. It is the only
// entry point that re-derives material rows.
func (s *CacheStore) SaveQuantity(name string, groups []ComponentGroup) error {
	if name == "" {
		return &ValidationError{Field: "floor", Message: "floor name is required"}
	}
	cp, err := clone(groups)
	if err != nil {
		return fmt.Errorf("copy quantity rows: %w", err)
	}
	if cp == nil {
		cp = []ComponentGroup{}
	}
	ensureIDs(cp)
	reindexGroups(cp)
	AggregateGroups(cp)

	s.mu.Lock()
	e, ok := s.floors[name]
	if !ok {
		e = &floorEntry{}
		s.floors[name] = e
	}
	e.quantity = cp
	err = s.propagateLocked(name, e)
	s.mu.Unlock()
	return err
}

// SaveMaterial stores rows verbatim as the floor's material grid and
// re-allocates its expenses. Nothing is re-derived.
func (s *CacheStore) SaveMaterial(name string, rows []MaterialGroupRow) error {
	cp, err := clone(rows)
	if err != nil {
		return fmt.Errorf("copy material rows: %w", err)
	}
	if cp == nil {
		cp = []MaterialGroupRow{}
	}

	s.mu.Lock()
	e, ok := s.floors[name]
	if !ok {
		s.mu.Unlock()
		return &FatalStateError{Floor: name, Reason: "material saved before the floor was loaded"}
	}
	e.material = cp
	err = s.materialUpdatedLocked(name, e)
	s.mu.Unlock()
	return err
}

// PropagateQuantityChange pushes the floor's current quantities into its
// material cache. Existing rows keep their user-entered rates, wastage and
// remarks; new components are derived from scratch.
func (s *CacheStore) PropagateQuantityChange(name string) error {
	s.mu.Lock()
	e, ok := s.floors[name]
	if !ok || e.quantity == nil {
		s.mu.Unlock()
		return &FatalStateError{Floor: name, Reason: "quantity change propagated for a floor with no quantity snapshot"}
	}
	err := s.propagateLocked(name, e)
	s.mu.Unlock()
	return err
}

func (s *CacheStore) propagateLocked(name string, e *floorEntry) error {
	for _, g := range e.quantity {
		i := FindMaterialRow(e.material, g.Name)
		if i < 0 {
			if r := Derive(g, s.mixtures); r != nil {
				e.material = append(e.material, *r)
			}
			continue
		}

		r := &e.material[i]
		r.Volume = Round2(g.Quantity)
		r.LabourAmount = Round2(r.Volume * r.LabourRate)
		for j := range r.Materials {
			RecalculateChild(&r.Materials[j], r.Volume)
		}
		if _, ok := MatchMixture(g.Mixture, s.mixtures); ok {
			r.MaterialAmount = SumMaterials(r.Materials)
		}
		r.TotalAmount = Round2(r.MaterialAmount + r.LabourAmount)
	}
	if e.material == nil {
		e.material = []MaterialGroupRow{}
	}
	return s.materialUpdatedLocked(name, e)
}

// materialUpdatedLocked handles the material-updated event: every change to
// the material cache ends here and re-allocates indirect expenses. A loaded allocation keeps its percentages but is applied to
// the new direct total from here on.
func (s *CacheStore) materialUpdatedLocked(name string, e *floorEntry) error {
	direct := DirectTotal(e.material)
	if e.expense != nil {
		next := Allocate(direct, e.expense.Table())
		e.expense = &next
		return nil
	}
	next, err := AllocateForCategory(CategoryForFloor(name), direct, s.allocations)
	if err != nil {
		return err
	}
	e.expense = &next
	return nil
}

// MaterialRows returns the floor's material grid, deriving it from the
// quantity grid the first time it is asked for.
func (s *CacheStore) MaterialRows(name string) ([]MaterialGroupRow, error) {
	s.mu.Lock()
	e, ok := s.floors[name]
	if !ok || e.quantity == nil {
		s.mu.Unlock()
		return nil, &FatalStateError{Floor: name, Reason: "material requested before the floor was loaded"}
	}
	if e.material == nil {
		e.material = DeriveFloor(e.quantity, s.mixtures)
		if err := s.materialUpdatedLocked(name, e); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	rows, err := clone(e.material)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("copy material rows: %w", err)
	}
	return rows, nil
}

// SetPercent edits one allocation percentage of the floor's expense table.
func (s *CacheStore) SetPercent(name string, index int, percent float64) (ExpenseSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.floors[name]
	if !ok || e.expense == nil {
		return ExpenseSummary{}, &FatalStateError{Floor: name, Reason: "expense edited before it was allocated"}
	}
	if err := e.expense.SetPercent(index, percent); err != nil {
		return ExpenseSummary{}, err
	}
	return clone(*e.expense)
}

// CopyFloor deep-clones the quantity and material layers of source into
// target, replacing whatever target held. The target's expenses are
// re-allocated with its own category table.
func (s *CacheStore) CopyFloor(source, target string) error {
	s.mu.Lock()
	src, ok := s.floors[source]
	if !ok || len(src.quantity) == 0 {
		s.mu.Unlock()
		return &ValidationError{Field: "source", Message: fmt.Sprintf("floor %q has no quantity data to copy", source)}
	}
	quantity, err := clone(src.quantity)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("copy quantity rows: %w", err)
	}
	material, err := clone(src.material)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("copy material rows: %w", err)
	}
	e := &floorEntry{quantity: quantity, material: material}
	s.floors[target] = e
	if e.material != nil {
		if err := s.materialUpdatedLocked(target, e); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()
	return nil
}

// Replace swaps the whole cache for freshly loaded data. Floors that
// arrive with an expense allocation keep it as persisted; floors with
// material rows but no allocation get one from their category table.
func (s *CacheStore) Replace(quantity map[string][]ComponentGroup, material map[string]FloorMaterials) error {
	next := make(map[string]*floorEntry, len(quantity))
	for name, groups := range quantity {
		cp, err := clone(groups)
		if err != nil {
			return fmt.Errorf("copy quantity rows of %q: %w", name, err)
		}
		ensureIDs(cp)
		reindexGroups(cp)
		AggregateGroups(cp)
		next[name] = &floorEntry{quantity: cp}
	}
	for name, fm := range material {
		e, ok := next[name]
		if !ok {
			e = &floorEntry{}
			next[name] = e
		}
		rows, err := clone(fm.Rows)
		if err != nil {
			return fmt.Errorf("copy material rows of %q: %w", name, err)
		}
		e.material = rows
		if fm.Expense != nil {
			exp, err := clone(*fm.Expense)
			if err != nil {
				return fmt.Errorf("copy expense of %q: %w", name, err)
			}
			exp.Persisted = true
			e.expense = &exp
			continue
		}
		exp, err := AllocateForCategory(CategoryForFloor(name), DirectTotal(rows), s.allocations)
		if err != nil {
			return fmt.Errorf("allocate expenses of %q: %w", name, err)
		}
		e.expense = &exp
	}

	s.mu.Lock()
	s.floors = next
	s.mu.Unlock()
	return nil
}

// Reset drops every cached floor.
func (s *CacheStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.floors = make(map[string]*floorEntry)
}

// Floors lists the cached floors, foundation first, then basements, then
// the rest, alphabetically within a category.
func (s *CacheStore) Floors() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.floors))
	for n := range s.floors {
		names = append(names, n)
	}
	s.mu.RUnlock()
	SortFloors(names)
	return names
}

// QuantitySnapshot copies every floor's quantity grid.
func (s *CacheStore) QuantitySnapshot() (map[string][]ComponentGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]ComponentGroup, len(s.floors))
	for name, e := range s.floors {
		if e.quantity == nil {
			continue
		}
		cp, err := clone(e.quantity)
		if err != nil {
			return nil, fmt.Errorf("copy quantity rows of %q: %w", name, err)
		}
		out[name] = cp
	}
	return out, nil
}

// MaterialSnapshot copies every floor's material grid and allocation.
func (s *CacheStore) MaterialSnapshot() (map[string]FloorMaterials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]FloorMaterials, len(s.floors))
	for name, e := range s.floors {
		if e.material == nil {
			continue
		}
		rows, err := clone(e.material)
		if err != nil {
			return nil, fmt.Errorf("copy material rows of %q: %w", name, err)
		}
		fm := FloorMaterials{Rows: rows}
		if e.expense != nil {
			exp, err := clone(*e.expense)
			if err != nil {
				return nil, fmt.Errorf("copy expense of %q: %w", name, err)
			}
			fm.Expense = &exp
		}
		out[name] = fm
	}
	return out, nil
}

func (s *CacheStore) snapshotLocked(name string, e *floorEntry) (FloorSnapshot, error) {
	snap := FloorSnapshot{Floor: name, Category: CategoryForFloor(name)}
	var err error
	if snap.Quantity, err = clone(e.quantity); err != nil {
		return FloorSnapshot{}, fmt.Errorf("copy quantity rows: %w", err)
	}
	if snap.Material, err = clone(e.material); err != nil {
		return FloorSnapshot{}, fmt.Errorf("copy material rows: %w", err)
	}
	if e.expense != nil {
		exp, err := clone(*e.expense)
		if err != nil {
			return FloorSnapshot{}, fmt.Errorf("copy expense: %w", err)
		}
		snap.Expense = &exp
	}
	snap.Totals = ComputeFloorTotals(snap.Material, snap.Expense)
	return snap, nil
}

// SortFloors orders floor names by category, then alphabetically.
func SortFloors(names []string) {
	rank := map[FloorCategory]int{CategoryFoundation: 0, CategoryBasement: 1, CategoryFloors: 2}
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := rank[CategoryForFloor(names[i])], rank[CategoryForFloor(names[j])]
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}

func clone[T any](src T) (T, error) {
	var dst T
	if err := deepcopy.Copy(&dst, src); err != nil {
		return dst, err
	}
	return dst, nil
}
