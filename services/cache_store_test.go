package services

import (
	"reflect"
	"testing"
)

// testMixtures is a single-material recipe so amounts are easy to follow.
var testMixtures = []MixtureConfig{{
	Grade: "M20",
	Constituents: map[Constituent]ConstituentSpec{
		Cement: {Ratio: 1, DefaultRate: 6.0, Unit: "Bag", DisplayName: "Cement"},
	},
}}

func newTestStore() *CacheStore {
	src := DefaultSources()
	return NewCacheStore(src, testMixtures, src)
}

func slabGroup(qty float64) []ComponentGroup {
	return []ComponentGroup{{
		ID:         "slab",
		Name:       "Slab Concrete",
		Unit:       "Cum",
		Mixture:    "M20",
		LabourRate: 100,
		Rows:       []DetailRow{{ID: "r1", Quantity: qty}},
	}}
}

func TestCacheStore_LoadFloorSeedsTemplate(t *testing.T) {
	s := newTestStore()
	snap, err := s.LoadFloor("Foundation")
	if err != nil {
		t.Fatalf("LoadFloor: %v", err)
	}
	if len(snap.Quantity) != len(DefaultTemplates[CategoryFoundation]) {
		t.Errorf("expected %d template components, got %d", len(DefaultTemplates[CategoryFoundation]), len(snap.Quantity))
	}
	if snap.Material != nil {
		t.Errorf("material grid must be generated lazily, got %d rows", len(snap.Material))
	}

	again, _ := s.LoadFloor("Foundation")
	if again.Quantity[0].ID != snap.Quantity[0].ID {
		t.Error("second load must hit the cache")
	}

	if _, err := s.LoadFloor(""); !IsValidation(err) {
		t.Errorf("expected ValidationError for empty floor name, got %v", err)
	}
}

func TestCacheStore_MaterialRowsGeneratedLazily(t *testing.T) {
	s := newTestStore()
	if _, err := s.LoadFloor("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveQuantity("Ground Floor", slabGroup(10)); err != nil {
		t.Fatal(err)
	}
	rows, err := s.MaterialRows("Ground Floor")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Volume != 10 || rows[0].MaterialAmount != 60 {
		t.Fatalf("unexpected material rows %+v", rows)
	}
}

func TestCacheStore_PropagationPreservesUserRate(t *testing.T) {
	s := newTestStore()
	floor := "Ground Floor"
	if err := s.SaveQuantity(floor, slabGroup(10)); err != nil {
		t.Fatal(err)
	}
	rows, _ := s.MaterialRows(floor)
	rows[0].Materials[0].MaterialRate = 7.5
	rows[0].LabourRate = 150
	rows[0].Remarks = "checked"
	RecalculateGroup(&rows[0])
	if err := s.SaveMaterial(floor, rows); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveQuantity(floor, slabGroup(20)); err != nil {
		t.Fatal(err)
	}
	got, _ := s.MaterialRows(floor)
	child := got[0].Materials[0]
	if child.MaterialRate != 7.5 {
		t.Fatalf("user rate lost: %v", child.MaterialRate)
	}
	if child.MaterialQty != 20 || child.TotalQty != 20 || child.MaterialAmount != 150 {
		t.Errorf("expected qty 20 priced at 7.5, got %+v", child)
	}
	if got[0].LabourAmount != 3000 || got[0].Remarks != "checked" {
		t.Errorf("labour rate or remarks not preserved: %+v", got[0])
	}
	if got[0].TotalAmount != 3150 {
		t.Errorf("total = %v, want 3150", got[0].TotalAmount)
	}
}

func TestCacheStore_PropagationAppendsNewAndKeepsStale(t *testing.T) {
	s := newTestStore()
	floor := "Ground Floor"
	if err := s.SaveQuantity(floor, slabGroup(10)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MaterialRows(floor); err != nil {
		t.Fatal(err)
	}

	groups := slabGroup(0)
	groups = append(groups, ComponentGroup{ID: "plaster", Name: "Plastering", LabourRate: 10, Rows: []DetailRow{{Quantity: 5}}})
	if err := s.SaveQuantity(floor, groups); err != nil {
		t.Fatal(err)
	}
	rows, _ := s.MaterialRows(floor)
	if len(rows) != 2 {
		t.Fatalf("expected stale slab row plus new plaster row, got %+v", rows)
	}
	if rows[0].Component != "Slab Concrete" || rows[0].Volume != 0 {
		t.Errorf("stale row should stay with volume 0: %+v", rows[0])
	}
	if rows[1].Component != "Plastering" || rows[1].TotalAmount != 50 {
		t.Errorf("unexpected new row %+v", rows[1])
	}
}

func TestCacheStore_FatalStateErrors(t *testing.T) {
	s := newTestStore()
	if err := s.PropagateQuantityChange("Nowhere"); !IsFatalState(err) {
		t.Errorf("PropagateQuantityChange: expected FatalStateError, got %v", err)
	}
	if err := s.SaveMaterial("Nowhere", nil); !IsFatalState(err) {
		t.Errorf("SaveMaterial: expected FatalStateError, got %v", err)
	}
	if _, err := s.MaterialRows("Nowhere"); !IsFatalState(err) {
		t.Errorf("MaterialRows: expected FatalStateError, got %v", err)
	}
	if _, err := s.SetPercent("Nowhere", 0, 5); !IsFatalState(err) {
		t.Errorf("SetPercent: expected FatalStateError, got %v", err)
	}
}

func TestCacheStore_CopyFloorIsolation(t *testing.T) {
	s := newTestStore()
	if err := s.SaveQuantity("Foundation", slabGroup(10)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.MaterialRows("Foundation"); err != nil {
		t.Fatal(err)
	}
	if err := s.CopyFloor("Foundation", "Basement"); err != nil {
		t.Fatal(err)
	}

	basement, _, _ := s.Snapshot("Basement")
	basement.Quantity[0].Rows[0].Quantity = 99.0
	basement.Material[0].Materials[0].MaterialRate = 1000
	if err := s.SaveQuantity("Basement", basement.Quantity); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveMaterial("Basement", basement.Material); err != nil {
		t.Fatal(err)
	}

	foundation, _, _ := s.Snapshot("Foundation")
	if foundation.Quantity[0].Quantity != 10 || foundation.Quantity[0].Rows[0].Quantity != 10.0 {
		t.Errorf("foundation quantity changed: %+v", foundation.Quantity[0])
	}
	if foundation.Material[0].Materials[0].MaterialRate != 6.0 {
		t.Errorf("foundation material changed: %+v", foundation.Material[0].Materials[0])
	}
}

func TestCacheStore_CopyFloorReallocatesWithTargetCategory(t *testing.T) {
	s := newTestStore()
	if err := s.SaveQuantity("Foundation", slabGroup(10)); err != nil {
		t.Fatal(err)
	}
	if err := s.CopyFloor("Foundation", "Basement 1"); err != nil {
		t.Fatal(err)
	}
	snap, _, _ := s.Snapshot("Basement 1")
	if snap.Expense == nil || len(snap.Expense.Rows) != len(DefaultAllocations[CategoryBasement]) {
		t.Fatalf("expected the basement allocation table, got %+v", snap.Expense)
	}
	if err := s.CopyFloor("Nowhere", "Basement 1"); !IsValidation(err) {
		t.Errorf("expected ValidationError copying an empty floor, got %v", err)
	}
}

func TestCacheStore_SnapshotsAreCopies(t *testing.T) {
	s := newTestStore()
	if err := s.SaveQuantity("Ground Floor", slabGroup(10)); err != nil {
		t.Fatal(err)
	}
	snap, ok, err := s.Snapshot("Ground Floor")
	if !ok || err != nil {
		t.Fatalf("Snapshot: %v %v", ok, err)
	}
	snap.Quantity[0].Name = "Mutated"
	again, _, _ := s.Snapshot("Ground Floor")
	if again.Quantity[0].Name != "Slab Concrete" {
		t.Error("caller mutation leaked into the cache")
	}
}

func TestCacheStore_PersistedAllocationReappliedOnChange(t *testing.T) {
	s := newTestStore()
	persisted := &ExpenseSummary{
		Rows:        []ExpenseRow{{Head: "Custom Overhead", Percent: 20, Amount: 999}},
		DirectTotal: 5000,
	}
	err := s.Replace(
		map[string][]ComponentGroup{"Ground Floor": slabGroup(10)},
		map[string]FloorMaterials{"Ground Floor": {Rows: DeriveFloor(slabGroup(10), testMixtures), Expense: persisted}},
	)
	if err != nil {
		t.Fatal(err)
	}

	snap, _, _ := s.Snapshot("Ground Floor")
	if !snap.Expense.Persisted || snap.Expense.Rows[0].Amount != 999 {
		t.Fatalf("persisted allocation must be used as-is, got %+v", snap.Expense)
	}

	if err := s.SaveQuantity("Ground Floor", slabGroup(20)); err != nil {
		t.Fatal(err)
	}
	snap, _, _ = s.Snapshot("Ground Floor")
	want := []ExpenseRow{{Head: "Custom Overhead", Percent: 20, Amount: Round2(snap.Totals.Direct * 0.2)}}
	if !reflect.DeepEqual(snap.Expense.Rows, want) {
		t.Errorf("expected persisted percentages on the new direct total, got %+v", snap.Expense.Rows)
	}
}

func TestCacheStore_SetPercent(t *testing.T) {
	s := newTestStore()
	if err := s.SaveQuantity("Ground Floor", slabGroup(10)); err != nil {
		t.Fatal(err)
	}
	exp, err := s.SetPercent("Ground Floor", 0, 50)
	if err != nil {
		t.Fatal(err)
	}
	if exp.Rows[0].Amount != Round2(exp.DirectTotal*0.5) {
		t.Errorf("unexpected amount %v", exp.Rows[0].Amount)
	}
	snap, _, _ := s.Snapshot("Ground Floor")
	if snap.Expense.Rows[0].Percent != 50 {
		t.Errorf("percent not stored: %+v", snap.Expense.Rows[0])
	}
}

func TestCacheStore_SaveMaterialReallocates(t *testing.T) {
	s := newTestStore()
	if err := s.SaveQuantity("Ground Floor", slabGroup(10)); err != nil {
		t.Fatal(err)
	}
	before, _, _ := s.Snapshot("Ground Floor")

	rows, _ := s.MaterialRows("Ground Floor")
	rows[0].LabourRate = 200
	RecalculateGroup(&rows[0])
	if err := s.SaveMaterial("Ground Floor", rows); err != nil {
		t.Fatal(err)
	}

	after, _, _ := s.Snapshot("Ground Floor")
	if after.Expense.DirectTotal != DirectTotal(rows) {
		t.Errorf("allocation direct total = %v, want %v", after.Expense.DirectTotal, DirectTotal(rows))
	}
	if after.Totals.Indirect <= before.Totals.Indirect {
		t.Errorf("indirect total did not follow the rate edit: %v -> %v", before.Totals.Indirect, after.Totals.Indirect)
	}
}

func TestCacheStore_ReplaceAllocatesMissingExpense(t *testing.T) {
	s := newTestStore()
	rows := DeriveFloor(slabGroup(10), testMixtures)
	err := s.Replace(
		map[string][]ComponentGroup{"Ground Floor": slabGroup(10)},
		map[string]FloorMaterials{"Ground Floor": {Rows: rows}},
	)
	if err != nil {
		t.Fatal(err)
	}

	snap, _, _ := s.Snapshot("Ground Floor")
	if snap.Expense == nil {
		t.Fatal("expected an allocation for material loaded without one")
	}
	if snap.Expense.Persisted {
		t.Error("derived allocation must not be marked persisted")
	}
	if len(snap.Expense.Rows) != len(DefaultAllocations[CategoryFloors]) {
		t.Errorf("heads = %d, want %d", len(snap.Expense.Rows), len(DefaultAllocations[CategoryFloors]))
	}
	if snap.Expense.DirectTotal != DirectTotal(rows) || snap.Totals.Grand <= snap.Totals.Direct {
		t.Errorf("unexpected totals %+v", snap.Totals)
	}
	if _, err := s.SetPercent("Ground Floor", 0, 12); err != nil {
		t.Errorf("SetPercent: %v", err)
	}
}

func TestSortFloors(t *testing.T) {
	names := []string{"Ground Floor", "Basement 2", "First Floor", "Foundation", "Basement 1"}
	SortFloors(names)
	want := []string{"Foundation", "Basement 1", "Basement 2", "First Floor", "Ground Floor"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("SortFloors() = %v, want %v", names, want)
	}
}
