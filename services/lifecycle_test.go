package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeRemote struct {
	mu       sync.Mutex
	quantity map[string][]ComponentGroup
	material map[string]FloorMaterials
	loadErr  error
	saves    int
}

func (f *fakeRemote) LoadFloorData(ctx context.Context, id string) (map[string][]ComponentGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.quantity, nil
}

func (f *fakeRemote) LoadMaterialData(ctx context.Context, id string) (map[string]FloorMaterials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.material, nil
}

func (f *fakeRemote) SaveAll(ctx context.Context, id string, quantity map[string][]ComponentGroup, material map[string]FloorMaterials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quantity = quantity
	f.material = material
	f.saves++
	return nil
}

func newTestController(t *testing.T, remote Remote, settle time.Duration) (*Controller, *CacheStore) {
	t.Helper()

	src := DefaultSources()
	store := NewCacheStore(src, testMixtures, src)
	ctrl := NewController(store, remote, ControllerSources{Templates: src, Catalog: src}, settle)
	if err := ctrl.LoadInitial(context.Background(), "est1"); err != nil {
		t.Fatalf("LoadInitial: %v", err)
	}
	t.Cleanup(ctrl.Close)
	return ctrl, store
}

// measure adds a row with the given quantity to the named component of
// the current floor.
func measure(t *testing.T, ctrl *Controller, component string, qty float64) {
	t.Helper()

	view, err := ctrl.View()
	if err != nil {
		t.Fatal(err)
	}
	i := FindGroupByName(view.Quantity, component)
	if i < 0 {
		t.Fatalf("component %q not on floor", component)
	}
	row, err := ctrl.AddDetailRow(view.Quantity[i].ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := ctrl.EditDetailCell(view.Quantity[i].ID, row.ID, FieldQuantity, qty); err != nil {
		t.Fatal(err)
	}
}

func TestController_SelectStates(t *testing.T) {
	ctrl, _ := newTestController(t, nil, 0)

	if state, floor := ctrl.State(); state != NoFloorSelected || floor != "" {
		t.Fatalf("initial state = %v %q", state, floor)
	}
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	if state, floor := ctrl.State(); state != FloorReady || floor != "Ground Floor" {
		t.Errorf("after select = %v %q", state, floor)
	}
	if err := ctrl.Select(""); err != nil {
		t.Fatal(err)
	}
	if state, _ := ctrl.State(); state != NoFloorSelected {
		t.Errorf("after clearing = %v", state)
	}
	view, _ := ctrl.View()
	if view.Quantity != nil {
		t.Error("cleared selection must not display a grid")
	}
	if !contains(ctrl.Floors(), "Ground Floor") {
		t.Error("clearing the selection must keep the cache")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestController_SelectFlushesPreviousFloor(t *testing.T) {
	ctrl, store := newTestController(t, nil, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 12)

	view, _ := ctrl.View()
	row := view.Material[FindMaterialRow(view.Material, "Slab Concrete")]
	if err := ctrl.EditMaterialCell(row.ID, row.Materials[0].ID, FieldMaterialRate, 7.5); err != nil {
		t.Fatal(err)
	}

	if err := ctrl.Select("First Floor"); err != nil {
		t.Fatal(err)
	}
	snap, _, _ := store.Snapshot("Ground Floor")
	g := snap.Quantity[FindGroupByName(snap.Quantity, "Slab Concrete")]
	if g.Quantity != 12 {
		t.Errorf("quantity not flushed: %v", g.Quantity)
	}
	m := snap.Material[FindMaterialRow(snap.Material, "Slab Concrete")]
	if m.Materials[0].MaterialRate != 7.5 {
		t.Errorf("material edit not flushed: %+v", m.Materials[0])
	}

	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	back, _ := ctrl.View()
	if back.Quantity[FindGroupByName(back.Quantity, "Slab Concrete")].Quantity != 12 {
		t.Error("returning to the floor lost its quantity")
	}
}

func TestController_DebouncedRecompute(t *testing.T) {
	ctrl, store := newTestController(t, nil, time.Hour)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 5)

	if !ctrl.Pending() {
		t.Fatal("expected recompute to be pending")
	}
	snap, _, _ := store.Snapshot("Ground Floor")
	if FindMaterialRow(snap.Material, "Slab Concrete") >= 0 {
		t.Fatal("material derived before the edit settled")
	}

	if err := ctrl.Settle(); err != nil {
		t.Fatal(err)
	}
	if ctrl.Pending() {
		t.Error("still pending after Settle")
	}
	snap, _, _ = store.Snapshot("Ground Floor")
	if i := FindMaterialRow(snap.Material, "Slab Concrete"); i < 0 || snap.Material[i].Volume != 5 {
		t.Errorf("expected slab material with volume 5, got %+v", snap.Material)
	}
}

func TestController_CloseCancelsPending(t *testing.T) {
	ctrl, store := newTestController(t, nil, time.Hour)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 5)

	ctrl.Close()
	if ctrl.Pending() {
		t.Error("Close must cancel pending recompute")
	}
	snap, _, _ := store.Snapshot("Ground Floor")
	if g := snap.Quantity[FindGroupByName(snap.Quantity, "Slab Concrete")]; g.Quantity != 0 {
		t.Errorf("cancelled edit reached the cache: %v", g.Quantity)
	}
}

func TestController_DebounceFires(t *testing.T) {
	ctrl, store := newTestController(t, nil, 10*time.Millisecond)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 3)

	deadline := time.Now().Add(2 * time.Second)
	for ctrl.Pending() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	snap, _, _ := store.Snapshot("Ground Floor")
	if i := FindMaterialRow(snap.Material, "Slab Concrete"); i < 0 || snap.Material[i].Volume != 3 {
		t.Errorf("debounced recompute did not run: %+v", snap.Material)
	}
}

func TestController_EditsRequireReadyFloor(t *testing.T) {
	ctrl, _ := newTestController(t, nil, 0)
	if _, err := ctrl.AddDetailRow("g"); !IsFatalState(err) {
		t.Errorf("expected FatalStateError, got %v", err)
	}
	if _, err := ctrl.EditPercent(0, 5); !IsFatalState(err) {
		t.Errorf("expected FatalStateError, got %v", err)
	}
}

func TestController_CopyValidation(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		targets []string
	}{
		{"empty source", "", []string{"First Floor"}},
		{"no targets", "Ground Floor", nil},
		{"blank target", "Ground Floor", []string{""}},
		{"source is a target", "Ground Floor", []string{"First Floor", "Ground Floor"}},
		{"source without quantity", "Second Floor", []string{"First Floor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, _ := newTestController(t, nil, 0)
			if err := ctrl.Select("Ground Floor"); err != nil {
				t.Fatal(err)
			}
			if err := ctrl.Copy(tt.source, tt.targets); !IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestController_CopyRefreshesCurrentTarget(t *testing.T) {
	ctrl, _ := newTestController(t, nil, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 8)
	if err := ctrl.Select("First Floor"); err != nil {
		t.Fatal(err)
	}

	if err := ctrl.Copy("Ground Floor", []string{"First Floor", "Second Floor"}); err != nil {
		t.Fatal(err)
	}
	view, _ := ctrl.View()
	if g := view.Quantity[FindGroupByName(view.Quantity, "Slab Concrete")]; g.Quantity != 8 {
		t.Errorf("current target not refreshed: %v", g.Quantity)
	}
	if !contains(ctrl.Floors(), "Second Floor") {
		t.Error("second target not created")
	}
}

func TestController_SaveAndRefresh(t *testing.T) {
	remote := &fakeRemote{}
	ctrl, _ := newTestController(t, remote, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 4)

	if err := ctrl.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if remote.saves != 1 {
		t.Fatalf("expected one save, got %d", remote.saves)
	}
	if _, ok := remote.quantity["Ground Floor"]; !ok {
		t.Error("ground floor quantity not saved")
	}
	if fm, ok := remote.material["Ground Floor"]; !ok || fm.Expense == nil {
		t.Error("ground floor material and allocation not saved")
	}

	view, _ := ctrl.View()
	if state, floor := ctrl.State(); state != FloorReady || floor != "Ground Floor" {
		t.Errorf("selection lost after save: %v %q", state, floor)
	}
	if view.Expense == nil || !view.Expense.Persisted {
		t.Errorf("expected reloaded allocation to be marked persisted, got %+v", view.Expense)
	}
}

func TestController_RefreshFailureKeepsState(t *testing.T) {
	remote := &fakeRemote{}
	ctrl, _ := newTestController(t, remote, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 6)

	remote.mu.Lock()
	remote.loadErr = errors.New("connection reset")
	remote.mu.Unlock()

	err := ctrl.Refresh(context.Background(), "est1")
	if !IsTransient(err) {
		t.Fatalf("expected TransientIOError, got %v", err)
	}
	view, _ := ctrl.View()
	if g := view.Quantity[FindGroupByName(view.Quantity, "Slab Concrete")]; g.Quantity != 6 {
		t.Errorf("failed refresh dropped state: %v", g.Quantity)
	}
}

func TestController_SaveWithoutRemote(t *testing.T) {
	ctrl, _ := newTestController(t, nil, 0)
	if err := ctrl.Save(context.Background()); !IsFatalState(err) {
		t.Errorf("expected FatalStateError, got %v", err)
	}
}

func TestController_MaterialEdits(t *testing.T) {
	ctrl, _ := newTestController(t, nil, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Plastering", 100)

	view, _ := ctrl.View()
	row := view.Material[FindMaterialRow(view.Material, "Plastering")]
	if err := ctrl.EditLabourRate(row.ID, 250); err != nil {
		t.Fatal(err)
	}
	child, err := ctrl.AddMaterial(row.ID, "Tile Adhesive", 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if child.MaterialRate != 450 || child.UOM != "Bag" {
		t.Errorf("catalog values not applied: %+v", child)
	}
	if err := ctrl.EditMaterialCell(row.ID, child.ID, FieldMaterial, "Vitrified Tiles"); err != nil {
		t.Fatal(err)
	}

	view, _ = ctrl.View()
	got := view.Material[FindMaterialRow(view.Material, "Plastering")]
	if got.LabourAmount != 25000 {
		t.Errorf("labour amount = %v, want 25000", got.LabourAmount)
	}
	if got.Materials[0].Material != "Vitrified Tiles" || got.Materials[0].MaterialRate != 650 {
		t.Errorf("material swap not applied: %+v", got.Materials[0])
	}
	if view.Expense.DirectTotal != view.Totals.Direct {
		t.Errorf("expense direct %v != floor direct %v", view.Expense.DirectTotal, view.Totals.Direct)
	}

	if _, err := ctrl.AddMaterial(row.ID, "Marble", 1); err == nil {
		t.Error("expected unknown material to fail")
	}
	if err := ctrl.EditMaterialCell(row.ID, child.ID, FieldWastage, "lots"); !IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestController_ExportProjection(t *testing.T) {
	ctrl, _ := newTestController(t, nil, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 10)

	now := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	data, err := ctrl.ExportProjection("Ground Floor", "Villa", now)
	if err != nil {
		t.Fatal(err)
	}
	view, _ := ctrl.View()
	if data.DirectTotal != view.Totals.Direct || data.GrandTotal != view.Totals.Grand {
		t.Errorf("export totals %v/%v differ from floor %+v", data.DirectTotal, data.GrandTotal, view.Totals)
	}
	if data.CreatedDate != "04 May 2026" {
		t.Errorf("created date = %q", data.CreatedDate)
	}

	if _, err := ctrl.ExportProjection("Terrace", "Villa", now); err == nil {
		t.Error("expected error for an uncached floor")
	}

	all, err := ctrl.ExportAll("Villa", now)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Floor != "Ground Floor" {
		t.Errorf("unexpected ExportAll result %+v", all)
	}
}

func TestController_LoadedMaterialWithoutAllocation(t *testing.T) {
	remote := &fakeRemote{
		quantity: map[string][]ComponentGroup{"Ground Floor": slabGroup(10)},
		material: map[string]FloorMaterials{"Ground Floor": {Rows: DeriveFloor(slabGroup(10), testMixtures)}},
	}
	ctrl, _ := newTestController(t, remote, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}

	view, err := ctrl.View()
	if err != nil {
		t.Fatal(err)
	}
	if view.Expense == nil || view.Totals.Indirect <= 0 {
		t.Fatalf("expected a derived allocation, got expense=%+v totals=%+v", view.Expense, view.Totals)
	}
	if view.Totals.Grand != Round2(view.Totals.Direct+view.Totals.Indirect) {
		t.Errorf("inconsistent totals %+v", view.Totals)
	}
	if _, err := ctrl.EditPercent(0, 5); err != nil {
		t.Errorf("EditPercent: %v", err)
	}
}

func TestController_PersistedAllocationSurvivesSelect(t *testing.T) {
	rows := DeriveFloor(slabGroup(10), testMixtures)
	exp := Allocate(DirectTotal(rows), []AllocationEntry{{Head: "Custom Overhead", Percent: 20}})
	remote := &fakeRemote{
		quantity: map[string][]ComponentGroup{"Ground Floor": slabGroup(10)},
		material: map[string]FloorMaterials{"Ground Floor": {Rows: rows, Expense: &exp}},
	}
	ctrl, store := newTestController(t, remote, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Select("First Floor"); err != nil {
		t.Fatal(err)
	}

	snap, _, _ := store.Snapshot("Ground Floor")
	if snap.Expense == nil || !snap.Expense.Persisted || snap.Expense.Rows[0].Head != "Custom Overhead" {
		t.Errorf("switching floors must leave an unedited allocation alone, got %+v", snap.Expense)
	}
}

func TestController_AddComponentAlreadyOnFloor(t *testing.T) {
	ctrl, _ := newTestController(t, nil, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Brickwork", 10)

	_, err := ctrl.AddComponent("Brickwork")
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	view, _ := ctrl.View()
	names := 0
	for _, g := range view.Quantity {
		if g.Name == "Brickwork" {
			names++
		}
	}
	if names != 1 {
		t.Errorf("Brickwork appears %d times", names)
	}
	i := FindMaterialRow(view.Material, "Brickwork")
	if i < 0 || view.Material[i].Volume != 10 {
		t.Errorf("Brickwork material row lost its volume: %+v", view.Material)
	}
	if _, err := MarshalQuantity(view.Quantity); err != nil {
		t.Errorf("floor no longer persistable: %v", err)
	}
}

func TestController_DeleteLastMaterial(t *testing.T) {
	ctrl, _ := newTestController(t, nil, 0)
	if err := ctrl.Select("Ground Floor"); err != nil {
		t.Fatal(err)
	}
	measure(t, ctrl, "Slab Concrete", 10)

	view, _ := ctrl.View()
	row := view.Material[FindMaterialRow(view.Material, "Slab Concrete")]
	for _, m := range row.Materials {
		if err := ctrl.DeleteMaterial(row.ID, m.ID); err != nil {
			t.Fatal(err)
		}
	}

	view, _ = ctrl.View()
	got := view.Material[FindMaterialRow(view.Material, "Slab Concrete")]
	if got.MaterialAmount != 0 || got.TotalAmount != got.LabourAmount {
		t.Errorf("row without materials = %+v, want labour only", got)
	}
	if view.Expense.DirectTotal != view.Totals.Direct {
		t.Errorf("allocation not refreshed: %v vs %v", view.Expense.DirectTotal, view.Totals.Direct)
	}
}
