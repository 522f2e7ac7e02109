package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
	"floorestimate/testhelpers"
)

func TestPocketBaseStore_ReferenceTables(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)
	store := services.NewPocketBaseStore(app)

	mixtures, err := store.MixtureConfigs()
	if err != nil {
		t.Fatalf("MixtureConfigs: %v", err)
	}
	if len(mixtures) != len(services.DefaultMixtures) || mixtures[0].Grade != services.DefaultMixtures[0].Grade {
		t.Errorf("mixtures = %d starting %q", len(mixtures), mixtures[0].Grade)
	}
	if _, ok := services.MatchMixture("M20", mixtures); !ok {
		t.Error("stored recipes do not match M20")
	}

	catalog, err := store.MaterialCatalog()
	if err != nil {
		t.Fatalf("MaterialCatalog: %v", err)
	}
	if len(catalog) != len(services.DefaultCatalog) {
		t.Errorf("catalog has %d materials, want %d", len(catalog), len(services.DefaultCatalog))
	}
	if _, err := services.FindCatalogMaterial(catalog, "Tile Adhesive"); err != nil {
		t.Errorf("Tile Adhesive missing: %v", err)
	}

	for _, cat := range services.FloorCategories {
		groups, err := store.DefaultComponents(cat)
		if err != nil {
			t.Fatalf("DefaultComponents(%s): %v", cat, err)
		}
		want := services.DefaultTemplates[cat]
		if len(groups) != len(want) || groups[0].Name != want[0].Name {
			t.Errorf("%s templates = %d starting %q", cat, len(groups), groups[0].Name)
		}
		table, err := store.AllocationTable(cat)
		if err != nil {
			t.Fatalf("AllocationTable(%s): %v", cat, err)
		}
		if len(table) != len(services.DefaultAllocations[cat]) {
			t.Errorf("%s allocation heads = %d", cat, len(table))
		}
	}
}

func TestPocketBaseStore_SaveAndLoad(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	est := testhelpers.CreateTestEstimation(t, app, "Store Test")
	store := services.NewPocketBaseStore(app)
	ctx := context.Background()

	groups := []services.ComponentGroup{{
		ID: "g1", Name: "Slab Concrete", Unit: "Cum", Mixture: "M20", LabourRate: 1150, Category: "Concrete",
		Rows: []services.DetailRow{
			testhelpers.MeasuredRow("Slab", 1, 10, 9, 0.15, false),
			testhelpers.MeasuredRow("Duct", 1, 1, 1, 0.15, true),
		},
	}}
	services.AggregateGroups(groups)
	rows := services.DeriveFloor(groups, services.DefaultMixtures)
	exp := services.Allocate(services.DirectTotal(rows), services.DefaultAllocations[services.CategoryFloors])

	quantity := map[string][]services.ComponentGroup{"Ground Floor": groups, "First Floor": {}}
	material := map[string]services.FloorMaterials{"Ground Floor": {Rows: rows, Expense: &exp}}
	if err := store.SaveAll(ctx, est.Id, quantity, material); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	gotQty, err := store.LoadFloorData(ctx, est.Id)
	if err != nil {
		t.Fatalf("LoadFloorData: %v", err)
	}
	if len(gotQty) != 2 {
		t.Fatalf("floors = %v", gotQty)
	}
	ground := gotQty["Ground Floor"]
	if len(ground) != 1 || ground[0].Quantity != 13.35 || len(ground[0].Rows) != 2 || !ground[0].Rows[1].IsDeduction {
		t.Errorf("ground floor = %+v", ground)
	}

	gotMat, err := store.LoadMaterialData(ctx, est.Id)
	if err != nil {
		t.Fatalf("LoadMaterialData: %v", err)
	}
	fm := gotMat["Ground Floor"]
	if len(fm.Rows) != 1 || fm.Rows[0].TotalAmount != rows[0].TotalAmount {
		t.Errorf("material rows = %+v", fm.Rows)
	}
	if fm.Expense == nil || fm.Expense.GrandTotal != exp.GrandTotal {
		t.Errorf("expense = %+v, want grand total %v", fm.Expense, exp.GrandTotal)
	}

	// Floors left out of the next save are removed.
	if err := store.SaveAll(ctx, est.Id, map[string][]services.ComponentGroup{"Ground Floor": groups}, nil); err != nil {
		t.Fatalf("second SaveAll: %v", err)
	}
	gotQty, _ = store.LoadFloorData(ctx, est.Id)
	if _, ok := gotQty["First Floor"]; ok || len(gotQty) != 1 {
		t.Errorf("floors after second save = %v", gotQty)
	}
	gotMat, _ = store.LoadMaterialData(ctx, est.Id)
	if len(gotMat) != 0 {
		t.Errorf("material floors after second save = %d", len(gotMat))
	}
}

func TestPocketBaseStore_UnknownEstimation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	store := services.NewPocketBaseStore(app)
	ctx := context.Background()

	var nf *services.NotFoundError
	if _, err := store.LoadFloorData(ctx, "missing"); !errors.As(err, &nf) {
		t.Errorf("LoadFloorData: expected NotFoundError, got %v", err)
	}
	if err := store.SaveAll(ctx, "missing", nil, nil); !errors.As(err, &nf) {
		t.Errorf("SaveAll: expected NotFoundError, got %v", err)
	}
}

func TestPocketBaseStore_SessionOverSample(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)
	est := testhelpers.FindSampleEstimation(t, app)
	ctrl, err := services.NewPocketBaseStore(app).NewEstimationSession(0)
	if err != nil {
		t.Fatal(err)
	}
	defer ctrl.Close()
	if err := ctrl.LoadInitial(context.Background(), est.Id); err != nil {
		t.Fatalf("LoadInitial: %v", err)
	}
	if err := ctrl.Select("Foundation"); err != nil {
		t.Fatal(err)
	}
	view, err := ctrl.View()
	if err != nil {
		t.Fatal(err)
	}
	idx := services.FindGroupByName(view.Quantity, "Earth Work Excavation")
	if idx < 0 || view.Quantity[idx].Quantity != 65.34 {
		t.Errorf("excavation quantity not loaded: %+v", view.Quantity)
	}
	if view.Expense == nil || view.Totals.Grand <= view.Totals.Direct {
		t.Errorf("expected an indirect allocation, got %+v", view.Totals)
	}
}

func TestPocketBaseStore_RejectsInvalidRecipe(t *testing.T) {
	app := testhelpers.NewSeededTestApp(t)
	col, err := app.FindCollectionByNameOrId(services.MixtureConfigsCollection)
	if err != nil {
		t.Fatal(err)
	}
	r := core.NewRecord(col)
	r.Set("sort_order", 99)
	r.Set("grade", "M30 Broken")
	r.Set("constituents", map[services.Constituent]services.ConstituentSpec{
		services.Cement: {Ratio: -8, DefaultRate: 420, Unit: "Bag"},
	})
	if err := app.Save(r); err != nil {
		t.Fatal(err)
	}

	store := services.NewPocketBaseStore(app)
	if _, err := store.MixtureConfigs(); !services.IsValidation(err) {
		t.Errorf("MixtureConfigs: expected ValidationError, got %v", err)
	}
	if _, err := store.NewEstimationSession(0); !services.IsValidation(err) {
		t.Errorf("NewEstimationSession: expected ValidationError, got %v", err)
	}
}
