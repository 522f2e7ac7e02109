// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"floorestimate/collections"
	"floorestimate/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// NewSeededTestApp is NewTestApp with the reference tables and the sample
// estimation seeded.
func NewSeededTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	app := NewTestApp(t)
	if err := collections.Seed(app); err != nil {
		t.Fatalf("failed to seed test app: %v", err)
	}
	return app
}

// CreateTestEstimation creates an estimation record with the given title and returns it.
func CreateTestEstimation(t *testing.T, app *pocketbase.PocketBase, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(services.EstimationsCollection)
	if err != nil {
		t.Fatalf("failed to find estimations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)
	record.Set("reference_number", "EST-TEST")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test estimation: %v", err)
	}

	return record
}

// MeasuredRow builds a detail row whose quantity is computed from its
// dimensions.
func MeasuredRow(label string, no, length, width, height float64, deduction bool) services.DetailRow {
	r := services.DetailRow{
		ID:             services.NewRowID(),
		ChildComponent: label,
		No:             no,
		Length:         length,
		Width:          width,
		Height:         height,
		IsDeduction:    deduction,
	}
	r.Recalculate()
	return r
}

// FindSampleEstimation returns the estimation created by collections.Seed.
func FindSampleEstimation(t *testing.T, app *pocketbase.PocketBase) *core.Record {
	t.Helper()

	records, err := app.FindRecordsByFilter(services.EstimationsCollection,
		"title = {:title}", "", 1, 0,
		map[string]any{"title": collections.SampleEstimationTitle},
	)
	if err != nil || len(records) == 0 {
		t.Fatalf("sample estimation not found: %v", err)
	}
	return records[0]
}
