package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
)

const maxDocumentSize = 5 << 20

var floorCategoryValues = []string{
	string(services.CategoryFoundation),
	string(services.CategoryBasement),
	string(services.CategoryFloors),
}

// Setup programmatically creates/ensures the estimation collections and the
// reference tables they are priced from.
func Setup(app *pocketbase.PocketBase) {
	estimations := ensureCollection(app, services.EstimationsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	for _, name := range []string{services.FloorQuantitiesCollection, services.FloorMaterialsCollection} {
		ensureCollection(app, name, func(c *core.Collection) {
			c.Fields.Add(&core.RelationField{
				Name:          "estimation",
				Required:      true,
				CollectionId:  estimations.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			})
			c.Fields.Add(&core.TextField{Name: "floor", Required: true})
			c.Fields.Add(&core.JSONField{Name: "data", MaxSize: maxDocumentSize})
			c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
			c.AddIndex("idx_"+name+"_floor", true, "estimation, floor", "")
		})
	}

	ensureCollection(app, services.MixtureConfigsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.TextField{Name: "grade", Required: true})
		c.Fields.Add(&core.JSONField{Name: "constituents", MaxSize: 1 << 16})
	})

	ensureCollection(app, services.MaterialCatalogCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "code", Required: true})
		c.Fields.Add(&core.TextField{Name: "material", Required: true})
		c.Fields.Add(&core.TextField{Name: "category_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.NumberField{Name: "default_rate", Required: false})
		c.Fields.Add(&core.NumberField{Name: "wastage", Required: false})
	})

	ensureCollection(app, services.ComponentTemplatesCollection, func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "floor_category",
			Required:  true,
			Values:    floorCategoryValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.TextField{Name: "mixture", Required: false})
		c.Fields.Add(&core.NumberField{Name: "labour_rate", Required: false})
		c.Fields.Add(&core.TextField{Name: "category", Required: false})
		c.Fields.Add(&core.TextField{Name: "instruction", Required: false})
	})

	ensureCollection(app, services.ExpenseAllocationsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.SelectField{
			Name:      "floor_category",
			Required:  true,
			Values:    floorCategoryValues,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.TextField{Name: "head", Required: true})
		c.Fields.Add(&core.NumberField{Name: "allocation_percent", Required: false})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
