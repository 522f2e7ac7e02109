package services

// UOMOptions lists the units a component or material may be measured in.
var UOMOptions = []string{
	"Cum",
	"Sqm",
	"Rmt",
	"Nos",
	"Kg",
	"MT",
	"Bag",
	"Ltr",
	"Lumpsum",
}

// DefaultMixtures is the stock recipe table, quantities per cubic metre.
var DefaultMixtures = []MixtureConfig{
	{
		Grade: "M10",
		Constituents: map[Constituent]ConstituentSpec{
			Cement:      {Ratio: 4.4, Wastage: 2, DefaultRate: 420, Unit: "Bag", DisplayName: "Cement OPC 53", CatalogID: "MAT-CEM"},
			Sand:        {Ratio: 0.47, Wastage: 5, DefaultRate: 1800, Unit: "Cum", DisplayName: "River Sand", CatalogID: "MAT-SND"},
			Aggregate20: {Ratio: 0.46, Wastage: 3, DefaultRate: 1600, Unit: "Cum", DisplayName: "Aggregate 20mm", CatalogID: "MAT-A20"},
			Aggregate40: {Ratio: 0.46, Wastage: 3, DefaultRate: 1500, Unit: "Cum", DisplayName: "Aggregate 40mm", CatalogID: "MAT-A40"},
			Water:       {Ratio: 170, DefaultRate: 0.5, Unit: "Ltr", DisplayName: "Water", CatalogID: "MAT-WTR"},
		},
	},
	{
		Grade: "M15",
		Constituents: map[Constituent]ConstituentSpec{
			Cement:      {Ratio: 6.34, Wastage: 2, DefaultRate: 420, Unit: "Bag", DisplayName: "Cement OPC 53", CatalogID: "MAT-CEM"},
			Sand:        {Ratio: 0.44, Wastage: 5, DefaultRate: 1800, Unit: "Cum", DisplayName: "River Sand", CatalogID: "MAT-SND"},
			Aggregate20: {Ratio: 0.88, Wastage: 3, DefaultRate: 1600, Unit: "Cum", DisplayName: "Aggregate 20mm", CatalogID: "MAT-A20"},
			Water:       {Ratio: 175, DefaultRate: 0.5, Unit: "Ltr", DisplayName: "Water", CatalogID: "MAT-WTR"},
		},
	},
	{
		Grade: "M20",
		Constituents: map[Constituent]ConstituentSpec{
			Cement:      {Ratio: 8.06, Wastage: 2, DefaultRate: 420, Unit: "Bag", DisplayName: "Cement OPC 53", CatalogID: "MAT-CEM"},
			Steel:       {Ratio: 80, Wastage: 3, DefaultRate: 65, Unit: "Kg", DisplayName: "TMT Steel Fe500", CatalogID: "MAT-STL"},
			Sand:        {Ratio: 0.42, Wastage: 5, DefaultRate: 1800, Unit: "Cum", DisplayName: "River Sand", CatalogID: "MAT-SND"},
			Aggregate20: {Ratio: 0.84, Wastage: 3, DefaultRate: 1600, Unit: "Cum", DisplayName: "Aggregate 20mm", CatalogID: "MAT-A20"},
			Water:       {Ratio: 186, DefaultRate: 0.5, Unit: "Ltr", DisplayName: "Water", CatalogID: "MAT-WTR"},
		},
	},
	{
		Grade: "M25",
		Constituents: map[Constituent]ConstituentSpec{
			Cement:      {Ratio: 9.5, Wastage: 2, DefaultRate: 420, Unit: "Bag", DisplayName: "Cement OPC 53", CatalogID: "MAT-CEM"},
			Steel:       {Ratio: 100, Wastage: 3, DefaultRate: 65, Unit: "Kg", DisplayName: "TMT Steel Fe500", CatalogID: "MAT-STL"},
			Sand:        {Ratio: 0.39, Wastage: 5, DefaultRate: 1800, Unit: "Cum", DisplayName: "River Sand", CatalogID: "MAT-SND"},
			Aggregate20: {Ratio: 0.78, Wastage: 3, DefaultRate: 1600, Unit: "Cum", DisplayName: "Aggregate 20mm", CatalogID: "MAT-A20"},
			Water:       {Ratio: 190, DefaultRate: 0.5, Unit: "Ltr", DisplayName: "Water", CatalogID: "MAT-WTR"},
		},
	},
	{
		Grade: "CM 1:6 Brickwork",
		Constituents: map[Constituent]ConstituentSpec{
			Cement: {Ratio: 1.25, Wastage: 2, DefaultRate: 420, Unit: "Bag", DisplayName: "Cement OPC 53", CatalogID: "MAT-CEM"},
			Sand:   {Ratio: 0.28, Wastage: 5, DefaultRate: 1800, Unit: "Cum", DisplayName: "River Sand", CatalogID: "MAT-SND"},
			Water:  {Ratio: 60, DefaultRate: 0.5, Unit: "Ltr", DisplayName: "Water", CatalogID: "MAT-WTR"},
			Bricks: {Ratio: 500, Wastage: 5, DefaultRate: 8, Unit: "Nos", DisplayName: "Red Bricks", CatalogID: "MAT-BRK"},
		},
	},
}

// DefaultCatalog is the stock material rate list.
var DefaultCatalog = []CatalogMaterial{
	{ID: "MAT-CEM", Material: "Cement OPC 53", CategoryName: "Binder", Unit: "Bag", DefaultRate: 420, Wastage: 2},
	{ID: "MAT-STL", Material: "TMT Steel Fe500", CategoryName: "Reinforcement", Unit: "Kg", DefaultRate: 65, Wastage: 3},
	{ID: "MAT-SND", Material: "River Sand", CategoryName: "Fine Aggregate", Unit: "Cum", DefaultRate: 1800, Wastage: 5},
	{ID: "MAT-A20", Material: "Aggregate 20mm", CategoryName: "Coarse Aggregate", Unit: "Cum", DefaultRate: 1600, Wastage: 3},
	{ID: "MAT-A40", Material: "Aggregate 40mm", CategoryName: "Coarse Aggregate", Unit: "Cum", DefaultRate: 1500, Wastage: 3},
	{ID: "MAT-WTR", Material: "Water", CategoryName: "Utilities", Unit: "Ltr", DefaultRate: 0.5},
	{ID: "MAT-BRK", Material: "Red Bricks", CategoryName: "Masonry", Unit: "Nos", DefaultRate: 8, Wastage: 5},
	{ID: "MAT-WPC", Material: "Waterproofing Compound", CategoryName: "Chemicals", Unit: "Kg", DefaultRate: 120, Wastage: 2},
	{ID: "MAT-VTL", Material: "Vitrified Tiles", CategoryName: "Finishes", Unit: "Sqm", DefaultRate: 650, Wastage: 5},
	{ID: "MAT-TAD", Material: "Tile Adhesive", CategoryName: "Finishes", Unit: "Bag", DefaultRate: 450, Wastage: 2},
}

// DefaultTemplates lists the components a new floor starts with.
var DefaultTemplates = map[FloorCategory][]ComponentGroup{
	CategoryFoundation: {
		{Name: "Earth Work Excavation", Unit: "Cum", LabourRate: 250, Category: "Earthwork", Instruction: "Measure to the bottom of PCC"},
		{Name: "PCC Below Footing", Unit: "Cum", Mixture: "M10", LabourRate: 900, Category: "Concrete"},
		{Name: "Footing Concrete", Unit: "Cum", Mixture: "M20", LabourRate: 1100, Category: "Concrete"},
		{Name: "Column Concrete Upto Plinth", Unit: "Cum", Mixture: "M20", LabourRate: 1250, Category: "Concrete"},
		{Name: "Plinth Beam Concrete", Unit: "Cum", Mixture: "M20", LabourRate: 1200, Category: "Concrete"},
		{Name: "Brickwork Below Plinth", Unit: "Cum", Mixture: "CM 1:6 Brickwork", LabourRate: 1000, Category: "Masonry"},
		{Name: "Backfilling", Unit: "Cum", LabourRate: 180, Category: "Earthwork", Instruction: "Deduct footing and column volumes"},
	},
	CategoryBasement: {
		{Name: "Basement Excavation", Unit: "Cum", LabourRate: 300, Category: "Earthwork"},
		{Name: "Raft Concrete", Unit: "Cum", Mixture: "M25", LabourRate: 1300, Category: "Concrete"},
		{Name: "Retaining Wall Concrete", Unit: "Cum", Mixture: "M25", LabourRate: 1400, Category: "Concrete"},
		{Name: "Column Concrete", Unit: "Cum", Mixture: "M25", LabourRate: 1250, Category: "Concrete"},
		{Name: "Waterproofing", Unit: "Sqm", LabourRate: 350, Category: "Finishes"},
	},
	CategoryFloors: {
		{Name: "Column Concrete", Unit: "Cum", Mixture: "M20", LabourRate: 1250, Category: "Concrete"},
		{Name: "Beam Concrete", Unit: "Cum", Mixture: "M20", LabourRate: 1200, Category: "Concrete"},
		{Name: "Slab Concrete", Unit: "Cum", Mixture: "M20", LabourRate: 1150, Category: "Concrete"},
		{Name: "Brickwork", Unit: "Cum", Mixture: "CM 1:6 Brickwork", LabourRate: 1000, Category: "Masonry"},
		{Name: "Plastering", Unit: "Sqm", LabourRate: 220, Category: "Finishes"},
		{Name: "Flooring", Unit: "Sqm", LabourRate: 300, Category: "Finishes"},
	},
}

// DefaultAllocations are the stock indirect expense tables.
var DefaultAllocations = map[FloorCategory][]AllocationEntry{
	CategoryFoundation: {
		{Head: "Site Overhead", Percent: 10},
		{Head: "Contractor Profit", Percent: 10},
		{Head: "Contingency", Percent: 3},
	},
	CategoryBasement: {
		{Head: "Site Overhead", Percent: 10},
		{Head: "Contractor Profit", Percent: 10},
		{Head: "Contingency", Percent: 5},
		{Head: "Dewatering", Percent: 2},
	},
	CategoryFloors: {
		{Head: "Site Overhead", Percent: 8},
		{Head: "Contractor Profit", Percent: 10},
		{Head: "Contingency", Percent: 3},
	},
}

// DefaultSources returns in-memory sources filled with the stock data.
func DefaultSources() *StaticSources {
	return &StaticSources{
		Templates:   DefaultTemplates,
		Mixtures:    DefaultMixtures,
		Catalog:     DefaultCatalog,
		Allocations: DefaultAllocations,
	}
}
