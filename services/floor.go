package services

import "strings"

// FloorCategory selects the component template and the indirect expense
// allocation table used for a floor.
type FloorCategory string

const (
	CategoryFoundation FloorCategory = "Foundation"
	CategoryBasement   FloorCategory = "Basement"
	CategoryFloors     FloorCategory = "Floors"
)

// FloorCategories lists every category in display order.
var FloorCategories = []FloorCategory{CategoryFoundation, CategoryBasement, CategoryFloors}

// CategoryForFloor derives the category from a floor name: exactly
// "Foundation", anything containing "Basement", everything else is Floors.
func CategoryForFloor(name string) FloorCategory {
	switch {
	case name == "Foundation":
		return CategoryFoundation
	case strings.Contains(name, "Basement"):
		return CategoryBasement
	default:
		return CategoryFloors
	}
}
