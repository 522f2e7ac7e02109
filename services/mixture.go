package services

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Constituent identifies one material slot of a mixture recipe.
type Constituent string

const (
	Cement      Constituent = "cement"
	Steel       Constituent = "steel"
	Sand        Constituent = "sand"
	Aggregate20 Constituent = "aggregate20mm"
	Aggregate40 Constituent = "aggregate40mm"
	Water       Constituent = "water"
	Bricks      Constituent = "bricks"
)

// Constituents is the fixed order in which material rows are emitted.
var Constituents = []Constituent{Cement, Steel, Sand, Aggregate20, Aggregate40, Water, Bricks}

// ConstituentSpec is the consumption of one material per unit volume.
type ConstituentSpec struct {
	Ratio       float64 `json:"ratio"`
	Wastage     float64 `json:"wastage"`
	DefaultRate float64 `json:"defaultRate"`
	Unit        string  `json:"unit"`
	DisplayName string  `json:"displayName"`
	CatalogID   string  `json:"catalogId"`
}

// Validate implements validation.Validatable.
func (c ConstituentSpec) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Ratio, validation.Min(0.0)),
		validation.Field(&c.Wastage, validation.Min(0.0)),
		validation.Field(&c.DefaultRate, validation.Min(0.0)),
	)
}

// MixtureConfig is the material recipe of a concrete or mortar grade.
type MixtureConfig struct {
	Grade        string                          `json:"grade"`
	Constituents map[Constituent]ConstituentSpec `json:"constituents"`
}

// Validate implements validation.Validatable.
func (m MixtureConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Grade, validation.Required),
		validation.Field(&m.Constituents),
	)
}

var parenToken = regexp.MustCompile(`\(([^)]*)\)`)

// MatchMixture finds the recipe for a component's mixture grade. Matching
// is case-insensitive and tried in order: exact label, substring in either
// direction, then the text inside the first parenthesized token of grade
// found within a label. The first hit of the earliest rule wins.
func MatchMixture(grade string, configs []MixtureConfig) (MixtureConfig, bool) {
	g := strings.ToLower(strings.TrimSpace(grade))
	if g == "" {
		return MixtureConfig{}, false
	}

	for _, c := range configs {
		if strings.ToLower(strings.TrimSpace(c.Grade)) == g {
			return c, true
		}
	}

	for _, c := range configs {
		label := strings.ToLower(strings.TrimSpace(c.Grade))
		if label == "" {
			continue
		}
		if strings.Contains(label, g) || strings.Contains(g, label) {
			return c, true
		}
	}

	m := parenToken.FindStringSubmatch(g)
	if m == nil {
		return MixtureConfig{}, false
	}
	token := strings.TrimSpace(m[1])
	if token == "" {
		return MixtureConfig{}, false
	}
	for _, c := range configs {
		if strings.Contains(strings.ToLower(c.Grade), token) {
			return c, true
		}
	}
	return MixtureConfig{}, false
}

// CatalogMaterial is one entry of the material rate catalog.
type CatalogMaterial struct {
	ID           string  `json:"id"`
	Material     string  `json:"material"`
	CategoryName string  `json:"categoryName"`
	Unit         string  `json:"unit"`
	DefaultRate  float64 `json:"defaultRate"`
	Wastage      float64 `json:"wastage"`
}

// FindCatalogMaterial looks a material up by name, ignoring case.
func FindCatalogMaterial(catalog []CatalogMaterial, name string) (CatalogMaterial, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, m := range catalog {
		if strings.ToLower(m.Material) == n {
			return m, nil
		}
	}
	return CatalogMaterial{}, &NotFoundError{Kind: "material", Name: name}
}
