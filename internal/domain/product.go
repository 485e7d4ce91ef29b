package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultProductName is used when a product is created without a name
const DefaultProductName = "Носки"

// Size is a fixed sock size tier
type Size string

const (
	Size38to40 Size = "38-40"
	Size41to43 Size = "41-43"
	Size44to46 Size = "44-46"
)

// Sizes lists every valid size tier
var Sizes = []Size{Size38to40, Size41to43, Size44to46}

// ParseSize returns the size tier named by s
func ParseSize(s string) (Size, bool) {
	for _, v := range Sizes {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Label renders the size with a typographic dash
func (s Size) Label() string {
	return strings.Replace(string(s), "-", "–", 1)
}

// Material is a fixed sock material category
type Material string

const (
	MaterialCotton    Material = "cotton"
	MaterialWool      Material = "wool"
	MaterialSynthetic Material = "synthetic"
)

// Materials lists every valid material
var Materials = []Material{MaterialCotton, MaterialWool, MaterialSynthetic}

var materialLabels = map[Material]string{
	MaterialCotton:    "Хлопок",
	MaterialWool:      "Шерсть",
	MaterialSynthetic: "Синтетика",
}

// ParseMaterial returns the material named by s
func ParseMaterial(s string) (Material, bool) {
	for _, v := range Materials {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Label returns the human-readable material name
func (m Material) Label() string {
	if label, ok := materialLabels[m]; ok {
		return label
	}
	return string(m)
}

// Product represents a sock line item in the catalog
type Product struct {
	ID       int64           `json:"id" db:"id"`
	Name     string          `json:"name" db:"name"`
	Size     Size            `json:"size" db:"size"`
	Material Material        `json:"material" db:"material"`
	Color    string          `json:"color" db:"color"`
	Price    decimal.Decimal `json:"price" db:"price"`
	Stock    int             `json:"stock" db:"stock"`
}

// InStock reports whether at least one unit can be purchased
func (p *Product) InStock() bool {
	return p.Stock > 0
}

func (p *Product) String() string {
	return fmt.Sprintf("%s %s %s %s", p.Name, p.Size, p.Material, p.Color)
}

// CatalogFilter narrows a catalog listing by exact size and material
type CatalogFilter struct {
	Size     *Size
	Material *Material
}

// ProductField names a product attribute that may be edited directly
type ProductField string

const (
	ProductFieldName     ProductField = "name"
	ProductFieldSize     ProductField = "size"
	ProductFieldMaterial ProductField = "material"
	ProductFieldColor    ProductField = "color"
	ProductFieldPrice    ProductField = "price"
	ProductFieldStock    ProductField = "stock"
)

// ProductFields is the edit allow-list
var ProductFields = []ProductField{
	ProductFieldName,
	ProductFieldSize,
	ProductFieldMaterial,
	ProductFieldColor,
	ProductFieldPrice,
	ProductFieldStock,
}

// ParseProductField returns the field named by s if it is on the allow-list
func ParseProductField(s string) (ProductField, bool) {
	for _, f := range ProductFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}
