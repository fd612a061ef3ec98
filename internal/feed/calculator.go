// Package feed holds the pure feed-formula computations: aggregate
// nutrition totals, aggregate cost, and the canned ingredient mixes the
// built-in optimizer serves. Nothing in this package touches storage.
package feed

import (
	"github.com/shopspring/decimal"
)

// Ingredient is one already-parsed recipe line handed to the
// calculator. Cost, when set, overrides any reference-table price.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	Cost     *float64 `json:"cost,omitempty"`
}

// Nutrients holds the per-kilogram coefficients of one reference
// ingredient: crude protein percent, metabolizable energy in kcal/kg,
// calcium percent, and the reference market price per kilogram.
type Nutrients struct {
	ProteinPct  float64
	EnergyPerKg float64
	CalciumPct  float64
	PricePerKg  float64
}

// referenceTable carries the coefficients of the common poultry feed
// ingredients the application ships with.
var referenceTable = map[string]Nutrients{
	"Corn":           {ProteinPct: 9, EnergyPerKg: 365, CalciumPct: 0.02, PricePerKg: 0.40},
	"Soybean Meal":   {ProteinPct: 48, EnergyPerKg: 340, CalciumPct: 0.3, PricePerKg: 0.65},
	"Wheat Bran":     {ProteinPct: 15, EnergyPerKg: 260, CalciumPct: 0.12, PricePerKg: 0.30},
	"Limestone":      {ProteinPct: 0, EnergyPerKg: 0, CalciumPct: 38, PricePerKg: 0.25},
	"Fish Meal":      {ProteinPct: 60, EnergyPerKg: 290, CalciumPct: 4, PricePerKg: 1.20},
	"Vitamin Premix": {ProteinPct: 0, EnergyPerKg: 0, CalciumPct: 0, PricePerKg: 3.50},
	"Salt":           {ProteinPct: 0, EnergyPerKg: 0, CalciumPct: 0, PricePerKg: 0.20},
}

// defaultNutrients is the lenient fallback profile applied to
// ingredients missing from the reference table. Unknown ingredients
// degrade to this profile instead of failing the computation. The
// fallback carries no price: unknown ingredients cost nothing unless an
// inline cost is supplied.
var defaultNutrients = Nutrients{ProteinPct: 10, EnergyPerKg: 250, CalciumPct: 0.5}

// Totals aggregates the nutrition of a whole recipe. The percentage
// fields are normalized against total weight and are zero for an empty
// recipe.
type Totals struct {
	TotalWeight       float64 `json:"total_weight"`
	TotalProtein      float64 `json:"total_protein"`
	TotalEnergy       float64 `json:"total_energy"`
	TotalCalcium      float64 `json:"total_calcium"`
	ProteinPercentage float64 `json:"protein_percentage"`
	EnergyPerKg       float64 `json:"energy_per_kg"`
	CalciumPercentage float64 `json:"calcium_percentage"`
}

// LookupNutrients returns the coefficient row for name, falling back to
// the default profile when the ingredient is unknown.
func LookupNutrients(name string) Nutrients {
	if row, ok := referenceTable[name]; ok {
		return row
	}
	return defaultNutrients
}

// ComputeTotals aggregates nutrition over the recipe using the built-in
// reference table. It never fails; duplicate ingredient names simply
// contribute twice.
func ComputeTotals(ingredients []Ingredient) Totals {
	return ComputeTotalsWith(ingredients, referenceTable)
}

// ComputeTotalsWith aggregates nutrition over the recipe using the
// supplied coefficient table. Each ingredient contributes
// coefficient/100 * quantity; unknown names use the default profile.
func ComputeTotalsWith(ingredients []Ingredient, table map[string]Nutrients) Totals {
	var totals Totals
	for _, ingredient := range ingredients {
		row, ok := table[ingredient.Name]
		if !ok {
			row = defaultNutrients
		}
		totals.TotalWeight += ingredient.Quantity
		totals.TotalProtein += row.ProteinPct / 100 * ingredient.Quantity
		totals.TotalEnergy += row.EnergyPerKg / 100 * ingredient.Quantity
		totals.TotalCalcium += row.CalciumPct / 100 * ingredient.Quantity
	}

	if totals.TotalWeight > 0 {
		totals.ProteinPercentage = totals.TotalProtein / totals.TotalWeight * 100
		totals.EnergyPerKg = totals.TotalEnergy / totals.TotalWeight * 100
		totals.CalciumPercentage = totals.TotalCalcium / totals.TotalWeight * 100
	}

	return totals
}

// ComputeCost sums quantity * unit cost over the recipe. An inline cost
// on the ingredient takes precedence over the reference price; unknown
// ingredients without an inline cost contribute nothing. Accumulation
// runs on decimals so repeated recomputation never drifts.
func ComputeCost(ingredients []Ingredient) float64 {
	total := decimal.Zero
	for _, ingredient := range ingredients {
		unitCost := decimal.Zero
		switch {
		case ingredient.Cost != nil:
			unitCost = decimal.NewFromFloat(*ingredient.Cost)
		default:
			if row, ok := referenceTable[ingredient.Name]; ok {
				unitCost = decimal.NewFromFloat(row.PricePerKg)
			}
		}
		total = total.Add(decimal.NewFromFloat(ingredient.Quantity).Mul(unitCost))
	}
	result, _ := total.Float64()
	return result
}
