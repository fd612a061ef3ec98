package feed

import "farmstead/models"

// Canned ingredient mixes, one per target-nutrition category. This is a
// lookup-table dispatch, not a constrained optimization: callers asking
// for a category always get the fixed mix below, with an unknown
// category falling back to the balanced mix.
var cannedMixes = map[string][]Ingredient{
	models.NutritionHighProtein: {
		{Name: "Soybean Meal", Quantity: 40, Unit: models.UnitKilogram},
		{Name: "Fish Meal", Quantity: 15, Unit: models.UnitKilogram},
		{Name: "Corn", Quantity: 30, Unit: models.UnitKilogram},
		{Name: "Limestone", Quantity: 7, Unit: models.UnitKilogram},
		{Name: "Vitamin Premix", Quantity: 2, Unit: models.UnitKilogram},
		{Name: "Salt", Quantity: 0.5, Unit: models.UnitKilogram},
	},
	models.NutritionHighCalcium: {
		{Name: "Corn", Quantity: 35, Unit: models.UnitKilogram},
		{Name: "Soybean Meal", Quantity: 25, Unit: models.UnitKilogram},
		{Name: "Limestone", Quantity: 20, Unit: models.UnitKilogram},
		{Name: "Wheat Bran", Quantity: 10, Unit: models.UnitKilogram},
		{Name: "Vitamin Premix", Quantity: 2, Unit: models.UnitKilogram},
		{Name: "Salt", Quantity: 0.5, Unit: models.UnitKilogram},
	},
	models.NutritionHighCarbohydrate: {
		{Name: "Corn", Quantity: 60, Unit: models.UnitKilogram},
		{Name: "Wheat Bran", Quantity: 20, Unit: models.UnitKilogram},
		{Name: "Soybean Meal", Quantity: 10, Unit: models.UnitKilogram},
		{Name: "Limestone", Quantity: 5, Unit: models.UnitKilogram},
		{Name: "Vitamin Premix", Quantity: 2, Unit: models.UnitKilogram},
		{Name: "Salt", Quantity: 0.5, Unit: models.UnitKilogram},
	},
	models.NutritionHighVitamins: {
		{Name: "Corn", Quantity: 40, Unit: models.UnitKilogram},
		{Name: "Soybean Meal", Quantity: 20, Unit: models.UnitKilogram},
		{Name: "Vitamin Premix", Quantity: 8, Unit: models.UnitKilogram},
		{Name: "Limestone", Quantity: 10, Unit: models.UnitKilogram},
		{Name: "Wheat Bran", Quantity: 10, Unit: models.UnitKilogram},
		{Name: "Salt", Quantity: 2, Unit: models.UnitKilogram},
	},
	models.NutritionBalanced: {
		{Name: "Corn", Quantity: 45, Unit: models.UnitKilogram},
		{Name: "Soybean Meal", Quantity: 25, Unit: models.UnitKilogram},
		{Name: "Wheat Bran", Quantity: 15, Unit: models.UnitKilogram},
		{Name: "Limestone", Quantity: 8, Unit: models.UnitKilogram},
		{Name: "Vitamin Premix", Quantity: 2, Unit: models.UnitKilogram},
		{Name: "Salt", Quantity: 0.5, Unit: models.UnitKilogram},
	},
}

// SelectMix returns a copy of the canned mix for the given category.
// Unknown or empty categories resolve to the balanced mix.
func SelectMix(category string) []Ingredient {
	mix, ok := cannedMixes[models.NormalizeTargetNutrition(category)]
	if !ok {
		mix = cannedMixes[models.NutritionBalanced]
	}
	out := make([]Ingredient, len(mix))
	copy(out, mix)
	return out
}

// MixResult bundles a canned mix with its derived nutrition summary and
// reference cost.
type MixResult struct {
	TargetNutrition string       `json:"target_nutrition"`
	Ingredients     []Ingredient `json:"ingredients"`
	Nutrition       Totals       `json:"nutrition"`
	TotalCost       float64      `json:"total_cost"`
}

// BuildMix selects the canned mix for category and computes its
// nutrition summary and cost. It always succeeds.
func BuildMix(category string) MixResult {
	normalized := models.NormalizeTargetNutrition(category)
	mix := SelectMix(normalized)
	return MixResult{
		TargetNutrition: normalized,
		Ingredients:     mix,
		Nutrition:       ComputeTotals(mix),
		TotalCost:       ComputeCost(mix),
	}
}
