package models

import (
	"strings"
	"testing"
)

func validFormula() FeedFormula {
	cost := 0.40
	return FeedFormula{
		FarmID:          "farm-1",
		Name:            "Layer Starter",
		TargetNutrition: NutritionBalanced,
		TargetGroup:     GroupLayers,
		Ingredients: []FeedIngredient{
			{Name: "Corn", Quantity: 45, Unit: UnitKilogram, Cost: &cost},
			{Name: "Limestone", Quantity: 8, Unit: UnitKilogram},
		},
	}
}

func TestFeedFormulaValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a complete formula", func(t *testing.T) {
		t.Parallel()
		formula := validFormula()
		if err := formula.Validate(); err != nil {
			t.Fatalf("Validate returned %v, want nil", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*FeedFormula)
	}{
		{"empty name", func(f *FeedFormula) { f.Name = "  " }},
		{"name too long", func(f *FeedFormula) { f.Name = strings.Repeat("x", 101) }},
		{"unknown nutrition", func(f *FeedFormula) { f.TargetNutrition = "high sodium" }},
		{"unknown group", func(f *FeedFormula) { f.TargetGroup = "ducks" }},
		{"empty ingredient name", func(f *FeedFormula) { f.Ingredients[0].Name = "" }},
		{"ingredient name too long", func(f *FeedFormula) { f.Ingredients[0].Name = strings.Repeat("y", 51) }},
		{"negative quantity", func(f *FeedFormula) { f.Ingredients[1].Quantity = -1 }},
		{"unknown unit", func(f *FeedFormula) { f.Ingredients[0].Unit = "lbs" }},
		{"negative cost", func(f *FeedFormula) { negative := -0.5; f.Ingredients[0].Cost = &negative }},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			formula := validFormula()
			tt.mutate(&formula)
			if err := formula.Validate(); err == nil {
				t.Fatal("Validate returned nil, want error")
			}
		})
	}
}

func TestNormalizeTargetNutrition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"known category", NutritionHighCalcium, NutritionHighCalcium},
		{"mixed case", "High Protein", NutritionHighProtein},
		{"padded", "  balanced  ", NutritionBalanced},
		{"unknown", "super grow", DefaultTargetNutrition},
		{"empty", "", DefaultTargetNutrition},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeTargetNutrition(tt.value); got != tt.want {
				t.Fatalf("NormalizeTargetNutrition(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizeIngredientUnit(t *testing.T) {
	t.Parallel()

	if got := NormalizeIngredientUnit(""); got != DefaultIngredientUnit {
		t.Fatalf("NormalizeIngredientUnit(\"\") = %q, want %q", got, DefaultIngredientUnit)
	}
	if got := NormalizeIngredientUnit(" g "); got != UnitGram {
		t.Fatalf("NormalizeIngredientUnit(\" g \") = %q, want %q", got, UnitGram)
	}
}
