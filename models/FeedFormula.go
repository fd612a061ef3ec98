package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Target nutrition categories a formula can be optimized towards.
const (
	NutritionHighProtein      = "high protein"
	NutritionBalanced         = "balanced"
	NutritionHighVitamins     = "high vitamins & minerals"
	NutritionHighCalcium      = "high calcium"
	NutritionHighCarbohydrate = "high carbohydrate"
)

// DefaultTargetNutrition is used when a formula does not state a category.
const DefaultTargetNutrition = NutritionBalanced

// Target bird groups.
const (
	GroupChicks   = "chicks"
	GroupGrowers  = "growers"
	GroupLayers   = "layers"
	GroupBroilers = "broilers"
)

// DefaultTargetGroup is used when a formula does not state a group.
const DefaultTargetGroup = GroupLayers

// Ingredient measurement units.
const (
	UnitKilogram = "kg"
	UnitGram     = "g"
	UnitPercent  = "%"
)

// DefaultIngredientUnit is used when an ingredient does not state a unit.
const DefaultIngredientUnit = UnitKilogram

const (
	maxFormulaNameLength    = 100
	maxIngredientNameLength = 50
)

// FeedIngredient is one line of a formula recipe. Rows keep their
// insertion order through the auto-increment id.
type FeedIngredient struct {
	ID        uint     `gorm:"primaryKey" json:"-"`
	FormulaID string   `gorm:"size:36;index;not null" json:"-"`
	Name      string   `gorm:"size:50;not null" json:"name"`
	Quantity  float64  `gorm:"not null" json:"quantity"`
	Unit      string   `gorm:"size:4;not null;default:kg" json:"unit"`
	Cost      *float64 `json:"cost,omitempty"`
}

// FeedFormula is a named feed recipe owned by a farm. TotalCost is
// derived from the ingredient rows and is never accepted from callers.
type FeedFormula struct {
	ID              string           `gorm:"primaryKey;size:36" json:"id"`
	FarmID          string           `gorm:"size:36;index;not null" json:"farm_id"`
	Name            string           `gorm:"size:100;not null" json:"name"`
	Ingredients     []FeedIngredient `gorm:"foreignKey:FormulaID" json:"ingredients"`
	TargetNutrition string           `gorm:"size:32;not null;default:balanced" json:"target_nutrition"`
	TargetGroup     string           `gorm:"size:16;not null;default:layers" json:"target_group"`
	TotalCost       float64          `gorm:"not null;default:0" json:"total_cost"`
	Notes           string           `gorm:"type:text" json:"notes"`
	IsActive        bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (f *FeedFormula) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// ValidTargetNutrition reports whether value is a known nutrition category.
func ValidTargetNutrition(value string) bool {
	switch value {
	case NutritionHighProtein, NutritionBalanced, NutritionHighVitamins,
		NutritionHighCalcium, NutritionHighCarbohydrate:
		return true
	default:
		return false
	}
}

// NormalizeTargetNutrition lowercases and trims value, falling back to
// the default category when it is empty or unrecognised.
func NormalizeTargetNutrition(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if ValidTargetNutrition(value) {
		return value
	}
	return DefaultTargetNutrition
}

// ValidTargetGroup reports whether value is a known bird group.
func ValidTargetGroup(value string) bool {
	switch value {
	case GroupChicks, GroupGrowers, GroupLayers, GroupBroilers:
		return true
	default:
		return false
	}
}

// ValidIngredientUnit reports whether value is a known measurement unit.
func ValidIngredientUnit(value string) bool {
	switch value {
	case UnitKilogram, UnitGram, UnitPercent:
		return true
	default:
		return false
	}
}

// NormalizeIngredientUnit trims value and falls back to kilograms when
// it is empty.
func NormalizeIngredientUnit(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultIngredientUnit
	}
	return value
}

// Validate checks the invariants a formula must satisfy before it is
// persisted. Derived fields are not inspected here.
func (f *FeedFormula) Validate() error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return fmt.Errorf("formula name is required")
	}
	if len(name) > maxFormulaNameLength {
		return fmt.Errorf("formula name must be at most %d characters", maxFormulaNameLength)
	}
	if !ValidTargetNutrition(f.TargetNutrition) {
		return fmt.Errorf("unknown target nutrition %q", f.TargetNutrition)
	}
	if !ValidTargetGroup(f.TargetGroup) {
		return fmt.Errorf("unknown target group %q", f.TargetGroup)
	}
	for i := range f.Ingredients {
		if err := f.Ingredients[i].Validate(); err != nil {
			return fmt.Errorf("ingredient %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks one recipe line.
func (ing *FeedIngredient) Validate() error {
	name := strings.TrimSpace(ing.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIngredientNameLength {
		return fmt.Errorf("name must be at most %d characters", maxIngredientNameLength)
	}
	if ing.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if !ValidIngredientUnit(ing.Unit) {
		return fmt.Errorf("unknown unit %q", ing.Unit)
	}
	if ing.Cost != nil && *ing.Cost < 0 {
		return fmt.Errorf("cost must not be negative")
	}
	return nil
}
