package mock

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmstead/internal/feed"
	applog "farmstead/internal/log"
	"farmstead/models"
)

// New returns an in-memory sqlite database seeded with a representative
// demo farm. It backs local development and never talks to postgres.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:farmstead-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(
		&models.Farm{},
		&models.User{},
		&models.FeedFormula{},
		&models.FeedIngredient{},
		&models.Stock{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	farm := &models.Farm{
		Name:     "Sunrise Poultry",
		Location: "Nakuru",
	}
	if err := database.WithContext(ctx).Create(farm).Error; err != nil {
		return err
	}

	password, err := bcrypt.GenerateFromPassword([]byte("barnyard"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Amara Okello",
		Email:        "amara@farmstead.app",
		PasswordHash: string(password),
		FarmID:       farm.ID,
	}
	if err := database.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	ingredients := []models.FeedIngredient{
		{Name: "Corn", Quantity: 45, Unit: models.UnitKilogram},
		{Name: "Soybean Meal", Quantity: 25, Unit: models.UnitKilogram},
		{Name: "Wheat Bran", Quantity: 15, Unit: models.UnitKilogram},
		{Name: "Limestone", Quantity: 8, Unit: models.UnitKilogram},
	}

	recipe := make([]feed.Ingredient, len(ingredients))
	for i, ingredient := range ingredients {
		recipe[i] = feed.Ingredient{Name: ingredient.Name, Quantity: ingredient.Quantity, Unit: ingredient.Unit}
	}

	formula := &models.FeedFormula{
		FarmID:          farm.ID,
		Name:            "Layer Mash Starter",
		Ingredients:     ingredients,
		TargetNutrition: models.NutritionBalanced,
		TargetGroup:     models.GroupLayers,
		TotalCost:       feed.ComputeCost(recipe),
		Notes:           "Baseline mash for the morning run.",
		IsActive:        true,
	}
	if err := database.WithContext(ctx).Create(formula).Error; err != nil {
		return err
	}

	stocks := []models.Stock{
		{FarmID: farm.ID, ItemType: "Layer Feed", Quantity: 120, InitialQuantity: 150},
		{FarmID: farm.ID, ItemType: "Grower Feed", Quantity: 30, InitialQuantity: 100},
		{FarmID: farm.ID, ItemType: "Oyster Shell Grit", Quantity: 80, InitialQuantity: 80},
	}
	for _, stock := range stocks {
		stockCopy := stock
		if err := database.WithContext(ctx).Create(&stockCopy).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
