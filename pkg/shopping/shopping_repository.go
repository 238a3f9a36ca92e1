package shopping

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"context"
	"gorm.io/gorm"
)

type (
	ShoppingRepository interface {
		AggregateCart(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
	}

	shoppingRepository struct {
		db *gorm.DB
	}
)

func NewShoppingRepository(db *gorm.DB) ShoppingRepository {
	return &shoppingRepository{db: db}
}

// AggregateCart consolidates the components of every recipe in the user's
// cart into one line per catalog ingredient with summed amounts. Grouping is
// by ingredient id, not name: two catalog entries that share a name stay
// separate lines. Ordered by ingredient id ascending for stable output.
func (r *shoppingRepository) AggregateCart(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	items := make([]domain.ShoppingListItem, 0)

	if err := r.db.WithContext(ctx).
		Model(&entities.RecipeComponent{}).
		Select("recipe_components.ingredient_id as ingredient_id, " +
			"ingredients.name as name, " +
			"ingredients.measurement_unit as measurement_unit, " +
			"SUM(recipe_components.amount) as amount").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_components.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_components.ingredient_id").
		Where("cart_items.user_id = ?", userID).
		Group("recipe_components.ingredient_id, ingredients.name, ingredients.measurement_unit").
		Order("recipe_components.ingredient_id asc").
		Scan(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}
