package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/relation"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeRepository interface {
		CreateRecipe(ctx context.Context, recipe *entities.Recipe, components []*entities.RecipeComponent, tags []*entities.Tag) error
		UpdateRecipe(ctx context.Context, recipe *entities.Recipe, components []*entities.RecipeComponent, tags []*entities.Tag) error
		UpdateRecipeImage(ctx context.Context, recipeID, imageURL string) error
		GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]*entities.Recipe, int64, error)
		DeleteRecipe(ctx context.Context, id string) error

		AddFavorite(ctx context.Context, userID, recipeID string) error
		RemoveFavorite(ctx context.Context, userID, recipeID string) error
		AddCartItem(ctx context.Context, userID, recipeID string) error
		RemoveCartItem(ctx context.Context, userID, recipeID string) error

		FavoritedRecipeIDs(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
		CartRecipeIDs(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
		SubscribedAuthorIDs(ctx context.Context, userID string, authorIDs []uuid.UUID) (map[uuid.UUID]struct{}, error)
	}

	recipeRepository struct {
		db *gorm.DB
	}
)

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, recipe *entities.Recipe, components []*entities.RecipeComponent, tags []*entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}

		for _, component := range components {
			component.RecipeID = recipe.ID
		}
		if len(components) > 0 {
			if err := tx.Create(&components).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.ErrDuplicateComponent
				}
				return err
			}
		}

		return tx.Model(recipe).Association("Tags").Replace(tags)
	})
}

// UpdateRecipe rewrites the recipe fields and replaces its whole component
// and tag sets in one transaction, so readers never observe a recipe with a
// partially written composition.
func (r *recipeRepository) UpdateRecipe(ctx context.Context, recipe *entities.Recipe, components []*entities.RecipeComponent, tags []*entities.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]interface{}{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"cooking_time": recipe.CookingTime,
				"updated_at":   time.Now(),
			}).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&entities.RecipeComponent{}).Error; err != nil {
			return err
		}

		for _, component := range components {
			component.RecipeID = recipe.ID
		}
		if len(components) > 0 {
			if err := tx.Create(&components).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.ErrDuplicateComponent
				}
				return err
			}
		}

		return tx.Model(recipe).Association("Tags").Replace(tags)
	})
}

func (r *recipeRepository) UpdateRecipeImage(ctx context.Context, recipeID, imageURL string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Recipe{}).
		Where("id = ?", recipeID).
		Update("image_url", imageURL).Error
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, id string) (*entities.Recipe, error) {
	var recipe entities.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Components.Ingredient").
		Where("id = ?", id).
		First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) buildRecipeQuery(ctx context.Context, filter domain.RecipeFilter, viewerID string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entities.Recipe{})

	if filter.AuthorID != "" {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}

	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
	}

	// The viewer-scoped filters only make sense for an authenticated viewer.
	if filter.Favorited && viewerID != "" {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", viewerID)
	}

	if filter.InShoppingCart && viewerID != "" {
		query = query.
			Joins("JOIN cart_items ON cart_items.recipe_id = recipes.id").
			Where("cart_items.user_id = ?", viewerID)
	}

	return query
}

func (r *recipeRepository) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string, page, limit int) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64
	offset := (page - 1) * limit

	if err := r.buildRecipeQuery(ctx, filter, viewerID).
		Distinct("recipes.id").
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.buildRecipeQuery(ctx, filter, viewerID).
		Distinct("recipes.*").
		Preload("Author").
		Preload("Tags").
		Preload("Components.Ingredient").
		Offset(offset).
		Limit(limit).
		Order("recipes.created_at desc").
		Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

// DeleteRecipe removes the recipe together with its components, favorite and
// cart edges and tag links.
func (r *recipeRepository) DeleteRecipe(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipeUUID, err := uuid.Parse(id)
		if err != nil {
			return domain.ErrParseUUID
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&entities.RecipeComponent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&entities.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Recipe{ID: recipeUUID}).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Recipe{}).Error
	})
}

func (r *recipeRepository) AddFavorite(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.ErrParseUUID
	}

	favorite := &entities.Favorite{
		ID:        uuid.New(),
		UserID:    userUUID,
		RecipeID:  recipeUUID,
		CreatedAt: time.Now(),
	}
	return relation.CreateEdge(ctx, r.db, favorite, "user_id = ? AND recipe_id = ?", userUUID, recipeUUID)
}

func (r *recipeRepository) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	return relation.DeleteEdge[entities.Favorite](ctx, r.db, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *recipeRepository) AddCartItem(ctx context.Context, userID, recipeID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.ErrParseUUID
	}
	recipeUUID, err := uuid.Parse(recipeID)
	if err != nil {
		return domain.ErrParseUUID
	}

	item := &entities.CartItem{
		ID:        uuid.New(),
		UserID:    userUUID,
		RecipeID:  recipeUUID,
		CreatedAt: time.Now(),
	}
	return relation.CreateEdge(ctx, r.db, item, "user_id = ? AND recipe_id = ?", userUUID, recipeUUID)
}

func (r *recipeRepository) RemoveCartItem(ctx context.Context, userID, recipeID string) error {
	return relation.DeleteEdge[entities.CartItem](ctx, r.db, "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *recipeRepository) FavoritedRecipeIDs(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return relation.EdgeSet[entities.Favorite](ctx, r.db, "recipe_id", "user_id = ? AND recipe_id IN ?", userID, recipeIDs)
}

func (r *recipeRepository) CartRecipeIDs(ctx context.Context, userID string, recipeIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return relation.EdgeSet[entities.CartItem](ctx, r.db, "recipe_id", "user_id = ? AND recipe_id IN ?", userID, recipeIDs)
}

func (r *recipeRepository) SubscribedAuthorIDs(ctx context.Context, userID string, authorIDs []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	return relation.EdgeSet[entities.Follow](ctx, r.db, "author_id", "user_id = ? AND author_id IN ?", userID, authorIDs)
}
