package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessDeleteRecipe    = "recipe deleted successfully"
	MessageSuccessUploadImage     = "recipe image uploaded successfully"
	MessageSuccessFavorite        = "recipe added to favorites"
	MessageSuccessUnfavorite      = "recipe removed from favorites"
	MessageSuccessAddToCart       = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart  = "recipe removed from shopping cart"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedUploadImage     = "failed to upload recipe image"
	MessageFailedFavorite        = "failed to add recipe to favorites"
	MessageFailedUnfavorite      = "failed to remove recipe from favorites"
	MessageFailedAddToCart       = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove recipe from shopping cart"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("unauthorized access to recipe")
	ErrEmptyIngredients         = errors.New("ingredient list is empty")
	ErrInvalidAmount            = errors.New("ingredient amount cannot be less than 1")
	ErrDuplicateIngredient      = errors.New("duplicate ingredient in request")
	ErrAlreadyFavorited         = errors.New("recipe already in favorites")
	ErrFavoriteNotFound         = errors.New("recipe is not in favorites")
	ErrAlreadyInCart            = errors.New("recipe already in shopping cart")
	ErrCartItemNotFound         = errors.New("recipe is not in shopping cart")
	ErrDuplicateComponent       = errors.New("recipe already lists this ingredient")
)

type (
	IngredientEntry struct {
		ID     uint `json:"id" validate:"required,min=1"`
		Amount int  `json:"amount" validate:"required"`
	}

	CreateRecipeRequest struct {
		Name        string            `json:"name" validate:"required,max=200"`
		Text        string            `json:"text" validate:"required"`
		CookingTime int               `json:"cooking_time" validate:"min=0"`
		Ingredients []IngredientEntry `json:"ingredients" validate:"required"`
		Tags        []uint            `json:"tags" validate:"required,min=1"`
	}

	UpdateRecipeRequest struct {
		Name        string            `json:"name" validate:"required,max=200"`
		Text        string            `json:"text" validate:"required"`
		CookingTime int               `json:"cooking_time" validate:"min=0"`
		Ingredients []IngredientEntry `json:"ingredients" validate:"required"`
		Tags        []uint            `json:"tags" validate:"required,min=1"`
	}

	UploadRecipeImageRequest struct {
		Image *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	// RecipeFilter is the catalog filter set of the list endpoint. The
	// favorited and in-cart filters only apply for an authenticated viewer.
	RecipeFilter struct {
		AuthorID       string
		TagSlugs       []string
		Favorited      bool
		InShoppingCart bool
	}

	ComponentResponse struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	TagResponse struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}

	RecipeResponse struct {
		ID               string              `json:"id"`
		Name             string              `json:"name"`
		ImageURL         string              `json:"image_url,omitempty"`
		Text             string              `json:"text"`
		CookingTime      int                 `json:"cooking_time"`
		Author           UserResponse        `json:"author"`
		Tags             []TagResponse       `json:"tags"`
		Ingredients      []ComponentResponse `json:"ingredients"`
		IsFavorited      bool                `json:"is_favorited"`
		IsInShoppingCart bool                `json:"is_in_shopping_cart"`
		CreatedAt        time.Time           `json:"created_at"`
	}
)
