package entities

import (
	"github.com/google/uuid"
)

type Recipe struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AuthorID    uuid.UUID `gorm:"index" json:"author_id"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"image_url,omitempty"`
	Text        string    `json:"text" gorm:"type:text"`
	CookingTime int       `json:"cooking_time"`

	Author     *User              `gorm:"foreignKey:AuthorID"`
	Tags       []*Tag             `gorm:"many2many:recipe_tags" json:"tags,omitempty"`
	Components []*RecipeComponent `gorm:"foreignKey:RecipeID"`
	Timestamp
}

// RecipeComponent links a recipe to a catalog ingredient with an amount.
// A recipe cannot list the same ingredient twice.
type RecipeComponent struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RecipeID     uuid.UUID `gorm:"uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint      `gorm:"uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Amount       int       `json:"amount"`

	Recipe     *Recipe     `gorm:"foreignKey:RecipeID"`
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}
