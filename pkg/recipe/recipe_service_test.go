package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/pkg/catalog"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func withTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(
		&entities.User{},
		&entities.Ingredient{},
		&entities.Tag{},
		&entities.Recipe{},
		&entities.RecipeComponent{},
		&entities.Follow{},
		&entities.Favorite{},
		&entities.CartItem{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestService(t *testing.T) (RecipeService, *gorm.DB) {
	t.Helper()
	db := withTestDatabase(t)
	service := NewRecipeService(NewRecipeRepository(db), catalog.NewCatalogRepository(db), nil)
	return service, db
}

func seedUser(t *testing.T, db *gorm.DB) *entities.User {
	t.Helper()
	id := uuid.New()
	user := &entities.User{
		ID:       id,
		Email:    fmt.Sprintf("%s@example.com", id),
		Username: id.String(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *entities.Ingredient {
	t.Helper()
	ingredient := &entities.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ingredient
}

func seedTag(t *testing.T, db *gorm.DB, slug string) *entities.Tag {
	t.Helper()
	tag := &entities.Tag{Name: slug, Color: "#49B64E", Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return tag
}

func TestCreateRecipePersistsComposition(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")
	milk := seedIngredient(t, db, "milk", "ml")
	breakfast := seedTag(t, db, "breakfast")

	res, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []domain.IngredientEntry{
			{ID: flour.ID, Amount: 100},
			{ID: milk.ID, Amount: 50},
		},
		Tags: []uint{breakfast.ID},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if res.Name != "pancakes" || res.CookingTime != 20 {
		t.Fatalf("unexpected recipe fields: %+v", res)
	}
	if len(res.Ingredients) != 2 {
		t.Fatalf("got %d ingredients, want 2", len(res.Ingredients))
	}
	if res.Ingredients[0].Name == "" || res.Ingredients[0].MeasurementUnit == "" {
		t.Fatalf("ingredient missing catalog data: %+v", res.Ingredients[0])
	}
	if len(res.Tags) != 1 || res.Tags[0].Slug != "breakfast" {
		t.Fatalf("unexpected tags: %+v", res.Tags)
	}
	if res.Author.ID != author.ID.String() {
		t.Fatalf("author id = %s, want %s", res.Author.ID, author.ID)
	}
}

func TestCreateRecipeRejectsBadComposition(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")
	breakfast := seedTag(t, db, "breakfast")

	base := domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Tags:        []uint{breakfast.ID},
	}

	cases := []struct {
		name        string
		ingredients []domain.IngredientEntry
		want        error
	}{
		{"empty list", nil, domain.ErrEmptyIngredients},
		{"zero amount", []domain.IngredientEntry{{ID: flour.ID, Amount: 0}}, domain.ErrInvalidAmount},
		{"negative amount", []domain.IngredientEntry{{ID: flour.ID, Amount: -5}}, domain.ErrInvalidAmount},
		{"duplicate entry", []domain.IngredientEntry{
			{ID: flour.ID, Amount: 100},
			{ID: flour.ID, Amount: 200},
		}, domain.ErrDuplicateIngredient},
		{"unknown ingredient", []domain.IngredientEntry{{ID: 9999, Amount: 100}}, domain.ErrIngredientNotFound},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			req.Ingredients = tt.ingredients
			_, err := service.CreateRecipe(ctx, req, author.ID.String())
			if !errors.Is(err, tt.want) {
				t.Fatalf("CreateRecipe returned %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateRecipeRejectsUnknownTag(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")

	_, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []domain.IngredientEntry{{ID: flour.ID, Amount: 100}},
		Tags:        []uint{9999},
	}, author.ID.String())
	if !errors.Is(err, domain.ErrTagNotFound) {
		t.Fatalf("CreateRecipe returned %v, want ErrTagNotFound", err)
	}
}

func TestUpdateRecipeReplacesComposition(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")
	milk := seedIngredient(t, db, "milk", "ml")
	breakfast := seedTag(t, db, "breakfast")
	dinner := seedTag(t, db, "dinner")

	created, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []domain.IngredientEntry{
			{ID: flour.ID, Amount: 100},
			{ID: milk.ID, Amount: 50},
		},
		Tags: []uint{breakfast.ID},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	updated, err := service.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Name:        "crepes",
		Text:        "mix thin and fry",
		CookingTime: 15,
		Ingredients: []domain.IngredientEntry{{ID: milk.ID, Amount: 75}},
		Tags:        []uint{dinner.ID},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("UpdateRecipe failed: %v", err)
	}

	// The old composition must be gone entirely, not merged.
	if len(updated.Ingredients) != 1 {
		t.Fatalf("got %d ingredients after update, want 1", len(updated.Ingredients))
	}
	if updated.Ingredients[0].ID != milk.ID || updated.Ingredients[0].Amount != 75 {
		t.Fatalf("unexpected component after update: %+v", updated.Ingredients[0])
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Slug != "dinner" {
		t.Fatalf("unexpected tags after update: %+v", updated.Tags)
	}

	var componentCount int64
	if err := db.Model(&entities.RecipeComponent{}).Where("recipe_id = ?", created.ID).Count(&componentCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if componentCount != 1 {
		t.Fatalf("stored %d components, want 1", componentCount)
	}
}

func TestUpdateRecipeKeepsCompositionWhenReplaceFails(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")
	milk := seedIngredient(t, db, "milk", "ml")
	breakfast := seedTag(t, db, "breakfast")

	created, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []domain.IngredientEntry{
			{ID: flour.ID, Amount: 100},
			{ID: milk.ID, Amount: 50},
		},
		Tags: []uint{breakfast.ID},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	repo := NewRecipeRepository(db)
	stored, err := repo.GetRecipeByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID failed: %v", err)
	}

	// Bypass service validation with a list that violates the composite
	// unique index, so the failure happens mid-transaction after the old
	// components were already deleted.
	broken := []*entities.RecipeComponent{
		{ID: uuid.New(), IngredientID: flour.ID, Amount: 10},
		{ID: uuid.New(), IngredientID: flour.ID, Amount: 20},
	}
	err = repo.UpdateRecipe(ctx, stored, broken, stored.Tags)
	if !errors.Is(err, domain.ErrDuplicateComponent) {
		t.Fatalf("UpdateRecipe returned %v, want ErrDuplicateComponent", err)
	}

	// The whole replace must roll back; a reader never sees a recipe with
	// a partial or empty composition.
	after, err := repo.GetRecipeByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID failed: %v", err)
	}
	if len(after.Components) != 2 {
		t.Fatalf("composition has %d components after failed replace, want 2", len(after.Components))
	}
	amounts := make(map[uint]int, len(after.Components))
	for _, component := range after.Components {
		amounts[component.IngredientID] = component.Amount
	}
	if amounts[flour.ID] != 100 || amounts[milk.ID] != 50 {
		t.Fatalf("composition changed after failed replace: %v", amounts)
	}
}

func TestUpdateRecipeRequiresAuthor(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db)
	stranger := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")
	breakfast := seedTag(t, db, "breakfast")

	created, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []domain.IngredientEntry{{ID: flour.ID, Amount: 100}},
		Tags:        []uint{breakfast.ID},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	_, err = service.UpdateRecipe(ctx, created.ID, domain.UpdateRecipeRequest{
		Name:        "stolen",
		Text:        "stolen",
		CookingTime: 5,
		Ingredients: []domain.IngredientEntry{{ID: flour.ID, Amount: 1}},
		Tags:        []uint{breakfast.ID},
	}, stranger.ID.String())
	if !errors.Is(err, domain.ErrUnauthorizedRecipeAccess) {
		t.Fatalf("UpdateRecipe returned %v, want ErrUnauthorizedRecipeAccess", err)
	}

	if err := service.DeleteRecipe(ctx, created.ID, stranger.ID.String()); !errors.Is(err, domain.ErrUnauthorizedRecipeAccess) {
		t.Fatalf("DeleteRecipe returned %v, want ErrUnauthorizedRecipeAccess", err)
	}
}

func TestFavoriteToggle(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db)
	viewer := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")
	breakfast := seedTag(t, db, "breakfast")

	created, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []domain.IngredientEntry{{ID: flour.ID, Amount: 100}},
		Tags:        []uint{breakfast.ID},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if err := service.Favorite(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("Favorite failed: %v", err)
	}
	if err := service.Favorite(ctx, created.ID, viewer.ID.String()); !errors.Is(err, domain.ErrAlreadyFavorited) {
		t.Fatalf("second Favorite returned %v, want ErrAlreadyFavorited", err)
	}
	if err := service.Unfavorite(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("Unfavorite failed: %v", err)
	}
	if err := service.Unfavorite(ctx, created.ID, viewer.ID.String()); !errors.Is(err, domain.ErrFavoriteNotFound) {
		t.Fatalf("second Unfavorite returned %v, want ErrFavoriteNotFound", err)
	}

	if err := service.Favorite(ctx, uuid.New().String(), viewer.ID.String()); !errors.Is(err, domain.ErrRecipeNotFound) {
		t.Fatalf("Favorite of missing recipe returned %v, want ErrRecipeNotFound", err)
	}
}

func TestCartToggle(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	author := seedUser(t, db)
	viewer := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")
	breakfast := seedTag(t, db, "breakfast")

	created, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
		Name:        "pancakes",
		Text:        "mix and fry",
		CookingTime: 20,
		Ingredients: []domain.IngredientEntry{{ID: flour.ID, Amount: 100}},
		Tags:        []uint{breakfast.ID},
	}, author.ID.String())
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}

	if err := service.AddToCart(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if err := service.AddToCart(ctx, created.ID, viewer.ID.String()); !errors.Is(err, domain.ErrAlreadyInCart) {
		t.Fatalf("second AddToCart returned %v, want ErrAlreadyInCart", err)
	}
	if err := service.RemoveFromCart(ctx, created.ID, viewer.ID.String()); err != nil {
		t.Fatalf("RemoveFromCart failed: %v", err)
	}
	if err := service.RemoveFromCart(ctx, created.ID, viewer.ID.String()); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("second RemoveFromCart returned %v, want ErrCartItemNotFound", err)
	}
}

func TestAnnotateRecipes(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	authorA := seedUser(t, db)
	authorB := seedUser(t, db)
	viewer := seedUser(t, db)

	recipeA := &entities.Recipe{ID: uuid.New(), AuthorID: authorA.ID, Name: "a"}
	recipeB := &entities.Recipe{ID: uuid.New(), AuthorID: authorB.ID, Name: "b"}
	if err := db.Create(recipeA).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := db.Create(recipeB).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	recipeA.Author = authorA
	recipeB.Author = authorB

	edges := []any{
		&entities.Favorite{ID: uuid.New(), UserID: viewer.ID, RecipeID: recipeA.ID},
		&entities.CartItem{ID: uuid.New(), UserID: viewer.ID, RecipeID: recipeB.ID},
		&entities.Follow{ID: uuid.New(), UserID: viewer.ID, AuthorID: authorA.ID},
	}
	for _, edge := range edges {
		if err := db.Create(edge).Error; err != nil {
			t.Fatalf("seed edge failed: %v", err)
		}
	}

	batch := []*entities.Recipe{recipeA, recipeB}

	anonymous, err := service.AnnotateRecipes(ctx, batch, "")
	if err != nil {
		t.Fatalf("AnnotateRecipes failed: %v", err)
	}
	for _, res := range anonymous {
		if res.IsFavorited || res.IsInShoppingCart || res.Author.IsSubscribed {
			t.Fatalf("anonymous annotation has true flag: %+v", res)
		}
	}

	annotated, err := service.AnnotateRecipes(ctx, batch, viewer.ID.String())
	if err != nil {
		t.Fatalf("AnnotateRecipes failed: %v", err)
	}
	if len(annotated) != 2 {
		t.Fatalf("got %d annotations, want 2", len(annotated))
	}
	if annotated[0].ID != recipeA.ID.String() || annotated[1].ID != recipeB.ID.String() {
		t.Fatal("annotation order does not match input order")
	}

	a, b := annotated[0], annotated[1]
	if !a.IsFavorited || a.IsInShoppingCart {
		t.Fatalf("recipe a flags = %+v", a)
	}
	if !a.Author.IsSubscribed {
		t.Fatal("recipe a author should be subscribed")
	}
	if b.IsFavorited || !b.IsInShoppingCart {
		t.Fatalf("recipe b flags = %+v", b)
	}
	if b.Author.IsSubscribed {
		t.Fatal("recipe b author should not be subscribed")
	}
}

func TestGetRecipesFilters(t *testing.T) {
	service, db := newTestService(t)
	ctx := context.Background()

	authorA := seedUser(t, db)
	authorB := seedUser(t, db)
	viewer := seedUser(t, db)
	flour := seedIngredient(t, db, "flour", "g")
	breakfast := seedTag(t, db, "breakfast")
	dinner := seedTag(t, db, "dinner")

	mk := func(author *entities.User, tag *entities.Tag) domain.RecipeResponse {
		res, err := service.CreateRecipe(ctx, domain.CreateRecipeRequest{
			Name:        "recipe",
			Text:        "text",
			CookingTime: 10,
			Ingredients: []domain.IngredientEntry{{ID: flour.ID, Amount: 10}},
			Tags:        []uint{tag.ID},
		}, author.ID.String())
		if err != nil {
			t.Fatalf("CreateRecipe failed: %v", err)
		}
		return res
	}

	ra := mk(authorA, breakfast)
	rb := mk(authorB, dinner)

	if err := service.Favorite(ctx, ra.ID, viewer.ID.String()); err != nil {
		t.Fatalf("Favorite failed: %v", err)
	}

	byAuthor, count, err := service.GetRecipes(ctx, domain.RecipeFilter{AuthorID: authorB.ID.String()}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if count != 1 || len(byAuthor) != 1 || byAuthor[0].ID != rb.ID {
		t.Fatalf("author filter returned %d recipes (count %d)", len(byAuthor), count)
	}

	byTag, count, err := service.GetRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"breakfast"}}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if count != 1 || len(byTag) != 1 || byTag[0].ID != ra.ID {
		t.Fatalf("tag filter returned %d recipes (count %d)", len(byTag), count)
	}

	favorited, count, err := service.GetRecipes(ctx, domain.RecipeFilter{Favorited: true}, 1, 20, viewer.ID.String())
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if count != 1 || len(favorited) != 1 || favorited[0].ID != ra.ID {
		t.Fatalf("favorited filter returned %d recipes (count %d)", len(favorited), count)
	}
	if !favorited[0].IsFavorited {
		t.Fatal("favorited recipe not annotated as favorited")
	}

	// Anonymous viewer cannot use the viewer-scoped filter; it is ignored.
	all, count, err := service.GetRecipes(ctx, domain.RecipeFilter{Favorited: true}, 1, 20, "")
	if err != nil {
		t.Fatalf("GetRecipes failed: %v", err)
	}
	if count != 2 || len(all) != 2 {
		t.Fatalf("anonymous favorited filter returned %d recipes (count %d), want all", len(all), count)
	}
}
