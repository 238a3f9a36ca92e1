package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"Foodgram-Backend/internal/utils/storage"
	"Foodgram-Backend/pkg/catalog"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error)
		GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, viewerID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, viewerID string) error
		UploadRecipeImage(ctx context.Context, recipeID string, viewerID string, req domain.UploadRecipeImageRequest) (string, error)

		Favorite(ctx context.Context, recipeID, userID string) error
		Unfavorite(ctx context.Context, recipeID, userID string) error
		AddToCart(ctx context.Context, recipeID, userID string) error
		RemoveFromCart(ctx context.Context, recipeID, userID string) error

		AnnotateRecipes(ctx context.Context, recipes []*entities.Recipe, viewerID string) ([]domain.RecipeResponse, error)
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		s3                *storage.AwsS3
	}
)

func NewRecipeService(recipeRepository RecipeRepository, catalogRepository catalog.CatalogRepository, s3 *storage.AwsS3) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		s3:                s3,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, page, limit int, viewerID string) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res, err := s.AnnotateRecipes(ctx, recipes, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return res, count, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	res, err := s.AnnotateRecipes(ctx, []*entities.Recipe{recipe}, viewerID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return res[0], nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID string) (domain.RecipeResponse, error) {
	authorUUID, err := uuid.Parse(authorID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	components, err := s.buildComposition(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          uuid.New(),
		AuthorID:    authorUUID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, components, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipe.ID.String(), authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.UpdateRecipeRequest, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if recipe.AuthorID.String() != viewerID {
		return domain.RecipeResponse{}, domain.ErrUnauthorizedRecipeAccess
	}

	components, err := s.buildComposition(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, components, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, viewerID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, viewerID string) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if recipe.AuthorID.String() != viewerID {
		return domain.ErrUnauthorizedRecipeAccess
	}

	return s.recipeRepository.DeleteRecipe(ctx, recipeID)
}

func (s *recipeService) UploadRecipeImage(ctx context.Context, recipeID string, viewerID string, req domain.UploadRecipeImageRequest) (string, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrRecipeNotFound
		}
		return "", err
	}

	if recipe.AuthorID.String() != viewerID {
		return "", domain.ErrUnauthorizedRecipeAccess
	}

	imageURL, err := s.s3.UploadFile(ctx, req.Image, "recipes")
	if err != nil {
		return "", err
	}

	if err := s.recipeRepository.UpdateRecipeImage(ctx, recipeID, imageURL); err != nil {
		return "", err
	}
	return imageURL, nil
}

func (s *recipeService) Favorite(ctx context.Context, recipeID, userID string) error {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return err
	}

	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		if errors.Is(err, domain.ErrDuplicateEdge) {
			return domain.ErrAlreadyFavorited
		}
		return err
	}
	return nil
}

func (s *recipeService) Unfavorite(ctx context.Context, recipeID, userID string) error {
	if err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID); err != nil {
		if errors.Is(err, domain.ErrEdgeNotFound) {
			return domain.ErrFavoriteNotFound
		}
		return err
	}
	return nil
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID string) error {
	if err := s.requireRecipe(ctx, recipeID); err != nil {
		return err
	}

	if err := s.recipeRepository.AddCartItem(ctx, userID, recipeID); err != nil {
		if errors.Is(err, domain.ErrDuplicateEdge) {
			return domain.ErrAlreadyInCart
		}
		return err
	}
	return nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID string) error {
	if err := s.recipeRepository.RemoveCartItem(ctx, userID, recipeID); err != nil {
		if errors.Is(err, domain.ErrEdgeNotFound) {
			return domain.ErrCartItemNotFound
		}
		return err
	}
	return nil
}

// AnnotateRecipes attaches the viewer-relative flags to a batch of recipes.
// All edges are resolved with one set query per edge kind; an anonymous
// viewer short-circuits every flag to false without touching the store.
// Input order is preserved.
func (s *recipeService) AnnotateRecipes(ctx context.Context, recipes []*entities.Recipe, viewerID string) ([]domain.RecipeResponse, error) {
	var favorited, inCart, subscribed map[uuid.UUID]struct{}

	if viewerID != "" && len(recipes) > 0 {
		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		seenAuthors := make(map[uuid.UUID]struct{}, len(recipes))
		for _, recipe := range recipes {
			recipeIDs = append(recipeIDs, recipe.ID)
			if _, ok := seenAuthors[recipe.AuthorID]; !ok {
				seenAuthors[recipe.AuthorID] = struct{}{}
				authorIDs = append(authorIDs, recipe.AuthorID)
			}
		}

		var err error
		favorited, err = s.recipeRepository.FavoritedRecipeIDs(ctx, viewerID, recipeIDs)
		if err != nil {
			return nil, err
		}
		inCart, err = s.recipeRepository.CartRecipeIDs(ctx, viewerID, recipeIDs)
		if err != nil {
			return nil, err
		}
		subscribed, err = s.recipeRepository.SubscribedAuthorIDs(ctx, viewerID, authorIDs)
		if err != nil {
			return nil, err
		}
	}

	res := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		_, isFavorited := favorited[recipe.ID]
		_, isInCart := inCart[recipe.ID]
		_, isSubscribed := subscribed[recipe.AuthorID]
		res = append(res, toRecipeResponse(recipe, isFavorited, isInCart, isSubscribed))
	}
	return res, nil
}

func (s *recipeService) requireRecipe(ctx context.Context, recipeID string) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	return nil
}

// buildComposition validates the submitted ingredient entries and turns them
// into component records. The whole list is rejected on the first violation.
func (s *recipeService) buildComposition(ctx context.Context, entries []domain.IngredientEntry) ([]*entities.RecipeComponent, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyIngredients
	}

	seen := make(map[uint]struct{}, len(entries))
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		if entry.Amount < 1 {
			return nil, domain.ErrInvalidAmount
		}
		if _, ok := seen[entry.ID]; ok {
			return nil, domain.ErrDuplicateIngredient
		}
		seen[entry.ID] = struct{}{}
		ids = append(ids, entry.ID)
	}

	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(ingredients) != len(ids) {
		return nil, domain.ErrIngredientNotFound
	}

	components := make([]*entities.RecipeComponent, 0, len(entries))
	for _, entry := range entries {
		components = append(components, &entities.RecipeComponent{
			ID:           uuid.New(),
			IngredientID: entry.ID,
			Amount:       entry.Amount,
		})
	}
	return components, nil
}

func (s *recipeService) resolveTags(ctx context.Context, tagIDs []uint) ([]*entities.Tag, error) {
	tags, err := s.catalogRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, domain.ErrTagNotFound
	}
	return tags, nil
}

func toRecipeResponse(recipe *entities.Recipe, isFavorited, isInCart, isSubscribed bool) domain.RecipeResponse {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:    tag.ID,
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}

	ingredients := make([]domain.ComponentResponse, 0, len(recipe.Components))
	for _, component := range recipe.Components {
		res := domain.ComponentResponse{
			ID:     component.IngredientID,
			Amount: component.Amount,
		}
		if component.Ingredient != nil {
			res.Name = component.Ingredient.Name
			res.MeasurementUnit = component.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	author := domain.UserResponse{IsSubscribed: isSubscribed}
	if recipe.Author != nil {
		author.ID = recipe.Author.ID.String()
		author.Email = recipe.Author.Email
		author.Username = recipe.Author.Username
		author.FirstName = recipe.Author.FirstName
		author.LastName = recipe.Author.LastName
	} else {
		author.ID = recipe.AuthorID.String()
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Name:             recipe.Name,
		ImageURL:         recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		Author:           author,
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		CreatedAt:        recipe.CreatedAt,
	}
}
