package shopping

import (
	"Foodgram-Backend/domain"
	"context"
	"fmt"
	"strings"
)

type (
	ShoppingService interface {
		GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error)
		RenderShoppingList(items []domain.ShoppingListItem) string
	}

	shoppingService struct {
		shoppingRepository ShoppingRepository
	}
)

func NewShoppingService(shoppingRepository ShoppingRepository) ShoppingService {
	return &shoppingService{shoppingRepository: shoppingRepository}
}

// GetShoppingList aggregates the viewer's cart. An anonymous viewer is an
// error, not an empty list; an empty cart is an empty list, not an error.
func (s *shoppingService) GetShoppingList(ctx context.Context, userID string) ([]domain.ShoppingListItem, error) {
	if userID == "" {
		return nil, domain.ErrUserNotAllowed
	}
	return s.shoppingRepository.AggregateCart(ctx, userID)
}

// RenderShoppingList formats the aggregated list as the plain text download
// body, one ingredient per line with a trailing signature.
func (s *shoppingService) RenderShoppingList(items []domain.ShoppingListItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s - %d %s \r\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	b.WriteString("\r\n")
	b.WriteString("FoodGram, 2021")
	return b.String()
}
