package handlers

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/internal/api/presenters"
	"Foodgram-Backend/pkg/shopping"

	"github.com/gofiber/fiber/v2"
)

type (
	ShoppingHandler interface {
		DownloadShoppingList(c *fiber.Ctx) error
	}

	shoppingHandler struct {
		shoppingService shopping.ShoppingService
	}
)

func NewShoppingHandler(shoppingService shopping.ShoppingService) ShoppingHandler {
	return &shoppingHandler{
		shoppingService: shoppingService,
	}
}

// DownloadShoppingList streams the aggregated cart as a plain text attachment.
func (h *shoppingHandler) DownloadShoppingList(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	items, err := h.shoppingService.GetShoppingList(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetShoppingList, err)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="wishlist.txt"`)
	return c.SendString(h.shoppingService.RenderShoppingList(items))
}
