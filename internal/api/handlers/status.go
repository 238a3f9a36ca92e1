package handlers

import (
	"Foodgram-Backend/domain"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps service errors onto HTTP statuses: missing entities
// and edges to 404, duplicate edges and self-references to 409, identity
// failures to 401, ownership violations to 403, everything else to 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrFavoriteNotFound),
		errors.Is(err, domain.ErrCartItemNotFound),
		errors.Is(err, domain.ErrSubscriptionMissing),
		errors.Is(err, domain.ErrEdgeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyFavorited),
		errors.Is(err, domain.ErrAlreadyInCart),
		errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrSelfFollow),
		errors.Is(err, domain.ErrDuplicateEdge),
		errors.Is(err, domain.ErrDuplicateComponent),
		errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrUsernameTaken):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUserNotAllowed),
		errors.Is(err, domain.ErrCredentialsInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorizedRecipeAccess):
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadRequest
	}
}
