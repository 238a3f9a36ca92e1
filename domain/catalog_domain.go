package domain

import (
	"errors"
)

var (
	MessageSuccessGetIngredients = "success get ingredients"
	MessageSuccessGetIngredient  = "success get ingredient detail"
	MessageSuccessGetTags        = "success get tags"
	MessageSuccessGetTag         = "success get tag detail"

	MessageFailedGetIngredients = "failed to get ingredients"
	MessageFailedGetIngredient  = "failed to get ingredient detail"
	MessageFailedGetTags        = "failed to get tags"
	MessageFailedGetTag         = "failed to get tag detail"

	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrTagNotFound        = errors.New("tag not found")
)

type IngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}
