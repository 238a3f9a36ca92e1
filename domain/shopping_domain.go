package domain

var (
	MessageSuccessGetShoppingList = "success get shopping list"
	MessageFailedGetShoppingList  = "failed to get shopping list"
)

// ShoppingListItem is one consolidated line of the viewer's shopping list:
// every cart recipe's component of the same catalog ingredient summed up.
type ShoppingListItem struct {
	IngredientID    uint   `json:"ingredient_id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}
