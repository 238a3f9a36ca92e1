package entities

// Ingredient is a catalog entry. Names are intentionally not unique:
// two entries may share a name and differ only by id and unit.
type Ingredient struct {
	ID              uint   `gorm:"primary_key;autoIncrement" json:"id"`
	Name            string `gorm:"index" json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type Tag struct {
	ID    uint   `gorm:"primary_key;autoIncrement" json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `gorm:"uniqueIndex" json:"slug"`
}
