package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email      string    `gorm:"uniqueIndex" json:"email"`
	Username   string    `gorm:"uniqueIndex" json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Password   string    `json:"-"`
	IsVerified bool      `json:"is_verified"`

	Recipes []*Recipe `gorm:"foreignKey:AuthorID"`
	Timestamp
}
