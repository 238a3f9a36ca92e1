package migration

import (
	"Foodgram-Backend/entities"
	"fmt"
	"log"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		log.Fatalf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Ingredient{}, &entities.Tag{}); err != nil {
		log.Fatalf("Error migrating catalog database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Recipe{}, &entities.RecipeComponent{}); err != nil {
		log.Fatalf("Error migrating recipe database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Follow{}, &entities.Favorite{}, &entities.CartItem{}); err != nil {
		log.Fatalf("Error migrating relation database: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
