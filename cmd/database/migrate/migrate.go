package migration

import (
	"Durian-Scanner/entities"
	"log"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// scan ids default to uuid_generate_v4()
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";").Error; err != nil {
		log.Printf("Error enabling uuid-ossp: %v", err)
		return err
	}

	if err := db.AutoMigrate(&entities.Scan{}); err != nil {
		log.Printf("Error migrating scan database: %v", err)
		return err
	}

	log.Println("Database migration complete")
	return nil
}
