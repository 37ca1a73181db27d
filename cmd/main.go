package main

import (
	"Durian-Scanner/cmd/config"
	migration "Durian-Scanner/cmd/database/migrate"
	"Durian-Scanner/internal/utils"
	"flag"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	if *migrateOnly {
		return
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("create app: %v", err)
	}

	port := utils.GetConfig("PORT")
	log.Infof("Durian Scanner API listening on port %s", port)
	log.Fatal(app.Listen(":" + port))
}
