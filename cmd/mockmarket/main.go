// Command mockmarket serves the in-memory marketplace API under /api for
// local development. Every seeded account uses mockapi.DemoPassword.
package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"storefront/internal/mockapi"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	root := fiber.New(fiber.Config{DisableStartupMessage: true})
	root.Use(logger.New())
	root.Mount("/api", mockapi.New().App())

	log.Printf("[mockmarket] listening on :%s (password %q)", port, mockapi.DemoPassword)
	log.Fatal(root.Listen(":" + port))
}
