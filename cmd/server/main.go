package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; deployments configure the environment
	// directly.
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
