package util

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFor reads a single configuration value, loading .env once if present.
func LoadEnvFor(v string) (x string) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	x = os.Getenv(v)
	return
}
