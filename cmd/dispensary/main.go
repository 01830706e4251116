package main

import (
	"github.com/joho/godotenv"

	"dispensary/m/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
