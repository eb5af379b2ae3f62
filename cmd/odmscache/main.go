package main

import (
	"log"

	"github.com/najmulislamnajim/odms-cache/internal/cli"
	"github.com/najmulislamnajim/odms-cache/internal/config"
)

// main is the composition root. Adapters are chosen from the environment by
// the cli package.
func main() {
	if !config.LoadDotEnv() {
		log.Println("No .env file found (using environment variables)")
	}
	cli.Execute()
}
