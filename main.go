// main is the entry point for the statweights CLI.
package main

import (
	"github.com/huangsam/statweights/cmd"
	"github.com/huangsam/statweights/internal/contract"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; STATWEIGHTS_* variables may come from the shell.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("statweights", err)
	}
}
