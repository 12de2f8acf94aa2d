package main

import (
	"log"
	"os"

	"github.com/lunchdesk/core/cmd/api/commands"
)

// @title LunchDesk API
// @version 1.0
// @description Lunch menu, orders and expenses backed by CSV files

// @license.name MIT

// @host localhost:4000
// @BasePath /api

func main() {
	rootCmd := commands.NewRootCommand()

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
