// Package main provides the entry point for the campaign composer CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "campaign_agent",
	Short: "Campaign Composer pipeline engine",
	Long:  "Campaign Composer builds outbound email campaigns stage by stage: describe, select audience, research, segment, pitch, and send.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
