package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/campaign-composer/internal/config"
	"github.com/jonathan/campaign-composer/internal/pipeline"
	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full campaign pipeline end-to-end",
	Long: `Orchestrates the entire campaign build: describe -> select_audience -> research -> segment -> pitch -> send.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath   string
	runDescription  string
	runDescFile     string
	runAudienceHint string
	runListID       string
	runListFile     string
	runGoals        string
	runAPIKey       string
	runDatabaseURL  string
	runDeliveryURL  string
	runSend         bool
	runUseBrowser   bool
	runConcurrency  int
	runVerbose      bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runDescription, "description", "d", "", "Campaign description text (mutually exclusive with --description-file)")
	runCommand.Flags().StringVar(&runDescFile, "description-file", "", "Path to a file containing the campaign description")
	runCommand.Flags().StringVar(&runAudienceHint, "audience-hint", "", "Optional hint about the target audience")
	runCommand.Flags().StringVar(&runListID, "list-id", "", "Prospect list id resolved through the database (mutually exclusive with --list-file)")
	runCommand.Flags().StringVar(&runListFile, "list-file", "", "Path to a JSON prospect list file")
	runCommand.Flags().StringVarP(&runGoals, "goals", "g", "", "Campaign goals used for segmentation")
	runCommand.Flags().BoolVar(&runSend, "send", false, "Hand the personalized emails to the delivery engine (default is a dry run)")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA prospect sites (requires Chrome)")
	runCommand.Flags().IntVar(&runConcurrency, "concurrency", 0, "Parallel prospect research limit (default 4)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().StringVar(&runDeliveryURL, "delivery-url", "", "Delivery engine endpoint (optional, defaults to DELIVERY_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("description") {
		cfg.Description = runDescription
	}
	if cmd.Flags().Changed("list-id") {
		cfg.ListID = runListID
	}
	if cmd.Flags().Changed("list-file") {
		cfg.ListFile = runListFile
	}
	if cmd.Flags().Changed("goals") {
		cfg.Goals = runGoals
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("delivery-url") {
		cfg.DeliveryURL = runDeliveryURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = runConcurrency
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Resolve the description, from file if requested
	if runDescFile != "" {
		if cfg.Description != "" {
			return fmt.Errorf("--description and --description-file are mutually exclusive; provide only one")
		}
		data, err := os.ReadFile(runDescFile)
		if err != nil {
			return fmt.Errorf("failed to read description file: %w", err)
		}
		cfg.Description = string(data)
	}

	// Step 4: Validate required fields
	if cfg.Description == "" {
		return fmt.Errorf("a campaign description is required (--description, --description-file, or config)")
	}
	if cfg.ListID == "" && cfg.ListFile == "" {
		return fmt.Errorf("either --list-id or --list-file must be provided (via flag or config)")
	}
	if cfg.ListID != "" && cfg.ListFile != "" {
		return fmt.Errorf("--list-id and --list-file are mutually exclusive; provide only one")
	}

	// Step 5: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 6: Database and delivery endpoints from environment fallbacks
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DeliveryURL == "" {
		cfg.DeliveryURL = os.Getenv("DELIVERY_URL")
	}
	if runSend && cfg.DeliveryURL == "" {
		return fmt.Errorf("--send requires DELIVERY_URL environment variable or --delivery-url flag")
	}
	if cfg.ListID != "" && cfg.DatabaseURL == "" {
		return fmt.Errorf("--list-id requires DATABASE_URL environment variable or --db-url flag")
	}

	opts := pipeline.RunOptions{
		Description:  cfg.Description,
		AudienceHint: runAudienceHint,
		ListID:       cfg.ListID,
		ListFile:     cfg.ListFile,
		Goals:        cfg.Goals,
		APIKey:       cfg.APIKey,
		DatabaseURL:  cfg.DatabaseURL,
		DeliveryURL:  cfg.DeliveryURL,
		Send:         runSend,
		UseBrowser:   cfg.UseBrowser,
		Concurrency:  cfg.Concurrency,
		Verbose:      cfg.Verbose,
	}

	return pipeline.Run(ctx, opts)
}
