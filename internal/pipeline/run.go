// Package pipeline provides the high-level orchestration for a scripted end-to-end
// campaign build: every stage run in catalog order with explicit advances between.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jonathan/campaign-composer/internal/campaign"
	"github.com/jonathan/campaign-composer/internal/db"
	"github.com/jonathan/campaign-composer/internal/delivery"
	"github.com/jonathan/campaign-composer/internal/dispatch"
	"github.com/jonathan/campaign-composer/internal/essence"
	"github.com/jonathan/campaign-composer/internal/llm"
	"github.com/jonathan/campaign-composer/internal/observability"
	"github.com/jonathan/campaign-composer/internal/personalizing"
	"github.com/jonathan/campaign-composer/internal/pitching"
	"github.com/jonathan/campaign-composer/internal/prospects"
	"github.com/jonathan/campaign-composer/internal/research"
	"github.com/jonathan/campaign-composer/internal/segmenting"
	"github.com/jonathan/campaign-composer/internal/types"
)

// RunOptions holds configuration for the scripted pipeline run
type RunOptions struct {
	Description  string
	AudienceHint string
	ListID       string // resolved through the database provider
	ListFile     string // resolved through a file-backed static provider
	Goals        string
	APIKey       string
	DatabaseURL  string
	DeliveryURL  string
	Send         bool // actually hand emails to the delivery engine
	UseBrowser   bool
	Concurrency  int
	Verbose      bool
}

// Run orchestrates the full campaign construction pipeline
func Run(ctx context.Context, opts RunOptions) error {
	printer := observability.NewPrinter(os.Stdout)

	// Initialize database connection if configured
	var database *db.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Connected to database\n")
			}
		}
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), opts.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	// Resolve the prospect provider: a JSON file for database-less runs, the
	// database otherwise.
	var provider prospects.Provider
	listID := opts.ListID
	if opts.ListFile != "" {
		list, err := prospects.LoadListFile(opts.ListFile)
		if err != nil {
			return err
		}
		provider = prospects.NewStaticProvider(list)
		listID = list.ID
		if opts.Verbose {
			fmt.Printf("[VERBOSE] Loaded %d prospects from %s\n", len(list.Prospects), opts.ListFile)
		}
	} else {
		if database == nil {
			return fmt.Errorf("either --list-file or a database connection with --list-id is required")
		}
		provider = database
	}

	executors := []campaign.Executor{
		&essence.Executor{Client: client},
		&prospects.Executor{Provider: provider},
		&research.Executor{Client: client, Provider: provider, Opts: research.Options{
			Concurrency: opts.Concurrency,
			UseBrowser:  opts.UseBrowser,
		}},
		&segmenting.Executor{Client: client},
		&pitching.Executor{Client: client},
		dispatch.NewExecutor(delivery.NewHTTPEngine(opts.DeliveryURL)),
	}

	store := campaign.NewStore()
	controller := campaign.New(store, executors)

	if database != nil {
		runID, err = database.CreateRun(ctx, campaignName(opts.Description))
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
			runID = uuid.Nil
		} else if opts.Verbose {
			fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
		}
	}
	persist := func(stage campaign.StageID) {
		if database == nil || runID == uuid.Nil {
			return
		}
		if artifact, ok := store.Get(stage); ok {
			_ = database.SaveArtifact(ctx, runID, string(stage), artifact)
		}
	}

	// Stage 1: describe
	fmt.Printf("Stage 1/6: Extracting campaign essence...\n")
	if _, err := controller.RunStage(ctx, campaign.StageDescribe, campaign.Input{
		Description:  opts.Description,
		AudienceHint: opts.AudienceHint,
	}); err != nil {
		return fmt.Errorf("describe stage failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintEssence(store.Essence())
	}
	persist(campaign.StageDescribe)
	if err := controller.Advance(); err != nil {
		return err
	}

	// Stage 2: select_audience
	fmt.Printf("Stage 2/6: Selecting audience list %s...\n", listID)
	if _, err := controller.RunStage(ctx, campaign.StageSelectAudience, campaign.Input{ListID: listID}); err != nil {
		return fmt.Errorf("select_audience stage failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintAudience(store.Audience())
	}
	persist(campaign.StageSelectAudience)
	if err := controller.Advance(); err != nil {
		return err
	}

	// Stage 3: research
	fmt.Printf("Stage 3/6: Researching prospects...\n")
	if _, err := controller.RunStage(ctx, campaign.StageResearch, campaign.Input{}); err != nil {
		return fmt.Errorf("research stage failed: %w", err)
	}
	batch := store.Research()
	if opts.Verbose {
		printer.PrintResearchBatch(batch)
	}
	if failed := len(batch) - len(types.SuccessfulRecords(batch)); failed > 0 {
		fmt.Printf("Warning: research failed for %d of %d prospects; continuing with the rest\n",
			failed, len(batch))
	}
	persist(campaign.StageResearch)
	if err := controller.Advance(); err != nil {
		return err
	}

	// Stage 4: segment
	fmt.Printf("Stage 4/6: Segmenting audience...\n")
	if _, err := controller.RunStage(ctx, campaign.StageSegment, campaign.Input{Goals: opts.Goals}); err != nil {
		return fmt.Errorf("segment stage failed: %w", err)
	}
	plan := store.SegmentPlan()
	if opts.Verbose {
		printer.PrintSegmentPlan(plan)
	}
	persist(campaign.StageSegment)
	if err := controller.Advance(); err != nil {
		return err
	}

	// Stage 5: pitch, one per segment
	fmt.Printf("Stage 5/6: Generating pitches for %d segments...\n", len(plan.Segments))
	for _, seg := range plan.Segments {
		if _, err := controller.RunStage(ctx, campaign.StagePitch, campaign.Input{SegmentID: seg.ID}); err != nil {
			return fmt.Errorf("pitch stage failed for segment %s: %w", seg.ID, err)
		}
		if opts.Verbose {
			pitch := store.Pitches()[seg.ID]
			printer.PrintPitch(seg.ID, &pitch)
		}
	}
	persist(campaign.StagePitch)
	if err := controller.Advance(); err != nil {
		return err
	}

	// Stage 6: dispatch
	if !opts.Send {
		fmt.Printf("Stage 6/6: Skipping dispatch (--send not set). Preview:\n")
		previewEmails(printer, plan, store.Pitches(), batch)
		fmt.Printf("Done! Campaign built without sending.\n")
		return nil
	}

	fmt.Printf("Stage 6/6: Personalizing and dispatching emails...\n")
	if _, err := controller.RunStage(ctx, campaign.StageDispatch, campaign.Input{}); err != nil {
		return fmt.Errorf("dispatch stage failed: %w", err)
	}
	persist(campaign.StageDispatch)
	if err := controller.Advance(); err != nil {
		return err
	}
	if opts.Verbose {
		printer.PrintDispatchReceipt(store.Dispatch())
	}

	if database != nil && runID != uuid.Nil {
		_ = database.CompleteRun(ctx, runID, db.RunStatusDispatched)
	}

	receipt := store.Dispatch()
	fmt.Printf("Done! Dispatched %d emails (%s).\n", len(receipt.Emails), receipt.Confirmation)
	return nil
}

// previewEmails renders what the dispatch stage would send, without delivering.
func previewEmails(printer *observability.Printer, plan *types.SegmentPlan, pitches map[string]types.Pitch, batch []types.ResearchRecord) {
	for _, seg := range plan.Segments {
		pitch, ok := pitches[seg.ID]
		if !ok {
			continue
		}
		emails := personalizing.Apply(pitch, batch)
		printer.PrintDispatchReceipt(&types.DispatchReceipt{
			Emails:       emails,
			SegmentID:    seg.ID,
			Confirmation: "preview only",
		})
		return
	}
}

// campaignName derives a short run name from the description text.
func campaignName(description string) string {
	const maxLen = 60
	if len(description) <= maxLen {
		return description
	}
	return description[:maxLen-3] + "..."
}
