package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/lexgraph-backend/internal/app"
	"github.com/yungbote/lexgraph-backend/internal/ingestion/pipeline"
	"github.com/yungbote/lexgraph-backend/internal/services"
)

var (
	migrateOnServe bool

	ingestTitle        string
	ingestJurisdiction string
	ingestDocType      string
	ingestLevel        string
	ingestSourceURL    string
	ingestExternalID   string
	ingestModule       string
	ingestStore        bool

	rootCmd = &cobra.Command{
		Use:   "lexgraph",
		Short: "Legal knowledge graph and propagation engine",
		Long: `lexgraph stores legal documents, obligations and templates as a typed,
versioned graph and propagates document changes to dependent templates.
Configuration comes from the environment (DB_DRIVER, POSTGRES_*, NEO4J_*, REDIS_ADDR, ...).`,
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema",
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Install the default jurisdiction tree (idempotent)",
		RunE:  runSeed,
	}

	ingestCmd = &cobra.Command{
		Use:   "ingest [file]",
		Short: "Run the ingestion pipeline over a text file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}
)

func init() {
	serveCmd.Flags().BoolVar(&migrateOnServe, "migrate", false, "run migrations and seed before serving")

	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (defaults to the file name)")
	ingestCmd.Flags().StringVarP(&ingestJurisdiction, "jurisdiction", "j", "", "jurisdiction code, e.g. EU, UA, US_STATE")
	ingestCmd.Flags().StringVarP(&ingestDocType, "type", "t", "", "document type hint (treaty, statute, regulation, ...)")
	ingestCmd.Flags().StringVar(&ingestLevel, "level", "", "legal level hint (international, regional, national, subnational)")
	ingestCmd.Flags().StringVar(&ingestSourceURL, "source-url", "", "canonical source URL")
	ingestCmd.Flags().StringVar(&ingestExternalID, "external-id", "", "reuse this id instead of generating one")
	ingestCmd.Flags().StringVar(&ingestModule, "module", "", "source module override (EU, UKRAINE, US, INTERNATIONAL)")
	ingestCmd.Flags().BoolVar(&ingestStore, "store", false, "write the document into the graph")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, ingestCmd)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if migrateOnServe {
		if err := a.Migrate(); err != nil {
			return err
		}
		if _, err := a.Seed(ctx); err != nil {
			return err
		}
	}
	return a.Run(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Migrate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	n, err := a.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d new jurisdictions\n", n)
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	title := strings.TrimSpace(ingestTitle)
	if title == "" {
		base := filepath.Base(args[0])
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := pipeline.DefaultOptions()
	if ingestExternalID != "" {
		opts.GenerateID = false
	}
	req := services.IngestRequest{
		Raw: pipeline.RawDocument{
			Content:          string(content),
			Title:            title,
			SourceURL:        ingestSourceURL,
			JurisdictionCode: ingestJurisdiction,
			LegalLevel:       ingestLevel,
			DocumentType:     ingestDocType,
			ExternalID:       ingestExternalID,
		},
		Options: opts,
		Store:   ingestStore,
	}
	if ingestModule != "" {
		req.Source = &pipeline.SourceMetadata{Module: ingestModule}
	}

	var resp services.IngestResponse
	if ingestStore {
		resp, err = a.Services.Ingestion.IngestAndStore(ctx, req)
	} else {
		resp = a.Services.Ingestion.Ingest(ctx, req)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(resp); encErr != nil {
		return encErr
	}
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("ingestion rejected: %s", strings.Join(resp.Errors, "; "))
	}
	return nil
}
