// Package cli provides the command line interface for the ticket sync
// service.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/adapters/driven/config/file"
	emb "github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/adapters/driven/embedding/openai"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/adapters/driven/index/azsearch"
	llm "github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/adapters/driven/llm/openai"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/connectors/connectwise"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driving"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/services"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath  string
	verboseFlag bool
)

// Services the commands run against. Wired from configuration on first
// use; tests inject their own.
var (
	syncOrchestrator driving.SyncOrchestrator
	importService    driving.Importer
	appConfig        *file.Config
)

var rootCmd = &cobra.Command{
	Use:   "cwsync",
	Short: "Synchronise closed ConnectWise tickets into an AI search index",
	Long: `cwsync keeps an Azure AI Search index in step with closed ConnectWise
service tickets. Each changed ticket is summarised, embedded and
upserted; reopened tickets are removed from the index.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to the configuration file (default "+file.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// configureServices loads configuration and wires the service graph.
// A no-op when the services are already set.
func configureServices() error {
	if syncOrchestrator != nil && importService != nil {
		return nil
	}

	cfg, err := file.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg

	source, err := connectwise.NewClient(connectwise.Config{
		BaseURL:    cfg.ConnectWise.BaseURL,
		CompanyID:  cfg.ConnectWise.CompanyID,
		PublicKey:  cfg.ConnectWise.PublicKey,
		PrivateKey: cfg.ConnectWise.PrivateKey,
		ClientID:   cfg.ConnectWise.ClientID,
		PageSize:   cfg.ConnectWise.PageSize,
	})
	if err != nil {
		return fmt.Errorf("configure ticket source: %w", err)
	}

	summariser, err := llm.NewSummariser(llm.Config{
		Endpoint: cfg.OpenAI.ChatEndpoint,
		APIKey:   cfg.OpenAI.APIKey,
	})
	if err != nil {
		return fmt.Errorf("configure summariser: %w", err)
	}

	embedder, err := emb.NewEmbeddingService(emb.Config{
		Endpoint: cfg.OpenAI.EmbeddingEndpoint,
		APIKey:   cfg.OpenAI.APIKey,
	})
	if err != nil {
		return fmt.Errorf("configure embedding service: %w", err)
	}

	index, err := azsearch.NewIndex(azsearch.Config{
		Endpoint:   cfg.Search.Endpoint,
		IndexName:  cfg.Search.IndexName,
		AdminKey:   cfg.Search.AdminKey,
		APIVersion: cfg.Search.APIVersion,
		BatchSize:  cfg.Search.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("configure search index: %w", err)
	}

	syncOrchestrator = services.NewSyncService(source, index, summariser, embedder, cfg.ConnectWise.Boards)
	importService = services.NewImportService(embedder, index)
	return nil
}
