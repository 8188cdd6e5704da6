package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pricelens/backend/config"
	httpDelivery "github.com/pricelens/backend/internal/delivery/http"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/scraper"
	"github.com/pricelens/backend/internal/infrastructure/serper"
	"github.com/pricelens/backend/internal/tool"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()

	searchClient := serper.NewClient(cfg.Serper.APIKey, cfg.Serper.BaseURL, cfg.Serper.Country, cfg.RateLimit.Serper)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		searchClient.SetDebug(true)
		log.Printf("Serper client debug mode enabled")
	}

	log.Printf("Serper API configured: %s (key: %s...)", cfg.Serper.BaseURL, cfg.Serper.APIKey[:min(8, len(cfg.Serper.APIKey))])

	fetcher := scraper.NewFetcher(cfg.Extraction.MaxBodyKB)

	// Initialize usecase layer
	discoveryService := usecase.NewDiscoveryService(
		searchClient,
		memoryCache,
		usecase.DiscoveryServiceConfig{
			MaxResultsCap:    cfg.Discovery.MaxResultsCap,
			EcommerceDomains: cfg.Discovery.EcommerceDomains,
			DefaultSites:     cfg.Discovery.DefaultSites,
			CacheTTL:         cfg.Cache.TTL,
		},
	)

	extractionService := usecase.NewExtractionService(
		fetcher,
		usecase.ExtractionServiceConfig{
			WorkerCount:  cfg.Extraction.WorkerCount,
			FetchTimeout: cfg.Extraction.FetchTimeout,
			StageTimeout: cfg.Extraction.StageTimeout,
		},
	)

	normalizationService := usecase.NewNormalizationService()
	comparisonService := usecase.NewComparisonService()

	log.Printf("Extraction: workers=%d, fetch_timeout=%s, stage_timeout=%s",
		cfg.Extraction.WorkerCount,
		cfg.Extraction.FetchTimeout,
		cfg.Extraction.StageTimeout)

	// Wire the pipeline stages behind the tool executor
	executor := tool.NewExecutor(discoveryService, extractionService, normalizationService, comparisonService)
	log.Printf("Registered %d tools", len(tool.Definitions()))

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(executor)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
