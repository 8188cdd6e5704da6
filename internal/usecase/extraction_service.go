package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// ExtractionServiceConfig holds configuration for the extraction service
type ExtractionServiceConfig struct {
	WorkerCount  int
	FetchTimeout time.Duration
	StageTimeout time.Duration
}

// ExtractionService reads raw price strings from source URLs. Fetches fan
// out to a bounded worker pool; every submitted URL yields exactly one
// observation, reassembled in submission order regardless of completion
// order. A failed fetch becomes a per-item failure, never a stage fault.
type ExtractionService struct {
	fetcher      domain.PageFetcher
	workerCount  int
	fetchTimeout time.Duration
	stageTimeout time.Duration
}

// NewExtractionService creates a new extraction service with dependencies
func NewExtractionService(fetcher domain.PageFetcher, config ExtractionServiceConfig) *ExtractionService {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 5
	}

	fetchTimeout := config.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}

	stageTimeout := config.StageTimeout
	if stageTimeout <= 0 {
		stageTimeout = 60 * time.Second
	}

	return &ExtractionService{
		fetcher:      fetcher,
		workerCount:  workerCount,
		fetchTimeout: fetchTimeout,
		stageTimeout: stageTimeout,
	}
}

// Extract fetches a price observation for every source URL. The returned
// observations slice always has the same length and order as sourceURLs.
// Caller cancellation aborts outstanding fetches and returns the context
// error with no partial result.
func (s *ExtractionService) Extract(ctx context.Context, productName string, sourceURLs []string) (*domain.ExtractionResult, error) {
	if productName == "" {
		return nil, domain.ErrInvalidRequest
	}

	observations := make([]domain.RawObservation, len(sourceURLs))
	if len(sourceURLs) == 0 {
		return &domain.ExtractionResult{ProductName: productName, Observations: observations}, nil
	}

	log.Printf("[EXTRACT] Scraping %q from %d source URLs", productName, len(sourceURLs))

	// The stage deadline bounds total wall-clock time; items still in
	// flight when it expires are recorded as timeout failures.
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	workers := s.workerCount
	if workers > len(sourceURLs) {
		workers = len(sourceURLs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				observations[idx] = s.observe(stageCtx, productName, sourceURLs[idx])
			}
		}()
	}

	for idx := range sourceURLs {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	// A cancelled run returns no partial result, only the cancellation
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	succeeded := 0
	for _, obs := range observations {
		if obs.Success {
			succeeded++
		}
	}
	log.Printf("[EXTRACT] Scraped %d observations (%d succeeded)", len(observations), succeeded)

	return &domain.ExtractionResult{ProductName: productName, Observations: observations}, nil
}

// observe attempts one fetch and always returns an observation for the URL
func (s *ExtractionService) observe(ctx context.Context, productName, url string) domain.RawObservation {
	obs := domain.RawObservation{ProductName: productName, URL: url}

	// Stage deadline already passed while this item waited in the queue
	if err := ctx.Err(); err != nil {
		obs.Error = failureMessage(err)
		return obs
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	price, err := s.fetcher.FetchPrice(fetchCtx, url)
	if err != nil {
		obs.Error = failureMessage(err)
		return obs
	}

	obs.Price = price
	obs.Success = true
	return obs
}

// failureMessage condenses context errors to stable, comparable strings
func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return err.Error()
	}
}
