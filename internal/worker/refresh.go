package worker

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tarun-khatri/competitor-metrics/internal/aggregator"
	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// CompanyLister is the slice of the registry the worker needs.
type CompanyLister interface {
	ListCompanies(ctx context.Context) ([]model.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error)
}

// Notifier pushes refreshed results to connected clients. Nil disables
// pushes.
type Notifier interface {
	Broadcast(eventType, companyName string, payload any)
}

func backoffWithJitter(attempt int) time.Duration {
	const (
		baseDelay = 10 * time.Second
		maxDelay  = 15 * time.Minute
	)

	delay := baseDelay * (1 << attempt)
	if delay > maxDelay {
		delay = maxDelay
	}

	var b [8]byte
	_, _ = rand.Read(b[:])
	jitter := time.Duration(binary.LittleEndian.Uint64(b[:]) % uint64(delay))

	return jitter
}

func RunRefresh(companies CompanyLister, agg *aggregator.Aggregator, notifier Notifier) {
	log.Println("Worker: Starting refresh...")
	ctx := context.Background()

	list, err := companies.ListCompanies(ctx)
	if err != nil {
		log.Printf("Worker Error getting companies: %v", err)
		return
	}

	var (
		wg    sync.WaitGroup
		count int
	)

	for _, company := range list {
		wg.Add(1)
		count++

		go func(company model.Company) {
			defer wg.Done()
			refreshCompanyInternal(company, agg, notifier)
		}(company)
	}

	wg.Wait()

	log.Printf("Worker: Completed refresh for %d companies", count)
}

func RunRefreshCompany(id uuid.UUID, companies CompanyLister, agg *aggregator.Aggregator, notifier Notifier) {
	log.Printf("Worker: Starting manual refresh for company %s", id)

	company, err := companies.GetCompany(context.Background(), id)
	if err != nil {
		log.Printf("Worker Error getting company %s: %v", id, err)
		return
	}

	refreshCompanyInternal(company, agg, notifier)
}

func refreshCompanyInternal(company model.Company, agg *aggregator.Aggregator, notifier Notifier) {
	ctx := context.Background()

	for _, platform := range model.Platforms {
		if company.Identifiers.ForPlatform(platform) == "" {
			continue
		}
		refreshPlatformWithRetry(ctx, company, platform, agg)
	}

	// Everything configured is now in cache; settle one aggregate and push
	// it. Overtaken generations stay off the wire.
	result := agg.Aggregate(ctx, company)
	if result.Superseded {
		return
	}
	if notifier != nil {
		notifier.Broadcast("metrics:update", company.Name, result)
	}
}

func refreshPlatformWithRetry(ctx context.Context, company model.Company, platform string, agg *aggregator.Aggregator) {
	const maxRetries = 5

	for attempt := 0; attempt <= maxRetries; attempt++ {
		isLastRetry := attempt == maxRetries

		err := func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker Panic in platform refresh (company=%s platform=%s attempt=%d): %v", company.Name, platform, attempt+1, r)
				}
			}()

			_, err := agg.RefreshPlatform(ctx, company, platform)

			if err == nil {
				return nil
			}

			if isLastRetry {
				log.Printf("Worker Platform refresh FAILED after %d attempts (company=%s platform=%s): %v", attempt+1, company.Name, platform, err)
				return err
			}

			delay := backoffWithJitter(attempt)
			log.Printf("Worker Platform refresh error (company=%s platform=%s attempt=%d). Retrying in %s: %v", company.Name, platform, attempt+1, delay, err)
			time.Sleep(delay)
			return err
		}()

		if err == nil {
			return
		}
	}
}
