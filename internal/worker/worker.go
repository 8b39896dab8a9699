package worker

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tarun-khatri/competitor-metrics/internal/aggregator"
	"github.com/tarun-khatri/competitor-metrics/internal/config"
)

type Worker struct {
	Companies  CompanyLister
	Aggregator *aggregator.Aggregator
	Notifier   Notifier
	Config     *config.AppConfig
	Ticker     *time.Ticker
	StopChan   chan bool
	mu         sync.Mutex
	running    bool
	active     bool
}

func NewWorker(companies CompanyLister, agg *aggregator.Aggregator, notifier Notifier, cfg *config.AppConfig) *Worker {
	return &Worker{
		Companies:  companies,
		Aggregator: agg,
		Notifier:   notifier,
		Config:     cfg,
		StopChan:   make(chan bool),
	}
}

func (w *Worker) Start(interval time.Duration) {
	w.mu.Lock()
	if w.active {
		w.mu.Unlock()
		log.Println("Worker: Scheduler already active, use Restart to change interval")
		return
	}
	w.active = true
	w.mu.Unlock()

	w.Ticker = time.NewTicker(interval)
	go func() {
		defer func() {
			w.mu.Lock()
			w.active = false
			w.mu.Unlock()
		}()
		for {
			select {
			case <-w.Ticker.C:
				w.RefreshAll()
			case <-w.StopChan:
				w.Ticker.Stop()
				return
			}
		}
	}()
	log.Printf("Background worker started with interval: %v", interval)
}

func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		log.Println("Worker: Scheduler not active")
		return
	}
	w.mu.Unlock()

	w.StopChan <- true
	log.Println("Background worker stopped")
}

func (w *Worker) Restart(interval time.Duration) {
	w.mu.Lock()
	isActive := w.active
	w.mu.Unlock()

	if isActive {
		w.Stop()
		time.Sleep(100 * time.Millisecond)
	}
	w.Start(interval)
}

func (w *Worker) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Worker) RefreshAll() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		log.Println("Worker: Refresh already in progress, skipping...")
		return
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	RunRefresh(w.Companies, w.Aggregator, w.Notifier)
}

func (w *Worker) RefreshCompany(id uuid.UUID) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		log.Println("Worker: Refresh already in progress, skipping...")
		return
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	RunRefreshCompany(id, w.Companies, w.Aggregator, w.Notifier)
}
