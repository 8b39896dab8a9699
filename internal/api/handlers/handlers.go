package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tarun-khatri/competitor-metrics/internal/aggregator"
	"github.com/tarun-khatri/competitor-metrics/internal/config"
	"github.com/tarun-khatri/competitor-metrics/internal/model"
	"github.com/tarun-khatri/competitor-metrics/internal/worker"
	"github.com/tarun-khatri/competitor-metrics/internal/ws"
)

// CompanyRegistry is the registry surface the API needs. The concrete
// Postgres registry satisfies it; tests use a fake.
type CompanyRegistry interface {
	CreateCompany(ctx context.Context, name, logo string, ids model.Identifiers) (model.Company, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, name, logo string, ids model.Identifiers) (model.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error)
	GetCompanyByName(ctx context.Context, name string) (model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	Registry    CompanyRegistry
	Aggregator  *aggregator.Aggregator
	Config      *config.AppConfig
	Worker      *worker.Worker
	Broadcaster *ws.Broadcaster

	// Cached company list; the registry is authoritative but the dashboard
	// polls this endpoint aggressively.
	listMu      sync.Mutex
	listCache   []model.Company
	listFetched time.Time
}

func NewHandler(reg CompanyRegistry, agg *aggregator.Aggregator, cfg *config.AppConfig, w *worker.Worker, b *ws.Broadcaster) *Handler {
	return &Handler{
		Registry:    reg,
		Aggregator:  agg,
		Config:      cfg,
		Worker:      w,
		Broadcaster: b,
	}
}
