package fetcher

import (
	"context"
	"log"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// Medium is a placeholder: no provider is wired yet, so every fetch reports
// "no data" rather than an error. The adapter exists so the aggregator and
// routes treat the platform uniformly once a provider lands.
type Medium struct{}

func NewMedium() *Medium { return &Medium{} }

var _ Adapter = (*Medium)(nil)

func (m *Medium) Platform() string { return model.PlatformMedium }

func (m *Medium) Fetch(_ context.Context, identifier, _ string) (*model.SocialMediaData, error) {
	if identifier == "" {
		return nil, nil
	}
	log.Printf("Medium: provider not implemented, returning no data for %s", identifier)
	return nil, nil
}
