package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tarun-khatri/competitor-metrics/internal/helpers"
	"github.com/tarun-khatri/competitor-metrics/internal/model"
	"github.com/tarun-khatri/competitor-metrics/internal/stats"
)

const defaultLlamaBaseURL = "https://api.llama.fi"

// feesHistoryDays caps how much of the daily fee chart is carried into the
// canonical record; the dashboard charts at most a month.
const feesHistoryDays = 30

type llamaProtocolDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	URL         string `json:"url"`
	Twitter     string `json:"twitter"`
	Category    string `json:"category"`
}

type llamaFeesDTO struct {
	Total24h            float64         `json:"total24h"`
	Total48hTo24h       float64         `json:"total48hto24h"`
	Total7d             float64         `json:"total7d"`
	TotalAllTime        float64         `json:"totalAllTime"`
	Change1d            float64         `json:"change_1d"`
	UniqueAddresses24h  flexInt         `json:"uniqueAddresses24h"`
	UniqueAddresses48h  flexInt         `json:"uniqueAddresses48hto24h"`
	TotalDataChart      [][]json.Number `json:"totalDataChart"`
}

// Onchain maps DefiLlama protocol and fee summaries into the canonical
// record. The social fields stay mostly empty; the onchain block and the
// derived growth rates carry the signal.
type Onchain struct {
	client  *Client
	baseURL string
}

func NewOnchain(client *Client) *Onchain {
	return &Onchain{client: client, baseURL: defaultLlamaBaseURL}
}

var _ Adapter = (*Onchain)(nil)

func (o *Onchain) Platform() string { return model.PlatformOnchain }

func (o *Onchain) Fetch(ctx context.Context, identifier, companyName string) (*model.SocialMediaData, error) {
	if identifier == "" {
		log.Println("Onchain: no protocol identifier configured, skipping")
		return nil, nil
	}

	var (
		wg       sync.WaitGroup
		protocol llamaProtocolDTO
		fees     llamaFeesDTO
		protoErr error
		feesErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/protocol/%s", o.baseURL, identifier)
		protoErr = o.client.getJSON(ctx, url, nil, &protocol)
	}()
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/summary/fees/%s", o.baseURL, identifier)
		feesErr = o.client.getJSON(ctx, url, nil, &fees)
	}()
	wg.Wait()

	if feesErr != nil {
		log.Printf("Onchain: fees fetch failed for %s: %v", identifier, feesErr)
		return nil, feesErr
	}
	if protoErr != nil {
		// Fee data renders on its own; the profile block just stays sparse.
		log.Printf("Onchain: protocol fetch failed for %s, using defaults: %v", identifier, protoErr)
	}

	return mapOnchainToCanonical(protocol, fees, identifier, companyName), nil
}

func mapOnchainToCanonical(protocol llamaProtocolDTO, fees llamaFeesDTO, identifier, companyName string) *model.SocialMediaData {
	history, series := feesChart(fees.TotalDataChart)

	name := protocol.Name
	if name == "" {
		name = companyName
	}

	profileURL := protocol.URL
	if profileURL == "" {
		profileURL, _ = helpers.ConvPlatformToURL(model.PlatformOnchain, identifier)
	}

	wallets := int(fees.UniqueAddresses24h)
	prevWallets := int(fees.UniqueAddresses48h)
	if wallets == 0 {
		// DefiLlama omits address counts for some protocols; estimate from
		// fee volume like the dashboard always has.
		wallets = int(fees.Total24h / 100)
		prevWallets = int(fees.Total48hTo24h / 100)
	}

	change1d := fees.Change1d
	if change1d == 0 {
		change1d = stats.PercentageChange(fees.Total24h, fees.Total48hTo24h)
	}

	return &model.SocialMediaData{
		Platform:    model.PlatformOnchain,
		Identifier:  identifier,
		CompanyName: companyName,
		Profile: model.Profile{
			Name:      name,
			Bio:       protocol.Description,
			URL:       profileURL,
			AvatarURL: protocol.Logo,
		},
		FeesHistory:   history,
		Total24h:      fees.Total24h,
		Total48hTo24h: fees.Total48hTo24h,
		Total7d:       fees.Total7d,
		TotalAllTime:  fees.TotalAllTime,
		Change1d:      change1d,
		ActiveWallets: wallets,
		WalletsGrowth: stats.PercentageChange(float64(wallets), float64(prevWallets)),
		// Weekly fee momentum reuses the rolling-window arithmetic.
		FeesGrowth7d: stats.RollingWindowGrowth(series, 7),
	}
}

// feesChart converts DefiLlama's [[unixTs, fees], ...] chart into dated
// points, keeping the trailing feesHistoryDays*2 days so a full two-window
// growth comparison stays possible.
func feesChart(chart [][]json.Number) ([]model.FeePoint, []float64) {
	if len(chart) > feesHistoryDays*2 {
		chart = chart[len(chart)-feesHistoryDays*2:]
	}

	points := make([]model.FeePoint, 0, len(chart))
	series := make([]float64, 0, len(chart))

	for _, row := range chart {
		if len(row) < 2 {
			continue
		}
		ts, err := row[0].Int64()
		if err != nil {
			continue
		}
		fees, err := row[1].Float64()
		if err != nil {
			fees = 0
		}
		points = append(points, model.FeePoint{
			Date: time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Fees: fees,
		})
		series = append(series, fees)
	}

	return points, series
}
