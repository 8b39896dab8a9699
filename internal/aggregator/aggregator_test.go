package aggregator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tarun-khatri/competitor-metrics/internal/cache"
	"github.com/tarun-khatri/competitor-metrics/internal/fetcher"
	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

type fakeAdapter struct {
	platform   string
	calls      atomic.Int32
	data       *model.SocialMediaData
	err        error
	blockFirst chan struct{} // when set, the first Fetch waits until closed
}

func (f *fakeAdapter) Platform() string { return f.platform }

func (f *fakeAdapter) Fetch(ctx context.Context, identifier, companyName string) (*model.SocialMediaData, error) {
	n := f.calls.Add(1)
	if n == 1 && f.blockFirst != nil {
		<-f.blockFirst
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.data != nil {
		out := *f.data
		out.Identifier = identifier
		out.CompanyName = companyName
		return &out, nil
	}
	return nil, nil
}

func adapterFor(platform string, followers int) *fakeAdapter {
	return &fakeAdapter{
		platform: platform,
		data: &model.SocialMediaData{
			Platform: platform,
			Profile:  model.Profile{FollowersCount: followers},
		},
	}
}

type fakeHistory struct {
	mu        sync.Mutex
	snapshots map[string]int
	points    map[string][]model.HistoryPoint
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		snapshots: make(map[string]int),
		points:    make(map[string][]model.HistoryPoint),
	}
}

func (f *fakeHistory) RecordFollowerSnapshot(_ context.Context, companyID uuid.UUID, platform string, followers int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[platform] = followers
	return nil
}

func (f *fakeHistory) FollowerHistory(_ context.Context, companyID uuid.UUID, platform string, days int) ([]model.HistoryPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.points[platform], nil
}

func testCompany() model.Company {
	return model.Company{
		ID:   uuid.New(),
		Name: "Acme",
		Identifiers: model.Identifiers{
			Twitter:   "acmehq",
			LinkedIn:  "acme",
			DefiLlama: "acme-protocol",
		},
	}
}

func TestAggregateOnlyConfiguredPlatforms(t *testing.T) {
	twitter := adapterFor(model.PlatformTwitter, 1000)
	linkedin := adapterFor(model.PlatformLinkedIn, 500)
	medium := &fakeAdapter{platform: model.PlatformMedium}
	onchain := adapterFor(model.PlatformOnchain, 0)

	agg := New(cache.NewMemoryStore(),
		[]fetcher.Adapter{twitter, linkedin, medium, onchain},
		func(string) time.Duration { return time.Hour }, nil)

	company := model.Company{
		ID:          uuid.New(),
		Name:        "Acme",
		Identifiers: model.Identifiers{Twitter: "acmehq"},
	}

	result := agg.Aggregate(context.Background(), company)

	require.NotNil(t, result.Twitter.Data)
	require.Nil(t, result.LinkedIn.Data)
	require.Nil(t, result.Medium.Data)
	require.Nil(t, result.Onchain.Data)
	require.False(t, result.Superseded)

	require.Equal(t, int32(1), twitter.calls.Load())
	require.Equal(t, int32(0), linkedin.calls.Load(), "absent identifier must not invoke the adapter")
	require.Equal(t, int32(0), medium.calls.Load())
	require.Equal(t, int32(0), onchain.calls.Load())
}

func TestAggregateIsolatesFailures(t *testing.T) {
	twitter := &fakeAdapter{platform: model.PlatformTwitter, err: errors.New("twitter down")}
	linkedin := adapterFor(model.PlatformLinkedIn, 500)
	onchain := adapterFor(model.PlatformOnchain, 0)

	agg := New(cache.NewMemoryStore(),
		[]fetcher.Adapter{twitter, linkedin, onchain},
		func(string) time.Duration { return time.Hour }, nil)

	result := agg.Aggregate(context.Background(), testCompany())

	require.Nil(t, result.Twitter.Data)
	require.Contains(t, result.Twitter.Error, "twitter down")
	require.NotNil(t, result.LinkedIn.Data, "sibling platforms must survive one failure")
	require.NotNil(t, result.Onchain.Data)
	require.Empty(t, result.LinkedIn.Error)
}

func TestAggregateServesFromCache(t *testing.T) {
	twitter := adapterFor(model.PlatformTwitter, 1000)

	agg := New(cache.NewMemoryStore(),
		[]fetcher.Adapter{twitter},
		func(string) time.Duration { return time.Hour }, nil)

	company := model.Company{ID: uuid.New(), Name: "Acme", Identifiers: model.Identifiers{Twitter: "acmehq"}}

	first := agg.Aggregate(context.Background(), company)
	require.NotNil(t, first.Twitter.Data)
	require.Equal(t, model.SourceAPI, first.Twitter.Data.Source)

	second := agg.Aggregate(context.Background(), company)
	require.NotNil(t, second.Twitter.Data)
	require.Equal(t, model.SourceCache, second.Twitter.Data.Source)
	require.Equal(t, int32(1), twitter.calls.Load(), "fresh cache entry must not refetch")
}

func TestRefreshPlatformTouchesOnlyItsEntry(t *testing.T) {
	twitter := adapterFor(model.PlatformTwitter, 1000)
	linkedin := adapterFor(model.PlatformLinkedIn, 500)
	store := cache.NewMemoryStore()

	agg := New(store, []fetcher.Adapter{twitter, linkedin},
		func(string) time.Duration { return time.Hour }, nil)

	company := model.Company{
		ID:          uuid.New(),
		Name:        "Acme",
		Identifiers: model.Identifiers{Twitter: "acmehq", LinkedIn: "acme"},
	}

	agg.Aggregate(context.Background(), company)

	ctx := context.Background()
	linkedInBefore, err := store.Get(ctx, cache.Key("Acme", model.PlatformLinkedIn, "acme"))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	data, err := agg.RefreshPlatform(ctx, company, model.PlatformTwitter)
	require.NoError(t, err)
	require.NotNil(t, data)
	require.Equal(t, int32(2), twitter.calls.Load(), "force refresh must bypass the fresh entry")

	twitterAfter, err := store.Get(ctx, cache.Key("Acme", model.PlatformTwitter, "acmehq"))
	require.NoError(t, err)
	linkedInAfter, err := store.Get(ctx, cache.Key("Acme", model.PlatformLinkedIn, "acme"))
	require.NoError(t, err)

	require.True(t, twitterAfter.Timestamp.After(linkedInBefore.Timestamp))
	require.Equal(t, linkedInBefore.Timestamp, linkedInAfter.Timestamp, "sibling entry timestamps must not move")
	require.Equal(t, int32(1), linkedin.calls.Load())
}

func TestAggregateSupersededGeneration(t *testing.T) {
	release := make(chan struct{})
	slow := &fakeAdapter{
		platform:   model.PlatformTwitter,
		data:       &model.SocialMediaData{Platform: model.PlatformTwitter, Profile: model.Profile{FollowersCount: 10}},
		blockFirst: release,
	}

	agg := New(cache.NewMemoryStore(), []fetcher.Adapter{slow},
		func(string) time.Duration { return time.Hour }, nil)

	company := model.Company{ID: uuid.New(), Name: "Acme", Identifiers: model.Identifiers{Twitter: "acmehq"}}

	done := make(chan *Result, 1)
	go func() {
		done <- agg.Aggregate(context.Background(), company)
	}()

	// Wait until the first call is in flight, then issue a newer one.
	require.Eventually(t, func() bool { return slow.calls.Load() == 1 }, time.Second, time.Millisecond)

	newer := make(chan *Result, 1)
	go func() {
		newer <- agg.Aggregate(context.Background(), company)
	}()

	var newerResult *Result
	select {
	case newerResult = <-newer:
	case <-time.After(2 * time.Second):
		t.Fatal("newer aggregation did not finish")
	}

	close(release)
	var oldResult *Result
	select {
	case oldResult = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("older aggregation did not finish")
	}

	require.True(t, oldResult.Superseded, "overtaken generation must be flagged for discard")
	require.False(t, newerResult.Superseded)
}

func TestAggregateEnrichesFollowerStats(t *testing.T) {
	twitter := adapterFor(model.PlatformTwitter, 1000)
	history := newFakeHistory()
	history.points[model.PlatformTwitter] = []model.HistoryPoint{
		{Date: time.Now().UTC().AddDate(0, 0, -10).Format("2006-01-02"), Count: 900},
		{Date: time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02"), Count: 950},
	}

	agg := New(cache.NewMemoryStore(), []fetcher.Adapter{twitter},
		func(string) time.Duration { return time.Hour }, history)

	company := model.Company{ID: uuid.New(), Name: "Acme", Identifiers: model.Identifiers{Twitter: "acmehq"}}

	result := agg.Aggregate(context.Background(), company)
	require.NotNil(t, result.Twitter.Data)

	fs := result.Twitter.Data.FollowerStats
	require.Equal(t, 1000, fs.Current)
	require.Equal(t, 50, fs.OneDayChange.Count, "one day delta against the 2-day-old point")
	require.Equal(t, 100, fs.OneWeekChange.Count, "one week delta against the 10-day-old point")
	require.Equal(t, 0, fs.OneMonthChange.Count, "no point a month old yet")
	require.Len(t, fs.History, 2)

	require.Equal(t, 1000, history.snapshots[model.PlatformTwitter], "fresh fetch must record a snapshot")
}
