package stats

import (
	"time"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// Pure derivation functions shared by every adapter and the aggregator.
// UI layers only format; nothing outside this package recomputes growth or
// engagement arithmetic.

// PercentageChange returns the relative change from previous to current,
// expressed as a percentage. A zero previous value yields 0 rather than a
// division blow-up.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// EngagementRate is the average per-post engagement divided by the follower
// count, as a percentage. Returns 0 for empty post sets or non-positive
// follower counts.
func EngagementRate(posts []model.Post, followers int) float64 {
	if len(posts) == 0 || followers <= 0 {
		return 0
	}
	return AvgEngagement(posts) / float64(followers) * 100
}

// AvgEngagement is the mean of likes+retweets+replies across posts.
func AvgEngagement(posts []model.Post) float64 {
	if len(posts) == 0 {
		return 0
	}
	total := 0
	for _, p := range posts {
		total += p.Likes + p.Retweets + p.Replies
	}
	return float64(total) / float64(len(posts))
}

// EngagementTotals walks a post sample once and fills the full metrics
// block: totals, windowed reply counts and the sample size the numbers were
// computed from. Posts with unparseable dates still count toward totals but
// not toward the windowed counters.
func EngagementTotals(posts []model.Post, followers int, now time.Time) model.EngagementMetrics {
	oneDayAgo := now.Add(-24 * time.Hour)
	sevenDaysAgo := now.Add(-7 * 24 * time.Hour)

	m := model.EngagementMetrics{RecentPostsCount: len(posts)}

	for _, p := range posts {
		m.TotalLikes += p.Likes
		m.TotalRetweets += p.Retweets
		m.TotalReplies += p.Replies

		postedAt, err := time.Parse(time.RFC3339, p.Date)
		if err != nil {
			continue
		}
		if !postedAt.Before(oneDayAgo) {
			m.Replies24h += p.Replies
		}
		if !postedAt.Before(sevenDaysAgo) {
			m.Replies7d += p.Replies
		}
	}

	m.AvgEngagement = AvgEngagement(posts)
	m.EngagementRate = EngagementRate(posts, followers)

	return m
}

// RollingWindowGrowth compares the sum of the last window points against the
// sum of the window immediately before it. Series shorter than two full
// windows return 0.
func RollingWindowGrowth(series []float64, window int) float64 {
	if window <= 0 || len(series) < 2*window {
		return 0
	}

	var last, prev float64
	for _, v := range series[len(series)-window:] {
		last += v
	}
	for _, v := range series[len(series)-2*window : len(series)-window] {
		prev += v
	}

	return PercentageChange(last, prev)
}

// DeltaFromHistory derives a follower change over a lookback window from
// chronological history snapshots. The baseline is the most recent point at
// least lookback old; with no point that old the delta is zero.
func DeltaFromHistory(history []model.HistoryPoint, current int, now time.Time, lookback time.Duration) model.Delta {
	cutoff := now.Add(-lookback)

	baseline := -1
	for _, h := range history {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			continue
		}
		if date.After(cutoff) {
			break
		}
		baseline = h.Count
	}

	if baseline < 0 {
		return model.Delta{}
	}

	return model.Delta{
		Count:      current - baseline,
		Percentage: PercentageChange(float64(current), float64(baseline)),
	}
}

// FollowerDeltas fills the three named lookbacks the dashboard renders.
func FollowerDeltas(history []model.HistoryPoint, current int, now time.Time) model.FollowerStats {
	return model.FollowerStats{
		Current:        current,
		OneDayChange:   DeltaFromHistory(history, current, now, 24*time.Hour),
		OneWeekChange:  DeltaFromHistory(history, current, now, 7*24*time.Hour),
		OneMonthChange: DeltaFromHistory(history, current, now, 30*24*time.Hour),
		History:        history,
	}
}
