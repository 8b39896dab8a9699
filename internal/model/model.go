package model

import (
	"time"

	"github.com/google/uuid"
)

// Platform names are the canonical keys used in cache keys, API routes and
// aggregation slots. Provider-specific naming stays inside the fetchers.
const (
	PlatformTwitter  = "twitter"
	PlatformLinkedIn = "linkedin"
	PlatformMedium   = "medium"
	PlatformOnchain  = "onchain"
)

// Platforms lists every supported platform in slot order.
var Platforms = []string{PlatformTwitter, PlatformLinkedIn, PlatformMedium, PlatformOnchain}

type Identifiers struct {
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedIn,omitempty"`
	Medium    string `json:"medium,omitempty"`
	DefiLlama string `json:"defillama,omitempty"`
}

// ForPlatform returns the identifier configured for a platform, or "" when
// the company is not tracked there.
func (i Identifiers) ForPlatform(platform string) string {
	switch platform {
	case PlatformTwitter:
		return i.Twitter
	case PlatformLinkedIn:
		return i.LinkedIn
	case PlatformMedium:
		return i.Medium
	case PlatformOnchain:
		return i.DefiLlama
	}
	return ""
}

type Company struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Logo        string      `json:"logo,omitempty"`
	Identifiers Identifiers `json:"identifiers"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Profile holds whatever identity fields a provider exposes. Everything is
// optional because providers differ; missing values stay zero.
type Profile struct {
	Name           string `json:"name,omitempty"`
	Username       string `json:"username,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	URL            string `json:"url,omitempty"`
	AvatarURL      string `json:"profileImage,omitempty"`
	FollowersCount int    `json:"followers"`
	FollowingCount int    `json:"following"`
	PostsCount     int    `json:"postsCount"`
	JoinedDate     string `json:"joinedDate,omitempty"`
}

// Delta is a named follower change over a fixed lookback.
type Delta struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Positive reports whether the delta renders as growth. Zero counts as
// growth, never as decline.
func (d Delta) Positive() bool {
	return d.Count >= 0
}

// HistoryPoint is one follower-count observation. History is chronological.
type HistoryPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type FollowerStats struct {
	Current        int            `json:"current"`
	OneDayChange   Delta          `json:"oneDayChange"`
	OneWeekChange  Delta          `json:"oneWeekChange"`
	OneMonthChange Delta          `json:"oneMonthChange"`
	History        []HistoryPoint `json:"history,omitempty"`
}

type Post struct {
	ID        string `json:"id,omitempty"`
	Author    string `json:"authorName,omitempty"`
	AvatarURL string `json:"authorAvatar,omitempty"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	URL       string `json:"postUrl,omitempty"`
	Likes     int    `json:"likes"`
	Retweets  int    `json:"retweets"`
	Replies   int    `json:"replies"`
	// Engagement is likes + retweets + replies, precomputed for the UI.
	Engagement int `json:"engagement"`
}

type EngagementMetrics struct {
	EngagementRate   float64 `json:"engagementRate"`
	AvgEngagement    float64 `json:"avgEngagementRate"`
	TotalLikes       int     `json:"totalLikes"`
	TotalRetweets    int     `json:"totalRetweets"`
	TotalReplies     int     `json:"totalReplies"`
	Replies24h       int     `json:"replies24h"`
	Replies7d        int     `json:"replies7d"`
	RecentPostsCount int     `json:"recentTweetsCount"`
}

type ContentAnalysis struct {
	Metrics EngagementMetrics `json:"metrics"`
}

// FeePoint is one day of protocol fees, chronological like HistoryPoint.
type FeePoint struct {
	Date string  `json:"date"`
	Fees float64 `json:"fees"`
}

const (
	SourceCache = "cache"
	SourceAPI   = "api"
)

// SocialMediaData is the canonical record every adapter normalizes into.
// Only adapters produce it; the aggregator and the HTTP layer consume it.
type SocialMediaData struct {
	Platform    string `json:"platform,omitempty"`
	Identifier  string `json:"identifier,omitempty"`
	CompanyName string `json:"companyName,omitempty"`

	Profile         Profile         `json:"profile"`
	FollowerStats   FollowerStats   `json:"followerStats"`
	ContentAnalysis ContentAnalysis `json:"contentAnalysis"`
	Posts           []Post          `json:"posts"`

	// Onchain-only fields, zero for social platforms.
	FeesHistory   []FeePoint `json:"feesHistory,omitempty"`
	Total24h      float64    `json:"total24h,omitempty"`
	Total48hTo24h float64    `json:"total48hto24h,omitempty"`
	Total7d       float64    `json:"total7d,omitempty"`
	TotalAllTime  float64    `json:"totalAllTime,omitempty"`
	Change1d      float64    `json:"change_1d,omitempty"`
	FeesGrowth7d  float64    `json:"feesGrowth7d,omitempty"`
	ActiveWallets int        `json:"activeWallets,omitempty"`
	WalletsGrowth float64    `json:"activeWalletsGrowth24h,omitempty"`

	Source      string    `json:"_source,omitempty"`
	LastUpdated time.Time `json:"_lastUpdated,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}
