package fetcher

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tarun-khatri/competitor-metrics/internal/helpers"
	"github.com/tarun-khatri/competitor-metrics/internal/model"
	"github.com/tarun-khatri/competitor-metrics/internal/stats"
)

const defaultTwitterBaseURL = "https://twitter154.p.rapidapi.com"

// twitterUserDTO mirrors the twitter154 RapidAPI /user/details shape.
// Provider field names stop here.
type twitterUserDTO struct {
	UserID         string  `json:"user_id"`
	Username       string  `json:"username"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Location       string  `json:"location"`
	ProfilePicURL  string  `json:"profile_pic_url"`
	CreationDate   string  `json:"creation_date"`
	FollowerCount  flexInt `json:"follower_count"`
	FollowingCount flexInt `json:"following_count"`
	TweetsCount    flexInt `json:"number_of_tweets"`
}

type twitterTweetDTO struct {
	TweetID       string  `json:"tweet_id"`
	Text          string  `json:"text"`
	CreationDate  string  `json:"creation_date"`
	FavoriteCount flexInt `json:"favorite_count"`
	RetweetCount  flexInt `json:"retweet_count"`
	ReplyCount    flexInt `json:"reply_count"`
}

type twitterTweetsDTO struct {
	Results []twitterTweetDTO `json:"results"`
}

// Twitter fetches profile and recent tweets from the twitter154 RapidAPI
// provider and normalizes them into the canonical record.
type Twitter struct {
	client  *Client
	apiKey  string
	baseURL string
}

func NewTwitter(client *Client, apiKey string) *Twitter {
	return &Twitter{client: client, apiKey: apiKey, baseURL: defaultTwitterBaseURL}
}

var _ Adapter = (*Twitter)(nil)

func (t *Twitter) Platform() string { return model.PlatformTwitter }

func (t *Twitter) headers() map[string]string {
	return map[string]string{
		"X-RapidAPI-Key":  t.apiKey,
		"X-RapidAPI-Host": "twitter154.p.rapidapi.com",
	}
}

func (t *Twitter) Fetch(ctx context.Context, identifier, companyName string) (*model.SocialMediaData, error) {
	if identifier == "" {
		log.Println("Twitter: no identifier configured, skipping")
		return nil, nil
	}

	var (
		wg        sync.WaitGroup
		user      twitterUserDTO
		tweets    twitterTweetsDTO
		userErr   error
		tweetsErr error
	)

	// Profile and tweets are independent endpoints; fetch them together.
	wg.Add(2)
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/user/details?username=%s", t.baseURL, identifier)
		userErr = t.client.getJSON(ctx, url, t.headers(), &user)
	}()
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/user/tweets?username=%s&limit=100", t.baseURL, identifier)
		tweetsErr = t.client.getJSON(ctx, url, t.headers(), &tweets)
	}()
	wg.Wait()

	if userErr != nil {
		log.Printf("Twitter: user details fetch failed for @%s: %v", identifier, userErr)
		return nil, userErr
	}
	if tweetsErr != nil {
		// Profile alone still renders; degrade instead of failing the slot.
		log.Printf("Twitter: tweets fetch failed for @%s, returning profile only: %v", identifier, tweetsErr)
		tweets.Results = nil
	}

	return mapTwitterToCanonical(user, tweets, identifier, companyName, time.Now()), nil
}

func mapTwitterToCanonical(user twitterUserDTO, tweets twitterTweetsDTO, identifier, companyName string, now time.Time) *model.SocialMediaData {
	username := user.Username
	if username == "" {
		username = identifier
	}
	displayName := user.Name
	if displayName == "" {
		displayName = companyName
	}

	posts := make([]model.Post, 0, len(tweets.Results))
	for _, tw := range tweets.Results {
		likes := int(tw.FavoriteCount)
		retweets := int(tw.RetweetCount)
		replies := int(tw.ReplyCount)
		postURL, _ := helpers.ConvPostToURL(model.PlatformTwitter, username, tw.TweetID)
		posts = append(posts, model.Post{
			ID:         tw.TweetID,
			Author:     displayName,
			AvatarURL:  user.ProfilePicURL,
			Text:       tw.Text,
			Date:       normalizeDate(tw.CreationDate),
			URL:        postURL,
			Likes:      likes,
			Retweets:   retweets,
			Replies:    replies,
			Engagement: likes + retweets + replies,
		})
	}

	followers := int(user.FollowerCount)
	profileURL, _ := helpers.ConvPlatformToURL(model.PlatformTwitter, username)

	return &model.SocialMediaData{
		Platform:    model.PlatformTwitter,
		Identifier:  identifier,
		CompanyName: companyName,
		Profile: model.Profile{
			Name:           displayName,
			Username:       username,
			Bio:            user.Description,
			Location:       user.Location,
			URL:            profileURL,
			AvatarURL:      user.ProfilePicURL,
			FollowersCount: followers,
			FollowingCount: int(user.FollowingCount),
			PostsCount:     int(user.TweetsCount),
			JoinedDate:     user.CreationDate,
		},
		FollowerStats: model.FollowerStats{Current: followers},
		ContentAnalysis: model.ContentAnalysis{
			Metrics: stats.EngagementTotals(posts, followers, now),
		},
		Posts: posts,
	}
}
