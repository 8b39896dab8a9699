package fetcher

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/tarun-khatri/competitor-metrics/internal/helpers"
	"github.com/tarun-khatri/competitor-metrics/internal/model"
	"github.com/tarun-khatri/competitor-metrics/internal/stats"
)

const defaultLinkedInBaseURL = "https://linkedin-data-api.p.rapidapi.com"

type linkedInCompanyDTO struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Name          string  `json:"name"`
		UniversalName string  `json:"universalName"`
		LinkedinURL   string  `json:"linkedinUrl"`
		Tagline       string  `json:"tagline"`
		Description   string  `json:"description"`
		Website       string  `json:"website"`
		FollowerCount flexInt `json:"followerCount"`
		StaffCount    flexInt `json:"staffCount"`
		Images        struct {
			Logo string `json:"logo"`
		} `json:"Images"`
	} `json:"data"`
}

type linkedInPostDTO struct {
	URN                string  `json:"urn"`
	Text               string  `json:"text"`
	PostedAt           string  `json:"postedAt"`
	PostedDate         string  `json:"postedDate"`
	PostURL            string  `json:"postUrl"`
	LikeCount          flexInt `json:"likeCount"`
	CommentsCount      flexInt `json:"commentsCount"`
	RepostsCount       flexInt `json:"repostsCount"`
	TotalReactionCount flexInt `json:"totalReactionCount"`
	Author             struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"author"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
}

type linkedInPostsDTO struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []linkedInPostDTO `json:"data"`
}

// LinkedIn merges the RapidAPI company-profile and company-posts endpoints
// into one canonical record. Either half can be missing: a rejected profile
// response degrades to defaulted fields as long as posts are usable, and
// vice versa.
type LinkedIn struct {
	client  *Client
	apiKey  string
	baseURL string
}

func NewLinkedIn(client *Client, apiKey string) *LinkedIn {
	return &LinkedIn{client: client, apiKey: apiKey, baseURL: defaultLinkedInBaseURL}
}

var _ Adapter = (*LinkedIn)(nil)

func (l *LinkedIn) Platform() string { return model.PlatformLinkedIn }

func (l *LinkedIn) headers() map[string]string {
	return map[string]string{
		"X-RapidAPI-Key":  l.apiKey,
		"X-RapidAPI-Host": "linkedin-data-api.p.rapidapi.com",
	}
}

func (l *LinkedIn) Fetch(ctx context.Context, identifier, companyName string) (*model.SocialMediaData, error) {
	if identifier == "" {
		log.Println("LinkedIn: no identifier configured, skipping")
		return nil, nil
	}

	var (
		wg       sync.WaitGroup
		company  linkedInCompanyDTO
		posts    linkedInPostsDTO
		compErr  error
		postsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/get-company-details?username=%s", l.baseURL, identifier)
		compErr = l.client.getJSON(ctx, url, l.headers(), &company)
	}()
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/get-company-posts?username=%s&start=0", l.baseURL, identifier)
		postsErr = l.client.getJSON(ctx, url, l.headers(), &posts)
	}()
	wg.Wait()

	if compErr != nil && postsErr != nil {
		log.Printf("LinkedIn: both endpoints failed for %s: profile: %v, posts: %v", identifier, compErr, postsErr)
		return nil, compErr
	}
	if compErr != nil {
		log.Printf("LinkedIn: company profile fetch failed for %s, using defaults: %v", identifier, compErr)
	}
	if postsErr != nil {
		log.Printf("LinkedIn: company posts fetch failed for %s, using profile only: %v", identifier, postsErr)
		posts.Data = nil
	}
	if compErr == nil && !company.Success {
		log.Printf("LinkedIn: provider rejected profile request for %s: %s", identifier, company.Message)
	}
	if postsErr == nil && !posts.Success && len(posts.Data) == 0 {
		log.Printf("LinkedIn: no posts found for %s: %s", identifier, posts.Message)
	}

	return mapLinkedInToCanonical(company, posts, identifier, companyName, time.Now()), nil
}

func mapLinkedInToCanonical(company linkedInCompanyDTO, postsResp linkedInPostsDTO, identifier, companyName string, now time.Time) *model.SocialMediaData {
	posts := make([]model.Post, 0, len(postsResp.Data))
	for _, p := range postsResp.Data {
		author := strings.TrimSpace(p.Author.FirstName + " " + p.Author.LastName)
		if author == "" {
			author = p.Company.Name
		}
		if author == "" {
			author = companyName
		}

		date := p.PostedDate
		if date == "" {
			date = p.PostedAt
		}

		likes := int(p.LikeCount)
		comments := int(p.CommentsCount)
		reposts := int(p.RepostsCount)
		engagement := int(p.TotalReactionCount)
		if engagement == 0 {
			engagement = likes + reposts + comments
		}

		posts = append(posts, model.Post{
			ID:         p.URN,
			Author:     author,
			Text:       stripHTML(p.Text),
			Date:       normalizeDate(date),
			URL:        p.PostURL,
			Likes:      likes,
			Retweets:   reposts,
			Replies:    comments,
			Engagement: engagement,
		})
	}

	displayName := company.Data.Name
	if displayName == "" {
		displayName = companyName
	}
	profileURL := company.Data.LinkedinURL
	if profileURL == "" {
		profileURL, _ = helpers.ConvPlatformToURL(model.PlatformLinkedIn, identifier)
	}
	bio := company.Data.Description
	if bio == "" {
		bio = company.Data.Tagline
	}

	followers := int(company.Data.FollowerCount)

	return &model.SocialMediaData{
		Platform:    model.PlatformLinkedIn,
		Identifier:  identifier,
		CompanyName: companyName,
		Profile: model.Profile{
			Name:           displayName,
			Username:       identifier,
			Bio:            bio,
			URL:            profileURL,
			AvatarURL:      company.Data.Images.Logo,
			FollowersCount: followers,
			PostsCount:     len(posts),
		},
		FollowerStats: model.FollowerStats{Current: followers},
		ContentAnalysis: model.ContentAnalysis{
			Metrics: stats.EngagementTotals(posts, followers, now),
		},
		Posts: posts,
	}
}

// stripHTML flattens provider-supplied markup into plain text.
func stripHTML(input string) string {
	if !strings.ContainsAny(input, "<&") {
		return input
	}

	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return input
	}

	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}
