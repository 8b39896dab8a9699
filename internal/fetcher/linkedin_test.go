package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMapLinkedInToCanonical(t *testing.T) {
	companyBody := `{
		"success": true,
		"data": {
			"name": "Acme Inc",
			"universalName": "acme",
			"linkedinUrl": "https://www.linkedin.com/company/acme",
			"tagline": "We make everything",
			"description": "Acme builds tools.",
			"website": "https://acme.example",
			"followerCount": 5000,
			"staffCount": 120,
			"Images": {"logo": "https://media.licdn.com/acme.png"}
		}
	}`
	postsBody := `{
		"success": true,
		"data": [
			{
				"urn": "urn:li:activity:1",
				"text": "<p>Big &amp; bold announcement</p>",
				"postedDate": "2025-06-14 09:00:00",
				"postUrl": "https://linkedin.com/posts/1",
				"likeCount": 250,
				"commentsCount": 45,
				"repostsCount": 30,
				"totalReactionCount": 325,
				"author": {"firstName": "Jane", "lastName": "Doe"}
			},
			{
				"urn": "urn:li:activity:2",
				"text": "plain update",
				"postedAt": "2025-06-01 12:00:00",
				"postUrl": "https://linkedin.com/posts/2",
				"likeCount": 10,
				"commentsCount": 2,
				"repostsCount": 1,
				"company": {"name": "Acme Inc"}
			}
		]
	}`

	var company linkedInCompanyDTO
	if err := json.Unmarshal([]byte(companyBody), &company); err != nil {
		t.Fatal(err)
	}
	var posts linkedInPostsDTO
	if err := json.Unmarshal([]byte(postsBody), &posts); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	data := mapLinkedInToCanonical(company, posts, "acme", "Acme", now)

	if data.Profile.Name != "Acme Inc" {
		t.Errorf("expected provider name, got %q", data.Profile.Name)
	}
	if data.Profile.FollowersCount != 5000 {
		t.Errorf("expected 5000 followers, got %d", data.Profile.FollowersCount)
	}
	if data.Profile.PostsCount != 2 {
		t.Errorf("expected posts count 2, got %d", data.Profile.PostsCount)
	}
	if len(data.Posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(data.Posts))
	}
	if data.Posts[0].Text != "Big & bold announcement" {
		t.Errorf("expected stripped HTML, got %q", data.Posts[0].Text)
	}
	if data.Posts[0].Author != "Jane Doe" {
		t.Errorf("expected post author from author block, got %q", data.Posts[0].Author)
	}
	if data.Posts[0].Engagement != 325 {
		t.Errorf("expected engagement from totalReactionCount, got %d", data.Posts[0].Engagement)
	}
	if data.Posts[1].Author != "Acme Inc" {
		t.Errorf("expected company fallback author, got %q", data.Posts[1].Author)
	}
	if data.Posts[1].Engagement != 13 {
		t.Errorf("expected summed engagement fallback 13, got %d", data.Posts[1].Engagement)
	}
	// Post 1 is within 7d; its comments count as replies.
	if data.ContentAnalysis.Metrics.Replies7d != 45 {
		t.Errorf("expected 45 replies in 7d, got %d", data.ContentAnalysis.Metrics.Replies7d)
	}
}

func TestMapLinkedInRejectedProfileStillUsesPosts(t *testing.T) {
	company := linkedInCompanyDTO{Success: false, Message: "not found"}
	posts := linkedInPostsDTO{Success: true}
	posts.Data = []linkedInPostDTO{{URN: "urn:1", Text: "hello", PostedAt: "2025-06-14"}}

	data := mapLinkedInToCanonical(company, posts, "acme", "Acme", time.Now())

	if data.Profile.Name != "Acme" {
		t.Errorf("expected company-name fallback, got %q", data.Profile.Name)
	}
	if data.Profile.URL != "https://www.linkedin.com/company/acme/" {
		t.Errorf("expected constructed profile url, got %q", data.Profile.URL)
	}
	if len(data.Posts) != 1 {
		t.Errorf("expected the usable post to survive, got %d", len(data.Posts))
	}
}

func TestLinkedInFetchMergesEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get-company-details":
			w.Write([]byte(`{"success":true,"data":{"name":"Acme Inc","followerCount":5000}}`))
		case "/get-company-posts":
			w.Write([]byte(`{"success":true,"data":[{"urn":"urn:1","text":"hi","likeCount":3}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	li := NewLinkedIn(NewClient(time.Second), "key")
	li.baseURL = srv.URL

	data, err := li.Fetch(context.Background(), "acme", "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if data.Profile.FollowersCount != 5000 {
		t.Errorf("expected merged follower count, got %d", data.Profile.FollowersCount)
	}
	if len(data.Posts) != 1 {
		t.Errorf("expected merged posts, got %d", len(data.Posts))
	}
}

func TestLinkedInFetchBothEndpointsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	li := NewLinkedIn(NewClient(time.Second), "key")
	li.baseURL = srv.URL

	if _, err := li.Fetch(context.Background(), "acme", "Acme"); err == nil {
		t.Fatal("expected error when both endpoints fail")
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "no markup here", "no markup here"},
		{"tags", "<p>hello <b>world</b></p>", "hello world"},
		{"entities", "a &amp; b", "a & b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.input); got != tt.expected {
				t.Fatalf("stripHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
