package helpers

import (
	"fmt"
	"strings"

	"github.com/tarun-khatri/competitor-metrics/internal/model"
)

// ConvPlatformToURL builds the public profile page for an identifier.
// Providers that return their own canonical URL win over these.
func ConvPlatformToURL(platform, identifier string) (string, error) {
	switch platform {
	case model.PlatformTwitter:
		return "https://twitter.com/" + identifier, nil
	case model.PlatformLinkedIn:
		// LinkedIn canonical company URLs carry a trailing slash.
		return "https://www.linkedin.com/company/" + identifier + "/", nil
	case model.PlatformMedium:
		return "https://medium.com/@" + strings.TrimPrefix(identifier, "@"), nil
	case model.PlatformOnchain:
		return "https://defillama.com/protocol/" + identifier, nil
	default:
		return "", fmt.Errorf("platform %v not recognized", platform)
	}
}

// ConvPostToURL builds the public permalink for a post.
func ConvPostToURL(platform, author, postID string) (string, error) {
	switch platform {
	case model.PlatformTwitter:
		return fmt.Sprintf("https://twitter.com/%v/status/%v", author, postID), nil
	case model.PlatformLinkedIn:
		return "https://www.linkedin.com/feed/update/" + postID, nil
	case model.PlatformMedium:
		return fmt.Sprintf("https://medium.com/@%v/%v", strings.TrimPrefix(author, "@"), postID), nil
	default:
		return "", fmt.Errorf("platform %v not recognized", platform)
	}
}
