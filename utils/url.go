package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var shortsEmbedRe = regexp.MustCompile(`^/(shorts|embed|live)/([^/?]+)`)

// ExtractYouTubeID pulls the video id out of watch, youtu.be, shorts and
// embed URL shapes.
func ExtractYouTubeID(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %v", err)
	}

	host := strings.TrimPrefix(parsed.Hostname(), "www.")

	if host == "youtu.be" {
		if vid := strings.Trim(parsed.Path, "/"); vid != "" {
			return vid, nil
		}
	}

	if strings.HasSuffix(host, "youtube.com") {
		if parsed.Path == "/watch" {
			if v := parsed.Query().Get("v"); v != "" {
				return v, nil
			}
		}
		if m := shortsEmbedRe.FindStringSubmatch(parsed.Path); m != nil {
			return m[2], nil
		}
	}

	return "", fmt.Errorf("could not extract YouTube video id from: %s", rawURL)
}

// DetectPlatform classifies a source URL as youtube or twitter. Anything
// that is not a tweet URL is treated as YouTube, matching ingestion rules.
func DetectPlatform(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "youtube"
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	if host == "twitter.com" || host == "x.com" || strings.HasSuffix(host, ".twitter.com") {
		return "twitter"
	}
	return "youtube"
}
