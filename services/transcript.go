package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/utils"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var pipedInstances = []string{
	"https://pipedapi.kavin.rocks",
	"https://pipedapi.adminforge.de",
	"https://api.piped.yt",
}

var invidiousInstances = []string{
	"https://inv.nadeko.net",
	"https://yewtu.be",
	"https://invidious.nerdvpn.de",
}

var (
	captionTracksRe = regexp.MustCompile(`"captionTracks":\s*(\[.*?\])`)
	xmlTextRe       = regexp.MustCompile(`<text[^>]*>([^<]+)</text>`)
	vttTagRe        = regexp.MustCompile(`<[^>]+>`)
)

// HTTPTranscriptSource fetches source content over plain HTTP: YouTube
// captions through a best-effort fallback chain, tweet text through the
// ScrapingDog API when a key is configured. Internals are deliberately
// unsophisticated; the pipeline only relies on the Fetch contract and the
// error classification.
type HTTPTranscriptSource struct {
	client         *http.Client
	scrapingDogKey string
}

func NewHTTPTranscriptSource(scrapingDogKey string) *HTTPTranscriptSource {
	return &HTTPTranscriptSource{
		client:         &http.Client{Timeout: 15 * time.Second},
		scrapingDogKey: scrapingDogKey,
	}
}

func (t *HTTPTranscriptSource) Fetch(ctx context.Context, url string) (string, error) {
	if utils.DetectPlatform(url) == "twitter" {
		return t.fetchTweet(ctx, url)
	}
	return t.fetchTranscript(ctx, url)
}

func (t *HTTPTranscriptSource) fetchTranscript(ctx context.Context, url string) (string, error) {
	videoID, err := utils.ExtractYouTubeID(url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	if text, err := t.viaWatchPage(ctx, videoID); err == nil && text != "" {
		return text, nil
	} else if err != nil {
		logger.Warn("watch-page transcript fetch failed", "video", videoID, "error", err.Error())
	}

	for _, instance := range pipedInstances {
		if text := t.viaPiped(ctx, instance, videoID); text != "" {
			return text, nil
		}
	}

	for _, instance := range invidiousInstances {
		if text := t.viaInvidious(ctx, instance, videoID); text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("%w: no transcript found for video %s", ErrContentUnavailable, videoID)
}

// viaWatchPage scrapes captionTracks out of the watch page and pulls the
// first English track.
func (t *HTTPTranscriptSource) viaWatchPage(ctx context.Context, videoID string) (string, error) {
	body, err := t.get(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return "", err
	}

	m := captionTracksRe.FindSubmatch(body)
	if m == nil {
		return "", nil
	}
	var tracks []struct {
		BaseURL      string `json:"baseUrl"`
		LanguageCode string `json:"languageCode"`
	}
	if err := json.Unmarshal(m[1], &tracks); err != nil {
		return "", nil
	}
	for _, track := range tracks {
		if !strings.HasPrefix(strings.ToLower(track.LanguageCode), "en") || track.BaseURL == "" {
			continue
		}
		caption, err := t.get(ctx, track.BaseURL)
		if err != nil {
			continue
		}
		parts := xmlTextRe.FindAllSubmatch(caption, -1)
		if len(parts) == 0 {
			continue
		}
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			texts = append(texts, html.UnescapeString(string(p[1])))
		}
		return strings.Join(texts, " "), nil
	}
	return "", nil
}

func (t *HTTPTranscriptSource) viaPiped(ctx context.Context, instance, videoID string) string {
	body, err := t.get(ctx, instance+"/streams/"+videoID)
	if err != nil {
		logger.Debug("piped instance failed", "instance", instance, "error", err.Error())
		return ""
	}
	var payload struct {
		Subtitles []struct {
			Code string `json:"code"`
			URL  string `json:"url"`
		} `json:"subtitles"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, sub := range payload.Subtitles {
		if !strings.HasPrefix(strings.ToLower(sub.Code), "en") || sub.URL == "" {
			continue
		}
		caption, err := t.get(ctx, sub.URL)
		if err != nil {
			continue
		}
		if text := parseCaptionText(string(caption)); text != "" {
			return text
		}
	}
	return ""
}

func (t *HTTPTranscriptSource) viaInvidious(ctx context.Context, instance, videoID string) string {
	body, err := t.get(ctx, instance+"/api/v1/captions/"+videoID)
	if err != nil {
		logger.Debug("invidious instance failed", "instance", instance, "error", err.Error())
		return ""
	}
	var payload struct {
		Captions []struct {
			LanguageCode string `json:"languageCode"`
			URL          string `json:"url"`
		} `json:"captions"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, track := range payload.Captions {
		if !strings.HasPrefix(strings.ToLower(track.LanguageCode), "en") || track.URL == "" {
			continue
		}
		trackURL := track.URL
		if !strings.HasPrefix(trackURL, "http") {
			trackURL = instance + trackURL
		}
		caption, err := t.get(ctx, trackURL)
		if err != nil {
			continue
		}
		if text := parseCaptionText(string(caption)); text != "" {
			return text
		}
	}
	return ""
}

func (t *HTTPTranscriptSource) fetchTweet(ctx context.Context, url string) (string, error) {
	if t.scrapingDogKey == "" {
		return "", fmt.Errorf("%w: no tweet scraping key configured", ErrContentUnavailable)
	}
	endpoint := fmt.Sprintf("https://api.scrapingdog.com/x/post?api_key=%s&url=%s", t.scrapingDogKey, url)
	body, err := t.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	var payload struct {
		Text     string `json:"text"`
		FullText string `json:"full_text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: unreadable tweet payload", ErrContentUnavailable)
	}
	text := payload.FullText
	if text == "" {
		text = payload.Text
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: tweet has no text", ErrContentUnavailable)
	}
	return text, nil
}

// get performs one GET and classifies failures: 429/403 is a block, 5xx
// and transport errors are transient, other non-200s are unavailable.
func (t *HTTPTranscriptSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, Transient(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(resp.Body)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrSourceBlocked, resp.StatusCode, url)
	case resp.StatusCode >= 500:
		return nil, Transient(fmt.Errorf("HTTP %d from %s", resp.StatusCode, url))
	default:
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrContentUnavailable, resp.StatusCode, url)
	}
}

// parseCaptionText extracts plain text from VTT/SRT caption payloads.
func parseCaptionText(vtt string) string {
	var texts []string
	for _, line := range strings.Split(vtt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "-->") || strings.HasPrefix(line, "WEBVTT") {
			continue
		}
		if _, err := fmt.Sscanf(line, "%d", new(int)); err == nil && !strings.ContainsAny(line, " \t") {
			continue
		}
		line = vttTagRe.ReplaceAllString(line, "")
		if line != "" {
			texts = append(texts, line)
		}
	}
	return strings.Join(texts, " ")
}
