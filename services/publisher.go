package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"linkedin-content-platform/internal/config"
	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/utils"
)

const blotatoPostsURL = "https://backend.blotato.com/v2/posts"

// BlotatoPublisher pushes finished posts to LinkedIn through the Blotato
// API. Calls run behind a circuit breaker so a flapping publisher fails
// fast instead of tying up pipeline runs.
type BlotatoPublisher struct {
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewBlotatoPublisher(cfg *config.Config) *BlotatoPublisher {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "BlotatoAPI",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BlotatoPublisher{
		apiKey:  cfg.BlotatoAPIKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		breaker: breaker,
	}
}

type blotatoContent struct {
	Text      string   `json:"text"`
	MediaUrls []string `json:"mediaUrls"`
	Platform  string   `json:"platform"`
}

type blotatoPost struct {
	AccountID string         `json:"accountId"`
	Content   blotatoContent `json:"content"`
	Target    struct {
		TargetType string `json:"targetType"`
	} `json:"target"`
}

type blotatoRequest struct {
	Post          blotatoPost `json:"post"`
	ScheduledTime string      `json:"scheduledTime,omitempty"`
}

func (p *BlotatoPublisher) Publish(ctx context.Context, text, mediaURL, accountID string, scheduledTime *time.Time) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("%w: no posting account configured", ErrPublishRejected)
	}

	mediaUrls := []string{}
	if mediaURL != "" {
		mediaUrls = append(mediaUrls, mediaURL)
	}
	reqBody := blotatoRequest{
		Post: blotatoPost{
			AccountID: accountID,
			Content: blotatoContent{
				Text:      text,
				MediaUrls: mediaUrls,
				Platform:  "linkedin",
			},
		},
	}
	reqBody.Post.Target.TargetType = "linkedin"
	if scheduledTime != nil {
		reqBody.ScheduledTime = scheduledTime.UTC().Format(time.RFC3339)
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.post(ctx, reqBody)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", Transient(err)
		}
		return "", err
	}
	return result.(string), nil
}

func (p *BlotatoPublisher) post(ctx context.Context, reqBody blotatoRequest) (string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, blotatoPostsURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("blotato-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", Transient(err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 500:
		return "", Transient(fmt.Errorf("blotato HTTP %d", resp.StatusCode))
	default:
		// 4xx: invalid account, malformed payload. Operator must fix.
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrPublishRejected, resp.StatusCode, utils.Truncate(string(respBody), 300))
	}

	var parsed struct {
		ID           string `json:"id"`
		SubmissionID string `json:"submissionId"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", nil
	}
	if parsed.SubmissionID != "" {
		return parsed.SubmissionID, nil
	}
	return parsed.ID, nil
}
