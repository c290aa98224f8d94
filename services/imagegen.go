package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"linkedin-content-platform/internal/config"
	"linkedin-content-platform/internal/logger"
)

// KieImageGenerator drives the Kie.ai task API: submit a brief, then poll
// recordInfo until the task succeeds, fails or the timeout lapses. The
// polling loop is the dominant latency source of the whole pipeline.
type KieImageGenerator struct {
	apiKey        string
	createTaskURL string
	recordInfoURL string
	pollInterval  time.Duration
	pollTimeout   time.Duration
	client        *http.Client
}

func NewKieImageGenerator(cfg *config.Config) *KieImageGenerator {
	return &KieImageGenerator{
		apiKey:        cfg.KieAPIKey,
		createTaskURL: cfg.KieCreateTaskURL,
		recordInfoURL: cfg.KieRecordInfoURL,
		pollInterval:  time.Duration(cfg.KiePollIntervalSec) * time.Second,
		pollTimeout:   time.Duration(cfg.KiePollTimeoutSec) * time.Second,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *KieImageGenerator) Submit(ctx context.Context, brief string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: Kie API key not configured", ErrGenerationFailed)
	}

	payload := map[string]interface{}{
		"model": "nano-banana-pro",
		"input": map[string]string{"prompt": brief, "aspect_ratio": "16:9"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.createTaskURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return "", Transient(fmt.Errorf("kie createTask HTTP %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: kie createTask HTTP %d", ErrGenerationFailed, resp.StatusCode)
	}

	var parsed struct {
		Data struct {
			TaskID string `json:"taskId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: unreadable kie response", ErrGenerationFailed)
	}
	if parsed.Data.TaskID == "" {
		return "", fmt.Errorf("%w: kie createTask returned no taskId", ErrGenerationFailed)
	}
	return parsed.Data.TaskID, nil
}

func (g *KieImageGenerator) Poll(ctx context.Context, taskID string) (string, error) {
	deadline := time.Now().Add(g.pollTimeout)
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: kie task %s timed out after %s", ErrGenerationFailed, taskID, g.pollTimeout)
		}

		state, url, err := g.checkTask(ctx, taskID)
		if err != nil {
			// Polling hiccups are retried on the next tick.
			logger.Warn("kie poll error", "task", taskID, "error", err.Error())
			continue
		}
		switch state {
		case "success":
			if url == "" {
				return "", fmt.Errorf("%w: kie task %s succeeded with no result urls", ErrGenerationFailed, taskID)
			}
			return url, nil
		case "fail":
			return "", fmt.Errorf("%w: kie task %s failed", ErrGenerationFailed, taskID)
		}
	}
}

func (g *KieImageGenerator) checkTask(ctx context.Context, taskID string) (state, url string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.recordInfoURL+"?taskId="+taskID, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("kie recordInfo HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	var parsed struct {
		Data struct {
			State      string          `json:"state"`
			ResultJSON json.RawMessage `json:"resultJson"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", "", err
	}
	if parsed.Data.State != "success" {
		return parsed.Data.State, "", nil
	}

	// resultJson arrives either inline or as a stringified blob.
	resultBytes := []byte(parsed.Data.ResultJSON)
	var asString string
	if json.Unmarshal(resultBytes, &asString) == nil {
		resultBytes = []byte(asString)
	}
	var result struct {
		ResultUrls []string `json:"resultUrls"`
	}
	if err := json.Unmarshal(resultBytes, &result); err != nil {
		return parsed.Data.State, "", err
	}
	if len(result.ResultUrls) == 0 {
		return parsed.Data.State, "", nil
	}
	return parsed.Data.State, result.ResultUrls[0], nil
}
