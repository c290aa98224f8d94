package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"linkedin-content-platform/internal/config"
)

// CloudinaryStorage downloads the generator's image and re-uploads it via
// Cloudinary's signed upload endpoint so posts reference a stable URL.
type CloudinaryStorage struct {
	cloudName string
	apiKey    string
	apiSecret string
	client    *http.Client
	now       func() time.Time
}

func NewCloudinaryStorage(cfg *config.Config) *CloudinaryStorage {
	return &CloudinaryStorage{
		cloudName: cfg.CloudinaryCloud,
		apiKey:    cfg.CloudinaryKey,
		apiSecret: cfg.CloudinarySecret,
		client:    &http.Client{Timeout: 60 * time.Second},
		now:       time.Now,
	}
}

func (s *CloudinaryStorage) Upload(ctx context.Context, sourceURL, key string) (string, error) {
	if s.cloudName == "" {
		return "", fmt.Errorf("cloudinary not configured")
	}

	imageBytes, err := s.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	timestamp := s.now().Unix()
	publicID := fmt.Sprintf("%s_%d", key, timestamp)
	signature := signParams(s.apiSecret, map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(timestamp, 10),
	})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("api_key", s.apiKey)
	_ = writer.WriteField("timestamp", strconv.FormatInt(timestamp, 10))
	_ = writer.WriteField("public_id", publicID)
	_ = writer.WriteField("signature", signature)
	part, err := writer.CreateFormFile("file", "infographic.png")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(imageBytes); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	uploadURL := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return "", Transient(fmt.Errorf("cloudinary HTTP %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cloudinary upload HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.SecureURL != "" {
		return parsed.SecureURL, nil
	}
	if parsed.URL != "" {
		return parsed.URL, nil
	}
	return "", fmt.Errorf("cloudinary upload returned no url")
}

func (s *CloudinaryStorage) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// signParams produces Cloudinary's signature: SHA-1 over the sorted
// key=value string with the secret appended (not an HMAC).
func signParams(apiSecret string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	toSign := ""
	for i, pair := range pairs {
		if i > 0 {
			toSign += "&"
		}
		toSign += pair
	}
	sum := sha1.Sum([]byte(toSign + apiSecret))
	return hex.EncodeToString(sum[:])
}
