package services

import (
	"context"
	"time"
)

// Narrow contracts for the external collaborators the pipeline sequences.
// The core only depends on these; the HTTP-backed implementations live in
// this package but carry no state the core reasons about.

// TranscriptSource fetches plain-text source content for a URL.
type TranscriptSource interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TextGenerator produces plain text from a prompt. Summarizer, brief writer
// and copy drafter all satisfy this shape.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator submits a brief and polls for the rendered image URL.
type ImageGenerator interface {
	Submit(ctx context.Context, brief string) (taskID string, err error)
	Poll(ctx context.Context, taskID string) (imageURL string, err error)
}

// ObjectStorage rehosts an image at a stable public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, sourceURL, key string) (publicURL string, err error)
}

// Publisher pushes the finished post to the social-posting API.
type Publisher interface {
	Publish(ctx context.Context, text, mediaURL, accountID string, scheduledTime *time.Time) (submissionID string, err error)
}
