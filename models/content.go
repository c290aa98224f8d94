package models

import "time"

// Platform identifies where a source URL points.
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformTwitter Platform = "twitter"
)

// HistoryRecord is one entry in a client's bounded done-history.
type HistoryRecord struct {
	URL    string    `json:"url"`
	DoneAt time.Time `json:"done_at"`
}

// ContentBundle is the fully generated output of one pipeline run.
type ContentBundle struct {
	Platform         Platform `json:"platform"`
	URL              string   `json:"url"`
	Summary          string   `json:"summary"`
	Brief            string   `json:"brief"`
	ImageURL         string   `json:"image_url"`
	PostText         string   `json:"post_text"`
	PostingAccountID string   `json:"posting_account_id"`
	PostID           string   `json:"post_id"`
	VariationID      string   `json:"variation"`
	Posted           bool     `json:"posted"`
}

// PreviewStage is a generated-but-unpublished bundle awaiting a human
// approve/cancel decision.
type PreviewStage struct {
	ClientName       string    `json:"client_name"`
	URL              string    `json:"url"`
	URLHash          string    `json:"url_hash"`
	PostText         string    `json:"post_text"`
	ImageURL         string    `json:"image_url"`
	PostingAccountID string    `json:"posting_account_id"`
	StagedAt         time.Time `json:"staged_at"`
}

// Experiment records which variation combination produced which post.
type Experiment struct {
	PostID          string     `json:"post_id"`
	VariationID     string     `json:"variation_id"`
	URL             string     `json:"url"`
	PostTextPreview string     `json:"post_text_preview"`
	CreatedAt       time.Time  `json:"created_at"`
	IsWinner        bool       `json:"is_winner"`
	WonAt           *time.Time `json:"won_at,omitempty"`
}

// ExperimentStats is the aggregate view over all retained experiments.
type ExperimentStats struct {
	TotalExperiments int                `json:"total_experiments"`
	TotalWinners     int                `json:"total_winners"`
	Weights          map[string]float64 `json:"weights"`
	VariationCounts  map[string]int     `json:"per_variation_counts"`
	VariationWinners map[string]int     `json:"per_variation_winner_counts"`
}
