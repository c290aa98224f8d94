package services

import (
	"context"
	"math/rand"
	"time"

	"linkedin-content-platform/internal/store"
)

// Collaborator fakes shared by the pipeline, preview and processor tests.

type fakeTranscripts struct {
	text string
	err  error
}

func (f *fakeTranscripts) Fetch(ctx context.Context, url string) (string, error) {
	return f.text, f.err
}

type fakeLLM struct {
	output string
	err    error
	calls  int
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.output, f.err
}

type fakeImages struct {
	imageURL  string
	submitErr error
	pollErr   error
}

func (f *fakeImages) Submit(ctx context.Context, brief string) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "task-1", nil
}

func (f *fakeImages) Poll(ctx context.Context, taskID string) (string, error) {
	if f.pollErr != nil {
		return "", f.pollErr
	}
	return f.imageURL, nil
}

type fakeStorage struct {
	publicURL string
	err       error
}

func (f *fakeStorage) Upload(ctx context.Context, sourceURL, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.publicURL, nil
}

type fakePublisher struct {
	submissionID string
	err          error
	calls        int
}

func (f *fakePublisher) Publish(ctx context.Context, text, mediaURL, accountID string, scheduledTime *time.Time) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.submissionID, nil
}

// newTestPipeline wires a pipeline over happy-path fakes; tests override
// individual collaborators before calling Run.
func newTestPipeline(s *store.MemoryStore) (*GenerationPipeline, *fakeTranscripts, *fakeLLM, *fakeImages, *fakeStorage, *fakePublisher) {
	transcripts := &fakeTranscripts{text: "some transcript content"}
	llm := &fakeLLM{output: "generated text"}
	images := &fakeImages{imageURL: "https://img.example/raw.png"}
	storage := &fakeStorage{publicURL: "https://cdn.example/hosted.png"}
	publisher := &fakePublisher{submissionID: "sub-1"}

	selector := NewVariationSelector(rand.New(rand.NewSource(1)))
	ledger := NewExperimentLedger(s)

	p := NewGenerationPipeline(transcripts, llm, images, storage, publisher, selector, ledger)
	return p, transcripts, llm, images, storage, publisher
}
