package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/services"
)

// TaskProcessor adapts the content processor to asynq task handlers.
type TaskProcessor struct {
	processor *services.Processor
}

func NewTaskProcessor(p *services.Processor) *TaskProcessor {
	return &TaskProcessor{processor: p}
}

// HandleProcessNext runs one job for the client named in the payload.
// Soft outcomes (busy, empty, rate limited) complete the task; only a
// pipeline failure marks it failed.
func (tp *TaskProcessor) HandleProcessNext(ctx context.Context, t *asynq.Task) error {
	var payload ProcessNextPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}

	result, err := tp.processor.ProcessNext(ctx, payload.Client)
	if err != nil {
		return err
	}
	logger.Info("task process-next done", "client", result.Client, "status", result.Status, "url", result.URL)
	return nil
}

// HandleSweep runs one all-clients sweep.
func (tp *TaskProcessor) HandleSweep(ctx context.Context, t *asynq.Task) error {
	results, err := tp.processor.ProcessAllClients(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		logger.Info("sweep result", "client", res.Client, "status", res.Status, "url", res.URL)
	}
	return nil
}
