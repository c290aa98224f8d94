package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task types consumed by cmd/worker.
const (
	TaskProcessNext = "content:process_next"
	TaskSweep       = "content:sweep"
)

type ProcessNextPayload struct {
	Client string `json:"client"`
}

// NewProcessNextTask defers one process-next run for a client to the
// worker. Retries are disabled: processing is at-most-once by design, a
// failed URL is never replayed automatically.
func NewProcessNextTask(client string) (*asynq.Task, error) {
	payload, err := json.Marshal(ProcessNextPayload{Client: client})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskProcessNext,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Minute),
	), nil
}

// NewSweepTask defers an all-clients sweep to the worker.
func NewSweepTask() *asynq.Task {
	return asynq.NewTask(
		TaskSweep,
		nil,
		asynq.MaxRetry(0),
		asynq.Timeout(30*time.Minute),
	)
}
