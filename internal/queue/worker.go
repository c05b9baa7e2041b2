package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleConnectWatchTask(ctx context.Context, task *asynq.Task) error {
	var payload ConnectWatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	token, err := q.open(payload)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	attempt, err := q.connect.Watch(ctx, payload.AttemptID, token)
	if err != nil {
		slog.Warn("connect watch stopped", "attempt", payload.AttemptID, "error", err)
		return err
	}
	slog.Info("connect watch done", "attempt", attempt.ID, "state", attempt.State)
	return nil
}

// Mux routes every task type this package handles.
func (q *Queue) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeConnectWatch, q.HandleConnectWatchTask)
	return mux
}
